package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ghilba812/ORSPost/internal/config"
	"github.com/Ghilba812/ORSPost/internal/logger"
)

// Schema 业务表所在的 schema
const Schema = "webgis"

// Querier 服务层使用的查询接口，*DB 与测试替身均可实现
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// IsNoRows 单行查询无结果（广告牌不存在、缓存未命中）
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// DB PostGIS 连接池
type DB struct {
	Pool *pgxpool.Pool
}

// Connect 建立连接池；连接级设置 search_path 与 application_name，便于在 pg_stat_activity 中区分
func Connect(cfg config.DatabaseConfig) (*DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	if poolConfig.MaxConns <= 0 {
		poolConfig.MaxConns = 10
	}
	if poolConfig.MinConns < 0 || poolConfig.MinConns > poolConfig.MaxConns {
		poolConfig.MinConns = 0
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "orspost"
	poolConfig.ConnConfig.RuntimeParams["search_path"] = Schema + ",public"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	var postgis string
	if err := pool.QueryRow(ctx, `SELECT COALESCE((SELECT extversion FROM pg_extension WHERE extname = 'postgis'), '')`).Scan(&postgis); err != nil {
		logger.L().Warn("postgis_version_error", "err", err)
	} else if postgis == "" {
		logger.L().Warn("postgis_missing", "hint", "set DB_AUTO_MIGRATE=true or install the extension")
	} else {
		logger.L().Debug("postgis_version", "version", postgis)
	}

	return &DB{Pool: pool}, nil
}

// Close 关闭连接池
func (db *DB) Close() {
	db.Pool.Close()
}

// Query 多行查询
func (db *DB) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return db.Pool.Query(ctx, sql, args...)
}

// QueryRow 单行查询
func (db *DB) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return db.Pool.QueryRow(ctx, sql, args...)
}

// Exec 执行 DDL / 写入
func (db *DB) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	return db.Pool.Exec(ctx, sql, args...)
}

// Ping 健康检查
func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}
