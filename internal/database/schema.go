package database

import (
	"context"
	"fmt"

	"github.com/Ghilba812/ORSPost/internal/logger"
)

// IsoCacheKeyIndex 缓存键唯一索引；upsert 的 ON CONFLICT 目标必须与这里的表达式逐项一致
const IsoCacheKeyIndex = `CREATE UNIQUE INDEX IF NOT EXISTS iso_cache_key_uniq ON webgis.iso_cache (
		billboard_id, profile, rtype,
		COALESCE(range_s, 0), COALESCE(range_m, 0),
		(COALESCE(opts->>'avoidHighways', 'false')),
		(COALESCE(opts->>'traffic', 'normal'))
	)`

// schemaStatements 首次运行时创建所需的扩展、表与索引。
// iso_cache 的唯一索引覆盖完整缓存键（含避开高速与路况），并发 upsert 依赖它保证不产生重复行。
var schemaStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS postgis`,
	`CREATE SCHEMA IF NOT EXISTS webgis`,
	`CREATE TABLE IF NOT EXISTS webgis.billboard (
		id BIGSERIAL PRIMARY KEY,
		address TEXT,
		geom geometry(Point, 4326) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS billboard_geom_idx ON webgis.billboard USING GIST (geom)`,
	`CREATE TABLE IF NOT EXISTS webgis.iso_cache (
		id BIGSERIAL PRIMARY KEY,
		billboard_id BIGINT NOT NULL,
		profile TEXT NOT NULL,
		rtype TEXT NOT NULL,
		range_s INTEGER,
		range_m INTEGER,
		geom geometry(Geometry, 4326) NOT NULL,
		opts JSONB NOT NULL DEFAULT '{}'::jsonb,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	IsoCacheKeyIndex,
	`CREATE TABLE IF NOT EXISTS webgis.ses_area (
		id BIGSERIAL PRIMARY KEY,
		name TEXT,
		population BIGINT NOT NULL DEFAULT 0,
		geom geometry(MultiPolygon, 4326) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS ses_area_geom_idx ON webgis.ses_area USING GIST (geom)`,
	`CREATE TABLE IF NOT EXISTS webgis.poi (
		id BIGSERIAL PRIMARY KEY,
		name TEXT,
		category TEXT,
		category_group TEXT,
		geom geometry(Point, 4326) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS poi_geom_idx ON webgis.poi USING GIST (geom)`,
}

// EnsureSchema 使用 IF NOT EXISTS 建表，不与既有结构冲突
func EnsureSchema(ctx context.Context, db *DB) error {
	for i, stmt := range schemaStatements {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
