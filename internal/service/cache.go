package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Ghilba812/ORSPost/internal/database"
	"github.com/Ghilba812/ORSPost/internal/model"
)

// CacheStore 等时圈缓存：缓存键 → 多边形
type CacheStore interface {
	// Lookup 按完整缓存键精确匹配；未命中返回 (nil, nil)
	Lookup(ctx context.Context, key model.CacheKey) (*model.Geometry, error)
	// Upsert 插入或覆盖，返回写入后的几何
	Upsert(ctx context.Context, key model.CacheKey, geom model.Geometry) (*model.Geometry, error)
}

// PostgresCache 基于 PostGIS 的持久缓存，不自动过期
type PostgresCache struct {
	db database.Querier
}

// NewPostgresCache 创建缓存
func NewPostgresCache(db *database.DB) *PostgresCache {
	return &PostgresCache{db: db}
}

const cacheLookupSQL = `
	SELECT ST_AsGeoJSON(geom)
	FROM webgis.iso_cache
	WHERE billboard_id = $1 AND profile = $2 AND rtype = $3
	  AND COALESCE(range_s, 0) = $4 AND COALESCE(range_m, 0) = $5
	  AND COALESCE(opts->>'avoidHighways', 'false') = $6
	  AND COALESCE(opts->>'traffic', 'normal') = $7
	LIMIT 1
`

// 冲突目标与唯一索引 iso_cache_key_uniq 的表达式一致
const cacheUpsertSQL = `
	INSERT INTO webgis.iso_cache (billboard_id, profile, rtype, range_s, range_m, geom, opts)
	VALUES ($1, $2, $3, $4, $5, ST_SetSRID(ST_GeomFromGeoJSON($6), 4326), $7::jsonb)
	ON CONFLICT (billboard_id, profile, rtype,
	             COALESCE(range_s, 0), COALESCE(range_m, 0),
	             (COALESCE(opts->>'avoidHighways', 'false')),
	             (COALESCE(opts->>'traffic', 'normal')))
	DO UPDATE SET geom = EXCLUDED.geom, opts = EXCLUDED.opts, updated_at = now()
	RETURNING ST_AsGeoJSON(geom)
`

// cacheOptions 随几何保存的元数据
type cacheOptions struct {
	AvoidHighways string `json:"avoidHighways"`
	Traffic       string `json:"traffic"`
}

// Lookup 查询缓存
func (c *PostgresCache) Lookup(ctx context.Context, key model.CacheKey) (*model.Geometry, error) {
	var gj string
	err := c.db.QueryRow(ctx, cacheLookupSQL,
		key.BillboardID,
		key.Profile,
		string(key.Mode),
		key.RangeSeconds,
		key.RangeMeters,
		key.AvoidHighwaysString(),
		key.Traffic,
	).Scan(&gj)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: cache lookup: %v", ErrStore, err)
	}

	geom, err := model.ParseGeometry([]byte(gj))
	if err != nil {
		return nil, fmt.Errorf("%w: cache lookup: %v", ErrStore, err)
	}
	return &geom, nil
}

// Upsert 写入缓存；同键并发写入由唯一索引收敛为一行（后写覆盖）
func (c *PostgresCache) Upsert(ctx context.Context, key model.CacheKey, geom model.Geometry) (*model.Geometry, error) {
	gj, err := geom.JSON()
	if err != nil {
		return nil, fmt.Errorf("%w: encode geometry: %v", ErrStore, err)
	}
	opts, err := json.Marshal(cacheOptions{
		AvoidHighways: key.AvoidHighwaysString(),
		Traffic:       key.Traffic,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode options: %v", ErrStore, err)
	}

	var saved string
	err = c.db.QueryRow(ctx, cacheUpsertSQL,
		key.BillboardID,
		key.Profile,
		string(key.Mode),
		nullableRange(key.Mode == model.ModeTime, key.RangeSeconds),
		nullableRange(key.Mode == model.ModeDistance, key.RangeMeters),
		gj,
		string(opts),
	).Scan(&saved)
	if err != nil {
		return nil, fmt.Errorf("%w: cache upsert: %v", ErrStore, err)
	}

	out, err := model.ParseGeometry([]byte(saved))
	if err != nil {
		return nil, fmt.Errorf("%w: cache upsert: %v", ErrStore, err)
	}
	return &out, nil
}

// nullableRange 非当前模式的范围列存 NULL
func nullableRange(active bool, v int) *int {
	if !active {
		return nil
	}
	return &v
}
