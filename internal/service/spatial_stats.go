package service

import (
	"context"
	"fmt"

	"github.com/Ghilba812/ORSPost/internal/database"
	"github.com/Ghilba812/ORSPost/internal/model"
)

// PostGISStats 在 PostGIS 中执行相交与包含查询，面积按 geography 计算
type PostGISStats struct {
	db database.Querier
}

// NewPostGISStats 创建空间统计
func NewPostGISStats(db *database.DB) *PostGISStats {
	return &PostGISStats{db: db}
}

// AreaShares 人口单元与多边形的相交面积
func (s *PostGISStats) AreaShares(ctx context.Context, geom model.Geometry) ([]model.AreaShare, error) {
	gj, err := geom.JSON()
	if err != nil {
		return nil, fmt.Errorf("%w: encode geometry: %v", ErrStore, err)
	}

	query := `
		WITH iso AS (
			SELECT ST_SetSRID(ST_GeomFromGeoJSON($1), 4326) AS g
		)
		SELECT
			s.population::float8,
			ST_Area(s.geom::geography),
			ST_Area(ST_Intersection(s.geom, iso.g)::geography)
		FROM webgis.ses_area s, iso
		WHERE ST_Intersects(s.geom, iso.g)
	`
	rows, err := s.db.Query(ctx, query, gj)
	if err != nil {
		return nil, fmt.Errorf("%w: area shares: %v", ErrStore, err)
	}
	defer rows.Close()

	shares := make([]model.AreaShare, 0)
	for rows.Next() {
		var a model.AreaShare
		if err := rows.Scan(&a.Population, &a.UnitArea, &a.IntersectionArea); err != nil {
			return nil, fmt.Errorf("%w: scan area share: %v", ErrStore, err)
		}
		shares = append(shares, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: area shares: %v", ErrStore, err)
	}
	return shares, nil
}

// POICounts 多边形内的 POI 计数
func (s *PostGISStats) POICounts(ctx context.Context, geom model.Geometry, groups []string) ([]model.POICount, error) {
	gj, err := geom.JSON()
	if err != nil {
		return nil, fmt.Errorf("%w: encode geometry: %v", ErrStore, err)
	}

	filter := ""
	args := []interface{}{gj}
	if len(groups) > 0 {
		filter = "AND p.category_group = ANY($2)"
		args = append(args, groups)
	}

	query := `
		WITH iso AS (
			SELECT ST_SetSRID(ST_GeomFromGeoJSON($1), 4326) AS g
		)
		SELECT
			COALESCE(p.category_group, 'Other') AS grp,
			COALESCE(p.category, 'Unknown') AS cat,
			COUNT(*)::bigint AS cnt
		FROM webgis.poi p, iso
		WHERE ST_Within(p.geom, iso.g)
		  ` + filter + `
		GROUP BY 1, 2
		ORDER BY grp ASC, cnt DESC
	`
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: poi counts: %v", ErrStore, err)
	}
	defer rows.Close()

	counts := make([]model.POICount, 0)
	for rows.Next() {
		var c model.POICount
		if err := rows.Scan(&c.Group, &c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("%w: scan poi count: %v", ErrStore, err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: poi counts: %v", ErrStore, err)
	}
	return counts, nil
}
