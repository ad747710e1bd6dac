package service

import (
	"context"
	"fmt"

	"github.com/Ghilba812/ORSPost/internal/database"
	"github.com/Ghilba812/ORSPost/internal/model"
)

// POIGroupSource 列出可用于筛选的 POI 分组
type POIGroupSource interface {
	Groups(ctx context.Context) ([]model.POICategoryGroup, error)
}

// POICatalog POI 分组目录
type POICatalog struct {
	db database.Querier
}

// NewPOICatalog 创建 POI 目录服务
func NewPOICatalog(db *database.DB) *POICatalog {
	return &POICatalog{db: db}
}

// Groups 列出 poi 表中的大类与小类；表为空时返回默认分组
func (s *POICatalog) Groups(ctx context.Context) ([]model.POICategoryGroup, error) {
	query := `
		SELECT
			COALESCE(category_group, 'Other') AS grp,
			COALESCE(category, 'Unknown')     AS cat,
			COUNT(*)                          AS cnt
		FROM webgis.poi
		GROUP BY grp, cat
		ORDER BY grp ASC, cnt DESC
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: list poi groups: %v", ErrStore, err)
	}
	defer rows.Close()

	var counts []model.POICount
	for rows.Next() {
		var pc model.POICount
		if err := rows.Scan(&pc.Group, &pc.Category, &pc.Count); err != nil {
			return nil, fmt.Errorf("%w: scan poi group: %v", ErrStore, err)
		}
		counts = append(counts, pc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list poi groups: %v", ErrStore, err)
	}

	if len(counts) == 0 {
		return model.DefaultPOIGroups(), nil
	}
	return CatalogFromCounts(counts), nil
}

// CatalogFromCounts 将统计行折叠为目录，分组与小类顺序同 GroupPOIs
func CatalogFromCounts(rows []model.POICount) []model.POICategoryGroup {
	grouped := GroupPOIs(rows)
	out := make([]model.POICategoryGroup, 0, len(grouped))
	for _, g := range grouped {
		cats := make([]string, 0, len(g.Items))
		for _, it := range g.Items {
			cats = append(cats, it.Category)
		}
		out = append(out, model.POICategoryGroup{Group: g.Group, Categories: cats, Total: g.Total})
	}
	return out
}
