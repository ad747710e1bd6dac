package service

import (
	"context"
	"fmt"

	"github.com/Ghilba812/ORSPost/internal/database"
	"github.com/Ghilba812/ORSPost/internal/model"
)

// BillboardRegistry 广告牌只读查询
type BillboardRegistry interface {
	// Get 按 ID 查询；不存在时返回 ErrNotFound
	Get(ctx context.Context, id int64) (*model.Billboard, error)
	List(ctx context.Context) ([]model.Billboard, error)
}

// BillboardService 基于 PostGIS 的广告牌查询
type BillboardService struct {
	db database.Querier
}

// NewBillboardService 创建广告牌服务
func NewBillboardService(db *database.DB) *BillboardService {
	return &BillboardService{db: db}
}

// Get 查询单个广告牌坐标
func (s *BillboardService) Get(ctx context.Context, id int64) (*model.Billboard, error) {
	query := `
		SELECT id, COALESCE(address, ''), ST_X(geom), ST_Y(geom)
		FROM webgis.billboard
		WHERE id = $1
	`
	var b model.Billboard
	err := s.db.QueryRow(ctx, query, id).Scan(&b.ID, &b.Address, &b.Lon, &b.Lat)
	if database.IsNoRows(err) {
		return nil, fmt.Errorf("%w: billboard %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get billboard: %v", ErrStore, err)
	}
	return &b, nil
}

// List 按 ID 顺序返回全部广告牌
func (s *BillboardService) List(ctx context.Context) ([]model.Billboard, error) {
	query := `
		SELECT id, COALESCE(address, ''), ST_X(geom), ST_Y(geom)
		FROM webgis.billboard
		ORDER BY id
	`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: list billboards: %v", ErrStore, err)
	}
	defer rows.Close()

	billboards := make([]model.Billboard, 0)
	for rows.Next() {
		var b model.Billboard
		if err := rows.Scan(&b.ID, &b.Address, &b.Lon, &b.Lat); err != nil {
			return nil, fmt.Errorf("%w: scan billboard: %v", ErrStore, err)
		}
		billboards = append(billboards, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list billboards: %v", ErrStore, err)
	}
	return billboards, nil
}
