package service

import (
	"context"
	"math"
	"sort"

	"github.com/Ghilba812/ORSPost/internal/logger"
	"github.com/Ghilba812/ORSPost/internal/metrics"
	"github.com/Ghilba812/ORSPost/internal/model"
)

// SpatialStats 圈内人口与 POI 的空间查询
type SpatialStats interface {
	// AreaShares 与多边形相交的人口单元及其面积（平方米）
	AreaShares(ctx context.Context, geom model.Geometry) ([]model.AreaShare, error)
	// POICounts 落在多边形内的 POI 计数，按 group ASC, count DESC 排序；groups 为空表示不过滤
	POICounts(ctx context.Context, geom model.Geometry, groups []string) ([]model.POICount, error)
}

// InsightService 圈内统计。只读取已缓存的多边形，从不触发计算。
type InsightService struct {
	cache CacheStore
	stats SpatialStats
}

// NewInsightService 创建统计服务
func NewInsightService(cache CacheStore, stats SpatialStats) *InsightService {
	return &InsightService{cache: cache, stats: stats}
}

// Aggregate 统计缓存多边形内的人口与 POI；缓存中没有多边形时返回零值结果
func (s *InsightService) Aggregate(ctx context.Context, req model.InsightRequest) (*model.InsightResult, error) {
	r := req.ReachabilityRequest
	r.ApplyDefaults()
	if err := ValidateRequest(&r); err != nil {
		metrics.InsightRequestsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}
	nk := Normalize(r)

	geom, err := s.cache.Lookup(ctx, nk.Key)
	if err != nil {
		metrics.InsightRequestsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}
	if geom == nil || geom.IsEmpty() {
		metrics.InsightRequestsTotal.WithLabelValues("no_isochrone").Inc()
		logger.L().Debug("insight_no_isochrone", "key", nk.Key.String())
		return model.EmptyInsight(), nil
	}

	shares, err := s.stats.AreaShares(ctx, *geom)
	if err != nil {
		metrics.InsightRequestsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}
	rows, err := s.stats.POICounts(ctx, *geom, req.Categories)
	if err != nil {
		metrics.InsightRequestsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	categories := make([]model.CategoryCount, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, model.CategoryCount{Category: row.Category, Count: row.Count})
	}

	metrics.InsightRequestsTotal.WithLabelValues("ok").Inc()
	return &model.InsightResult{
		Population: AreaWeightedPopulation(shares),
		Categories: categories,
		POIGroups:  GroupPOIs(rows),
		Isochrone:  geom,
	}, nil
}

// AreaWeightedPopulation 按相交面积比例累加人口；单元面积为 0 或无相交的单元跳过
func AreaWeightedPopulation(shares []model.AreaShare) int64 {
	var total float64
	for _, s := range shares {
		if s.UnitArea <= 0 || s.IntersectionArea <= 0 {
			continue
		}
		total += s.Population * (s.IntersectionArea / s.UnitArea)
	}
	if total <= 0 || math.IsNaN(total) {
		return 0
	}
	return int64(math.Round(total))
}

// GroupPOIs 组装嵌套分组：组按总数降序，组内类别按数量降序，并列时保持原始顺序
func GroupPOIs(rows []model.POICount) []model.POIGroup {
	groups := make([]model.POIGroup, 0)
	index := make(map[string]int)
	for _, r := range rows {
		i, ok := index[r.Group]
		if !ok {
			i = len(groups)
			index[r.Group] = i
			groups = append(groups, model.POIGroup{Group: r.Group, Items: []model.CategoryCount{}})
		}
		groups[i].Total += r.Count
		groups[i].Items = append(groups[i].Items, model.CategoryCount{Category: r.Category, Count: r.Count})
	}

	for i := range groups {
		items := groups[i].Items
		sort.SliceStable(items, func(a, b int) bool { return items[a].Count > items[b].Count })
	}
	sort.SliceStable(groups, func(a, b int) bool { return groups[a].Total > groups[b].Total })
	return groups
}
