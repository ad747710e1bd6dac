package service

import (
	"context"
	"fmt"

	"github.com/Ghilba812/ORSPost/internal/model"
	"github.com/Ghilba812/ORSPost/internal/ors"
	"github.com/Ghilba812/ORSPost/internal/spatial"
)

// PolygonProvider 计算可达范围多边形
type PolygonProvider interface {
	Compute(ctx context.Context, b model.Billboard, nk model.NormalizedKey) (model.Geometry, model.Provenance, error)
}

// RoutingClient 外部等时圈服务
type RoutingClient interface {
	Isochrone(ctx context.Context, profile string, req ors.IsochroneRequest) (*model.FeatureCollection, error)
}

// ReachProvider 距离模式走测地缓冲，时间模式委托路由服务。
// 路由服务本身不感知路况，路况已在规范化阶段折算进时间预算。
type ReachProvider struct {
	routing  RoutingClient
	segments int
}

// NewReachProvider 创建多边形提供者
func NewReachProvider(routing RoutingClient, segments int) *ReachProvider {
	if segments < 4 {
		segments = spatial.DefaultSegments
	}
	return &ReachProvider{routing: routing, segments: segments}
}

// Compute 按模式分派
func (p *ReachProvider) Compute(ctx context.Context, b model.Billboard, nk model.NormalizedKey) (model.Geometry, model.Provenance, error) {
	switch nk.Key.Mode {
	case model.ModeDistance:
		g, err := p.buffer(b, nk.Key.RangeMeters)
		return g, model.FromGeometric, err
	case model.ModeTime:
		g, err := p.isochrone(ctx, b, nk)
		return g, model.FromExternal, err
	default:
		return model.Geometry{}, "", fmt.Errorf("%w: unknown mode %q", ErrValidation, nk.Key.Mode)
	}
}

func (p *ReachProvider) buffer(b model.Billboard, meters int) (model.Geometry, error) {
	loc := b.Location()
	ring, err := spatial.GeodesicBuffer(loc.Lng(), loc.Lat(), float64(meters), p.segments)
	if err != nil {
		return model.Geometry{}, fmt.Errorf("%w: buffer billboard %d: %w", ErrGeometry, b.ID, err)
	}
	g, err := model.NewPolygonGeometry(ring)
	if err != nil {
		return model.Geometry{}, fmt.Errorf("%w: %w", ErrGeometry, err)
	}
	return g, nil
}

func (p *ReachProvider) isochrone(ctx context.Context, b model.Billboard, nk model.NormalizedKey) (model.Geometry, error) {
	req := ors.IsochroneRequest{
		Locations: [][2]float64{[2]float64(b.Location())},
		Range:     []int{nk.Key.RangeSeconds},
		RangeType: "time",
		Smoothing: nk.Smoothing,
	}
	if nk.Key.AvoidHighways {
		req.Options = &ors.Options{AvoidFeatures: []string{"highways"}}
	}

	fc, err := p.routing.Isochrone(ctx, nk.Key.Profile, req)
	if err != nil {
		return model.Geometry{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if fc == nil || len(fc.Features) == 0 {
		return model.Geometry{}, fmt.Errorf("%w: %w", ErrUpstream, ors.ErrEmptyResult)
	}
	g := fc.Features[0].Geometry
	if g.IsEmpty() {
		return model.Geometry{}, fmt.Errorf("%w: ors feature without geometry", ErrUpstream)
	}
	return g, nil
}
