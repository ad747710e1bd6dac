package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Ghilba812/ORSPost/internal/logger"
	"github.com/Ghilba812/ORSPost/internal/metrics"
	"github.com/Ghilba812/ORSPost/internal/model"
	"github.com/Ghilba812/ORSPost/internal/ors"
)

// State 单个请求的处理阶段
type State string

const (
	StateNormalizing State = "NORMALIZING"
	StateResolving   State = "RESOLVING"
	StateCacheCheck  State = "CACHE_CHECK"
	StateComputing   State = "COMPUTING"
	StateCacheWrite  State = "CACHE_WRITE"
	StateDone        State = "DONE"
	StateFailed      State = "FAILED"
)

// IsochroneService 可达范围编排：规范化 → 查缓存 →（未命中）计算 → 写缓存。
// 不加进程内锁；同键并发未命中可能各自计算，由缓存的唯一约束保证只留一行。
type IsochroneService struct {
	billboards BillboardRegistry
	cache      CacheStore
	provider   PolygonProvider
}

// NewIsochroneService 创建等时圈服务
func NewIsochroneService(billboards BillboardRegistry, cache CacheStore, provider PolygonProvider) *IsochroneService {
	return &IsochroneService{
		billboards: billboards,
		cache:      cache,
		provider:   provider,
	}
}

// ValidateRequest 校验必填与枚举参数（需先 ApplyDefaults）
func ValidateRequest(req *model.ReachabilityRequest) error {
	if req.BillboardID <= 0 {
		return fmt.Errorf("%w: billboard_id is required", ErrValidation)
	}
	if req.Mode != model.ModeTime && req.Mode != model.ModeDistance {
		return fmt.Errorf("%w: mode must be time or distance, got %q", ErrValidation, req.Mode)
	}
	if !ors.ValidProfile(req.Profile) {
		return fmt.Errorf("%w: unknown profile %q", ErrValidation, req.Profile)
	}
	return nil
}

// Reach 计算或读取可达范围。bypass 为 true 时跳过缓存读取，但结果仍写回缓存。
func (s *IsochroneService) Reach(ctx context.Context, req model.ReachabilityRequest, bypass bool) (*model.ReachabilityResult, error) {
	t0 := time.Now()
	defer func() {
		metrics.IsochroneDurationMs.Observe(float64(time.Since(t0).Milliseconds()))
	}()

	state := StateNormalizing
	fail := func(err error) (*model.ReachabilityResult, error) {
		metrics.IsochroneRequestsTotal.WithLabelValues("failed").Inc()
		logger.L().Error("isochrone_failed", "state", state, "billboard_id", req.BillboardID, "err", err)
		return nil, err
	}

	req.ApplyDefaults()
	if err := ValidateRequest(&req); err != nil {
		return fail(err)
	}
	nk := Normalize(req)

	state = StateResolving
	b, err := s.billboards.Get(ctx, req.BillboardID)
	if err != nil {
		return fail(err)
	}

	if !bypass {
		state = StateCacheCheck
		g, err := s.cache.Lookup(ctx, nk.Key)
		if err != nil {
			return fail(err)
		}
		if g != nil {
			metrics.CacheHitsTotal.Inc()
			metrics.IsochroneRequestsTotal.WithLabelValues(string(model.FromCache)).Inc()
			logger.L().Debug("isochrone_cache_hit", "key", nk.Key.String())
			return buildResult(model.FromCache, nk, *g), nil
		}
		metrics.CacheMissesTotal.Inc()
		logger.L().Debug("isochrone_cache_miss", "key", nk.Key.String())
	}

	state = StateComputing
	geom, from, err := s.provider.Compute(ctx, *b, nk)
	if err != nil {
		return fail(err)
	}

	state = StateCacheWrite
	saved, err := s.cache.Upsert(ctx, nk.Key, geom)
	if err != nil {
		return fail(err)
	}
	metrics.CacheWritesTotal.Inc()

	state = StateDone
	metrics.IsochroneRequestsTotal.WithLabelValues(string(from)).Inc()
	logger.L().Info("isochrone_computed", "key", nk.Key.String(), "from", from, "bypass", bypass,
		"duration_ms", time.Since(t0).Milliseconds())
	return buildResult(from, nk, *saved), nil
}

func buildResult(from model.Provenance, nk model.NormalizedKey, geom model.Geometry) *model.ReachabilityResult {
	k := nk.Key
	return &model.ReachabilityResult{
		From: from,
		Feature: model.NewFeature(geom, map[string]interface{}{
			"billboard_id":  k.BillboardID,
			"mode":          k.Mode,
			"profile":       k.Profile,
			"avoidHighways": k.AvoidHighways,
			"traffic":       k.Traffic,
			"minutes":       nk.Minutes,
			"distance_km":   float64(k.RangeMeters) / 1000,
			"range_s":       k.RangeSeconds,
		}),
	}
}
