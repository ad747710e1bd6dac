package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Ghilba812/ORSPost/internal/model"
	"github.com/Ghilba812/ORSPost/internal/ors"
)

type fakeRegistry struct {
	mu         sync.Mutex
	billboards map[int64]model.Billboard
	calls      int
}

func newFakeRegistry(bs ...model.Billboard) *fakeRegistry {
	r := &fakeRegistry{billboards: make(map[int64]model.Billboard)}
	for _, b := range bs {
		r.billboards[b.ID] = b
	}
	return r
}

func (r *fakeRegistry) Get(_ context.Context, id int64) (*model.Billboard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	b, ok := r.billboards[id]
	if !ok {
		return nil, fmt.Errorf("%w: billboard %d", ErrNotFound, id)
	}
	return &b, nil
}

func (r *fakeRegistry) List(_ context.Context) ([]model.Billboard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Billboard, 0, len(r.billboards))
	for _, b := range r.billboards {
		out = append(out, b)
	}
	return out, nil
}

// memoryCache 以完整缓存键为唯一键，模拟 iso_cache 的唯一索引
type memoryCache struct {
	mu        sync.Mutex
	entries   map[model.CacheKey]model.Geometry
	lookups   int
	upserts   int
	upsertErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[model.CacheKey]model.Geometry)}
}

func (c *memoryCache) Lookup(_ context.Context, key model.CacheKey) (*model.Geometry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lookups++
	g, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (c *memoryCache) Upsert(_ context.Context, key model.CacheKey, geom model.Geometry) (*model.Geometry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.upserts++
	if c.upsertErr != nil {
		return nil, c.upsertErr
	}
	c.entries[key] = geom
	g := c.entries[key]
	return &g, nil
}

func (c *memoryCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

const testPolygon = `{"type":"Polygon","coordinates":[[[107.6,-6.9],[107.62,-6.9],[107.62,-6.92],[107.6,-6.9]]]}`

// fakeRouting 记录调用次数与最后一次请求
type fakeRouting struct {
	mu          sync.Mutex
	calls       int
	lastProfile string
	lastReq     ors.IsochroneRequest
	err         error
	empty       bool
}

func (f *fakeRouting) Isochrone(_ context.Context, profile string, req ors.IsochroneRequest) (*model.FeatureCollection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastProfile = profile
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	fc := &model.FeatureCollection{Type: "FeatureCollection", Features: []model.Feature{}}
	if f.empty {
		return fc, nil
	}
	g, err := model.ParseGeometry([]byte(testPolygon))
	if err != nil {
		return nil, err
	}
	fc.Features = append(fc.Features, model.NewFeature(g, nil))
	return fc, nil
}

func (f *fakeRouting) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeStats struct {
	shares     []model.AreaShare
	counts     []model.POICount
	calls      int
	lastGroups []string
	err        error
}

func (s *fakeStats) AreaShares(_ context.Context, _ model.Geometry) ([]model.AreaShare, error) {
	s.calls++
	return s.shares, s.err
}

func (s *fakeStats) POICounts(_ context.Context, _ model.Geometry, groups []string) ([]model.POICount, error) {
	s.calls++
	s.lastGroups = groups
	return s.counts, s.err
}

var errBoom = errors.New("boom")

func ptr[T any](v T) *T { return &v }
