package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/Ghilba812/ORSPost/internal/model"
)

func TestGroupPOIs(t *testing.T) {
	rows := []model.POICount{
		{Group: "GroupA", Category: "Cat1", Count: 3},
		{Group: "GroupA", Category: "Cat2", Count: 5},
		{Group: "GroupB", Category: "Cat3", Count: 1},
	}
	want := []model.POIGroup{
		{Group: "GroupA", Total: 8, Items: []model.CategoryCount{{Category: "Cat2", Count: 5}, {Category: "Cat1", Count: 3}}},
		{Group: "GroupB", Total: 1, Items: []model.CategoryCount{{Category: "Cat3", Count: 1}}},
	}
	if got := GroupPOIs(rows); !reflect.DeepEqual(got, want) {
		t.Fatalf("GroupPOIs() = %+v, want %+v", got, want)
	}
}

func TestGroupPOIsStableTies(t *testing.T) {
	rows := []model.POICount{
		{Group: "Education", Category: "School", Count: 2},
		{Group: "Education", Category: "Library", Count: 2},
		{Group: "Health", Category: "Clinic", Count: 4},
		{Group: "Retail", Category: "Market", Count: 4},
	}
	got := GroupPOIs(rows)
	order := []string{got[0].Group, got[1].Group, got[2].Group}
	if !reflect.DeepEqual(order, []string{"Education", "Health", "Retail"}) {
		t.Fatalf("group order = %v", order)
	}
	if got[0].Items[0].Category != "School" || got[0].Items[1].Category != "Library" {
		t.Fatalf("tied items should keep row order: %+v", got[0].Items)
	}
}

func TestGroupPOIsEmpty(t *testing.T) {
	got := GroupPOIs(nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("GroupPOIs(nil) = %#v, want empty non-nil slice", got)
	}
}

func TestAreaWeightedPopulation(t *testing.T) {
	shares := []model.AreaShare{
		{Population: 1000, UnitArea: 100, IntersectionArea: 50}, // 500
		{Population: 300, UnitArea: 30, IntersectionArea: 30},   // 300
		{Population: 999, UnitArea: 0, IntersectionArea: 10},    // 面积为 0，跳过
		{Population: 400, UnitArea: 100, IntersectionArea: 0},   // 无相交，跳过
		{Population: 10, UnitArea: 4, IntersectionArea: 1},      // 2.5
	}
	if got := AreaWeightedPopulation(shares); got != 803 {
		t.Fatalf("AreaWeightedPopulation() = %d, want 803", got)
	}
	if got := AreaWeightedPopulation(nil); got != 0 {
		t.Fatalf("AreaWeightedPopulation(nil) = %d, want 0", got)
	}
}

func TestAggregateWithoutCachedPolygon(t *testing.T) {
	stats := &fakeStats{}
	svc := NewInsightService(newMemoryCache(), stats)

	res, err := svc.Aggregate(context.Background(), model.InsightRequest{
		ReachabilityRequest: timeRequest(7, 10, "normal"),
	})
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if res.Population != 0 || len(res.Categories) != 0 || len(res.POIGroups) != 0 || res.Isochrone != nil {
		t.Fatalf("Aggregate() = %+v, want zero result", res)
	}
	if stats.calls != 0 {
		t.Fatalf("spatial stats must not be queried without a cached polygon")
	}
}

func TestAggregateUsesCachedPolygon(t *testing.T) {
	h := newHarness(bandung)
	ctx := context.Background()
	req := timeRequest(7, 10, "heavy")
	if _, err := h.svc.Reach(ctx, req, false); err != nil {
		t.Fatalf("Reach() error = %v", err)
	}

	stats := &fakeStats{
		shares: []model.AreaShare{{Population: 12000, UnitArea: 4e6, IntersectionArea: 1e6}},
		counts: []model.POICount{
			{Group: "Food", Category: "Cafe", Count: 2},
			{Group: "Food", Category: "Restaurant", Count: 7},
			{Group: "Health", Category: "Pharmacy", Count: 12},
		},
	}
	svc := NewInsightService(h.cache, stats)
	res, err := svc.Aggregate(ctx, model.InsightRequest{
		ReachabilityRequest: req,
		Categories:          []string{"Food", "Health"},
	})
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if res.Isochrone == nil {
		t.Fatalf("Isochrone should be the cached polygon")
	}
	if res.Population != 3000 {
		t.Fatalf("Population = %d, want 3000", res.Population)
	}
	if len(res.Categories) != 3 || res.Categories[0].Category != "Cafe" {
		t.Fatalf("Categories should follow row order: %+v", res.Categories)
	}
	if res.POIGroups[0].Group != "Health" || res.POIGroups[1].Total != 9 {
		t.Fatalf("POIGroups = %+v", res.POIGroups)
	}
	if !reflect.DeepEqual(stats.lastGroups, []string{"Food", "Health"}) {
		t.Fatalf("category filter not forwarded: %v", stats.lastGroups)
	}
	if h.routing.callCount() != 1 {
		t.Fatalf("insights must never trigger computation")
	}
}

func TestAggregateKeyIncludesAvoidance(t *testing.T) {
	h := newHarness(bandung)
	ctx := context.Background()
	if _, err := h.svc.Reach(ctx, timeRequest(7, 10, "normal"), false); err != nil {
		t.Fatalf("Reach() error = %v", err)
	}

	other := timeRequest(7, 10, "normal")
	other.AvoidHighways = true
	svc := NewInsightService(h.cache, &fakeStats{})
	res, err := svc.Aggregate(ctx, model.InsightRequest{ReachabilityRequest: other})
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if res.Isochrone != nil {
		t.Fatalf("avoid-highways request must not reuse the plain polygon")
	}
}

func TestAggregateErrors(t *testing.T) {
	svc := NewInsightService(newMemoryCache(), &fakeStats{})
	if _, err := svc.Aggregate(context.Background(), model.InsightRequest{}); !errors.Is(err, ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}

	h := newHarness(bandung)
	if _, err := h.svc.Reach(context.Background(), timeRequest(7, 10, "normal"), false); err != nil {
		t.Fatalf("Reach() error = %v", err)
	}
	failing := NewInsightService(h.cache, &fakeStats{err: errBoom})
	_, err := failing.Aggregate(context.Background(), model.InsightRequest{ReachabilityRequest: timeRequest(7, 10, "normal")})
	if !errors.Is(err, errBoom) {
		t.Fatalf("error = %v, want stats failure", err)
	}
}
