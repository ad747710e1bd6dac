package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Ghilba812/ORSPost/internal/model"
	"github.com/Ghilba812/ORSPost/internal/ors"
)

func TestProviderTimeModeRequest(t *testing.T) {
	routing := &fakeRouting{}
	p := NewReachProvider(routing, 0)
	nk := Normalize(model.ReachabilityRequest{
		BillboardID: 7,
		Mode:        model.ModeTime,
		Minutes:     ptr(30.0),
		Profile:     "foot-walking",
		Smoothing:   ptr(0.8),
		Traffic:     "light",
	})

	g, from, err := p.Compute(context.Background(), bandung, nk)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if from != model.FromExternal || g.Type != "Polygon" {
		t.Fatalf("Compute() = %q, %q", from, g.Type)
	}
	req := routing.lastReq
	if routing.lastProfile != "foot-walking" {
		t.Fatalf("profile = %q", routing.lastProfile)
	}
	if req.RangeType != "time" || req.Range[0] != 1350 || req.Smoothing != 0.8 {
		t.Fatalf("request = %+v", req)
	}
	if req.Locations[0] != [2]float64{107.61, -6.91} {
		t.Fatalf("locations = %v, want [lon, lat]", req.Locations)
	}
	if req.Options != nil {
		t.Fatalf("options must be nil without avoid-highways")
	}
}

func TestProviderWrapsUpstreamErrors(t *testing.T) {
	routing := &fakeRouting{err: &ors.StatusError{StatusCode: 500, Body: "internal"}}
	p := NewReachProvider(routing, 32)
	nk := Normalize(timeRequest(7, 10, "normal"))

	_, _, err := p.Compute(context.Background(), bandung, nk)
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("error = %v, want ErrUpstream", err)
	}
	if want := "upstream error: ors 500: internal"; err.Error() != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}
}

func TestProviderDistanceModeRing(t *testing.T) {
	routing := &fakeRouting{}
	p := NewReachProvider(routing, 16)
	nk := Normalize(model.ReachabilityRequest{BillboardID: 7, Mode: model.ModeDistance, DistanceKm: ptr(1.0)})

	g, from, err := p.Compute(context.Background(), bandung, nk)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if from != model.FromGeometric || g.Type != "Polygon" {
		t.Fatalf("Compute() = %q, %q", from, g.Type)
	}
	if routing.callCount() != 0 {
		t.Fatalf("distance mode must not call routing")
	}
}
