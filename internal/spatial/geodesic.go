// Package spatial 球面几何工具：测地缓冲圆与面积计算
package spatial

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// EarthRadiusMeters 地球平均半径（米）
const EarthRadiusMeters = 6371008.8

// DefaultSegments 缓冲圆默认分段数（与 PostGIS quad_segs=8 一致）
const DefaultSegments = 32

// ErrInvalidGeometry 坐标或半径非法
var ErrInvalidGeometry = errors.New("invalid geometry")

// DestinationPoint 从起点沿方位角（度，正北为 0）前进 distance 米后的终点，返回 (lat, lon)
func DestinationPoint(lat, lon, bearing, distance float64) (float64, float64) {
	p := s2.LatLngFromDegrees(lat, lon)
	brng := (s1.Angle(bearing) * s1.Degree).Radians()
	ad := distance / EarthRadiusMeters

	lat1 := p.Lat.Radians()
	lon1 := p.Lng.Radians()

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(ad) +
		math.Cos(lat1)*math.Sin(ad)*math.Cos(brng))
	lon2 := lon1 + math.Atan2(
		math.Sin(brng)*math.Sin(ad)*math.Cos(lat1),
		math.Cos(ad)-math.Sin(lat1)*math.Sin(lat2))

	out := s2.LatLng{Lat: s1.Angle(lat2), Lng: s1.Angle(lon2)}.Normalized()
	return out.Lat.Degrees(), out.Lng.Degrees()
}

// HaversineDistance 两点大圆距离（米）
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// GeodesicBuffer 以 (lon, lat) 为圆心、radiusMeters 为测地半径生成闭合环。
// 顶点按逆时针排列（RFC 7946 外环方向），首尾相同，坐标为 [lon, lat]。
func GeodesicBuffer(lon, lat, radiusMeters float64, segments int) ([][2]float64, error) {
	if !finite(lon) || !finite(lat) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, fmt.Errorf("%w: center (%v, %v)", ErrInvalidGeometry, lon, lat)
	}
	if !finite(radiusMeters) || radiusMeters <= 0 {
		return nil, fmt.Errorf("%w: radius %v", ErrInvalidGeometry, radiusMeters)
	}
	// 半径达到四分之一地球周长（πR/2）时环开始退化
	if radiusMeters >= math.Pi*EarthRadiusMeters/2 {
		return nil, fmt.Errorf("%w: radius %v too large", ErrInvalidGeometry, radiusMeters)
	}
	if segments < 4 {
		segments = DefaultSegments
	}

	ring := make([][2]float64, 0, segments+1)
	step := 360.0 / float64(segments)
	for i := 0; i < segments; i++ {
		// 方位角递减即逆时针
		bearing := math.Mod(360-float64(i)*step, 360)
		la, lo := DestinationPoint(lat, lon, bearing, radiusMeters)
		ring = append(ring, [2]float64{lo, la})
	}
	ring = append(ring, ring[0])
	return ring, nil
}

// RingArea 闭合环的球面面积（平方米），与顶点方向无关
func RingArea(ring [][2]float64) float64 {
	if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		ring = ring[:len(ring)-1]
	}
	if len(ring) < 3 {
		return 0
	}
	pts := make([]s2.Point, 0, len(ring))
	for _, c := range ring {
		pts = append(pts, s2.PointFromLatLng(s2.LatLngFromDegrees(c[1], c[0])))
	}
	area := s2.LoopFromPoints(pts).Area()
	if area > 2*math.Pi {
		area = 4*math.Pi - area
	}
	return area * EarthRadiusMeters * EarthRadiusMeters
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
