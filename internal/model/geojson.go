package model

import (
	"encoding/json"
	"fmt"
)

// GeoJSON 基础结构
// 遵循 RFC 7946 规范

// Point 表示一个坐标点 [lng, lat]
type Point [2]float64

// Lng 返回经度
func (p Point) Lng() float64 { return p[0] }

// Lat 返回纬度
func (p Point) Lat() float64 { return p[1] }

// Geometry GeoJSON 几何对象。
// Coordinates 保留原始 JSON，缓存读写时不做坐标层面的改写。
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// ParseGeometry 解析 ST_AsGeoJSON / ORS 返回的几何
func ParseGeometry(data []byte) (Geometry, error) {
	var g Geometry
	if err := json.Unmarshal(data, &g); err != nil {
		return Geometry{}, fmt.Errorf("parse geojson: %w", err)
	}
	if g.Type == "" || len(g.Coordinates) == 0 {
		return Geometry{}, fmt.Errorf("parse geojson: missing type or coordinates")
	}
	return g, nil
}

// JSON 序列化为 GeoJSON 文本（用于 ST_GeomFromGeoJSON 参数）
func (g Geometry) JSON() (string, error) {
	b, err := json.Marshal(g)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// IsEmpty 是否为空几何
func (g Geometry) IsEmpty() bool {
	return g.Type == "" || len(g.Coordinates) == 0
}

// Feature GeoJSON 要素
type Feature struct {
	Type       string                 `json:"type"`
	Geometry   Geometry               `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// FeatureCollection GeoJSON 要素集合
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// NewFeature 创建要素
func NewFeature(geom Geometry, props map[string]interface{}) Feature {
	if props == nil {
		props = map[string]interface{}{}
	}
	return Feature{
		Type:       "Feature",
		Geometry:   geom,
		Properties: props,
	}
}

// NewPolygonGeometry 由环坐标创建多边形几何
func NewPolygonGeometry(rings ...[][2]float64) (Geometry, error) {
	if len(rings) == 0 {
		return Geometry{}, fmt.Errorf("polygon without rings")
	}
	coords, err := json.Marshal(rings)
	if err != nil {
		return Geometry{}, fmt.Errorf("marshal polygon: %w", err)
	}
	return Geometry{Type: "Polygon", Coordinates: coords}, nil
}
