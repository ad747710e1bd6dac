package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Mode 可达范围计算方式
type Mode string

const (
	ModeTime     Mode = "time"
	ModeDistance Mode = "distance"
)

// Provenance 结果来源标记
type Provenance string

const (
	// FromCache 命中缓存，未重新计算
	FromCache Provenance = "cache"
	// FromExternal 时间模式，经外部路由服务计算
	FromExternal Provenance = "external"
	// FromGeometric 距离模式，经测地缓冲计算
	FromGeometric Provenance = "geometric"
)

// 请求默认值
const (
	DefaultMinutes    = 10
	DefaultDistanceKm = 2.0
	DefaultProfile    = "driving-car"
	DefaultSmoothing  = 0.5
	DefaultTraffic    = "normal"
)

// FlexBool 宽松布尔：接受 true/false 与 "true"/"1"/"false"/"0"，数字等其他值视为 false
type FlexBool bool

func (f *FlexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = FlexBool(b)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*f = false
		return nil
	}
	*f = s == "true" || s == "1"
	return nil
}

// ReachabilityRequest 可达范围（等时圈 / 半径）请求
type ReachabilityRequest struct {
	BillboardID int64    `json:"billboard_id"`
	Mode        Mode     `json:"mode"`
	Minutes     *float64 `json:"minutes"`
	DistanceKm  *float64 `json:"distance_km"`
	Profile     string   `json:"profile"`
	Smoothing   *float64 `json:"smoothing"`
	Traffic     string   `json:"traffic"`
	// 避开高速
	AvoidHighways FlexBool `json:"avoidHighways"`
	// 跳过缓存读取（仍会写回缓存）
	NoCache FlexBool `json:"nocache"`
}

// ApplyDefaults 填充缺省字段
func (r *ReachabilityRequest) ApplyDefaults() {
	if r.Mode == "" {
		r.Mode = ModeTime
	}
	r.Mode = Mode(strings.ToLower(string(r.Mode)))
	if r.Minutes == nil {
		m := float64(DefaultMinutes)
		r.Minutes = &m
	}
	if r.DistanceKm == nil {
		d := DefaultDistanceKm
		r.DistanceKm = &d
	}
	if r.Profile == "" {
		r.Profile = DefaultProfile
	}
	if r.Smoothing == nil {
		s := DefaultSmoothing
		r.Smoothing = &s
	}
	// 路况标签原样保留：未知标签按系数 1.0 计算，并以原始文本进入缓存键
	if r.Traffic == "" {
		r.Traffic = DefaultTraffic
	}
}

// CacheKey 缓存键：决定多边形形状的全部参数。
// 非当前模式的范围字段为 0，时间与距离缓存互不冲突。
type CacheKey struct {
	BillboardID   int64
	Profile       string
	Mode          Mode
	RangeSeconds  int
	RangeMeters   int
	AvoidHighways bool
	Traffic       string
}

// AvoidHighwaysString 与 opts->>'avoidHighways' 对齐的字符串形式
func (k CacheKey) AvoidHighwaysString() string {
	return strconv.FormatBool(k.AvoidHighways)
}

// String 稳定的文本形式，用作 Redis 键与日志字段
func (k CacheKey) String() string {
	return "iso:" + strconv.FormatInt(k.BillboardID, 10) +
		":" + k.Profile +
		":" + string(k.Mode) +
		":" + strconv.Itoa(k.RangeSeconds) +
		":" + strconv.Itoa(k.RangeMeters) +
		":" + k.AvoidHighwaysString() +
		":" + k.Traffic
}

// NormalizedKey 规范化后的请求参数
type NormalizedKey struct {
	Key CacheKey
	// 吸附后的分钟数（5 的倍数，5..30）
	Minutes int
	// 生效距离（公里），时间模式为 0
	DistanceKm float64
	// 路况折算系数（仅时间模式生效）
	TrafficFactor float64
	Smoothing     float64
}

// ReachabilityResult 可达范围结果
type ReachabilityResult struct {
	From    Provenance `json:"from"`
	Feature Feature    `json:"feature"`
}
