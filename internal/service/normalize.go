package service

import (
	"math"

	"github.com/Ghilba812/ORSPost/internal/model"
)

// MaxRangeMeters 距离模式的半径上限（约四分之一地球周长以内，测地缓冲仍有效）
const MaxRangeMeters = 10_000_000

// AllowedMinutes 可选的时间阈值（分钟），升序
var AllowedMinutes = []int{5, 10, 15, 20, 25, 30}

// trafficFactors 路况折算系数：以缩短时间预算近似拥堵
var trafficFactors = map[string]float64{
	"normal":   1.0,
	"light":    0.75,
	"moderate": 0.5,
	"heavy":    0.25,
}

// TrafficFactor 未知路况按 1.0 处理
func TrafficFactor(level string) float64 {
	if f, ok := trafficFactors[level]; ok {
		return f
	}
	return 1.0
}

// SnapMinutes 将分钟数限制在 [5,30] 并吸附到最近的 5 的倍数。
// 等距时保留升序遍历中先出现的较小值。
func SnapMinutes(m float64) int {
	v := m
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = model.DefaultMinutes
	}
	if v < 5 {
		v = 5
	}
	if v > 30 {
		v = 30
	}
	best := AllowedMinutes[0]
	for _, c := range AllowedMinutes {
		if math.Abs(float64(c)-v) < math.Abs(float64(best)-v) {
			best = c
		}
	}
	return best
}

// Normalize 将请求规范化为缓存键；纯函数，调用前应已 ApplyDefaults
func Normalize(req model.ReachabilityRequest) model.NormalizedKey {
	req.ApplyDefaults()

	minutes := SnapMinutes(*req.Minutes)
	factor := TrafficFactor(req.Traffic)

	key := model.CacheKey{
		BillboardID:   req.BillboardID,
		Profile:       req.Profile,
		Mode:          req.Mode,
		AvoidHighways: bool(req.AvoidHighways),
		Traffic:       req.Traffic,
	}

	out := model.NormalizedKey{
		Minutes:       minutes,
		TrafficFactor: 1.0,
		Smoothing:     *req.Smoothing,
	}

	switch req.Mode {
	case model.ModeTime:
		key.RangeSeconds = clampRange(math.Round(float64(minutes)*60*factor), MaxRangeMeters)
		out.TrafficFactor = factor
	case model.ModeDistance:
		km := *req.DistanceKm
		if math.IsNaN(km) || math.IsInf(km, 0) {
			km = model.DefaultDistanceKm
		}
		key.RangeMeters = clampRange(math.Round(km*1000), MaxRangeMeters)
		out.DistanceKm = float64(key.RangeMeters) / 1000
	}

	out.Key = key
	return out
}

// clampRange 限制在 [1, limit]，转换为 int 前完成，避免溢出
func clampRange(v float64, limit int) int {
	if v < 1 {
		return 1
	}
	if v > float64(limit) {
		return limit
	}
	return int(v)
}
