package service

import "errors"

// 错误分类；调用方通过 errors.Is 判断
var (
	// ErrValidation 缺少或非法的请求参数，不进行任何计算
	ErrValidation = errors.New("validation error")
	// ErrNotFound 广告牌不存在，在访问缓存与外部服务之前终止
	ErrNotFound = errors.New("not found")
	// ErrGeometry 测地缓冲失败，不写缓存
	ErrGeometry = errors.New("geometry error")
	// ErrUpstream 路由服务返回失败状态或空结果，不写缓存
	ErrUpstream = errors.New("upstream error")
	// ErrStore 持久化失败
	ErrStore = errors.New("store error")
)
