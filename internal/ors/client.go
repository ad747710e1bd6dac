// Package ors openrouteservice 等时圈 API 客户端
package ors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Ghilba812/ORSPost/internal/config"
	"github.com/Ghilba812/ORSPost/internal/logger"
	"github.com/Ghilba812/ORSPost/internal/metrics"
	"github.com/Ghilba812/ORSPost/internal/model"
)

// Profiles ORS 支持的出行方式
var Profiles = []string{
	"driving-car",
	"driving-hgv",
	"cycling-regular",
	"cycling-road",
	"cycling-mountain",
	"cycling-electric",
	"foot-walking",
	"foot-hiking",
	"wheelchair",
}

// ValidProfile 是否为已知出行方式
func ValidProfile(p string) bool {
	for _, v := range Profiles {
		if v == p {
			return true
		}
	}
	return false
}

// ErrEmptyResult ORS 返回空要素集合
var ErrEmptyResult = errors.New("empty ors result")

// StatusError ORS 返回非 2xx，保留状态码与响应体便于排查
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ors %d: %s", e.StatusCode, e.Body)
}

// IsochroneRequest /v2/isochrones/{profile} 请求体
type IsochroneRequest struct {
	Locations [][2]float64 `json:"locations"`
	Range     []int        `json:"range"`
	RangeType string       `json:"range_type"`
	Smoothing float64      `json:"smoothing"`
	Options   *Options     `json:"options,omitempty"`
}

// Options 路由选项
type Options struct {
	AvoidFeatures []string `json:"avoid_features,omitempty"`
}

// Client ORS 客户端
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
}

// NewClient 按配置创建客户端；RatePerMinute<=0 时不限流
func NewClient(cfg config.ORSConfig) *Client {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RatePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RatePerMinute)), cfg.RatePerMinute)
	}
	return New(cfg.BaseURL, cfg.Key, &http.Client{Timeout: cfg.Timeout}, limiter)
}

// New 直接注入依赖创建客户端（测试与手工装配使用）
func New(baseURL, apiKey string, httpClient *http.Client, limiter *rate.Limiter) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  httpClient,
		limiter: limiter,
	}
}

// Isochrone 请求等时圈；不重试，失败直接返回
func (c *Client) Isochrone(ctx context.Context, profile string, req IsochroneRequest) (*model.FeatureCollection, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("ors rate limit: %w", err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode ors request: %w", err)
	}

	endpoint := c.baseURL + "/v2/isochrones/" + url.PathEscape(profile)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json, application/geo+json")

	t0 := time.Now()
	metrics.ORSRequestsTotal.Inc()
	logger.L().Debug("ors_req", "profile", profile, "range", req.Range, "avoid", req.Options != nil)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		metrics.ORSFailTotal.Inc()
		logger.L().Error("ors_http_error", "err", err)
		return nil, fmt.Errorf("ors request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ORSFailTotal.Inc()
		return nil, fmt.Errorf("read ors response: %w", err)
	}
	dur := time.Since(t0).Milliseconds()
	metrics.ORSDurationMs.Observe(float64(dur))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ORSFailTotal.Inc()
		logger.L().Error("ors_status_error", "status", resp.StatusCode, "duration_ms", dur)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var fc model.FeatureCollection
	if err := json.Unmarshal(raw, &fc); err != nil {
		metrics.ORSFailTotal.Inc()
		return nil, fmt.Errorf("parse ors response: %w", err)
	}
	if len(fc.Features) == 0 {
		metrics.ORSFailTotal.Inc()
		return nil, ErrEmptyResult
	}

	logger.L().Debug("ors_resp", "profile", profile, "features", len(fc.Features), "duration_ms", dur)
	return &fc, nil
}
