package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests 按路由模板、方法和状态码统计请求数
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orion_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "orion_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"route", "method"},
	)

	// Toggles 统计点赞/收藏/关注的切换结果
	// Labels:
	//   - kind: "like", "favorite", "follow"
	//   - result: "created", "removed"
	Toggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orion_toggle_total",
			Help: "Total number of relation toggles",
		},
		[]string{"kind", "result"},
	)

	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orion_notifications_created_total",
			Help: "Total number of notifications created",
		},
		[]string{"type"},
	)
)
