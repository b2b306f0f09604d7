// Package metrics Prometheus 指标
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "edustream"

// Metrics 服务的全部指标，使用独立的 Registry
type Metrics struct {
	registry         *prometheus.Registry
	verdicts         *prometheus.CounterVec
	permissionChecks *prometheus.CounterVec
	httpRequests     *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "moderation",
			Name:      "verdicts_total",
			Help:      "Moderation verdicts by content kind and outcome.",
		}, []string{"kind", "outcome"}),
		permissionChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rbac",
			Name:      "permission_checks_total",
			Help:      "Permission checks by permission and outcome.",
		}, []string{"permission", "outcome"}),
		httpRequests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		m.verdicts,
		m.permissionChecks,
		m.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveVerdict 记录一次审核结果
func (m *Metrics) ObserveVerdict(kind string, allowed bool) {
	outcome := "rejected"
	if allowed {
		outcome = "approved"
	}
	m.verdicts.WithLabelValues(kind, outcome).Inc()
}

// ObservePermissionCheck 实现 rbac.CheckObserver
func (m *Metrics) ObservePermissionCheck(permission, outcome string) {
	m.permissionChecks.WithLabelValues(permission, outcome).Inc()
}

// Middleware 记录请求耗时，route 使用注册时的路径模板
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler /metrics 的处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry 供测试读取
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
