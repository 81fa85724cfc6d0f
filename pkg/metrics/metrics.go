// Package metrics prometheus metrics of certhub
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/whitekid/goxp/log"
	"gorm.io/gorm"
)

const namespace = "certhub"

var (
	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "http",
		Name:      "request_duration_seconds",
		Help:      "A histogram of duration, in seconds, handling HTTP requests.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15),
	}, []string{"method", "path", "status"})

	// BulkBatches number of processed bulk batches by operation
	BulkBatches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "bulk",
		Name:      "batches_total",
		Help:      "The total number of processed bulk batches",
	}, []string{"operation"})

	// BulkItems number of bulk items by operation and result
	BulkItems = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "bulk",
		Name:      "items_total",
		Help:      "The total number of processed bulk items",
	}, []string{"operation", "result"})

	// ChainFetches AIA fetches by result
	ChainFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "chain",
		Name:      "fetches_total",
		Help:      "The total number of AIA certificate fetches",
	}, []string{"result"})

	// IssuerLinks number of linked issuer
	IssuerLinks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "chain",
		Name:      "issuer_links_total",
		Help:      "The total number of certificates linked to its issuer",
	})

	// ComplianceChecks compliance evaluation by result status
	ComplianceChecks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "compliance",
		Name:      "checks_total",
		Help:      "The total number of compliance checks",
	}, []string{"result"})

	// WorkerTasks worker pool tasks by result
	WorkerTasks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "worker",
		Name:      "tasks_total",
		Help:      "The total number of submitted worker tasks",
	}, []string{"result"})

	// HistoryEvents history events by result
	HistoryEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "history",
		Name:      "events_total",
		Help:      "The total number of certificate history events",
	}, []string{"result"})
)

// NewRegistry create registry with certhub metrics and database collectors
func NewRegistry(db *gorm.DB) *prometheus.Registry {
	registry := prometheus.NewRegistry()

	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(requestDuration, BulkBatches, BulkItems, ChainFetches, IssuerLinks, ComplianceChecks, WorkerTasks, HistoryEvents)

	if db != nil {
		if rawDB, err := db.DB(); err == nil {
			registry.MustRegister(collectors.NewDBStatsCollector(rawDB, db.Dialector.Name()))
		}
		registry.MustRegister(newCertificateCollector(db))
	}

	return registry
}

// certificateCollector certificates count by status
type certificateCollector struct {
	db   *gorm.DB
	desc *prometheus.Desc
}

func newCertificateCollector(db *gorm.DB) *certificateCollector {
	return &certificateCollector{
		db:   db,
		desc: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "certificates"), "The total number of certificates", []string{"status"}, nil),
	}
}

func (c *certificateCollector) Describe(ch chan<- *prometheus.Desc) {
	prometheus.DescribeByCollect(c, ch)
}

func (c *certificateCollector) Collect(ch chan<- prometheus.Metric) {
	var results []struct {
		Status string
		Count  int64
	}

	if err := c.db.Table(c.db.NamingStrategy.TableName("Certificate")).
		Select("status, COUNT(*) AS count").Group("status").Scan(&results).Error; err != nil {
		log.Errorf("certificate metrics: %v", err)
		return
	}

	for _, r := range results {
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(r.Count), r.Status)
	}
}

// Middleware emits request_duration_seconds on every request
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			t := time.Now()

			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}

			requestDuration.With(prometheus.Labels{
				"method": c.Request().Method,
				"path":   c.Path(),
				"status": strconv.Itoa(status),
			}).Observe(time.Since(t).Seconds())

			return err
		}
	}
}

// Handler serves metrics from registry
func Handler(registry *prometheus.Registry) echo.HandlerFunc {
	return echo.WrapHandler(promhttp.InstrumentMetricHandler(registry, promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
}
