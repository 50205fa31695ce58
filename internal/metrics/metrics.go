package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency distribution",
		Buckets: prometheus.DefBuckets,
	}, []string{"path", "method"})
	RequestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"path", "method", "status"})
	Inflight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "http_inflight_requests",
		Help: "In-flight HTTP requests",
	})
	DBUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "db_up",
		Help: "Database connectivity (1=up,0=down)",
	})
	RedisUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "redis_up",
		Help: "Redis connectivity (1=up,0=down)",
	})
	EtcdUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "etcd_up",
		Help: "Etcd registration state (1=registered,0=down)",
	})
	KafkaUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kafka_up",
		Help: "Kafka connectivity (1=up,0=down)",
	})
	DependencyCheckDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dependency_check_duration_seconds",
		Help:    "Readiness probe duration per dependency",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
	}, []string{"dep"})
	CacheNilHit = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cache_nil_sentinel_hits_total",
		Help: "Cache hits on the empty-result sentinel",
	})
	MembershipReconcileTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "membership_reconcile_total",
		Help: "Membership reconciliations by result",
	}, []string{"result"})
	MembershipReconcileWrites = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "membership_reconcile_writes",
		Help:    "Rows written (adds+removes) per reconciliation",
		Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
	}, []string{"op"})
	MessageDispatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "message_dispatch_total",
		Help: "Template messages queued to Kafka by result",
	}, []string{"channel", "result"})
	HTTPAccessKafkaEnqueue = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_access_kafka_enqueue_total",
		Help: "Async access-log enqueue attempts",
	}, []string{"result"})
	HTTPAccessKafkaQueueDelayAvg = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "http_access_kafka_queue_delay_avg_seconds",
		Help:    "Average queue residency of flushed access-log batches",
		Buckets: prometheus.DefBuckets,
	})
	HTTPAccessKafkaQueueDelayMax = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "http_access_kafka_queue_delay_max_seconds",
		Help:    "Max queue residency of flushed access-log batches",
		Buckets: prometheus.DefBuckets,
	})
)
