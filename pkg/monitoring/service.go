package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sdkexamples/sdkexamples/pkg/common"
	prometheus_metrics "github.com/slok/go-http-metrics/metrics/prometheus"
	"github.com/slok/go-http-metrics/middleware"
	"github.com/slok/go-http-metrics/middleware/std"
)

const (
	MetricsNamespace      = "pageviews"
	collectorSubsystem    = "collector"
	githubSubsystem       = "github"
	metricsHandlerID      = "metrics"
	repoLabel             = "repo"
	resultLabel           = "result"
	sinkLabel             = "sink"
	resultSuccess         = "success"
	resultFailure         = "failure"
	metricsDurationPrefix = "http"
)

type Service struct {
	Registry          *prometheus.Registry
	httpMiddleware    middleware.Middleware
	fetchCounter      *prometheus.CounterVec
	storedCounter     *prometheus.CounterVec
	storeErrorCounter *prometheus.CounterVec
	hitRatioGauge     prometheus.Gauge
}

var _ common.CollectorMetrics = (*Service)(nil)

func NewService() *Service {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	fetchCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Subsystem: githubSubsystem,
			Name:      "fetch_total",
			Help:      "Total number of traffic fetches per repository",
		},
		[]string{repoLabel, resultLabel},
	)
	reg.MustRegister(fetchCounter)

	storedCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Subsystem: collectorSubsystem,
			Name:      "stored_total",
			Help:      "Total number of page view records stored",
		},
		[]string{sinkLabel},
	)
	reg.MustRegister(storedCounter)

	storeErrorCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Subsystem: collectorSubsystem,
			Name:      "store_error_total",
			Help:      "Total number of failed page view batches",
		},
		[]string{sinkLabel},
	)
	reg.MustRegister(storeErrorCounter)

	hitRatioGauge := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Subsystem: githubSubsystem,
			Name:      "cache_hit_ratio",
			Help:      "Hit ratio of the conditional request cache",
		},
	)
	reg.MustRegister(hitRatioGauge)

	recorder := prometheus_metrics.NewRecorder(prometheus_metrics.Config{
		Prefix:          metricsDurationPrefix,
		Registry:        reg,
		DurationBuckets: []float64{.05, .1, .5, 1, 2.5},
	})

	return &Service{
		Registry: reg,
		httpMiddleware: middleware.New(middleware.Config{
			Service:                MetricsNamespace,
			GroupedStatus:          true,
			DisableMeasureSize:     true,
			DisableMeasureInflight: true,
			Recorder:               recorder,
		}),
		fetchCounter:      fetchCounter,
		storedCounter:     storedCounter,
		storeErrorCounter: storeErrorCounter,
		hitRatioGauge:     hitRatioGauge,
	}
}

func (s *Service) Handler(h http.Handler) http.Handler {
	return std.Handler(metricsHandlerID, s.httpMiddleware, h)
}

func (s *Service) ObserveFetch(repo string, ok bool) {
	result := resultFailure
	if ok {
		result = resultSuccess
	}

	s.fetchCounter.With(prometheus.Labels{
		repoLabel:   repo,
		resultLabel: result,
	}).Inc()
}

func (s *Service) ObserveStore(sink string, count int, err error) {
	if err != nil {
		s.storeErrorCounter.With(prometheus.Labels{sinkLabel: sink}).Inc()
		return
	}

	s.storedCounter.With(prometheus.Labels{sinkLabel: sink}).Add(float64(count))
}

func (s *Service) ObserveCacheHitRatio(ratio float64) {
	s.hitRatioGauge.Set(ratio)
}

func (s *Service) Setup(mux *http.ServeMux) {
	mux.Handle(http.MethodGet+" /metrics", s.Handler(promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{Registry: s.Registry})))
}

