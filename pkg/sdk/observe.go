package healthbridge

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/medwayhorizons/healthbridge/internal/domain/catalog"
)

// sdkMetrics holds prometheus metrics registered for the SDK.
type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	degraded   *prometheus.CounterVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthbridge",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "Total SDK operations by type, catalog collection and status.",
		}, []string{"operation", "collection", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "healthbridge",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK operation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "collection"}),
		degraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthbridge",
			Subsystem: "sdk",
			Name:      "degraded_results_total",
			Help:      "SDK results served with a load-failure notice.",
		}, []string{"operation", "collection"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.degraded); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses an existing one.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("healthbridge: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("healthbridge: register metric: %w", err)
	}
	return nil
}

// opEvent describes one finished SDK call.
type opEvent struct {
	op         string
	collection Kind // empty for calls spanning collections
	start      time.Time
	err        error
	notices    []string
}

// collectionLabel keeps label cardinality bounded to the known collections.
func (e opEvent) collectionLabel() string {
	if e.collection == "" {
		return "none"
	}
	k, err := catalog.ParseKind(string(e.collection))
	if err != nil {
		return "unknown"
	}
	return k.Collection()
}

// observer provides logging and metrics for SDK operations.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	var m *sdkMetrics
	if reg != nil {
		var err error
		m, err = newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
	}
	return &observer{logger: logger, metrics: m}, nil
}

func (o *observer) observe(e opEvent) {
	if o == nil {
		return
	}
	dur := time.Since(e.start)
	col := e.collectionLabel()

	if o.metrics != nil {
		status := "ok"
		if e.err != nil {
			status = "error"
		}
		o.metrics.operations.WithLabelValues(e.op, col, status).Inc()
		o.metrics.duration.WithLabelValues(e.op, col).Observe(dur.Seconds())
		if len(e.notices) > 0 {
			o.metrics.degraded.WithLabelValues(e.op, col).Inc()
		}
	}

	if o.logger == nil {
		return
	}
	switch {
	case e.err != nil:
		o.logger.Warn("operation failed",
			"op", e.op, "collection", col, "duration", dur, "error", e.err)
	case len(e.notices) > 0:
		o.logger.Warn("operation degraded",
			"op", e.op, "collection", col, "duration", dur, "notices", e.notices)
	default:
		o.logger.Debug("operation completed",
			"op", e.op, "collection", col, "duration", dur)
	}
}
