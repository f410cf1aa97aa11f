package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"ocm-mapper/node"
)

const instrumentationName = "ocm-mapper/internal/telemetry"

// Fetch outcomes used as the "outcome" label.
const (
	OutcomeHit   = "hit"
	OutcomeMiss  = "miss"
	OutcomeError = "error"
)

// Metrics holds the resolver collectors.
type Metrics struct {
	Fetches  *prometheus.CounterVec
	Duration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ocm",
			Subsystem: "resolver",
			Name:      "fetches_total",
			Help:      "Node fetches by outcome.",
		}, []string{"outcome"}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ocm",
			Subsystem: "resolver",
			Name:      "fetch_duration_seconds",
			Help:      "Node fetch latency.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	if reg != nil {
		reg.MustRegister(m.Fetches, m.Duration)
	}

	return m
}

// Resolver decorates a node.Resolver.
type Resolver struct {
	next    node.Resolver
	metrics *Metrics
	tracer  trace.Tracer
	logger  *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTracerProvider sets the tracer provider. Defaults to the global one.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *Resolver) {
		r.tracer = tp.Tracer(instrumentationName)
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// InstrumentResolver wraps next. A nil metrics records no metrics.
func InstrumentResolver(next node.Resolver, metrics *Metrics, opts ...Option) *Resolver {
	r := &Resolver{
		next:    next,
		metrics: metrics,
		tracer:  otel.GetTracerProvider().Tracer(instrumentationName),
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Fetch implements node.Resolver.
func (r *Resolver) Fetch(ctx context.Context, path string) (*node.Node, error) {
	ctx, span := r.tracer.Start(ctx, "ocm.fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("ocm.path", path)))
	defer span.End()

	start := time.Now()
	n, err := r.next.Fetch(ctx, path)
	elapsed := time.Since(start)

	outcome := Outcome(n, err)
	span.SetAttributes(attribute.String("ocm.outcome", outcome))

	if outcome == OutcomeError {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.logger.Warn("fetch failed", "path", path, "error", err)
	}

	if n != nil {
		span.SetAttributes(attribute.String("ocm.type", n.TypeTag))
	}

	if r.metrics != nil {
		r.metrics.Fetches.WithLabelValues(outcome).Inc()
		r.metrics.Duration.Observe(elapsed.Seconds())
	}

	return n, err
}

// Outcome classifies the result of a fetch.
func Outcome(n *node.Node, err error) string {
	switch {
	case errors.Is(err, node.ErrNotFound):
		return OutcomeMiss
	case err != nil:
		return OutcomeError
	case n == nil:
		return OutcomeMiss
	default:
		return OutcomeHit
	}
}

// Store is a node.Store whose fetches are instrumented.
type Store struct {
	node.Store
	resolver *Resolver
}

// InstrumentStore wraps the Fetch method of s.
func InstrumentStore(s node.Store, metrics *Metrics, opts ...Option) *Store {
	return &Store{Store: s, resolver: InstrumentResolver(s, metrics, opts...)}
}

// Fetch implements node.Resolver.
func (s *Store) Fetch(ctx context.Context, path string) (*node.Node, error) {
	return s.resolver.Fetch(ctx, path)
}

// Count returns the number of fetches recorded with outcome.
func (m *Metrics) Count(outcome string) float64 {
	var out dto.Metric
	if err := m.Fetches.WithLabelValues(outcome).Write(&out); err != nil {
		return 0
	}

	return out.GetCounter().GetValue()
}
