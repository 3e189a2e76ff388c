package metrics

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

const (
	ReasonDeadlineExceeded     = "deadline_exceeded"
	ReasonCanceled             = "canceled"
	ReasonUniqueViolation      = "unique_violation"
	ReasonForeignKeyViolation  = "foreign_key_violation"
	ReasonSerializationFailure = "serialization_failure"
	ReasonDBLockTimeout        = "db_lock_timeout"
	ReasonUnknown              = "unknown"
)

// SignupMetrics exposes registration health on the Prometheus endpoint.
type SignupMetrics struct {
	provisionDuration *prometheus.HistogramVec
	stepFailures      *prometheus.CounterVec
	citiesCreated     prometheus.Counter
	styleFallbacks    prometheus.Counter
}

var (
	signupMetricsOnce sync.Once
	signupMetrics     *SignupMetrics
)

// Signup returns the process-wide registration metrics on the default registry.
func Signup(cfg Config) *SignupMetrics {
	signupMetricsOnce.Do(func() {
		signupMetrics = NewSignupMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return signupMetrics
}

func NewSignupMetrics(registerer prometheus.Registerer, cfg Config) *SignupMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	constLabels := constLabelsFor(cfg)

	provisionDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "atelier_signup_provision_duration_seconds",
		Help:        "Registration transaction latency by outcome.",
		Buckets:     []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		ConstLabels: constLabels,
	}, []string{"outcome"})
	stepFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "atelier_signup_step_failures_total",
		Help:        "Registration transaction failures by step and low-cardinality reason.",
		ConstLabels: constLabels,
	}, []string{"step", "reason"})
	citiesCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "atelier_signup_cities_created_total",
		Help:        "Cities inserted on demand by showroom registrations.",
		ConstLabels: constLabels,
	})
	styleFallbacks := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "atelier_signup_style_fallbacks_total",
		Help:        "Style labels that resolved to the default or first style.",
		ConstLabels: constLabels,
	})

	registerer.MustRegister(provisionDuration, stepFailures, citiesCreated, styleFallbacks)

	return &SignupMetrics{
		provisionDuration: provisionDuration,
		stepFailures:      stepFailures,
		citiesCreated:     citiesCreated,
		styleFallbacks:    styleFallbacks,
	}
}

func (m *SignupMetrics) ObserveProvision(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.provisionDuration.WithLabelValues(strings.TrimSpace(outcome)).Observe(elapsed.Seconds())
}

func (m *SignupMetrics) RecordStepFailure(step string, err error) {
	if m == nil {
		return
	}
	m.stepFailures.WithLabelValues(strings.TrimSpace(step), ClassifyStoreReason(err)).Inc()
}

func (m *SignupMetrics) RecordCityCreated() {
	if m == nil {
		return
	}
	m.citiesCreated.Inc()
}

func (m *SignupMetrics) RecordStyleFallback() {
	if m == nil {
		return
	}
	m.styleFallbacks.Inc()
}

// ClassifyStoreReason maps store and context errors to a bounded label set.
func ClassifyStoreReason(err error) string {
	if err == nil {
		return ReasonUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonDeadlineExceeded
	}
	if errors.Is(err, context.Canceled) {
		return ReasonCanceled
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ReasonUniqueViolation
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return ReasonForeignKeyViolation
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.LockNotAvailable:
			return ReasonDBLockTimeout
		case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
			return ReasonSerializationFailure
		case pgerrcode.UniqueViolation:
			return ReasonUniqueViolation
		case pgerrcode.ForeignKeyViolation:
			return ReasonForeignKeyViolation
		}
	}

	return ReasonUnknown
}

func constLabelsFor(cfg Config) prometheus.Labels {
	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "atelier"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	return prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}
}
