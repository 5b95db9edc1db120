package hazard

import (
	"log/slog"
	"time"

	"github.com/couchcryptid/hazard-engine/internal/domain"
)

// Observer receives scoring telemetry. observability.Metrics implements it.
type Observer interface {
	ObservePrediction(h domain.HazardType, status domain.ModelStatus, d time.Duration)
	ObserveMalformed(h domain.HazardType)
	ObserveFailure(h domain.HazardType)
	ObserveModelLoaded(h domain.HazardType, status domain.ModelStatus)
}

type nopObserver struct{}

func (nopObserver) ObservePrediction(domain.HazardType, domain.ModelStatus, time.Duration) {}
func (nopObserver) ObserveMalformed(domain.HazardType)                                     {}
func (nopObserver) ObserveFailure(domain.HazardType)                                       {}
func (nopObserver) ObserveModelLoaded(domain.HazardType, domain.ModelStatus)               {}

type options struct {
	logger         *slog.Logger
	observer       Observer
	blend          BlendWeights
	forceFallback  bool
	ruleWeights    map[domain.HazardType]map[string]float64
	ruleThresholds map[domain.HazardType]map[string]float64
}

func newOptions(opts []Option) options {
	o := options{
		logger:   slog.Default(),
		observer: nopObserver{},
		blend:    DefaultBlendWeights(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option configures a Predictor.
type Option func(*options)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver sets the telemetry observer.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithBlendWeights overrides the 0.6/0.4 ensemble blend.
func WithBlendWeights(w BlendWeights) Option {
	return func(o *options) { o.blend = w }
}

// WithForcedFallback selects the rule-based fallback even when a model
// artifact is available.
func WithForcedFallback() Option {
	return func(o *options) { o.forceFallback = true }
}

// WithRuleWeights overrides fallback rule weights for h by rule name.
func WithRuleWeights(h domain.HazardType, weights map[string]float64) Option {
	return func(o *options) {
		if o.ruleWeights == nil {
			o.ruleWeights = make(map[domain.HazardType]map[string]float64)
		}
		o.ruleWeights[h] = weights
	}
}

// WithRuleThresholds overrides fallback factor thresholds for h by rule name.
func WithRuleThresholds(h domain.HazardType, thresholds map[string]float64) Option {
	return func(o *options) {
		if o.ruleThresholds == nil {
			o.ruleThresholds = make(map[domain.HazardType]map[string]float64)
		}
		o.ruleThresholds[h] = thresholds
	}
}
