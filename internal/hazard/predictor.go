package hazard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/hazard-engine/internal/domain"
)

// strategy is the scoring path selected when a Predictor is built.
type strategy interface {
	status() domain.ModelStatus
	score(vec FeatureVector, r Resolved) (scored, error)
}

type scored struct {
	risk       float64
	confidence float64
	factors    []string
}

type ensembleStrategy struct {
	model      *Ensemble
	attributor *Attributor
}

func (ensembleStrategy) status() domain.ModelStatus { return domain.StatusEnsemble }

func (s ensembleStrategy) score(vec FeatureVector, _ Resolved) (scored, error) {
	res, err := s.model.Predict(vec)
	if err != nil {
		return scored{}, err
	}
	return scored{
		risk:       res.RiskScore,
		confidence: res.Confidence,
		factors:    s.attributor.FromImportances(res.FactorCandidates),
	}, nil
}

type fallbackStrategy struct {
	rules      *FallbackRules
	attributor *Attributor
}

func (fallbackStrategy) status() domain.ModelStatus { return domain.StatusFallback }

func (s fallbackStrategy) score(_ FeatureVector, r Resolved) (scored, error) {
	res := s.rules.Evaluate(r)
	return scored{
		risk:       res.RiskScore,
		confidence: res.Confidence,
		factors:    s.attributor.FromLabels(res.Factors),
	}, nil
}

// Predictor scores raw features for one hazard. The scoring strategy is
// chosen once at construction: the trained ensemble when a valid artifact is
// supplied, otherwise the fallback rules. Predict never fails; any error is
// logged and replaced with the hazard's default prediction.
//
// A Predictor is immutable after construction and safe for concurrent use.
type Predictor struct {
	profile     *Profile
	engineer    *FeatureEngineer
	strategy    strategy
	recommender *Recommender
	logger      *slog.Logger
	observer    Observer
}

// NewPredictor builds a Predictor for profile. A nil or structurally invalid
// artifact selects the fallback rules. An artifact trained on a different
// feature order, or invalid weight overrides, are configuration errors.
func NewPredictor(profile *Profile, artifact *ModelArtifact, opts ...Option) (*Predictor, error) {
	o := newOptions(opts)
	h := profile.Hazard()
	logger := o.logger.With("hazard", h)

	rules, err := applyRuleOverrides(profile.Rules, o.ruleWeights[h], o.ruleThresholds[h])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", h, err)
	}
	fallback, err := NewFallbackRules(profile.Schema, rules, profile.FallbackConfidence, quietLabel)
	if err != nil {
		return nil, err
	}

	attributor := NewAttributor(profile.Schema, profile.FactorLabels, profile.GenericFactor)
	var strat strategy = fallbackStrategy{rules: fallback, attributor: attributor}

	switch {
	case o.forceFallback:
		logger.Info("fallback forced by configuration")
	case artifact == nil:
	default:
		if err := artifact.Validate(); err != nil {
			logger.Warn("model artifact unusable, using fallback rules", "error", err)
			break
		}
		if err := artifact.CheckSchema(profile.Schema); err != nil {
			return nil, err
		}
		model, err := NewEnsemble(artifact, o.blend)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", h, err)
		}
		strat = ensembleStrategy{model: model, attributor: attributor}
	}

	p := &Predictor{
		profile:     profile,
		engineer:    NewFeatureEngineer(profile.Schema),
		strategy:    strat,
		recommender: NewRecommender(profile.Recommendations),
		logger:      logger,
		observer:    o.observer,
	}
	o.observer.ObserveModelLoaded(h, p.Status())
	logger.Info("predictor ready", "mode", p.Status(), "features", profile.Schema.Len())
	return p, nil
}

// LoadPredictor acquires the profile's artifact from src and builds a
// Predictor. A missing or corrupt artifact is logged once as a warning and
// selects the fallback rules; only configuration errors are returned.
func LoadPredictor(ctx context.Context, profile *Profile, src ArtifactSource, opts ...Option) (*Predictor, error) {
	o := newOptions(opts)
	if o.forceFallback || src == nil {
		return NewPredictor(profile, nil, opts...)
	}

	artifact, err := loadArtifact(ctx, profile.Hazard(), src)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		attrs := []any{"hazard", profile.Hazard(), "error", err}
		if errors.Is(err, ErrArtifactNotFound) {
			o.logger.Warn("model artifact not found, using fallback rules", attrs...)
		} else {
			o.logger.Warn("model artifact failed to load, using fallback rules", attrs...)
		}
		artifact = nil
	}
	return NewPredictor(profile, artifact, opts...)
}

// loadArtifact converts a panic in the source into an error.
func loadArtifact(ctx context.Context, h domain.HazardType, src ArtifactSource) (a *ModelArtifact, err error) {
	defer func() {
		if r := recover(); r != nil {
			a, err = nil, fmt.Errorf("%w: load panicked: %v", ErrArtifactInvalid, r)
		}
	}()
	return src.Load(ctx, h)
}

// Hazard returns the hazard this predictor scores.
func (p *Predictor) Hazard() domain.HazardType { return p.profile.Hazard() }

// Status reports the strategy selected at construction.
func (p *Predictor) Status() domain.ModelStatus { return p.strategy.status() }

// Schema returns the hazard's feature schema.
func (p *Predictor) Schema() *Schema { return p.profile.Schema }

// Predict scores raw. It never panics and never returns an invalid
// prediction: failures yield the hazard's default prediction.
func (p *Predictor) Predict(raw domain.RawFeatureMap) (pred domain.HazardPrediction) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			pred = p.fail(raw, fmt.Errorf("%w: panic: %v", ErrPredictionFailure, r))
		}
		p.observer.ObservePrediction(p.Hazard(), pred.ModelStatus, time.Since(start))
	}()

	pred, err := p.predict(raw)
	if err != nil {
		return p.fail(raw, err)
	}
	return pred
}

func (p *Predictor) predict(raw domain.RawFeatureMap) (domain.HazardPrediction, error) {
	vec, resolved, err := p.engineer.Build(raw)
	if err != nil {
		p.logger.Warn("malformed features", "error", err, "features", len(raw))
		p.observer.ObserveMalformed(p.Hazard())
	}

	s, err := p.strategy.score(vec, resolved)
	if err != nil {
		return domain.HazardPrediction{}, err
	}

	pred := domain.HazardPrediction{
		Hazard:              p.Hazard(),
		RiskScore:           s.risk,
		Confidence:          s.confidence,
		ContributingFactors: s.factors,
		Recommendations:     p.recommender.Generate(s.risk, resolved),
		ModelStatus:         p.Status(),
		Metrics:             p.profile.Metrics(resolved, s.risk),
	}
	if err := pred.Validate(); err != nil {
		return domain.HazardPrediction{}, fmt.Errorf("%w: %w", ErrPredictionFailure, err)
	}
	return pred, nil
}

func (p *Predictor) fail(raw domain.RawFeatureMap, err error) domain.HazardPrediction {
	p.logger.Error("prediction failed, returning default assessment",
		"error", err,
		"features", len(raw),
		"mode", p.Status(),
	)
	p.observer.ObserveFailure(p.Hazard())
	return p.profile.DefaultPrediction()
}
