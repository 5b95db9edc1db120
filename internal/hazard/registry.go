package hazard

import (
	"context"
	"fmt"

	"github.com/couchcryptid/hazard-engine/internal/domain"
)

// Registry holds one Predictor per configured hazard, loaded once at startup.
type Registry struct {
	order      []domain.HazardType
	predictors map[domain.HazardType]*Predictor
}

// LoadRegistry builds a Predictor for each hazard in order, reading artifacts
// from src. Missing artifacts degrade to fallback rules; configuration errors
// abort the load.
func LoadRegistry(ctx context.Context, hazards []domain.HazardType, src ArtifactSource, opts ...Option) (*Registry, error) {
	if len(hazards) == 0 {
		return nil, fmt.Errorf("no hazards configured")
	}
	r := &Registry{predictors: make(map[domain.HazardType]*Predictor, len(hazards))}
	for _, h := range hazards {
		if _, dup := r.predictors[h]; dup {
			continue
		}
		profile, err := ProfileFor(h)
		if err != nil {
			return nil, err
		}
		p, err := LoadPredictor(ctx, profile, src, opts...)
		if err != nil {
			return nil, fmt.Errorf("load %s predictor: %w", h, err)
		}
		r.order = append(r.order, h)
		r.predictors[h] = p
	}
	return r, nil
}

// NewRegistry wraps already-built predictors.
func NewRegistry(predictors ...*Predictor) *Registry {
	r := &Registry{predictors: make(map[domain.HazardType]*Predictor, len(predictors))}
	for _, p := range predictors {
		if _, dup := r.predictors[p.Hazard()]; dup {
			continue
		}
		r.order = append(r.order, p.Hazard())
		r.predictors[p.Hazard()] = p
	}
	return r
}

// Predictor returns the predictor for h.
func (r *Registry) Predictor(h domain.HazardType) (*Predictor, bool) {
	p, ok := r.predictors[h]
	return p, ok
}

// Hazards returns the configured hazards in load order.
func (r *Registry) Hazards() []domain.HazardType {
	return append([]domain.HazardType(nil), r.order...)
}

// Status reports the scoring mode selected for each hazard.
func (r *Registry) Status() map[domain.HazardType]domain.ModelStatus {
	out := make(map[domain.HazardType]domain.ModelStatus, len(r.order))
	for _, h := range r.order {
		out[h] = r.predictors[h].Status()
	}
	return out
}
