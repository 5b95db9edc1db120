package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/hazard-engine/internal/domain"
)

// Assessor scores a parsed feature snapshot. hazard.Assessor implements it.
type Assessor interface {
	Assess(snap domain.FeatureSnapshot) domain.Assessment
}

// ErrNoHazardsAssessed is returned when none of a snapshot's requested hazards
// is configured in this engine.
var ErrNoHazardsAssessed = errors.New("no configured hazard matched the snapshot")

// AssessmentTransformer implements Transformer by parsing a feature snapshot,
// assessing it and serializing the result as JSON keyed by aoi_id.
type AssessmentTransformer struct {
	assessor Assessor
	logger   *slog.Logger
}

// NewTransformer creates an AssessmentTransformer.
func NewTransformer(assessor Assessor, logger *slog.Logger) *AssessmentTransformer {
	return &AssessmentTransformer{assessor: assessor, logger: logger}
}

func (t *AssessmentTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	snap, err := domain.ParseFeatureSnapshot(raw)
	if err != nil {
		return domain.OutputEvent{}, err
	}
	if len(snap.Dropped) > 0 {
		t.logger.Debug("dropped non-numeric features",
			"aoi_id", snap.AOIID,
			"features", snap.Dropped,
		)
	}

	assessment := t.assessor.Assess(snap)
	if len(assessment.Predictions) == 0 {
		return domain.OutputEvent{}, fmt.Errorf("assess %s: %w", snap.AOIID, ErrNoHazardsAssessed)
	}
	return Serialize(assessment)
}

// Serialize encodes an assessment as a sink-topic event.
func Serialize(a domain.Assessment) (domain.OutputEvent, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return domain.OutputEvent{}, fmt.Errorf("serialize assessment: %w", err)
	}

	hazards := make([]string, len(a.Predictions))
	for i, p := range a.Predictions {
		hazards[i] = string(p.Hazard)
	}
	return domain.OutputEvent{
		Key:   []byte(a.AOIID),
		Value: data,
		Headers: map[string]string{
			"hazards":     strings.Join(hazards, ","),
			"risk_level":  string(a.Overall.RiskLevel),
			"assessed_at": a.AssessedAt.Format(time.RFC3339),
		},
	}, nil
}
