package hazard

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/hazard-engine/internal/domain"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// captureLogger records log output for assertions.
func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func leaf(v float64) Tree {
	return Tree{
		Left:      []int32{-1},
		Right:     []int32{-1},
		Feature:   []int32{0},
		Threshold: []float64{0},
		Value:     []float64{v},
	}
}

// stump splits on one feature: x[feature] <= threshold goes to lo, else hi.
func stump(feature int32, threshold, lo, hi float64) Tree {
	return Tree{
		Left:      []int32{1, -1, -1},
		Right:     []int32{2, -1, -1},
		Feature:   []int32{feature, 0, 0},
		Threshold: []float64{threshold, 0, 0},
		Value:     []float64{0, lo, hi},
	}
}

// testArtifact builds a valid artifact for s with an identity scaler.
// The primary averages leaves 70 and 80; the secondary is 50 + 0.5*40.
func testArtifact(s *Schema) *ModelArtifact {
	n := s.Len()
	mean := make([]float64, n)
	scale := make([]float64, n)
	imp := make([]float64, n)
	for i := range scale {
		scale[i] = 1
		imp[i] = 0.01
	}
	return &ModelArtifact{
		Version:      ArtifactVersion,
		Hazard:       s.Hazard,
		FeatureNames: append([]string(nil), s.Features...),
		Scaler:       Scaler{Mean: mean, Scale: scale},
		Primary: Regressor{
			Kind:        KindBagging,
			Trees:       []Tree{leaf(70), leaf(80)},
			Importances: imp,
		},
		Secondary: Regressor{
			Kind:         KindBoosting,
			Trees:        []Tree{leaf(40)},
			BaseScore:    50,
			LearningRate: 0.5,
		},
		TrainedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

type recordingObserver struct {
	mu          sync.Mutex
	predictions map[domain.ModelStatus]int
	malformed   int
	failures    int
	loaded      map[domain.HazardType]domain.ModelStatus
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{
		predictions: make(map[domain.ModelStatus]int),
		loaded:      make(map[domain.HazardType]domain.ModelStatus),
	}
}

func (o *recordingObserver) ObservePrediction(_ domain.HazardType, s domain.ModelStatus, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.predictions[s]++
}

func (o *recordingObserver) ObserveMalformed(domain.HazardType) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.malformed++
}

func (o *recordingObserver) ObserveFailure(domain.HazardType) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failures++
}

func (o *recordingObserver) ObserveModelLoaded(h domain.HazardType, s domain.ModelStatus) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.loaded[h] = s
}

// failingSource simulates an artifact store that cannot produce a model.
type failingSource struct {
	err   error
	calls int
}

func (f *failingSource) Load(context.Context, domain.HazardType) (*ModelArtifact, error) {
	f.calls++
	return nil, f.err
}

type staticSource map[domain.HazardType]*ModelArtifact

func (s staticSource) Load(_ context.Context, h domain.HazardType) (*ModelArtifact, error) {
	a, ok := s[h]
	if !ok {
		return nil, ErrArtifactNotFound
	}
	return a, nil
}

func requireValid(t *testing.T, p domain.HazardPrediction) {
	t.Helper()
	require.NoError(t, p.Validate())
}
