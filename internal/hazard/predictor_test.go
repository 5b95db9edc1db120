package hazard

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"

	"github.com/couchcryptid/hazard-engine/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFallbackPredictor(t *testing.T, p *Profile, opts ...Option) *Predictor {
	t.Helper()
	opts = append([]Option{WithLogger(discardLogger())}, opts...)
	pred, err := NewPredictor(p, nil, opts...)
	require.NoError(t, err)
	require.Equal(t, domain.StatusFallback, pred.Status())
	return pred
}

func TestPredict_ExtremeWildfireConditions(t *testing.T) {
	p := newFallbackPredictor(t, WildfireProfile())
	got := p.Predict(domain.RawFeatureMap{
		"temperature":   35,
		"ndvi":          0.1,
		"fuel_moisture": 5,
		"wind_speed":    30,
		"humidity":      10,
	})

	requireValid(t, got)
	assert.Greater(t, got.RiskScore, 75.0)
	assert.Contains(t, got.ContributingFactors, "High temperature")
	assert.Contains(t, got.ContributingFactors, "Low humidity")
	assert.Equal(t, domain.StatusFallback, got.ModelStatus)
	assert.Equal(t, "Implement immediate fire watch protocols", got.Recommendations[0])
	assert.Contains(t, got.Recommendations, "Low humidity conditions - increase moisture monitoring")
	assert.NotContains(t, got.Recommendations, "High wind advisory - extreme caution with any ignition sources")

	for _, name := range []string{"ignition_probability", "spread_rate", "fuel_moisture", "fire_weather_index"} {
		_, ok := got.Metric(name)
		assert.True(t, ok, name)
	}
	ip, _ := got.Metric("ignition_probability")
	assert.InDelta(t, got.RiskScore/100, ip, 1e-9)
}

func TestPredict_BenignWildfireConditions(t *testing.T) {
	p := newFallbackPredictor(t, WildfireProfile())
	got := p.Predict(domain.RawFeatureMap{
		"temperature":   15,
		"ndvi":          0.8,
		"fuel_moisture": 40,
		"wind_speed":    2,
		"humidity":      80,
	})

	requireValid(t, got)
	assert.Less(t, got.RiskScore, 30.0)
	assert.Equal(t, []string{"Routine fire monitoring", "Maintain firefighting equipment", "Monitor weather conditions closely"}, got.Recommendations)
}

func TestPredict_EmptyInputIsReproducible(t *testing.T) {
	for _, profile := range allProfiles() {
		t.Run(string(profile.Hazard()), func(t *testing.T) {
			p := newFallbackPredictor(t, profile)
			baseline := p.Predict(domain.RawFeatureMap{})
			requireValid(t, baseline)
			for i := 0; i < 100; i++ {
				if diff := cmp.Diff(baseline, p.Predict(domain.RawFeatureMap{})); diff != "" {
					t.Fatalf("call %d differs (-want +got):\n%s", i, diff)
				}
			}
		})
	}
}

func TestPredict_OmittedKeysEqualExplicitDefaults(t *testing.T) {
	for _, profile := range allProfiles() {
		t.Run(string(profile.Hazard()), func(t *testing.T) {
			p := newFallbackPredictor(t, profile)
			implicit := p.Predict(nil)
			explicit := p.Predict(profile.Schema.Defaults())
			assert.Empty(t, cmp.Diff(implicit, explicit))
		})
	}
}

func TestLoadPredictor_ArtifactFailureSelectsFallback(t *testing.T) {
	logger, logs := captureLogger()
	src := &failingSource{err: errors.New("read models/wildfire_model.msgpack: input/output error")}

	p, err := LoadPredictor(context.Background(), WildfireProfile(), src, WithLogger(logger))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFallback, p.Status())

	got := p.Predict(domain.RawFeatureMap{"temperature": 30})
	requireValid(t, got)
	assert.Equal(t, domain.StatusFallback, got.ModelStatus)
	assert.InDelta(t, WildfireProfile().FallbackConfidence, got.Confidence, 1e-9)
	assert.Less(t, got.Confidence, MaxEnsembleConfidence)

	assert.Equal(t, 1, src.calls)
	assert.Equal(t, 1, strings.Count(logs.String(), "level=WARN"), logs.String())
	assert.Contains(t, logs.String(), "model artifact failed to load")
}

func TestLoadPredictor_NotFound(t *testing.T) {
	logger, logs := captureLogger()
	p, err := LoadPredictor(context.Background(), FloodProfile(), staticSource{}, WithLogger(logger))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFallback, p.Status())
	assert.Contains(t, logs.String(), "model artifact not found")
}

func TestLoadPredictor_PanickingSource(t *testing.T) {
	p, err := LoadPredictor(context.Background(), WildfireProfile(), panicSource{}, WithLogger(discardLogger()))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFallback, p.Status())
}

type panicSource struct{}

func (panicSource) Load(context.Context, domain.HazardType) (*ModelArtifact, error) {
	panic("corrupt index")
}

func TestLoadPredictor_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := LoadPredictor(ctx, WildfireProfile(), DirSource{Dir: t.TempDir()}, WithLogger(discardLogger()))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewPredictor_Ensemble(t *testing.T) {
	profile := WildfireProfile()
	a := testArtifact(profile.Schema)
	a.Primary.Importances[9] = 0.3  // humidity
	a.Primary.Importances[0] = 0.25 // land_surface_temperature
	a.Primary.Importances[4] = 0.2  // wind_direction_sin, unlabeled
	a.Primary.Importances[3] = 0.1  // wind_speed
	a.Primary.Importances[1] = 0.05 // ndvi

	obs := newRecordingObserver()
	p, err := NewPredictor(profile, a, WithLogger(discardLogger()), WithObserver(obs))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusEnsemble, p.Status())
	assert.Equal(t, domain.StatusEnsemble, obs.loaded[domain.HazardWildfire])

	got := p.Predict(nil)
	requireValid(t, got)
	assert.InDelta(t, 73.0, got.RiskScore, 1e-9)
	assert.InDelta(t, 80.0, got.Confidence, 1e-9)
	assert.Equal(t, []string{"Low humidity", "High temperature", "Strong winds", "Vegetation stress"}, got.ContributingFactors)
	assert.Equal(t, "Enhanced fire monitoring and patrols", got.Recommendations[0])
	assert.Equal(t, 1, obs.predictions[domain.StatusEnsemble])
}

func TestNewPredictor_EnsembleWithoutImportancesUsesGenericFactor(t *testing.T) {
	profile := FloodProfile()
	a := testArtifact(profile.Schema)
	a.Primary.Importances = nil

	p, err := NewPredictor(profile, a, WithLogger(discardLogger()))
	require.NoError(t, err)
	got := p.Predict(nil)
	assert.Equal(t, []string{"Multiple hydrological factors"}, got.ContributingFactors)
}

func TestNewPredictor_ForcedFallback(t *testing.T) {
	profile := WildfireProfile()
	p, err := NewPredictor(profile, testArtifact(profile.Schema), WithLogger(discardLogger()), WithForcedFallback())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFallback, p.Status())
}

func TestNewPredictor_InvalidArtifactFallsBack(t *testing.T) {
	logger, logs := captureLogger()
	profile := WildfireProfile()
	a := testArtifact(profile.Schema)
	a.Secondary.Trees = nil

	p, err := NewPredictor(profile, a, WithLogger(logger))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFallback, p.Status())
	assert.Contains(t, logs.String(), "model artifact unusable")
}

func TestNewPredictor_ConfigurationErrors(t *testing.T) {
	profile := WildfireProfile()

	t.Run("artifact for another schema", func(t *testing.T) {
		_, err := NewPredictor(profile, testArtifact(LandslideProfile().Schema), WithLogger(discardLogger()))
		assert.ErrorIs(t, err, ErrSchemaMismatch)
	})

	t.Run("blend weights", func(t *testing.T) {
		_, err := NewPredictor(profile, testArtifact(profile.Schema),
			WithLogger(discardLogger()), WithBlendWeights(BlendWeights{Primary: 0.9, Secondary: 0.9}))
		assert.Error(t, err)
	})

	t.Run("rule weights", func(t *testing.T) {
		_, err := NewPredictor(profile, nil, WithLogger(discardLogger()),
			WithRuleWeights(domain.HazardWildfire, map[string]float64{RuleWind: 0.9}))
		assert.ErrorContains(t, err, "sum to")
	})

	t.Run("overrides for other hazards are ignored", func(t *testing.T) {
		_, err := NewPredictor(profile, nil, WithLogger(discardLogger()),
			WithRuleWeights(domain.HazardFlood, map[string]float64{"bogus": 1}))
		assert.NoError(t, err)
	})
}

func TestPredict_RuleThresholdOverride(t *testing.T) {
	raw := domain.RawFeatureMap{"temperature": 29}
	// (29-20)*3 = 27; threshold 30 does not fire, threshold 20 does.
	base := newFallbackPredictor(t, WildfireProfile()).Predict(raw)
	assert.NotContains(t, base.ContributingFactors, "High temperature")

	tuned := newFallbackPredictor(t, WildfireProfile(),
		WithRuleThresholds(domain.HazardWildfire, map[string]float64{RuleTemperature: 20})).Predict(raw)
	assert.Contains(t, tuned.ContributingFactors, "High temperature")
}

func TestPredict_PanicReturnsDefault(t *testing.T) {
	logger, logs := captureLogger()
	obs := newRecordingObserver()
	profile := WildfireProfile()
	profile.Metrics = func(Resolved, float64) map[string]float64 { panic("division by zero") }

	p, err := NewPredictor(profile, nil, WithLogger(logger), WithObserver(obs))
	require.NoError(t, err)

	got := p.Predict(domain.RawFeatureMap{"ndvi": 0.2, "humidity": 30})
	requireValid(t, got)
	assert.Equal(t, domain.StatusDefault, got.ModelStatus)
	assert.InDelta(t, 50.0, got.RiskScore, 1e-9)
	assert.InDelta(t, DefaultConfidence, got.Confidence, 1e-9)
	assert.Equal(t, []string{"Model unavailable - using default assessment"}, got.ContributingFactors)
	assert.Equal(t, []string{"Use alternative fire risk assessment methods"}, got.Recommendations)

	sr, _ := got.Metric("spread_rate")
	assert.InDelta(t, 1.0, sr, 1e-9)

	assert.Equal(t, 1, obs.failures)
	assert.Equal(t, 1, obs.predictions[domain.StatusDefault])
	assert.Contains(t, logs.String(), "level=ERROR")
	assert.Contains(t, logs.String(), "hazard=wildfire")
	assert.Contains(t, logs.String(), "features=2")
}

func TestPredict_NonFiniteOutputReturnsDefault(t *testing.T) {
	profile := FloodProfile()
	profile.Metrics = func(Resolved, float64) map[string]float64 {
		return map[string]float64{"max_depth": math.NaN()}
	}
	p, err := NewPredictor(profile, nil, WithLogger(discardLogger()))
	require.NoError(t, err)

	got := p.Predict(nil)
	assert.Equal(t, domain.StatusDefault, got.ModelStatus)
	assert.InDelta(t, 40.0, got.RiskScore, 1e-9)
}

func TestPredict_MalformedInputObserved(t *testing.T) {
	obs := newRecordingObserver()
	p := newFallbackPredictor(t, WildfireProfile(), WithObserver(obs))

	got := p.Predict(domain.RawFeatureMap{"humidity": math.Inf(-1)})
	requireValid(t, got)
	assert.Equal(t, domain.StatusFallback, got.ModelStatus)
	assert.Equal(t, 1, obs.malformed)
	assert.Zero(t, obs.failures)
}

func TestPredict_OutputBoundsHoldForArbitraryInputs(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	extremes := []float64{0, -1, 1e9, -1e9, math.MaxFloat64, -math.MaxFloat64, math.NaN(), math.Inf(1)}

	for _, profile := range allProfiles() {
		t.Run(string(profile.Hazard()), func(t *testing.T) {
			predictors := []*Predictor{newFallbackPredictor(t, profile)}
			ens, err := NewPredictor(profile, testArtifact(profile.Schema), WithLogger(discardLogger()))
			require.NoError(t, err)
			predictors = append(predictors, ens)

			for i := 0; i < 300; i++ {
				raw := domain.RawFeatureMap{}
				for _, in := range profile.Schema.Inputs {
					switch rng.IntN(3) {
					case 0:
						continue
					case 1:
						raw[in.Name] = extremes[rng.IntN(len(extremes))]
					default:
						raw[in.Name] = rng.NormFloat64() * 100
					}
				}
				for _, p := range predictors {
					got := p.Predict(raw)
					requireValid(t, got)
				}
			}
		})
	}
}

func TestPredict_ConcurrentUse(t *testing.T) {
	profile := WildfireProfile()
	p, err := NewPredictor(profile, testArtifact(profile.Schema), WithLogger(discardLogger()))
	require.NoError(t, err)
	want := p.Predict(domain.RawFeatureMap{"temperature": 33})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				got := p.Predict(domain.RawFeatureMap{"temperature": 33})
				assert.Empty(t, cmp.Diff(want, got))
			}
		}()
	}
	wg.Wait()
}
