package predict

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/couchcryptid/hazard-engine/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	Cmd.SetIn(strings.NewReader(stdin))
	Cmd.SetOut(&out)
	Cmd.SetErr(&errOut)
	Cmd.SetArgs(args)
	err := Cmd.Execute()
	return out.String(), err
}

func TestPredict_WildfireFromStdin(t *testing.T) {
	out, err := execute(t,
		`{"temperature": 35, "ndvi": 0.1, "fuel_moisture": 5, "wind_speed": 30, "humidity": 10}`,
		"--hazard", "wildfire", "--features", "-", "--model-dir", t.TempDir(),
	)
	require.NoError(t, err)

	var p domain.HazardPrediction
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Equal(t, domain.HazardWildfire, p.Hazard)
	assert.Equal(t, domain.StatusFallback, p.ModelStatus)
	assert.InDelta(t, 76.125, p.RiskScore, 1e-9)
	assert.Contains(t, p.Metrics, "fire_weather_index")
}

func TestPredict_AcceptsFullSnapshot(t *testing.T) {
	out, err := execute(t,
		`{"aoi_id": "delta", "features": {"precipitation_24h": 80, "soil_type": "clay"}}`,
		"--hazard", "flood", "--features", "", "--model-dir", t.TempDir(), "--fallback",
	)
	require.NoError(t, err)

	var p domain.HazardPrediction
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Equal(t, domain.HazardFlood, p.Hazard)
	assert.NoError(t, p.Validate())
}

func TestPredict_Errors(t *testing.T) {
	out, err := execute(t, `{}`, "--hazard", "tsunami", "--features", "-", "--model-dir", t.TempDir())
	assert.ErrorContains(t, err, "tsunami")
	assert.Empty(t, out, "usage text must not reach stdout")

	_, err = execute(t, `not json`, "--hazard", "flood", "--features", "-", "--model-dir", t.TempDir())
	assert.ErrorContains(t, err, "parse features")
}
