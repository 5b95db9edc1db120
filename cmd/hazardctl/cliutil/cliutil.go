// Package cliutil holds the input and output plumbing shared by hazardctl
// subcommands.
package cliutil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/couchcryptid/hazard-engine/internal/domain"
	"github.com/couchcryptid/hazard-engine/internal/hazard"
)

// ReadSnapshot reads a feature snapshot from path, or from stdin when path
// is empty or "-". The input may be a full snapshot object or a bare map of
// feature values.
func ReadSnapshot(path string, stdin io.Reader) (domain.FeatureSnapshot, error) {
	data, err := readInput(path, stdin)
	if err != nil {
		return domain.FeatureSnapshot{}, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return domain.FeatureSnapshot{}, fmt.Errorf("parse features: %w", err)
	}
	if _, ok := fields["features"]; !ok {
		data, err = json.Marshal(map[string]json.RawMessage{"features": data})
		if err != nil {
			return domain.FeatureSnapshot{}, err
		}
	}

	return domain.ParseFeatureSnapshot(domain.RawEvent{
		Key:       []byte("cli"),
		Value:     data,
		Timestamp: domain.Now(),
	})
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// LoadRegistry builds predictors for hazards from modelDir.
func LoadRegistry(ctx context.Context, hazards []domain.HazardType, modelDir string, fallback bool, logger *slog.Logger) (*hazard.Registry, error) {
	opts := []hazard.Option{hazard.WithLogger(logger)}
	if fallback {
		opts = append(opts, hazard.WithForcedFallback())
	}
	return hazard.LoadRegistry(ctx, hazards, hazard.DirSource{Dir: modelDir}, opts...)
}

// Logger writes warnings and errors to w, or everything with verbose set.
func Logger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// WriteJSON pretty-prints v to w.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
