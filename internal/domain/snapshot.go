package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// FeatureSnapshot is one set of observations for an area of interest, as
// published by the acquisition service.
type FeatureSnapshot struct {
	AOIID      string        `json:"aoi_id"`
	ObservedAt time.Time     `json:"observed_at"`
	Hazards    []HazardType  `json:"hazards,omitempty"`
	Features   RawFeatureMap `json:"features"`

	// Dropped lists feature keys whose values could not be used.
	Dropped []string `json:"-"`
}

type snapshotWire struct {
	AOIID      string                     `json:"aoi_id"`
	ObservedAt *time.Time                 `json:"observed_at"`
	Hazards    []string                   `json:"hazards"`
	Features   map[string]json.RawMessage `json:"features"`
}

// ParseFeatureSnapshot deserializes a RawEvent's value into a FeatureSnapshot.
//
// The message key stands in for a missing aoi_id and the message timestamp for
// a missing observed_at. Feature values may be JSON numbers or numeric
// strings. A non-numeric string is treated as a category and expanded to a
// one-hot key, so "land_cover": "urban" becomes land_cover_urban = 1. Anything
// else is dropped and recorded in Dropped so the scoring engine can fall back
// to that feature's default.
func ParseFeatureSnapshot(raw RawEvent) (FeatureSnapshot, error) {
	var wire snapshotWire
	if err := json.Unmarshal(raw.Value, &wire); err != nil {
		return FeatureSnapshot{}, fmt.Errorf("parse feature snapshot: %w", err)
	}

	snap := FeatureSnapshot{
		AOIID:    strings.TrimSpace(wire.AOIID),
		Features: make(RawFeatureMap, len(wire.Features)),
	}
	if snap.AOIID == "" {
		snap.AOIID = string(raw.Key)
	}
	if snap.AOIID == "" {
		return FeatureSnapshot{}, errors.New("parse feature snapshot: aoi_id is required")
	}

	if wire.ObservedAt != nil {
		snap.ObservedAt = wire.ObservedAt.UTC()
	} else {
		snap.ObservedAt = raw.Timestamp.UTC()
	}

	for _, s := range wire.Hazards {
		h, err := ParseHazardType(s)
		if err != nil {
			return FeatureSnapshot{}, fmt.Errorf("parse feature snapshot: %w", err)
		}
		snap.Hazards = append(snap.Hazards, h)
	}

	for name, value := range wire.Features {
		if v, ok := parseFeatureValue(value); ok {
			snap.Features[name] = v
			continue
		}
		if key, ok := categoryKey(name, value); ok {
			snap.Features[key] = 1
			continue
		}
		snap.Dropped = append(snap.Dropped, name)
	}
	sort.Strings(snap.Dropped)

	return snap, nil
}

// categoryPrefixes maps upstream category keys onto the one-hot prefix used
// by the scoring schemas when the two differ.
var categoryPrefixes = map[string]string{
	"geology_type": "geology",
	"rock_type":    "geology",
}

var categorySlug = strings.NewReplacer(" ", "_", "-", "_", "/", "_")

// parseFeatureValue accepts a finite JSON number or numeric string.
func parseFeatureValue(raw json.RawMessage) (float64, bool) {
	if isNull(raw) {
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err == nil {
		return v, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func categoryKey(name string, raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	s = strings.ToLower(strings.TrimSpace(s))
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return "", false
	}
	s = categorySlug.Replace(s)
	if s == "" {
		return "", false
	}
	prefix, ok := categoryPrefixes[name]
	if !ok {
		prefix = name
	}
	return prefix + "_" + s, true
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
