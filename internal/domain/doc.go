// Package domain models the inputs and outputs of hazard risk scoring.
//
// # Feature Snapshots
//
// An upstream acquisition service samples satellite and weather sources for an
// area of interest (AOI) and publishes the observations as a flat map of
// named numeric features. Keys are snake_case and unit-bearing by convention:
//
//	land_surface_temperature  °C
//	ndvi                      unitless, -1..1
//	fuel_moisture             %
//	wind_speed                km/h
//	wind_direction, aspect    degrees clockwise from north
//	humidity                  % relative humidity
//	precipitation_7day        mm
//	road_distance             m
//
// Any key may be absent. Missing keys are filled from documented per-hazard
// defaults by the scoring engine, so a sparse snapshot is normal input.
//
// # Predictions
//
// Each hazard (wildfire, flood, landslide) yields a [HazardPrediction]: a risk
// score and a confidence, both on 0..100, human-readable contributing factors,
// tiered recommendations, and a set of hazard-specific derived metrics that are
// flattened into the prediction's JSON object. ModelStatus records which path
// produced the answer:
//
//	ensemble  trained tree ensembles were loaded and scored the snapshot
//	fallback  the model artifact was unavailable; deterministic rules scored it
//	default   scoring failed; a fixed conservative answer was substituted
//
// # Assessments
//
// An [Assessment] bundles the per-hazard predictions for one snapshot with an
// overall weighted score and a four-level risk classification:
//
//	> 75 critical | > 50 high | > 25 moderate | otherwise low
//
// Assessment IDs are name-based UUIDs derived from aoi_id and observed_at, so
// replaying a snapshot produces the same ID downstream.
package domain
