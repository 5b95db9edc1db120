package hazard

import "errors"

var (
	// ErrFeatureMalformed reports raw feature values that could not be used as
	// given. It is recovered locally with per-key defaults and only logged.
	ErrFeatureMalformed = errors.New("malformed features")

	// ErrArtifactNotFound means no model artifact exists for a hazard.
	ErrArtifactNotFound = errors.New("model artifact not found")

	// ErrArtifactInvalid means a model artifact could not be decoded or failed
	// structural validation.
	ErrArtifactInvalid = errors.New("invalid model artifact")

	// ErrSchemaMismatch means a vector or artifact disagrees with the hazard's
	// feature schema. It is a configuration error.
	ErrSchemaMismatch = errors.New("feature schema mismatch")

	// ErrPredictionFailure wraps any unexpected error during scoring.
	ErrPredictionFailure = errors.New("prediction failure")
)
