// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
)

// Common application errors.
var (
	// Training data errors.
	ErrDataNotFound  = errors.New("training data not found")
	ErrEmptyDataset  = errors.New("dataset is empty after cleaning")
	ErrMissingColumn = errors.New("missing required column")

	// Training errors.
	ErrNoCandidates   = errors.New("no candidate finished training")
	ErrTrainingFailed = errors.New("training failed")

	// Model artifact errors.
	ErrModelNotFound    = errors.New("model not found")
	ErrModelCorrupted   = errors.New("model artifact corrupted")
	ErrPredictionFailed = errors.New("prediction failed")

	// Configuration errors.
	ErrInvalidConfig = errors.New("invalid configuration")
)
