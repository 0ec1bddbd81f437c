package domain

import (
	"context"
	"time"
)

// GenerationStatus is the outcome of one generation attempt.
type GenerationStatus string

const (
	GenerationSucceeded GenerationStatus = "succeeded"
	GenerationFailed    GenerationStatus = "failed"
)

// GenerationRecord is the audit row persisted for each generation attempt.
type GenerationRecord struct {
	ID          string
	SessionID   string
	Mode        string
	Parts       []ExteriorPart
	Instruction string
	Model       string
	Status      GenerationStatus
	Error       string
	ResultKey   string
	Duration    time.Duration
	CreatedAt   time.Time
}

// GenerationRecorder persists generation attempts.
type GenerationRecorder interface {
	Record(ctx context.Context, rec GenerationRecord) error
}
