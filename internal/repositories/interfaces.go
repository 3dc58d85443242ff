package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/hkr-team/assessment-engine/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CatalogRepository is the read-only view over assessment definitions.
// The engine resolves a session token to its (assessment, submission,
// candidate) tuple exactly once, at session open.
type CatalogRepository interface {
	// ResolveToken loads the submission for a token with its
	// assessment and candidate preloaded.
	ResolveToken(ctx context.Context, token string) (*models.Submission, error)
	GetAssessment(ctx context.Context, id uint) (*models.Assessment, error)
}

// FinalizeUpdate is the one write the engine performs against durable
// storage.
type FinalizeUpdate struct {
	Answers     datatypes.JSON
	Score       int
	Passed      *bool
	CompletedAt time.Time
}

// SubmissionRepository owns the submission lifecycle writes and the
// peer-score reads consumed by reporting.
type SubmissionRepository interface {
	GetByToken(ctx context.Context, token string) (*models.Submission, error)
	// UpdateCandidate persists the identity confirmed at the identify
	// step.
	UpdateCandidate(ctx context.Context, candidateID uint, name, email string) error
	// MarkInProgress stamps started_at when the candidate begins.
	MarkInProgress(ctx context.Context, id uint, startedAt time.Time) error
	// Finalize records answers, score, pass flag, completion time and
	// flips the status to completed.
	Finalize(ctx context.Context, id uint, update FinalizeUpdate) error
	// PeerScores returns the scores of completed submissions for an
	// assessment, for percentile and average computation.
	PeerScores(ctx context.Context, assessmentID uint) ([]int, error)
}

// Repository aggregates the engine's data access behind one handle.
type Repository interface {
	Catalog() CatalogRepository
	Submission() SubmissionRepository
}

// IsNotFoundError reports whether err is the backing store's record-not-
// found condition.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
