package postgres

import (
	"context"
	"time"

	"github.com/hkr-team/assessment-engine/internal/models"
	"github.com/hkr-team/assessment-engine/internal/repositories"
	"gorm.io/gorm"
)

type SubmissionPostgreSQL struct {
	db *gorm.DB
}

func NewSubmissionPostgreSQL(db *gorm.DB) repositories.SubmissionRepository {
	return &SubmissionPostgreSQL{db: db}
}

func (s SubmissionPostgreSQL) GetByToken(ctx context.Context, token string) (*models.Submission, error) {
	var submission models.Submission
	if err := s.db.WithContext(ctx).
		Preload("Assessment").
		Preload("Candidate").
		Where("token = ?", token).
		First(&submission).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

func (s SubmissionPostgreSQL) UpdateCandidate(ctx context.Context, candidateID uint, name, email string) error {
	return s.db.WithContext(ctx).
		Model(&models.Candidate{}).
		Where("id = ?", candidateID).
		Updates(map[string]any{
			"name":  name,
			"email": email,
		}).Error
}

func (s SubmissionPostgreSQL) MarkInProgress(ctx context.Context, id uint, startedAt time.Time) error {
	return s.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     models.SubmissionInProgress,
			"started_at": startedAt,
		}).Error
}

func (s SubmissionPostgreSQL) Finalize(ctx context.Context, id uint, update repositories.FinalizeUpdate) error {
	return s.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"answers":      update.Answers,
			"score":        update.Score,
			"passed":       update.Passed,
			"status":       models.SubmissionCompleted,
			"completed_at": update.CompletedAt,
		}).Error
}

func (s SubmissionPostgreSQL) PeerScores(ctx context.Context, assessmentID uint) ([]int, error) {
	var scores []int
	if err := s.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("assessment_id = ? AND status = ? AND score IS NOT NULL", assessmentID, models.SubmissionCompleted).
		Pluck("score", &scores).Error; err != nil {
		return nil, err
	}
	return scores, nil
}

// repository bundles both stores over one gorm handle.
type repository struct {
	catalog    repositories.CatalogRepository
	submission repositories.SubmissionRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		catalog:    NewCatalogPostgreSQL(db),
		submission: NewSubmissionPostgreSQL(db),
	}
}

func (r *repository) Catalog() repositories.CatalogRepository       { return r.catalog }
func (r *repository) Submission() repositories.SubmissionRepository { return r.submission }
