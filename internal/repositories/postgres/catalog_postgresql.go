package postgres

import (
	"context"

	"github.com/hkr-team/assessment-engine/internal/models"
	"github.com/hkr-team/assessment-engine/internal/repositories"
	"gorm.io/gorm"
)

type CatalogPostgreSQL struct {
	db *gorm.DB
}

func NewCatalogPostgreSQL(db *gorm.DB) repositories.CatalogRepository {
	return &CatalogPostgreSQL{db: db}
}

func (c CatalogPostgreSQL) ResolveToken(ctx context.Context, token string) (*models.Submission, error) {
	var submission models.Submission
	if err := c.db.WithContext(ctx).
		Preload("Assessment").
		Preload("Candidate").
		Where("token = ?", token).
		First(&submission).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

func (c CatalogPostgreSQL) GetAssessment(ctx context.Context, id uint) (*models.Assessment, error) {
	var assessment models.Assessment
	if err := c.db.WithContext(ctx).First(&assessment, id).Error; err != nil {
		return nil, err
	}
	return &assessment, nil
}
