package models

import (
	"time"

	"gorm.io/datatypes"
)

type SubmissionStatus string

const (
	SubmissionPending    SubmissionStatus = "pending"
	SubmissionInProgress SubmissionStatus = "in_progress"
	SubmissionCompleted  SubmissionStatus = "completed"
	SubmissionExpired    SubmissionStatus = "expired"
)

// Submission is the durable record of one candidate's attempt. The
// engine reads it once to open a session and writes it exactly once to
// finalize.
type Submission struct {
	ID           uint             `json:"id" gorm:"primaryKey"`
	AssessmentID uint             `json:"assessment_id" gorm:"not null;index"`
	CandidateID  uint             `json:"candidate_id" gorm:"not null;index"`
	Token        string           `json:"token" gorm:"not null;uniqueIndex;size:64"`
	Status       SubmissionStatus `json:"status" gorm:"default:pending;index"`
	Answers      datatypes.JSON   `json:"answers" gorm:"type:jsonb"` // questionId -> wire value
	Score        *int             `json:"score"`
	Passed       *bool            `json:"passed"`
	StartedAt    *time.Time       `json:"started_at"`
	CompletedAt  *time.Time       `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	Assessment Assessment `json:"assessment" gorm:"foreignKey:AssessmentID"`
	Candidate  Candidate  `json:"candidate" gorm:"foreignKey:CandidateID"`
}

func (Submission) TableName() string {
	return "submissions"
}
