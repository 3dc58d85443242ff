package models

import "time"

type CandidateSource string

const (
	SourceManual CandidateSource = "manual"
	SourceLink   CandidateSource = "link"
	SourceLever  CandidateSource = "lever"
)

type Candidate struct {
	ID     uint            `json:"id" gorm:"primaryKey"`
	Name   string          `json:"name" gorm:"not null;size:200" validate:"required"`
	Email  string          `json:"email" gorm:"not null;size:200;index" validate:"required,email"`
	Source CandidateSource `json:"source" gorm:"default:manual"`

	CreatedAt time.Time `json:"created_at"`
}

func (Candidate) TableName() string {
	return "candidates"
}
