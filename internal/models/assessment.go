package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

type AssessmentType string

const (
	TypeScoring AssessmentType = "scoring"
	TypeOpen    AssessmentType = "open"
)

type AssessmentStatus string

const (
	StatusDraft    AssessmentStatus = "draft"
	StatusActive   AssessmentStatus = "active"
	StatusArchived AssessmentStatus = "archived"
)

type QuestionKind string

const (
	MultipleChoice QuestionKind = "multiple_choice"
	FillBlank      QuestionKind = "fill_blank"
	Written        QuestionKind = "written"
	Ranking        QuestionKind = "ranking"
)

// Question is immutable for the lifetime of a session. The kind decides
// which of the optional fields are meaningful.
type Question struct {
	ID     string       `json:"id" validate:"required"`
	Kind   QuestionKind `json:"kind" validate:"required,question_kind"`
	Prompt string       `json:"prompt" validate:"required"`
	Points int          `json:"points" validate:"min=0"`
	Weight float64      `json:"weight"`

	// multiple_choice
	Options      []string `json:"options,omitempty"`
	CorrectIndex *int     `json:"correct_index,omitempty"`

	// fill_blank
	AcceptedAnswers []string `json:"accepted_answers,omitempty"`

	// ranking (canonical correct order)
	OrderedItems []string `json:"ordered_items,omitempty"`

	// written (advisory bounds, never a submit gate)
	MinWords int `json:"min_words,omitempty"`
	MaxWords int `json:"max_words,omitempty"`
}

// CheckInvariants verifies the structural rules a question must satisfy
// before a session may run against it.
func (q *Question) CheckInvariants() error {
	switch q.Kind {
	case MultipleChoice:
		if q.CorrectIndex == nil {
			return fmt.Errorf("question %s: multiple_choice requires correct_index", q.ID)
		}
		if *q.CorrectIndex < 0 || *q.CorrectIndex >= len(q.Options) {
			return fmt.Errorf("question %s: correct_index %d out of range for %d options", q.ID, *q.CorrectIndex, len(q.Options))
		}
	case Ranking:
		seen := make(map[string]struct{}, len(q.OrderedItems))
		for _, item := range q.OrderedItems {
			if _, dup := seen[item]; dup {
				return fmt.Errorf("question %s: duplicate ranking item %q", q.ID, item)
			}
			seen[item] = struct{}{}
		}
	}
	return nil
}

// Section groups questions for presentation and reporting only; it
// carries no scoring semantics of its own.
type Section struct {
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

type Assessment struct {
	ID            uint                         `json:"id" gorm:"primaryKey"`
	Title         string                       `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Role          string                       `json:"role" gorm:"size:120"`
	Type          AssessmentType               `json:"type" gorm:"default:scoring;index" validate:"omitempty,assessment_type"`
	Status        AssessmentStatus             `json:"status" gorm:"default:draft;index" validate:"omitempty,oneof=draft active archived"`
	TimeLimit     int                          `json:"time_limit" gorm:"not null" validate:"required,min=1,max=300"` // minutes
	PassThreshold *int                         `json:"pass_threshold" validate:"omitempty,min=0,max=100"`
	Sections      datatypes.JSONSlice[Section] `json:"sections" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Assessment) TableName() string {
	return "assessments"
}

// QuestionRef ties a question to its section title and its position in
// the flattened question list used for navigation.
type QuestionRef struct {
	Section     string
	Question    Question
	GlobalIndex int
}

// AllQuestions flattens sections into navigation order.
func (a *Assessment) AllQuestions() []QuestionRef {
	var refs []QuestionRef
	idx := 0
	for _, sec := range a.Sections {
		for _, q := range sec.Questions {
			refs = append(refs, QuestionRef{Section: sec.Title, Question: q, GlobalIndex: idx})
			idx++
		}
	}
	return refs
}

func (a *Assessment) QuestionCount() int {
	n := 0
	for _, sec := range a.Sections {
		n += len(sec.Questions)
	}
	return n
}

func (a *Assessment) TotalPoints() int {
	total := 0
	for _, sec := range a.Sections {
		for _, q := range sec.Questions {
			total += q.Points
		}
	}
	return total
}

// QuestionByID returns the question with the given id, or false when no
// section contains it.
func (a *Assessment) QuestionByID(id string) (Question, bool) {
	for _, sec := range a.Sections {
		for _, q := range sec.Questions {
			if q.ID == id {
				return q, true
			}
		}
	}
	return Question{}, false
}

// CheckInvariants validates every question in every section.
func (a *Assessment) CheckInvariants() error {
	for _, sec := range a.Sections {
		for i := range sec.Questions {
			if err := sec.Questions[i].CheckInvariants(); err != nil {
				return err
			}
		}
	}
	return nil
}
