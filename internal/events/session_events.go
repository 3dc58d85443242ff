package events

import (
	"time"
)

// EventType represents the session lifecycle events the engine emits.
type EventType string

const (
	EventSessionStarted   EventType = "session.started"
	EventSessionCompleted EventType = "session.completed"

	// EventFinalizeFailed is the operator-facing error channel for the
	// fire-and-forget finalize write: the candidate still reaches the
	// done phase, operators get the failure here.
	EventFinalizeFailed EventType = "session.finalize_failed"
)

// SessionEvent is the envelope for all session lifecycle events.
type SessionEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type SessionStartedEvent struct {
	SubmissionID    uint      `json:"submission_id"`
	AssessmentID    uint      `json:"assessment_id"`
	AssessmentTitle string    `json:"assessment_title"`
	CandidateEmail  string    `json:"candidate_email"`
	StartedAt       time.Time `json:"started_at"`
	TimeLimit       int       `json:"time_limit"` // minutes
}

type SessionCompletedEvent struct {
	SubmissionID    uint      `json:"submission_id"`
	AssessmentID    uint      `json:"assessment_id"`
	AssessmentTitle string    `json:"assessment_title"`
	CandidateEmail  string    `json:"candidate_email"`
	Score           int       `json:"score"`
	Passed          *bool     `json:"passed,omitempty"`
	EndReason       string    `json:"end_reason"` // manual_submit | timeout
	AnsweredCount   int       `json:"answered_count"`
	QuestionCount   int       `json:"question_count"`
	CompletedAt     time.Time `json:"completed_at"`
}

type FinalizeFailedEvent struct {
	SubmissionID uint      `json:"submission_id"`
	AssessmentID uint      `json:"assessment_id"`
	Token        string    `json:"token"`
	Error        string    `json:"error"`
	OccurredAt   time.Time `json:"occurred_at"`
}
