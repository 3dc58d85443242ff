// Package session implements the runtime of one candidate's attempt:
// the phase state machine, the in-memory answer store, and the
// countdown timer that drives auto-submission.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hkr-team/assessment-engine/internal/models"
	"github.com/hkr-team/assessment-engine/internal/scoring"
)

type Phase string

const (
	PhaseIdentify Phase = "identify"
	PhaseWelcome  Phase = "welcome"
	PhaseActive   Phase = "active"
	PhaseDone     Phase = "done"
	PhaseError    Phase = "error"
)

// EndReason records which trigger closed the session.
type EndReason string

const (
	EndManualSubmit EndReason = "manual_submit"
	EndTimeout      EndReason = "timeout"
)

var (
	ErrIdentityRequired     = errors.New("name and email are required")
	ErrInvalidPhase         = errors.New("operation not allowed in current phase")
	ErrUnknownQuestion      = errors.New("question not part of this assessment")
	ErrIndexOutOfRange      = errors.New("question index out of range")
	ErrAnswerKindMismatch   = errors.New("answer kind does not match question kind")
	ErrConfirmationRequired = errors.New("unanswered questions remain; submission must be confirmed")
)

// FinalizeFunc receives the one scoring outcome of a session. It is
// invoked exactly once, after the terminal transition, and must not
// block the state machine: persistence runs on its own goroutine and
// reports failures through the operator channel, never to the
// candidate.
type FinalizeFunc func(result models.ScoredResult, answers models.AnswerSet, reason EndReason, completedAt time.Time)

// Session is the ephemeral runtime state of one attempt. All methods
// are safe for concurrent use; in practice a session serves a single
// candidate plus its own timer goroutine.
type Session struct {
	Token      string
	Assessment *models.Assessment

	mu           sync.Mutex
	phase        Phase
	candidate    models.Candidate
	currentIndex int
	startedAt    *time.Time

	answers  *AnswerStore
	timer    *CountdownTimer
	finalize FinalizeFunc

	timerOpts []TimerOption
}

// New creates a session in the identify phase. The candidate identity
// is prefilled from the submission record and confirmed (or corrected)
// by Identify.
func New(token string, a *models.Assessment, candidate models.Candidate, finalize FinalizeFunc, timerOpts ...TimerOption) *Session {
	return &Session{
		Token:      token,
		Assessment: a,
		phase:      PhaseIdentify,
		candidate:  candidate,
		answers:    NewAnswerStore(),
		finalize:   finalize,
		timerOpts:  timerOpts,
	}
}

// NewFailed creates a session already in the terminal error phase, for
// tokens that could not be resolved.
func NewFailed(token string) *Session {
	return &Session{Token: token, phase: PhaseError}
}

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Session) Candidate() models.Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.candidate
}

func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentIndex
}

func (s *Session) StartedAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startedAt
}

// Remaining returns the seconds left, or the full limit before the
// timer starts.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer == nil {
		return s.Assessment.TimeLimit * 60
	}
	return s.timer.Remaining()
}

func (s *Session) AnsweredCount() int {
	if s.answers == nil {
		return 0
	}
	return s.answers.AnsweredCount()
}

func (s *Session) Answer(questionID string) models.Answer {
	if s.answers == nil {
		return nil
	}
	return s.answers.Get(questionID)
}

// Answers returns a detached snapshot of all recorded answers.
func (s *Session) Answers() models.AnswerSet {
	if s.answers == nil {
		return models.AnswerSet{}
	}
	return s.answers.Snapshot()
}

// Identify confirms the candidate's name and email and moves to the
// welcome phase. Missing fields block the transition; they are not an
// error condition beyond that.
func (s *Session) Identify(name, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseIdentify {
		return fmt.Errorf("%w: identify in phase %s", ErrInvalidPhase, s.phase)
	}
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" {
		return ErrIdentityRequired
	}
	s.candidate.Name = strings.TrimSpace(name)
	s.candidate.Email = strings.TrimSpace(email)
	s.phase = PhaseWelcome
	return nil
}

// Begin starts the attempt: the countdown runs from the assessment's
// full time limit and the candidate is placed on the first question.
// Returns the start time so the caller can mark the submission
// in-progress.
func (s *Session) Begin() (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseWelcome {
		return time.Time{}, fmt.Errorf("%w: begin in phase %s", ErrInvalidPhase, s.phase)
	}
	now := time.Now()
	s.phase = PhaseActive
	s.currentIndex = 0
	s.startedAt = &now
	s.timer = NewCountdownTimer(s.Assessment.TimeLimit*60, s.timerOpts...)
	s.timer.Start(s.expire)
	return now, nil
}

// SetAnswer records the candidate's current answer for a question. The
// answer kind must match the question kind; the value itself is never
// validated for correctness here.
//
// The phase check and the write happen under one mutex hold: finish()
// runs under the same mutex, so an accepted answer is always part of
// the snapshot the finalizer scores, and nothing lands after done.
func (s *Session) SetAnswer(questionID string, ans models.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseActive {
		return fmt.Errorf("%w: answer in phase %s", ErrInvalidPhase, s.phase)
	}

	q, ok := s.Assessment.QuestionByID(questionID)
	if !ok {
		return ErrUnknownQuestion
	}
	if ans != nil && ans.Kind() != q.Kind {
		return fmt.Errorf("%w: question %s is %s, got %s", ErrAnswerKindMismatch, questionID, q.Kind, ans.Kind())
	}
	s.answers.Set(questionID, ans)
	return nil
}

// Navigate moves to any question by flat index; forward and backward
// are both allowed and never touch recorded answers.
func (s *Session) Navigate(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseActive {
		return fmt.Errorf("%w: navigate in phase %s", ErrInvalidPhase, s.phase)
	}
	if index < 0 || index >= s.Assessment.QuestionCount() {
		return ErrIndexOutOfRange
	}
	s.currentIndex = index
	return nil
}

// Submit closes the session on the candidate's request. When questions
// remain unanswered the caller must pass confirmed=true, acknowledging
// that they score zero; answering everything is never a hard
// requirement. The timer-driven path bypasses confirmation entirely.
func (s *Session) Submit(confirmed bool) error {
	s.mu.Lock()
	if s.phase != PhaseActive {
		s.mu.Unlock()
		return fmt.Errorf("%w: submit in phase %s", ErrInvalidPhase, s.phase)
	}
	if !confirmed && s.answers.AnsweredCount() < s.Assessment.QuestionCount() {
		s.mu.Unlock()
		return ErrConfirmationRequired
	}
	s.finish(EndManualSubmit)
	s.mu.Unlock()
	return nil
}

// expire is the timer's expiry callback.
func (s *Session) expire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseActive {
		return
	}
	s.finish(EndTimeout)
}

// finish performs the single terminal transition: stop the clock, score
// once, hand the result to the finalizer, and land in done. Callers
// hold s.mu.
func (s *Session) finish(reason EndReason) {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.phase = PhaseDone

	answers := s.answers.Snapshot()
	result := scoring.ScoreAssessment(s.Assessment, answers)
	if s.finalize != nil {
		s.finalize(result, answers, reason, time.Now())
	}
}

// Teardown cancels the timer without scoring, for host shutdown. A
// session that already finished is unaffected.
func (s *Session) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
}
