package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hkr-team/assessment-engine/internal/cache"
	"github.com/hkr-team/assessment-engine/internal/events"
	"github.com/hkr-team/assessment-engine/internal/models"
	"github.com/hkr-team/assessment-engine/internal/repositories"
	"github.com/hkr-team/assessment-engine/internal/session"
	"gorm.io/datatypes"
)

const (
	assessmentCacheTTL = 10 * time.Minute
	finalizeTimeout    = 15 * time.Second
	eventSource        = "assessment-engine"
	eventVersion       = "1.0"
)

// SessionSnapshot is the handler-facing view of a live session.
type SessionSnapshot struct {
	Token         string            `json:"token"`
	Phase         session.Phase     `json:"phase"`
	Assessment    *AssessmentView   `json:"assessment,omitempty"`
	Candidate     *models.Candidate `json:"candidate,omitempty"`
	CurrentIndex  int               `json:"current_index"`
	Remaining     int               `json:"remaining_seconds"`
	RemainingText string            `json:"remaining_text"`
	AnsweredCount int               `json:"answered_count"`
	QuestionCount int               `json:"question_count"`
	StartedAt     *time.Time        `json:"started_at,omitempty"`
	Answers       models.AnswerSet  `json:"answers,omitempty"`
}

// AssessmentView strips the assessment definition of its answer key
// before it leaves the service layer.
type AssessmentView struct {
	ID          uint             `json:"id"`
	Title       string           `json:"title"`
	Role        string           `json:"role"`
	Type        string           `json:"type"`
	TimeLimit   int              `json:"time_limit"` // minutes
	TotalPoints int              `json:"total_points"`
	Sections    []models.Section `json:"sections"`
}

// SessionService drives candidate sessions end to end: token
// resolution, the phase transitions, answer capture, and the single
// finalize write.
type SessionService interface {
	Open(ctx context.Context, token string) (*session.Session, error)
	Identify(ctx context.Context, token, name, email string) error
	Begin(ctx context.Context, token string) error
	Answer(ctx context.Context, token, questionID string, raw any) error
	Navigate(ctx context.Context, token string, index int) error
	Submit(ctx context.Context, token string, confirmed bool) error
	Snapshot(ctx context.Context, token string) (*SessionSnapshot, error)
	Close()
}

type sessionService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	publisher events.EventPublisher
	sessions  *session.Manager
	logger    *slog.Logger
	timerOpts []session.TimerOption
}

func NewSessionService(repo repositories.Repository, cacheService cache.CacheService, publisher events.EventPublisher, logger *slog.Logger, timerOpts ...session.TimerOption) SessionService {
	return &sessionService{
		repo:      repo,
		cache:     cacheService,
		publisher: publisher,
		sessions:  session.NewManager(),
		logger:    logger,
		timerOpts: timerOpts,
	}
}

// Open resolves a token to a live session, creating one on first
// access. Tokens that do not resolve, or whose submission is already
// closed, yield a session parked in the error phase so every later
// request sees the same terminal answer.
func (s *sessionService) Open(ctx context.Context, token string) (*session.Session, error) {
	if existing, ok := s.sessions.Get(token); ok {
		return existing, nil
	}

	sub, err := s.repo.Catalog().ResolveToken(ctx, token)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			s.logger.Warn("Unknown session token", "token", token)
			return s.sessions.Put(session.NewFailed(token)), nil
		}
		return nil, fmt.Errorf("failed to resolve token: %w", err)
	}

	if sub.Status == models.SubmissionCompleted || sub.Status == models.SubmissionExpired {
		s.logger.Info("Token already closed",
			"token", token,
			"submission_id", sub.ID,
			"status", sub.Status)
		return s.sessions.Put(session.NewFailed(token)), nil
	}

	assessment := s.loadAssessment(ctx, sub)
	sess := session.New(token, assessment, sub.Candidate, s.finalizeFunc(sub, assessment), s.timerOpts...)

	s.logger.Info("Session opened",
		"token", token,
		"submission_id", sub.ID,
		"assessment_id", assessment.ID,
		"candidate_email", sub.Candidate.Email)

	return s.sessions.Put(sess), nil
}

// loadAssessment serves the definition from cache when possible. A miss
// reads the catalog and seeds the cache; the copy preloaded on the
// submission is the last resort when the catalog read fails.
func (s *sessionService) loadAssessment(ctx context.Context, sub *models.Submission) *models.Assessment {
	key := cache.AssessmentKey(sub.AssessmentID)

	var cached models.Assessment
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Assessment cache read failed", "assessment_id", sub.AssessmentID, "error", err)
	}

	assessment, err := s.repo.Catalog().GetAssessment(ctx, sub.AssessmentID)
	if err != nil {
		s.logger.Warn("Assessment catalog read failed, using preloaded copy",
			"assessment_id", sub.AssessmentID,
			"error", err)
		preloaded := sub.Assessment
		assessment = &preloaded
	}
	if err := s.cache.Set(ctx, key, assessment, assessmentCacheTTL); err != nil {
		s.logger.Warn("Assessment cache write failed", "assessment_id", sub.AssessmentID, "error", err)
	}
	return assessment
}

func (s *sessionService) Identify(ctx context.Context, token, name, email string) error {
	sess, err := s.get(ctx, token)
	if err != nil {
		return err
	}
	if err := sess.Identify(name, email); err != nil {
		return err
	}

	candidate := sess.Candidate()
	if err := s.repo.Submission().UpdateCandidate(ctx, candidate.ID, candidate.Name, candidate.Email); err != nil {
		s.logger.Warn("Failed to persist confirmed identity",
			"token", token,
			"candidate_id", candidate.ID,
			"error", err)
	}
	return nil
}

func (s *sessionService) Begin(ctx context.Context, token string) error {
	sess, err := s.get(ctx, token)
	if err != nil {
		return err
	}

	startedAt, err := sess.Begin()
	if err != nil {
		return err
	}

	// The clock is already running; persistence problems here are an
	// operator concern, never a candidate one.
	sub, lookupErr := s.repo.Submission().GetByToken(ctx, token)
	if lookupErr != nil {
		s.logger.Error("Failed to load submission after begin", "token", token, "error", lookupErr)
		return nil
	}
	if err := s.repo.Submission().MarkInProgress(ctx, sub.ID, startedAt); err != nil {
		s.logger.Error("Failed to mark submission in progress",
			"token", token,
			"submission_id", sub.ID,
			"error", err)
	}

	s.publish(ctx, events.EventSessionStarted, &events.SessionStartedEvent{
		SubmissionID:    sub.ID,
		AssessmentID:    sess.Assessment.ID,
		AssessmentTitle: sess.Assessment.Title,
		CandidateEmail:  sess.Candidate().Email,
		StartedAt:       startedAt,
		TimeLimit:       sess.Assessment.TimeLimit,
	})
	return nil
}

func (s *sessionService) Answer(ctx context.Context, token, questionID string, raw any) error {
	sess, err := s.get(ctx, token)
	if err != nil {
		return err
	}

	q, ok := sess.Assessment.QuestionByID(questionID)
	if !ok {
		return session.ErrUnknownQuestion
	}
	ans, err := models.DecodeAnswer(q, raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return sess.SetAnswer(questionID, ans)
}

func (s *sessionService) Navigate(ctx context.Context, token string, index int) error {
	sess, err := s.get(ctx, token)
	if err != nil {
		return err
	}
	return sess.Navigate(index)
}

func (s *sessionService) Submit(ctx context.Context, token string, confirmed bool) error {
	sess, err := s.get(ctx, token)
	if err != nil {
		return err
	}
	return sess.Submit(confirmed)
}

func (s *sessionService) Snapshot(ctx context.Context, token string) (*SessionSnapshot, error) {
	sess, err := s.Open(ctx, token)
	if err != nil {
		return nil, err
	}

	snap := &SessionSnapshot{
		Token:         sess.Token,
		Phase:         sess.Phase(),
		CurrentIndex:  sess.CurrentIndex(),
		AnsweredCount: sess.AnsweredCount(),
		StartedAt:     sess.StartedAt(),
	}
	if sess.Assessment == nil {
		return snap, nil
	}

	candidate := sess.Candidate()
	snap.Candidate = &candidate
	snap.QuestionCount = sess.Assessment.QuestionCount()
	snap.Remaining = sess.Remaining()
	snap.RemainingText = session.FormatSeconds(snap.Remaining)
	snap.Answers = sess.Answers()
	snap.Assessment = &AssessmentView{
		ID:          sess.Assessment.ID,
		Title:       sess.Assessment.Title,
		Role:        sess.Assessment.Role,
		Type:        string(sess.Assessment.Type),
		TimeLimit:   sess.Assessment.TimeLimit,
		TotalPoints: sess.Assessment.TotalPoints(),
		Sections:    redactSections(sess.Assessment.Sections),
	}
	return snap, nil
}

// Close tears down every live session; used on host shutdown.
func (s *sessionService) Close() {
	s.sessions.Close()
}

// get returns an already-open session without touching storage.
func (s *sessionService) get(_ context.Context, token string) (*session.Session, error) {
	sess, ok := s.sessions.Get(token)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// finalizeFunc builds the per-session finalizer. It runs the durable
// write and event publishing on a separate goroutine so the terminal
// phase transition never waits on storage or the broker.
func (s *sessionService) finalizeFunc(sub *models.Submission, assessment *models.Assessment) session.FinalizeFunc {
	submissionID := sub.ID
	token := sub.Token
	email := sub.Candidate.Email

	return func(result models.ScoredResult, answers models.AnswerSet, reason session.EndReason, completedAt time.Time) {
		go s.persistResult(submissionID, token, email, assessment, result, answers, reason, completedAt)
	}
}

func (s *sessionService) persistResult(submissionID uint, token, email string, assessment *models.Assessment, result models.ScoredResult, answers models.AnswerSet, reason session.EndReason, completedAt time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), finalizeTimeout)
	defer cancel()

	raw, err := json.Marshal(answers)
	if err == nil {
		err = s.repo.Submission().Finalize(ctx, submissionID, repositories.FinalizeUpdate{
			Answers:     datatypes.JSON(raw),
			Score:       result.Percent,
			Passed:      result.Passed,
			CompletedAt: completedAt,
		})
	}
	if err != nil {
		s.logger.Error("Failed to finalize submission",
			"submission_id", submissionID,
			"token", token,
			"error", err)
		s.publish(ctx, events.EventFinalizeFailed, &events.FinalizeFailedEvent{
			SubmissionID: submissionID,
			AssessmentID: assessment.ID,
			Token:        token,
			Error:        err.Error(),
			OccurredAt:   time.Now(),
		})
		return
	}

	s.logger.Info("Submission finalized",
		"submission_id", submissionID,
		"score", result.Percent,
		"end_reason", reason)

	s.publish(ctx, events.EventSessionCompleted, &events.SessionCompletedEvent{
		SubmissionID:    submissionID,
		AssessmentID:    assessment.ID,
		AssessmentTitle: assessment.Title,
		CandidateEmail:  email,
		Score:           result.Percent,
		Passed:          result.Passed,
		EndReason:       string(reason),
		AnsweredCount:   countAnswered(answers),
		QuestionCount:   assessment.QuestionCount(),
		CompletedAt:     completedAt,
	})
}

func (s *sessionService) publish(ctx context.Context, eventType events.EventType, data any) {
	event := &events.SessionEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
	if err := s.publisher.PublishSessionEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish session event", "event_type", eventType, "error", err)
	}
}

func countAnswered(answers models.AnswerSet) int {
	n := 0
	for _, ans := range answers {
		if ans != nil && !ans.Empty() {
			n++
		}
	}
	return n
}

// redactSections removes grading keys from questions before they are
// sent to the candidate.
func redactSections(sections []models.Section) []models.Section {
	out := make([]models.Section, len(sections))
	for i, sec := range sections {
		out[i] = sec
		out[i].Questions = make([]models.Question, len(sec.Questions))
		for j, q := range sec.Questions {
			q.CorrectIndex = nil
			q.AcceptedAnswers = nil
			out[i].Questions[j] = q
		}
	}
	return out
}
