package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/hkr-team/assessment-engine/internal/models"
	"github.com/hkr-team/assessment-engine/internal/reporting"
	"github.com/hkr-team/assessment-engine/internal/repositories"
)

// ReportResponse is the operator-facing score report for one completed
// submission.
type ReportResponse struct {
	Token           string                `json:"token"`
	AssessmentTitle string                `json:"assessment_title"`
	Role            string                `json:"role"`
	AssessmentType  models.AssessmentType `json:"assessment_type"`
	CandidateName   string                `json:"candidate_name"`
	CandidateEmail  string                `json:"candidate_email"`

	Score           int    `json:"score"`
	Passed          *bool  `json:"passed,omitempty"`
	Percentile      int    `json:"percentile"`
	PercentileLabel string `json:"percentile_label"`
	PeerCount       int    `json:"peer_count"`
	PeerAverage     int    `json:"peer_average"`
	Delta           int    `json:"delta"`

	Breakdown []models.SectionScore `json:"breakdown"`
	Duration  string                `json:"duration"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ReportingService builds score reports and exports over completed
// submissions.
type ReportingService interface {
	Report(ctx context.Context, token string) (*ReportResponse, error)
	ExportXLSX(ctx context.Context, token string, w io.Writer) error
}

type reportingService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewReportingService(repo repositories.Repository, logger *slog.Logger) ReportingService {
	return &reportingService{
		repo:   repo,
		logger: logger,
	}
}

func (s *reportingService) Report(ctx context.Context, token string) (*ReportResponse, error) {
	sub, answers, err := s.loadCompleted(ctx, token)
	if err != nil {
		return nil, err
	}
	assessment := sub.Assessment

	peers, err := s.repo.Submission().PeerScores(ctx, sub.AssessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load peer scores: %w", err)
	}
	stats := reporting.BuildPeerStats(peers)

	score := 0
	if sub.Score != nil {
		score = *sub.Score
	}
	percentile := reporting.Percentile(score, peers)

	return &ReportResponse{
		Token:           sub.Token,
		AssessmentTitle: assessment.Title,
		Role:            assessment.Role,
		AssessmentType:  assessment.Type,
		CandidateName:   sub.Candidate.Name,
		CandidateEmail:  sub.Candidate.Email,
		Score:           score,
		Passed:          sub.Passed,
		Percentile:      percentile,
		PercentileLabel: reporting.PercentileLabel(percentile),
		PeerCount:       stats.Count,
		PeerAverage:     stats.Average,
		Delta:           reporting.ComparisonDelta(score, stats.Average),
		Breakdown:       reporting.SectionBreakdown(&assessment, answers),
		Duration:        reporting.FormatDuration(sub.StartedAt, sub.CompletedAt),
		StartedAt:       sub.StartedAt,
		CompletedAt:     sub.CompletedAt,
	}, nil
}

func (s *reportingService) ExportXLSX(ctx context.Context, token string, w io.Writer) error {
	sub, answers, err := s.loadCompleted(ctx, token)
	if err != nil {
		return err
	}
	assessment := sub.Assessment

	peers, err := s.repo.Submission().PeerScores(ctx, sub.AssessmentID)
	if err != nil {
		return fmt.Errorf("failed to load peer scores: %w", err)
	}

	score := 0
	if sub.Score != nil {
		score = *sub.Score
	}

	report := &reporting.ScoreReport{
		Assessment: &assessment,
		Candidate:  sub.Candidate,
		Score:      score,
		Passed:     sub.Passed,
		Percentile: reporting.Percentile(score, peers),
		Peers:      reporting.BuildPeerStats(peers),
		Breakdown:  reporting.SectionBreakdown(&assessment, answers),
		Duration:   reporting.FormatDuration(sub.StartedAt, sub.CompletedAt),
	}

	s.logger.Info("Exporting score report",
		"token", token,
		"submission_id", sub.ID)

	return reporting.WriteXLSX(w, report)
}

// loadCompleted fetches a completed submission by token and decodes its
// persisted answers back into typed form.
func (s *reportingService) loadCompleted(ctx context.Context, token string) (*models.Submission, models.AnswerSet, error) {
	sub, err := s.repo.Submission().GetByToken(ctx, token)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrSubmissionNotFound
		}
		return nil, nil, fmt.Errorf("failed to load submission: %w", err)
	}
	if sub.Status != models.SubmissionCompleted {
		return nil, nil, ErrSubmissionNotCompleted
	}

	answers := models.AnswerSet{}
	if len(sub.Answers) > 0 {
		var raw map[string]any
		if err := json.Unmarshal(sub.Answers, &raw); err != nil {
			return nil, nil, fmt.Errorf("failed to decode stored answers: %w", err)
		}
		answers, err = models.DecodeAnswerSet(&sub.Assessment, raw)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decode stored answers: %w", err)
		}
	}
	return sub, answers, nil
}
