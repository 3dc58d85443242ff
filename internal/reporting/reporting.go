// Package reporting computes comparative analytics over finalized
// submissions: percentile against peers, per-section breakdowns, and
// deltas against the peer average. It never participates in a live
// session.
package reporting

import (
	"fmt"
	"math"
	"time"

	"github.com/hkr-team/assessment-engine/internal/models"
	"github.com/hkr-team/assessment-engine/internal/scoring"
)

// Percentile is the share of peers the candidate beat, scaled 0-100.
// With one peer or none there is nobody to beat, so the result is 100.
// This is deliberately not the textbook percentile-rank formula; report
// consumers depend on these exact values.
func Percentile(score int, peerScores []int) int {
	if len(peerScores) <= 1 {
		return 100
	}
	below := 0
	for _, s := range peerScores {
		if s < score {
			below++
		}
	}
	return int(math.Round(float64(below) / float64(len(peerScores)-1) * 100))
}

// PercentileLabel buckets a percentile into the band shown on report
// views.
func PercentileLabel(percentile int) string {
	switch {
	case percentile >= 95:
		return "Top 5%"
	case percentile >= 90:
		return "Top 10%"
	case percentile >= 75:
		return "Top 25%"
	case percentile >= 50:
		return "Above Average"
	case percentile >= 25:
		return "Below Average"
	default:
		return "Bottom 25%"
	}
}

// SectionBreakdown scores each section of a finalized answer set:
// possible points, earned points, exactly-correct count, and the
// rounded percent (zero when the section is worthless).
func SectionBreakdown(a *models.Assessment, answers models.AnswerSet) []models.SectionScore {
	breakdown := make([]models.SectionScore, 0, len(a.Sections))
	for _, sec := range a.Sections {
		score := models.SectionScore{Title: sec.Title, Total: len(sec.Questions)}
		for _, q := range sec.Questions {
			score.Possible += q.Points
			qs := scoring.ScoreQuestion(q, answers[q.ID])
			score.Earned += qs.Earned
			if qs.Correct != nil && *qs.Correct {
				score.Correct++
			}
		}
		score.Percent = scoring.Percent(score.Earned, score.Possible)
		breakdown = append(breakdown, score)
	}
	return breakdown
}

// ComparisonDelta is the signed difference between the candidate's
// score and the peer average.
func ComparisonDelta(score, peerAverage int) int {
	return score - peerAverage
}

// BuildPeerStats aggregates completed peers' scores.
func BuildPeerStats(scores []int) models.PeerStats {
	stats := models.PeerStats{Count: len(scores), Scores: scores}
	if len(scores) == 0 {
		return stats
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	stats.Average = int(math.Round(float64(sum) / float64(len(scores))))
	return stats
}

// FormatDuration renders the wall time between start and completion as
// "12m 5s", or "--" when either timestamp is missing.
func FormatDuration(startedAt, completedAt *time.Time) string {
	if startedAt == nil || completedAt == nil {
		return "--"
	}
	elapsed := completedAt.Sub(*startedAt)
	mins := int(elapsed.Minutes())
	secs := int(elapsed.Seconds()) % 60
	if mins == 0 {
		return fmt.Sprintf("%ds", secs)
	}
	return fmt.Sprintf("%dm %ds", mins, secs)
}
