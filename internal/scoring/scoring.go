// Package scoring implements deterministic auto-grading for assessment
// answers. All functions are pure: the same assessment and answer
// snapshot always produce the same result, with no side effects.
package scoring

import (
	"math"
	"strings"

	"github.com/hkr-team/assessment-engine/internal/models"
)

// ScoreQuestion grades a single answer against its question.
//
// An absent or empty answer earns zero with nil correctness regardless
// of kind. Written answers are never auto-graded; they always come back
// with nil correctness and zero earned points.
func ScoreQuestion(q models.Question, ans models.Answer) models.QuestionScore {
	score := models.QuestionScore{QuestionID: q.ID}
	if ans == nil || ans.Empty() {
		return score
	}

	var correct bool
	switch a := ans.(type) {
	case models.ChoiceAnswer:
		correct = q.CorrectIndex != nil && a.Selected == *q.CorrectIndex
	case models.FillBlankAnswer:
		normalized := strings.ToLower(strings.TrimSpace(a.Text))
		for _, accepted := range q.AcceptedAnswers {
			if strings.ToLower(strings.TrimSpace(accepted)) == normalized {
				correct = true
				break
			}
		}
	case models.RankingAnswer:
		// All-or-nothing: every position must match the canonical
		// order exactly. No partial credit.
		correct = len(a.Order) == len(q.OrderedItems)
		if correct {
			for i, item := range a.Order {
				if item != q.OrderedItems[i] {
					correct = false
					break
				}
			}
		}
	case models.WrittenAnswer:
		return score
	default:
		return score
	}

	score.Correct = &correct
	if correct {
		score.Earned = q.Points
	}
	return score
}

// ScoreAssessment aggregates per-question scores into the final result.
//
// Question weight is not applied here: the percentage is earned points
// over possible points, and weight only feeds display-level summaries.
// Passed is nil for open assessments and for scoring assessments
// without a threshold.
func ScoreAssessment(a *models.Assessment, answers models.AnswerSet) models.ScoredResult {
	result := models.ScoredResult{
		Questions: make(map[string]models.QuestionScore),
	}

	for _, sec := range a.Sections {
		for _, q := range sec.Questions {
			result.Possible += q.Points
			qs := ScoreQuestion(q, answers[q.ID])
			result.Earned += qs.Earned
			result.Questions[q.ID] = qs
		}
	}

	result.Percent = Percent(result.Earned, result.Possible)

	if a.Type == models.TypeScoring && a.PassThreshold != nil {
		passed := result.Percent >= *a.PassThreshold
		result.Passed = &passed
	}
	return result
}

// Percent computes round(100 * earned / possible), or 0 when nothing is
// possible.
func Percent(earned, possible int) int {
	if possible <= 0 {
		return 0
	}
	return int(math.Round(float64(earned) / float64(possible) * 100))
}
