package scoring

import (
	"testing"

	"github.com/hkr-team/assessment-engine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func mcQuestion(id string, points, correct int, options ...string) models.Question {
	return models.Question{
		ID:           id,
		Kind:         models.MultipleChoice,
		Prompt:       "pick one",
		Points:       points,
		Options:      options,
		CorrectIndex: intPtr(correct),
	}
}

func TestScoreQuestion_Unanswered(t *testing.T) {
	questions := []models.Question{
		mcQuestion("q1", 10, 1, "a", "b"),
		{ID: "q2", Kind: models.FillBlank, Points: 5, AcceptedAnswers: []string{"Paris"}},
		{ID: "q3", Kind: models.Written, Points: 5},
		{ID: "q4", Kind: models.Ranking, Points: 5, OrderedItems: []string{"x", "y"}},
	}

	for _, q := range questions {
		score := ScoreQuestion(q, nil)
		assert.Equal(t, 0, score.Earned, "nil answer for %s", q.ID)
		assert.Nil(t, score.Correct, "nil answer for %s", q.ID)
	}

	// Empty values count as unanswered, not as wrong.
	score := ScoreQuestion(questions[1], models.FillBlankAnswer{Text: ""})
	assert.Equal(t, 0, score.Earned)
	assert.Nil(t, score.Correct)

	score = ScoreQuestion(questions[3], models.RankingAnswer{})
	assert.Nil(t, score.Correct)
}

func TestScoreQuestion_MultipleChoice(t *testing.T) {
	q := mcQuestion("q1", 10, 2, "a", "b", "c")

	score := ScoreQuestion(q, models.ChoiceAnswer{Selected: 2})
	require.NotNil(t, score.Correct)
	assert.True(t, *score.Correct)
	assert.Equal(t, 10, score.Earned)

	for _, wrong := range []int{0, 1, 3} {
		score = ScoreQuestion(q, models.ChoiceAnswer{Selected: wrong})
		require.NotNil(t, score.Correct)
		assert.False(t, *score.Correct)
		assert.Equal(t, 0, score.Earned)
	}
}

func TestScoreQuestion_FillBlank_CaseAndWhitespace(t *testing.T) {
	q := models.Question{
		ID:              "q1",
		Kind:            models.FillBlank,
		Points:          5,
		AcceptedAnswers: []string{"Paris"},
	}

	for _, input := range []string{"Paris ", "paris", "PARIS", "  pArIs  "} {
		score := ScoreQuestion(q, models.FillBlankAnswer{Text: input})
		require.NotNil(t, score.Correct, "input %q", input)
		assert.True(t, *score.Correct, "input %q", input)
		assert.Equal(t, 5, score.Earned)
	}

	score := ScoreQuestion(q, models.FillBlankAnswer{Text: "London"})
	require.NotNil(t, score.Correct)
	assert.False(t, *score.Correct)
	assert.Equal(t, 0, score.Earned)
}

func TestScoreQuestion_Ranking_AllOrNothing(t *testing.T) {
	q := models.Question{
		ID:           "q1",
		Kind:         models.Ranking,
		Points:       8,
		OrderedItems: []string{"first", "second", "third"},
	}

	score := ScoreQuestion(q, models.RankingAnswer{Order: []string{"first", "second", "third"}})
	require.NotNil(t, score.Correct)
	assert.True(t, *score.Correct)
	assert.Equal(t, 8, score.Earned)

	// Two of three positions right still earns nothing.
	permutations := [][]string{
		{"second", "first", "third"},
		{"first", "third", "second"},
		{"third", "second", "first"},
		{"first", "second"},
	}
	for _, order := range permutations {
		score = ScoreQuestion(q, models.RankingAnswer{Order: order})
		require.NotNil(t, score.Correct, "order %v", order)
		assert.False(t, *score.Correct, "order %v", order)
		assert.Equal(t, 0, score.Earned)
	}
}

func TestScoreQuestion_Written_NeverAutoGraded(t *testing.T) {
	q := models.Question{ID: "q1", Kind: models.Written, Points: 20, MinWords: 50}

	score := ScoreQuestion(q, models.WrittenAnswer{Text: "a thorough, well argued essay"})
	assert.Nil(t, score.Correct)
	assert.Equal(t, 0, score.Earned)
}

func scoringAssessment(threshold int) *models.Assessment {
	return &models.Assessment{
		ID:            1,
		Title:         "Backend Screen",
		Type:          models.TypeScoring,
		TimeLimit:     20,
		PassThreshold: intPtr(threshold),
		Sections: []models.Section{
			{
				Title: "General",
				Questions: []models.Question{
					mcQuestion("q1", 10, 0, "yes", "no"),
					mcQuestion("q2", 10, 1, "yes", "no"),
				},
			},
		},
	}
}

func TestScoreAssessment_HalfAnswered(t *testing.T) {
	a := scoringAssessment(70)
	answers := models.AnswerSet{"q1": models.ChoiceAnswer{Selected: 0}}

	result := ScoreAssessment(a, answers)

	assert.Equal(t, 10, result.Earned)
	assert.Equal(t, 20, result.Possible)
	assert.Equal(t, 50, result.Percent)
	require.NotNil(t, result.Passed)
	assert.False(t, *result.Passed)

	require.NotNil(t, result.Questions["q1"].Correct)
	assert.True(t, *result.Questions["q1"].Correct)
	assert.Nil(t, result.Questions["q2"].Correct)
}

func TestScoreAssessment_PassAtThreshold(t *testing.T) {
	a := scoringAssessment(50)
	answers := models.AnswerSet{"q1": models.ChoiceAnswer{Selected: 0}}

	result := ScoreAssessment(a, answers)
	require.NotNil(t, result.Passed)
	assert.True(t, *result.Passed)
}

func TestScoreAssessment_OpenAssessmentHasNoPassed(t *testing.T) {
	a := scoringAssessment(70)
	a.Type = models.TypeOpen

	result := ScoreAssessment(a, models.AnswerSet{})
	assert.Nil(t, result.Passed)
}

func TestScoreAssessment_ZeroPossible(t *testing.T) {
	a := &models.Assessment{Type: models.TypeScoring, PassThreshold: intPtr(70)}
	result := ScoreAssessment(a, models.AnswerSet{})
	assert.Equal(t, 0, result.Percent)
}

func TestScoreAssessment_Idempotent(t *testing.T) {
	a := scoringAssessment(70)
	answers := models.AnswerSet{
		"q1": models.ChoiceAnswer{Selected: 0},
		"q2": models.ChoiceAnswer{Selected: 0},
	}

	first := ScoreAssessment(a, answers)
	second := ScoreAssessment(a, answers)
	assert.Equal(t, first, second)
}
