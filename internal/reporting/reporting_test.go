package reporting

import (
	"bytes"
	"testing"
	"time"

	"github.com/hkr-team/assessment-engine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestPercentile(t *testing.T) {
	tests := []struct {
		name  string
		score int
		peers []int
		want  int
	}{
		{"no peers", 80, nil, 100},
		{"single peer", 80, []int{80}, 100},
		{"beats two of two others", 80, []int{60, 70, 90}, 100},
		{"beats none", 50, []int{60, 70, 90}, 0},
		{"middle of the pack", 75, []int{60, 70, 80, 90}, 67},
		{"ties do not count as beaten", 70, []int{70, 70, 70}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Percentile(tt.score, tt.peers))
		})
	}
}

func TestPercentileLabel(t *testing.T) {
	assert.Equal(t, "Top 5%", PercentileLabel(97))
	assert.Equal(t, "Top 10%", PercentileLabel(90))
	assert.Equal(t, "Top 25%", PercentileLabel(80))
	assert.Equal(t, "Above Average", PercentileLabel(50))
	assert.Equal(t, "Below Average", PercentileLabel(30))
	assert.Equal(t, "Bottom 25%", PercentileLabel(10))
}

func breakdownAssessment() *models.Assessment {
	return &models.Assessment{
		Title: "Screen",
		Type:  models.TypeScoring,
		Sections: []models.Section{
			{
				Title: "Knowledge",
				Questions: []models.Question{
					{ID: "q1", Kind: models.MultipleChoice, Points: 10, Options: []string{"a", "b"}, CorrectIndex: intPtr(0)},
					{ID: "q2", Kind: models.FillBlank, Points: 10, AcceptedAnswers: []string{"go"}},
				},
			},
			{
				Title:     "Essay",
				Questions: []models.Question{{ID: "q3", Kind: models.Written, Points: 0}},
			},
		},
	}
}

func TestSectionBreakdown(t *testing.T) {
	answers := models.AnswerSet{
		"q1": models.ChoiceAnswer{Selected: 0},
		"q2": models.FillBlankAnswer{Text: "rust"},
		"q3": models.WrittenAnswer{Text: "words"},
	}

	breakdown := SectionBreakdown(breakdownAssessment(), answers)
	require.Len(t, breakdown, 2)

	knowledge := breakdown[0]
	assert.Equal(t, "Knowledge", knowledge.Title)
	assert.Equal(t, 10, knowledge.Earned)
	assert.Equal(t, 20, knowledge.Possible)
	assert.Equal(t, 50, knowledge.Percent)
	assert.Equal(t, 1, knowledge.Correct)
	assert.Equal(t, 2, knowledge.Total)

	// Zero-point sections report zero percent, not a division error.
	essay := breakdown[1]
	assert.Equal(t, 0, essay.Possible)
	assert.Equal(t, 0, essay.Percent)
	assert.Equal(t, 0, essay.Correct)
}

func TestComparisonDelta(t *testing.T) {
	assert.Equal(t, 12, ComparisonDelta(80, 68))
	assert.Equal(t, -15, ComparisonDelta(55, 70))
	assert.Equal(t, 0, ComparisonDelta(70, 70))
}

func TestBuildPeerStats(t *testing.T) {
	stats := BuildPeerStats([]int{60, 70, 81})
	assert.Equal(t, 3, stats.Count)
	assert.Equal(t, 70, stats.Average)

	empty := BuildPeerStats(nil)
	assert.Equal(t, 0, empty.Count)
	assert.Equal(t, 0, empty.Average)
}

func TestFormatDuration(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(12*time.Minute + 5*time.Second)

	assert.Equal(t, "12m 5s", FormatDuration(&start, &end))

	short := start.Add(42 * time.Second)
	assert.Equal(t, "42s", FormatDuration(&start, &short))
	assert.Equal(t, "--", FormatDuration(nil, &end))
	assert.Equal(t, "--", FormatDuration(&start, nil))
}

func TestWriteXLSX(t *testing.T) {
	passed := true
	report := &ScoreReport{
		Assessment: breakdownAssessment(),
		Candidate:  models.Candidate{Name: "Ada", Email: "ada@example.com"},
		Score:      80,
		Passed:     &passed,
		Percentile: 100,
		Peers:      BuildPeerStats([]int{60, 70}),
		Breakdown:  SectionBreakdown(breakdownAssessment(), models.AnswerSet{}),
		Duration:   "12m 5s",
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, report))
	assert.Greater(t, buf.Len(), 0)
}
