package session

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hkr-team/assessment-engine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func testAssessment() *models.Assessment {
	return &models.Assessment{
		ID:            1,
		Title:         "Backend Screen",
		Type:          models.TypeScoring,
		TimeLimit:     20,
		PassThreshold: intPtr(70),
		Sections: []models.Section{
			{
				Title: "Basics",
				Questions: []models.Question{
					{ID: "q1", Kind: models.MultipleChoice, Prompt: "a?", Points: 10, Options: []string{"x", "y"}, CorrectIndex: intPtr(0)},
					{ID: "q2", Kind: models.FillBlank, Prompt: "b?", Points: 10, AcceptedAnswers: []string{"go"}},
				},
			},
			{
				Title: "Judgment",
				Questions: []models.Question{
					{ID: "q3", Kind: models.Written, Prompt: "c?", Points: 10},
				},
			},
		},
	}
}

type finalizeRecorder struct {
	calls   atomic.Int32
	result  models.ScoredResult
	answers models.AnswerSet
	reason  EndReason
}

func (r *finalizeRecorder) fn(result models.ScoredResult, answers models.AnswerSet, reason EndReason, _ time.Time) {
	r.calls.Add(1)
	r.result = result
	r.answers = answers
	r.reason = reason
}

func newTestSession(rec *finalizeRecorder, opts ...TimerOption) *Session {
	return New("tok-1", testAssessment(), models.Candidate{Name: "Ada", Email: "ada@example.com"}, rec.fn, opts...)
}

func TestSession_IdentifyRequiresBothFields(t *testing.T) {
	s := newTestSession(&finalizeRecorder{})

	assert.ErrorIs(t, s.Identify("", "ada@example.com"), ErrIdentityRequired)
	assert.ErrorIs(t, s.Identify("Ada", "  "), ErrIdentityRequired)
	assert.Equal(t, PhaseIdentify, s.Phase())

	require.NoError(t, s.Identify(" Ada Lovelace ", "ada@example.com"))
	assert.Equal(t, PhaseWelcome, s.Phase())
	assert.Equal(t, "Ada Lovelace", s.Candidate().Name)
}

func TestSession_BeginStartsTimerAndIndex(t *testing.T) {
	s := newTestSession(&finalizeRecorder{})
	require.NoError(t, s.Identify("Ada", "ada@example.com"))

	started, err := s.Begin()
	require.NoError(t, err)
	defer s.Teardown()

	assert.False(t, started.IsZero())
	assert.Equal(t, PhaseActive, s.Phase())
	assert.Equal(t, 0, s.CurrentIndex())
	assert.Equal(t, 20*60, s.Remaining())
}

func TestSession_PhaseGuards(t *testing.T) {
	s := newTestSession(&finalizeRecorder{})

	_, err := s.Begin()
	assert.ErrorIs(t, err, ErrInvalidPhase)
	assert.ErrorIs(t, s.Navigate(1), ErrInvalidPhase)
	assert.ErrorIs(t, s.SetAnswer("q1", models.ChoiceAnswer{Selected: 0}), ErrInvalidPhase)
	assert.ErrorIs(t, s.Submit(true), ErrInvalidPhase)
}

func TestSession_NavigationKeepsAnswers(t *testing.T) {
	s := newTestSession(&finalizeRecorder{})
	require.NoError(t, s.Identify("Ada", "ada@example.com"))
	_, err := s.Begin()
	require.NoError(t, err)
	defer s.Teardown()

	require.NoError(t, s.SetAnswer("q1", models.ChoiceAnswer{Selected: 0}))
	require.NoError(t, s.Navigate(2))
	require.NoError(t, s.Navigate(0))

	assert.Equal(t, models.ChoiceAnswer{Selected: 0}, s.Answer("q1"))
	assert.ErrorIs(t, s.Navigate(3), ErrIndexOutOfRange)
	assert.ErrorIs(t, s.Navigate(-1), ErrIndexOutOfRange)
}

func TestSession_SetAnswerValidation(t *testing.T) {
	s := newTestSession(&finalizeRecorder{})
	require.NoError(t, s.Identify("Ada", "ada@example.com"))
	_, err := s.Begin()
	require.NoError(t, err)
	defer s.Teardown()

	assert.ErrorIs(t, s.SetAnswer("missing", models.ChoiceAnswer{Selected: 0}), ErrUnknownQuestion)
	assert.ErrorIs(t, s.SetAnswer("q1", models.FillBlankAnswer{Text: "x"}), ErrAnswerKindMismatch)
}

func TestSession_SubmitRequiresConfirmationWhenIncomplete(t *testing.T) {
	rec := &finalizeRecorder{}
	s := newTestSession(rec)
	require.NoError(t, s.Identify("Ada", "ada@example.com"))
	_, err := s.Begin()
	require.NoError(t, err)

	require.NoError(t, s.SetAnswer("q1", models.ChoiceAnswer{Selected: 0}))

	assert.ErrorIs(t, s.Submit(false), ErrConfirmationRequired)
	assert.Equal(t, PhaseActive, s.Phase())

	// Confirmed submission proceeds unconditionally.
	require.NoError(t, s.Submit(true))
	assert.Equal(t, PhaseDone, s.Phase())
	assert.Equal(t, int32(1), rec.calls.Load())
	assert.Equal(t, EndManualSubmit, rec.reason)
	assert.Equal(t, 33, rec.result.Percent) // 10 of 30 points
}

func TestSession_SubmitWithoutConfirmationWhenComplete(t *testing.T) {
	rec := &finalizeRecorder{}
	s := newTestSession(rec)
	require.NoError(t, s.Identify("Ada", "ada@example.com"))
	_, err := s.Begin()
	require.NoError(t, err)

	require.NoError(t, s.SetAnswer("q1", models.ChoiceAnswer{Selected: 0}))
	require.NoError(t, s.SetAnswer("q2", models.FillBlankAnswer{Text: "Go "}))
	require.NoError(t, s.SetAnswer("q3", models.WrittenAnswer{Text: "because"}))

	require.NoError(t, s.Submit(false))
	assert.Equal(t, PhaseDone, s.Phase())
	require.NotNil(t, rec.result.Passed)
	assert.False(t, *rec.result.Passed) // 20/30 = 67 < 70
}

func TestSession_AutoSubmitOnTimeout(t *testing.T) {
	rec := &finalizeRecorder{}
	a := testAssessment()
	a.TimeLimit = 1 // 60 ticks at 1ms
	s := New("tok-2", a, models.Candidate{}, rec.fn, WithTickInterval(time.Millisecond))
	require.NoError(t, s.Identify("Ada", "ada@example.com"))
	_, err := s.Begin()
	require.NoError(t, err)

	require.NoError(t, s.SetAnswer("q1", models.ChoiceAnswer{Selected: 0}))

	assert.Eventually(t, func() bool { return s.Phase() == PhaseDone },
		5*time.Second, time.Millisecond)

	assert.Equal(t, int32(1), rec.calls.Load())
	assert.Equal(t, EndTimeout, rec.reason)
	assert.Equal(t, 0, s.Remaining())

	// A late manual submit cannot finalize a second time.
	assert.ErrorIs(t, s.Submit(true), ErrInvalidPhase)
	assert.Equal(t, int32(1), rec.calls.Load())
}

func TestSession_ManualSubmitCancelsTimer(t *testing.T) {
	rec := &finalizeRecorder{}
	a := testAssessment()
	a.TimeLimit = 1
	s := New("tok-3", a, models.Candidate{}, rec.fn, WithTickInterval(time.Millisecond))
	require.NoError(t, s.Identify("Ada", "ada@example.com"))
	_, err := s.Begin()
	require.NoError(t, err)

	require.NoError(t, s.Submit(true))
	assert.Equal(t, EndManualSubmit, rec.reason)

	// Give the timer ample time to have fired if it were still alive.
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), rec.calls.Load())
}

// An accepted answer racing a concurrent submit must either be part of
// the finalized snapshot or be refused with a phase error; it can never
// be acknowledged and then dropped from the score.
func TestSession_AcceptedAnswerNeverDroppedBySubmitRace(t *testing.T) {
	answers := map[string]models.Answer{
		"q1": models.ChoiceAnswer{Selected: 0},
		"q2": models.FillBlankAnswer{Text: "go"},
		"q3": models.WrittenAnswer{Text: "notes"},
	}

	for i := 0; i < 200; i++ {
		rec := &finalizeRecorder{}
		s := newTestSession(rec)
		require.NoError(t, s.Identify("Ada", "ada@example.com"))
		_, err := s.Begin()
		require.NoError(t, err)

		var mu sync.Mutex
		accepted := make(map[string]models.Answer)

		var wg sync.WaitGroup
		for id, ans := range answers {
			wg.Add(1)
			go func(id string, ans models.Answer) {
				defer wg.Done()
				if s.SetAnswer(id, ans) == nil {
					mu.Lock()
					accepted[id] = ans
					mu.Unlock()
				}
			}(id, ans)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Submit(true))
		}()
		wg.Wait()

		require.Equal(t, int32(1), rec.calls.Load())
		for id, ans := range accepted {
			assert.Equal(t, ans, rec.answers[id],
				"SetAnswer(%s) returned nil but the answer is missing from the finalized snapshot", id)
		}
	}
}

func TestManager_OneSessionPerToken(t *testing.T) {
	m := NewManager()

	first := m.Put(newTestSession(&finalizeRecorder{}))
	second := m.Put(newTestSession(&finalizeRecorder{}))
	assert.Same(t, first, second)

	got, ok := m.Get("tok-1")
	require.True(t, ok)
	assert.Same(t, first, got)

	m.Delete("tok-1")
	_, ok = m.Get("tok-1")
	assert.False(t, ok)
}
