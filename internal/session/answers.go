package session

import (
	"sync"

	"github.com/hkr-team/assessment-engine/internal/models"
)

// AnswerStore holds a candidate's in-flight answers, keyed by question
// id. It never validates answers against correctness and it never drops
// a recorded answer on navigation; only an explicit Set for the same
// question overwrites its value.
type AnswerStore struct {
	mu      sync.RWMutex
	answers models.AnswerSet
}

func NewAnswerStore() *AnswerStore {
	return &AnswerStore{answers: make(models.AnswerSet)}
}

// Set replaces the stored answer for the question.
func (s *AnswerStore) Set(questionID string, ans models.Answer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers[questionID] = ans
}

// Get returns the stored answer, or nil when the question has not been
// answered.
func (s *AnswerStore) Get(questionID string) models.Answer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.answers[questionID]
}

// AnsweredCount counts questions with a non-empty answer. Empty strings
// and empty orderings do not count.
func (s *AnswerStore) AnsweredCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, ans := range s.answers {
		if ans != nil && !ans.Empty() {
			n++
		}
	}
	return n
}

// Snapshot copies the current answers for scoring or persistence.
func (s *AnswerStore) Snapshot() models.AnswerSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make(models.AnswerSet, len(s.answers))
	for id, ans := range s.answers {
		snapshot[id] = ans
	}
	return snapshot
}
