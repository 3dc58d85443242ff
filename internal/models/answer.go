package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Answer is the tagged union over the four question kinds. Each kind
// carries its own payload type so scoring can be an exhaustive switch
// instead of field-presence checks.
type Answer interface {
	Kind() QuestionKind
	// Empty reports whether the answer counts as "not answered":
	// empty strings and empty orderings score zero with nil correctness.
	Empty() bool
	// Value is the wire representation persisted with the submission
	// (option index, free text, or ordered item list).
	Value() any
}

type ChoiceAnswer struct {
	Selected int `json:"selected"`
}

func (ChoiceAnswer) Kind() QuestionKind { return MultipleChoice }
func (ChoiceAnswer) Empty() bool        { return false }
func (a ChoiceAnswer) Value() any       { return a.Selected }

type FillBlankAnswer struct {
	Text string `json:"text"`
}

func (FillBlankAnswer) Kind() QuestionKind { return FillBlank }
func (a FillBlankAnswer) Empty() bool      { return a.Text == "" }
func (a FillBlankAnswer) Value() any       { return a.Text }

type WrittenAnswer struct {
	Text string `json:"text"`
}

func (WrittenAnswer) Kind() QuestionKind { return Written }
func (a WrittenAnswer) Empty() bool      { return a.Text == "" }
func (a WrittenAnswer) Value() any       { return a.Text }

// WordCount is advisory only; min/max word bounds are never enforced as
// a submit gate.
func (a WrittenAnswer) WordCount() int {
	return len(strings.Fields(a.Text))
}

type RankingAnswer struct {
	Order []string `json:"order"`
}

func (RankingAnswer) Kind() QuestionKind { return Ranking }
func (a RankingAnswer) Empty() bool      { return len(a.Order) == 0 }
func (a RankingAnswer) Value() any       { return a.Order }

// AnswerSet maps question id to the candidate's current answer. It
// marshals to the flat {questionId: value} shape stored on submissions.
type AnswerSet map[string]Answer

func (s AnswerSet) MarshalJSON() ([]byte, error) {
	raw := make(map[string]any, len(s))
	for id, ans := range s {
		if ans == nil {
			continue
		}
		raw[id] = ans.Value()
	}
	return json.Marshal(raw)
}

// DecodeAnswer converts a persisted wire value back into the typed
// answer for the owning question's kind.
func DecodeAnswer(q Question, raw any) (Answer, error) {
	if raw == nil {
		return nil, nil
	}
	switch q.Kind {
	case MultipleChoice:
		switch v := raw.(type) {
		case float64:
			// JSON numbers arrive as float64; only whole values are indexes.
			if v != math.Trunc(v) {
				return nil, fmt.Errorf("question %s: expected option index, got %v", q.ID, v)
			}
			return ChoiceAnswer{Selected: int(v)}, nil
		case int:
			return ChoiceAnswer{Selected: v}, nil
		}
		return nil, fmt.Errorf("question %s: expected option index, got %T", q.ID, raw)
	case FillBlank:
		v, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("question %s: expected text, got %T", q.ID, raw)
		}
		return FillBlankAnswer{Text: v}, nil
	case Written:
		v, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("question %s: expected text, got %T", q.ID, raw)
		}
		return WrittenAnswer{Text: v}, nil
	case Ranking:
		switch v := raw.(type) {
		case []string:
			return RankingAnswer{Order: v}, nil
		case []any:
			order := make([]string, 0, len(v))
			for _, item := range v {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("question %s: ranking item is %T, not string", q.ID, item)
				}
				order = append(order, s)
			}
			return RankingAnswer{Order: order}, nil
		}
		return nil, fmt.Errorf("question %s: expected item list, got %T", q.ID, raw)
	}
	return nil, fmt.Errorf("question %s: unknown kind %q", q.ID, q.Kind)
}

// DecodeAnswerSet rebuilds typed answers from the persisted submission
// payload, skipping entries for questions the assessment no longer has.
func DecodeAnswerSet(a *Assessment, raw map[string]any) (AnswerSet, error) {
	set := make(AnswerSet, len(raw))
	for id, value := range raw {
		q, ok := a.QuestionByID(id)
		if !ok {
			continue
		}
		ans, err := DecodeAnswer(q, value)
		if err != nil {
			return nil, err
		}
		if ans != nil {
			set[id] = ans
		}
	}
	return set, nil
}
