package models

// QuestionScore is the outcome of auto-grading one question. Correct is
// nil for unanswered questions and for written answers, which are never
// auto-graded; that is distinct from an answered-but-wrong false.
type QuestionScore struct {
	QuestionID string `json:"question_id"`
	Earned     int    `json:"earned"`
	Correct    *bool  `json:"correct"`
}

// ScoredResult is derived from an assessment plus an answer snapshot.
// It is persisted only through the single finalize write.
type ScoredResult struct {
	Earned    int                      `json:"earned"`
	Possible  int                      `json:"possible"`
	Percent   int                      `json:"percent"` // 0-100, rounded
	Passed    *bool                    `json:"passed"`  // nil for open assessments
	Questions map[string]QuestionScore `json:"questions"`
}

// SectionScore is the per-section slice of a finalized result used by
// reporting.
type SectionScore struct {
	Title    string `json:"title"`
	Earned   int    `json:"earned"`
	Possible int    `json:"possible"`
	Percent  int    `json:"percent"`
	Correct  int    `json:"correct"`
	Total    int    `json:"total"`
}

// PeerStats summarizes completed peer submissions for one assessment.
type PeerStats struct {
	Count   int   `json:"count"`
	Average int   `json:"average"`
	Scores  []int `json:"scores"`
}
