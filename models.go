package quizify

import (
	"fmt"
	"strings"
	"time"
)

// NumOptions is the number of answer options every Mcq carries.
const NumOptions = 4

// Unanswered is the answer slot value for a question that was never submitted.
const Unanswered = -1

// Mcq represents a single multiple choice question. Immutable once created;
// elaborated explanations live only in session display state, never here.
type Mcq struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"` // 0-based index into Options
	Explanation   string   `json:"explanation"`
}

// Validate checks that the question is complete and its answer index is in range.
func (m Mcq) Validate() error {
	if strings.TrimSpace(m.Question) == "" {
		return fmt.Errorf("mcq %s: empty question text", m.ID)
	}
	if len(m.Options) != NumOptions {
		return fmt.Errorf("mcq %s: expected %d options, got %d", m.ID, NumOptions, len(m.Options))
	}
	for i, opt := range m.Options {
		if strings.TrimSpace(opt) == "" {
			return fmt.Errorf("mcq %s: option %d is empty", m.ID, i)
		}
	}
	if m.CorrectAnswer < 0 || m.CorrectAnswer >= len(m.Options) {
		return fmt.Errorf("mcq %s: correct answer index %d out of range", m.ID, m.CorrectAnswer)
	}
	return nil
}

// Quiz represents a named, persisted collection of questions generated from
// one source document.
type Quiz struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	Mcqs      []Mcq     `json:"mcqs"`
	CreatedAt time.Time `json:"created_at"`
	PDFName   string    `json:"pdf_name,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	PDFData   []byte    `json:"-"` // original document bytes, kept for later viewing
}

// QuizAttempt represents one scored, completed pass through a quiz.
// Answers holds one slot per Mcq; Unanswered marks slots never submitted.
type QuizAttempt struct {
	ID             string    `json:"id"`
	QuizID         string    `json:"quiz_id"`
	Answers        []int     `json:"answers"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	CompletedAt    time.Time `json:"completed_at"`
}

// QuickQuizIDPrefix marks ephemeral quizzes assembled from the curated
// cross-document pool. They are never persisted.
const QuickQuizIDPrefix = "quick-"

// IsQuickQuizID reports whether a quiz ID denotes an ephemeral quick quiz.
func IsQuickQuizID(id string) bool {
	return strings.HasPrefix(id, QuickQuizIDPrefix)
}
