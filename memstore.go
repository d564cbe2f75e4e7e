package quizify

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemStore is an in-memory Store, used in tests and for running the server
// without a database file.
type MemStore struct {
	mu       sync.RWMutex
	quizzes  map[string]*Quiz
	attempts map[string][]QuizAttempt // quizID -> attempts in creation order
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		quizzes:  make(map[string]*Quiz),
		attempts: make(map[string][]QuizAttempt),
	}
}

// CreateQuiz stores a copy of the quiz.
func (s *MemStore) CreateQuiz(_ context.Context, quiz *Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.quizzes[quiz.ID]; ok {
		return fmt.Errorf("quiz %s already exists", quiz.ID)
	}
	s.quizzes[quiz.ID] = copyQuiz(quiz)
	return nil
}

// GetQuizzes returns all quizzes, newest first.
func (s *MemStore) GetQuizzes(_ context.Context) ([]Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	quizzes := make([]Quiz, 0, len(s.quizzes))
	for _, quiz := range s.quizzes {
		quizzes = append(quizzes, *copyQuiz(quiz))
	}
	sort.Slice(quizzes, func(i, j int) bool {
		if !quizzes[i].CreatedAt.Equal(quizzes[j].CreatedAt) {
			return quizzes[i].CreatedAt.After(quizzes[j].CreatedAt)
		}
		return quizzes[i].ID < quizzes[j].ID
	})
	return quizzes, nil
}

// GetQuizByID returns one quiz or ErrQuizNotFound.
func (s *MemStore) GetQuizByID(_ context.Context, id string) (*Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	quiz, ok := s.quizzes[id]
	if !ok {
		return nil, ErrQuizNotFound
	}
	return copyQuiz(quiz), nil
}

// RenameQuiz updates a quiz's display name.
func (s *MemStore) RenameQuiz(_ context.Context, id, subject string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	quiz, ok := s.quizzes[id]
	if !ok {
		return ErrQuizNotFound
	}
	quiz.Subject = subject
	return nil
}

// DeleteQuiz removes the quiz and all of its attempts.
func (s *MemStore) DeleteQuiz(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.quizzes[id]; !ok {
		return ErrQuizNotFound
	}
	delete(s.quizzes, id)
	delete(s.attempts, id)
	return nil
}

// CreateAttempt appends a copy of the attempt to its quiz's history.
func (s *MemStore) CreateAttempt(_ context.Context, attempt *QuizAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.quizzes[attempt.QuizID]; !ok {
		return ErrQuizNotFound
	}
	stored := *attempt
	stored.Answers = append([]int(nil), attempt.Answers...)
	s.attempts[attempt.QuizID] = append(s.attempts[attempt.QuizID], stored)
	return nil
}

// GetAttemptsForQuiz returns all attempts for a quiz in creation order.
func (s *MemStore) GetAttemptsForQuiz(_ context.Context, quizID string) ([]QuizAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	attempts := make([]QuizAttempt, len(s.attempts[quizID]))
	copy(attempts, s.attempts[quizID])
	return attempts, nil
}

// GetLatestAttemptForQuiz returns the most recent attempt or ErrAttemptNotFound.
func (s *MemStore) GetLatestAttemptForQuiz(_ context.Context, quizID string) (*QuizAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	attempts := s.attempts[quizID]
	if len(attempts) == 0 {
		return nil, ErrAttemptNotFound
	}
	latest := attempts[len(attempts)-1]
	return &latest, nil
}

// ListDistinctSubjects returns the sorted set of subjects across all quizzes.
func (s *MemStore) ListDistinctSubjects(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var subjects []string
	for _, quiz := range s.quizzes {
		if !seen[quiz.Subject] {
			seen[quiz.Subject] = true
			subjects = append(subjects, quiz.Subject)
		}
	}
	sort.Strings(subjects)
	return subjects, nil
}

func copyQuiz(quiz *Quiz) *Quiz {
	out := *quiz
	out.Mcqs = make([]Mcq, len(quiz.Mcqs))
	for i, mcq := range quiz.Mcqs {
		mcq.Options = append([]string(nil), mcq.Options...)
		out.Mcqs[i] = mcq
	}
	out.PDFData = append([]byte(nil), quiz.PDFData...)
	return &out
}
