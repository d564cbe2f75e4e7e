package quizify

import "context"

// Store is the persistence boundary for quizzes and attempts. Every call is
// a single atomic create, read, or delete against the backing store; the
// pipeline surfaces transport errors to the caller without retrying.
type Store interface {
	CreateQuiz(ctx context.Context, quiz *Quiz) error
	GetQuizzes(ctx context.Context) ([]Quiz, error)
	GetQuizByID(ctx context.Context, id string) (*Quiz, error)
	// RenameQuiz updates the user-editable display name; everything else on
	// a stored quiz is immutable.
	RenameQuiz(ctx context.Context, id, subject string) error
	// DeleteQuiz removes a quiz and cascades to its attempts.
	DeleteQuiz(ctx context.Context, id string) error

	CreateAttempt(ctx context.Context, attempt *QuizAttempt) error
	GetAttemptsForQuiz(ctx context.Context, quizID string) ([]QuizAttempt, error)
	GetLatestAttemptForQuiz(ctx context.Context, quizID string) (*QuizAttempt, error)

	ListDistinctSubjects(ctx context.Context) ([]string, error)
}
