package quizify_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Saurav-Ganguly/quizify"
)

func openTestStore(t *testing.T) *quizify.SQLiteStore {
	t.Helper()
	store, err := quizify.OpenSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	quiz := &quizify.Quiz{
		ID:        "quiz-1",
		Subject:   "Astronomy",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		PDFName:   "stars.pdf",
		Notes:     "--- Page 1 ---\nstars are distant suns",
		PDFData:   []byte("%PDF-fake"),
		Mcqs: []quizify.Mcq{
			testMcq("What is a star?", 2),
			testMcq("What is a planet?", 0),
		},
	}
	if err := store.CreateQuiz(ctx, quiz); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := store.GetQuizByID(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Subject != "Astronomy" || got.PDFName != "stars.pdf" {
		t.Fatalf("metadata wrong: %+v", got)
	}
	if string(got.PDFData) != "%PDF-fake" {
		t.Fatalf("pdf bytes not round-tripped")
	}
	if len(got.Mcqs) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(got.Mcqs))
	}
	// Question order and options survive the JSON column round trip.
	if got.Mcqs[0].Question != "What is a star?" || got.Mcqs[0].CorrectAnswer != 2 {
		t.Fatalf("first question wrong: %+v", got.Mcqs[0])
	}
	if len(got.Mcqs[0].Options) != quizify.NumOptions {
		t.Fatalf("options not preserved: %v", got.Mcqs[0].Options)
	}
}

func TestSQLiteStoreDeleteCascades(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	quiz := &quizify.Quiz{ID: "quiz-1", Subject: "Astronomy", CreatedAt: time.Now(), Mcqs: []quizify.Mcq{testMcq("q", 0)}}
	if err := store.CreateQuiz(ctx, quiz); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	attempt := &quizify.QuizAttempt{
		ID: "att-1", QuizID: "quiz-1", Answers: []int{0}, Score: 1, TotalQuestions: 1, CompletedAt: time.Now(),
	}
	if err := store.CreateAttempt(ctx, attempt); err != nil {
		t.Fatalf("create attempt failed: %v", err)
	}

	if err := store.DeleteQuiz(ctx, "quiz-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.GetQuizByID(ctx, "quiz-1"); !errors.Is(err, quizify.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
	attempts, err := store.GetAttemptsForQuiz(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("list attempts failed: %v", err)
	}
	if len(attempts) != 0 {
		t.Fatalf("delete must cascade to attempts, got %d", len(attempts))
	}

	if err := store.DeleteQuiz(ctx, "quiz-1"); !errors.Is(err, quizify.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound on double delete, got %v", err)
	}
}

func TestSQLiteStoreAttemptsAndSubjects(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	for _, q := range []struct{ id, subject string }{
		{"quiz-1", "Astronomy"},
		{"quiz-2", "Biology"},
		{"quiz-3", "Astronomy"},
	} {
		quiz := &quizify.Quiz{ID: q.id, Subject: q.subject, CreatedAt: time.Now(), Mcqs: []quizify.Mcq{testMcq("q", 0)}}
		if err := store.CreateQuiz(ctx, quiz); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	base := time.Now().UTC().Truncate(time.Second)
	for i, id := range []string{"att-1", "att-2"} {
		attempt := &quizify.QuizAttempt{
			ID: id, QuizID: "quiz-1", Answers: []int{quizify.Unanswered}, Score: i,
			TotalQuestions: 1, CompletedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.CreateAttempt(ctx, attempt); err != nil {
			t.Fatalf("create attempt failed: %v", err)
		}
	}

	latest, err := store.GetLatestAttemptForQuiz(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("latest failed: %v", err)
	}
	if latest.ID != "att-2" {
		t.Fatalf("expected att-2, got %s", latest.ID)
	}
	if latest.Answers[0] != quizify.Unanswered {
		t.Fatalf("unanswered slot not round-tripped: %v", latest.Answers)
	}

	if _, err := store.GetLatestAttemptForQuiz(ctx, "quiz-2"); !errors.Is(err, quizify.ErrAttemptNotFound) {
		t.Fatalf("expected ErrAttemptNotFound, got %v", err)
	}

	subjects, err := store.ListDistinctSubjects(ctx)
	if err != nil {
		t.Fatalf("subjects failed: %v", err)
	}
	if len(subjects) != 2 || subjects[0] != "Astronomy" || subjects[1] != "Biology" {
		t.Fatalf("expected sorted distinct subjects, got %v", subjects)
	}
}
