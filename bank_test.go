package quizify_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Saurav-Ganguly/quizify"
)

func seedQuiz(t *testing.T, store quizify.Store, id, subject string, questions ...string) {
	t.Helper()
	quiz := &quizify.Quiz{ID: id, Subject: subject, CreatedAt: time.Now()}
	for _, q := range questions {
		quiz.Mcqs = append(quiz.Mcqs, testMcq(q, 0))
	}
	if err := store.CreateQuiz(context.Background(), quiz); err != nil {
		t.Fatalf("failed to seed quiz %s: %v", id, err)
	}
}

func TestBankFlattensAllQuizzes(t *testing.T) {
	store := quizify.NewMemStore()
	seedQuiz(t, store, "a", "Physics", "a1", "a2")
	seedQuiz(t, store, "b", "Biology", "b1", "b2", "b3")
	seedQuiz(t, store, "c", "Chemistry") // empty quiz contributes nothing

	bank := quizify.NewBank(store, quizify.NewCurator(&fakeSelector{}), time.Minute)
	pool, err := bank.Pool(context.Background())
	if err != nil {
		t.Fatalf("pool failed: %v", err)
	}
	if len(pool) != 5 {
		t.Fatalf("expected 5 pooled questions, got %d", len(pool))
	}
}

func TestBankPoolIsCachedUntilInvalidated(t *testing.T) {
	store := quizify.NewMemStore()
	seedQuiz(t, store, "a", "Physics", "a1")

	bank := quizify.NewBank(store, quizify.NewCurator(&fakeSelector{}), time.Hour)
	if _, err := bank.Pool(context.Background()); err != nil {
		t.Fatalf("pool failed: %v", err)
	}

	seedQuiz(t, store, "b", "Biology", "b1")
	pool, err := bank.Pool(context.Background())
	if err != nil {
		t.Fatalf("pool failed: %v", err)
	}
	if len(pool) != 1 {
		t.Fatalf("expected cached pool of 1, got %d", len(pool))
	}

	bank.Invalidate()
	pool, err = bank.Pool(context.Background())
	if err != nil {
		t.Fatalf("pool failed: %v", err)
	}
	if len(pool) != 2 {
		t.Fatalf("expected rebuilt pool of 2, got %d", len(pool))
	}
}

func TestQuickQuizIsEphemeral(t *testing.T) {
	store := quizify.NewMemStore()
	seedQuiz(t, store, "a", "Physics", "a1", "a2", "a3")

	bank := quizify.NewBank(store, quizify.NewCurator(&fakeSelector{}), time.Minute)
	quiz, err := bank.QuickQuiz(context.Background(), 10)
	if err != nil {
		t.Fatalf("quick quiz failed: %v", err)
	}
	if !quizify.IsQuickQuizID(quiz.ID) {
		t.Fatalf("quick quiz must carry the synthetic id prefix, got %q", quiz.ID)
	}
	// Pool smaller than desired: the whole pool comes back uncurated.
	if len(quiz.Mcqs) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(quiz.Mcqs))
	}

	quizzes, _ := store.GetQuizzes(context.Background())
	if len(quizzes) != 1 {
		t.Fatalf("quick quiz must not be persisted, store has %d quizzes", len(quizzes))
	}
}

func TestQuickQuizEmptyPool(t *testing.T) {
	store := quizify.NewMemStore()
	bank := quizify.NewBank(store, quizify.NewCurator(&fakeSelector{}), time.Minute)

	if _, err := bank.QuickQuiz(context.Background(), 10); !errors.Is(err, quizify.ErrEmptyPool) {
		t.Fatalf("expected ErrEmptyPool, got %v", err)
	}
}
