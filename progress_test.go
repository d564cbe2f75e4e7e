package quizify_test

import (
	"context"
	"testing"
	"time"

	"github.com/Saurav-Ganguly/quizify"
)

func TestComputeProgressAggregatesBySubject(t *testing.T) {
	ctx := context.Background()
	store := quizify.NewMemStore()
	seedQuiz(t, store, "a", "Physics", "a1", "a2")
	seedQuiz(t, store, "b", "Physics", "b1", "b2")
	seedQuiz(t, store, "c", "Biology", "c1")

	attempts := []*quizify.QuizAttempt{
		{ID: "att-1", QuizID: "a", Answers: []int{0, 0}, Score: 2, TotalQuestions: 2, CompletedAt: time.Now().Add(-time.Hour)},
		{ID: "att-2", QuizID: "a", Answers: []int{0, 1}, Score: 1, TotalQuestions: 2, CompletedAt: time.Now()},
	}
	for _, attempt := range attempts {
		if err := store.CreateAttempt(ctx, attempt); err != nil {
			t.Fatalf("create attempt failed: %v", err)
		}
	}

	progress, err := quizify.ComputeProgress(ctx, store)
	if err != nil {
		t.Fatalf("compute progress failed: %v", err)
	}
	if len(progress) != 2 {
		t.Fatalf("expected 2 subjects, got %d", len(progress))
	}
	// Sorted by subject: Biology first.
	if progress[0].Subject != "Biology" || progress[0].QuizCount != 1 || progress[0].AttemptCount != 0 {
		t.Fatalf("biology row wrong: %+v", progress[0])
	}
	physics := progress[1]
	if physics.QuizCount != 2 || physics.AttemptCount != 2 {
		t.Fatalf("physics counts wrong: %+v", physics)
	}
	if physics.BestPct != 100 {
		t.Fatalf("expected best 100%%, got %.1f", physics.BestPct)
	}
	if physics.AveragePct != 75 {
		t.Fatalf("expected average 75%%, got %.1f", physics.AveragePct)
	}
}
