package quizify

import (
	"context"
	"sort"
	"time"
)

// SubjectProgress aggregates a user's attempts for all quizzes of one subject.
type SubjectProgress struct {
	Subject       string    `json:"subject"`
	QuizCount     int       `json:"quiz_count"`
	AttemptCount  int       `json:"attempt_count"`
	AveragePct    float64   `json:"average_pct"`
	BestPct       float64   `json:"best_pct"`
	LastAttemptAt time.Time `json:"last_attempt_at,omitempty"`
}

// ComputeProgress builds the per-subject analytics view from stored quizzes
// and attempts, sorted by subject.
func ComputeProgress(ctx context.Context, store Store) ([]SubjectProgress, error) {
	quizzes, err := store.GetQuizzes(ctx)
	if err != nil {
		return nil, err
	}

	bySubject := make(map[string]*SubjectProgress)
	sums := make(map[string]float64)

	for _, quiz := range quizzes {
		progress, ok := bySubject[quiz.Subject]
		if !ok {
			progress = &SubjectProgress{Subject: quiz.Subject}
			bySubject[quiz.Subject] = progress
		}
		progress.QuizCount++

		attempts, err := store.GetAttemptsForQuiz(ctx, quiz.ID)
		if err != nil {
			return nil, err
		}
		for _, attempt := range attempts {
			if attempt.TotalQuestions == 0 {
				continue
			}
			pct := float64(attempt.Score) * 100 / float64(attempt.TotalQuestions)
			progress.AttemptCount++
			sums[quiz.Subject] += pct
			if pct > progress.BestPct {
				progress.BestPct = pct
			}
			if attempt.CompletedAt.After(progress.LastAttemptAt) {
				progress.LastAttemptAt = attempt.CompletedAt
			}
		}
	}

	results := make([]SubjectProgress, 0, len(bySubject))
	for subject, progress := range bySubject {
		if progress.AttemptCount > 0 {
			progress.AveragePct = sums[subject] / float64(progress.AttemptCount)
		}
		results = append(results, *progress)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Subject < results[j].Subject
	})
	return results, nil
}
