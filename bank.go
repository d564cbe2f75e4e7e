package quizify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Bank aggregates every stored quiz's questions into one cross-document
// pool. The pool is cached with a TTL so back-to-back quick quizzes don't
// re-read every quiz, and rebuilds are collapsed through singleflight.
type Bank struct {
	store   Store
	curator *Curator
	ttl     time.Duration
	clock   func() time.Time
	sf      singleflight.Group

	mu        sync.RWMutex
	pool      []Mcq
	expiresAt time.Time
}

// NewBank creates a question bank over the given store.
func NewBank(store Store, curator *Curator, ttl time.Duration) *Bank {
	return &Bank{
		store:   store,
		curator: curator,
		ttl:     ttl,
		clock:   time.Now,
	}
}

// Pool returns the flattened cross-document question pool. Quizzes with no
// questions contribute nothing; duplicates across quizzes are passed through
// untouched for the curator to deal with.
func (b *Bank) Pool(ctx context.Context) ([]Mcq, error) {
	now := b.clock()

	b.mu.RLock()
	if b.pool != nil && b.expiresAt.After(now) {
		pool := b.pool
		b.mu.RUnlock()
		return pool, nil
	}
	b.mu.RUnlock()

	result, err, _ := b.sf.Do("pool", func() (interface{}, error) {
		now := b.clock()
		b.mu.RLock()
		if b.pool != nil && b.expiresAt.After(now) {
			pool := b.pool
			b.mu.RUnlock()
			return pool, nil
		}
		b.mu.RUnlock()

		quizzes, err := b.store.GetQuizzes(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load quizzes for pool: %w", err)
		}

		pool := make([]Mcq, 0)
		for _, quiz := range quizzes {
			pool = append(pool, quiz.Mcqs...)
		}

		b.mu.Lock()
		b.pool = pool
		b.expiresAt = now.Add(b.ttl)
		b.mu.Unlock()
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]Mcq), nil
}

// Invalidate drops the cached pool, e.g. after a quiz is created or deleted.
func (b *Bank) Invalidate() {
	b.mu.Lock()
	b.pool = nil
	b.mu.Unlock()
}

// QuickQuiz assembles an ephemeral quiz from a curated subset of the pool.
// The returned quiz carries a synthetic ID and must not be persisted.
func (b *Bank) QuickQuiz(ctx context.Context, desiredCount int) (*Quiz, error) {
	pool, err := b.Pool(ctx)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}

	selected, err := b.curator.Curate(ctx, pool, desiredCount)
	if err != nil {
		return nil, err
	}

	return &Quiz{
		ID:        QuickQuizIDPrefix + uuid.New().String(),
		Subject:   "Quick Quiz",
		Mcqs:      selected,
		CreatedAt: b.clock(),
	}, nil
}
