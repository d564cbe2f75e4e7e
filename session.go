package quizify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SlotState tracks one question's lifecycle within a session.
type SlotState int

const (
	SlotUnanswered SlotState = iota
	SlotSelected
	SlotSubmitted
)

// Slot is the per-question session state. Once submitted, a slot is locked:
// navigation back shows the same locked-in result.
type Slot struct {
	State    SlotState `json:"state"`
	Selected int       `json:"selected"` // Unanswered until an option is picked
	Correct  bool      `json:"correct"`  // meaningful only once submitted
	// DisplayedExplanation overrides the Mcq's stored explanation in the UI
	// after an elaborate call. It is session-only and cleared on retake.
	DisplayedExplanation string `json:"displayed_explanation,omitempty"`
}

// Session walks a user through one quiz, one question at a time. Only the
// active slot may transition at a time; input is rejected while a save or
// elaboration call for the current slot is in flight.
type Session struct {
	mu         sync.Mutex
	quiz       *Quiz
	store      Store
	elaborator Elaborator
	slots      []Slot
	current    int
	finished   bool
	busy       bool
	// quick quizzes are ephemeral and have no stored owner for an attempt
	persistAttempts bool
}

// NewSession starts a session over a quiz. Attempts are persisted to the
// store on finish unless the quiz is an ephemeral quick quiz.
func NewSession(quiz *Quiz, store Store, elaborator Elaborator) (*Session, error) {
	if quiz == nil || len(quiz.Mcqs) == 0 {
		return nil, fmt.Errorf("cannot start a session on an empty quiz")
	}
	s := &Session{
		quiz:            quiz,
		store:           store,
		elaborator:      elaborator,
		slots:           make([]Slot, len(quiz.Mcqs)),
		persistAttempts: !IsQuickQuizID(quiz.ID),
	}
	for i := range s.slots {
		s.slots[i].Selected = Unanswered
	}
	return s, nil
}

// Quiz returns the quiz under the session.
func (s *Session) Quiz() *Quiz {
	return s.quiz
}

// Current returns the index of the question in view.
func (s *Session) Current() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Finished reports whether the session reached its terminal state.
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// Slots returns a snapshot of all slot states.
func (s *Session) Slots() []Slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Slot, len(s.slots))
	copy(out, s.slots)
	return out
}

// Score counts the correctly submitted slots so far.
func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scoreLocked()
}

func (s *Session) scoreLocked() int {
	score := 0
	for _, slot := range s.slots {
		if slot.State == SlotSubmitted && slot.Correct {
			score++
		}
	}
	return score
}

// Select picks an option for the question in view. Allowed only while the
// slot has not been submitted.
func (s *Session) Select(option int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return ErrSessionFinished
	}
	if s.busy {
		return ErrSessionBusy
	}
	if option < 0 || option >= NumOptions {
		return fmt.Errorf("option index %d out of range", option)
	}

	slot := &s.slots[s.current]
	if slot.State == SlotSubmitted {
		return ErrAlreadySubmitted
	}
	slot.State = SlotSelected
	slot.Selected = option
	return nil
}

// Submit locks in the current slot's selection and computes correctness.
// This transition is terminal for the slot. When every slot is submitted the
// session finalizes automatically.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return ErrSessionFinished
	}
	if s.busy {
		s.mu.Unlock()
		return ErrSessionBusy
	}

	slot := &s.slots[s.current]
	if slot.State == SlotSubmitted {
		s.mu.Unlock()
		return ErrAlreadySubmitted
	}
	if slot.State != SlotSelected {
		s.mu.Unlock()
		return ErrNoSelection
	}

	slot.State = SlotSubmitted
	slot.Correct = slot.Selected == s.quiz.Mcqs[s.current].CorrectAnswer

	allSubmitted := true
	for i := range s.slots {
		if s.slots[i].State != SlotSubmitted {
			allSubmitted = false
			break
		}
	}
	if !allSubmitted {
		s.mu.Unlock()
		return nil
	}
	return s.finalize(ctx) // unlocks
}

// Finish explicitly ends the session from the last question once it has been
// submitted; slots never submitted are scored as unanswered.
func (s *Session) Finish(ctx context.Context) error {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return ErrSessionFinished
	}
	if s.busy {
		s.mu.Unlock()
		return ErrSessionBusy
	}
	last := len(s.slots) - 1
	if s.current != last || s.slots[last].State != SlotSubmitted {
		s.mu.Unlock()
		return fmt.Errorf("finish is only allowed on the last question after submitting it")
	}
	return s.finalize(ctx) // unlocks
}

// finalize persists the attempt and flips the session to its terminal state.
// Called with s.mu held; always unlocks. If the save fails, the session is
// NOT finished: an attempt that failed to save must not be reported as scored.
func (s *Session) finalize(ctx context.Context) error {
	answers := make([]int, len(s.slots))
	for i, slot := range s.slots {
		if slot.State == SlotSubmitted {
			answers[i] = slot.Selected
		} else {
			answers[i] = Unanswered
		}
	}
	attempt := &QuizAttempt{
		ID:             uuid.New().String(),
		QuizID:         s.quiz.ID,
		Answers:        answers,
		Score:          s.scoreLocked(),
		TotalQuestions: len(s.slots),
		CompletedAt:    time.Now(),
	}

	if !s.persistAttempts {
		s.finished = true
		s.mu.Unlock()
		return nil
	}

	s.busy = true
	s.mu.Unlock()

	err := s.store.CreateAttempt(ctx, attempt)

	s.mu.Lock()
	s.busy = false
	if err == nil {
		s.finished = true
	}
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to save attempt: %w", err)
	}
	return nil
}

// Next moves the view forward. Navigation never changes slot state.
func (s *Session) Next() error {
	return s.navigate(1)
}

// Prev moves the view back.
func (s *Session) Prev() error {
	return s.navigate(-1)
}

func (s *Session) navigate(delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return ErrSessionBusy
	}
	next := s.current + delta
	if next < 0 || next >= len(s.slots) {
		return fmt.Errorf("no question at position %d", next+1)
	}
	s.current = next
	return nil
}

// Elaborate replaces the current slot's displayed explanation with a richer
// one from the elaborator. Allowed only after the slot is submitted;
// repeatable, each call superseding the previous text. On failure the
// previously displayed explanation stays intact.
func (s *Session) Elaborate(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return "", ErrSessionBusy
	}
	idx := s.current
	slot := &s.slots[idx]
	if slot.State != SlotSubmitted {
		s.mu.Unlock()
		return "", ErrNotSubmitted
	}

	mcq := s.quiz.Mcqs[idx]
	currentText := slot.DisplayedExplanation
	if currentText == "" {
		currentText = mcq.Explanation
	}
	s.busy = true
	s.mu.Unlock()

	elaborated, err := s.elaborator.Elaborate(ctx, ElaborationRequest{
		Subject:            s.quiz.Subject,
		Question:           mcq.Question,
		Options:            mcq.Options,
		CorrectAnswer:      mcq.CorrectAnswer,
		CurrentExplanation: currentText,
	})

	s.mu.Lock()
	s.busy = false
	if err == nil {
		s.slots[idx].DisplayedExplanation = elaborated
	}
	s.mu.Unlock()

	if err != nil {
		return "", fmt.Errorf("failed to elaborate explanation: %w", err)
	}
	return elaborated, nil
}

// Retake resets every slot to unanswered, clears the session-only
// elaborated-explanation cache, and returns to question 1. Previously saved
// attempts are untouched.
func (s *Session) Retake() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.finished {
		return fmt.Errorf("retake is only allowed after the session finished")
	}
	for i := range s.slots {
		s.slots[i] = Slot{Selected: Unanswered}
	}
	s.current = 0
	s.finished = false
	return nil
}
