package quizify

import "errors"

var (
	// ErrExtraction indicates the PDF could not be opened or read at all.
	ErrExtraction = errors.New("failed to read document")
	// ErrNoContent indicates every page was skipped or failed, so no quiz was created.
	ErrNoContent = errors.New("no quiz content could be generated from the document")
	// ErrQuizNotFound is returned by stores when a quiz ID is unknown.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrAttemptNotFound is returned when a quiz has no attempts yet.
	ErrAttemptNotFound = errors.New("no attempts found for quiz")
	// ErrEmptyPool indicates the cross-document question pool is empty.
	ErrEmptyPool = errors.New("question pool is empty")
	// ErrMalformedSelection indicates the external curator returned an unusable result.
	ErrMalformedSelection = errors.New("curator returned no usable selection")
	// ErrNoSelection is returned when submitting a question without picking an option.
	ErrNoSelection = errors.New("select an option before submitting")
	// ErrAlreadySubmitted is returned when changing or resubmitting a locked slot.
	ErrAlreadySubmitted = errors.New("question already submitted")
	// ErrNotSubmitted is returned for actions that require a submitted slot.
	ErrNotSubmitted = errors.New("question not submitted yet")
	// ErrSessionFinished is returned for slot mutations after the session finished.
	ErrSessionFinished = errors.New("quiz session already finished")
	// ErrSessionBusy is returned while a save or elaboration call is in flight.
	ErrSessionBusy = errors.New("a network call is in progress, try again")
)
