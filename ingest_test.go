package quizify_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Saurav-Ganguly/quizify"
)

// contentPage builds a page long enough to pass the classifier.
func contentPage(topic string) string {
	return strings.Repeat(fmt.Sprintf("Everything you need to know about %s. ", topic), 15)
}

type fakeExtractor struct {
	pages []string
	err   error
}

func (f *fakeExtractor) Open(data []byte) (quizify.PageSource, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &fakeSource{pages: f.pages}, nil
}

type fakeSource struct {
	pages []string
}

func (f *fakeSource) PageCount() int {
	return len(f.pages)
}

func (f *fakeSource) PageText(pageNumber int) (string, error) {
	return f.pages[pageNumber-1], nil
}

type fakeGenerator struct {
	failPages  map[int]bool
	emptyPages map[int]bool
	notes      map[int]string
	calls      []int
}

func (f *fakeGenerator) GeneratePage(_ context.Context, req quizify.PageRequest) (quizify.PageBatch, error) {
	f.calls = append(f.calls, req.PageNumber)
	if f.failPages[req.PageNumber] {
		return quizify.PageBatch{}, fmt.Errorf("page %d: expected 5 questions, got 2", req.PageNumber)
	}
	if f.emptyPages[req.PageNumber] {
		return quizify.PageBatch{}, nil
	}

	mcqs := make([]quizify.Mcq, quizify.PageBatchSize)
	for i := range mcqs {
		mcqs[i] = testMcq(fmt.Sprintf("p%d-q%d", req.PageNumber, i), 1)
	}
	return quizify.PageBatch{Mcqs: mcqs, PageNotes: f.notes[req.PageNumber]}, nil
}

func testMcq(question string, correct int) quizify.Mcq {
	return quizify.Mcq{
		ID:            question,
		Question:      question,
		Options:       []string{"alpha", "beta", "gamma", "delta"},
		CorrectAnswer: correct,
		Explanation:   "because",
	}
}

func TestIngestHappyPath(t *testing.T) {
	pages := []string{
		contentPage("tides"),
		contentPage("currents"),
		contentPage("waves"),
	}
	generator := &fakeGenerator{notes: map[int]string{1: "tides move twice daily", 3: "waves carry energy"}}
	store := quizify.NewMemStore()
	ingestor := quizify.NewIngestor(&fakeExtractor{pages: pages}, generator, store)

	var progress []int
	ingestor.SetProgress(func(processed, total int) {
		if total != 3 {
			t.Fatalf("expected total 3, got %d", total)
		}
		progress = append(progress, processed)
	})

	result, err := ingestor.Ingest(context.Background(), []byte("%PDF"), "Oceanography", "ocean.pdf")
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	if got := len(result.Quiz.Mcqs); got != 3*quizify.PageBatchSize {
		t.Fatalf("expected %d questions, got %d", 3*quizify.PageBatchSize, got)
	}
	// Questions arrive in page order.
	if result.Quiz.Mcqs[0].Question != "p1-q0" || result.Quiz.Mcqs[14].Question != "p3-q4" {
		t.Fatalf("questions out of page order: first=%q last=%q",
			result.Quiz.Mcqs[0].Question, result.Quiz.Mcqs[14].Question)
	}
	if len(result.PageErrors) != 0 || len(result.Skips) != 0 {
		t.Fatalf("expected clean run, got errors=%v skips=%v", result.PageErrors, result.Skips)
	}
	if len(progress) != 3 || progress[0] != 1 || progress[2] != 3 {
		t.Fatalf("expected progress after every page, got %v", progress)
	}
	if !strings.Contains(result.Quiz.Notes, "--- Page 1 ---") || !strings.Contains(result.Quiz.Notes, "waves carry energy") {
		t.Fatalf("notes not joined with page dividers: %q", result.Quiz.Notes)
	}

	stored, err := store.GetQuizByID(context.Background(), result.Quiz.ID)
	if err != nil {
		t.Fatalf("quiz was not persisted: %v", err)
	}
	if stored.Subject != "Oceanography" || stored.PDFName != "ocean.pdf" {
		t.Fatalf("stored quiz metadata wrong: %+v", stored)
	}
	if string(stored.PDFData) != "%PDF" {
		t.Fatalf("original bytes not retained")
	}
}

func TestIngestSingleFailingPageIsNonFatal(t *testing.T) {
	pages := make([]string, 5)
	for i := range pages {
		pages[i] = contentPage(fmt.Sprintf("topic %d", i+1))
	}
	generator := &fakeGenerator{failPages: map[int]bool{3: true}}
	store := quizify.NewMemStore()
	ingestor := quizify.NewIngestor(&fakeExtractor{pages: pages}, generator, store)

	result, err := ingestor.Ingest(context.Background(), []byte("%PDF"), "History", "history.pdf")
	if err != nil {
		t.Fatalf("ingest should tolerate one failing page: %v", err)
	}
	if got := len(result.Quiz.Mcqs); got != 4*quizify.PageBatchSize {
		t.Fatalf("expected %d questions, got %d", 4*quizify.PageBatchSize, got)
	}
	if len(result.PageErrors) != 1 || result.PageErrors[0].Page != 3 {
		t.Fatalf("expected exactly one page error for page 3, got %v", result.PageErrors)
	}
	// Page 4's questions follow page 2's directly.
	if result.Quiz.Mcqs[10].Question != "p4-q0" {
		t.Fatalf("expected page 4 questions after page 2, got %q", result.Quiz.Mcqs[10].Question)
	}
}

func TestIngestAllSkippedIsFatal(t *testing.T) {
	pages := []string{"", "Chapter 1", "Index"}
	generator := &fakeGenerator{}
	store := quizify.NewMemStore()
	ingestor := quizify.NewIngestor(&fakeExtractor{pages: pages}, generator, store)

	_, err := ingestor.Ingest(context.Background(), []byte("%PDF"), "Nothing", "empty.pdf")
	if !errors.Is(err, quizify.ErrNoContent) {
		t.Fatalf("expected ErrNoContent, got %v", err)
	}
	if len(generator.calls) != 0 {
		t.Fatalf("generator should never be called, got calls for pages %v", generator.calls)
	}

	quizzes, err := store.GetQuizzes(context.Background())
	if err != nil {
		t.Fatalf("failed to list quizzes: %v", err)
	}
	if len(quizzes) != 0 {
		t.Fatalf("nothing should be persisted on a zero-yield ingestion, got %d quizzes", len(quizzes))
	}
}

func TestIngestAllPagesFailingIsFatal(t *testing.T) {
	pages := []string{contentPage("one"), contentPage("two")}
	generator := &fakeGenerator{failPages: map[int]bool{1: true, 2: true}}
	store := quizify.NewMemStore()
	ingestor := quizify.NewIngestor(&fakeExtractor{pages: pages}, generator, store)

	_, err := ingestor.Ingest(context.Background(), []byte("%PDF"), "Subject", "doc.pdf")
	if !errors.Is(err, quizify.ErrNoContent) {
		t.Fatalf("expected ErrNoContent, got %v", err)
	}
}

func TestIngestCorruptDocumentIsFatal(t *testing.T) {
	extractErr := fmt.Errorf("%w: bad xref table", quizify.ErrExtraction)
	ingestor := quizify.NewIngestor(&fakeExtractor{err: extractErr}, &fakeGenerator{}, quizify.NewMemStore())

	_, err := ingestor.Ingest(context.Background(), []byte("not a pdf"), "Subject", "doc.pdf")
	if !errors.Is(err, quizify.ErrExtraction) {
		t.Fatalf("expected extraction error, got %v", err)
	}
}

func TestIngestEmptyGenerationTreatedAsSkip(t *testing.T) {
	pages := []string{contentPage("one"), contentPage("two")}
	generator := &fakeGenerator{emptyPages: map[int]bool{2: true}}
	store := quizify.NewMemStore()
	ingestor := quizify.NewIngestor(&fakeExtractor{pages: pages}, generator, store)

	result, err := ingestor.Ingest(context.Background(), []byte("%PDF"), "Subject", "doc.pdf")
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if len(result.PageErrors) != 0 {
		t.Fatalf("an empty batch is a skip, not an error: %v", result.PageErrors)
	}
	if len(result.Skips) != 1 || result.Skips[0].Page != 2 {
		t.Fatalf("expected page 2 recorded as skip, got %v", result.Skips)
	}
	if got := len(result.Quiz.Mcqs); got != quizify.PageBatchSize {
		t.Fatalf("expected %d questions, got %d", quizify.PageBatchSize, got)
	}
}
