package quizify

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

// noteDivider separates per-page notes in the stored quiz.
const noteDivider = "\n\n"

// PageSkip records a classifier decision to exclude a page.
type PageSkip struct {
	Page   int    `json:"page"`
	Reason string `json:"reason"`
}

// PageError records a recoverable per-page generation failure.
type PageError struct {
	Page   int    `json:"page"`
	Reason string `json:"reason"`
}

// IngestResult is the outcome of a successful ingestion: the persisted quiz
// plus the per-page problems collected along the way.
type IngestResult struct {
	Quiz       *Quiz       `json:"quiz"`
	TotalPages int         `json:"total_pages"`
	Skips      []PageSkip  `json:"skips,omitempty"`
	PageErrors []PageError `json:"page_errors,omitempty"`
}

// ProgressFunc is called after every page, successful or not, with the number
// of pages processed so far and the total page count.
type ProgressFunc func(processed, total int)

// TranscriptSink is implemented by generators that can record their LLM
// traffic into a per-ingestion transcript.
type TranscriptSink interface {
	SetLogger(*IngestLogger)
}

// Ingestor turns an uploaded PDF into one persisted quiz. Pages are
// processed strictly one at a time, awaiting each generation call before the
// next, to bound load on the generation API and keep progress monotonic.
type Ingestor struct {
	extractor  TextExtractor
	generator  PageGenerator
	store      Store
	progress   ProgressFunc
	transcript bool
}

// NewIngestor creates an ingestion orchestrator.
func NewIngestor(extractor TextExtractor, generator PageGenerator, store Store) *Ingestor {
	return &Ingestor{
		extractor: extractor,
		generator: generator,
		store:     store,
	}
}

// SetProgress registers a progress callback.
func (i *Ingestor) SetProgress(fn ProgressFunc) {
	i.progress = fn
}

// EnableTranscript turns on per-ingestion transcript logging under log/.
func (i *Ingestor) EnableTranscript(enabled bool) {
	i.transcript = enabled
}

// Ingest runs the page-by-page pipeline and persists one quiz at the end.
//
// A single page's failure is non-fatal: it is recorded and the loop
// continues. The operation fails only when the document itself cannot be
// read, when no page yields any questions, or when the final persist fails.
// Nothing is stored until the full loop completes, so a torn-down ingestion
// never leaves partial state behind.
func (i *Ingestor) Ingest(ctx context.Context, pdfBytes []byte, subject, pdfName string) (*IngestResult, error) {
	src, err := i.extractor.Open(pdfBytes)
	if err != nil {
		return nil, err
	}

	quizID := uuid.New().String()
	total := src.PageCount()
	log.Printf("Starting ingestion %s: subject=%q, document=%q, pages=%d", quizID, subject, pdfName, total)

	var logger *IngestLogger
	if i.transcript {
		logger, err = NewIngestLogger(quizID, subject, pdfName)
		if err != nil {
			log.Printf("Failed to create transcript logger for %s: %v", quizID, err)
			// Continue without the transcript rather than failing the run.
		} else {
			if sink, ok := i.generator.(TranscriptSink); ok {
				sink.SetLogger(logger)
				defer sink.SetLogger(nil)
			}
			defer logger.Close()
		}
	}

	result := &IngestResult{TotalPages: total}
	var mcqs []Mcq
	var notes []string

	for page := 1; page <= total; page++ {
		if err := i.processPage(ctx, src, logger, subject, page, total, result, &mcqs, &notes); err != nil {
			return nil, err
		}
		if i.progress != nil {
			i.progress(page, total)
		}
	}

	if len(mcqs) == 0 {
		log.Printf("Ingestion %s produced no questions (%d skips, %d page errors)",
			quizID, len(result.Skips), len(result.PageErrors))
		return nil, ErrNoContent
	}

	quiz := &Quiz{
		ID:        quizID,
		Subject:   subject,
		Mcqs:      mcqs,
		CreatedAt: time.Now(),
		PDFName:   pdfName,
		Notes:     strings.Join(notes, noteDivider),
		PDFData:   pdfBytes,
	}

	if err := i.store.CreateQuiz(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to save quiz: %w", err)
	}

	log.Printf("Ingestion %s complete: %d questions from %d pages (%d skipped, %d failed)",
		quizID, len(mcqs), total, len(result.Skips), len(result.PageErrors))

	result.Quiz = quiz
	return result, nil
}

// processPage handles one page: extract, classify, generate, accumulate.
// Only a cancelled context is returned as an error; everything else is
// recorded in the result and tolerated.
func (i *Ingestor) processPage(ctx context.Context, src PageSource, logger *IngestLogger,
	subject string, page, total int, result *IngestResult, mcqs *[]Mcq, notes *[]string) error {

	if err := ctx.Err(); err != nil {
		return err
	}

	text, err := src.PageText(page)
	if err != nil {
		result.PageErrors = append(result.PageErrors, PageError{Page: page, Reason: err.Error()})
		if logger != nil {
			logger.LogPageError(page, err)
		}
		return nil
	}

	if decision := Classify(text, page, total); decision.Skip {
		result.Skips = append(result.Skips, PageSkip{Page: page, Reason: decision.Reason})
		if logger != nil {
			logger.LogPageSkip(page, decision.Reason)
		}
		VerboseLog("Page %d/%d skipped: %s", page, total, decision.Reason)
		return nil
	}

	batch, err := i.generator.GeneratePage(ctx, PageRequest{
		PageText:   text,
		Subject:    subject,
		PageNumber: page,
		TotalPages: total,
	})
	if err != nil {
		log.Printf("Page %d/%d generation failed: %v", page, total, err)
		result.PageErrors = append(result.PageErrors, PageError{Page: page, Reason: err.Error()})
		if logger != nil {
			logger.LogPageError(page, err)
		}
		return nil
	}
	// A generator that returns nothing is treated like a skip; the
	// classifier is heuristic and will let barren pages through.
	if len(batch.Mcqs) == 0 {
		result.Skips = append(result.Skips, PageSkip{Page: page, Reason: "no questions generated"})
		if logger != nil {
			logger.LogPageSkip(page, "no questions generated")
		}
		return nil
	}

	*mcqs = append(*mcqs, batch.Mcqs...)
	if batch.PageNotes != "" {
		*notes = append(*notes, fmt.Sprintf("--- Page %d ---\n%s", page, batch.PageNotes))
	}
	if logger != nil {
		logger.LogPageAccepted(page, len(batch.Mcqs))
	}
	VerboseLog("Page %d/%d accepted: %d questions", page, total, len(batch.Mcqs))
	return nil
}
