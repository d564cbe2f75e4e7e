package quizify

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// IngestLogger writes a transcript of one ingestion run: every LLM
// request/response plus the outcome of each page.
type IngestLogger struct {
	file   *os.File
	mu     sync.Mutex
	quizID string
}

// NewIngestLogger creates a transcript logger for a specific ingestion run.
func NewIngestLogger(quizID, subject, pdfName string) (*IngestLogger, error) {
	if err := os.MkdirAll("log", 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	filename := filepath.Join("log", fmt.Sprintf("%s.log", quizID))
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	logger := &IngestLogger{
		file:   file,
		quizID: quizID,
	}

	logger.Logf("=== PDF Ingestion Log ===\n")
	logger.Logf("Quiz ID: %s\n", quizID)
	logger.Logf("Subject: %s\n", subject)
	if pdfName != "" {
		logger.Logf("Document: %s\n", pdfName)
	}
	logger.Logf("Started: %s\n", time.Now().Format(time.RFC3339))
	logger.Logf("========================\n\n")

	return logger, nil
}

// Logf writes a formatted log entry with timestamp.
func (il *IngestLogger) Logf(format string, args ...interface{}) {
	il.mu.Lock()
	defer il.mu.Unlock()

	timestamp := time.Now().Format("15:04:05.000")
	message := fmt.Sprintf(format, args...)

	fmt.Fprintf(il.file, "[%s] %s", timestamp, message)
	il.file.Sync()
}

// LogLLMRequest logs an LLM request.
func (il *IngestLogger) LogLLMRequest(module, prompt string) {
	il.Logf("=== LLM REQUEST (%s) ===\n", module)
	il.Logf("Prompt:\n%s\n", prompt)
	il.Logf("=====================\n\n")
}

// LogLLMResponse logs an LLM response.
func (il *IngestLogger) LogLLMResponse(module, response string) {
	il.Logf("=== LLM RESPONSE (%s) ===\n", module)
	il.Logf("Response:\n%s\n", response)
	il.Logf("======================\n\n")
}

// LogPageSkip logs a classifier skip decision.
func (il *IngestLogger) LogPageSkip(page int, reason string) {
	il.Logf("Page %d: SKIP - %s\n", page, reason)
}

// LogPageError logs a recoverable per-page failure.
func (il *IngestLogger) LogPageError(page int, err error) {
	il.Logf("Page %d: FAILED - %v\n", page, err)
}

// LogPageAccepted logs a successful page generation.
func (il *IngestLogger) LogPageAccepted(page, questions int) {
	il.Logf("Page %d: ACCEPTED - %d questions\n", page, questions)
}

// Close writes the trailer and closes the log file.
func (il *IngestLogger) Close() error {
	il.mu.Lock()
	defer il.mu.Unlock()

	if il.file != nil {
		timestamp := time.Now().Format("15:04:05.000")
		fmt.Fprintf(il.file, "[%s] === Ingestion Complete ===\n", timestamp)
		fmt.Fprintf(il.file, "[%s] Completed: %s\n", timestamp, time.Now().Format(time.RFC3339))
		return il.file.Close()
	}
	return nil
}
