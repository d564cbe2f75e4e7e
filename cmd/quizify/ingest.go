package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Saurav-Ganguly/quizify"
)

func newIngestCmd(configPath *string) *cobra.Command {
	var subject string

	cmd := &cobra.Command{
		Use:   "ingest <pdf>",
		Short: "Generate a quiz from a PDF without starting the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, *configPath, args[0], subject)
		},
	}
	cmd.Flags().StringVarP(&subject, "subject", "s", "", "subject of the document (required)")
	cmd.MarkFlagRequired("subject")
	return cmd
}

func runIngest(cmd *cobra.Command, configPath, pdfPath, subject string) error {
	cfg, err := quizify.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.OpenAI.APIKey == "" {
		return errors.New("an OpenAI API key is required (config openai.api_key or OPENAI_API_KEY)")
	}
	if cfg.Database.Path == "" {
		return errors.New("database.path must be set to ingest from the command line")
	}

	store, err := quizify.OpenSQLiteStore(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	data, err := os.ReadFile(pdfPath)
	if err != nil {
		return err
	}

	generator := quizify.NewOpenAIGenerator(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	ingestor := quizify.NewIngestor(quizify.NewPDFExtractor(), generator, store)
	ingestor.EnableTranscript(cfg.Transcript)
	ingestor.SetProgress(func(processed, total int) {
		log.Printf("Processed page %d/%d", processed, total)
	})

	result, err := ingestor.Ingest(cmd.Context(), data, subject, filepath.Base(pdfPath))
	if err != nil {
		return err
	}

	fmt.Printf("Created quiz %s with %d questions from %d pages\n",
		result.Quiz.ID, len(result.Quiz.Mcqs), result.TotalPages)
	if len(result.Skips) > 0 {
		fmt.Printf("Skipped %d pages\n", len(result.Skips))
	}
	for _, pageErr := range result.PageErrors {
		fmt.Printf("Page %d failed: %s\n", pageErr.Page, pageErr.Reason)
	}
	return nil
}
