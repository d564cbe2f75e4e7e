package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Saurav-Ganguly/quizify"
)

func newServeCmd(configPath *string) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the quizify HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *configPath, port)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides config)")
	return cmd
}

func runServe(ctx context.Context, configPath, portFlag string) error {
	cfg, err := quizify.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if portFlag != "" {
		cfg.Server.Port = portFlag
	}
	if cfg.OpenAI.APIKey == "" {
		return errors.New("an OpenAI API key is required (config openai.api_key or OPENAI_API_KEY)")
	}

	var store quizify.Store
	if cfg.Database.Path != "" {
		sqlStore, err := quizify.OpenSQLiteStore(cfg.Database.Path)
		if err != nil {
			return err
		}
		defer sqlStore.Close()
		store = sqlStore
		log.Printf("Using sqlite store at %s", cfg.Database.Path)
	} else {
		store = quizify.NewMemStore()
		log.Printf("No database path configured, using in-memory store")
	}

	generator := quizify.NewOpenAIGenerator(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	ingestor := quizify.NewIngestor(quizify.NewPDFExtractor(), generator, store)
	ingestor.EnableTranscript(cfg.Transcript)

	curator := quizify.NewCurator(quizify.NewOpenAISelector(cfg.OpenAI.APIKey, cfg.OpenAI.Model))
	poolTTL := 5 * time.Minute
	if cfg.QuickQuiz.PoolTTL != "" {
		if d, err := time.ParseDuration(cfg.QuickQuiz.PoolTTL); err == nil {
			poolTTL = d
		}
	}
	bank := quizify.NewBank(store, curator, poolTTL)
	elaborator := quizify.NewOpenAIElaborator(cfg.OpenAI.APIKey, cfg.OpenAI.Model)

	server := newServer(cfg, store, ingestor, bank, elaborator)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: server.routes(),
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Printf("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}
