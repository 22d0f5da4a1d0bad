package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"paperbridge/internal/chunker"
	"paperbridge/internal/config"
	"paperbridge/internal/email/noop"
	"paperbridge/internal/email/ses"
	"paperbridge/internal/handler"
	"paperbridge/internal/llm/openai"
	"paperbridge/internal/pdfparse"
	"paperbridge/internal/port"
	"paperbridge/internal/repository/postgres"
	"paperbridge/internal/router"
	"paperbridge/internal/service"
	s3storage "paperbridge/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	docRepo := postgres.NewDocumentRepo(db)
	pageRepo := postgres.NewPageRepo(db)
	jobRepo := postgres.NewJobRepo(db)
	extractionRepo := postgres.NewExtractionRepo(db)
	reviewEditRepo := postgres.NewReviewEditRepo(db)
	embeddingRepo := postgres.NewEmbeddingRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize LLM clients
	openaiClient := openai.NewClient(&cfg.OpenAI)
	extractor := openai.NewExtractor(openaiClient, &cfg.OpenAI)
	embedder := openai.NewEmbedder(openaiClient, &cfg.OpenAI)
	chat := openai.NewChat(openaiClient, &cfg.OpenAI)

	counter, err := chunker.NewTiktokenCounter(cfg.OpenAI.ChatModel)
	if err != nil {
		log.Printf("tiktoken unavailable, falling back to rune-based counting: %v", err)
		counter = chunker.RuneCounter
	}
	textChunker, err := chunker.New(cfg.Chunk.SizeTokens, cfg.Chunk.OverlapTokens, counter)
	if err != nil {
		return fmt.Errorf("invalid chunk configuration: %w", err)
	}

	var emailSender port.EmailSender
	switch cfg.Email.Provider {
	case "ses":
		emailSender, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	default:
		emailSender = noop.NewNoopSender()
	}

	parser := pdfparse.NewParser(cfg.Parse.MaxPages, cfg.Parse.LowTextThreshold, chat)

	// Initialize services
	docSvc := service.NewDocumentService(docRepo, pageRepo, s3Client, parser, cfg.S3.Bucket, cfg.S3.MaxFileSizeMB)
	jobSvc := service.NewJobService(
		jobRepo, docRepo, pageRepo, extractionRepo, embeddingRepo,
		extractor, embedder, textChunker,
		emailSender, cfg.Email.ReviewerTo, cfg.RAG.EmbedBatchSize,
	)
	askSvc := service.NewAskService(embeddingRepo, embedder, chat, cfg.RAG.TopK, cfg.RAG.MaxTopK, cfg.RAG.VectorCandidates)
	reviewSvc := service.NewReviewService(extractionRepo, reviewEditRepo)
	exportSvc := service.NewExportService(docRepo, extractionRepo)

	// Initialize handlers
	docH := handler.NewDocumentHandler(docSvc)
	jobH := handler.NewJobHandler(jobSvc)
	askH := handler.NewAskHandler(askSvc)
	reviewH := handler.NewReviewHandler(reviewSvc)
	exportH := handler.NewExportHandler(exportSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(cfg.CORS.AllowedOrigins, docH, jobH, askH, reviewH, exportH, healthH)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start the job queue worker alongside the HTTP server.
	worker := service.NewJobQueueWorker(jobRepo, jobSvc, service.JobQueueConfig{
		PollInterval: time.Duration(cfg.Queue.PollIntervalSecs) * time.Second,
		Concurrency:  cfg.Queue.Concurrency,
		JobTimeout:   time.Duration(cfg.Queue.JobTimeoutSecs) * time.Second,
	})
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Start(ctx)
	}()

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		stop()
		<-workerDone
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Printf("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
	<-workerDone
	log.Printf("Shutdown complete")
	return nil
}
