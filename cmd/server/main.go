package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"invoiceqc/internal/config"
	"invoiceqc/internal/email/noop"
	"invoiceqc/internal/email/ses"
	"invoiceqc/internal/handler"
	"invoiceqc/internal/parser"
	_ "invoiceqc/internal/parser/claude"
	_ "invoiceqc/internal/parser/gemini"
	_ "invoiceqc/internal/parser/openai"
	_ "invoiceqc/internal/parser/pattern"
	"invoiceqc/internal/port"
	"invoiceqc/internal/repository/postgres"
	"invoiceqc/internal/router"
	"invoiceqc/internal/service"
	s3storage "invoiceqc/internal/storage/s3"
	"invoiceqc/internal/validator"
	"invoiceqc/internal/validator/invoice"
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
	runRepo := postgres.NewRunRepo(db)
	docRepo := postgres.NewRunDocumentRepo(db)
	statsRepo := postgres.NewStatsRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize extraction chain and rule engine
	docParser, err := parser.NewChain(cfg.Parser.Chain())
	if err != nil {
		return fmt.Errorf("failed to initialize extraction providers: %w", err)
	}
	engine := validator.NewDefaultEngine(invoice.Config{
		KnownCurrencies: cfg.Validation.KnownCurrencies,
		SumTolerance:    cfg.Validation.SumTolerance,
		TaxTolerance:    cfg.Validation.TaxTolerance,
	})

	// Initialize email sender
	var sender port.EmailSender
	switch cfg.Email.Provider {
	case "ses":
		sender, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	default:
		sender = noop.NewNoopSender()
	}

	// Initialize services
	runSvc := service.NewRunService(runRepo, docRepo, s3Client, docParser, engine, sender, &cfg.S3, &cfg.Email, cfg.Validation.MaxBatchSize)
	validationSvc := service.NewValidationService(engine, cfg.Validation.MaxBatchSize)
	statsSvc := service.NewStatsService(statsRepo)

	// Start the run queue worker
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	worker := service.NewRunQueueWorker(runRepo, runSvc, service.RunQueueConfig{
		PollInterval: time.Duration(cfg.Queue.PollIntervalSecs) * time.Second,
		Concurrency:  cfg.Queue.Concurrency,
	})
	workerDone := make(chan struct{})
	go func() {
		worker.Start(workerCtx)
		close(workerDone)
	}()

	// Initialize handlers
	validateH := handler.NewValidateHandler(validationSvc)
	runH := handler.NewRunHandler(runSvc)
	statsH := handler.NewStatsHandler(statsSvc)
	infoH := handler.NewInfoHandler(validationSvc, cfg.Server.Version)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(cfg, validateH, runH, statsH, infoH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	// Stop the queue worker after request intake has drained; Start returns
	// once in-flight runs finish.
	stopWorker()
	<-workerDone

	log.Println("Server stopped")
	return nil
}
