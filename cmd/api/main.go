package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mdlabs/atlas-api/internal/application"
	appanalysis "github.com/mdlabs/atlas-api/internal/application/analysis"
	appclassify "github.com/mdlabs/atlas-api/internal/application/classify"
	appfeedback "github.com/mdlabs/atlas-api/internal/application/feedback"
	appknowledge "github.com/mdlabs/atlas-api/internal/application/knowledge"
	apptraining "github.com/mdlabs/atlas-api/internal/application/training"
	"github.com/mdlabs/atlas-api/internal/config"
	domaccuracy "github.com/mdlabs/atlas-api/internal/domain/accuracy"
	domanalysis "github.com/mdlabs/atlas-api/internal/domain/analysis"
	"github.com/mdlabs/atlas-api/internal/domain/archive"
	"github.com/mdlabs/atlas-api/internal/domain/classifier"
	domfeedback "github.com/mdlabs/atlas-api/internal/domain/feedback"
	domknowledge "github.com/mdlabs/atlas-api/internal/domain/knowledge"
	domusage "github.com/mdlabs/atlas-api/internal/domain/usage"
	anthropicai "github.com/mdlabs/atlas-api/internal/infra/ai/anthropic"
	openaiai "github.com/mdlabs/atlas-api/internal/infra/ai/openai"
	mysqlp "github.com/mdlabs/atlas-api/internal/infra/db/mysql"
	postgresp "github.com/mdlabs/atlas-api/internal/infra/db/postgres"
	"github.com/mdlabs/atlas-api/internal/infra/httpserver"
	minioStore "github.com/mdlabs/atlas-api/internal/infra/storage"
	"github.com/mdlabs/atlas-api/internal/middleware"
)

const version = "1.0.0"

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// connect DB sesuai driver
	var db *sql.DB
	switch cfg.Database.Driver {
	case "mysql":
		db, err = mysqlp.Connect(ctx, cfg.DSN())
	default:
		db, err = postgresp.Connect(ctx, cfg.DSN())
	}
	if err != nil {
		log.Fatalf("db connect error (%s): %v", cfg.Database.Driver, err)
	}
	defer db.Close()

	// init repos, satu set per dialek
	var (
		analysisRepo  domanalysis.Repository
		learningRepo  domanalysis.LearningRepository
		feedbackRepo  domfeedback.Repository
		accuracyRepo  domaccuracy.Repository
		usageRepo     domusage.Repository
		knowledgeRepo domknowledge.Repository
	)
	if cfg.Database.Driver == "mysql" {
		analysisRepo = mysqlp.NewAnalysisRepository(db)
		learningRepo = mysqlp.NewLearningRepository(db)
		feedbackRepo = mysqlp.NewFeedbackRepository(db)
		accuracyRepo = mysqlp.NewAccuracyRepository(db)
		usageRepo = mysqlp.NewUsageRepository(db)
		knowledgeRepo = mysqlp.NewKnowledgeRepository(db)
	} else {
		analysisRepo = postgresp.NewAnalysisRepository(db)
		learningRepo = postgresp.NewLearningRepository(db)
		feedbackRepo = postgresp.NewFeedbackRepository(db)
		accuracyRepo = postgresp.NewAccuracyRepository(db)
		usageRepo = postgresp.NewUsageRepository(db)
		knowledgeRepo = postgresp.NewKnowledgeRepository(db)
	}

	// init minio (optional, arsip best-effort)
	var store archive.Store
	if cfg.Minio.Enabled {
		s, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
		store = s
	}

	// init classifier
	var aiClient classifier.Client
	switch cfg.Classifier.Provider {
	case "openai":
		aiClient = openaiai.NewClient(cfg.Classifier.APIKey, cfg.Classifier.Model)
	default:
		aiClient = anthropicai.NewClient(cfg.Classifier.APIKey, cfg.Classifier.Model)
	}

	// init services
	clock := application.SystemClock{}
	classifySvc := &appclassify.Service{
		Client:  aiClient,
		Usage:   usageRepo,
		Archive: store,
	}
	analysisSvc := &appanalysis.Service{
		Repo:     analysisRepo,
		Learning: learningRepo,
		Clock:    clock,
		Salt:     cfg.Privacy.IPHashSalt,
	}
	feedbackSvc := &appfeedback.Service{
		Repo:     feedbackRepo,
		Analyses: analysisRepo,
		Accuracy: accuracyRepo,
		Clock:    clock,
	}
	knowledgeSvc := &appknowledge.Service{
		Repo:     knowledgeRepo,
		Accuracy: accuracyRepo,
		Analyses: analysisRepo,
		Feedback: feedbackRepo,
	}
	trainingSvc := &apptraining.Service{
		Repo:    knowledgeRepo,
		Archive: store,
	}

	// init router
	mux := chi.NewRouter()
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.RateLimitMiddleware(60, 2))
	mux.Mount("/", httpserver.NewRouter(httpserver.Deps{
		Classify:             classifySvc,
		Analysis:             analysisSvc,
		Feedback:             feedbackSvc,
		Knowledge:            knowledgeSvc,
		Training:             trainingSvc,
		HealthDB:             &middleware.DatabaseHealthChecker{DB: db},
		ClassifierConfigured: cfg.Classifier.APIKey != "",
		Version:              version,
		Production:           cfg.Production(),
	}))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s (driver=%s, classifier=%s)", addr, cfg.Database.Driver, cfg.Classifier.Provider)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
