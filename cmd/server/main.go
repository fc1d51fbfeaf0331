package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"coursegate/internal/assessment"
	"coursegate/internal/audit"
	"coursegate/internal/credential"
	"coursegate/internal/entitlement"
	"coursegate/internal/identity"
	"coursegate/internal/jwtauth"
	"coursegate/internal/learning"
	"coursegate/internal/payments"
	"coursegate/internal/platform/config"
	"coursegate/internal/platform/httpserver"
	"coursegate/internal/platform/logger"
	"coursegate/internal/platform/metrics"
	"coursegate/internal/platform/middleware"
	"coursegate/internal/platform/postgres"
	"coursegate/internal/platform/redis"
	"coursegate/internal/profile"
	"coursegate/internal/tracking"
	httptransport "coursegate/internal/transport/http"
	"coursegate/internal/workflow"
	"coursegate/pkg/platform/circuit"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal services; nothing here makes a domain decision.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		log.Error("postgres connection failed", "error", err.Error())
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err.Error())
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	m := metrics.New()

	var (
		paymentStore     payments.Store
		profileStore     profile.Store
		entitlementStore entitlement.Store
		learningStore    learning.Store
		questionStore    assessment.QuestionStore
		credentialStore  credential.Store
		templateStore    credential.TemplateStore
		tracker          tracking.Tracker
		auditStore       audit.Store
	)
	if db != nil {
		paymentStore = payments.NewPostgres(db)
		profileStore = profile.NewPostgres(db)
		entitlementStore = entitlement.NewPostgres(db)
		learningStore = learning.NewPostgres(db)
		questionStore = assessment.NewPostgresQuestionStore(db)
		credentialStore = credential.NewPostgres(db)
		templateStore = credential.NewPostgresTemplateStore(db)
		tracker = tracking.NewPostgres(db)
		auditStore = audit.NewPostgres(db)
	} else {
		paymentStore = payments.NewInMemoryStore()
		profileStore = profile.NewInMemoryStore()
		entitlementStore = entitlement.NewInMemoryStore()
		learningStore = learning.NewInMemoryStore()
		questionStore = assessment.NewInMemoryQuestionStore()
		credentialStore = credential.NewInMemoryStore()
		templateStore = credential.NewInMemoryTemplateStore()
		tracker = tracking.NewInMemoryTracker()
		auditStore = audit.NewInMemoryStore()
	}

	if redisClient != nil {
		questionStore = assessment.NewCachedQuestionStore(questionStore, redisClient.Client, cfg.QuestionCacheTTL, log)
	}

	auditInbox := make(chan audit.Event, 256)
	auditWorker := audit.NewWorker(auditStore, auditInbox, log)
	workerCtx, stopWorker := context.WithCancel(context.Background())
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		_ = auditWorker.Run(workerCtx)
	}()

	gateway := payments.NewBreakerGateway(
		payments.NewHTTPGateway(cfg.Gateway),
		circuit.New("payment-gateway", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(1)),
		log,
	)

	svc := workflow.NewService(
		identity.New(config.IdentityNamespace, identity.V1),
		cfg.WebhookSecret,
		gateway,
		paymentStore,
		profile.NewService(profileStore, log),
		entitlement.NewService(entitlementStore, log),
		learning.NewService(learningStore),
		questionStore,
		credential.NewIssuer(credentialStore, templateStore, tracker, log),
		audit.NewPublisher(auditInbox, log),
		log,
		m,
	)

	// A nil *Validator must stay a nil interface so BearerAuth skips
	// validation entirely when no signing key is configured.
	var validator middleware.TokenValidator
	if v := jwtauth.NewValidator(cfg.JWTSigningKey); v != nil {
		validator = v
	}

	handler := httptransport.NewHandler(svc, log, m)
	router := httptransport.NewRouter(handler, validator, log, m)
	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting coursegate", "addr", cfg.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
	}
	stopWorker()
	<-workerDone
}
