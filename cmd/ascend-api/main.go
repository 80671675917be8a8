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

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "github.com/noah-isme/ascend-api/api/swagger"
	"github.com/noah-isme/ascend-api/internal/handler"
	"github.com/noah-isme/ascend-api/internal/queue"
	"github.com/noah-isme/ascend-api/internal/repository"
	"github.com/noah-isme/ascend-api/internal/service"
	"github.com/noah-isme/ascend-api/pkg/cache"
	"github.com/noah-isme/ascend-api/pkg/config"
	"github.com/noah-isme/ascend-api/pkg/database"
	"github.com/noah-isme/ascend-api/pkg/jobs"
	"github.com/noah-isme/ascend-api/pkg/logger"
)

// @title ASCEND API
// @version 1.0.0
// @description Mentor routing core: matching, question queue, trust scores and feedback.
// @BasePath /api/v1
// @schemes http

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server exited with error", zap.Error(err))
	}
	logr.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Stats.CacheTTL, logr, cfg.Stats.CacheEnabled && redisClient != nil)
	validate := validator.New()

	mentorRepo := repository.NewMentorRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	responseRepo := repository.NewResponseRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	referralRepo := repository.NewReferralRepository(db)

	matchingSvc := service.NewMatchingService(mentorRepo, companyRepo, questionRepo, responseRepo, cacheSvc, metrics, cfg.Stats.CacheTTL, logr)
	queueSvc := service.NewQueueService(queue.New(), questionRepo, mentorRepo, metrics, service.QueueServiceConfig{
		LeaseTTL:        cfg.Queue.LeaseTTL,
		ReclaimInterval: cfg.Queue.ReclaimInterval,
	}, logr)
	allocatorSvc := service.NewAllocatorService(mentorRepo, questionRepo, responseRepo, metrics, logr)
	trustSvc := service.NewTrustService(mentorRepo, feedbackRepo, questionRepo, cacheSvc, metrics, service.TrustServiceConfig{
		StaleAfter:        cfg.Trust.StaleAfter,
		RecomputeInterval: cfg.Trust.RecomputeInterval,
	}, logr)
	questionSvc := service.NewQuestionService(questionRepo, companyRepo, mentorRepo, matchingSvc, queueSvc, validate, logr)
	mentorSvc := service.NewMentorService(mentorRepo, companyRepo, matchingSvc, validate, logr)
	referralSvc := service.NewReferralService(referralRepo, mentorRepo, validate, logr)

	mux := jobs.NewMux()
	mux.Handle(service.JobTypeTrustRecompute, trustSvc.HandleJob)
	mux.Handle(service.JobTypeTrustBulkRecompute, trustSvc.HandleJob)
	jobQueue := jobs.NewQueue("trust", mux.Dispatch, jobs.QueueConfig{
		Workers:    cfg.Jobs.Workers,
		MaxRetries: cfg.Jobs.MaxRetries,
		RetryDelay: cfg.Jobs.RetryDelay,
		Logger:     logr,
	})
	jobQueue.Start(ctx)
	defer jobQueue.Stop()

	feedbackSvc := service.NewFeedbackService(questionRepo, responseRepo, feedbackRepo, trustSvc, jobQueue, cacheSvc, metrics, validate, logr)
	activitySvc := service.NewMentorActivityService(mentorRepo, responseRepo, questionRepo, feedbackRepo)

	loaded, err := queueSvc.Initialize(ctx)
	if err != nil {
		return fmt.Errorf("initialize question queue: %w", err)
	}
	logr.Info("question queue initialized", zap.Int("pending", loaded))

	checks := map[string]handler.Pinger{"postgres": db}
	if redisClient != nil {
		checks["redis"] = handler.PingFunc(cacheRepo.Ping)
	}

	router := handler.NewRouter(handler.RouterConfig{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     cfg.Env != config.EnvProduction,
		Logger:         logr,
		Metrics:        metrics,
		Questions:      handler.NewQuestionHandler(questionSvc, matchingSvc, feedbackSvc),
		Queue:          handler.NewQueueHandler(queueSvc),
		Allocations:    handler.NewAllocationHandler(allocatorSvc),
		Mentors:        handler.NewMentorHandler(mentorSvc, activitySvc, matchingSvc, trustSvc, jobQueue),
		Referrals:      handler.NewReferralHandler(referralSvc),
		Stats:          handler.NewStatsHandler(matchingSvc, feedbackSvc, queueSvc, metrics),
		Ops:            handler.NewMetricsHandler(metrics, checks),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logr.Sugar().Infow("server starting", "addr", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return queueSvc.RunReclaimer(gctx)
	})
	g.Go(func() error {
		return trustSvc.RunPeriodicRecompute(gctx, jobQueue)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logr.Info("shutting down server")
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
