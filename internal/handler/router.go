package handler

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/ascend-api/internal/middleware"
	"github.com/noah-isme/ascend-api/internal/service"
	"github.com/noah-isme/ascend-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/ascend-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/ascend-api/pkg/middleware/requestid"
)

// RouterConfig carries everything NewRouter mounts.
type RouterConfig struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableDocs     bool
	Logger         *zap.Logger
	Metrics        *service.MetricsService

	Questions   *QuestionHandler
	Queue       *QueueHandler
	Allocations *AllocationHandler
	Mentors     *MentorHandler
	Referrals   *ReferralHandler
	Stats       *StatsHandler
	Ops         *MetricsHandler
}

// NewRouter builds the gin engine with ops routes at the root and the API under APIPrefix.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(cfg.Logger))
	r.Use(corsmiddleware.New(cfg.AllowedOrigins))
	r.Use(middleware.Metrics(cfg.Metrics, "/metrics", "/health", "/ready"))

	if cfg.Ops != nil {
		r.GET("/health", cfg.Ops.Health)
		r.GET("/ready", cfg.Ops.Ready)
		r.GET("/metrics", cfg.Ops.Prometheus)
	}
	if cfg.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	if h := cfg.Questions; h != nil {
		questions := api.Group("/questions")
		questions.POST("", h.Ask)
		questions.GET("", h.List)
		questions.GET("/:id", h.Get)
		questions.GET("/:id/match", h.Match)
		questions.POST("/:id/answer", h.Answer)
		questions.POST("/:id/feedback", h.Feedback)
	}

	if h := cfg.Queue; h != nil {
		queue := api.Group("/queue")
		queue.GET("/companies/:companyId/size", h.Size)
		queue.POST("/dequeue", h.Dequeue)
		queue.POST("/questions/:id/requeue", h.Requeue)
		queue.GET("/mentors/:mentorId", h.MentorQueue)
		queue.GET("/stats", h.Stats)
	}

	if h := cfg.Allocations; h != nil {
		allocations := api.Group("/allocations")
		allocations.POST("/questions/:id", h.Assign)
		allocations.POST("/distribute", h.Distribute)
	}

	if h := cfg.Mentors; h != nil {
		mentors := api.Group("/mentors")
		mentors.POST("", h.Register)
		mentors.GET("/recommendations", h.Recommendations)
		mentors.GET("/:id", h.Get)
		mentors.POST("/:id/availability", h.SetAvailability)
		mentors.POST("/:id/verification", h.SetVerification)
		mentors.GET("/:id/responses", h.Responses)
		mentors.GET("/:id/feedback", h.Feedback)
		mentors.GET("/:id/dashboard", h.Dashboard)
		mentors.GET("/:id/trust", h.Trust)
		mentors.POST("/:id/trust/recompute", h.RecomputeTrust)
		api.POST("/trust/recompute", h.BulkRecomputeTrust)
	}

	if h := cfg.Referrals; h != nil {
		referrals := api.Group("/referrals")
		referrals.POST("", h.Create)
		referrals.GET("", h.List)
		referrals.POST("/:id/respond", h.Respond)
	}

	if h := cfg.Stats; h != nil {
		stats := api.Group("/stats")
		stats.GET("/matching", h.Matching)
		stats.GET("/companies", h.Companies)
		stats.GET("/feedback", h.Feedback)
		stats.GET("/queue", h.Queue)
		stats.GET("/system", h.System)
	}

	return r
}
