package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ascend-api/internal/models"
	"github.com/noah-isme/ascend-api/pkg/response"
)

type matchingStatsService interface {
	Stats(ctx context.Context) (*models.MatchingStats, error)
	CompanyMap(ctx context.Context) ([]models.CompanyMentorSummary, error)
}

type feedbackStatsService interface {
	Stats(ctx context.Context) (*models.FeedbackStats, error)
}

type queueStatsService interface {
	Stats(ctx context.Context) (*models.QueueStats, error)
}

type systemSnapshotter interface {
	Snapshot() models.SystemStats
}

// StatsHandler exposes read-only dashboards over matching, feedback and the queue.
type StatsHandler struct {
	matching matchingStatsService
	feedback feedbackStatsService
	queue    queueStatsService
	system   systemSnapshotter
}

// NewStatsHandler constructs the stats handler.
func NewStatsHandler(matching matchingStatsService, feedback feedbackStatsService, queue queueStatsService, system systemSnapshotter) *StatsHandler {
	return &StatsHandler{matching: matching, feedback: feedback, queue: queue, system: system}
}

func timed(c *gin.Context, start time.Time, data interface{}) {
	response.JSON(c, http.StatusOK, data, map[string]interface{}{
		"processing_time_ms": time.Since(start).Milliseconds(),
	})
}

// Matching godoc
// @Summary Mentor pool statistics
// @Tags Stats
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /stats/matching [get]
func (h *StatsHandler) Matching(c *gin.Context) {
	start := time.Now()
	stats, err := h.matching.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	timed(c, start, stats)
}

// Companies godoc
// @Summary Verified and available mentors per company
// @Tags Stats
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /stats/companies [get]
func (h *StatsHandler) Companies(c *gin.Context) {
	start := time.Now()
	rows, err := h.matching.CompanyMap(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	timed(c, start, rows)
}

// Feedback godoc
// @Summary Feedback outcome statistics
// @Tags Stats
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /stats/feedback [get]
func (h *StatsHandler) Feedback(c *gin.Context) {
	start := time.Now()
	stats, err := h.feedback.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	timed(c, start, stats)
}

// Queue godoc
// @Summary Queue and backlog statistics
// @Tags Stats
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /stats/queue [get]
func (h *StatsHandler) Queue(c *gin.Context) {
	start := time.Now()
	stats, err := h.queue.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	timed(c, start, stats)
}

// System godoc
// @Summary Process counters for requests, cache and routing
// @Tags Stats
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /stats/system [get]
func (h *StatsHandler) System(c *gin.Context) {
	timed(c, time.Now(), h.system.Snapshot())
}
