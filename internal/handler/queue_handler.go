package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ascend-api/internal/dto"
	"github.com/noah-isme/ascend-api/internal/models"
	appErrors "github.com/noah-isme/ascend-api/pkg/errors"
	"github.com/noah-isme/ascend-api/pkg/response"
)

type queueService interface {
	SizeFor(companyID string) int
	DequeueFor(ctx context.Context, mentorID, companyID string) (*models.Question, error)
	Requeue(ctx context.Context, questionID string) (bool, error)
	MentorQueue(ctx context.Context, mentorID string) ([]models.Question, error)
	Stats(ctx context.Context) (*models.QueueStats, error)
}

// QueueHandler exposes the per-company question queue.
type QueueHandler struct {
	queue queueService
}

// NewQueueHandler builds a new handler.
func NewQueueHandler(queue queueService) *QueueHandler {
	return &QueueHandler{queue: queue}
}

// Size godoc
// @Summary Number of queued questions for a company
// @Tags Queue
// @Produce json
// @Param companyId path string true "Company ID"
// @Success 200 {object} response.Envelope
// @Router /queue/companies/{companyId}/size [get]
func (h *QueueHandler) Size(c *gin.Context) {
	companyID := c.Param("companyId")
	response.JSON(c, http.StatusOK, dto.QueueSizeResponse{CompanyID: companyID, Size: h.queue.SizeFor(companyID)})
}

// Dequeue godoc
// @Summary Take the next question for a mentor
// @Description Urgent questions come first, then the oldest normal one. Data is null when the queue is empty.
// @Tags Queue
// @Accept json
// @Produce json
// @Param payload body dto.DequeueRequest true "Dequeue payload"
// @Success 200 {object} response.Envelope
// @Router /queue/dequeue [post]
func (h *QueueHandler) Dequeue(c *gin.Context) {
	var req dto.DequeueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid dequeue payload"))
		return
	}
	if req.MentorID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "mentor_id is required"))
		return
	}
	question, err := h.queue.DequeueFor(c.Request.Context(), req.MentorID, req.CompanyID)
	if err != nil {
		response.Error(c, err)
		return
	}
	out := dto.DequeueResponse{Question: question}
	if question != nil {
		out.QueueSize = h.queue.SizeFor(question.CompanyID)
	} else if req.CompanyID != "" {
		out.QueueSize = h.queue.SizeFor(req.CompanyID)
	}
	response.JSON(c, http.StatusOK, out)
}

// Requeue godoc
// @Summary Return a dequeued question to its queue
// @Tags Queue
// @Produce json
// @Param id path string true "Question ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /queue/questions/{id}/requeue [post]
func (h *QueueHandler) Requeue(c *gin.Context) {
	id := c.Param("id")
	queued, err := h.queue.Requeue(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.RequeueResponse{QuestionID: id, Queued: queued})
}

// MentorQueue godoc
// @Summary List questions waiting at a mentor's company
// @Tags Queue
// @Produce json
// @Param mentorId path string true "Mentor ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /queue/mentors/{mentorId} [get]
func (h *QueueHandler) MentorQueue(c *gin.Context) {
	items, err := h.queue.MentorQueue(c.Request.Context(), c.Param("mentorId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, map[string]interface{}{"count": len(items)})
}

// Stats godoc
// @Summary Queue and backlog statistics
// @Tags Queue
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /queue/stats [get]
func (h *QueueHandler) Stats(c *gin.Context) {
	stats, err := h.queue.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats)
}
