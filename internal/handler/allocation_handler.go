package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ascend-api/internal/models"
	"github.com/noah-isme/ascend-api/pkg/response"
)

type allocatorService interface {
	AssignQuestion(ctx context.Context, questionID string) (*models.Assignment, error)
	DistributeAll(ctx context.Context) ([]models.Assignment, error)
}

// AllocationHandler exposes load-balanced assignment suggestions. Nothing is persisted.
type AllocationHandler struct {
	allocator allocatorService
}

// NewAllocationHandler builds a new handler.
func NewAllocationHandler(allocator allocatorService) *AllocationHandler {
	return &AllocationHandler{allocator: allocator}
}

// Assign godoc
// @Summary Suggest the least loaded mentor for a question
// @Tags Allocations
// @Produce json
// @Param id path string true "Question ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /allocations/questions/{id} [post]
func (h *AllocationHandler) Assign(c *gin.Context) {
	assignment, err := h.allocator.AssignQuestion(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment)
}

// Distribute godoc
// @Summary Suggest assignments for every pending question
// @Description Loads are read once per question, so one mentor may appear several times in a batch.
// @Tags Allocations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /allocations/distribute [post]
func (h *AllocationHandler) Distribute(c *gin.Context) {
	assignments, err := h.allocator.DistributeAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, map[string]interface{}{"count": len(assignments)})
}
