package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ascend-api/internal/models"
	appErrors "github.com/noah-isme/ascend-api/pkg/errors"
	"github.com/noah-isme/ascend-api/pkg/middleware/requestid"
)

// Envelope is the body of every API response.
type Envelope struct {
	Data       interface{}            `json:"data,omitempty"`
	Error      *appErrors.Error       `json:"error,omitempty"`
	Pagination *models.Pagination     `json:"pagination,omitempty"`
	Meta       map[string]interface{} `json:"meta,omitempty"`
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}

func mergeMeta(meta ...map[string]interface{}) map[string]interface{} {
	var out map[string]interface{}
	for _, m := range meta {
		if len(m) == 0 {
			continue
		}
		if out == nil {
			out = make(map[string]interface{}, len(m))
		}
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// JSON sends a success response. Multiple meta maps are merged, later keys win.
func JSON(c *gin.Context, status int, data interface{}, meta ...map[string]interface{}) {
	noStore(c)
	c.JSON(status, Envelope{Data: data, Meta: mergeMeta(meta...)})
}

// Paginated sends a page of a list together with its pagination block.
func Paginated(c *gin.Context, data interface{}, pagination *models.Pagination) {
	noStore(c)
	c.JSON(http.StatusOK, Envelope{Data: data, Pagination: pagination})
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// Accepted responds with HTTP 202 for work handed to a background worker.
func Accepted(c *gin.Context, data interface{}) {
	JSON(c, http.StatusAccepted, data)
}

// Error converts err to the typed form and echoes the request id so a failed
// call can be found in the logs.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	noStore(c)
	env := Envelope{Error: appErr}
	if id := requestid.Value(c); id != "" {
		env.Meta = map[string]interface{}{"request_id": id}
	}
	c.JSON(appErr.Status, env)
}
