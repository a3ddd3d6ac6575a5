package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Demonism0/blog-api/internal/service"
)

const malformedBody = "Malformed request body"

type messageResponse struct {
	Message string `json:"message"`
}

type fieldsResponse struct {
	Fields map[string]any `json:"fields"`
	Errors []string       `json:"errors"`
}

// notFoundBody renders a 404. Each route has its own body shape.
type notFoundBody func() any

func postNotFound() any {
	return fieldsResponse{Fields: map[string]any{}, Errors: []string{"Post not found"}}
}

func bareNotFound(msg string) notFoundBody {
	return func() any {
		return struct {
			Errors []string `json:"errors"`
		}{[]string{msg}}
	}
}

func loginNotFound() any {
	return messageResponse{Message: "Not found"}
}

func (h *handler) badRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, fieldsResponse{Fields: map[string]any{}, Errors: []string{malformedBody}})
}

// fail writes the response for a service error.
func (h *handler) fail(c *gin.Context, err error, notFound notFoundBody) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, fieldsResponse{Fields: verr.Fields, Errors: verr.Errors})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, messageResponse{Message: "Forbidden"})
	case errors.Is(err, service.ErrInconsistent):
		h.logger.Error("inconsistent state", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, messageResponse{Message: "Inconsistent state"})
	case errors.Is(err, service.ErrStorageUnavailable):
		h.logger.Error("storage unavailable", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusServiceUnavailable, messageResponse{Message: "Storage unavailable"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, notFound())
	default:
		h.logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, messageResponse{Message: "Internal server error"})
	}
}
