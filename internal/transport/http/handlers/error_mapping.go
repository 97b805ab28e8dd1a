package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorCase maps a sentinel error to an HTTP status code and response message.
type ErrorCase struct {
	Err     error
	Status  int
	Message string
}

// ErrorMap resolves service-layer sentinel errors to HTTP responses so each
// handler declares its mapping once instead of repeating switch blocks.
type ErrorMap []ErrorCase

// Respond writes the mapped response for err, falling back to the provided
// status and message when no case matches.
func (m ErrorMap) Respond(c *gin.Context, err error, fallbackStatus int, fallbackMessage string) {
	if err == nil {
		c.Status(http.StatusOK)
		return
	}

	for _, cs := range m {
		if cs.Err == nil {
			continue
		}
		if errors.Is(err, cs.Err) {
			c.JSON(cs.Status, NewErrorResponse(c, cs.Message))
			return
		}
	}

	c.JSON(fallbackStatus, NewErrorResponse(c, fallbackMessage))
}
