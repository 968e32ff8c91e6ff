package handler

import (
	"invoicing/internal/apperr"
	"invoicing/internal/logger"
	"invoicing/pkg/response"

	"github.com/gin-gonic/gin"
)

// respondError renders err with the status of its kind. Store errors are logged with
// their cause but only their public message reaches the client.
func respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= 500 {
		requestID, _ := c.Get("requestID")
		id, _ := requestID.(string)
		log := logger.WithRequestID(id)
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
	}
	c.JSON(status, response.Error(status, apperr.PublicMessage(err)))
}
