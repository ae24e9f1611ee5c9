package handlers

import (
	"log"

	"github.com/gin-gonic/gin"

	"idea-market/internal/apperr"
)

// respondError maps a service error to its HTTP status class and a stable
// error payload. Internals are logged, never echoed.
func respondError(c *gin.Context, err error) {
	appErr := apperr.From(err)
	if appErr.Kind == apperr.KindInternal {
		log.Printf("Internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}

	c.JSON(appErr.HTTPStatus(), gin.H{
		"error": gin.H{
			"kind":    appErr.Kind,
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}
