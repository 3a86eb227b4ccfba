package handlers

import (
	"net/http"

	"gopolls/services"

	"github.com/gin-gonic/gin"
)

// respondError maps a service error's category to an HTTP status. Errors
// without a category are store failures and surface as 500s.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if category, ok := services.CategoryOf(err); ok {
		switch category {
		case services.CategoryValidation:
			status = http.StatusBadRequest
		case services.CategoryAuthorization:
			status = http.StatusForbidden
		case services.CategoryState, services.CategoryConflict:
			status = http.StatusConflict
		case services.CategoryNotFound:
			status = http.StatusNotFound
		}
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
