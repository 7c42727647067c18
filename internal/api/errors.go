package api

import (
	"errors"
	"net/http"

	"gupshup-gateway/internal/database"
	"gupshup-gateway/pkg/gupshup"

	"github.com/gin-gonic/gin"
)

// respondError maps library and store errors onto HTTP responses.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var apiErr *gupshup.APIError
	switch {
	case errors.Is(err, gupshup.ErrNotImplemented):
		c.JSON(http.StatusNotImplemented, gin.H{"error": err.Error()})
	case errors.Is(err, gupshup.ErrInvalidTemplate), errors.Is(err, gupshup.ErrInvalidDLREvent):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &apiErr):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":           apiErr.Message(),
			"provider_status": apiErr.StatusCode,
		})
	case database.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
