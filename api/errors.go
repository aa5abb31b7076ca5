package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Veronika2030/supperspot/internal/domain"
)

// writeError translates domain errors into HTTP responses. Conflict-class
// errors (state machine violations, duplicate ratings, capacity shortfalls)
// all map to 409 so retrying clients can tell them apart from bad input.
func writeError(c *gin.Context, err error) {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error(), "field": vErr.Field})
		return
	}

	var capErr *domain.InsufficientCapacityError
	if errors.As(err, &capErr) {
		c.JSON(http.StatusConflict, gin.H{"error": capErr.Error(), "remaining": capErr.Remaining})
		return
	}

	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrAlreadyRated),
		errors.Is(err, domain.ErrNotEligible),
		errors.Is(err, domain.ErrTokenUsed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrBusy):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
