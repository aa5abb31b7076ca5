package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Veronika2030/supperspot/internal/auth"
	"github.com/Veronika2030/supperspot/internal/domain"
	"github.com/Veronika2030/supperspot/internal/service/rating"
)

type RatingHandler struct {
	service rating.RatingUseCase
}

type submitRatingRequest struct {
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

type aggregateResponse struct {
	ExperienceID string  `json:"experience_id"`
	Count        int64   `json:"count"`
	Average      float64 `json:"average"`
}

func NewRatingHandler(service rating.RatingUseCase) *RatingHandler {
	return &RatingHandler{service: service}
}

// Register wires the rating surface onto both resource groups: submissions
// hang off bookings, the aggregate read hangs off experiences.
func (h *RatingHandler) Register(bookings, experiences *gin.RouterGroup) {
	bookings.POST("/:id/rating", h.submit)
	experiences.GET("/:id/rating", h.average)
}

func (h *RatingHandler) submit(c *gin.Context) {
	identity, ok := auth.FromContext(c)
	if !ok {
		writeError(c, domain.ErrUnauthenticated)
		return
	}

	var req submitRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	agg, err := h.service.Submit(c.Request.Context(), rating.SubmitInput{
		BookingID: c.Param("id"),
		SubjectID: identity.SubjectID,
		Score:     req.Score,
		Comment:   req.Comment,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toAggregateResponse(agg))
}

func (h *RatingHandler) average(c *gin.Context) {
	agg, err := h.service.AverageFor(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAggregateResponse(agg))
}

func toAggregateResponse(agg *domain.AggregateRating) aggregateResponse {
	return aggregateResponse{
		ExperienceID: agg.ExperienceID,
		Count:        agg.Count,
		Average:      agg.Average(),
	}
}
