package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Veronika2030/supperspot/internal/auth"
	"github.com/Veronika2030/supperspot/internal/domain"
	"github.com/Veronika2030/supperspot/internal/service/reservation"
)

type ReservationHandler struct {
	service reservation.ReservationUseCase
}

type createReservationRequest struct {
	ExperienceID  string `json:"experience_id"`
	People        int    `json:"people"`
	TermsAccepted bool   `json:"terms_accepted"`
	PaymentMethod string `json:"payment_method"`
	ContactEmail  string `json:"contact_email"`
}

type checkInRequest struct {
	Token string `json:"token"`
}

type bookingResponse struct {
	ID            string   `json:"id"`
	ExperienceID  string   `json:"experience_id"`
	People        int      `json:"people"`
	Status        string   `json:"status"`
	BookingCode   string   `json:"booking_code"`
	CheckInTokens []string `json:"check_in_tokens,omitempty"`
	ContactEmail  string   `json:"contact_email"`
	CreatedAt     string   `json:"created_at,omitempty"`
}

func NewReservationHandler(service reservation.ReservationUseCase) *ReservationHandler {
	return &ReservationHandler{service: service}
}

func (h *ReservationHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.DELETE("/:id", h.cancel)
	router.POST("/:id/checkin", h.checkIn)
}

func (h *ReservationHandler) create(c *gin.Context) {
	identity, ok := auth.FromContext(c)
	if !ok {
		writeError(c, domain.ErrUnauthenticated)
		return
	}

	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.service.Reserve(c.Request.Context(), reservation.ReserveInput{
		ExperienceID:  req.ExperienceID,
		SubjectID:     identity.SubjectID,
		People:        req.People,
		TermsAccepted: req.TermsAccepted,
		PaymentMethod: req.PaymentMethod,
		ContactEmail:  req.ContactEmail,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(booking, true))
}

func (h *ReservationHandler) cancel(c *gin.Context) {
	identity, ok := auth.FromContext(c)
	if !ok {
		writeError(c, domain.ErrUnauthenticated)
		return
	}

	booking, err := h.service.Cancel(c.Request.Context(), c.Param("id"), identity)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toBookingResponse(booking, false))
}

func (h *ReservationHandler) checkIn(c *gin.Context) {
	if _, ok := auth.FromContext(c); !ok {
		writeError(c, domain.ErrUnauthenticated)
		return
	}

	var req checkInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	remaining, err := h.service.CheckIn(c.Request.Context(), c.Param("id"), req.Token)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"remaining_check_ins": remaining})
}

// toBookingResponse renders a booking; tokens are only included on creation,
// they never come back on later reads.
func toBookingResponse(booking *domain.Booking, includeTokens bool) bookingResponse {
	resp := bookingResponse{
		ID:           booking.ID,
		ExperienceID: booking.ExperienceID,
		People:       booking.People,
		Status:       string(booking.Status),
		BookingCode:  booking.BookingCode,
		ContactEmail: booking.ContactEmail,
	}
	if !booking.CreatedAt.IsZero() {
		resp.CreatedAt = booking.CreatedAt.Format(time.RFC3339)
	}
	if includeTokens {
		for _, token := range booking.CheckInTokens {
			resp.CheckInTokens = append(resp.CheckInTokens, token.Token)
		}
	}
	return resp
}
