package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Veronika2030/supperspot/internal/auth"
	"github.com/Veronika2030/supperspot/internal/domain"
	"github.com/Veronika2030/supperspot/internal/service/experience"
)

type ExperienceHandler struct {
	service experience.ExperienceUseCase
}

func NewExperienceHandler(service experience.ExperienceUseCase) *ExperienceHandler {
	return &ExperienceHandler{service: service}
}

// Register wires the experience routes. Browsing stays public; publishing
// and closing require a verified host identity.
func (h *ExperienceHandler) Register(router *gin.RouterGroup, authRequired gin.HandlerFunc) {
	router.GET("/", h.list)
	router.GET("/:id", h.get)
	router.POST("/", authRequired, h.create)
	router.POST("/:id/close", authRequired, h.close)
}

func (h *ExperienceHandler) list(c *gin.Context) {
	experiences, err := h.service.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, experiences)
}

func (h *ExperienceHandler) get(c *gin.Context) {
	exp, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, exp)
}

func (h *ExperienceHandler) create(c *gin.Context) {
	identity, ok := auth.FromContext(c)
	if !ok {
		writeError(c, domain.ErrUnauthenticated)
		return
	}
	if identity.Role != domain.RoleHost {
		writeError(c, domain.ErrForbidden)
		return
	}

	var input experience.CreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exp, err := h.service.Create(c.Request.Context(), identity.SubjectID, input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, exp)
}

func (h *ExperienceHandler) close(c *gin.Context) {
	identity, ok := auth.FromContext(c)
	if !ok {
		writeError(c, domain.ErrUnauthenticated)
		return
	}
	if identity.Role != domain.RoleHost {
		writeError(c, domain.ErrForbidden)
		return
	}

	if err := h.service.Close(c.Request.Context(), c.Param("id"), identity.SubjectID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": string(domain.ExperienceStatusClosed)})
}
