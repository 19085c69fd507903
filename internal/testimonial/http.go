package testimonial

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/maniredii/coursecms/internal/auth"
)

// RegisterRoutes mounts testimonial endpoints. Reads are open to any
// authenticated caller; writes require admin privilege.
func RegisterRoutes(group *gin.RouterGroup, service *Service) {
	handler := &httpHandler{service: service}
	group.GET("/testimonials", handler.listTestimonials)
	group.GET("/testimonials/:testimonialID", handler.getTestimonial)

	admin := group.Group("/")
	admin.Use(auth.RequireAdmin())
	admin.POST("/testimonials", handler.createTestimonial)
	admin.PUT("/testimonials/:testimonialID", handler.updateTestimonial)
	admin.DELETE("/testimonials/:testimonialID", handler.deleteTestimonial)
}

type httpHandler struct {
	service *Service
}

type testimonialRequest struct {
	AuthorName   string     `json:"author_name" binding:"required,max=128"`
	AuthorRole   string     `json:"author_role" binding:"max=128"`
	Quote        string     `json:"quote" binding:"required,max=2000"`
	Rating       int        `json:"rating" binding:"required,min=1,max=5"`
	AvatarFileID *uuid.UUID `json:"avatar_file_id"`
	Approved     bool       `json:"approved"`
}

func (r testimonialRequest) toInput() Input {
	return Input{
		AuthorName:   r.AuthorName,
		AuthorRole:   r.AuthorRole,
		Quote:        r.Quote,
		Rating:       r.Rating,
		AvatarFileID: r.AvatarFileID,
		Approved:     r.Approved,
	}
}

func (h *httpHandler) listTestimonials(c *gin.Context) {
	user, _ := auth.CurrentUser(c)

	list, err := h.service.List(c.Request.Context(), user.IsAdmin())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list testimonials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"testimonials": list})
}

func (h *httpHandler) getTestimonial(c *gin.Context) {
	user, _ := auth.CurrentUser(c)

	id, err := uuid.Parse(c.Param("testimonialID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid testimonial id"})
		return
	}

	stored, err := h.service.Get(c.Request.Context(), id, user.IsAdmin())
	if err != nil {
		respondTestimonialError(c, err)
		return
	}

	c.JSON(http.StatusOK, stored)
}

func (h *httpHandler) createTestimonial(c *gin.Context) {
	var req testimonialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stored, err := h.service.Create(c.Request.Context(), req.toInput())
	if err != nil {
		respondTestimonialError(c, err)
		return
	}

	c.JSON(http.StatusCreated, stored)
}

func (h *httpHandler) updateTestimonial(c *gin.Context) {
	id, err := uuid.Parse(c.Param("testimonialID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid testimonial id"})
		return
	}

	var req testimonialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stored, err := h.service.Update(c.Request.Context(), id, req.toInput())
	if err != nil {
		respondTestimonialError(c, err)
		return
	}

	c.JSON(http.StatusOK, stored)
}

func (h *httpHandler) deleteTestimonial(c *gin.Context) {
	id, err := uuid.Parse(c.Param("testimonialID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid testimonial id"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondTestimonialError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func respondTestimonialError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrTestimonialNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "testimonial not found"})
	case errors.Is(err, ErrInvalidTestimonial):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
