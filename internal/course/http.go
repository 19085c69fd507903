package course

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/maniredii/coursecms/internal/auth"
)

// RegisterRoutes mounts catalog endpoints. Reads are open to any
// authenticated caller; writes require admin privilege.
func RegisterRoutes(group *gin.RouterGroup, service *Service) {
	handler := &httpHandler{service: service}
	group.GET("/courses", handler.listCourses)
	group.GET("/courses/:courseID", handler.getCourse)

	admin := group.Group("/")
	admin.Use(auth.RequireAdmin())
	admin.POST("/courses", handler.createCourse)
	admin.PUT("/courses/:courseID", handler.updateCourse)
	admin.DELETE("/courses/:courseID", handler.deleteCourse)
}

type httpHandler struct {
	service *Service
}

type courseRequest struct {
	Title         string     `json:"title" binding:"required,max=200"`
	Slug          string     `json:"slug" binding:"required,max=200"`
	Description   string     `json:"description" binding:"max=5000"`
	Category      string     `json:"category" binding:"max=100"`
	Level         string     `json:"level" binding:"omitempty,oneof=beginner intermediate advanced"`
	PriceCents    int64      `json:"price_cents"`
	DurationWeeks int        `json:"duration_weeks"`
	CoverFileID   *uuid.UUID `json:"cover_file_id"`
	Published     bool       `json:"published"`
}

func (r courseRequest) toInput() CourseInput {
	return CourseInput{
		Title:         r.Title,
		Slug:          r.Slug,
		Description:   r.Description,
		Category:      r.Category,
		Level:         r.Level,
		PriceCents:    r.PriceCents,
		DurationWeeks: r.DurationWeeks,
		CoverFileID:   r.CoverFileID,
		Published:     r.Published,
	}
}

func (h *httpHandler) listCourses(c *gin.Context) {
	user, _ := auth.CurrentUser(c)

	q := ListQuery{
		Category: c.Query("category"),
		SortBy:   c.Query("sort"),
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		q.Limit = limit
	}
	if offset, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil {
		q.Offset = offset
	}

	courses, err := h.service.List(c.Request.Context(), q, user.IsAdmin())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list courses"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

func (h *httpHandler) getCourse(c *gin.Context) {
	user, _ := auth.CurrentUser(c)

	// The path segment doubles as ID or slug.
	param := c.Param("courseID")
	courseID, err := uuid.Parse(param)

	var stored Course
	if err == nil {
		stored, err = h.service.Get(c.Request.Context(), courseID, user.IsAdmin())
	} else {
		stored, err = h.service.GetBySlug(c.Request.Context(), param, user.IsAdmin())
	}
	if err != nil {
		respondCourseError(c, err)
		return
	}

	c.JSON(http.StatusOK, stored)
}

func (h *httpHandler) createCourse(c *gin.Context) {
	var req courseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stored, err := h.service.Create(c.Request.Context(), req.toInput())
	if err != nil {
		respondCourseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, stored)
}

func (h *httpHandler) updateCourse(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("courseID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}

	var req courseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stored, err := h.service.Update(c.Request.Context(), courseID, req.toInput())
	if err != nil {
		respondCourseError(c, err)
		return
	}

	c.JSON(http.StatusOK, stored)
}

func (h *httpHandler) deleteCourse(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("courseID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), courseID); err != nil {
		respondCourseError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func respondCourseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrCourseNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
	case errors.Is(err, ErrSlugAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "slug already exists"})
	case errors.Is(err, ErrInvalidCourse):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
