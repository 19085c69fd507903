package file

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/maniredii/coursecms/internal/auth"
	"github.com/maniredii/coursecms/internal/logger"
	"go.uber.org/zap"
)

// RegisterRoutes mounts authenticated file operations under the provided group.
func RegisterRoutes(group *gin.RouterGroup, manager *Manager, gateway *Gateway) {
	handler := &httpHandler{manager: manager, gateway: gateway}
	group.POST("/files", handler.uploadFile)
	group.GET("/files", handler.listFiles)
	group.GET("/files/:fileID", handler.getFile)
	group.GET("/files/:fileID/view", handler.viewFile)
	group.GET("/files/:fileID/download", handler.downloadFile)
	group.PATCH("/files/:fileID", handler.updateFile)
	group.DELETE("/files/:fileID", handler.deleteFile)
	group.POST("/files/:fileID/public-link", handler.grantPublicLink)
}

// RegisterPublicRoutes mounts anonymous reads addressed by storage key.
func RegisterPublicRoutes(group *gin.RouterGroup, gateway *Gateway) {
	handler := &httpHandler{gateway: gateway}
	group.GET("/files/:storageKey/view", handler.viewPublicFile)
	group.GET("/files/:storageKey/download", handler.downloadPublicFile)
}

type httpHandler struct {
	manager *Manager
	gateway *Gateway
}

func (h *httpHandler) uploadFile(c *gin.Context) {
	ownerID, _, ok := auth.RequireUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field is required"})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open upload"})
		return
	}
	defer src.Close()

	input := StoreInput{
		Reader:       src,
		OriginalName: fileHeader.Filename,
		DeclaredMIME: fileHeader.Header.Get("Content-Type"),
		DeclaredSize: fileHeader.Size,
		OwnerID:      ownerID,
		Description:  c.PostForm("description"),
	}
	if tags := c.PostForm("tags"); tags != "" {
		input.Tags = strings.Split(tags, ",")
	}
	if raw, present := c.GetPostForm("is_public"); present {
		isPublic := raw == "true" || raw == "1"
		input.IsPublic = &isPublic
	}

	stored, err := h.manager.Store(c.Request.Context(), input)
	if err != nil {
		respondFileError(c, err)
		return
	}

	c.JSON(http.StatusCreated, stored)
}

func (h *httpHandler) listFiles(c *gin.Context) {
	requester, ok := requireRequester(c)
	if !ok {
		return
	}

	filter := ListFilter{Category: Category(c.Query("category"))}
	if owner := c.Query("owner_id"); owner != "" {
		ownerID, err := uuid.Parse(owner)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid owner id"})
			return
		}
		filter.OwnerID = ownerID
	}

	files, err := h.gateway.List(c.Request.Context(), requester, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list files"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"files": files})
}

func (h *httpHandler) getFile(c *gin.Context) {
	requester, ok := requireRequester(c)
	if !ok {
		return
	}
	fileID, err := uuid.Parse(c.Param("fileID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file id"})
		return
	}

	meta, err := h.gateway.Describe(c.Request.Context(), fileID, requester)
	if err != nil {
		respondFileError(c, err)
		return
	}

	c.JSON(http.StatusOK, meta)
}

func (h *httpHandler) viewFile(c *gin.Context) {
	h.streamByID(c, false)
}

func (h *httpHandler) downloadFile(c *gin.Context) {
	h.streamByID(c, true)
}

func (h *httpHandler) streamByID(c *gin.Context, asAttachment bool) {
	requester, ok := requireRequester(c)
	if !ok {
		return
	}
	fileID, err := uuid.Parse(c.Param("fileID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file id"})
		return
	}

	meta, reader, err := h.gateway.AuthorizeRead(c.Request.Context(), fileID, requester)
	if err != nil {
		respondFileError(c, err)
		return
	}
	defer reader.Close()

	streamStoredFile(c, meta, reader, asAttachment)
}

func (h *httpHandler) viewPublicFile(c *gin.Context) {
	h.streamByKey(c, false)
}

func (h *httpHandler) downloadPublicFile(c *gin.Context) {
	h.streamByKey(c, true)
}

func (h *httpHandler) streamByKey(c *gin.Context, asAttachment bool) {
	requester := currentRequester(c)

	meta, reader, err := h.gateway.AuthorizeReadByKey(c.Request.Context(), c.Param("storageKey"), requester)
	if err != nil {
		respondFileError(c, err)
		return
	}
	defer reader.Close()

	streamStoredFile(c, meta, reader, asAttachment)
}

func (h *httpHandler) updateFile(c *gin.Context) {
	requester, ok := requireRequester(c)
	if !ok {
		return
	}
	fileID, err := uuid.Parse(c.Param("fileID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file id"})
		return
	}

	var patch Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meta, err := h.gateway.AuthorizeMutate(c.Request.Context(), fileID, requester, patch)
	if err != nil {
		respondFileError(c, err)
		return
	}

	c.JSON(http.StatusOK, meta)
}

func (h *httpHandler) deleteFile(c *gin.Context) {
	requester, ok := requireRequester(c)
	if !ok {
		return
	}
	fileID, err := uuid.Parse(c.Param("fileID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file id"})
		return
	}

	if err := h.gateway.AuthorizeDelete(c.Request.Context(), fileID, requester); err != nil {
		respondFileError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *httpHandler) grantPublicLink(c *gin.Context) {
	requester, ok := requireRequester(c)
	if !ok {
		return
	}
	fileID, err := uuid.Parse(c.Param("fileID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file id"})
		return
	}

	link, err := h.gateway.GrantPublicLink(c.Request.Context(), fileID, requester)
	if err != nil {
		respondFileError(c, err)
		return
	}

	c.JSON(http.StatusOK, link)
}

func streamStoredFile(c *gin.Context, meta StoredFile, reader io.Reader, asAttachment bool) {
	disposition := "inline"
	if asAttachment {
		disposition = "attachment"
	}

	c.Header("Content-Type", meta.MimeType)
	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, headerSafeFilename(meta.OriginalName)))
	c.Header("Content-Length", fmt.Sprintf("%d", meta.SizeBytes))

	// Headers are flushed once copying starts, so a mid-stream failure
	// cannot change the response status; log it for the operator instead.
	if written, err := io.Copy(c.Writer, reader); err != nil {
		logger.FromContext(c).Error("file stream aborted",
			zap.String("storage_key", meta.StorageKey),
			zap.Int64("written", written),
			zap.Int64("size", meta.SizeBytes),
			zap.Error(err),
		)
	}
}

// headerSafeFilename strips characters that could break the
// Content-Disposition header. The original name is untrusted input.
func headerSafeFilename(name string) string {
	replacer := strings.NewReplacer("\"", "", "\r", "", "\n", "", ";", "")
	safe := strings.TrimSpace(replacer.Replace(name))
	if safe == "" {
		return "download"
	}
	return safe
}

func requireRequester(c *gin.Context) (Requester, bool) {
	userID, user, ok := auth.RequireUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return Requester{}, false
	}
	return Requester{ID: userID, IsAdmin: user.IsAdmin()}, true
}

// currentRequester tolerates anonymous callers; used on public routes.
func currentRequester(c *gin.Context) Requester {
	userID, user, ok := auth.RequireUser(c)
	if !ok {
		return Requester{}
	}
	return Requester{ID: userID, IsAdmin: user.IsAdmin()}
}

func respondFileError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrUnsupportedMediaType):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "unsupported media type"})
	case errors.Is(err, ErrPayloadTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "payload too large"})
	case errors.Is(err, ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrFileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, ErrStorageWriteFailed), errors.Is(err, ErrMetadataPersistenceFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "storage unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
