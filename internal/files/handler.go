package files

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"casemate-backend/internal/cases"
	"casemate-backend/internal/shared/server/middleware"
	"casemate-backend/internal/shared/server/respond"
)

const maxUploadSize = 10 << 20 // 10MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches file routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/files/recent", h.recent)
	rg.POST("/cases/:caseId/files", h.upload)
	rg.GET("/cases/:caseId/files", h.list)
	rg.GET("/cases/:caseId/files/:fileId", h.get)
	rg.GET("/cases/:caseId/files/:fileId/download", h.download)
	rg.DELETE("/cases/:caseId/files/:fileId", h.remove)
	rg.PATCH("/cases/:caseId/files/:fileId/share", h.setShared)
	rg.POST("/cases/:caseId/files/:fileId/comments", h.addComment)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	caseID := c.Param("caseId")
	c.Set("caseId", caseID)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}

	declaredType := fileHeader.Header.Get("Content-Type")
	fe, jobID, err := h.Svc.Upload(c.Request.Context(), userID, caseID, fileHeader.Filename, declaredType, data)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotPDF):
			respond.Error(c, http.StatusBadRequest, "validation_error", ErrNotPDF.Error(), nil)
		case errors.Is(err, cases.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "case not found", nil)
		case errors.Is(err, cases.ErrAccessDenied):
			respond.Error(c, http.StatusForbidden, "forbidden", "you do not have access to this case", nil)
		case strings.Contains(err.Error(), "empty file"):
			respond.Error(c, http.StatusBadRequest, "validation_error", "empty file", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to upload file", nil)
		}
		return
	}
	c.Set("fileId", fe.ID)

	respond.Created(c, uploadResponse{File: fe, ExtractionJobID: jobID})
}

func (h *Handler) recent(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			respond.Error(c, http.StatusBadRequest, "validation_error", "limit must be a positive integer", nil)
			return
		}
		limit = v
	}

	items, err := h.Svc.Recent(c.Request.Context(), userID, limit)
	if err != nil {
		h.writeError(c, err, "failed to list recent files")
		return
	}
	respond.JSON(c, http.StatusOK, recentResponse{Files: items})
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	caseID := c.Param("caseId")
	c.Set("caseId", caseID)

	items, err := h.Svc.List(c.Request.Context(), userID, caseID)
	if err != nil {
		h.writeError(c, err, "failed to list files")
		return
	}
	if items == nil {
		items = []FileEntry{}
	}
	respond.JSON(c, http.StatusOK, listResponse{Files: items})
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	caseID := c.Param("caseId")
	fileID := c.Param("fileId")
	c.Set("caseId", caseID)
	c.Set("fileId", fileID)

	fe, err := h.Svc.Get(c.Request.Context(), userID, caseID, fileID)
	if err != nil {
		h.writeError(c, err, "failed to load file")
		return
	}
	respond.JSON(c, http.StatusOK, fe)
}

func (h *Handler) download(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	caseID := c.Param("caseId")
	fileID := c.Param("fileId")
	c.Set("caseId", caseID)
	c.Set("fileId", fileID)

	fe, data, err := h.Svc.Download(c.Request.Context(), userID, caseID, fileID)
	if err != nil {
		h.writeError(c, err, "failed to download file")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fe.OriginalName))
	c.Data(http.StatusOK, fe.ContentType, data)
}

func (h *Handler) remove(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	caseID := c.Param("caseId")
	fileID := c.Param("fileId")
	c.Set("caseId", caseID)
	c.Set("fileId", fileID)

	if err := h.Svc.Delete(c.Request.Context(), userID, caseID, fileID); err != nil {
		h.writeError(c, err, "failed to delete file")
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) setShared(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	caseID := c.Param("caseId")
	fileID := c.Param("fileId")
	c.Set("caseId", caseID)
	c.Set("fileId", fileID)

	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	fe, err := h.Svc.SetShared(c.Request.Context(), userID, caseID, fileID, req.Shared)
	if err != nil {
		h.writeError(c, err, "failed to update sharing")
		return
	}
	respond.JSON(c, http.StatusOK, fe)
}

func (h *Handler) addComment(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	caseID := c.Param("caseId")
	fileID := c.Param("fileId")
	c.Set("caseId", caseID)
	c.Set("fileId", fileID)

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "text is required", []map[string]string{
			{"field": "text", "issue": "required"},
		})
		return
	}

	fe, err := h.Svc.AddComment(c.Request.Context(), userID, caseID, fileID, req.Text)
	if err != nil {
		h.writeError(c, err, "failed to add comment")
		return
	}
	respond.JSON(c, http.StatusOK, fe)
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, cases.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "case not found", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "file not found", nil)
	case errors.Is(err, cases.ErrAccessDenied):
		respond.Error(c, http.StatusForbidden, "forbidden", "you do not have access to this file", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
