package metadata

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"casemate-backend/internal/cases"
	"casemate-backend/internal/files"
	"casemate-backend/internal/shared/server/middleware"
	"casemate-backend/internal/shared/server/respond"
)

// Handler serves persisted extraction results. Access control rides on the
// files service so metadata visibility matches file visibility.
type Handler struct {
	Repo  Repo
	Files *files.Service
}

func NewHandler(repo Repo, fileSvc *files.Service) *Handler {
	return &Handler{Repo: repo, Files: fileSvc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/cases/:caseId/files/:fileId/metadata", h.get)
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	caseID := c.Param("caseId")
	fileID := c.Param("fileId")
	c.Set("caseId", caseID)
	c.Set("fileId", fileID)

	if _, err := h.Files.Get(c.Request.Context(), userID, caseID, fileID); err != nil {
		switch {
		case errors.Is(err, cases.ErrNotFound), errors.Is(err, files.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "file not found", nil)
		case errors.Is(err, cases.ErrAccessDenied):
			respond.Error(c, http.StatusForbidden, "forbidden", "you do not have access to this file", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load file", nil)
		}
		return
	}

	rec, err := h.Repo.GetByFile(c.Request.Context(), fileID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "no metadata for this file", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load metadata", nil)
		return
	}
	respond.JSON(c, http.StatusOK, rec)
}
