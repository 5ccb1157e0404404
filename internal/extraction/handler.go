package extraction

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"casemate-backend/internal/cases"
	"casemate-backend/internal/shared/server/middleware"
	"casemate-backend/internal/shared/server/respond"
)

// CaseGuard enforces participant access to the job's case.
type CaseGuard interface {
	Get(ctx context.Context, userID, caseID string) (cases.CaseFolder, error)
}

type Handler struct {
	Svc   *Service
	Cases CaseGuard
}

func NewHandler(svc *Service, guard CaseGuard) *Handler {
	return &Handler{Svc: svc, Cases: guard}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/extractions/:jobId", h.get)
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	jobID := c.Param("jobId")
	c.Set("extractionJobId", jobID)

	job, err := h.Svc.Get(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "extraction job not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load extraction job", nil)
		return
	}

	if _, err := h.Cases.Get(c.Request.Context(), userID, job.CaseID); err != nil {
		switch {
		case errors.Is(err, cases.ErrAccessDenied):
			respond.Error(c, http.StatusForbidden, "forbidden", "you do not have access to this job", nil)
		case errors.Is(err, cases.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "extraction job not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load extraction job", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, job)
}
