package cases

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"casemate-backend/internal/shared/server/middleware"
	"casemate-backend/internal/shared/server/respond"
	"casemate-backend/internal/users"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/cases", middleware.RequireRole(users.RoleLawyer), h.create)
	rg.GET("/cases", h.list)
	rg.GET("/cases/:caseId", h.get)
	rg.PUT("/cases/:caseId", middleware.RequireRole(users.RoleLawyer), h.update)
	rg.PATCH("/cases/:caseId", middleware.RequireRole(users.RoleLawyer), h.update)
	rg.DELETE("/cases/:caseId", middleware.RequireRole(users.RoleLawyer), h.remove)
	rg.POST("/cases/:caseId/notes", h.addNote)
}

func (h *Handler) create(c *gin.Context) {
	userID := strings.TrimSpace(middleware.UserIDFromContext(c))
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		return
	}

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	cf, err := h.Svc.Create(c.Request.Context(), userID, CreateInput{
		ClientID:        req.ClientID,
		Title:           req.Title,
		Description:     req.Description,
		CaseNumber:      req.CaseNumber,
		Status:          req.Status,
		Priority:        req.Priority,
		CourtName:       req.CourtName,
		JudgeName:       req.JudgeName,
		NextHearingDate: req.NextHearingDate,
	})
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}
	c.Set("caseId", cf.ID)
	respond.Created(c, cf)
}

func (h *Handler) list(c *gin.Context) {
	userID := strings.TrimSpace(middleware.UserIDFromContext(c))
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		return
	}

	items, err := h.Svc.List(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list cases", nil)
		return
	}
	if items == nil {
		items = []CaseFolder{}
	}
	respond.JSON(c, http.StatusOK, listResponse{Cases: items})
}

func (h *Handler) get(c *gin.Context) {
	userID := strings.TrimSpace(middleware.UserIDFromContext(c))
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		return
	}
	caseID := c.Param("caseId")
	c.Set("caseId", caseID)

	cf, err := h.Svc.Get(c.Request.Context(), userID, caseID)
	if err != nil {
		h.writeError(c, err, "failed to load case")
		return
	}
	respond.JSON(c, http.StatusOK, cf)
}

func (h *Handler) update(c *gin.Context) {
	userID := strings.TrimSpace(middleware.UserIDFromContext(c))
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		return
	}
	caseID := c.Param("caseId")
	c.Set("caseId", caseID)

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	cf, err := h.Svc.Update(c.Request.Context(), userID, caseID, UpdateInput{
		Title:           req.Title,
		Description:     req.Description,
		CaseNumber:      req.CaseNumber,
		Status:          req.Status,
		Priority:        req.Priority,
		CourtName:       req.CourtName,
		JudgeName:       req.JudgeName,
		NextHearingDate: req.NextHearingDate,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrAccessDenied) {
			h.writeError(c, err, "failed to update case")
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}
	respond.JSON(c, http.StatusOK, cf)
}

func (h *Handler) remove(c *gin.Context) {
	userID := strings.TrimSpace(middleware.UserIDFromContext(c))
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		return
	}
	caseID := c.Param("caseId")
	c.Set("caseId", caseID)

	if err := h.Svc.Delete(c.Request.Context(), userID, caseID); err != nil {
		h.writeError(c, err, "failed to delete case")
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) addNote(c *gin.Context) {
	userID := strings.TrimSpace(middleware.UserIDFromContext(c))
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		return
	}
	caseID := c.Param("caseId")
	c.Set("caseId", caseID)

	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "text is required", []map[string]string{
			{"field": "text", "issue": "required"},
		})
		return
	}

	cf, err := h.Svc.AddNote(c.Request.Context(), userID, caseID, req.Text)
	if err != nil {
		h.writeError(c, err, "failed to add note")
		return
	}
	respond.JSON(c, http.StatusOK, cf)
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "case not found", nil)
	case errors.Is(err, ErrAccessDenied):
		respond.Error(c, http.StatusForbidden, "forbidden", "you do not have access to this case", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
