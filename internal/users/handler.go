package users

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"casemate-backend/internal/shared/server/middleware"
	"casemate-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/signup", h.signup)
	rg.POST("/auth/login", h.login)
	rg.GET("/me", h.me)
	rg.POST("/links", middleware.RequireRole(RoleLawyer), h.linkClient)
	rg.GET("/links", h.listLinked)
}

type signupRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Role         string `json:"role"`
	BarCouncilID string `json:"barCouncilId"`
	MobileNumber string `json:"mobileNumber"`
}

func (h *Handler) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	result, err := h.Svc.Signup(c.Request.Context(), SignupInput{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		Role:         req.Role,
		BarCouncilID: req.BarCouncilID,
		MobileNumber: req.MobileNumber,
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			respond.Error(c, http.StatusConflict, "email_taken", "an account with this email already exists", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}
	respond.Created(c, result)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	result, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "invalid email or password", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "login failed", nil)
		return
	}
	respond.JSON(c, http.StatusOK, result)
}

func (h *Handler) me(c *gin.Context) {
	userID := strings.TrimSpace(middleware.UserIDFromContext(c))
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		return
	}

	user, err := h.Svc.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "user not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load user", nil)
		return
	}
	respond.JSON(c, http.StatusOK, user)
}

type linkRequest struct {
	ClientEmail string `json:"clientEmail"`
}

func (h *Handler) linkClient(c *gin.Context) {
	lawyerID := strings.TrimSpace(middleware.UserIDFromContext(c))
	if lawyerID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		return
	}

	var req linkRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.ClientEmail) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "clientEmail is required", []map[string]string{
			{"field": "clientEmail", "issue": "required"},
		})
		return
	}

	client, err := h.Svc.LinkClient(c.Request.Context(), lawyerID, req.ClientEmail)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "no client with this email", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}
	respond.JSON(c, http.StatusOK, client)
}

func (h *Handler) listLinked(c *gin.Context) {
	userID := strings.TrimSpace(middleware.UserIDFromContext(c))
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		return
	}
	role := middleware.UserRoleFromContext(c)

	linked, err := h.Svc.ListLinked(c.Request.Context(), userID, role)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list linked users", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"users": linked})
}
