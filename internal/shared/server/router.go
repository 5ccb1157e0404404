package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	googleauth "casemate-backend/internal/auth"
	"casemate-backend/internal/cases"
	"casemate-backend/internal/extraction"
	"casemate-backend/internal/files"
	"casemate-backend/internal/metadata"
	"casemate-backend/internal/services/health"
	"casemate-backend/internal/shared/config"
	"casemate-backend/internal/shared/metrics"
	"casemate-backend/internal/shared/server/middleware"
	"casemate-backend/internal/shared/server/respond"
	"casemate-backend/internal/users"
)

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Config            config.Config
	Health            *health.Service
	UsersHandler      *users.Handler
	GoogleAuth        *googleauth.GoogleService
	CasesHandler      *cases.Handler
	FilesHandler      *files.Handler
	MetadataHandler   *metadata.Handler
	ExtractionHandler *extraction.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Config.Env),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, deps.Health.Status())
	})

	if deps.UsersHandler != nil {
		deps.UsersHandler.RegisterRoutes(api)
	}
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.CasesHandler != nil {
		deps.CasesHandler.RegisterRoutes(api)
	}
	if deps.FilesHandler != nil {
		deps.FilesHandler.RegisterRoutes(api)
	}
	if deps.MetadataHandler != nil {
		deps.MetadataHandler.RegisterRoutes(api)
	}
	if deps.ExtractionHandler != nil {
		deps.ExtractionHandler.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
