package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	googleauth "casemate-backend/internal/auth"
	"casemate-backend/internal/cases"
	"casemate-backend/internal/extraction"
	"casemate-backend/internal/files"
	"casemate-backend/internal/llm"
	gemini "casemate-backend/internal/llm/gemini"
	"casemate-backend/internal/metadata"
	"casemate-backend/internal/queue"
	"casemate-backend/internal/services/health"
	"casemate-backend/internal/shared/config"
	"casemate-backend/internal/shared/server"
	"casemate-backend/internal/shared/storage/db"
	"casemate-backend/internal/shared/storage/object"
	localstore "casemate-backend/internal/shared/storage/object/local"
	s3store "casemate-backend/internal/shared/storage/object/s3"
	"casemate-backend/internal/sweep"
	"casemate-backend/internal/users"
)

// App holds shared dependencies for the API server and the worker.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Queue  queue.Client

	UsersRepo      users.Repo
	CasesRepo      cases.Repo
	FilesRepo      files.Repo
	MetadataRepo   metadata.Repo
	ExtractionRepo extraction.Repo

	UsersService      *users.Service
	CasesService      *cases.Service
	FilesService      *files.Service
	ExtractionService *extraction.Service
	Sweeper           *sweep.Service

	UsersHandler      *users.Handler
	CasesHandler      *cases.Handler
	FilesHandler      *files.Handler
	MetadataHandler   *metadata.Handler
	ExtractionHandler *extraction.Handler
	GoogleAuth        *googleauth.GoogleService
}

// Build prepares shared dependencies for the API server and wires the
// router.
func Build(cfg config.Config) (*App, error) {
	return build(cfg, db.DefaultServerOptions())
}

// BuildWorker prepares shared dependencies for the queue worker, sized
// with a smaller connection pool than the API server.
func BuildWorker(cfg config.Config) (*App, error) {
	return build(cfg, db.DefaultWorkerOptions())
}

func build(cfg config.Config, dbOpts db.Options) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg, dbOpts)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:            app.Config,
		Health:            health.NewService(),
		UsersHandler:      app.UsersHandler,
		GoogleAuth:        app.GoogleAuth,
		CasesHandler:      app.CasesHandler,
		FilesHandler:      app.FilesHandler,
		MetadataHandler:   app.MetadataHandler,
		ExtractionHandler: app.ExtractionHandler,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config, dbOpts db.Options) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(dbOpts)
	sqlDB, err := db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.AWSRegion) == "" || strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires AWS_REGION and S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context) (queue.Client, error) {
	if strings.TrimSpace(os.Getenv("CM_SQS_QUEUE_URL")) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx)
}

func buildLLM(cfg config.Config) (llm.Client, error) {
	if cfg.LLMProvider == "gemini" && strings.TrimSpace(cfg.GeminiAPIKey) != "" {
		return gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	}
	if !isDevLike(cfg.Env) && cfg.LLMProvider == "gemini" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required in %s", cfg.Env)
	}
	return llm.PlaceholderClient{}, nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) error {
	var (
		userRepo users.Repo
		caseRepo cases.Repo
		fileRepo files.Repo
		metaRepo metadata.Repo
		jobRepo  extraction.Repo
	)

	if app.DB != nil {
		userRepo = &users.PGRepo{DB: app.DB}
		caseRepo = &cases.PGRepo{DB: app.DB}
		fileRepo = &files.PGRepo{DB: app.DB}
		metaRepo = &metadata.PGRepo{DB: app.DB}
		jobRepo = &extraction.PGRepo{DB: app.DB}
	} else {
		// Memory repos cascade through explicit purger hooks; Postgres
		// does the same work inside a transaction.
		memMeta := metadata.NewMemoryRepo()
		memFiles := files.NewMemoryRepo()
		memFiles.Metadata = memMeta
		memCases := cases.NewMemoryRepo()
		memCases.Purger = memFiles

		userRepo = users.NewMemoryRepo()
		caseRepo = memCases
		fileRepo = memFiles
		metaRepo = memMeta
		jobRepo = extraction.NewMemoryRepo()
	}

	llmClient, err := buildLLM(app.Config)
	if err != nil {
		return err
	}

	userSvc := users.NewService(userRepo)
	caseSvc := cases.NewService(caseRepo, app.Store)

	linker := metadata.NewLinker(metaRepo, fileRepo, caseRepo)

	extractionSvc := &extraction.Service{
		Repo:   jobRepo,
		Files:  fileRepo,
		Store:  app.Store,
		LLM:    llmClient,
		Linker: linker,
	}
	if app.Queue != nil {
		extractionSvc.Queue = queue.JobPusher{Client: app.Queue}
	}

	fileSvc := files.NewService(fileRepo, app.Store, caseSvc, extractionSvc)

	app.UsersRepo = userRepo
	app.CasesRepo = caseRepo
	app.FilesRepo = fileRepo
	app.MetadataRepo = metaRepo
	app.ExtractionRepo = jobRepo

	app.UsersService = userSvc
	app.CasesService = caseSvc
	app.FilesService = fileSvc
	app.ExtractionService = extractionSvc
	app.Sweeper = sweep.NewService(app.Store, fileRepo, app.Config.SweepInterval)

	app.UsersHandler = users.NewHandler(userSvc)
	app.CasesHandler = cases.NewHandler(caseSvc)
	app.FilesHandler = files.NewHandler(fileSvc)
	app.MetadataHandler = metadata.NewHandler(metaRepo, fileSvc)
	app.ExtractionHandler = extraction.NewHandler(extractionSvc, caseSvc)
	app.GoogleAuth = googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		userRepo,
	)

	return nil
}
