package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"medisafe-backend/internal/account"
	googleauth "medisafe-backend/internal/auth"
	"medisafe-backend/internal/documents"
	"medisafe-backend/internal/flows"
	"medisafe-backend/internal/insights"
	"medisafe-backend/internal/intake"
	"medisafe-backend/internal/llm"
	openai "medisafe-backend/internal/llm/openai"
	"medisafe-backend/internal/reminders"
	"medisafe-backend/internal/services/health"
	"medisafe-backend/internal/shared/config"
	"medisafe-backend/internal/shared/server"
	"medisafe-backend/internal/shared/storage/db"
	"medisafe-backend/internal/shared/storage/object"
	localstore "medisafe-backend/internal/shared/storage/object/local"
	s3store "medisafe-backend/internal/shared/storage/object/s3"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore

	DocumentsRepo    documents.Repo
	FlowsService     *flows.Service
	DocumentsService *documents.Service
	IntakeService    *intake.Service
	InsightsService  *insights.Service
	RemindersStore   *reminders.Store
	AccountService   *account.Service
	HealthService    *health.Service

	IntakeHandler    *intake.Handler
	DocumentsHandler *documents.Handler
	InsightsHandler  *insights.Handler
	RemindersHandler *reminders.Handler
	AccountHandler   *account.Handler
	GoogleAuth       *googleauth.GoogleService
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:           app.Config,
		Health:           app.HealthService,
		IntakeHandler:    app.IntakeHandler,
		DocumentHandler:  app.DocumentsHandler,
		InsightsHandler:  app.InsightsHandler,
		RemindersHandler: app.RemindersHandler,
		AccountHandler:   app.AccountHandler,
		GoogleAuth:       app.GoogleAuth,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: migrations failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir, cfg.PublicBaseURL), nil
	}
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
	var docRepo documents.Repo
	if app.DB != nil {
		docRepo = &documents.PGRepo{DB: app.DB}
	} else {
		docRepo = documents.NewMemoryRepo()
	}

	llmClient := llm.Completer(llm.PlaceholderClient{})
	if app.Config.LLMProvider == "openai" {
		openaiClient, err := openai.NewClient(os.Getenv("OPENAI_API_KEY"), app.Config.LLMModel)
		if err != nil {
			if !isDevLike(app.Config.Env) {
				return err
			}
			log.Printf("bootstrap: openai client unavailable; ai endpoints disabled: %v", err)
		} else {
			llmClient = openaiClient
		}
	}

	remStore, err := reminders.NewStore(app.Config.RemindersFile)
	if err != nil {
		return err
	}

	flowsSvc := flows.NewService(llmClient)
	docSvc := documents.NewService(app.Store, docRepo)
	intakeSvc := intake.NewService(flowsSvc)
	insightsSvc := insights.NewService(flowsSvc, docSvc)
	accountSvc := account.NewService(docSvc, remStore)

	app.DocumentsRepo = docRepo
	app.FlowsService = flowsSvc
	app.DocumentsService = docSvc
	app.IntakeService = intakeSvc
	app.InsightsService = insightsSvc
	app.RemindersStore = remStore
	app.AccountService = accountSvc
	app.HealthService = health.NewService(app.DB, app.Config.ObjectStoreType, app.Config.LLMProvider)

	app.IntakeHandler = intake.NewHandler(intakeSvc, docSvc)
	app.DocumentsHandler = documents.NewHandler(docSvc)
	app.InsightsHandler = insights.NewHandler(insightsSvc)
	app.RemindersHandler = reminders.NewHandler(remStore)
	app.AccountHandler = account.NewHandler(accountSvc)
	app.GoogleAuth = googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
	)

	return nil
}
