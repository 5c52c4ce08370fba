package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/portalescolar/diplomas/internal/app/controllers"
	appMigrations "github.com/portalescolar/diplomas/internal/app/migrations"
	appRepos "github.com/portalescolar/diplomas/internal/app/repositories"
	appRoutes "github.com/portalescolar/diplomas/internal/app/routes"
	appServices "github.com/portalescolar/diplomas/internal/app/services"
	"github.com/portalescolar/diplomas/internal/config"
	"github.com/portalescolar/diplomas/internal/db"
	appMiddleware "github.com/portalescolar/diplomas/internal/middleware"
	"github.com/portalescolar/diplomas/internal/pkg/logger"
	"github.com/portalescolar/diplomas/internal/pkg/pdf"
	"github.com/portalescolar/diplomas/internal/pkg/storage"
	"github.com/portalescolar/diplomas/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	GenerationService      appServices.GenerationService
	VerificationService    appServices.VerificationService
	StatusService          appServices.StatusService
	AuditService           appServices.AuditService
	SyncService            appServices.SyncService
	VerificationController *appControllers.VerificationController
	AdminController        *appControllers.AdminController
	AdminAuth              *appMiddleware.AdminAuthMiddleware
	Repos                  *appRepos.Repositories
	Publisher              storage.Publisher
	Logger                 zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := config.GetEnv("CONFIG_PATH", filepath.Join("configs", "config.yaml"))
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		dbPool.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.CreateDefaultData(context.Background(), dbPool, lgr); err != nil {
		// Seed data is convenience, not a startup requirement
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return dbPool, nil
}

// BuildDependencies initializes repositories, storage backends, services and
// controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)

	publisher, remote, err := setupStorage(cfg, lgr)
	if err != nil {
		return nil, err
	}
	deps.Publisher = publisher

	fetcher := storage.NewFetcher(cfg.Storage.OutputDir, nil)

	templates := pdf.NewTemplateReader()
	renderer := pdf.NewOverlayRenderer(pdf.DefaultLayout())
	merger := pdf.NewMerger()

	deps.GenerationService = appServices.NewGenerationService(
		deps.Repos.DiplomaRepository,
		deps.Repos.StudentRepository,
		templates,
		renderer,
		merger,
		publisher,
		cfg.Diploma,
		lgr,
	)
	deps.VerificationService = appServices.NewVerificationService(
		deps.Repos.DiplomaRepository,
		deps.Repos.StudentRepository,
		lgr,
	)
	deps.StatusService = appServices.NewStatusService(deps.Repos.DiplomaRepository, lgr)
	deps.AuditService = appServices.NewAuditService(deps.Repos.DiplomaRepository, fetcher, lgr)
	deps.SyncService = appServices.NewSyncService(deps.Repos.DiplomaRepository, fetcher, remote, lgr)

	deps.VerificationController = appControllers.NewVerificationController(deps.VerificationService)
	deps.AdminController = appControllers.NewAdminController(
		deps.GenerationService,
		deps.StatusService,
		deps.AuditService,
		deps.SyncService,
		lgr,
	)
	deps.AdminAuth = appMiddleware.NewAdminAuthMiddleware(cfg.Admin.Token, lgr)

	return deps, nil
}

// setupStorage builds the active publisher plus, when credentials are
// present, the remote publisher used by the sync pass. In supabase mode both
// are the same backend.
func setupStorage(cfg *config.Config, lgr zerolog.Logger) (storage.Publisher, storage.Publisher, error) {
	var remote storage.Publisher
	if cfg.Storage.SupabaseURL != "" && cfg.Storage.ServiceKey != "" {
		supabase, err := storage.NewSupabase(storage.SupabaseConfig{
			URL:        cfg.Storage.SupabaseURL,
			ServiceKey: cfg.Storage.ServiceKey,
			Bucket:     cfg.Storage.Bucket,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize supabase storage: %w", err)
		}
		for k, v := range supabase.Check() {
			lgr.Debug().Str(k, v).Msg("Supabase storage configured")
		}
		remote = supabase
	}

	if strings.ToLower(cfg.Storage.Mode) == config.StorageModeSupabase {
		if remote == nil {
			return nil, nil, fmt.Errorf("supabase storage mode requires url and service key")
		}
		return remote, remote, nil
	}

	baseURL := strings.TrimRight(cfg.Diploma.VerificationBaseURL, "/") + "/pdfs"
	local, err := storage.NewLocal(cfg.Storage.OutputDir, baseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize local storage: %w", err)
	}
	return local, remote, nil
}

// SetupRouter configures the Gin engine and registers all routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(lgr))

	pdfDir := ""
	if strings.ToLower(cfg.Storage.Mode) == config.StorageModeLocal {
		pdfDir = cfg.Storage.OutputDir
	}

	appRoutes.SetupRouter(router, deps.VerificationController, deps.AdminController, deps.AdminAuth, pdfDir)

	return router
}

// requestLogger emits one structured line per request.
func requestLogger(lgr zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		lgr.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("clientIP", c.ClientIP()).
			Msg("Request handled")
	}
}
