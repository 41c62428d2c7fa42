package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	appControllers "github.com/yigit/academy/internal/app/controllers"
	appMigrations "github.com/yigit/academy/internal/app/migrations"
	appRepos "github.com/yigit/academy/internal/app/repositories"
	"github.com/yigit/academy/internal/app/repositories/memory"
	"github.com/yigit/academy/internal/app/repositories/mongodb"
	"github.com/yigit/academy/internal/app/repositories/postgres"
	appRoutes "github.com/yigit/academy/internal/app/routes"
	appServices "github.com/yigit/academy/internal/app/services"
	"github.com/yigit/academy/internal/config"
	"github.com/yigit/academy/internal/db"
	appMiddleware "github.com/yigit/academy/internal/middleware"
	pkgAuth "github.com/yigit/academy/internal/pkg/auth"
	"github.com/yigit/academy/internal/pkg/email"
	"github.com/yigit/academy/internal/pkg/filestorage"
	"github.com/yigit/academy/internal/pkg/helpers"
	"github.com/yigit/academy/internal/pkg/logger"
	"github.com/yigit/academy/internal/pkg/validation"
	"github.com/yigit/academy/internal/seed"
)

// DefaultConfigPath is where the server looks for its yaml config
var DefaultConfigPath = filepath.Join("configs", "config.yaml")

// Store is an open repository backend and the function that releases it
type Store struct {
	Repos *appRepos.Repositories
	Close func(ctx context.Context) error
}

// Dependencies holds all the application dependencies
type Dependencies struct {
	Store       *Store
	Services    *appServices.Services
	JWTService  *pkgAuth.JWTService
	FileStorage *filestorage.LocalStorage
	Redis       *redis.Client
	Registry    *prometheus.Registry
	Metrics     *appMiddleware.Metrics
	Handlers    appRoutes.Handlers
	Logger      zerolog.Logger
}

// Close releases the redis client and the store
func (d *Dependencies) Close(ctx context.Context) error {
	var err error
	if d.Redis != nil {
		err = errors.Join(err, d.Redis.Close())
	}
	if d.Store != nil && d.Store.Close != nil {
		err = errors.Join(err, d.Store.Close(ctx))
	}
	return err
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger // Get the configured global logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupStore opens the configured backend. Mongo gets its unique indexes,
// postgres gets its migrations.
func SetupStore(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*Store, error) {
	lgr.Info().Str("driver", cfg.Database.Driver).Msg("Establishing database connection...")

	switch cfg.Database.Driver {
	case config.DriverMongo:
		store, err := db.NewMongoStoreFromConfig(cfg)
		if err != nil {
			return nil, err
		}
		if err := store.Connect(ctx); err != nil {
			lgr.Error().Err(err).Msg("Failed to connect to database")
			return nil, err
		}
		if err := store.EnsureIndexes(ctx); err != nil {
			lgr.Error().Err(err).Msg("Failed to create indexes")
			_ = store.Disconnect(ctx)
			return nil, err
		}
		lgr.Info().Bool("transactions", store.SupportsTransactions(ctx)).Msg("Database connection successfully established.")
		return &Store{Repos: mongodb.NewRepositories(store), Close: store.Disconnect}, nil

	case config.DriverPostgres:
		pg, err := db.NewPostgresDB(cfg)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to connect to database")
			return nil, err
		}
		if err := pg.Ping(ctx); err != nil {
			lgr.Error().Err(err).Msg("Failed to ping database")
			pg.Close()
			return nil, err
		}
		lgr.Info().Msg("Database connection successfully established.")

		if err := runMigrations(ctx, pg, cfg.Database.MigrationsDir, lgr); err != nil {
			pg.Close()
			return nil, err
		}
		closeFn := func(context.Context) error {
			pg.Close()
			return nil
		}
		return &Store{Repos: postgres.NewRepositories(pg), Close: closeFn}, nil

	case config.DriverMemory:
		lgr.Warn().Msg("Using the in-memory store, content is lost on restart")
		return &Store{Repos: memory.NewRepositories(memory.NewStore())}, nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
}

func runMigrations(ctx context.Context, pg *db.PostgresDB, dir string, lgr zerolog.Logger) error {
	lgr.Info().Msg("Running database migrations...")
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		lgr.Error().Str("path", dir).Msg("Migrations directory not found")
		return fmt.Errorf("migrations directory not found at %s: %w", dir, err)
	}

	applied, err := appMigrations.NewMigrator(pg.Pool).MigrateFromDirectory(ctx, dir)
	if err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Int("applied", applied).Msg("Database migrations successfully applied.")
	return nil
}

// NewRedisClient connects to redis when an address is configured. A
// client that cannot be reached is dropped so the login limiter falls back
// to per-process buckets.
func NewRedisClient(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) *redis.Client {
	if cfg.Redis.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		lgr.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unreachable, using in-process rate limits")
		_ = client.Close()
		return nil
	}
	return client
}

// BuildDependencies initializes services, controllers and middleware over
// an open store.
func BuildDependencies(ctx context.Context, cfg *config.Config, store *Store, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Store: store, Logger: lgr}

	// slug and key rules used by the request bindings
	if err := validation.RegisterWithGin(); err != nil {
		return nil, fmt.Errorf("failed to register validation rules: %w", err)
	}

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, "/uploads",
		cfg.Server.UploadMaxBytes, filestorage.DefaultAllowedTypes)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:   cfg.JWT.Secret,
		SessionExp:  helpers.ParseDuration(cfg.JWT.SessionExpiration, 12*time.Hour),
		TokenIssuer: cfg.JWT.Issuer,
	})

	mailer := email.NewEmailService(email.SMTPConfig{
		Host:         cfg.SMTP.Host,
		Port:         cfg.SMTP.Port,
		Username:     cfg.SMTP.Username,
		Password:     cfg.SMTP.Password,
		FromName:     cfg.SMTP.FromName,
		FromEmail:    cfg.SMTP.FromEmail,
		ContactEmail: cfg.SMTP.ContactEmail,
		UseTLS:       cfg.SMTP.UseTLS,
	}, lgr)

	deps.Services = appServices.NewServices(store.Repos, appServices.AdminCredentials{
		Username:     cfg.Admin.Username,
		PasswordHash: cfg.Admin.PasswordHash,
	}, deps.JWTService, mailer)

	if cfg.Database.Seed {
		// Log the error but don't fail the startup
		if err := seed.CreateDefaultData(ctx, deps.Services, lgr); err != nil {
			lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
		}
	}

	deps.Redis = NewRedisClient(ctx, cfg, lgr)

	deps.Registry = prometheus.NewRegistry()
	deps.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	deps.Metrics = appMiddleware.NewMetrics(deps.Registry)

	svc := deps.Services
	deps.Handlers = appRoutes.Handlers{
		Course: appControllers.NewCourseController(svc.Course, svc.Cascade, svc.Reconcile),
		Week:   appControllers.NewWeekController(svc.Week, svc.Cascade, svc.Reconcile),
		Lesson: appControllers.NewLessonController(svc.Lesson),
		Upload: appControllers.NewUploadController(deps.FileStorage),
		Auth:   appControllers.NewAuthController(svc.AdminAuth),
		Console: appControllers.NewAdminConsoleController(svc, appControllers.SessionCookie{
			Name:   cfg.Admin.CookieName,
			Secure: cfg.Admin.CookieSecure,
		}),
		Public: appControllers.NewPublicController(svc.Course, svc.Week, svc.Contact),

		AuthMiddleware: appMiddleware.NewAuthMiddleware(svc.AdminAuth, cfg.Admin.CookieName, "/admin/login"),
		RateLimiter:    appMiddleware.NewRateLimiter(deps.Redis),
		LoginLimit: appRoutes.LoginLimit{
			Attempts: cfg.RateLimit.LoginAttempts,
			Window:   helpers.ParseDuration(cfg.RateLimit.LoginWindow, 15*time.Minute),
		},
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(
		appMiddleware.Recovery(),
		appMiddleware.RequestID(),
		appMiddleware.RequestLogger(),
	)
	if len(cfg.Server.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.Server.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "Retry-After"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	if cfg.Tracing.Enabled {
		router.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	router.Use(deps.Metrics.Handler(), appMiddleware.WithStore(deps.Store.Repos))

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Handlers)

	// Test endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))

	return router
}
