package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/alunos/internal/app/auth"
	appControllers "github.com/yigit/alunos/internal/app/controllers"
	appDashboard "github.com/yigit/alunos/internal/app/dashboard"
	appMigrations "github.com/yigit/alunos/internal/app/migrations"
	"github.com/yigit/alunos/internal/app/models"
	appRepos "github.com/yigit/alunos/internal/app/repositories"
	appRoutes "github.com/yigit/alunos/internal/app/routes"
	appServices "github.com/yigit/alunos/internal/app/services"
	appWeb "github.com/yigit/alunos/internal/app/web"
	"github.com/yigit/alunos/internal/config"
	"github.com/yigit/alunos/internal/db"
	appMiddleware "github.com/yigit/alunos/internal/middleware"
	pkgAuth "github.com/yigit/alunos/internal/pkg/auth"
	"github.com/yigit/alunos/internal/pkg/logger"
	"github.com/yigit/alunos/internal/pkg/websocket"
	"github.com/yigit/alunos/internal/seed"
)

// Storage holds the opened backends and the repositories built on them
type Storage struct {
	Repos  *appRepos.Repositories
	Pool   *pgxpool.Pool
	Redis  *redis.Client
	logger zerolog.Logger
}

// Close releases every opened backend
func (s *Storage) Close() {
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			s.logger.Error().Err(err).Msg("Failed to close redis client")
		}
	}
	if s.Pool != nil {
		s.Pool.Close()
	}
}

// sessionCleaner is implemented by session stores that need explicit cleanup
type sessionCleaner interface {
	CleanupExpiredSessions(ctx context.Context) (int64, error)
}

// Dependencies holds all the application dependencies
type Dependencies struct {
	Storage           *Storage
	JWTService        *pkgAuth.JWTService
	SessionProvider   *appAuth.SessionProvider
	AuthService       appServices.AuthService
	StudentService    appServices.StudentService
	AuthController    *appControllers.AuthController
	StudentController *appControllers.StudentController
	AuthMiddleware    *appMiddleware.AuthMiddleware
	Hub               *websocket.Hub
	Registry          *appDashboard.Registry
	Web               *appWeb.Handler
	Logger            zerolog.Logger
}

// LoadConfigAndSetupLogger loads .env, the configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	if err := config.LoadDotEnv(); err != nil {
		logger.Error().Err(err).Msg("Failed to load .env file")
		return nil, zerolog.Logger{}, err
	}

	cfg, err := config.LoadConfig(config.Path())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupStorage opens the configured database and session store and runs migrations.
func SetupStorage(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*Storage, error) {
	storage := &Storage{logger: lgr}

	switch cfg.Database.Driver {
	case config.DriverMemory:
		lgr.Warn().Msg("Using in-memory storage; data is lost on restart")
		storage.Repos = appRepos.NewMemoryRepositories()
	default:
		lgr.Info().Msg("Establishing database connection...")
		pool, err := db.NewPostgresPool(ctx, cfg)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to connect to database")
			return nil, err
		}
		storage.Pool = pool

		lgr.Info().Msg("Running database migrations...")
		if err := appMigrations.NewMigrator(storage.Pool, lgr).MigrateEmbedded(ctx); err != nil {
			lgr.Error().Err(err).Msg("Database migration error")
			storage.Close()
			return nil, fmt.Errorf("database migrations failed: %w", err)
		}
		lgr.Info().Msg("Database migrations successfully applied.")

		storage.Repos = appRepos.NewRepositories(storage.Pool)
	}

	switch cfg.Sessions.Store {
	case config.StoreRedis:
		client, err := db.NewRedisClient(ctx, cfg)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to connect to redis")
			storage.Close()
			return nil, err
		}
		storage.Redis = client
		storage.Repos.WithSessionStore(appRepos.NewRedisSessionStore(client))
	case config.DriverMemory:
		if cfg.Database.Driver != config.DriverMemory {
			storage.Repos.WithSessionStore(appRepos.NewMemorySessionStore())
		}
	}

	lgr.Info().Str("driver", cfg.Database.Driver).Str("sessions", cfg.Sessions.Store).Msg("Storage ready")
	return storage, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, storage *Storage, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Storage: storage, Logger: lgr}
	repos := storage.Repos

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: cfg.AccessTokenTTL(),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	deps.SessionProvider = appAuth.NewSessionProvider(
		repos.AccountStore,
		repos.SessionStore,
		deps.JWTService,
		pkgAuth.NewPasswordHasher(pkgAuth.BcryptCost),
		logger.Component("sessions"),
	)

	deps.AuthService = appServices.NewAuthService(deps.SessionProvider, logger.Component("auth"))
	deps.StudentService = appServices.NewStudentService(repos.StudentGateway)
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.AuthService)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService, lgr)
	deps.StudentController = appControllers.NewStudentController(deps.StudentService)

	deps.Hub = websocket.NewHub(logger.Component("websocket"))
	deps.Registry = appDashboard.NewRegistry(
		repos.StudentGateway,
		deps.SessionProvider,
		appWeb.NewHubNavigator(deps.Hub),
		logger.Component("dashboard"),
	)

	events := websocket.NewHandler(deps.Hub, appWeb.ResolveSession, cfg.Server.CORSOrigins, logger.Component("websocket")).
		WithPing(appWeb.SessionProbe(deps.AuthService))
	deps.Web = appWeb.NewHandler(deps.AuthService, deps.Registry, events.HandleConnection, cfg.Server.CookieSecure, logger.Component("web"))

	return deps, nil
}

// SeedDemoData creates the configured demo account
func SeedDemoData(ctx context.Context, cfg *config.Config, deps *Dependencies) {
	demo := seed.DemoAccount{Email: cfg.Seed.DemoEmail, Password: cfg.Seed.DemoPassword}
	if err := seed.CreateDefaultData(ctx, deps.SessionProvider, deps.Storage.Repos.StudentGateway, demo, deps.Logger); err != nil {
		deps.Logger.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}
}

// SetupRouter configures the Gin engine with middleware and routes and wraps it with CORS.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (http.Handler, error) {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "alunos",
			Name:      "active_dashboards",
			Help:      "Dashboards currently held in memory.",
		}, func() float64 { return float64(deps.Registry.Len()) }),
	)
	metrics := appMiddleware.NewHTTPMetrics(reg)

	router := gin.New()
	router.Use(gin.Recovery(), metrics.Handler(), appMiddleware.RequestLogger(logger.Component("http")))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	appRoutes.SetupRouter(router, deps.AuthController, deps.StudentController, deps.AuthMiddleware)
	if err := deps.Web.Register(router, deps.AuthMiddleware); err != nil {
		return nil, fmt.Errorf("failed to register web pages: %w", err)
	}

	return cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler(router), nil
}

// RunJanitor periodically expires dashboards whose session ran out, drops
// dashboards that navigated away and, for stores that keep them, deletes
// expired sessions. It returns when ctx is done.
func (d *Dependencies) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	cleaner, _ := d.Storage.Repos.SessionStore.(sessionCleaner)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			expired := d.Registry.ExpireStale(time.Now(), func(session models.Session) {
				d.SessionProvider.Expire(ctx, session)
			})
			if expired > 0 {
				d.Logger.Debug().Int("count", expired).Msg("Expired idle dashboards")
			}
			if n := d.Registry.Sweep(); n > 0 {
				d.Logger.Debug().Int("count", n).Msg("Swept ended dashboards")
			}
			if cleaner != nil {
				if _, err := cleaner.CleanupExpiredSessions(ctx); err != nil {
					d.Logger.Warn().Err(err).Msg("Session cleanup failed")
				}
			}
		}
	}
}
