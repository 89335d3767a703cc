package app

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"coach_backend/internal/config"
	"coach_backend/internal/controller"
	"coach_backend/internal/repository"
	"coach_backend/internal/service"
	"coach_backend/pkg/configwatcher"
	"coach_backend/pkg/database"
	"coach_backend/pkg/logger"
	"coach_backend/pkg/monitoring"
	"coach_backend/pkg/security"
	"coach_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	configCallbacks []func(*config.Config)
	shutdownTracer  func(context.Context) error
}

type repositories struct {
	user       *repository.UserRepository
	goal       *repository.GoalRepository
	progress   *repository.ProgressRepository
	session    *repository.SessionRepository
	assessment *repository.AssessmentRepository
	cache      repository.AnalyticsCache
	tx         repository.TxRunner
}

type services struct {
	auth       *service.AuthService
	storage    *service.StorageService
	user       *service.UserService
	goal       *service.GoalService
	session    *service.SessionService
	assessment *service.AssessmentService
	analytics  *service.AnalyticsService
	ai         *service.AIService
	coach      *service.CoachService
}

type controllers struct {
	auth       *controller.AuthController
	user       *controller.UserController
	goal       *controller.GoalController
	session    *controller.SessionController
	assessment *controller.AssessmentController
	analytics  *controller.AnalyticsController
	coach      *controller.CoachController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		goal:       repository.NewGoalRepository(db),
		progress:   repository.NewProgressRepository(db),
		session:    repository.NewSessionRepository(db),
		assessment: repository.NewAssessmentRepository(db),
		cache:      repository.NewAnalyticsCache(rdb, cfg.Analytics.CacheTTL()),
		tx:         repository.NewTxRunner(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.storage = service.NewStorageService(&cfg.Storage)
	s.auth = service.NewAuthService(repos.user, &cfg.JWT)
	s.user = service.NewUserService(repos.user, s.storage)
	s.goal = service.NewGoalService(repos.goal, repos.progress, repos.session, repos.tx, repos.cache)
	s.session = service.NewSessionService(repos.session, s.goal, repos.tx)
	s.assessment = service.NewAssessmentService(repos.assessment)
	s.analytics = service.NewAnalyticsService(repos.goal, repos.session, repos.progress, repos.cache)
	s.ai = service.NewAIService(cfg.AI)
	s.coach = service.NewCoachService(s.ai, s.goal, repos.session)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth),
		user:       controller.NewUserController(s.user),
		goal:       controller.NewGoalController(s.goal),
		session:    controller.NewSessionController(s.session),
		assessment: controller.NewAssessmentController(s.assessment),
		analytics:  controller.NewAnalyticsController(s.analytics),
		coach:      controller.NewCoachController(s.coach),
		health:     controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.Secure())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// NewApp opens the database and, when enabled, Redis, then builds the app.
func NewApp(cfg *config.Config) (*App, error) {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode == gin.DebugMode)
	if err != nil {
		return nil, err
	}

	if cfg.Server.Mode != gin.ReleaseMode || cfg.ForceMigrate {
		if err := database.Migrate(db); err != nil {
			return nil, err
		}
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			// analytics falls back to computing on every request
			logger.Log.Error("Failed to initialize redis, continuing without cache", zap.Error(err))
			rdb = nil
		}
	}

	a := Build(cfg, db, rdb)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("coach-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
		} else {
			a.shutdownTracer = tp.Shutdown
		}
	}
	return a, nil
}

// Build wires repositories, services, and routes on an already opened
// database. rdb may be nil.
func Build(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *App {
	gin.SetMode(cfg.Server.Mode)

	a := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := a.initRepositories(db, rdb, cfg)
	a.services = a.initServices(repos, cfg)
	ctrls := a.initControllers(a.services, db, rdb)

	// 监控初始化
	monitoring.Init()

	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Server.Mode == gin.DebugMode {
		router.Use(gin.Logger())
	}
	a.Router = router

	a.setupMiddlewares(router, cfg)
	a.registerRoutes(router, ctrls, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	a.RegisterConfigCallback(func(newCfg *config.Config) {
		a.services.ai.UpdateConfig(newCfg.AI)
		logger.Log.Info("AI settings reloaded", zap.String("model", newCfg.AI.Model))
	})

	return a
}

func (a *App) reloadConfig(newCfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(newCfg)
	}
}

// Run serves until SIGINT or SIGTERM, then drains in-flight requests.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if a.Config.Path != "" {
		go func() {
			if err := configwatcher.WatchConfig(ctx, a.Config.Path, a.reloadConfig); err != nil {
				logger.Log.Error("Config watcher stopped", zap.Error(err))
			}
		}()
	}

	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	logger.Log.Info("Shutting down server...")

	// 关闭服务
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if a.shutdownTracer != nil {
		if err := a.shutdownTracer(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Log.Info("Server exiting")
	return nil
}
