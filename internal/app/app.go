package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sqlprep_backend/internal/config"
	"sqlprep_backend/internal/controller"
	"sqlprep_backend/internal/repository"
	"sqlprep_backend/internal/service"
	"sqlprep_backend/pkg/configwatcher"
	"sqlprep_backend/pkg/database"
	"sqlprep_backend/pkg/logger"
	"sqlprep_backend/pkg/monitoring"
	"sqlprep_backend/pkg/security"
	"sqlprep_backend/pkg/tracing"
	"sync"
	"syscall"
	"time"

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
	configMu        sync.RWMutex
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user     *repository.UserRepository
	mockTest *repository.MockTestRepository
	progress *repository.TrackProgressRepository
}

type services struct {
	auth     *service.AuthService
	ai       *service.AIService
	mockTest *service.MockTestService
	progress *service.ProgressService
}

type controllers struct {
	auth     *controller.AuthController
	mockTest *controller.MockTestController
	progress *controller.ProgressController
	health   *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configMu.Lock()
	a.configCallbacks = append(a.configCallbacks, callback)
	a.configMu.Unlock()
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		mockTest: repository.NewMockTestRepository(db),
		progress: repository.NewTrackProgressRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.auth = service.NewAuthService(repos.user, cfg)
	s.ai = service.NewAIService(cfg.AI)
	s.mockTest = service.NewMockTestService(repos.mockTest, s.ai, rdb)
	s.progress = service.NewProgressService(repos.progress, s.ai)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	isRelease := a.Config.Server.Mode == "release"

	return &controllers{
		auth:     controller.NewAuthController(s.auth, isRelease),
		mockTest: controller.NewMockTestController(s.mockTest),
		progress: controller.NewProgressController(s.progress),
		health:   controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(a.dynamicCORS())
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 100000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// dynamicCORS CORS 白名单跟随配置热更新，其余配置项改动需要重启
func (a *App) dynamicCORS() gin.HandlerFunc {
	var mu sync.RWMutex
	handler := security.CORS(a.Config.CORS.AllowedOrigins)

	a.RegisterConfigCallback(func(cfg *config.Config) {
		next := security.CORS(cfg.CORS.AllowedOrigins)
		mu.Lock()
		handler = next
		mu.Unlock()
	})

	return func(c *gin.Context) {
		mu.RLock()
		h := handler
		mu.RUnlock()
		h(c)
	}
}

func (a *App) applyConfig(cfg *config.Config) {
	a.configMu.Lock()
	a.Config = cfg
	callbacks := a.configCallbacks
	a.configMu.Unlock()

	for _, cb := range callbacks {
		cb(cfg)
	}

	logger.Log.Info("Config reloaded")
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	if cfg.MigrateOnly {
		return app
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	controllers := app.initControllers(services, db)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("sqlprep-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	go configwatcher.WatchConfig(filepath.Join("configs", "config.yaml"), app.applyConfig)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
