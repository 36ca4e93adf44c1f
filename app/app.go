package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"stream-compiler-service/ddd/infrastructure/database/po"
	"stream-compiler-service/internal/resource"
	"stream-compiler-service/pkg/config"
	"stream-compiler-service/pkg/logger"
	"stream-compiler-service/pkg/manager"
	"stream-compiler-service/pkg/middleware"
	"stream-compiler-service/pkg/registry"
	"stream-compiler-service/pkg/task"

	// 导入适配器和组件包以触发init注册
	_ "stream-compiler-service/ddd/adapter/component"
	_ "stream-compiler-service/ddd/adapter/http"
	_ "stream-compiler-service/ddd/infrastructure/worker"
)

func Run() {
	// 先使用标准输出确保能看到日志
	fmt.Println("[STARTUP] Starting stream compiler service...")

	// 加载配置
	fmt.Println("[STARTUP] Loading config file...")
	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("[ERROR] Failed to load config (%s): %v\n", cfgPath, err)
		os.Exit(1)
	}
	// 设置全局配置（必须在资源管理器初始化之前）
	config.SetGlobalConfig(cfg)
	fmt.Printf("[STARTUP] Config file loaded: %s\n", cfgPath)

	// 立即初始化日志服务（确保所有后续组件都能使用正确的日志器）
	fmt.Println("[STARTUP] Initializing logger...")
	logService := logger.NewLogger(cfg)
	logger.SetGlobalLogger(logService)
	fmt.Println("[STARTUP] Logger initialized")

	logger.Debug("Logger initialized", map[string]interface{}{
		"level":  cfg.Log.Level,
		"format": cfg.Log.Format,
		"output": cfg.Log.Output,
	})

	logger.Infof("Stream compiler service starting version=%s", "1.0.0")

	// 检查 FFmpeg / FFprobe 是否可用，直接在启动阶段失败
	mustLookupBinary(cfg.Compile.FFmpeg.BinaryPath, "ffmpeg", "compile.ffmpeg.binary_path")
	mustLookupBinary(cfg.Compile.FFmpeg.ProbePath, "ffprobe", "compile.ffmpeg.probe_path")

	// 资源管理器初始化
	logger.Infof("Initializing resource manager...")
	manager.MustInitResources()
	defer manager.CloseResources()
	logger.Infof("Resource manager initialized")

	// 建表迁移
	db := resource.DefaultMysqlResource().MainDB()
	if db != nil {
		if err := db.AutoMigrate(&po.CompileJob{}, &po.GameSession{}); err != nil {
			logger.Fatal(fmt.Sprintf("Failed to migrate database schema error=%v", err))
		}
		logger.Infof("Database schema migrated")
	}

	// 创建依赖注入容器
	deps := &manager.Dependencies{
		DB:     db,
		Config: cfg,
	}

	// 初始化所有组件
	logger.Infof("Initializing components...")
	manager.MustInitComponents(deps)
	logger.Infof("All components initialized")

	// 初始化所有控制器
	logger.Infof("Initializing controllers...")
	manager.MustInitControllers(deps)
	logger.Infof("All controllers initialized")

	// 启动后台任务（合成Worker等）
	if err := task.StartAll(context.Background()); err != nil {
		logger.Fatal(fmt.Sprintf("Failed to start background tasks error=%v", err))
	}
	logger.Infof("Background tasks started")

	// 创建Gin引擎
	logger.Infof("Creating HTTP routes...")
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestContextMiddleware())

	// 健康检查端点
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"service":   "stream-compiler-service",
			"timestamp": time.Now().Unix(),
		})
	})

	// 注册所有路由
	apiGroup := router.Group("/api/v1")
	apiGroup.Use(middleware.AuthMiddleware())
	manager.RegisterAllRoutes(apiGroup)
	logger.Infof("Routes registered")

	// 启动HTTP服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(fmt.Sprintf("Failed to start HTTP server error=%v", err))
		}
	}()
	logger.Infof("HTTP server started address=%s api_url=%s", addr, fmt.Sprintf("http://%s/api/v1", addr))

	// 服务注册（etcd，可选）
	var serviceRegistry *registry.ServiceRegistry
	if cfg.ServiceRegistry.Enabled {
		serviceRegistry, err = registry.NewServiceRegistry(
			registry.RegistryConfig{Endpoints: cfg.ServiceRegistry.Endpoints},
			registry.ServiceConfig{
				ServiceName:     cfg.ServiceRegistry.ServiceName,
				ServiceID:       cfg.ServiceRegistry.ServiceID,
				TTL:             cfg.ServiceRegistry.TTL,
				RefreshInterval: cfg.ServiceRegistry.RefreshInterval,
			},
			registerAddr(cfg),
		)
		if err != nil {
			logger.Fatal(fmt.Sprintf("Failed to create service registry error=%v", err))
		}
		if err := serviceRegistry.Register(); err != nil {
			logger.Fatal(fmt.Sprintf("Failed to register service error=%v", err))
		}
		logger.Infof("Service registered name=%s", cfg.ServiceRegistry.ServiceName)
	}

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Received shutdown signal, shutting down server...")

	if serviceRegistry != nil {
		if err := serviceRegistry.Deregister(); err != nil {
			logger.Warnf("Service deregister failed error=%v", err)
		}
	}

	// 先停后台任务，让运行中的作业在片段边界退出
	logger.Infof("Stopping background tasks...")
	task.StopAll()

	// 关闭所有组件
	logger.Infof("Shutting down components...")
	manager.Shutdown()
	logger.Infof("Components closed")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Worker.ShutdownGracePeriod)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal(fmt.Sprintf("Server forced to close error=%v", err))
	}

	logger.Infof("Server exited safely")

	// 关闭日志服务
	if logService != nil {
		logService.Close()
	}

	fmt.Println("[SHUTDOWN] Stream compiler service exited safely")
}

// mustLookupBinary 启动期校验外部二进制可用
func mustLookupBinary(configured, fallback, configKey string) {
	bin := strings.TrimSpace(configured)
	if bin == "" {
		bin = fallback
	}
	if _, err := exec.LookPath(bin); err != nil {
		logger.Fatal(fmt.Sprintf("%s binary not found, please install or set %s binary=%s error=%s", fallback, configKey, bin, err.Error()))
	}
}

// registerAddr 向注册中心上报的地址，register_host允许覆盖监听地址
func registerAddr(cfg *config.Config) string {
	host := cfg.ServiceRegistry.RegisterHost
	if host == "" {
		host = cfg.Server.Host
	}
	if host == "" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("%s:%d", host, cfg.Server.Port)
}

// resolveConfigPath 根据环境选择配置文件，支持CONFIG_PATH覆盖、CONFIG_ENV区分环境
func resolveConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}

	env := strings.ToLower(strings.TrimSpace(os.Getenv("CONFIG_ENV")))
	if env == "" {
		env = "dev"
	}

	switch env {
	case "prod", "production":
		return "configs/config_prod.yaml"
	case "dev", "development":
		return "configs/config.dev.yaml"
	default:
		return fmt.Sprintf("configs/config.%s.yaml", env)
	}
}
