package worker

import (
	"context"
	"fmt"
	"sync"

	"stream-compiler-service/ddd/domain/service"
	"stream-compiler-service/ddd/infrastructure/catalog"
	"stream-compiler-service/ddd/infrastructure/compiler"
	"stream-compiler-service/ddd/infrastructure/database/persistence"
	"stream-compiler-service/ddd/infrastructure/executor"
	"stream-compiler-service/ddd/infrastructure/messaging"
	"stream-compiler-service/ddd/infrastructure/progress"
	"stream-compiler-service/ddd/infrastructure/queue"
	"stream-compiler-service/ddd/infrastructure/storage"
	"stream-compiler-service/internal/resource"
	"stream-compiler-service/pkg/config"
	"stream-compiler-service/pkg/logger"
	"stream-compiler-service/pkg/manager"
	"stream-compiler-service/pkg/task"
)

func init() {
	manager.RegisterComponentPlugin(&CompileWorkerComponentPlugin{})
}

// CompileWorkerComponentPlugin 负责组装并启动合成Worker
type CompileWorkerComponentPlugin struct{}

func (p *CompileWorkerComponentPlugin) Name() string {
	return "compileWorkerComponent"
}

func (p *CompileWorkerComponentPlugin) MustCreateComponent(deps *manager.Dependencies) manager.Component {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.GetGlobalConfig()
	}

	jobRepo := persistence.NewCompileJobRepository()
	sessionRepo := persistence.NewGameSessionRepository()
	queueInstance := queue.DefaultJobQueue()

	storageGateway := storage.NewMinioStorage(resource.DefaultMinioResource())
	overlayCatalog := catalog.NewFilesystemOverlayCatalog(cfg)
	// 合成结果通过Kafka通知下游（题库服务/播放端推送）
	resultReporter := messaging.DefaultCompileResultReporter()

	preset := ""
	if cfg != nil {
		preset = cfg.Compile.FFmpeg.VideoPreset
	}

	orchestrator := compiler.NewJobOrchestrator(
		service.NewSequencePlanner(nil),
		service.NewTimestampGenerator(nil),
		compiler.NewSegmentMaterializer(preset),
		compiler.NewConcatenator(),
		executor.NewFFmpegEngineFactory(cfg),
		executor.NewFFprobeProber(cfg),
		storageGateway,
		overlayCatalog,
		jobRepo,
		sessionRepo,
		resultReporter,
		progress.NewRedisSink(resource.DefaultRedisResource()),
	)

	workerCount := 1
	workerID := "compile-worker"
	if cfg != nil {
		if cfg.Worker.MaxConcurrentJobs > 0 {
			workerCount = cfg.Worker.MaxConcurrentJobs
		}
		if cfg.Worker.WorkerID != "" {
			workerID = cfg.Worker.WorkerID
		}
	}

	w := NewCompileWorker(workerID, queueInstance, orchestrator, jobRepo, workerCount)
	setDefaultCompileWorker(w)

	return &compileWorkerComponent{
		name:   "compileWorker",
		queue:  queueInstance,
		worker: w,
	}
}

var defaultWorkerMu sync.RWMutex
var defaultWorker CompileWorker

func setDefaultCompileWorker(w CompileWorker) {
	defaultWorkerMu.Lock()
	defer defaultWorkerMu.Unlock()
	defaultWorker = w
}

// DefaultCompileWorker 返回组件装配的Worker实例，应用层用它取消运行中的作业
func DefaultCompileWorker() CompileWorker {
	defaultWorkerMu.RLock()
	defer defaultWorkerMu.RUnlock()
	return defaultWorker
}

type compileWorkerComponent struct {
	name   string
	queue  queue.JobQueue
	worker CompileWorker
}

func (c *compileWorkerComponent) Start() error {
	if cfg := config.GetGlobalConfig(); cfg != nil && !cfg.Worker.Enabled {
		logger.Infof("Compile worker disabled by config name=%s", c.name)
		return nil
	}
	if c.worker == nil {
		return fmt.Errorf("compile worker not initialized")
	}

	// 注册后台任务，让应用启动时统一管理
	task.Register(&backgroundTaskAdapter{name: c.name, startFunc: c.worker.Start, stopFunc: c.worker.Stop})
	logger.Infof("Compile worker component registered background task name=%s", c.name)
	return nil
}

func (c *compileWorkerComponent) Stop() error {
	// 背景任务由 task.Manager 控制停止，这里保持幂等
	queue.CloseDefaultJobQueue()
	logger.Infof("Compile worker component stopped name=%s", c.name)
	return nil
}

func (c *compileWorkerComponent) GetName() string {
	return c.name
}

// backgroundTaskAdapter adapts Start/Stop functions to the BackgroundTask interface.
type backgroundTaskAdapter struct {
	name      string
	startFunc func(ctx context.Context) error
	stopFunc  func() error
}

func (b *backgroundTaskAdapter) Name() string                    { return b.name }
func (b *backgroundTaskAdapter) Start(ctx context.Context) error { return b.startFunc(ctx) }
func (b *backgroundTaskAdapter) Stop() error                     { return b.stopFunc() }
