package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"stream-compiler-service/ddd/domain/entity"
	"stream-compiler-service/ddd/domain/repo"
	"stream-compiler-service/ddd/infrastructure/compiler"
	"stream-compiler-service/ddd/infrastructure/queue"
	"stream-compiler-service/pkg/logger"
)

// CompileWorker 合成工作器接口
type CompileWorker interface {
	// Start 启动工作器
	Start(ctx context.Context) error

	// Stop 停止工作器
	Stop() error

	// IsRunning 检查工作器是否运行中
	IsRunning() bool

	// CancelJob 取消一个运行中的作业，作业在下一个片段边界退出
	CancelJob(jobUUID string) bool

	// GetStats 获取工作器统计信息
	GetStats() WorkerStats
}

// WorkerStats 工作器统计信息
type WorkerStats struct {
	ProcessedJobs    uint64
	SuccessfulJobs   uint64
	FailedJobs       uint64
	CancelledJobs    uint64
	CurrentlyRunning int
	StartTime        time.Time
	LastJobTime      time.Time
}

// compileWorkerImpl 合成工作器实现
type compileWorkerImpl struct {
	id           string
	jobQueue     queue.JobQueue
	orchestrator *compiler.JobOrchestrator
	jobRepo      repo.CompileJobRepository
	workerCount  int
	running      bool
	cancel       context.CancelFunc
	stats        WorkerStats
	jobCancels   map[string]context.CancelFunc
	mu           sync.RWMutex
	wg           sync.WaitGroup
}

// NewCompileWorker 创建合成工作器
func NewCompileWorker(
	id string,
	jobQueue queue.JobQueue,
	orchestrator *compiler.JobOrchestrator,
	jobRepo repo.CompileJobRepository,
	workerCount int,
) CompileWorker {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &compileWorkerImpl{
		id:           id,
		jobQueue:     jobQueue,
		orchestrator: orchestrator,
		jobRepo:      jobRepo,
		workerCount:  workerCount,
		jobCancels:   make(map[string]context.CancelFunc),
		stats: WorkerStats{
			StartTime: time.Now(),
		},
	}
}

// Start 启动工作器
func (w *compileWorkerImpl) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("worker %s is already running", w.id)
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true
	w.stats.StartTime = time.Now()

	logger.Infof("starting compile worker id=%s goroutines=%d", w.id, w.workerCount)
	for i := 0; i < w.workerCount; i++ {
		w.wg.Add(1)
		go w.workerLoop(workerCtx, i)
	}
	return nil
}

// Stop 停止工作器
func (w *compileWorkerImpl) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	logger.Infof("stopping compile worker id=%s", w.id)
	if w.cancel != nil {
		w.cancel()
	}
	w.mu.Unlock()

	w.wg.Wait()

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
	logger.Infof("compile worker stopped id=%s", w.id)
	return nil
}

// IsRunning 检查工作器是否运行中
func (w *compileWorkerImpl) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// CancelJob 取消运行中作业
func (w *compileWorkerImpl) CancelJob(jobUUID string) bool {
	w.mu.RLock()
	cancel, ok := w.jobCancels[jobUUID]
	w.mu.RUnlock()
	if ok {
		cancel()
	}
	return ok
}

// GetStats 获取工作器统计信息
func (w *compileWorkerImpl) GetStats() WorkerStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// workerLoop 工作器主循环
func (w *compileWorkerImpl) workerLoop(ctx context.Context, workerID int) {
	defer w.wg.Done()

	logger.Infof("compile worker loop started id=%s-%d", w.id, workerID)
	defer logger.Infof("compile worker loop stopped id=%s-%d", w.id, workerID)

	for {
		select {
		case <-ctx.Done():
			return
		default:
			job, err := w.jobQueue.Dequeue(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return
				}
				logger.Warnf("dequeue failed worker=%s-%d err=%v", w.id, workerID, err)
				time.Sleep(time.Second)
				continue
			}
			if job == nil {
				continue
			}
			w.processJob(ctx, job, workerID)
		}
	}
}

// processJob 处理单个作业
func (w *compileWorkerImpl) processJob(ctx context.Context, job *entity.CompileJobEntity, workerID int) {
	logger.Infof("processing compile job worker=%s-%d job_uuid=%s", w.id, workerID, job.JobUUID())

	// 重启后实体可能过期，处理前回源刷新
	if w.jobRepo != nil {
		if fresh, err := w.jobRepo.GetJobByUUID(ctx, job.JobUUID()); err == nil && fresh != nil {
			job = fresh
		}
	}
	if job.Status().IsFinalStatus() {
		logger.Infof("skip terminal job worker=%s-%d job_uuid=%s status=%s", w.id, workerID, job.JobUUID(), job.Status())
		return
	}

	jobCtx, cancelJob := context.WithCancel(ctx)
	w.mu.Lock()
	w.jobCancels[job.JobUUID()] = cancelJob
	w.mu.Unlock()

	w.updateStats(func(stats *WorkerStats) {
		stats.CurrentlyRunning++
		stats.LastJobTime = time.Now()
	})
	defer func() {
		cancelJob()
		w.mu.Lock()
		delete(w.jobCancels, job.JobUUID())
		w.mu.Unlock()
		w.updateStats(func(stats *WorkerStats) {
			stats.CurrentlyRunning--
			stats.ProcessedJobs++
		})
	}()

	_, err := w.orchestrator.Execute(jobCtx, job, nil)
	switch {
	case err == nil:
		w.updateStats(func(stats *WorkerStats) { stats.SuccessfulJobs++ })
	case jobCtx.Err() != nil && ctx.Err() == nil:
		logger.Infof("compile job cancelled worker=%s-%d job_uuid=%s", w.id, workerID, job.JobUUID())
		w.updateStats(func(stats *WorkerStats) { stats.CancelledJobs++ })
	default:
		logger.Errorf("compile job failed worker=%s-%d job_uuid=%s err=%v", w.id, workerID, job.JobUUID(), err)
		w.updateStats(func(stats *WorkerStats) { stats.FailedJobs++ })
	}
}

// updateStats 更新统计信息
func (w *compileWorkerImpl) updateStats(updateFunc func(*WorkerStats)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	updateFunc(&w.stats)
}
