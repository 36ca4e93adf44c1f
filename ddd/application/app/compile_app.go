package app

import (
	"context"
	"sync"

	"stream-compiler-service/ddd/application/cqe"
	"stream-compiler-service/ddd/application/dto"
	"stream-compiler-service/ddd/domain/entity"
	"stream-compiler-service/ddd/domain/repo"
	"stream-compiler-service/ddd/domain/vo"
	"stream-compiler-service/ddd/infrastructure/database/persistence"
	"stream-compiler-service/ddd/infrastructure/queue"
	"stream-compiler-service/ddd/infrastructure/worker"
	"stream-compiler-service/pkg/assert"
	"stream-compiler-service/pkg/errno"
	"stream-compiler-service/pkg/logger"
)

var (
	singleCompileApp CompileApp
	onceCompileApp   sync.Once
)

// CompileApp 合成作业应用服务
type CompileApp interface {
	// CreateCompileJob 创建合成作业并投递到处理队列
	CreateCompileJob(ctx context.Context, req *cqe.CreateCompileJobReq) (*dto.CompileJobDto, error)
	// GetCompileJob 获取作业详情
	GetCompileJob(ctx context.Context, jobUUID string) (*dto.CompileJobDto, error)
	// ListCompileJobs 获取用户作业列表
	ListCompileJobs(ctx context.Context, req *cqe.ListCompileJobsReq) (*dto.CompileJobListDto, error)
	// CancelCompileJob 取消作业，运行中的作业在片段边界退出
	CancelCompileJob(ctx context.Context, jobUUID string) error
	// GetCompileProgress 获取作业进度
	GetCompileProgress(ctx context.Context, jobUUID string) (*dto.CompileProgressDto, error)
}

type compileAppImpl struct {
	jobRepo  repo.CompileJobRepository
	jobQueue queue.JobQueue
	// cancelRunning 请求取消一个运行中的作业，返回是否命中
	cancelRunning func(jobUUID string) bool
}

// DefaultCompileApp 返回默认合成应用服务
func DefaultCompileApp() CompileApp {
	assert.NotCircular()
	onceCompileApp.Do(func() {
		singleCompileApp = NewCompileAppWith(
			persistence.NewCompileJobRepository(),
			queue.DefaultJobQueue(),
			func(jobUUID string) bool {
				w := worker.DefaultCompileWorker()
				if w == nil {
					return false
				}
				return w.CancelJob(jobUUID)
			},
		)
	})
	assert.NotNil(singleCompileApp)
	return singleCompileApp
}

// NewCompileAppWith 用显式依赖构造合成应用服务
func NewCompileAppWith(jobRepo repo.CompileJobRepository, q queue.JobQueue, cancelRunning func(string) bool) CompileApp {
	return &compileAppImpl{
		jobRepo:       jobRepo,
		jobQueue:      q,
		cancelRunning: cancelRunning,
	}
}

func (a *compileAppImpl) CreateCompileJob(ctx context.Context, req *cqe.CreateCompileJobReq) (*dto.CompileJobDto, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	durations, err := req.ToDurations()
	if err != nil {
		return nil, err
	}
	audio, err := req.ToAudio()
	if err != nil {
		return nil, err
	}
	output, err := req.ToOutput()
	if err != nil {
		return nil, err
	}

	// 幂等：同一成片已有未完成作业时直接返回它
	if existing, err := a.findActiveByVideo(ctx, req.VideoUUID); err == nil && existing != nil {
		return dto.NewCompileJobDto(existing), nil
	}

	job := entity.NewCompileJobEntity(req.UserUUID, req.VideoUUID, req.ToClips(), *durations, *audio, *output)
	if err := a.jobRepo.CreateJob(ctx, job); err != nil {
		return nil, errno.NewBizError(errno.ErrDatabase, err)
	}

	if err := a.jobQueue.Enqueue(ctx, job); err != nil {
		logger.Errorf("compile job enqueue failed job_uuid=%s err=%v", job.JobUUID(), err)
		if failErr := job.Fail("enqueue failed: " + err.Error()); failErr == nil {
			_ = a.jobRepo.UpdateJob(ctx, job)
		}
		return nil, errno.ErrQueueFull
	}

	logger.Infof("compile job created job_uuid=%s video_uuid=%s questions=%d",
		job.JobUUID(), job.VideoUUID(), job.QuestionCount())
	return dto.NewCompileJobDto(job), nil
}

func (a *compileAppImpl) GetCompileJob(ctx context.Context, jobUUID string) (*dto.CompileJobDto, error) {
	if jobUUID == "" {
		return nil, errno.ErrJobUUIDRequired
	}
	job, err := a.jobRepo.GetJobByUUID(ctx, jobUUID)
	if err != nil {
		return nil, errno.NewBizError(errno.ErrDatabase, err)
	}
	if job == nil {
		return nil, errno.ErrCompileJobNotFound
	}
	return dto.NewCompileJobDto(job), nil
}

func (a *compileAppImpl) ListCompileJobs(ctx context.Context, req *cqe.ListCompileJobsReq) (*dto.CompileJobListDto, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	status := vo.JobStatus(req.Status)
	offset := (req.Page - 1) * req.Size
	jobs, err := a.jobRepo.GetJobsByUserUUID(ctx, req.UserUUID, status, req.Size, offset)
	if err != nil {
		return nil, errno.NewBizError(errno.ErrDatabase, err)
	}
	total, err := a.jobRepo.CountJobsByUserUUID(ctx, req.UserUUID, status)
	if err != nil {
		return nil, errno.NewBizError(errno.ErrDatabase, err)
	}

	dtos := make([]*dto.CompileJobDto, 0, len(jobs))
	for _, job := range jobs {
		dtos = append(dtos, dto.NewCompileJobDto(job))
	}

	return &dto.CompileJobListDto{
		Jobs:  dtos,
		Total: total,
		Page:  req.Page,
		Size:  req.Size,
	}, nil
}

func (a *compileAppImpl) CancelCompileJob(ctx context.Context, jobUUID string) error {
	if jobUUID == "" {
		return errno.ErrJobUUIDRequired
	}
	job, err := a.jobRepo.GetJobByUUID(ctx, jobUUID)
	if err != nil {
		return errno.NewBizError(errno.ErrDatabase, err)
	}
	if job == nil {
		return errno.ErrCompileJobNotFound
	}
	if job.Status().IsFinalStatus() {
		return errno.ErrInvalidJobStatus
	}

	// 运行中的作业交给Worker在片段边界终止并落终态
	if a.cancelRunning != nil && a.cancelRunning(jobUUID) {
		logger.Infof("compile job cancel requested job_uuid=%s status=%s", jobUUID, job.Status())
		return nil
	}

	// 还在排队的作业直接落取消态
	if err := job.Cancel(); err != nil {
		return errno.ErrInvalidJobStatus
	}
	if err := a.jobRepo.UpdateJob(ctx, job); err != nil {
		return errno.NewBizError(errno.ErrDatabase, err)
	}
	logger.Infof("queued compile job cancelled job_uuid=%s", jobUUID)
	return nil
}

func (a *compileAppImpl) GetCompileProgress(ctx context.Context, jobUUID string) (*dto.CompileProgressDto, error) {
	if jobUUID == "" {
		return nil, errno.ErrJobUUIDRequired
	}
	job, err := a.jobRepo.GetJobByUUID(ctx, jobUUID)
	if err != nil {
		return nil, errno.NewBizError(errno.ErrDatabase, err)
	}
	if job == nil {
		return nil, errno.ErrCompileJobNotFound
	}
	return dto.NewCompileProgressDto(job), nil
}

// findActiveByVideo 返回同一成片的未完成作业
func (a *compileAppImpl) findActiveByVideo(ctx context.Context, videoUUID string) (*entity.CompileJobEntity, error) {
	if videoUUID == "" {
		return nil, nil
	}
	statuses := []vo.JobStatus{
		vo.JobStatusIdle, vo.JobStatusProbing, vo.JobStatusPlanning,
		vo.JobStatusMaterializing, vo.JobStatusConcatenating, vo.JobStatusFinalizing,
	}
	for _, st := range statuses {
		jobs, err := a.jobRepo.GetJobsByStatus(ctx, st, 100, 0)
		if err != nil {
			continue
		}
		for _, job := range jobs {
			if job != nil && job.VideoUUID() == videoUUID {
				return job, nil
			}
		}
	}
	return nil, nil
}
