package compiler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"stream-compiler-service/ddd/domain/entity"
	"stream-compiler-service/ddd/domain/gateway"
	"stream-compiler-service/ddd/domain/port"
	"stream-compiler-service/ddd/domain/repo"
	"stream-compiler-service/ddd/domain/service"
	"stream-compiler-service/ddd/domain/vo"
	"stream-compiler-service/pkg/errno"
	"stream-compiler-service/pkg/logger"
)

const finalOutputName = "final_output.mp4"

// CompilationProgress 编译进度快照，只经回调外发，从不落库
type CompilationProgress struct {
	Stage                vo.JobStatus `json:"stage"`
	Percent              int          `json:"percent"`
	CurrentSegmentIndex  int          `json:"current_segment_index,omitempty"`
	TotalSegments        int          `json:"total_segments"`
	Message              string       `json:"message"`
	ElapsedMs            int64        `json:"elapsed_ms"`
	EstimatedRemainingMs int64        `json:"estimated_remaining_ms"`
}

// ProgressObserver 进度观察者回调，单向，不回流
type ProgressObserver func(progress CompilationProgress)

// CompileResult 编译成功的产出
type CompileResult struct {
	OutputKey        string
	Session          *vo.GameSession
	FallbackSegments []int
}

// JobOrchestrator 作业编排器：驱动探测、计划、物化、拼接、收尾的完整状态机，
// 无论成功失败都回收全部临时产物。
type JobOrchestrator struct {
	planner      service.SequencePlanner
	generator    service.TimestampGenerator
	materializer SegmentMaterializer
	concatenator Concatenator
	engines      port.EngineFactory
	prober       port.MediaProber
	storage      gateway.StorageGateway
	catalog      gateway.OverlayCatalog
	jobRepo      repo.CompileJobRepository
	sessionRepo  repo.GameSessionRepository
	reporter     gateway.CompileResultReporter
	sinks        []port.ProgressSink
}

// NewJobOrchestrator 创建作业编排器
func NewJobOrchestrator(
	planner service.SequencePlanner,
	generator service.TimestampGenerator,
	materializer SegmentMaterializer,
	concatenator Concatenator,
	engines port.EngineFactory,
	prober port.MediaProber,
	storage gateway.StorageGateway,
	catalog gateway.OverlayCatalog,
	jobRepo repo.CompileJobRepository,
	sessionRepo repo.GameSessionRepository,
	reporter gateway.CompileResultReporter,
	sinks ...port.ProgressSink,
) *JobOrchestrator {
	return &JobOrchestrator{
		planner:      planner,
		generator:    generator,
		materializer: materializer,
		concatenator: concatenator,
		engines:      engines,
		prober:       prober,
		storage:      storage,
		catalog:      catalog,
		jobRepo:      jobRepo,
		sessionRepo:  sessionRepo,
		reporter:     reporter,
		sinks:        sinks,
	}
}

// Execute 执行一个合成作业直至终态。取消只在片段边界生效，
// 进行中的片段允许跑完再退出。
func (o *JobOrchestrator) Execute(ctx context.Context, job *entity.CompileJobEntity, observer ProgressObserver) (*CompileResult, error) {
	engine, err := o.engines.NewEngine(job.JobUUID())
	if err != nil {
		return nil, o.fail(job, fmt.Errorf("create engine workspace: %w", err))
	}
	// 终态时无条件回收工作区，包括错误与取消路径
	defer func() {
		if cleanupErr := engine.Cleanup(); cleanupErr != nil {
			logger.Warnf("workspace cleanup failed job_uuid=%s err=%v", job.JobUUID(), cleanupErr)
		}
	}()

	startedAt := time.Now()
	emit := func(stage vo.JobStatus, percent, segmentIndex, totalSegments int, message string) {
		o.emitProgress(job, observer, CompilationProgress{
			Stage:               stage,
			Percent:             percent,
			CurrentSegmentIndex: segmentIndex,
			TotalSegments:       totalSegments,
			Message:             message,
			ElapsedMs:           time.Since(startedAt).Milliseconds(),
		}, percent)
	}

	// Probing：下载素材并发探测真实时长
	if err := o.transition(job, vo.JobStatusProbing); err != nil {
		return nil, err
	}
	emit(vo.JobStatusProbing, 2, 0, 0, "probing clip durations")
	if err := o.probeClips(ctx, engine, job); err != nil {
		if ctx.Err() != nil {
			return nil, o.cancel(job)
		}
		return nil, o.fail(job, err)
	}

	// Planning：生成片段计划与事件时间线
	if err := o.checkCancelled(ctx, job); err != nil {
		return nil, err
	}
	if err := o.transition(job, vo.JobStatusPlanning); err != nil {
		return nil, err
	}
	emit(vo.JobStatusPlanning, 10, 0, 0, "building sequence plan")

	plan, err := o.planner.Plan(job.Clips(), job.Durations())
	if err != nil {
		return nil, o.fail(job, err)
	}
	sessionID := "sess_" + uuid.New().String()
	session, err := o.generator.Generate(sessionID, job.VideoUUID(), job.Clips(), job.Durations())
	if err != nil {
		return nil, o.fail(job, err)
	}

	// Materializing：严格按计划顺序逐个物化，片段间检查取消
	if err := o.transition(job, vo.JobStatusMaterializing); err != nil {
		return nil, err
	}
	materialized, err := o.materializeAll(ctx, engine, job, plan, emit)
	if err != nil {
		if ctx.Err() != nil {
			return nil, o.cancel(job)
		}
		return nil, o.fail(job, err)
	}

	// Concatenating：无损拼接，背景音失败内部降级
	if err := o.checkCancelled(ctx, job); err != nil {
		return nil, err
	}
	if err := o.transition(job, vo.JobStatusConcatenating); err != nil {
		return nil, err
	}
	emit(vo.JobStatusConcatenating, 85, 0, len(materialized), "concatenating segments")

	backgroundName := o.stageBackgroundTrack(ctx, engine, job.Audio())
	if err := o.concatenator.Concat(ctx, engine, materialized, job.Audio(), backgroundName, finalOutputName, plan.TotalDurationMs); err != nil {
		if ctx.Err() != nil {
			return nil, o.cancel(job)
		}
		return nil, o.fail(job, fmt.Errorf("concatenation: %w", err))
	}

	// Finalizing：上传成片，保存时间线，广播结果
	if err := o.transition(job, vo.JobStatusFinalizing); err != nil {
		return nil, err
	}
	emit(vo.JobStatusFinalizing, 95, 0, len(materialized), "uploading compiled output")

	outputKey := fmt.Sprintf("compiled/%s/%s.mp4", job.VideoUUID(), job.JobUUID())
	if _, err := o.storage.UploadFile(ctx, engine.WorkspacePath(finalOutputName), outputKey, "video/mp4"); err != nil {
		return nil, o.fail(job, fmt.Errorf("upload output: %w", err))
	}
	if err := o.sessionRepo.SaveSession(context.Background(), session); err != nil {
		return nil, o.fail(job, fmt.Errorf("save session: %w", err))
	}

	if err := job.Complete(outputKey, sessionID); err != nil {
		return nil, o.fail(job, err)
	}
	o.persist(job)
	if o.reporter != nil {
		if err := o.reporter.ReportCompiled(context.Background(), job.VideoUUID(), job.JobUUID(), sessionID, outputKey); err != nil {
			logger.Warnf("result report failed job_uuid=%s err=%v", job.JobUUID(), err)
		}
	}
	emit(vo.JobStatusComplete, 100, 0, len(materialized), "compilation complete")
	logger.Infof("compile job complete job_uuid=%s output_key=%s total_ms=%d fallbacks=%d",
		job.JobUUID(), outputKey, plan.TotalDurationMs, len(job.Fallbacks()))

	return &CompileResult{
		OutputKey:        outputKey,
		Session:          session,
		FallbackSegments: job.Fallbacks(),
	}, nil
}

// probeClips 下载全部题目素材并并发探测时长，探测结果写回作业实体
func (o *JobOrchestrator) probeClips(ctx context.Context, engine port.MediaEngine, job *entity.CompileJobEntity) error {
	clips := job.Clips()
	for _, clip := range clips {
		data, err := o.storage.ReadObject(ctx, clip.ObjectKey)
		if err != nil {
			return fmt.Errorf("download clip %s: %w", clip.ClipID, err)
		}
		if err := engine.WriteInput(ctx, clipFileName(clip.ClipID), data); err != nil {
			return fmt.Errorf("stage clip %s: %w", clip.ClipID, err)
		}
	}

	var wg sync.WaitGroup
	errs := make([]error, len(clips))
	durations := make([]int64, len(clips))
	for i, clip := range clips {
		wg.Add(1)
		go func(i int, clipID string) {
			defer wg.Done()
			ms, err := o.prober.ProbeDurationMs(ctx, engine.WorkspacePath(clipFileName(clipID)))
			if err != nil {
				errs[i] = fmt.Errorf("probe clip %s: %w", clipID, err)
				return
			}
			durations[i] = ms
		}(i, clip.ClipID)
	}
	wg.Wait()

	for i, clip := range clips {
		if errs[i] != nil {
			return errs[i]
		}
		if err := job.SetProbedDuration(clip.ClipID, durations[i]); err != nil {
			return err
		}
	}

	// original画幅取首个素材的实际尺寸，探测失败退回分辨率基准
	if job.Output().AspectRatio == vo.AspectOriginal && len(clips) > 0 {
		w, h, err := o.prober.ProbeDimensions(ctx, engine.WorkspacePath(clipFileName(clips[0].ClipID)))
		if err != nil {
			logger.Warnf("probe source dimensions failed clip=%s err=%v", clips[0].ClipID, err)
		} else {
			job.ResolveOutputDimensions(w, h)
		}
	}
	return nil
}

// materializeAll 顺序物化每个非零时长片段，拼接顺序由计划序号决定
func (o *JobOrchestrator) materializeAll(ctx context.Context, engine port.MediaEngine, job *entity.CompileJobEntity, plan *service.SequencePlan, emit func(vo.JobStatus, int, int, int, string)) ([]MaterializedSegment, error) {
	renderable := make([]vo.PlannedSegment, 0, len(plan.Segments))
	for _, seg := range plan.Segments {
		if seg.DurationMs > 0 {
			renderable = append(renderable, seg)
		}
	}

	materialized := make([]MaterializedSegment, 0, len(renderable))
	total := len(renderable)
	for i, seg := range renderable {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		index := i + 1
		job.SetMaterializing(index, total)
		base := 15 + (70*i)/total
		emit(vo.JobStatusMaterializing, base, index, total,
			fmt.Sprintf("materializing %s", seg.Kind.DisplayName(seg.QuestionNumber)))

		sourceName, err := o.stageSegmentSource(ctx, engine, seg)
		if err != nil {
			return nil, err
		}
		segCb := func(pct int) {
			emit(vo.JobStatusMaterializing, base+(70/total)*pct/100, index, total,
				fmt.Sprintf("materializing %s", seg.Kind.DisplayName(seg.QuestionNumber)))
		}
		result, err := o.materializer.Materialize(ctx, engine, seg, sourceName, job.Output(), job.Audio(), segCb)
		if err != nil {
			return nil, err
		}
		if result.Fallback {
			job.RecordFallback(index)
		}
		materialized = append(materialized, *result)
		_ = job.UpdateProgress(15 + (70*index)/total)
		o.persist(job)
	}
	return materialized, nil
}

// stageSegmentSource 把片段来源文件放进工作区，返回其工作区文件名。
// 叠加素材缺失时返回空名，由物化阶段兜底合成。
func (o *JobOrchestrator) stageSegmentSource(ctx context.Context, engine port.MediaEngine, seg vo.PlannedSegment) (string, error) {
	if seg.Source.IsClip() {
		return clipFileName(seg.Source.ClipID), nil
	}

	asset, err := o.catalog.Resolve(ctx, seg.Source.OverlayKey, seg.QuestionNumber)
	if err != nil || !asset.Exists {
		logger.Warnf("overlay missing key=%s question=%d err=%v", seg.Source.OverlayKey, seg.QuestionNumber, err)
		return "", nil
	}
	data, err := os.ReadFile(asset.LocalPath)
	if err != nil {
		logger.Warnf("overlay unreadable key=%s path=%s err=%v", seg.Source.OverlayKey, asset.LocalPath, err)
		return "", nil
	}
	name := fmt.Sprintf("overlay_%s_q%d%s", seg.Source.OverlayKey, seg.QuestionNumber, fileExtension(asset.LocalPath))
	if err := engine.WriteInput(ctx, name, data); err != nil {
		return "", fmt.Errorf("stage overlay %s: %w", seg.Source.OverlayKey, err)
	}
	return name, nil
}

// stageBackgroundTrack 把背景音轨放进工作区，失败只告警不阻断
func (o *JobOrchestrator) stageBackgroundTrack(ctx context.Context, engine port.MediaEngine, audio vo.AudioConfig) string {
	if !audio.HasBackgroundTrack() {
		return ""
	}
	asset, err := o.catalog.BackgroundTrack(ctx, audio.BackgroundKey)
	if err != nil || !asset.Exists {
		logger.Warnf("background track missing key=%s err=%v", audio.BackgroundKey, err)
		return ""
	}
	data, err := os.ReadFile(asset.LocalPath)
	if err != nil {
		logger.Warnf("background track unreadable key=%s err=%v", audio.BackgroundKey, err)
		return ""
	}
	name := "background" + fileExtension(asset.LocalPath)
	if err := engine.WriteInput(ctx, name, data); err != nil {
		logger.Warnf("stage background track failed key=%s err=%v", audio.BackgroundKey, err)
		return ""
	}
	return name
}

// checkCancelled 片段/阶段边界的协作式取消检查
func (o *JobOrchestrator) checkCancelled(ctx context.Context, job *entity.CompileJobEntity) error {
	if ctx.Err() != nil {
		return o.cancel(job)
	}
	return nil
}

func (o *JobOrchestrator) transition(job *entity.CompileJobEntity, target vo.JobStatus) error {
	if err := job.TransitionTo(target); err != nil {
		return o.fail(job, err)
	}
	o.persist(job)
	return nil
}

func (o *JobOrchestrator) fail(job *entity.CompileJobEntity, cause error) error {
	logger.Errorf("compile job failed job_uuid=%s status=%s err=%v", job.JobUUID(), job.Status(), cause)
	if !job.Status().IsFinalStatus() {
		if err := job.Fail(cause.Error()); err != nil {
			logger.Warnf("mark job failed job_uuid=%s err=%v", job.JobUUID(), err)
		}
		o.persist(job)
	}
	if o.reporter != nil {
		if err := o.reporter.ReportFailed(context.Background(), job.VideoUUID(), job.JobUUID(), cause.Error()); err != nil {
			logger.Warnf("failure report failed job_uuid=%s err=%v", job.JobUUID(), err)
		}
	}
	return cause
}

func (o *JobOrchestrator) cancel(job *entity.CompileJobEntity) error {
	logger.Infof("compile job cancelled job_uuid=%s status=%s", job.JobUUID(), job.Status())
	if !job.Status().IsFinalStatus() {
		if err := job.Cancel(); err != nil {
			logger.Warnf("mark job cancelled job_uuid=%s err=%v", job.JobUUID(), err)
		}
		o.persist(job)
	}
	return errno.ErrJobCancelled
}

func (o *JobOrchestrator) persist(job *entity.CompileJobEntity) {
	if o.jobRepo == nil {
		return
	}
	if err := o.jobRepo.UpdateJob(context.Background(), job); err != nil {
		logger.Warnf("persist job state failed job_uuid=%s err=%v", job.JobUUID(), err)
	}
}

func (o *JobOrchestrator) emitProgress(job *entity.CompileJobEntity, observer ProgressObserver, progress CompilationProgress, percent int) {
	if observer != nil {
		observer(progress)
	}
	for _, sink := range o.sinks {
		if err := sink.SaveProgress(context.Background(), job, percent); err != nil {
			logger.Warnf("progress sink failed job_uuid=%s err=%v", job.JobUUID(), err)
		}
	}
}

func clipFileName(clipID string) string {
	return "clip_" + clipID + ".mp4"
}

func fileExtension(path string) string {
	if ext := filepath.Ext(path); ext != "" {
		return ext
	}
	return ".mp4"
}
