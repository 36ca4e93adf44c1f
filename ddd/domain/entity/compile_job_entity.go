package entity

import (
	"time"

	"github.com/google/uuid"

	"stream-compiler-service/ddd/domain/vo"
)

// CompileJobEntity 一次成片合成作业
type CompileJobEntity struct {
	id            uint64
	jobUUID       string
	userUUID      string
	videoUUID     string
	clips         []vo.ClipInput
	durations     vo.DurationConfig
	audio         vo.AudioConfig
	output        vo.OutputSpec
	status        vo.JobStatus
	progress      int
	currentIndex  int // 当前处理的片段序号（1-based），仅materializing期间有意义
	totalSegments int
	outputKey     string
	sessionUUID   string
	errorMessage  string
	fallbacks     []int // 发生兜底合成的片段序号
	createdAt     time.Time
	updatedAt     time.Time
	startedAt     *time.Time
	completedAt   *time.Time
}

// NewCompileJobEntity 创建新的合成作业实体
func NewCompileJobEntity(userUUID, videoUUID string, clips []vo.ClipInput, durations vo.DurationConfig, audio vo.AudioConfig, output vo.OutputSpec) *CompileJobEntity {
	now := time.Now()
	return &CompileJobEntity{
		jobUUID:   uuid.New().String(),
		userUUID:  userUUID,
		videoUUID: videoUUID,
		clips:     clips,
		durations: durations,
		audio:     audio,
		output:    output,
		status:    vo.JobStatusIdle,
		createdAt: now,
		updatedAt: now,
	}
}

// RestoreCompileJobEntity 从持久化数据还原实体
func RestoreCompileJobEntity(
	id uint64,
	jobUUID, userUUID, videoUUID string,
	clips []vo.ClipInput,
	durations vo.DurationConfig,
	audio vo.AudioConfig,
	output vo.OutputSpec,
	status vo.JobStatus,
	progress int,
	outputKey, sessionUUID, errorMessage string,
	createdAt, updatedAt time.Time,
	startedAt, completedAt *time.Time,
) *CompileJobEntity {
	return &CompileJobEntity{
		id:           id,
		jobUUID:      jobUUID,
		userUUID:     userUUID,
		videoUUID:    videoUUID,
		clips:        clips,
		durations:    durations,
		audio:        audio,
		output:       output,
		status:       status,
		progress:     progress,
		outputKey:    outputKey,
		sessionUUID:  sessionUUID,
		errorMessage: errorMessage,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
		startedAt:    startedAt,
		completedAt:  completedAt,
	}
}

// Getters
func (j *CompileJobEntity) ID() uint64                   { return j.id }
func (j *CompileJobEntity) JobUUID() string              { return j.jobUUID }
func (j *CompileJobEntity) UserUUID() string             { return j.userUUID }
func (j *CompileJobEntity) VideoUUID() string            { return j.videoUUID }
func (j *CompileJobEntity) Clips() []vo.ClipInput        { return j.clips }
func (j *CompileJobEntity) Durations() vo.DurationConfig { return j.durations }
func (j *CompileJobEntity) Audio() vo.AudioConfig        { return j.audio }
func (j *CompileJobEntity) Output() vo.OutputSpec        { return j.output }
func (j *CompileJobEntity) Status() vo.JobStatus         { return j.status }
func (j *CompileJobEntity) Progress() int                { return j.progress }
func (j *CompileJobEntity) CurrentIndex() int            { return j.currentIndex }
func (j *CompileJobEntity) TotalSegments() int           { return j.totalSegments }
func (j *CompileJobEntity) OutputKey() string            { return j.outputKey }
func (j *CompileJobEntity) SessionUUID() string          { return j.sessionUUID }
func (j *CompileJobEntity) ErrorMessage() string         { return j.errorMessage }
func (j *CompileJobEntity) Fallbacks() []int             { return j.fallbacks }
func (j *CompileJobEntity) CreatedAt() time.Time         { return j.createdAt }
func (j *CompileJobEntity) UpdatedAt() time.Time         { return j.updatedAt }
func (j *CompileJobEntity) StartedAt() *time.Time        { return j.startedAt }
func (j *CompileJobEntity) CompletedAt() *time.Time      { return j.completedAt }

// QuestionCount 题目数量
func (j *CompileJobEntity) QuestionCount() int { return len(j.clips) }

// SetProbedDuration 写入探测到的素材时长，只允许写一次
func (j *CompileJobEntity) SetProbedDuration(clipID string, durationMs int64) error {
	for i := range j.clips {
		if j.clips[i].ClipID != clipID {
			continue
		}
		if j.clips[i].DurationMs > 0 {
			return NewDomainError("probed duration is immutable once set")
		}
		j.clips[i].DurationMs = durationMs
		j.updatedAt = time.Now()
		return nil
	}
	return NewDomainError("unknown clip: " + clipID)
}

// ResolveOutputDimensions original画幅作业写入首个素材的探测尺寸
func (j *CompileJobEntity) ResolveOutputDimensions(width, height int) {
	j.output.ResolveSourceDimensions(width, height)
	j.updatedAt = time.Now()
}

// TransitionTo 推进状态机
func (j *CompileJobEntity) TransitionTo(target vo.JobStatus) error {
	if !j.status.CanTransitionTo(target) {
		return NewDomainError("invalid status transition: " + j.status.String() + " -> " + target.String())
	}
	now := time.Now()
	if j.status == vo.JobStatusIdle {
		j.startedAt = &now
	}
	j.status = target
	j.updatedAt = now
	if target.IsFinalStatus() {
		j.completedAt = &now
	}
	return nil
}

// SetMaterializing 进入第index个片段的转码（1-based）
func (j *CompileJobEntity) SetMaterializing(index, total int) {
	j.currentIndex = index
	j.totalSegments = total
	j.updatedAt = time.Now()
}

// UpdateProgress 更新进度百分比
func (j *CompileJobEntity) UpdateProgress(progress int) error {
	if progress < 0 || progress > 100 {
		return NewDomainError("progress must be between 0 and 100")
	}
	j.progress = progress
	j.updatedAt = time.Now()
	return nil
}

// RecordFallback 记录某个片段使用了兜底合成
func (j *CompileJobEntity) RecordFallback(segmentIndex int) {
	j.fallbacks = append(j.fallbacks, segmentIndex)
	j.updatedAt = time.Now()
}

// Complete 标记作业完成
func (j *CompileJobEntity) Complete(outputKey, sessionUUID string) error {
	if err := j.TransitionTo(vo.JobStatusComplete); err != nil {
		return err
	}
	j.outputKey = outputKey
	j.sessionUUID = sessionUUID
	j.progress = 100
	return nil
}

// Fail 标记作业失败
func (j *CompileJobEntity) Fail(errorMessage string) error {
	if err := j.TransitionTo(vo.JobStatusError); err != nil {
		return err
	}
	j.errorMessage = errorMessage
	return nil
}

// Cancel 标记作业取消，区别于失败
func (j *CompileJobEntity) Cancel() error {
	return j.TransitionTo(vo.JobStatusCancelled)
}

// DomainError 领域错误
type DomainError struct {
	message string
}

func NewDomainError(message string) *DomainError {
	return &DomainError{message: message}
}

func (e *DomainError) Error() string {
	return e.message
}
