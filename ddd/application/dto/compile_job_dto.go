package dto

import (
	"time"

	"stream-compiler-service/ddd/domain/entity"
)

// CompileJobDto 合成作业数据传输对象
type CompileJobDto struct {
	JobUUID       string        `json:"job_uuid"`
	UserUUID      string        `json:"user_uuid"`
	VideoUUID     string        `json:"video_uuid"`
	Status        string        `json:"status"`
	Progress      int           `json:"progress"`
	QuestionCount int           `json:"question_count"`
	Clips         []ClipInfoDto `json:"clips"`
	OutputKey     string        `json:"output_key,omitempty"`
	SessionUUID   string        `json:"session_uuid,omitempty"`
	ErrorMessage  string        `json:"error_message,omitempty"`
	Fallbacks     []int         `json:"fallback_segments,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	StartedAt     *time.Time    `json:"started_at,omitempty"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty"`
}

// ClipInfoDto 题目素材信息
type ClipInfoDto struct {
	ClipID     string `json:"clip_id"`
	ObjectKey  string `json:"object_key"`
	DurationMs int64  `json:"duration_ms,omitempty"`
}

// CompileJobListDto 作业列表数据传输对象
type CompileJobListDto struct {
	Jobs  []*CompileJobDto `json:"jobs"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Size  int              `json:"size"`
}

// CompileProgressDto 作业进度数据传输对象
type CompileProgressDto struct {
	JobUUID       string `json:"job_uuid"`
	Status        string `json:"status"`
	Progress      int    `json:"progress"`
	CurrentIndex  int    `json:"current_segment_index,omitempty"`
	TotalSegments int    `json:"total_segments,omitempty"`
	ErrorMessage  string `json:"error_message,omitempty"`
}

// NewCompileJobDto 从实体创建DTO
func NewCompileJobDto(job *entity.CompileJobEntity) *CompileJobDto {
	if job == nil {
		return nil
	}

	clips := make([]ClipInfoDto, 0, len(job.Clips()))
	for _, clip := range job.Clips() {
		clips = append(clips, ClipInfoDto{
			ClipID:     clip.ClipID,
			ObjectKey:  clip.ObjectKey,
			DurationMs: clip.DurationMs,
		})
	}

	return &CompileJobDto{
		JobUUID:       job.JobUUID(),
		UserUUID:      job.UserUUID(),
		VideoUUID:     job.VideoUUID(),
		Status:        job.Status().String(),
		Progress:      job.Progress(),
		QuestionCount: job.QuestionCount(),
		Clips:         clips,
		OutputKey:     job.OutputKey(),
		SessionUUID:   job.SessionUUID(),
		ErrorMessage:  job.ErrorMessage(),
		Fallbacks:     job.Fallbacks(),
		CreatedAt:     job.CreatedAt(),
		UpdatedAt:     job.UpdatedAt(),
		StartedAt:     job.StartedAt(),
		CompletedAt:   job.CompletedAt(),
	}
}

// NewCompileProgressDto 从实体创建进度DTO
func NewCompileProgressDto(job *entity.CompileJobEntity) *CompileProgressDto {
	if job == nil {
		return nil
	}
	return &CompileProgressDto{
		JobUUID:       job.JobUUID(),
		Status:        job.Status().String(),
		Progress:      job.Progress(),
		CurrentIndex:  job.CurrentIndex(),
		TotalSegments: job.TotalSegments(),
		ErrorMessage:  job.ErrorMessage(),
	}
}
