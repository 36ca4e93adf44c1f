package convertor

import (
	"encoding/json"

	"stream-compiler-service/ddd/domain/entity"
	"stream-compiler-service/ddd/domain/vo"
	"stream-compiler-service/ddd/infrastructure/database/po"
	"stream-compiler-service/pkg/logger"
)

// CompileJobConvertor 合成作业转换器
type CompileJobConvertor struct{}

// NewCompileJobConvertor 创建合成作业转换器
func NewCompileJobConvertor() *CompileJobConvertor {
	return &CompileJobConvertor{}
}

// ToEntity 将PO转换为Entity
func (c *CompileJobConvertor) ToEntity(p *po.CompileJob) *entity.CompileJobEntity {
	var clips []vo.ClipInput
	var durations vo.DurationConfig
	var audio vo.AudioConfig
	var output vo.OutputSpec

	if err := json.Unmarshal([]byte(p.Clips), &clips); err != nil {
		logger.Warnf("decode job clips failed job_uuid=%s err=%v", p.JobUUID, err)
	}
	if err := json.Unmarshal([]byte(p.Durations), &durations); err != nil {
		logger.Warnf("decode job durations failed job_uuid=%s err=%v", p.JobUUID, err)
	}
	if err := json.Unmarshal([]byte(p.Audio), &audio); err != nil {
		logger.Warnf("decode job audio failed job_uuid=%s err=%v", p.JobUUID, err)
	}
	if err := json.Unmarshal([]byte(p.Output), &output); err != nil {
		logger.Warnf("decode job output failed job_uuid=%s err=%v", p.JobUUID, err)
	}

	status := vo.JobStatus(p.Status)
	if !status.IsValid() {
		status = vo.JobStatusIdle
	}

	return entity.RestoreCompileJobEntity(
		p.ID,
		p.JobUUID,
		p.UserUUID,
		p.VideoUUID,
		clips,
		durations,
		audio,
		output,
		status,
		p.Progress,
		p.OutputKey,
		p.SessionUUID,
		p.ErrorMessage,
		p.CreatedAt,
		p.UpdatedAt,
		p.StartedAt,
		p.CompletedAt,
	)
}

// ToPO 将Entity转换为PO
func (c *CompileJobConvertor) ToPO(e *entity.CompileJobEntity) *po.CompileJob {
	clips, _ := json.Marshal(e.Clips())
	durations, _ := json.Marshal(e.Durations())
	audio, _ := json.Marshal(e.Audio())
	output, _ := json.Marshal(e.Output())

	return &po.CompileJob{
		BaseModel: po.BaseModel{
			ID:        e.ID(),
			CreatedAt: e.CreatedAt(),
			UpdatedAt: e.UpdatedAt(),
		},
		JobUUID:      e.JobUUID(),
		UserUUID:     e.UserUUID(),
		VideoUUID:    e.VideoUUID(),
		Clips:        string(clips),
		Durations:    string(durations),
		Audio:        string(audio),
		Output:       string(output),
		Status:       e.Status().String(),
		Progress:     e.Progress(),
		OutputKey:    e.OutputKey(),
		SessionUUID:  e.SessionUUID(),
		ErrorMessage: e.ErrorMessage(),
		StartedAt:    e.StartedAt(),
		CompletedAt:  e.CompletedAt(),
	}
}
