package repo

import (
	"context"

	"stream-compiler-service/ddd/domain/entity"
	"stream-compiler-service/ddd/domain/vo"
)

// CompileJobRepository 合成作业仓储接口
type CompileJobRepository interface {
	// CreateJob 创建作业
	CreateJob(ctx context.Context, job *entity.CompileJobEntity) error

	// GetJobByUUID 根据UUID获取作业
	GetJobByUUID(ctx context.Context, jobUUID string) (*entity.CompileJobEntity, error)

	// GetJobsByUserUUID 根据用户UUID获取作业列表，status为空不过滤状态
	GetJobsByUserUUID(ctx context.Context, userUUID string, status vo.JobStatus, limit, offset int) ([]*entity.CompileJobEntity, error)

	// CountJobsByUserUUID 统计用户作业数量，status为空不过滤状态
	CountJobsByUserUUID(ctx context.Context, userUUID string, status vo.JobStatus) (int64, error)

	// GetJobsByStatus 根据状态获取作业列表
	GetJobsByStatus(ctx context.Context, status vo.JobStatus, limit, offset int) ([]*entity.CompileJobEntity, error)

	// UpdateJob 更新作业
	UpdateJob(ctx context.Context, job *entity.CompileJobEntity) error

	// CountJobsByStatus 统计各状态作业数量
	CountJobsByStatus(ctx context.Context, status vo.JobStatus) (int64, error)
}
