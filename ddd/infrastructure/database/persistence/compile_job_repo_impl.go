package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"stream-compiler-service/ddd/domain/entity"
	"stream-compiler-service/ddd/domain/repo"
	"stream-compiler-service/ddd/domain/vo"
	"stream-compiler-service/ddd/infrastructure/database/convertor"
	"stream-compiler-service/ddd/infrastructure/database/dao"
	"stream-compiler-service/ddd/infrastructure/database/po"
)

// compileJobRepositoryImpl 合成作业仓储实现
type compileJobRepositoryImpl struct {
	jobDao    *dao.CompileJobDAO
	convertor *convertor.CompileJobConvertor
}

// NewCompileJobRepository 创建合成作业仓储实现
func NewCompileJobRepository() repo.CompileJobRepository {
	return &compileJobRepositoryImpl{
		jobDao:    dao.NewCompileJobDAO(),
		convertor: convertor.NewCompileJobConvertor(),
	}
}

// CreateJob 创建作业
func (r *compileJobRepositoryImpl) CreateJob(ctx context.Context, job *entity.CompileJobEntity) error {
	return r.jobDao.Create(ctx, r.convertor.ToPO(job))
}

// GetJobByUUID 根据UUID获取作业
func (r *compileJobRepositoryImpl) GetJobByUUID(ctx context.Context, jobUUID string) (*entity.CompileJobEntity, error) {
	p, err := r.jobDao.FindByJobUUID(ctx, jobUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.convertor.ToEntity(p), nil
}

// GetJobsByUserUUID 根据用户UUID获取作业列表，状态过滤下推到数据库
func (r *compileJobRepositoryImpl) GetJobsByUserUUID(ctx context.Context, userUUID string, status vo.JobStatus, limit, offset int) ([]*entity.CompileJobEntity, error) {
	poList, err := r.jobDao.QueryByUserUUID(ctx, userUUID, status.String(), limit, offset)
	if err != nil {
		return nil, err
	}

	return r.toEntityList(poList), nil
}

// CountJobsByUserUUID 统计用户作业数量
func (r *compileJobRepositoryImpl) CountJobsByUserUUID(ctx context.Context, userUUID string, status vo.JobStatus) (int64, error) {
	return r.jobDao.CountByUserUUID(ctx, userUUID, status.String())
}

// GetJobsByStatus 根据状态获取作业列表
func (r *compileJobRepositoryImpl) GetJobsByStatus(ctx context.Context, status vo.JobStatus, limit, offset int) ([]*entity.CompileJobEntity, error) {
	poList, err := r.jobDao.QueryByStatus(ctx, status.String(), limit, offset)
	if err != nil {
		return nil, err
	}

	return r.toEntityList(poList), nil
}

// UpdateJob 更新作业
func (r *compileJobRepositoryImpl) UpdateJob(ctx context.Context, job *entity.CompileJobEntity) error {
	return r.jobDao.UpdateJob(ctx, r.convertor.ToPO(job))
}

// CountJobsByStatus 统计各状态作业数量
func (r *compileJobRepositoryImpl) CountJobsByStatus(ctx context.Context, status vo.JobStatus) (int64, error) {
	return r.jobDao.CountByStatus(ctx, status.String())
}

func (r *compileJobRepositoryImpl) toEntityList(poList []*po.CompileJob) []*entity.CompileJobEntity {
	entities := make([]*entity.CompileJobEntity, 0, len(poList))
	for _, p := range poList {
		entities = append(entities, r.convertor.ToEntity(p))
	}
	return entities
}
