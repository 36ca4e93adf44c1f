package dao

import (
	"context"

	"gorm.io/gorm"

	"stream-compiler-service/ddd/infrastructure/database/po"
	"stream-compiler-service/internal/resource"
)

type CompileJobDAO struct {
	db *gorm.DB
}

func NewCompileJobDAO() *CompileJobDAO {
	return &CompileJobDAO{db: resource.DefaultMysqlResource().MainDB()}
}

func (d *CompileJobDAO) Create(ctx context.Context, job *po.CompileJob) error {
	return d.db.WithContext(ctx).Model(&po.CompileJob{}).Create(job).Error
}

func (d *CompileJobDAO) UpdateJob(ctx context.Context, job *po.CompileJob) error {
	return d.db.WithContext(ctx).Model(&po.CompileJob{}).Where("job_uuid = ?", job.JobUUID).Updates(job).Error
}

func (d *CompileJobDAO) FindByJobUUID(ctx context.Context, jobUUID string) (*po.CompileJob, error) {
	var job po.CompileJob
	if err := d.db.WithContext(ctx).Where("job_uuid = ?", jobUUID).First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func (d *CompileJobDAO) QueryByUserUUID(ctx context.Context, userUUID, status string, limit, offset int) ([]*po.CompileJob, error) {
	var jobs []*po.CompileJob
	q := d.db.WithContext(ctx).Where("user_uuid = ?", userUUID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	q = q.Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (d *CompileJobDAO) CountByUserUUID(ctx context.Context, userUUID, status string) (int64, error) {
	q := d.db.WithContext(ctx).Model(&po.CompileJob{}).Where("user_uuid = ?", userUUID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (d *CompileJobDAO) QueryByStatus(ctx context.Context, status string, limit, offset int) ([]*po.CompileJob, error) {
	var jobs []*po.CompileJob
	q := d.db.WithContext(ctx).Where("status = ?", status).Order("updated_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (d *CompileJobDAO) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	if err := d.db.WithContext(ctx).Model(&po.CompileJob{}).Where("status = ?", status).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
