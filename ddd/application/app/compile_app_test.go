package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stream-compiler-service/ddd/application/cqe"
	"stream-compiler-service/ddd/domain/entity"
	"stream-compiler-service/ddd/domain/vo"
	"stream-compiler-service/ddd/infrastructure/queue"
	"stream-compiler-service/pkg/errno"
)

type memoryJobRepo struct {
	jobs []*entity.CompileJobEntity
}

func (r *memoryJobRepo) CreateJob(ctx context.Context, job *entity.CompileJobEntity) error {
	r.jobs = append(r.jobs, job)
	return nil
}

func (r *memoryJobRepo) GetJobByUUID(ctx context.Context, jobUUID string) (*entity.CompileJobEntity, error) {
	for _, job := range r.jobs {
		if job.JobUUID() == jobUUID {
			return job, nil
		}
	}
	return nil, nil
}

func (r *memoryJobRepo) GetJobsByUserUUID(ctx context.Context, userUUID string, status vo.JobStatus, limit, offset int) ([]*entity.CompileJobEntity, error) {
	matched := r.jobsByUserAndStatus(userUUID, status)
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *memoryJobRepo) CountJobsByUserUUID(ctx context.Context, userUUID string, status vo.JobStatus) (int64, error) {
	return int64(len(r.jobsByUserAndStatus(userUUID, status))), nil
}

func (r *memoryJobRepo) jobsByUserAndStatus(userUUID string, status vo.JobStatus) []*entity.CompileJobEntity {
	var out []*entity.CompileJobEntity
	for _, job := range r.jobs {
		if job.UserUUID() != userUUID {
			continue
		}
		if status != "" && job.Status() != status {
			continue
		}
		out = append(out, job)
	}
	return out
}

func (r *memoryJobRepo) GetJobsByStatus(ctx context.Context, status vo.JobStatus, limit, offset int) ([]*entity.CompileJobEntity, error) {
	var out []*entity.CompileJobEntity
	for _, job := range r.jobs {
		if job.Status() == status {
			out = append(out, job)
		}
	}
	return out, nil
}

func (r *memoryJobRepo) UpdateJob(ctx context.Context, job *entity.CompileJobEntity) error {
	return nil
}

func (r *memoryJobRepo) CountJobsByStatus(ctx context.Context, status vo.JobStatus) (int64, error) {
	jobs, _ := r.GetJobsByStatus(ctx, status, 0, 0)
	return int64(len(jobs)), nil
}

func createReq(videoUUID string) *cqe.CreateCompileJobReq {
	return &cqe.CreateCompileJobReq{
		UserUUID:  "user-1",
		VideoUUID: videoUUID,
		Clips: []cqe.ClipInputReq{
			{ClipID: "clip-1", ObjectKey: "clips/clip-1.mp4"},
			{ClipID: "clip-2", ObjectKey: "clips/clip-2.mp4"},
		},
	}
}

func TestCompileApp_CreateEnqueuesJob(t *testing.T) {
	repo := &memoryJobRepo{}
	q := queue.NewMemoryJobQueue(10)
	svc := NewCompileAppWith(repo, q, nil)

	job, err := svc.CreateCompileJob(context.Background(), createReq("video-1"))
	require.NoError(t, err)
	assert.NotEmpty(t, job.JobUUID)
	assert.Equal(t, "idle", job.Status)
	assert.Equal(t, 1, q.Size())
	assert.Len(t, repo.jobs, 1)
}

func TestCompileApp_CreateIsIdempotentPerVideo(t *testing.T) {
	repo := &memoryJobRepo{}
	q := queue.NewMemoryJobQueue(10)
	svc := NewCompileAppWith(repo, q, nil)

	first, err := svc.CreateCompileJob(context.Background(), createReq("video-1"))
	require.NoError(t, err)
	second, err := svc.CreateCompileJob(context.Background(), createReq("video-1"))
	require.NoError(t, err)

	assert.Equal(t, first.JobUUID, second.JobUUID)
	assert.Equal(t, 1, q.Size())
	assert.Len(t, repo.jobs, 1)

	// 另一个成片照常新建
	third, err := svc.CreateCompileJob(context.Background(), createReq("video-2"))
	require.NoError(t, err)
	assert.NotEqual(t, first.JobUUID, third.JobUUID)
}

func TestCompileApp_QueueFullFailsJob(t *testing.T) {
	repo := &memoryJobRepo{}
	q := queue.NewMemoryJobQueue(1)
	svc := NewCompileAppWith(repo, q, nil)

	_, err := svc.CreateCompileJob(context.Background(), createReq("video-1"))
	require.NoError(t, err)

	_, err = svc.CreateCompileJob(context.Background(), createReq("video-2"))
	assert.ErrorIs(t, err, errno.ErrQueueFull)

	// 入队失败的作业落error终态，不会卡住后续重试
	failed, err := repo.GetJobsByStatus(context.Background(), vo.JobStatusError, 0, 0)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "video-2", failed[0].VideoUUID())
}

func TestCompileApp_CancelQueuedJob(t *testing.T) {
	repo := &memoryJobRepo{}
	q := queue.NewMemoryJobQueue(10)
	svc := NewCompileAppWith(repo, q, func(string) bool { return false })

	job, err := svc.CreateCompileJob(context.Background(), createReq("video-1"))
	require.NoError(t, err)

	require.NoError(t, svc.CancelCompileJob(context.Background(), job.JobUUID))
	stored, err := repo.GetJobByUUID(context.Background(), job.JobUUID)
	require.NoError(t, err)
	assert.Equal(t, vo.JobStatusCancelled, stored.Status())
}

func TestCompileApp_CancelRunningJobDelegatesToWorker(t *testing.T) {
	repo := &memoryJobRepo{}
	q := queue.NewMemoryJobQueue(10)
	cancelled := ""
	svc := NewCompileAppWith(repo, q, func(jobUUID string) bool {
		cancelled = jobUUID
		return true
	})

	job, err := svc.CreateCompileJob(context.Background(), createReq("video-1"))
	require.NoError(t, err)

	require.NoError(t, svc.CancelCompileJob(context.Background(), job.JobUUID))
	assert.Equal(t, job.JobUUID, cancelled)
	// Worker负责落终态，应用层不抢先改状态
	stored, _ := repo.GetJobByUUID(context.Background(), job.JobUUID)
	assert.Equal(t, vo.JobStatusIdle, stored.Status())
}

func TestCompileApp_CancelFinalJobRejected(t *testing.T) {
	repo := &memoryJobRepo{}
	q := queue.NewMemoryJobQueue(10)
	svc := NewCompileAppWith(repo, q, nil)

	job, err := svc.CreateCompileJob(context.Background(), createReq("video-1"))
	require.NoError(t, err)

	stored, _ := repo.GetJobByUUID(context.Background(), job.JobUUID)
	require.NoError(t, stored.Cancel())

	assert.ErrorIs(t, svc.CancelCompileJob(context.Background(), job.JobUUID), errno.ErrInvalidJobStatus)
}

func TestCompileApp_GetJobNotFound(t *testing.T) {
	svc := NewCompileAppWith(&memoryJobRepo{}, queue.NewMemoryJobQueue(1), nil)

	_, err := svc.GetCompileJob(context.Background(), "missing")
	assert.ErrorIs(t, err, errno.ErrCompileJobNotFound)

	_, err = svc.GetCompileProgress(context.Background(), "missing")
	assert.ErrorIs(t, err, errno.ErrCompileJobNotFound)
}

func TestCompileApp_ListFiltersByStatus(t *testing.T) {
	repo := &memoryJobRepo{}
	q := queue.NewMemoryJobQueue(10)
	svc := NewCompileAppWith(repo, q, nil)

	first, err := svc.CreateCompileJob(context.Background(), createReq("video-1"))
	require.NoError(t, err)
	_, err = svc.CreateCompileJob(context.Background(), createReq("video-2"))
	require.NoError(t, err)

	stored, _ := repo.GetJobByUUID(context.Background(), first.JobUUID)
	require.NoError(t, stored.Cancel())

	list, err := svc.ListCompileJobs(context.Background(), &cqe.ListCompileJobsReq{UserUUID: "user-1", Status: "cancelled"})
	require.NoError(t, err)
	require.Len(t, list.Jobs, 1)
	assert.Equal(t, first.JobUUID, list.Jobs[0].JobUUID)
	assert.Equal(t, int64(1), list.Total)

	_, err = svc.ListCompileJobs(context.Background(), &cqe.ListCompileJobsReq{UserUUID: "user-1", Status: "exploded"})
	assert.ErrorIs(t, err, errno.ErrInvalidJobStatus)
}

func TestCompileApp_ListPaginatesFilteredResults(t *testing.T) {
	repo := &memoryJobRepo{}
	q := queue.NewMemoryJobQueue(10)
	svc := NewCompileAppWith(repo, q, nil)

	var cancelledUUIDs []string
	for i, video := range []string{"video-1", "video-2", "video-3"} {
		job, err := svc.CreateCompileJob(context.Background(), createReq(video))
		require.NoError(t, err)
		if i < 2 {
			stored, _ := repo.GetJobByUUID(context.Background(), job.JobUUID)
			require.NoError(t, stored.Cancel())
			cancelledUUIDs = append(cancelledUUIDs, job.JobUUID)
		}
	}

	// 过滤后的分页每页都填满，Total是全量匹配数而非单页数
	page1, err := svc.ListCompileJobs(context.Background(), &cqe.ListCompileJobsReq{UserUUID: "user-1", Status: "cancelled", Page: 1, Size: 1})
	require.NoError(t, err)
	require.Len(t, page1.Jobs, 1)
	assert.Equal(t, int64(2), page1.Total)

	page2, err := svc.ListCompileJobs(context.Background(), &cqe.ListCompileJobsReq{UserUUID: "user-1", Status: "cancelled", Page: 2, Size: 1})
	require.NoError(t, err)
	require.Len(t, page2.Jobs, 1)
	assert.Equal(t, int64(2), page2.Total)

	assert.NotEqual(t, page1.Jobs[0].JobUUID, page2.Jobs[0].JobUUID)
	assert.ElementsMatch(t, cancelledUUIDs, []string{page1.Jobs[0].JobUUID, page2.Jobs[0].JobUUID})
}
