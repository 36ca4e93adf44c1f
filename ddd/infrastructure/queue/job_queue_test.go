package queue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stream-compiler-service/ddd/domain/entity"
	"stream-compiler-service/ddd/domain/vo"
)

func newQueueJob(t *testing.T, videoUUID string) *entity.CompileJobEntity {
	t.Helper()
	durations, err := vo.NewDurationConfig(3, 2, 2, 10, 3, 5)
	require.NoError(t, err)
	audio, err := vo.NewAudioConfig(true, 1.0, 0.3, "", 0, 0)
	require.NoError(t, err)
	output, err := vo.NewOutputSpec("1080p", vo.Aspect16x9, vo.ScaleFit, vo.QualityHigh, 30, 0, 0)
	require.NoError(t, err)

	clips := []vo.ClipInput{
		{ClipID: "clip-1", ObjectKey: "clips/clip-1.mp4"},
		{ClipID: "clip-2", ObjectKey: "clips/clip-2.mp4"},
	}
	return entity.NewCompileJobEntity("user-1", videoUUID, clips, *durations, *audio, *output)
}

func TestMemoryJobQueue_EnqueueDequeue(t *testing.T) {
	q := NewMemoryJobQueue(2)
	job := newQueueJob(t, "video-1")

	require.NoError(t, q.Enqueue(context.Background(), job))
	assert.Equal(t, 1, q.Size())

	got, err := q.TryDequeue(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, job.JobUUID(), got.JobUUID())

	// 空队列非阻塞出队返回nil而不是错误
	got, err = q.TryDequeue(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryJobQueue_FullRejectsImmediately(t *testing.T) {
	q := NewMemoryJobQueue(1)

	require.NoError(t, q.Enqueue(context.Background(), newQueueJob(t, "video-1")))
	err := q.Enqueue(context.Background(), newQueueJob(t, "video-2"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "full")
	assert.Equal(t, 1, q.Size())
}

func TestMemoryJobQueue_MetricsSnapshot(t *testing.T) {
	q := NewMemoryJobQueue(2)
	mq, ok := q.(*MemoryJobQueue)
	require.True(t, ok)

	require.NoError(t, q.Enqueue(context.Background(), newQueueJob(t, "video-1")))
	require.NoError(t, q.Enqueue(context.Background(), newQueueJob(t, "video-2")))
	_, err := q.TryDequeue(context.Background())
	require.NoError(t, err)

	m := mq.GetMetrics()
	assert.Equal(t, uint64(2), m.EnqueueCount)
	assert.Equal(t, uint64(1), m.DequeueCount)
	assert.Equal(t, 2, m.MaxSize)
	assert.Equal(t, 1, m.CurrentSize)

	// 快照是普通值，拿到后不随队列变化
	snapshot := m
	_, err = q.TryDequeue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), snapshot.DequeueCount)
	assert.Equal(t, uint64(2), mq.GetMetrics().DequeueCount)
}

func TestMemoryJobQueue_ClosedQueueRejects(t *testing.T) {
	q := NewMemoryJobQueue(1)
	require.NoError(t, q.Close())
	assert.True(t, q.IsClosed())

	assert.Error(t, q.Enqueue(context.Background(), newQueueJob(t, "video-1")))
	_, err := q.TryDequeue(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 0, q.Size())
}
