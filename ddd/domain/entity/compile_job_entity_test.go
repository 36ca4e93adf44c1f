package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stream-compiler-service/ddd/domain/vo"
)

func newJob(t *testing.T) *CompileJobEntity {
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
	return NewCompileJobEntity("user-1", "video-1", clips, *durations, *audio, *output)
}

func TestCompileJob_NewDefaults(t *testing.T) {
	job := newJob(t)

	assert.NotEmpty(t, job.JobUUID())
	assert.Equal(t, vo.JobStatusIdle, job.Status())
	assert.Equal(t, 2, job.QuestionCount())
	assert.Zero(t, job.Progress())
	assert.Nil(t, job.StartedAt())
	assert.Nil(t, job.CompletedAt())
}

func TestCompileJob_PipelineTransitions(t *testing.T) {
	job := newJob(t)

	for _, status := range []vo.JobStatus{
		vo.JobStatusProbing,
		vo.JobStatusPlanning,
		vo.JobStatusMaterializing,
		vo.JobStatusConcatenating,
		vo.JobStatusFinalizing,
	} {
		require.NoError(t, job.TransitionTo(status))
		assert.Equal(t, status, job.Status())
	}
	require.NotNil(t, job.StartedAt())

	require.NoError(t, job.Complete("compiled/video-1/out.mp4", "session-1"))
	assert.Equal(t, vo.JobStatusComplete, job.Status())
	assert.Equal(t, 100, job.Progress())
	assert.Equal(t, "compiled/video-1/out.mp4", job.OutputKey())
	assert.Equal(t, "session-1", job.SessionUUID())
	require.NotNil(t, job.CompletedAt())
}

func TestCompileJob_SkippingStagesRejected(t *testing.T) {
	job := newJob(t)

	err := job.TransitionTo(vo.JobStatusMaterializing)
	require.Error(t, err)
	assert.Equal(t, vo.JobStatusIdle, job.Status())

	err = job.Complete("out.mp4", "session-1")
	require.Error(t, err)
	assert.Empty(t, job.OutputKey())
}

func TestCompileJob_FailFromAnyActiveStage(t *testing.T) {
	job := newJob(t)
	require.NoError(t, job.TransitionTo(vo.JobStatusProbing))

	require.NoError(t, job.Fail("moov atom not found"))
	assert.Equal(t, vo.JobStatusError, job.Status())
	assert.Equal(t, "moov atom not found", job.ErrorMessage())
	require.NotNil(t, job.CompletedAt())

	// 终态不可再推进
	assert.Error(t, job.TransitionTo(vo.JobStatusCancelled))
	assert.Error(t, job.Cancel())
}

func TestCompileJob_CancelIsNotError(t *testing.T) {
	job := newJob(t)
	require.NoError(t, job.TransitionTo(vo.JobStatusProbing))
	require.NoError(t, job.TransitionTo(vo.JobStatusPlanning))

	require.NoError(t, job.Cancel())
	assert.Equal(t, vo.JobStatusCancelled, job.Status())
	assert.Empty(t, job.ErrorMessage())
}

func TestCompileJob_ProbedDurationImmutable(t *testing.T) {
	job := newJob(t)

	require.NoError(t, job.SetProbedDuration("clip-1", 12000))
	assert.Equal(t, int64(12000), job.Clips()[0].DurationMs)

	assert.Error(t, job.SetProbedDuration("clip-1", 9000))
	assert.Equal(t, int64(12000), job.Clips()[0].DurationMs)

	assert.Error(t, job.SetProbedDuration("clip-9", 1000))
}

func TestCompileJob_ProgressBounds(t *testing.T) {
	job := newJob(t)

	require.NoError(t, job.UpdateProgress(42))
	assert.Equal(t, 42, job.Progress())

	assert.Error(t, job.UpdateProgress(-1))
	assert.Error(t, job.UpdateProgress(101))
	assert.Equal(t, 42, job.Progress())
}

func TestCompileJob_RecordFallback(t *testing.T) {
	job := newJob(t)

	job.RecordFallback(3)
	job.RecordFallback(7)
	assert.Equal(t, []int{3, 7}, job.Fallbacks())
}
