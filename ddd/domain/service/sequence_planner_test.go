package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stream-compiler-service/ddd/domain/vo"
	"stream-compiler-service/pkg/errno"
)

func scenarioDurations(t *testing.T, countdown float64) vo.DurationConfig {
	t.Helper()
	cfg, err := vo.NewDurationConfig(3, 2, 2, countdown, 3, 5)
	require.NoError(t, err)
	return *cfg
}

func scenarioClips() []vo.ClipInput {
	return []vo.ClipInput{
		{ClipID: "clip-1", ObjectKey: "clips/clip-1.mp4", DurationMs: 12000},
		{ClipID: "clip-2", ObjectKey: "clips/clip-2.mp4", DurationMs: 8500},
	}
}

func TestSequencePlanner_TwoClips(t *testing.T) {
	planner := NewSequencePlanner(nil)

	plan, err := planner.Plan(scenarioClips(), scenarioDurations(t, 10))
	require.NoError(t, err)

	// 1个GameReady + 2×6题目片段 + GameEnd哨兵
	assert.Len(t, plan.Segments, 14)
	assert.Equal(t, int64(67500), plan.TotalDurationMs)

	assert.Equal(t, vo.SegmentGameReady, plan.Segments[0].Kind)
	assert.Equal(t, vo.SegmentGameEnd, plan.Segments[len(plan.Segments)-1].Kind)
	assert.Equal(t, int64(0), plan.Segments[len(plan.Segments)-1].DurationMs)

	// 题目片段使用探测时长，不取配置
	q1 := plan.Segments[2]
	assert.Equal(t, vo.SegmentQuestion, q1.Kind)
	assert.Equal(t, 1, q1.QuestionNumber)
	assert.Equal(t, int64(12000), q1.DurationMs)
	assert.Equal(t, "clip-1", q1.Source.ClipID)

	q2 := plan.Segments[8]
	assert.Equal(t, vo.SegmentQuestion, q2.Kind)
	assert.Equal(t, int64(8500), q2.DurationMs)
}

func TestSequencePlanner_Contiguity(t *testing.T) {
	planner := NewSequencePlanner(nil)

	plan, err := planner.Plan(scenarioClips(), scenarioDurations(t, 10))
	require.NoError(t, err)

	assert.Equal(t, int64(0), plan.Segments[0].StartTimeMs)
	for i := 0; i < len(plan.Segments)-1; i++ {
		assert.Equal(t, plan.Segments[i].EndTimeMs(), plan.Segments[i+1].StartTimeMs,
			"segment %d must end where segment %d starts", i, i+1)
	}
}

func TestSequencePlanner_DurationConservation(t *testing.T) {
	planner := NewSequencePlanner(nil)

	plan, err := planner.Plan(scenarioClips(), scenarioDurations(t, 10))
	require.NoError(t, err)

	var sum int64
	for _, seg := range plan.Segments {
		sum += seg.DurationMs
	}
	assert.Equal(t, plan.TotalDurationMs, sum)
}

func TestSequencePlanner_Determinism(t *testing.T) {
	planner := NewSequencePlanner(nil)
	durations := scenarioDurations(t, 10)

	first, err := planner.Plan(scenarioClips(), durations)
	require.NoError(t, err)
	second, err := planner.Plan(scenarioClips(), durations)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSequencePlanner_QuestionCountOutOfRange(t *testing.T) {
	planner := NewSequencePlanner(nil)
	durations := scenarioDurations(t, 10)

	_, err := planner.Plan([]vo.ClipInput{{ClipID: "only", DurationMs: 5000}}, durations)
	require.Error(t, err)
	code, _ := errno.DecodeErr(err)
	assert.Equal(t, errno.ErrQuestionCountOutOfRange.Code, code)

	seven := make([]vo.ClipInput, 7)
	for i := range seven {
		seven[i] = vo.ClipInput{ClipID: "c", DurationMs: 1000}
	}
	_, err = planner.Plan(seven, durations)
	require.Error(t, err)
	code, _ = errno.DecodeErr(err)
	assert.Equal(t, errno.ErrQuestionCountOutOfRange.Code, code)
}

func TestSequencePlanner_UnprobedClipRejected(t *testing.T) {
	planner := NewSequencePlanner(nil)

	clips := scenarioClips()
	clips[1].DurationMs = 0
	_, err := planner.Plan(clips, scenarioDurations(t, 10))
	require.Error(t, err)
	code, _ := errno.DecodeErr(err)
	assert.Equal(t, errno.ErrNegativeDuration.Code, code)
}
