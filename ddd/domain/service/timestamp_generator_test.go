package service

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stream-compiler-service/ddd/domain/vo"
)

func TestTimestampGenerator_MatchesPlannerClock(t *testing.T) {
	planner := NewSequencePlanner(nil)
	generator := NewTimestampGenerator(nil)
	durations := scenarioDurations(t, 10)

	plan, err := planner.Plan(scenarioClips(), durations)
	require.NoError(t, err)
	session, err := generator.Generate("sess-1", "video-1", scenarioClips(), durations)
	require.NoError(t, err)

	assert.Equal(t, plan.TotalDurationMs, session.TotalDurationMs)
	assert.Equal(t, 2, session.QuestionCount)

	// question_start/question_end 必须与Question片段边界完全一致
	for _, seg := range plan.Segments {
		if seg.Kind != vo.SegmentQuestion {
			continue
		}
		var start, end *vo.GameEvent
		for i := range session.Events {
			e := &session.Events[i]
			if e.QuestionNumber != seg.QuestionNumber {
				continue
			}
			switch e.Type {
			case vo.EventQuestionStart:
				start = e
			case vo.EventQuestionEnd:
				end = e
			}
		}
		require.NotNil(t, start)
		require.NotNil(t, end)
		assert.Equal(t, seg.StartTimeMs, start.TimestampMs)
		assert.Equal(t, seg.DurationMs, start.DurationMs)
		assert.Equal(t, seg.EndTimeMs(), end.TimestampMs)
	}
}

func TestTimestampGenerator_EventsNonDecreasing(t *testing.T) {
	generator := NewTimestampGenerator(nil)

	session, err := generator.Generate("sess-1", "video-1", scenarioClips(), scenarioDurations(t, 10))
	require.NoError(t, err)

	assert.True(t, sort.SliceIsSorted(session.Events, func(i, j int) bool {
		return session.Events[i].TimestampMs < session.Events[j].TimestampMs
	}))
}

func TestTimestampGenerator_CountdownTicks(t *testing.T) {
	generator := NewTimestampGenerator(nil)

	// 场景B：倒计时5秒，每题恰好5个tick，值依次为5..1
	session, err := generator.Generate("sess-1", "video-1", scenarioClips(), scenarioDurations(t, 5))
	require.NoError(t, err)

	for question := 1; question <= 2; question++ {
		var start *vo.GameEvent
		var ticks []vo.GameEvent
		for i := range session.Events {
			e := session.Events[i]
			if e.QuestionNumber != question {
				continue
			}
			switch e.Type {
			case vo.EventCountdownStart:
				start = &session.Events[i]
			case vo.EventCountdownTick:
				ticks = append(ticks, e)
			}
		}
		require.NotNil(t, start, "question %d", question)
		require.Len(t, ticks, 5, "question %d", question)

		for i, tick := range ticks {
			expectedValue := 5 - i
			assert.Equal(t, expectedValue, tick.Metadata["countdown_value"], "question %d tick %d", question, i)
			assert.Equal(t, start.TimestampMs+int64(i)*1000, tick.TimestampMs)
			assert.Equal(t, int64(1000), tick.DurationMs)
		}
		// tick之间严格连续无空隙
		for i := 0; i < len(ticks)-1; i++ {
			assert.Equal(t, ticks[i].EndTimeMs(), ticks[i+1].TimestampMs)
		}
	}
}

func TestTimestampGenerator_Determinism(t *testing.T) {
	generator := NewTimestampGenerator(nil)
	durations := scenarioDurations(t, 10)

	first, err := generator.Generate("sess-1", "video-1", scenarioClips(), durations)
	require.NoError(t, err)
	second, err := generator.Generate("sess-1", "video-1", scenarioClips(), durations)
	require.NoError(t, err)

	assert.Equal(t, first.Events, second.Events)
	assert.Equal(t, first.TotalDurationMs, second.TotalDurationMs)
}

func TestTimestampGenerator_EventIDsUnique(t *testing.T) {
	generator := NewTimestampGenerator(nil)

	session, err := generator.Generate("sess-1", "video-1", scenarioClips(), scenarioDurations(t, 10))
	require.NoError(t, err)

	seen := make(map[string]bool, len(session.Events))
	for _, e := range session.Events {
		assert.False(t, seen[e.ID], "duplicate event id %s", e.ID)
		seen[e.ID] = true
	}
}

func TestGameSession_JoinContext(t *testing.T) {
	generator := NewTimestampGenerator(nil)

	session, err := generator.Generate("sess-1", "video-1", scenarioClips(), scenarioDurations(t, 10))
	require.NoError(t, err)

	// game_ready为3s，question_ready为2s：6s时第一题正在播放
	videoStart := int64(1_000_000)
	ctx := session.JoinContextAt(videoStart+6000, videoStart)
	require.NotNil(t, ctx.CurrentEvent)
	assert.Equal(t, vo.EventQuestionStart, ctx.CurrentEvent.Type)
	assert.True(t, ctx.ShouldShowQuestion)
	assert.Equal(t, 1, ctx.QuestionNumber)
	assert.Equal(t, int64(1000), ctx.TimeInCurrentMs)

	// 成片结束之后没有当前事件
	after := session.JoinContextAt(videoStart+session.TotalDurationMs+1, videoStart)
	assert.Nil(t, after.CurrentEvent)

	// 开播之前没有当前事件，下一个事件是game_start
	before := session.JoinContextAt(videoStart-500, videoStart)
	assert.Nil(t, before.CurrentEvent)
	require.NotNil(t, before.NextEvent)
}
