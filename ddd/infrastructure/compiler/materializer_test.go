package compiler

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stream-compiler-service/ddd/domain/vo"
)

func testOutputSpec(t *testing.T) vo.OutputSpec {
	t.Helper()
	spec, err := vo.NewOutputSpec("1080p", vo.Aspect16x9, vo.ScaleFit, vo.QualityHigh, 30, 0, 0)
	require.NoError(t, err)
	return *spec
}

func testAudioConfig(t *testing.T) vo.AudioConfig {
	t.Helper()
	cfg, err := vo.NewAudioConfig(true, 1.0, 0.3, "", 0, 0)
	require.NoError(t, err)
	return *cfg
}

func questionSegment() vo.PlannedSegment {
	return vo.PlannedSegment{
		Kind:           vo.SegmentQuestion,
		QuestionNumber: 1,
		StartTimeMs:    5000,
		DurationMs:     12000,
		Source:         vo.ClipSource{ClipID: "clip-1"},
	}
}

func overlaySegment(kind vo.SegmentKind, durationMs int64) vo.PlannedSegment {
	return vo.PlannedSegment{
		Kind:           kind,
		QuestionNumber: 1,
		DurationMs:     durationMs,
		Source:         vo.ClipSource{OverlayKey: kind.String()},
	}
}

func TestMaterialize_ClipPreservesOriginalAudio(t *testing.T) {
	engine := newFakeEngine()
	m := NewSegmentMaterializer("ultrafast")

	result, err := m.Materialize(context.Background(), engine, questionSegment(), "clip_clip-1.mp4", testOutputSpec(t), testAudioConfig(t), nil)
	require.NoError(t, err)

	assert.False(t, result.Fallback)
	assert.Equal(t, "seg_question_q1.mp4", result.OutputName)
	require.Equal(t, 1, engine.runCount())

	args := engine.lastRun()
	assert.True(t, argsContain(args, "/work/clip_clip-1.mp4"))
	// 保留原声时不注入静音轨，也不截断自然时长
	assert.False(t, argsContain(args, "anullsrc"))
	assert.False(t, argsContain(args, "-t"))
	assert.True(t, argsContain(args, "libx264"))
	assert.True(t, argsContain(args, "yuv420p"))
}

func TestMaterialize_OverlayUsesConfiguredDuration(t *testing.T) {
	engine := newFakeEngine()
	m := NewSegmentMaterializer("ultrafast")

	result, err := m.Materialize(context.Background(), engine, overlaySegment(vo.SegmentCountdown, 10000), "overlay_countdown_q1.mp4", testOutputSpec(t), testAudioConfig(t), nil)
	require.NoError(t, err)

	assert.False(t, result.Fallback)
	args := engine.lastRun()
	// 转场素材静音并按配置时长截断
	assert.True(t, argsContain(args, "anullsrc"))
	assert.Contains(t, args, "-t")
	assert.Contains(t, args, "10.000")
}

func TestMaterialize_ScaleModes(t *testing.T) {
	assert.Equal(t, "scale=1920:1080:force_original_aspect_ratio=decrease,pad=1920:1080:(ow-iw)/2:(oh-ih)/2:black", scaleFilter(1920, 1080, vo.ScaleFit))
	assert.Equal(t, "scale=1920:1080:force_original_aspect_ratio=increase,crop=1920:1080", scaleFilter(1920, 1080, vo.ScaleFill))
	assert.Equal(t, "scale=1920:1080", scaleFilter(1920, 1080, vo.ScaleStretch))
}

func TestMaterialize_FallbackOnTranscodeFailure(t *testing.T) {
	engine := newFakeEngine()
	engine.failWhen = func(args []string) bool {
		// 只让常规转码失败，兜底合成放行
		return !argsContain(args, "color=c=blue")
	}
	m := NewSegmentMaterializer("ultrafast")

	result, err := m.Materialize(context.Background(), engine, questionSegment(), "clip_clip-1.mp4", testOutputSpec(t), testAudioConfig(t), nil)
	require.NoError(t, err)

	assert.True(t, result.Fallback)
	require.Equal(t, 2, engine.runCount())
	assert.True(t, argsContain(engine.lastRun(), "color=c=blue"))
}

func TestMaterialize_FallbackDurationCapped(t *testing.T) {
	engine := newFakeEngine()
	m := NewSegmentMaterializer("ultrafast")

	seg := questionSegment()
	seg.DurationMs = 60000
	result, err := m.Materialize(context.Background(), engine, seg, "", testOutputSpec(t), testAudioConfig(t), nil)
	require.NoError(t, err)

	assert.True(t, result.Fallback)
	args := engine.lastRun()
	assert.True(t, argsContain(args, "d=10.000"))
	assert.False(t, argsContain(args, "d=60.000"))
}

func TestMaterialize_MissingSourceSynthesizesDirectly(t *testing.T) {
	engine := newFakeEngine()
	m := NewSegmentMaterializer("ultrafast")

	result, err := m.Materialize(context.Background(), engine, overlaySegment(vo.SegmentGameReady, 3000), "", testOutputSpec(t), testAudioConfig(t), nil)
	require.NoError(t, err)

	assert.True(t, result.Fallback)
	require.Equal(t, 1, engine.runCount())
	assert.True(t, argsContain(engine.lastRun(), "color=c=blue"))
}

func TestMaterialize_FallbackFailureReturnsError(t *testing.T) {
	engine := newFakeEngine()
	engine.failWhen = func([]string) bool { return true }
	m := NewSegmentMaterializer("ultrafast")

	_, err := m.Materialize(context.Background(), engine, questionSegment(), "clip_clip-1.mp4", testOutputSpec(t), testAudioConfig(t), nil)
	require.Error(t, err)
	// 常规与兜底各尝试一次，不再重试
	assert.Equal(t, 2, engine.runCount())
	assert.True(t, strings.Contains(err.Error(), "fallback"))
}

func TestMaterialize_CancelledContextSkipsFallback(t *testing.T) {
	engine := newFakeEngine()
	ctx, cancel := context.WithCancel(context.Background())
	engine.runHook = func([]string) { cancel() }
	m := NewSegmentMaterializer("ultrafast")

	_, err := m.Materialize(ctx, engine, questionSegment(), "clip_clip-1.mp4", testOutputSpec(t), testAudioConfig(t), nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, engine.runCount())
}
