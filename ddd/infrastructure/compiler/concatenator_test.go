package compiler

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stream-compiler-service/ddd/domain/vo"
)

func materializedFixture(names ...string) []MaterializedSegment {
	segments := make([]MaterializedSegment, 0, len(names))
	for _, name := range names {
		segments = append(segments, MaterializedSegment{OutputName: name})
	}
	return segments
}

func TestConcat_ManifestFollowsPlanOrder(t *testing.T) {
	engine := newFakeEngine()
	c := NewConcatenator()

	segments := materializedFixture("seg_game_ready.mp4", "seg_question_q1.mp4", "seg_leaderboard_q1.mp4")
	err := c.Concat(context.Background(), engine, segments, testAudioConfig(t), "", "final.mp4", 20000)
	require.NoError(t, err)

	manifest, err := engine.ReadOutput(context.Background(), "concat_manifest.txt")
	require.NoError(t, err)
	expected := "file '/work/seg_game_ready.mp4'\n" +
		"file '/work/seg_question_q1.mp4'\n" +
		"file '/work/seg_leaderboard_q1.mp4'\n"
	assert.Equal(t, expected, string(manifest))

	// 无背景音时只拼接一次，视频流拷贝不重编码
	require.Equal(t, 1, engine.runCount())
	args := engine.lastRun()
	assert.True(t, argsContain(args, "concat"))
	assert.Contains(t, args, "copy")
	assert.True(t, engine.hasFile("final.mp4"))
}

func TestConcat_BackgroundMix(t *testing.T) {
	engine := newFakeEngine()
	c := NewConcatenator()

	audio, err := vo.NewAudioConfig(true, 0.8, 0.25, "tracks/bgm.mp3", 2, 3)
	require.NoError(t, err)

	err = c.Concat(context.Background(), engine, materializedFixture("seg_question_q1.mp4"), *audio, "background.mp3", "final.mp4", 30000)
	require.NoError(t, err)

	require.Equal(t, 2, engine.runCount())
	args := engine.lastRun()
	assert.True(t, argsContain(args, "amix=inputs=2:duration=first"))
	assert.True(t, argsContain(args, "volume=0.25"))
	assert.True(t, argsContain(args, "afade=t=in:st=0:d=2.00"))
	assert.True(t, argsContain(args, "afade=t=out:st=27.00:d=3.00"))
	assert.True(t, engine.hasFile("final.mp4"))
	// 中间产物已清理
	assert.False(t, engine.hasFile("concat_plain.mp4"))
}

func TestConcat_MixFailureDegradesToPlainOutput(t *testing.T) {
	engine := newFakeEngine()
	engine.failWhen = func(args []string) bool {
		return argsContain(args, "amix")
	}
	c := NewConcatenator()

	audio, err := vo.NewAudioConfig(true, 1.0, 0.3, "tracks/bgm.mp3", 0, 0)
	require.NoError(t, err)

	err = c.Concat(context.Background(), engine, materializedFixture("seg_question_q1.mp4"), *audio, "background.mp3", "final.mp4", 30000)
	require.NoError(t, err)

	// 背景音失败不拖垮作业，纯拼接产物顶上
	assert.True(t, engine.hasFile("final.mp4"))
	assert.Equal(t, 2, engine.runCount())
}

func TestConcat_MissingBackgroundSkipsMix(t *testing.T) {
	engine := newFakeEngine()
	c := NewConcatenator()

	audio, err := vo.NewAudioConfig(true, 1.0, 0.3, "tracks/bgm.mp3", 0, 0)
	require.NoError(t, err)

	// 背景音轨文件未能落位（空名），直接出纯拼接成片
	err = c.Concat(context.Background(), engine, materializedFixture("seg_question_q1.mp4"), *audio, "", "final.mp4", 30000)
	require.NoError(t, err)
	assert.Equal(t, 1, engine.runCount())
	assert.True(t, engine.hasFile("final.mp4"))
}

func TestConcat_EmptySegmentsRejected(t *testing.T) {
	engine := newFakeEngine()
	c := NewConcatenator()

	err := c.Concat(context.Background(), engine, nil, testAudioConfig(t), "", "final.mp4", 0)
	require.Error(t, err)
	assert.Equal(t, 0, engine.runCount())
}

func TestConcat_ManySegments(t *testing.T) {
	engine := newFakeEngine()
	c := NewConcatenator()

	names := make([]string, 0, 14)
	for i := 0; i < 14; i++ {
		names = append(names, fmt.Sprintf("seg_%02d.mp4", i))
	}
	err := c.Concat(context.Background(), engine, materializedFixture(names...), testAudioConfig(t), "", "final.mp4", 67500)
	require.NoError(t, err)

	manifest, err := engine.ReadOutput(context.Background(), "concat_manifest.txt")
	require.NoError(t, err)
	for _, name := range names {
		assert.Contains(t, string(manifest), name)
	}
}
