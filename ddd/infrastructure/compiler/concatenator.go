package compiler

import (
	"context"
	"fmt"
	"strings"

	"stream-compiler-service/ddd/domain/port"
	"stream-compiler-service/ddd/domain/vo"
	"stream-compiler-service/pkg/logger"
)

const (
	concatManifestName = "concat_manifest.txt"
	concatPlainName    = "concat_plain.mp4"
)

// Concatenator 拼接服务：把物化片段按计划顺序无损拼接为单一成片，
// 可选混入背景音轨。背景混音失败时降级为纯拼接，绝不因此丢整个作业。
type Concatenator interface {
	Concat(ctx context.Context, engine port.MediaEngine, segments []MaterializedSegment, audio vo.AudioConfig, backgroundName, outputName string, totalDurationMs int64) error
}

type concatenatorImpl struct{}

// NewConcatenator 创建拼接服务
func NewConcatenator() Concatenator {
	return &concatenatorImpl{}
}

func (c *concatenatorImpl) Concat(ctx context.Context, engine port.MediaEngine, segments []MaterializedSegment, audio vo.AudioConfig, backgroundName, outputName string, totalDurationMs int64) error {
	if len(segments) == 0 {
		return fmt.Errorf("nothing to concatenate")
	}

	// 拼接清单按计划顺序引用各片段文件
	var manifest strings.Builder
	for _, seg := range segments {
		fmt.Fprintf(&manifest, "file '%s'\n", engine.WorkspacePath(seg.OutputName))
	}
	if err := engine.WriteInput(ctx, concatManifestName, []byte(manifest.String())); err != nil {
		return fmt.Errorf("write concat manifest: %w", err)
	}

	withBackground := backgroundName != "" && audio.HasBackgroundTrack()
	plainTarget := outputName
	if withBackground {
		plainTarget = concatPlainName
	}

	// 所有片段编码参数已由物化阶段统一，视频流直接拷贝不再编码
	if err := c.concatPlain(ctx, engine, plainTarget, totalDurationMs); err != nil {
		return fmt.Errorf("concat segments: %w", err)
	}
	if !withBackground {
		return nil
	}

	if err := c.mixBackground(ctx, engine, plainTarget, backgroundName, outputName, audio, totalDurationMs); err != nil {
		// 背景音是可选增强，混音失败退回纯拼接产物
		logger.Warnf("background mix failed, delivering plain concat output err=%v", err)
		data, readErr := engine.ReadOutput(ctx, plainTarget)
		if readErr != nil {
			return fmt.Errorf("read plain concat output: %w", readErr)
		}
		if writeErr := engine.WriteInput(ctx, outputName, data); writeErr != nil {
			return fmt.Errorf("promote plain concat output: %w", writeErr)
		}
	}
	_ = engine.Remove(ctx, concatPlainName)
	return nil
}

func (c *concatenatorImpl) concatPlain(ctx context.Context, engine port.MediaEngine, outputName string, totalDurationMs int64) error {
	args := []string{
		"-f", "concat",
		"-safe", "0",
		"-i", engine.WorkspacePath(concatManifestName),
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "128k",
		"-y", engine.WorkspacePath(outputName),
	}
	return engine.Run(ctx, args, port.RunOptions{TotalDurationMs: totalDurationMs})
}

// mixBackground 把背景音轨按配置音量与原声混合，成片时长为准截断
func (c *concatenatorImpl) mixBackground(ctx context.Context, engine port.MediaEngine, inputName, backgroundName, outputName string, audio vo.AudioConfig, totalDurationMs int64) error {
	background := fmt.Sprintf("[1:a]volume=%.2f", audio.BackgroundVolume)
	if audio.FadeInSeconds > 0 {
		background += fmt.Sprintf(",afade=t=in:st=0:d=%.2f", audio.FadeInSeconds)
	}
	if audio.FadeOutSeconds > 0 {
		fadeStart := float64(totalDurationMs)/1000.0 - audio.FadeOutSeconds
		if fadeStart > 0 {
			background += fmt.Sprintf(",afade=t=out:st=%.2f:d=%.2f", fadeStart, audio.FadeOutSeconds)
		}
	}
	filter := fmt.Sprintf("%s[bg];[0:a]volume=%.2f[orig];[bg][orig]amix=inputs=2:duration=first:dropout_transition=0[mixed]",
		background, audio.OriginalVolume)

	args := []string{
		"-i", engine.WorkspacePath(inputName),
		"-i", engine.WorkspacePath(backgroundName),
		"-filter_complex", filter,
		"-map", "0:v",
		"-map", "[mixed]",
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "128k",
		"-shortest",
		"-y", engine.WorkspacePath(outputName),
	}
	return engine.Run(ctx, args, port.RunOptions{TotalDurationMs: totalDurationMs})
}
