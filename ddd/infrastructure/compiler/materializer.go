package compiler

import (
	"context"
	"fmt"
	"strconv"

	"stream-compiler-service/ddd/domain/port"
	"stream-compiler-service/ddd/domain/vo"
	"stream-compiler-service/pkg/logger"
)

// FallbackCapMs 兜底片段的时长安全上限
const FallbackCapMs int64 = 10000

// MaterializedSegment 已物化的片段，文件位于作业工作区内
type MaterializedSegment struct {
	Segment    vo.PlannedSegment
	OutputName string
	Fallback   bool
}

// SegmentMaterializer 片段物化服务：把一个计划片段转码成编码参数统一的规格化片段。
// 转码失败时用兜底合成顶替，绝不让单个片段失败拖垮整个作业。
type SegmentMaterializer interface {
	Materialize(ctx context.Context, engine port.MediaEngine, segment vo.PlannedSegment, sourceName string, output vo.OutputSpec, audio vo.AudioConfig, progressCb port.ProgressCallback) (*MaterializedSegment, error)
}

type segmentMaterializerImpl struct {
	preset string
}

// NewSegmentMaterializer 创建片段物化服务
func NewSegmentMaterializer(preset string) SegmentMaterializer {
	if preset == "" {
		preset = "ultrafast"
	}
	return &segmentMaterializerImpl{preset: preset}
}

// Materialize 物化一个片段。sourceName为空或转码失败时走兜底合成，
// 每个片段至多兜底一次，兜底也失败才返回错误。
func (m *segmentMaterializerImpl) Materialize(ctx context.Context, engine port.MediaEngine, segment vo.PlannedSegment, sourceName string, output vo.OutputSpec, audio vo.AudioConfig, progressCb port.ProgressCallback) (*MaterializedSegment, error) {
	outputName := segmentOutputName(segment)
	result := &MaterializedSegment{Segment: segment, OutputName: outputName}

	if sourceName != "" {
		err := m.transcode(ctx, engine, segment, sourceName, outputName, output, audio, progressCb)
		if err == nil {
			if size, sizeErr := engine.FileSize(ctx, outputName); sizeErr == nil && size > 0 {
				return result, nil
			}
			err = fmt.Errorf("empty output for segment %s", segment.Kind)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warnf("segment transcode failed, synthesizing fallback kind=%s question=%d err=%v", segment.Kind, segment.QuestionNumber, err)
	} else {
		logger.Warnf("segment source missing, synthesizing fallback kind=%s question=%d", segment.Kind, segment.QuestionNumber)
	}

	if err := m.synthesizeFallback(ctx, engine, segment, outputName, output); err != nil {
		return nil, fmt.Errorf("fallback synthesis for segment %s: %w", segment.Kind, err)
	}
	if size, err := engine.FileSize(ctx, outputName); err != nil || size == 0 {
		return nil, fmt.Errorf("fallback produced empty output for segment %s", segment.Kind)
	}
	result.Fallback = true
	return result, nil
}

// transcode 规格化转码：缩放加黑边、可选时长截断、统一编码参数、保证音轨存在
func (m *segmentMaterializerImpl) transcode(ctx context.Context, engine port.MediaEngine, segment vo.PlannedSegment, sourceName, outputName string, output vo.OutputSpec, audio vo.AudioConfig, progressCb port.ProgressCallback) error {
	width, height := output.Dimensions()
	preserveAudio := audio.PreserveOriginal && segment.Source.IsClip()

	args := []string{"-i", engine.WorkspacePath(sourceName)}
	if !preserveAudio {
		// 叠加素材不保留原声，注入标准规格的静音轨
		args = append(args, "-f", "lavfi", "-i", "anullsrc=channel_layout=stereo:sample_rate=48000")
	}

	args = append(args, "-vf", scaleFilter(width, height, output.ScaleMode))

	// 叠加素材按配置时长截断，题目片段直接用其自然时长
	if segment.Source.IsClip() {
		if !preserveAudio {
			args = append(args, "-map", "0:v", "-map", "1:a", "-shortest")
		}
	} else {
		args = append(args, "-t", formatSeconds(segment.DurationMs))
		if !preserveAudio {
			args = append(args, "-map", "0:v", "-map", "1:a")
		}
	}

	args = append(args, videoCodecArgs(m.preset, output)...)
	if preserveAudio && audio.OriginalVolume != 1.0 {
		args = append(args, "-af", fmt.Sprintf("volume=%.2f", audio.OriginalVolume))
	}
	args = append(args, audioCodecArgs()...)
	args = append(args, "-y", engine.WorkspacePath(outputName))

	return engine.Run(ctx, args, port.RunOptions{
		ProgressCb:      progressCb,
		TotalDurationMs: segment.DurationMs,
	})
}

// synthesizeFallback 生成同参数的纯色静音兜底片段，时长有安全上限
func (m *segmentMaterializerImpl) synthesizeFallback(ctx context.Context, engine port.MediaEngine, segment vo.PlannedSegment, outputName string, output vo.OutputSpec) error {
	width, height := output.Dimensions()
	durationMs := segment.DurationMs
	if durationMs > FallbackCapMs {
		durationMs = FallbackCapMs
	}
	if durationMs <= 0 {
		durationMs = 1000
	}
	duration := formatSeconds(durationMs)

	args := []string{
		"-f", "lavfi", "-i", fmt.Sprintf("color=c=blue:s=%dx%d:d=%s:r=%d", width, height, duration, output.FrameRate),
		"-f", "lavfi", "-i", "anullsrc=channel_layout=stereo:sample_rate=48000",
		"-t", duration,
	}
	args = append(args, videoCodecArgs(m.preset, output)...)
	args = append(args, audioCodecArgs()...)
	args = append(args, "-shortest", "-y", engine.WorkspacePath(outputName))

	return engine.Run(ctx, args, port.RunOptions{TotalDurationMs: durationMs})
}

// scaleFilter 按缩放模式生成视频滤镜
func scaleFilter(width, height int, mode vo.ScaleMode) string {
	switch mode {
	case vo.ScaleFill:
		return fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d", width, height, width, height)
	case vo.ScaleStretch:
		return fmt.Sprintf("scale=%d:%d", width, height)
	default:
		// fit：保持宽高比缩放并加黑边填充
		return fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:black", width, height, width, height)
	}
}

func videoCodecArgs(preset string, output vo.OutputSpec) []string {
	return []string{
		"-c:v", "libx264",
		"-preset", preset,
		"-crf", strconv.Itoa(output.CRF()),
		"-pix_fmt", "yuv420p",
		"-r", strconv.Itoa(output.FrameRate),
	}
}

func audioCodecArgs() []string {
	return []string{
		"-c:a", "aac",
		"-b:a", "128k",
		"-ar", "48000",
		"-ac", "2",
	}
}

// formatSeconds 毫秒转为ffmpeg时长参数（秒，保留3位小数）
func formatSeconds(ms int64) string {
	return strconv.FormatFloat(float64(ms)/1000.0, 'f', 3, 64)
}

// segmentOutputName 片段产物文件名，按计划顺序稳定编号
func segmentOutputName(segment vo.PlannedSegment) string {
	if segment.QuestionNumber > 0 {
		return fmt.Sprintf("seg_%s_q%d.mp4", segment.Kind, segment.QuestionNumber)
	}
	return fmt.Sprintf("seg_%s.mp4", segment.Kind)
}
