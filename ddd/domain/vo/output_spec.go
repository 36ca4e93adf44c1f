package vo

import (
	"fmt"

	"stream-compiler-service/pkg/errno"
)

// AspectRatio 画幅模式
type AspectRatio string

const (
	AspectOriginal AspectRatio = "original"
	Aspect16x9     AspectRatio = "16:9"
	Aspect9x16     AspectRatio = "9:16"
	Aspect4x5      AspectRatio = "4:5"
	Aspect5x4      AspectRatio = "5:4"
	Aspect1x1      AspectRatio = "1:1"
	AspectCustom   AspectRatio = "custom"
)

// ScaleMode 缩放模式
type ScaleMode string

const (
	ScaleFit     ScaleMode = "fit"
	ScaleFill    ScaleMode = "fill"
	ScaleStretch ScaleMode = "stretch"
)

// Quality 画质档位
type Quality string

const (
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
	QualityUltra  Quality = "ultra"
)

// OutputSpec 输出画面参数值对象
type OutputSpec struct {
	Resolution   string // 720p / 1080p / 4k
	AspectRatio  AspectRatio
	ScaleMode    ScaleMode
	Quality      Quality
	FrameRate    int
	CustomWidth  int
	CustomHeight int
	SourceWidth  int // original画幅探测到的首个素材宽度
	SourceHeight int
}

// NewOutputSpec 创建输出参数并校验
func NewOutputSpec(resolution string, aspect AspectRatio, scale ScaleMode, quality Quality, frameRate, customWidth, customHeight int) (*OutputSpec, error) {
	spec := &OutputSpec{
		Resolution:   resolution,
		AspectRatio:  aspect,
		ScaleMode:    scale,
		Quality:      quality,
		FrameRate:    frameRate,
		CustomWidth:  customWidth,
		CustomHeight: customHeight,
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}

// Validate 校验输出参数
func (s *OutputSpec) Validate() error {
	switch s.Resolution {
	case "720p", "1080p", "4k":
	default:
		return errno.ErrInvalidResolution
	}
	switch s.AspectRatio {
	case AspectOriginal, Aspect16x9, Aspect9x16, Aspect4x5, Aspect5x4, Aspect1x1:
	case AspectCustom:
		if s.CustomWidth <= 0 || s.CustomHeight <= 0 {
			return fmt.Errorf("custom aspect ratio requires explicit width and height")
		}
	default:
		return errno.ErrInvalidAspectRatio
	}
	switch s.ScaleMode {
	case ScaleFit, ScaleFill, ScaleStretch, "":
	default:
		return errno.ErrInvalidParam
	}
	switch s.Quality {
	case QualityLow, QualityMedium, QualityHigh, QualityUltra:
	default:
		return errno.ErrInvalidQuality
	}
	switch s.FrameRate {
	case 24, 30, 60:
	default:
		return errno.ErrInvalidFrameRate
	}
	return nil
}

// ResolveSourceDimensions 写入探测到的首个素材画面尺寸，非法值忽略
func (s *OutputSpec) ResolveSourceDimensions(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	s.SourceWidth = width
	s.SourceHeight = height
}

// Dimensions 根据分辨率档位和画幅模式计算输出宽高。
// original采用探测到的首个素材尺寸，尺寸未探测到时退回16:9基准。
func (s *OutputSpec) Dimensions() (width, height int) {
	if s.AspectRatio == AspectCustom && s.CustomWidth > 0 && s.CustomHeight > 0 {
		return evenDimension(s.CustomWidth), evenDimension(s.CustomHeight)
	}
	if s.AspectRatio == AspectOriginal && s.SourceWidth > 0 && s.SourceHeight > 0 {
		return evenDimension(s.SourceWidth), evenDimension(s.SourceHeight)
	}

	baseW, baseH := s.baseResolution()
	switch s.AspectRatio {
	case Aspect9x16:
		return evenDimension(baseH * 9 / 16), baseH
	case Aspect4x5:
		return evenDimension(baseH * 4 / 5), baseH
	case Aspect5x4:
		return evenDimension(baseH * 5 / 4), baseH
	case Aspect1x1:
		return baseH, baseH
	default:
		return baseW, baseH
	}
}

// CRF 不同画质档位对应的x264 CRF值
func (s *OutputSpec) CRF() int {
	switch s.Quality {
	case QualityLow:
		return 32
	case QualityMedium:
		return 28
	case QualityHigh:
		return 23
	case QualityUltra:
		return 18
	default:
		return 28
	}
}

func (s *OutputSpec) baseResolution() (int, int) {
	switch s.Resolution {
	case "720p":
		return 1280, 720
	case "4k":
		return 3840, 2160
	default:
		return 1920, 1080
	}
}

// libx264要求宽高为偶数
func evenDimension(v int) int {
	if v%2 != 0 {
		return v - 1
	}
	return v
}
