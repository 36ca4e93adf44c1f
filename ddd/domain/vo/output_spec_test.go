package vo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stream-compiler-service/pkg/errno"
)

func TestOutputSpec_Dimensions(t *testing.T) {
	tests := []struct {
		name       string
		resolution string
		aspect     AspectRatio
		wantW      int
		wantH      int
	}{
		{"1080p landscape", "1080p", Aspect16x9, 1920, 1080},
		{"720p landscape", "720p", Aspect16x9, 1280, 720},
		{"4k landscape", "4k", Aspect16x9, 3840, 2160},
		{"1080p portrait", "1080p", Aspect9x16, 606, 1080},
		{"1080p square", "1080p", Aspect1x1, 1080, 1080},
		{"1080p 4:5", "1080p", Aspect4x5, 864, 1080},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := NewOutputSpec(tt.resolution, tt.aspect, ScaleFit, QualityHigh, 30, 0, 0)
			require.NoError(t, err)

			w, h := spec.Dimensions()
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
			assert.Zero(t, w%2, "width must be even for libx264")
			assert.Zero(t, h%2, "height must be even for libx264")
		})
	}
}

func TestOutputSpec_CustomDimensionsRoundedEven(t *testing.T) {
	spec, err := NewOutputSpec("1080p", AspectCustom, ScaleFit, QualityHigh, 30, 1001, 563)
	require.NoError(t, err)

	w, h := spec.Dimensions()
	assert.Equal(t, 1000, w)
	assert.Equal(t, 562, h)
}

func TestOutputSpec_OriginalAspectUsesSourceDimensions(t *testing.T) {
	spec, err := NewOutputSpec("1080p", AspectOriginal, ScaleFit, QualityHigh, 30, 0, 0)
	require.NoError(t, err)

	// 尺寸未探测到时退回分辨率档位基准
	w, h := spec.Dimensions()
	assert.Equal(t, 1920, w)
	assert.Equal(t, 1080, h)

	spec.ResolveSourceDimensions(1439, 1081)
	w, h = spec.Dimensions()
	assert.Equal(t, 1438, w)
	assert.Equal(t, 1080, h)

	// 非法尺寸忽略，不覆盖已有值
	spec.ResolveSourceDimensions(0, -1)
	w, h = spec.Dimensions()
	assert.Equal(t, 1438, w)
	assert.Equal(t, 1080, h)

	// 非original画幅不受素材尺寸影响
	landscape, err := NewOutputSpec("1080p", Aspect16x9, ScaleFit, QualityHigh, 30, 0, 0)
	require.NoError(t, err)
	landscape.ResolveSourceDimensions(640, 480)
	w, h = landscape.Dimensions()
	assert.Equal(t, 1920, w)
	assert.Equal(t, 1080, h)
}

func TestOutputSpec_CRFByQuality(t *testing.T) {
	for quality, want := range map[Quality]int{
		QualityLow:    32,
		QualityMedium: 28,
		QualityHigh:   23,
		QualityUltra:  18,
	} {
		spec, err := NewOutputSpec("1080p", Aspect16x9, ScaleFit, quality, 30, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, want, spec.CRF(), "quality %s", quality)
	}
}

func TestOutputSpec_Validation(t *testing.T) {
	_, err := NewOutputSpec("480p", Aspect16x9, ScaleFit, QualityHigh, 30, 0, 0)
	assert.ErrorIs(t, err, errno.ErrInvalidResolution)

	_, err = NewOutputSpec("1080p", "21:9", ScaleFit, QualityHigh, 30, 0, 0)
	assert.ErrorIs(t, err, errno.ErrInvalidAspectRatio)

	_, err = NewOutputSpec("1080p", Aspect16x9, ScaleFit, "insane", 30, 0, 0)
	assert.ErrorIs(t, err, errno.ErrInvalidQuality)

	_, err = NewOutputSpec("1080p", Aspect16x9, ScaleFit, QualityHigh, 25, 0, 0)
	assert.ErrorIs(t, err, errno.ErrInvalidFrameRate)

	_, err = NewOutputSpec("1080p", AspectCustom, ScaleFit, QualityHigh, 30, 0, 0)
	assert.Error(t, err)
}

func TestDurationConfig_CountdownSeconds(t *testing.T) {
	cfg, err := NewDurationConfig(3, 2, 2, 10.5, 3, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(10500), cfg.CountdownMs)
	assert.Equal(t, 10, cfg.CountdownSeconds())

	_, err = NewDurationConfig(3, 2, 2, -1, 3, 5)
	assert.ErrorIs(t, err, errno.ErrNegativeDuration)
}
