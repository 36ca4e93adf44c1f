package vo

import (
	"fmt"

	"stream-compiler-service/pkg/errno"
)

// DurationConfig 各转场片段的时长配置，单位毫秒
type DurationConfig struct {
	GameReadyMs     int64
	QuestionReadyMs int64
	TimeStartsMs    int64
	CountdownMs     int64
	FetchingMs      int64
	LeaderboardMs   int64
}

// NewDurationConfig 用秒为单位创建时长配置
func NewDurationConfig(gameReady, questionReady, timeStarts, countdown, fetching, leaderboard float64) (*DurationConfig, error) {
	cfg := &DurationConfig{
		GameReadyMs:     secondsToMs(gameReady),
		QuestionReadyMs: secondsToMs(questionReady),
		TimeStartsMs:    secondsToMs(timeStarts),
		CountdownMs:     secondsToMs(countdown),
		FetchingMs:      secondsToMs(fetching),
		LeaderboardMs:   secondsToMs(leaderboard),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验所有时长非负
func (c *DurationConfig) Validate() error {
	for _, d := range []int64{
		c.GameReadyMs, c.QuestionReadyMs, c.TimeStartsMs,
		c.CountdownMs, c.FetchingMs, c.LeaderboardMs,
	} {
		if d < 0 {
			return errno.ErrNegativeDuration
		}
	}
	return nil
}

// CountdownSeconds 返回倒计时的整秒数，用于逐秒tick事件
func (c *DurationConfig) CountdownSeconds() int {
	return int(c.CountdownMs / 1000)
}

func secondsToMs(s float64) int64 {
	return int64(s * 1000)
}

// AudioConfig 音频合成配置
type AudioConfig struct {
	PreserveOriginal bool
	OriginalVolume   float64
	BackgroundKey    string // 背景音轨对象键，空表示不混音
	BackgroundVolume float64
	FadeInSeconds    float64
	FadeOutSeconds   float64
}

// NewAudioConfig 创建音频配置并校验音量范围
func NewAudioConfig(preserveOriginal bool, originalVolume, backgroundVolume float64, backgroundKey string, fadeIn, fadeOut float64) (*AudioConfig, error) {
	cfg := &AudioConfig{
		PreserveOriginal: preserveOriginal,
		OriginalVolume:   originalVolume,
		BackgroundKey:    backgroundKey,
		BackgroundVolume: backgroundVolume,
		FadeInSeconds:    fadeIn,
		FadeOutSeconds:   fadeOut,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验音量在[0,1]区间
func (c *AudioConfig) Validate() error {
	if c.OriginalVolume < 0 || c.OriginalVolume > 1 {
		return errno.ErrVolumeOutOfRange
	}
	if c.BackgroundVolume < 0 || c.BackgroundVolume > 1 {
		return errno.ErrVolumeOutOfRange
	}
	if c.FadeInSeconds < 0 || c.FadeOutSeconds < 0 {
		return fmt.Errorf("fade durations must be non-negative")
	}
	return nil
}

// HasBackgroundTrack 是否配置了背景音轨
func (c *AudioConfig) HasBackgroundTrack() bool {
	return c.BackgroundKey != ""
}
