package service

import (
	"fmt"

	"stream-compiler-service/ddd/domain/vo"
	"stream-compiler-service/pkg/errno"
	"stream-compiler-service/pkg/logger"
)

// MinQuestionCount 和 MaxQuestionCount 限定一局游戏的题目数量
const (
	MinQuestionCount = 2
	MaxQuestionCount = 6
)

// SequencePlan 一次合成的完整片段计划
type SequencePlan struct {
	Segments        []vo.PlannedSegment
	TotalDurationMs int64
}

// SegmentCount 非零时长片段数量（含时长为0的GameEnd哨兵）
func (p *SequencePlan) SegmentCount() int {
	return len(p.Segments)
}

// SequencePlanner 片段计划服务接口
type SequencePlanner interface {
	// Plan 根据题目素材与时长配置生成有序片段计划
	Plan(clips []vo.ClipInput, durations vo.DurationConfig) (*SequencePlan, error)
}

// sequencePlannerImpl 片段计划服务实现
type sequencePlannerImpl struct {
	logger *logger.Logger
}

// NewSequencePlanner 创建片段计划服务
func NewSequencePlanner(log *logger.Logger) SequencePlanner {
	return &sequencePlannerImpl{logger: log}
}

// Plan 生成片段计划。时钟从0开始，每个片段按配置时长依次推进，
// 题目片段使用探测到的真实时长，保证毫秒级连续无重叠。
func (s *sequencePlannerImpl) Plan(clips []vo.ClipInput, durations vo.DurationConfig) (*SequencePlan, error) {
	if len(clips) < MinQuestionCount || len(clips) > MaxQuestionCount {
		return nil, errno.NewBizError(errno.ErrQuestionCountOutOfRange,
			fmt.Errorf("got %d clips, want %d-%d", len(clips), MinQuestionCount, MaxQuestionCount))
	}
	if err := durations.Validate(); err != nil {
		return nil, err
	}
	for i, clip := range clips {
		if clip.DurationMs <= 0 {
			return nil, errno.NewBizError(errno.ErrNegativeDuration,
				fmt.Errorf("clip %d (%s) has no probed duration", i+1, clip.ClipID))
		}
	}

	segments := make([]vo.PlannedSegment, 0, 2+len(clips)*6)
	var clock int64

	emit := func(kind vo.SegmentKind, questionNumber int, durationMs int64, source vo.ClipSource) {
		segments = append(segments, vo.PlannedSegment{
			Kind:           kind,
			QuestionNumber: questionNumber,
			StartTimeMs:    clock,
			DurationMs:     durationMs,
			Source:         source,
		})
		clock += durationMs
	}

	emit(vo.SegmentGameReady, 0, durations.GameReadyMs, vo.ClipSource{OverlayKey: "game_ready"})

	for i, clip := range clips {
		n := i + 1
		emit(vo.SegmentQuestionReady, n, durations.QuestionReadyMs, vo.ClipSource{OverlayKey: "question_ready"})
		emit(vo.SegmentQuestion, n, clip.DurationMs, vo.ClipSource{ClipID: clip.ClipID})
		emit(vo.SegmentTimeStarts, n, durations.TimeStartsMs, vo.ClipSource{OverlayKey: "time_starts"})
		emit(vo.SegmentCountdown, n, durations.CountdownMs, vo.ClipSource{OverlayKey: "countdown"})
		emit(vo.SegmentFetching, n, durations.FetchingMs, vo.ClipSource{OverlayKey: "fetching"})
		emit(vo.SegmentLeaderboard, n, durations.LeaderboardMs, vo.ClipSource{OverlayKey: "leaderboard"})
	}

	emit(vo.SegmentGameEnd, 0, 0, vo.ClipSource{OverlayKey: "game_end"})

	if s.logger != nil {
		s.logger.Infof("sequence plan built segments=%d questions=%d total_ms=%d", len(segments), len(clips), clock)
	}
	return &SequencePlan{Segments: segments, TotalDurationMs: clock}, nil
}
