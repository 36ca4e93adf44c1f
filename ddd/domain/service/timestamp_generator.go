package service

import (
	"fmt"
	"time"

	"stream-compiler-service/ddd/domain/vo"
	"stream-compiler-service/pkg/errno"
	"stream-compiler-service/pkg/logger"
)

// TimestampGenerator 时间线生成服务接口
type TimestampGenerator interface {
	// Generate 根据题目素材与时长配置生成完整事件时间线。
	// 时钟推进算法与SequencePlanner严格一致，两者的总时长必然相等。
	Generate(sessionID, videoID string, clips []vo.ClipInput, durations vo.DurationConfig) (*vo.GameSession, error)
}

// timestampGeneratorImpl 时间线生成服务实现
type timestampGeneratorImpl struct {
	logger *logger.Logger
}

// NewTimestampGenerator 创建时间线生成服务
func NewTimestampGenerator(log *logger.Logger) TimestampGenerator {
	return &timestampGeneratorImpl{logger: log}
}

func (g *timestampGeneratorImpl) Generate(sessionID, videoID string, clips []vo.ClipInput, durations vo.DurationConfig) (*vo.GameSession, error) {
	if len(clips) < MinQuestionCount || len(clips) > MaxQuestionCount {
		return nil, errno.NewBizError(errno.ErrQuestionCountOutOfRange,
			fmt.Errorf("got %d clips, want %d-%d", len(clips), MinQuestionCount, MaxQuestionCount))
	}
	if err := durations.Validate(); err != nil {
		return nil, err
	}

	events := make([]vo.GameEvent, 0, 16+len(clips)*(10+int(durations.CountdownMs/1000)))
	var clock int64

	// emit 记录一个事件；spanning为true时推进时钟
	emit := func(eventType vo.EventType, questionNumber int, durationMs int64, metadata map[string]interface{}, spanning bool) {
		events = append(events, vo.GameEvent{
			ID:             eventID(sessionID, eventType, questionNumber, 0),
			Type:           eventType,
			TimestampMs:    clock,
			DurationMs:     durationMs,
			QuestionNumber: questionNumber,
			Metadata:       metadata,
		})
		if spanning {
			clock += durationMs
		}
	}

	emit(vo.EventGameStart, 0, durations.GameReadyMs, nil, true)

	for i, clip := range clips {
		n := i + 1
		emit(vo.EventQuestionReady, n, durations.QuestionReadyMs, nil, true)
		emit(vo.EventQuestionStart, n, clip.DurationMs, map[string]interface{}{"clip_id": clip.ClipID}, true)
		emit(vo.EventQuestionEnd, n, 0, nil, false)
		emit(vo.EventTimeStarts, n, durations.TimeStartsMs, nil, true)

		countdownStart := clock
		emit(vo.EventCountdownStart, n, durations.CountdownMs, nil, true)
		// 每整秒一个倒计时刻度，从D递减到1，时间上严格连续
		countdownSeconds := durations.CountdownSeconds()
		for tick := countdownSeconds; tick >= 1; tick-- {
			events = append(events, vo.GameEvent{
				ID:             eventID(sessionID, vo.EventCountdownTick, n, tick),
				Type:           vo.EventCountdownTick,
				TimestampMs:    countdownStart + int64(countdownSeconds-tick)*1000,
				DurationMs:     1000,
				QuestionNumber: n,
				Metadata:       map[string]interface{}{"countdown_value": tick},
			})
		}

		emit(vo.EventTimeUp, n, 0, nil, false)
		emit(vo.EventResultsStart, n, durations.FetchingMs, nil, true)
		emit(vo.EventResultsEnd, n, durations.LeaderboardMs, nil, true)
	}

	emit(vo.EventGameEnd, 0, 0, nil, false)

	session := &vo.GameSession{
		SessionID:       sessionID,
		VideoID:         videoID,
		TotalDurationMs: clock,
		QuestionCount:   len(clips),
		Events:          events,
		CreatedAt:       time.Now().UTC(),
		FormatVersion:   vo.SessionFormatVersion,
	}
	if g.logger != nil {
		g.logger.Infof("timeline generated session_id=%s events=%d total_ms=%d", sessionID, len(events), clock)
	}
	return session, nil
}

// eventID 生成稳定可复现的事件ID
func eventID(sessionID string, eventType vo.EventType, questionNumber, tick int) string {
	id := sessionID + "_" + eventType.String()
	if questionNumber > 0 {
		id += fmt.Sprintf("_q%d", questionNumber)
	}
	if tick > 0 {
		id += fmt.Sprintf("_t%d", tick)
	}
	return id
}
