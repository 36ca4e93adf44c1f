package vo

import "time"

// EventType 时间线事件类型
type EventType string

const (
	EventGameStart      EventType = "game_start"
	EventQuestionReady  EventType = "question_ready"
	EventQuestionStart  EventType = "question_start"
	EventQuestionEnd    EventType = "question_end"
	EventTimeStarts     EventType = "time_starts"
	EventCountdownStart EventType = "countdown_start"
	EventCountdownTick  EventType = "countdown_tick"
	EventTimeUp         EventType = "time_up"
	EventResultsStart   EventType = "results_start"
	EventResultsEnd     EventType = "results_end"
	EventGameEnd        EventType = "game_end"
)

// String 返回事件类型字符串
func (t EventType) String() string { return string(t) }

// GameEvent 时间线上的一个事件，时间为相对成片起点的绝对毫秒
type GameEvent struct {
	ID             string                 `json:"id"`
	Type           EventType              `json:"type"`
	TimestampMs    int64                  `json:"timestamp"`
	DurationMs     int64                  `json:"duration"`
	QuestionNumber int                    `json:"question_number,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EndTimeMs 事件结束时间
func (e GameEvent) EndTimeMs() int64 {
	return e.TimestampMs + e.DurationMs
}

// Covers 事件在时刻t是否处于活动状态（timestamp <= t < timestamp+duration）
func (e GameEvent) Covers(t int64) bool {
	return t >= e.TimestampMs && t < e.EndTimeMs()
}

// SessionFormatVersion 时间线格式版本，供下游兼容判断
const SessionFormatVersion = "1.0.0"

// GameSession 一次成片的完整时间线，编译完成后不可变
type GameSession struct {
	SessionID       string      `json:"session_id"`
	VideoID         string      `json:"video_id"`
	TotalDurationMs int64       `json:"total_duration"`
	QuestionCount   int         `json:"question_count"`
	Events          []GameEvent `json:"events"`
	CreatedAt       time.Time   `json:"created_at"`
	FormatVersion   string      `json:"format_version"`
}

// JoinContext 中途加入时应呈现的上下文
type JoinContext struct {
	CurrentEvent       *GameEvent `json:"current_event"`
	NextEvent          *GameEvent `json:"next_event"`
	TimeInCurrentMs    int64      `json:"time_in_current_event"`
	ShouldShowQuestion bool       `json:"should_show_question"`
	QuestionNumber     int        `json:"question_number,omitempty"`
}

// CurrentEvent 返回时刻t的活动事件，无则返回nil
func (s *GameSession) CurrentEvent(t int64) *GameEvent {
	for i := range s.Events {
		if s.Events[i].Covers(t) {
			return &s.Events[i]
		}
	}
	return nil
}

// NextEvent 返回时刻t之后的第一个事件，无则返回nil
func (s *GameSession) NextEvent(t int64) *GameEvent {
	for i := range s.Events {
		if s.Events[i].TimestampMs > t {
			return &s.Events[i]
		}
	}
	return nil
}

// QuestionEvents 返回指定题目的全部事件
func (s *GameSession) QuestionEvents(questionNumber int) []GameEvent {
	var out []GameEvent
	for _, e := range s.Events {
		if e.QuestionNumber == questionNumber {
			out = append(out, e)
		}
	}
	return out
}

// JoinContextAt 计算玩家在绝对时刻joinTime加入时的上下文，
// videoStartTime为成片开始播放的绝对时刻。
func (s *GameSession) JoinContextAt(joinTime, videoStartTime int64) JoinContext {
	videoTime := joinTime - videoStartTime
	current := s.CurrentEvent(videoTime)
	next := s.NextEvent(videoTime)

	ctx := JoinContext{
		CurrentEvent: current,
		NextEvent:    next,
	}
	if current != nil {
		ctx.TimeInCurrentMs = videoTime - current.TimestampMs
		ctx.ShouldShowQuestion = current.Type == EventQuestionStart
		ctx.QuestionNumber = current.QuestionNumber
	}
	return ctx
}
