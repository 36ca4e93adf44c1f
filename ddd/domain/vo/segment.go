package vo

import "fmt"

// SegmentKind 片段类型，封闭集合
type SegmentKind string

const (
	SegmentGameReady     SegmentKind = "game_ready"
	SegmentQuestionReady SegmentKind = "question_ready"
	SegmentQuestion      SegmentKind = "question"
	SegmentTimeStarts    SegmentKind = "time_starts"
	SegmentCountdown     SegmentKind = "countdown"
	SegmentFetching      SegmentKind = "fetching"
	SegmentLeaderboard   SegmentKind = "leaderboard"
	SegmentGameEnd       SegmentKind = "game_end"
)

// String 返回类型字符串
func (k SegmentKind) String() string { return string(k) }

// IsOverlay 是否为转场素材片段（非用户上传的题目视频）
func (k SegmentKind) IsOverlay() bool {
	return k != SegmentQuestion
}

// DisplayName 片段的可读名称，用于进度与日志
func (k SegmentKind) DisplayName(questionNumber int) string {
	switch k {
	case SegmentGameReady:
		return "Game Get Ready"
	case SegmentQuestionReady:
		return fmt.Sprintf("Question %d Ready", questionNumber)
	case SegmentQuestion:
		return fmt.Sprintf("Question %d Video", questionNumber)
	case SegmentTimeStarts:
		return "Time Starts"
	case SegmentCountdown:
		return "Answer Countdown"
	case SegmentFetching:
		return "Time Up - Fetching Results"
	case SegmentLeaderboard:
		return "Leaderboard/Results"
	case SegmentGameEnd:
		return "Game End"
	default:
		return string(k)
	}
}

// ClipSource 片段的素材来源：用户上传的题目视频或素材目录里的转场视频
type ClipSource struct {
	ClipID     string // 题目视频ID，非空表示来源是上传素材
	OverlayKey string // 转场素材目录键，非空表示来源是转场视频
}

// IsClip 来源是否为上传素材
func (s ClipSource) IsClip() bool { return s.ClipID != "" }

// PlannedSegment 计划中的一个片段，时间均为相对成片起点的毫秒
type PlannedSegment struct {
	Kind           SegmentKind
	QuestionNumber int // 1-based，GameReady/GameEnd为0
	StartTimeMs    int64
	DurationMs     int64
	Source         ClipSource
}

// EndTimeMs 片段结束时间
func (s PlannedSegment) EndTimeMs() int64 {
	return s.StartTimeMs + s.DurationMs
}

// ClipInput 一条用户上传的题目视频
type ClipInput struct {
	ClipID     string
	ObjectKey  string // 存储中的对象键
	DurationMs int64  // 探测得到的真实时长，写入后不可变
}
