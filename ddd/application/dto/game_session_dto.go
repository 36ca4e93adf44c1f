package dto

import (
	"time"

	"stream-compiler-service/ddd/domain/vo"
)

// GameSessionDto 会话时间轴数据传输对象
type GameSessionDto struct {
	SessionID       string         `json:"session_id"`
	VideoID         string         `json:"video_id"`
	TotalDurationMs int64          `json:"total_duration"`
	QuestionCount   int            `json:"question_count"`
	EventCount      int            `json:"event_count"`
	Events          []vo.GameEvent `json:"events"`
	FormatVersion   string         `json:"format_version"`
	CreatedAt       time.Time      `json:"created_at"`
}

// JoinContextDto 中途加入上下文数据传输对象
type JoinContextDto struct {
	SessionID   string         `json:"session_id"`
	VideoTimeMs int64          `json:"video_time_ms"`
	Context     vo.JoinContext `json:"context"`
}

// SessionExportDto 时间轴导出产物
type SessionExportDto struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
}

// NewGameSessionDto 从值对象创建DTO
func NewGameSessionDto(session *vo.GameSession) *GameSessionDto {
	if session == nil {
		return nil
	}
	return &GameSessionDto{
		SessionID:       session.SessionID,
		VideoID:         session.VideoID,
		TotalDurationMs: session.TotalDurationMs,
		QuestionCount:   session.QuestionCount,
		EventCount:      len(session.Events),
		Events:          session.Events,
		FormatVersion:   session.FormatVersion,
		CreatedAt:       session.CreatedAt,
	}
}
