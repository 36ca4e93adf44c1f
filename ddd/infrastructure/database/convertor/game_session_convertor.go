package convertor

import (
	"encoding/json"

	"stream-compiler-service/ddd/domain/vo"
	"stream-compiler-service/ddd/infrastructure/database/po"
	"stream-compiler-service/pkg/logger"
)

// GameSessionConvertor 游戏会话转换器
type GameSessionConvertor struct{}

// NewGameSessionConvertor 创建游戏会话转换器
func NewGameSessionConvertor() *GameSessionConvertor {
	return &GameSessionConvertor{}
}

// ToVO 将PO转换为值对象
func (c *GameSessionConvertor) ToVO(p *po.GameSession) *vo.GameSession {
	var events []vo.GameEvent
	if err := json.Unmarshal([]byte(p.Events), &events); err != nil {
		logger.Warnf("decode session events failed session_uuid=%s err=%v", p.SessionUUID, err)
	}

	return &vo.GameSession{
		SessionID:       p.SessionUUID,
		VideoID:         p.VideoUUID,
		TotalDurationMs: p.TotalDurationMs,
		QuestionCount:   p.QuestionCount,
		Events:          events,
		CreatedAt:       p.GeneratedAt,
		FormatVersion:   p.FormatVersion,
	}
}

// ToPO 将值对象转换为PO
func (c *GameSessionConvertor) ToPO(s *vo.GameSession) *po.GameSession {
	events, _ := json.Marshal(s.Events)

	return &po.GameSession{
		SessionUUID:     s.SessionID,
		VideoUUID:       s.VideoID,
		TotalDurationMs: s.TotalDurationMs,
		QuestionCount:   s.QuestionCount,
		FormatVersion:   s.FormatVersion,
		Events:          string(events),
		GeneratedAt:     s.CreatedAt,
	}
}
