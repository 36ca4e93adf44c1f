package repo

import (
	"context"

	"stream-compiler-service/ddd/domain/vo"
)

// GameSessionRepository 游戏会话时间轴仓储接口
type GameSessionRepository interface {
	// SaveSession 保存会话时间轴
	SaveSession(ctx context.Context, session *vo.GameSession) error

	// GetSessionByID 根据会话ID获取时间轴
	GetSessionByID(ctx context.Context, sessionID string) (*vo.GameSession, error)

	// GetSessionByVideoID 根据成片ID获取时间轴
	GetSessionByVideoID(ctx context.Context, videoID string) (*vo.GameSession, error)

	// DeleteSession 删除会话时间轴
	DeleteSession(ctx context.Context, sessionID string) error
}
