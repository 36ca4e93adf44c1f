package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"stream-compiler-service/ddd/domain/repo"
	"stream-compiler-service/ddd/domain/vo"
	"stream-compiler-service/ddd/infrastructure/database/convertor"
	"stream-compiler-service/ddd/infrastructure/database/dao"
	"stream-compiler-service/internal/resource"
	"stream-compiler-service/pkg/logger"
)

// sessionCacheTTL 时间轴不可变，缓存一天足够覆盖活跃回放窗口
const sessionCacheTTL = 24 * time.Hour

// gameSessionRepositoryImpl 游戏会话仓储实现，MySQL为主存储，Redis作读穿缓存
type gameSessionRepositoryImpl struct {
	sessionDao *dao.GameSessionDAO
	convertor  *convertor.GameSessionConvertor
}

// NewGameSessionRepository 创建游戏会话仓储实现
func NewGameSessionRepository() repo.GameSessionRepository {
	return &gameSessionRepositoryImpl{
		sessionDao: dao.NewGameSessionDAO(),
		convertor:  convertor.NewGameSessionConvertor(),
	}
}

// SaveSession 保存会话时间轴
func (r *gameSessionRepositoryImpl) SaveSession(ctx context.Context, session *vo.GameSession) error {
	if session == nil {
		return errors.New("session is nil")
	}

	if err := r.sessionDao.Create(ctx, r.convertor.ToPO(session)); err != nil {
		return err
	}

	r.cacheSet(ctx, session)
	return nil
}

// GetSessionByID 根据会话ID获取时间轴
func (r *gameSessionRepositoryImpl) GetSessionByID(ctx context.Context, sessionID string) (*vo.GameSession, error) {
	if cached := r.cacheGet(ctx, sessionID); cached != nil {
		return cached, nil
	}

	p, err := r.sessionDao.FindBySessionUUID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	session := r.convertor.ToVO(p)
	r.cacheSet(ctx, session)
	return session, nil
}

// GetSessionByVideoID 根据成片ID获取时间轴
func (r *gameSessionRepositoryImpl) GetSessionByVideoID(ctx context.Context, videoID string) (*vo.GameSession, error) {
	p, err := r.sessionDao.FindByVideoUUID(ctx, videoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.convertor.ToVO(p), nil
}

// DeleteSession 删除会话时间轴
func (r *gameSessionRepositoryImpl) DeleteSession(ctx context.Context, sessionID string) error {
	if err := r.sessionDao.DeleteBySessionUUID(ctx, sessionID); err != nil {
		return err
	}

	if client := resource.DefaultRedisResource().Client(); client != nil {
		if err := client.Del(ctx, sessionCacheKey(sessionID)).Err(); err != nil {
			logger.Warnf("evict session cache failed session_uuid=%s err=%v", sessionID, err)
		}
	}
	return nil
}

func (r *gameSessionRepositoryImpl) cacheGet(ctx context.Context, sessionID string) *vo.GameSession {
	client := resource.DefaultRedisResource().Client()
	if client == nil {
		return nil
	}

	raw, err := client.Get(ctx, sessionCacheKey(sessionID)).Bytes()
	if err != nil {
		return nil
	}

	var session vo.GameSession
	if err := json.Unmarshal(raw, &session); err != nil {
		logger.Warnf("decode cached session failed session_uuid=%s err=%v", sessionID, err)
		return nil
	}
	return &session
}

func (r *gameSessionRepositoryImpl) cacheSet(ctx context.Context, session *vo.GameSession) {
	client := resource.DefaultRedisResource().Client()
	if client == nil {
		return
	}

	raw, err := json.Marshal(session)
	if err != nil {
		return
	}
	if err := client.Set(ctx, sessionCacheKey(session.SessionID), raw, sessionCacheTTL).Err(); err != nil {
		logger.Warnf("cache session failed session_uuid=%s err=%v", session.SessionID, err)
	}
}

// sessionCacheKey 会话缓存键
func sessionCacheKey(sessionID string) string {
	return fmt.Sprintf("compile:session:%s", sessionID)
}
