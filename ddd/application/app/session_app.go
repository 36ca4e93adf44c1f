package app

import (
	"context"
	"fmt"
	"sync"

	"stream-compiler-service/ddd/application/cqe"
	"stream-compiler-service/ddd/application/dto"
	"stream-compiler-service/ddd/domain/repo"
	"stream-compiler-service/ddd/domain/service"
	"stream-compiler-service/ddd/infrastructure/database/persistence"
	"stream-compiler-service/pkg/assert"
	"stream-compiler-service/pkg/errno"
)

var (
	singleSessionApp SessionApp
	onceSessionApp   sync.Once
)

// SessionApp 会话时间轴应用服务
type SessionApp interface {
	// GetSession 获取会话时间轴
	GetSession(ctx context.Context, sessionUUID string) (*dto.GameSessionDto, error)
	// GetSessionByVideo 按成片获取会话时间轴
	GetSessionByVideo(ctx context.Context, videoUUID string) (*dto.GameSessionDto, error)
	// ExportSession 导出时间轴为指定格式
	ExportSession(ctx context.Context, req *cqe.ExportGameSessionReq) (*dto.SessionExportDto, error)
	// JoinContext 计算中途加入时应呈现的上下文
	JoinContext(ctx context.Context, req *cqe.JoinContextReq) (*dto.JoinContextDto, error)
}

type sessionAppImpl struct {
	sessionRepo repo.GameSessionRepository
	exporter    service.SessionExporter
}

// DefaultSessionApp 返回默认会话应用服务
func DefaultSessionApp() SessionApp {
	assert.NotCircular()
	onceSessionApp.Do(func() {
		singleSessionApp = NewSessionAppWith(persistence.NewGameSessionRepository(), service.NewSessionExporter())
	})
	assert.NotNil(singleSessionApp)
	return singleSessionApp
}

// NewSessionAppWith 用显式依赖构造会话应用服务
func NewSessionAppWith(sessionRepo repo.GameSessionRepository, exporter service.SessionExporter) SessionApp {
	return &sessionAppImpl{sessionRepo: sessionRepo, exporter: exporter}
}

func (a *sessionAppImpl) GetSession(ctx context.Context, sessionUUID string) (*dto.GameSessionDto, error) {
	if sessionUUID == "" {
		return nil, errno.ErrSessionUUIDRequired
	}
	session, err := a.sessionRepo.GetSessionByID(ctx, sessionUUID)
	if err != nil {
		return nil, errno.NewBizError(errno.ErrDatabase, err)
	}
	if session == nil {
		return nil, errno.ErrSessionNotFound
	}
	return dto.NewGameSessionDto(session), nil
}

func (a *sessionAppImpl) GetSessionByVideo(ctx context.Context, videoUUID string) (*dto.GameSessionDto, error) {
	if videoUUID == "" {
		return nil, errno.ErrVideoUUIDRequired
	}
	session, err := a.sessionRepo.GetSessionByVideoID(ctx, videoUUID)
	if err != nil {
		return nil, errno.NewBizError(errno.ErrDatabase, err)
	}
	if session == nil {
		return nil, errno.ErrSessionNotFound
	}
	return dto.NewGameSessionDto(session), nil
}

func (a *sessionAppImpl) ExportSession(ctx context.Context, req *cqe.ExportGameSessionReq) (*dto.SessionExportDto, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	session, err := a.sessionRepo.GetSessionByID(ctx, req.SessionUUID)
	if err != nil {
		return nil, errno.NewBizError(errno.ErrDatabase, err)
	}
	if session == nil {
		return nil, errno.ErrSessionNotFound
	}

	format := req.ExportFormat()
	data, err := a.exporter.Export(session, format)
	if err != nil {
		return nil, err
	}

	return &dto.SessionExportDto{
		FileName:    fmt.Sprintf("%s.%s", session.SessionID, format.FileExtension()),
		ContentType: format.ContentType(),
		Data:        data,
	}, nil
}

func (a *sessionAppImpl) JoinContext(ctx context.Context, req *cqe.JoinContextReq) (*dto.JoinContextDto, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	session, err := a.sessionRepo.GetSessionByID(ctx, req.SessionUUID)
	if err != nil {
		return nil, errno.NewBizError(errno.ErrDatabase, err)
	}
	if session == nil {
		return nil, errno.ErrSessionNotFound
	}

	// 请求给的是成片内相对时间，起点取0即可
	return &dto.JoinContextDto{
		SessionID:   session.SessionID,
		VideoTimeMs: req.VideoTimeMs,
		Context:     session.JoinContextAt(req.VideoTimeMs, 0),
	}, nil
}
