package dao

import (
	"context"

	"gorm.io/gorm"

	"stream-compiler-service/ddd/infrastructure/database/po"
	"stream-compiler-service/internal/resource"
)

type GameSessionDAO struct {
	db *gorm.DB
}

func NewGameSessionDAO() *GameSessionDAO {
	return &GameSessionDAO{db: resource.DefaultMysqlResource().MainDB()}
}

func (d *GameSessionDAO) Create(ctx context.Context, session *po.GameSession) error {
	return d.db.WithContext(ctx).Model(&po.GameSession{}).Create(session).Error
}

func (d *GameSessionDAO) FindBySessionUUID(ctx context.Context, sessionUUID string) (*po.GameSession, error) {
	var session po.GameSession
	if err := d.db.WithContext(ctx).Where("session_uuid = ?", sessionUUID).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (d *GameSessionDAO) FindByVideoUUID(ctx context.Context, videoUUID string) (*po.GameSession, error) {
	var session po.GameSession
	if err := d.db.WithContext(ctx).Where("video_uuid = ?", videoUUID).Order("created_at DESC").First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (d *GameSessionDAO) DeleteBySessionUUID(ctx context.Context, sessionUUID string) error {
	return d.db.WithContext(ctx).Where("session_uuid = ?", sessionUUID).Delete(&po.GameSession{}).Error
}
