package po

import "time"

// GameSession 游戏会话时间轴持久化对象，events为完整事件日志的JSON
type GameSession struct {
	BaseModel
	SessionUUID     string    `gorm:"column:session_uuid;type:varchar(64);uniqueIndex" json:"session_uuid"`
	VideoUUID       string    `gorm:"column:video_uuid;type:varchar(64);index" json:"video_uuid"`
	TotalDurationMs int64     `gorm:"column:total_duration_ms;type:bigint" json:"total_duration_ms"`
	QuestionCount   int       `gorm:"column:question_count;type:int" json:"question_count"`
	FormatVersion   string    `gorm:"column:format_version;type:varchar(16)" json:"format_version"`
	Events          string    `gorm:"column:events;type:json" json:"events"`
	GeneratedAt     time.Time `gorm:"column:generated_at;type:timestamp" json:"generated_at"`
}

// TableName 指定表名
func (GameSession) TableName() string {
	return "game_sessions"
}
