package po

import "time"

// CompileJob 成片合成作业持久化对象
type CompileJob struct {
	BaseModel
	JobUUID      string     `gorm:"column:job_uuid;type:varchar(36);uniqueIndex" json:"job_uuid"`
	UserUUID     string     `gorm:"column:user_uuid;type:varchar(36);index" json:"user_uuid"`
	VideoUUID    string     `gorm:"column:video_uuid;type:varchar(36);index" json:"video_uuid"`
	Clips        string     `gorm:"column:clips;type:json" json:"clips"`
	Durations    string     `gorm:"column:durations;type:json" json:"durations"`
	Audio        string     `gorm:"column:audio;type:json" json:"audio"`
	Output       string     `gorm:"column:output;type:json" json:"output"`
	Status       string     `gorm:"column:status;type:varchar(20);index" json:"status"`
	Progress     int        `gorm:"column:progress;type:int" json:"progress"`
	OutputKey    string     `gorm:"column:output_key;type:varchar(512)" json:"output_key"`
	SessionUUID  string     `gorm:"column:session_uuid;type:varchar(64);index" json:"session_uuid"`
	ErrorMessage string     `gorm:"column:error_message;type:varchar(1024)" json:"error_message"`
	StartedAt    *time.Time `gorm:"column:started_at;type:timestamp" json:"started_at,omitempty"`
	CompletedAt  *time.Time `gorm:"column:completed_at;type:timestamp" json:"completed_at,omitempty"`
}

// TableName 指定表名
func (CompileJob) TableName() string {
	return "compile_jobs"
}
