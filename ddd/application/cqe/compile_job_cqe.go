package cqe

import (
	"stream-compiler-service/ddd/domain/vo"
	"stream-compiler-service/pkg/errno"
)

// 请求未显式给出时的默认参数
const (
	defaultGameReadySecs     = 3.0
	defaultQuestionReadySecs = 2.0
	defaultTimeStartsSecs    = 2.0
	defaultCountdownSecs     = 10.0
	defaultFetchingSecs      = 3.0
	defaultLeaderboardSecs   = 5.0
)

// ClipInputReq 一条题目素材
type ClipInputReq struct {
	ClipID    string `json:"clip_id" binding:"required"`    // 素材ID
	ObjectKey string `json:"object_key" binding:"required"` // 存储对象键
}

// DurationConfigReq 各转场片段时长（秒），缺省字段使用默认，显式0保留
type DurationConfigReq struct {
	GameReady     *float64 `json:"game_ready"`
	QuestionReady *float64 `json:"question_ready"`
	TimeStarts    *float64 `json:"time_starts"`
	Countdown     *float64 `json:"countdown"`
	Fetching      *float64 `json:"fetching"`
	Leaderboard   *float64 `json:"leaderboard"`
}

// AudioConfigReq 音频合成配置
type AudioConfigReq struct {
	PreserveOriginal *bool    `json:"preserve_original"` // 缺省true
	OriginalVolume   *float64 `json:"original_volume"`   // 缺省1.0
	BackgroundKey    string   `json:"background_key"`
	BackgroundVolume *float64 `json:"background_volume"` // 缺省0.3
	FadeInSeconds    float64  `json:"fade_in_seconds"`
	FadeOutSeconds   float64  `json:"fade_out_seconds"`
}

// OutputSpecReq 输出画面配置
type OutputSpecReq struct {
	Resolution   string `json:"resolution"`    // 720p/1080p/4k，缺省1080p
	AspectRatio  string `json:"aspect_ratio"`  // 缺省16:9
	ScaleMode    string `json:"scale_mode"`    // fit/fill/stretch，缺省fit
	Quality      string `json:"quality"`       // low/medium/high/ultra，缺省high
	FrameRate    int    `json:"frame_rate"`    // 24/30/60，缺省30
	CustomWidth  int    `json:"custom_width"`
	CustomHeight int    `json:"custom_height"`
}

// CreateCompileJobReq 创建合成作业请求
type CreateCompileJobReq struct {
	UserUUID  string             `header:"X-User-UUID"`
	VideoUUID string             `json:"video_uuid" binding:"required"`
	Clips     []ClipInputReq     `json:"clips" binding:"required"`
	Durations *DurationConfigReq `json:"durations"`
	Audio     *AudioConfigReq    `json:"audio"`
	Output    *OutputSpecReq     `json:"output"`
}

func (req *CreateCompileJobReq) Validate() error {
	if req.UserUUID == "" {
		return errno.ErrUserUUIDRequired
	}
	if req.VideoUUID == "" {
		return errno.ErrVideoUUIDRequired
	}
	if len(req.Clips) == 0 {
		return errno.ErrClipsRequired
	}
	if len(req.Clips) < 2 || len(req.Clips) > 6 {
		return errno.ErrQuestionCountOutOfRange
	}
	for _, clip := range req.Clips {
		if clip.ClipID == "" || clip.ObjectKey == "" {
			return errno.ErrClipsRequired
		}
	}
	return nil
}

// ToClips 转换为领域素材列表
func (req *CreateCompileJobReq) ToClips() []vo.ClipInput {
	clips := make([]vo.ClipInput, 0, len(req.Clips))
	for _, c := range req.Clips {
		clips = append(clips, vo.ClipInput{ClipID: c.ClipID, ObjectKey: c.ObjectKey})
	}
	return clips
}

// ToDurations 转换为领域时长配置，缺省字段落默认
func (req *CreateCompileJobReq) ToDurations() (*vo.DurationConfig, error) {
	d := req.Durations
	if d == nil {
		d = &DurationConfigReq{}
	}
	return vo.NewDurationConfig(
		floatOrDefault(d.GameReady, defaultGameReadySecs),
		floatOrDefault(d.QuestionReady, defaultQuestionReadySecs),
		floatOrDefault(d.TimeStarts, defaultTimeStartsSecs),
		floatOrDefault(d.Countdown, defaultCountdownSecs),
		floatOrDefault(d.Fetching, defaultFetchingSecs),
		floatOrDefault(d.Leaderboard, defaultLeaderboardSecs),
	)
}

// ToAudio 转换为领域音频配置
func (req *CreateCompileJobReq) ToAudio() (*vo.AudioConfig, error) {
	a := req.Audio
	if a == nil {
		a = &AudioConfigReq{}
	}
	preserve := true
	if a.PreserveOriginal != nil {
		preserve = *a.PreserveOriginal
	}
	originalVolume := 1.0
	if a.OriginalVolume != nil {
		originalVolume = *a.OriginalVolume
	}
	backgroundVolume := 0.3
	if a.BackgroundVolume != nil {
		backgroundVolume = *a.BackgroundVolume
	}
	return vo.NewAudioConfig(preserve, originalVolume, backgroundVolume, a.BackgroundKey, a.FadeInSeconds, a.FadeOutSeconds)
}

// ToOutput 转换为领域输出配置
func (req *CreateCompileJobReq) ToOutput() (*vo.OutputSpec, error) {
	o := req.Output
	if o == nil {
		o = &OutputSpecReq{}
	}
	resolution := o.Resolution
	if resolution == "" {
		resolution = "1080p"
	}
	aspect := vo.AspectRatio(o.AspectRatio)
	if aspect == "" {
		aspect = vo.Aspect16x9
	}
	scale := vo.ScaleMode(o.ScaleMode)
	if scale == "" {
		scale = vo.ScaleFit
	}
	quality := vo.Quality(o.Quality)
	if quality == "" {
		quality = vo.QualityHigh
	}
	frameRate := o.FrameRate
	if frameRate == 0 {
		frameRate = 30
	}
	return vo.NewOutputSpec(resolution, aspect, scale, quality, frameRate, o.CustomWidth, o.CustomHeight)
}

func floatOrDefault(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

// QueryCompileJobReq 查询作业详情请求
type QueryCompileJobReq struct {
	JobUUID  string `uri:"job_uuid" binding:"required"`
	UserUUID string `header:"X-User-UUID"`
}

func (req *QueryCompileJobReq) Validate() error {
	if req.JobUUID == "" {
		return errno.ErrJobUUIDRequired
	}
	return nil
}

// ListCompileJobsReq 作业列表请求
type ListCompileJobsReq struct {
	UserUUID string `header:"X-User-UUID"`
	Status   string `form:"status"`
	Page     int    `form:"page"`
	Size     int    `form:"size"`
}

func (req *ListCompileJobsReq) Validate() error {
	if req.UserUUID == "" {
		return errno.ErrUserUUIDRequired
	}
	if req.Status != "" && !vo.JobStatus(req.Status).IsValid() {
		return errno.ErrInvalidJobStatus
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Size <= 0 || req.Size > 100 {
		req.Size = 10
	}
	return nil
}

// CancelCompileJobReq 取消作业请求
type CancelCompileJobReq struct {
	JobUUID  string `uri:"job_uuid" binding:"required"`
	UserUUID string `header:"X-User-UUID"`
}

func (req *CancelCompileJobReq) Validate() error {
	if req.JobUUID == "" {
		return errno.ErrJobUUIDRequired
	}
	return nil
}

// GetCompileProgressReq 查询作业进度请求
type GetCompileProgressReq struct {
	JobUUID string `uri:"job_uuid" binding:"required"`
}

func (req *GetCompileProgressReq) Validate() error {
	if req.JobUUID == "" {
		return errno.ErrJobUUIDRequired
	}
	return nil
}
