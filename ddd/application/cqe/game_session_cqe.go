package cqe

import (
	"stream-compiler-service/ddd/domain/service"
	"stream-compiler-service/pkg/errno"
)

// GetGameSessionReq 查询会话时间轴请求
type GetGameSessionReq struct {
	SessionUUID string `uri:"session_uuid" binding:"required"`
}

func (req *GetGameSessionReq) Validate() error {
	if req.SessionUUID == "" {
		return errno.ErrSessionUUIDRequired
	}
	return nil
}

// GetSessionByVideoReq 按成片查询时间轴请求
type GetSessionByVideoReq struct {
	VideoUUID string `uri:"video_uuid" binding:"required"`
}

func (req *GetSessionByVideoReq) Validate() error {
	if req.VideoUUID == "" {
		return errno.ErrVideoUUIDRequired
	}
	return nil
}

// ExportGameSessionReq 导出时间轴请求
type ExportGameSessionReq struct {
	SessionUUID string `uri:"session_uuid" binding:"required"`
	Format      string `form:"format"`
}

func (req *ExportGameSessionReq) Validate() error {
	if req.SessionUUID == "" {
		return errno.ErrSessionUUIDRequired
	}
	if req.Format == "" {
		req.Format = string(service.ExportJSON)
	}
	if !service.ExportFormat(req.Format).IsValid() {
		return errno.ErrExportFormatUnsupported
	}
	return nil
}

// ExportFormat 解析后的导出格式
func (req *ExportGameSessionReq) ExportFormat() service.ExportFormat {
	return service.ExportFormat(req.Format)
}

// JoinContextReq 中途加入上下文请求，时间为相对成片起点的毫秒
type JoinContextReq struct {
	SessionUUID string `uri:"session_uuid" binding:"required"`
	VideoTimeMs int64  `form:"video_time_ms"`
}

func (req *JoinContextReq) Validate() error {
	if req.SessionUUID == "" {
		return errno.ErrSessionUUIDRequired
	}
	if req.VideoTimeMs < 0 {
		return errno.ErrInvalidParam
	}
	return nil
}
