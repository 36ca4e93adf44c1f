package cqe

import (
	"path"
	"strings"

	"stream-compiler-service/pkg/errno"
)

var allowedClipExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".mkv":  true,
	".webm": true,
}

// UploadClipReq 上传题目素材请求，文件体走multipart表单
type UploadClipReq struct {
	UserUUID string `header:"X-User-UUID" binding:"required"`
	FileName string `form:"file_name"`
}

func (req *UploadClipReq) Validate() error {
	if req.UserUUID == "" {
		return errno.ErrUserUUIDRequired
	}
	if req.FileName == "" {
		return errno.ErrFileNameIllegal
	}
	if strings.Contains(req.FileName, "..") || strings.ContainsAny(req.FileName, "/\\") {
		return errno.ErrFileNameIllegal
	}
	if !allowedClipExtensions[strings.ToLower(path.Ext(req.FileName))] {
		return errno.ErrFileNameIllegal
	}
	return nil
}
