package dto

// UploadClipDto 素材上传结果
type UploadClipDto struct {
	ObjectKey string `json:"object_key"`
	Size      int64  `json:"size"`
	Multipart bool   `json:"multipart"`
	PartCount int    `json:"part_count"`
}
