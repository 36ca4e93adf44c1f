package gateway

import (
	"context"
	"io"
)

// StorageGateway 存储网关
type StorageGateway interface {
	// DownloadObject 下载对象到本地文件
	DownloadObject(ctx context.Context, objectKey, localPath string) error

	// ReadObject 读取对象全部内容
	ReadObject(ctx context.Context, objectKey string) ([]byte, error)

	// UploadFile 上传本地文件，返回可访问的对象路径
	UploadFile(ctx context.Context, localPath, objectKey, contentType string) (string, error)

	// UploadStream 以流方式上传对象
	UploadStream(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) (string, error)

	// StatObject 返回对象大小，不存在返回错误
	StatObject(ctx context.Context, objectKey string) (int64, error)

	// RemoveObject 删除对象
	RemoveObject(ctx context.Context, objectKey string) error
}
