package upload

import (
	"context"
	"io"

	"github.com/minio/minio-go/v7"

	"stream-compiler-service/internal/resource"
)

// MinioTransport 基于MinIO低阶API的分片上传传输层
type MinioTransport struct {
	minioResource *resource.MinioResource
}

// NewMinioTransport 创建MinIO分片传输层
func NewMinioTransport(minioResource *resource.MinioResource) *MinioTransport {
	return &MinioTransport{minioResource: minioResource}
}

func (t *MinioTransport) core() minio.Core {
	return minio.Core{Client: t.minioResource.GetClient()}
}

func (t *MinioTransport) Initiate(ctx context.Context, objectKey, contentType string) (string, error) {
	return t.core().NewMultipartUpload(ctx, t.minioResource.GetBucketName(), objectKey, minio.PutObjectOptions{
		ContentType: contentType,
	})
}

func (t *MinioTransport) UploadPart(ctx context.Context, objectKey, uploadID string, partNumber int, reader io.Reader, size int64) (string, error) {
	part, err := t.core().PutObjectPart(ctx, t.minioResource.GetBucketName(), objectKey, uploadID, partNumber, reader, size, minio.PutObjectPartOptions{})
	if err != nil {
		return "", err
	}
	return part.ETag, nil
}

func (t *MinioTransport) Complete(ctx context.Context, objectKey, uploadID string, parts []CompletedPart) error {
	completeParts := make([]minio.CompletePart, 0, len(parts))
	for _, p := range parts {
		completeParts = append(completeParts, minio.CompletePart{
			PartNumber: p.PartNumber,
			ETag:       p.ETag,
		})
	}
	_, err := t.core().CompleteMultipartUpload(ctx, t.minioResource.GetBucketName(), objectKey, uploadID, completeParts, minio.PutObjectOptions{})
	return err
}

func (t *MinioTransport) Abort(ctx context.Context, objectKey, uploadID string) error {
	return t.core().AbortMultipartUpload(ctx, t.minioResource.GetBucketName(), objectKey, uploadID)
}

func (t *MinioTransport) PutObject(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) error {
	_, err := t.minioResource.GetClient().PutObject(ctx, t.minioResource.GetBucketName(), objectKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}
