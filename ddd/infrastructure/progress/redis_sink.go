package progress

import (
	"context"
	"fmt"
	"time"

	"stream-compiler-service/ddd/domain/entity"
	"stream-compiler-service/ddd/domain/port"
	"stream-compiler-service/internal/resource"
)

const progressKeyTTL = 24 * time.Hour

// RedisSink writes compile progress to Redis for fast polling reads.
type RedisSink struct {
	redisResource *resource.RedisResource
}

func NewRedisSink(redisResource *resource.RedisResource) port.ProgressSink {
	return &RedisSink{redisResource: redisResource}
}

func (s *RedisSink) SaveProgress(ctx context.Context, job *entity.CompileJobEntity, progress int) error {
	if s.redisResource == nil || job == nil {
		return nil
	}
	client := s.redisResource.Client()
	if client == nil {
		return nil
	}
	key := ProgressKey(job.JobUUID())
	return client.Set(ctx, key, progress, progressKeyTTL).Err()
}

// ProgressKey redis key for a job's progress value.
func ProgressKey(jobUUID string) string {
	return fmt.Sprintf("compile:progress:%s", jobUUID)
}
