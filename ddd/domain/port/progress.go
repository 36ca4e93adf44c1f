package port

import (
	"context"

	"stream-compiler-service/ddd/domain/entity"
)

// ProgressSink persists or forwards compile job progress updates.
type ProgressSink interface {
	SaveProgress(ctx context.Context, job *entity.CompileJobEntity, progress int) error
}
