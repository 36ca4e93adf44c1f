package gateway

import "context"

// CompileResultReporter notifies downstream services about compile outcomes.
type CompileResultReporter interface {
	ReportCompiled(ctx context.Context, videoUUID, jobUUID, sessionUUID, outputKey string) error
	ReportFailed(ctx context.Context, videoUUID, jobUUID, errorMessage string) error
}
