package port

import "context"

// MediaProber measures a media object's duration and picture geometry.
type MediaProber interface {
	// ProbeDurationMs returns the exact duration in milliseconds.
	ProbeDurationMs(ctx context.Context, localPath string) (int64, error)

	// ProbeDimensions returns the width and height of the first video stream.
	ProbeDimensions(ctx context.Context, localPath string) (width, height int, err error)
}
