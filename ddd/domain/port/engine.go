package port

import "context"

// ProgressCallback is invoked by engine adapters to report percentage progress (0-100).
type ProgressCallback func(progress int)

// MediaEngine is the narrow surface the compile pipeline needs from the external
// transcoding engine. Work happens in a per-job scratch directory; all paths are
// engine-relative file names, never absolute host paths.
type MediaEngine interface {
	// WriteInput stores raw bytes under the given name in the job workspace.
	WriteInput(ctx context.Context, name string, data []byte) error

	// Run executes the engine binary with the given arguments. The returned
	// error carries the tail of the engine's diagnostic output on failure.
	Run(ctx context.Context, args []string, opts RunOptions) error

	// ReadOutput reads a produced file back out of the job workspace.
	ReadOutput(ctx context.Context, name string) ([]byte, error)

	// FileSize reports the size in bytes of a workspace file, 0 if missing.
	FileSize(ctx context.Context, name string) (int64, error)

	// Remove deletes a workspace file. Missing files are not an error.
	Remove(ctx context.Context, name string) error

	// WorkspacePath resolves a workspace-relative name to the path the engine
	// binary sees, for embedding into argument lists.
	WorkspacePath(name string) string

	// Cleanup removes the whole job workspace. Safe to call multiple times.
	Cleanup() error
}

// RunOptions controls a single engine invocation.
type RunOptions struct {
	ProgressCb      ProgressCallback
	TotalDurationMs int64 // expected output duration, used to derive progress
	TimeoutSecs     int
}

// EngineFactory creates a MediaEngine bound to a fresh workspace for one job.
type EngineFactory interface {
	NewEngine(jobUUID string) (MediaEngine, error)
}
