package gateway

import "context"

// OverlayAsset 叠加素材
type OverlayAsset struct {
	Key       string // catalog key, e.g. "question_ready"
	LocalPath string // resolved file on disk, empty when the asset is missing
	Exists    bool
}

// OverlayCatalog resolves library overlay clips by key. Question-scoped keys
// carry the question number so per-question variants can be selected.
type OverlayCatalog interface {
	// Resolve looks up an overlay asset. questionNumber is 0 for
	// session-scoped overlays (game ready, fetching, leaderboard).
	Resolve(ctx context.Context, key string, questionNumber int) (OverlayAsset, error)

	// BackgroundTrack resolves a background audio track by key.
	BackgroundTrack(ctx context.Context, key string) (OverlayAsset, error)
}
