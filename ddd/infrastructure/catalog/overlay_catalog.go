package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"stream-compiler-service/ddd/domain/gateway"
	"stream-compiler-service/pkg/config"
)

var questionWords = []string{"", "one", "two", "three", "four", "five", "six"}

// FilesystemOverlayCatalog resolves overlay keys against a bundled asset
// directory. Lookup is pure: no state, no caching, missing files are reported
// via Exists=false so the compile pipeline can fall back.
type FilesystemOverlayCatalog struct {
	assetDir string
}

func NewFilesystemOverlayCatalog(cfg *config.Config) *FilesystemOverlayCatalog {
	assetDir := "assets/overlays"
	if cfg != nil && strings.TrimSpace(cfg.Compile.Overlay.AssetDir) != "" {
		assetDir = cfg.Compile.Overlay.AssetDir
	}
	return &FilesystemOverlayCatalog{assetDir: assetDir}
}

// Resolve looks up an overlay clip. Question-scoped keys try a per-question
// variant first ("question_two_ready.mp4") and fall back to the generic asset.
func (c *FilesystemOverlayCatalog) Resolve(ctx context.Context, key string, questionNumber int) (gateway.OverlayAsset, error) {
	candidates := make([]string, 0, 2)
	if questionNumber >= 1 && questionNumber < len(questionWords) {
		word := questionWords[questionNumber]
		switch key {
		case "question_ready":
			candidates = append(candidates, fmt.Sprintf("question_%s_ready.mp4", word))
		case "countdown":
			candidates = append(candidates, fmt.Sprintf("countdown_%s.mp4", word))
		}
	}
	candidates = append(candidates, key+".mp4")

	for _, name := range candidates {
		path := filepath.Join(c.assetDir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() && info.Size() > 0 {
			return gateway.OverlayAsset{Key: key, LocalPath: path, Exists: true}, nil
		}
	}
	return gateway.OverlayAsset{Key: key}, nil
}

// BackgroundTrack resolves a background audio file under the audio subdirectory.
func (c *FilesystemOverlayCatalog) BackgroundTrack(ctx context.Context, key string) (gateway.OverlayAsset, error) {
	if strings.TrimSpace(key) == "" {
		return gateway.OverlayAsset{}, nil
	}
	for _, ext := range []string{".mp3", ".aac", ".m4a", ".wav"} {
		path := filepath.Join(c.assetDir, "audio", key+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() && info.Size() > 0 {
			return gateway.OverlayAsset{Key: key, LocalPath: path, Exists: true}, nil
		}
	}
	return gateway.OverlayAsset{Key: key}, nil
}
