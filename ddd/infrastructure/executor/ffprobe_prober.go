package executor

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"stream-compiler-service/pkg/config"
)

// FFprobeProber implements port.MediaProber using a local ffprobe binary.
type FFprobeProber struct {
	cfg *config.Config
}

func NewFFprobeProber(cfg *config.Config) *FFprobeProber {
	if cfg == nil {
		cfg = config.GetGlobalConfig()
	}
	return &FFprobeProber{cfg: cfg}
}

// ProbeDurationMs returns the container duration in whole milliseconds.
func (p *FFprobeProber) ProbeDurationMs(ctx context.Context, localPath string) (int64, error) {
	cmd := exec.CommandContext(ctx, p.binary(),
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		localPath,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", localPath, err)
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse ffprobe duration %q: %w", strings.TrimSpace(string(out)), err)
	}
	if seconds <= 0 {
		return 0, fmt.Errorf("ffprobe reported non-positive duration for %s", localPath)
	}
	return int64(math.Round(seconds * 1000)), nil
}

// ProbeDimensions returns the picture size of the first video stream.
func (p *FFprobeProber) ProbeDimensions(ctx context.Context, localPath string) (int, int, error) {
	cmd := exec.CommandContext(ctx, p.binary(),
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "csv=s=x:p=0",
		localPath,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, 0, fmt.Errorf("ffprobe %s: %w", localPath, err)
	}
	raw := strings.TrimSpace(string(out))
	parts := strings.Split(raw, "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("parse ffprobe dimensions %q", raw)
	}
	width, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("parse ffprobe width %q: %w", parts[0], err)
	}
	height, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("parse ffprobe height %q: %w", parts[1], err)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("ffprobe reported non-positive dimensions %dx%d for %s", width, height, localPath)
	}
	return width, height, nil
}

func (p *FFprobeProber) binary() string {
	if p.cfg != nil && strings.TrimSpace(p.cfg.Compile.FFmpeg.ProbePath) != "" {
		return p.cfg.Compile.FFmpeg.ProbePath
	}
	return "ffprobe"
}
