package executor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"stream-compiler-service/ddd/domain/port"
	"stream-compiler-service/pkg/config"
	"stream-compiler-service/pkg/logger"
)

// FFmpegEngineFactory creates one workspace-scoped engine per compile job.
type FFmpegEngineFactory struct {
	cfg *config.Config
}

func NewFFmpegEngineFactory(cfg *config.Config) *FFmpegEngineFactory {
	if cfg == nil {
		cfg = config.GetGlobalConfig()
	}
	return &FFmpegEngineFactory{cfg: cfg}
}

// NewEngine creates a MediaEngine whose workspace is a fresh per-job directory.
func (f *FFmpegEngineFactory) NewEngine(jobUUID string) (port.MediaEngine, error) {
	tempDir := os.TempDir()
	if f.cfg != nil && strings.TrimSpace(f.cfg.Compile.FFmpeg.TempDir) != "" {
		tempDir = f.cfg.Compile.FFmpeg.TempDir
	}
	workspace := filepath.Join(tempDir, "job_"+jobUUID)
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		return nil, fmt.Errorf("create job workspace: %w", err)
	}
	return &ffmpegEngine{cfg: f.cfg, workspace: workspace}, nil
}

// ffmpegEngine implements port.MediaEngine on top of a local ffmpeg binary.
// All file operations are confined to the job workspace directory.
type ffmpegEngine struct {
	cfg       *config.Config
	workspace string
}

func (e *ffmpegEngine) WriteInput(ctx context.Context, name string, data []byte) error {
	path := e.WorkspacePath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create input dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (e *ffmpegEngine) ReadOutput(ctx context.Context, name string) ([]byte, error) {
	return os.ReadFile(e.WorkspacePath(name))
}

func (e *ffmpegEngine) FileSize(ctx context.Context, name string) (int64, error) {
	info, err := os.Stat(e.WorkspacePath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	return info.Size(), nil
}

func (e *ffmpegEngine) Remove(ctx context.Context, name string) error {
	err := os.Remove(e.WorkspacePath(name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (e *ffmpegEngine) WorkspacePath(name string) string {
	return filepath.Join(e.workspace, filepath.Clean("/"+name))
}

func (e *ffmpegEngine) Cleanup() error {
	return os.RemoveAll(e.workspace)
}

// Run executes ffmpeg with the given arguments, streaming progress from stderr.
func (e *ffmpegEngine) Run(ctx context.Context, args []string, opts port.RunOptions) error {
	binary := "ffmpeg"
	if e.cfg != nil && e.cfg.Compile.FFmpeg.BinaryPath != "" {
		binary = e.cfg.Compile.FFmpeg.BinaryPath
	}

	full := make([]string, 0, len(args)+3)
	full = append(full, "-progress", "pipe:2", "-nostats")
	full = append(full, args...)
	cmd := exec.CommandContext(ctx, binary, full...)
	cmd.Dir = e.workspace

	logger.Infof("ffmpeg command workspace=%s command=%s %s", e.workspace, binary, strings.Join(args, " "))

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("create stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	progressDone := make(chan struct{})
	tail := make([]string, 0, 200)
	go func() {
		defer close(progressDone)
		e.scanProgress(ctx, stderr, opts, &tail)
	}()

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case <-ctx.Done():
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		<-progressDone
		return ctx.Err()
	case err := <-done:
		<-progressDone
		if err != nil {
			t := tail
			if n := len(t); n > 50 {
				t = t[n-50:]
			}
			return fmt.Errorf("ffmpeg failed: %w; tail: %s", err, strings.Join(t, "\n"))
		}
		return nil
	}
}

var reStderrTime = regexp.MustCompile(`time=(\d+):(\d+):(\d+\.?\d*)`)

func (e *ffmpegEngine) scanProgress(ctx context.Context, stderr io.ReadCloser, opts port.RunOptions, capture *[]string) {
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 1024), 1024*1024)
	totalMs := float64(opts.TotalDurationMs)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		line := scanner.Text()

		if strings.HasPrefix(line, "out_time_ms=") {
			if us, err := strconv.ParseFloat(strings.TrimPrefix(line, "out_time_ms="), 64); err == nil && totalMs > 0 {
				emitProgress(us/1000, totalMs, opts.ProgressCb)
			}
			continue
		}

		if m := reStderrTime.FindStringSubmatch(line); len(m) == 4 && totalMs > 0 {
			hh, _ := strconv.ParseFloat(m[1], 64)
			mm, _ := strconv.ParseFloat(m[2], 64)
			ss, _ := strconv.ParseFloat(m[3], 64)
			emitProgress((hh*3600+mm*60+ss)*1000, totalMs, opts.ProgressCb)
			continue
		}

		if capture != nil {
			b := *capture
			if len(b) >= 200 {
				b = b[1:]
			}
			b = append(b, line)
			*capture = b
		}
	}
}

func emitProgress(currentMs, totalMs float64, cb port.ProgressCallback) {
	if cb == nil || totalMs <= 0 {
		return
	}
	pct := int((currentMs / totalMs) * 100)
	if pct > 99 {
		pct = 99
	}
	if pct < 0 {
		pct = 0
	}
	cb(pct)
}
