package compiler

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"stream-compiler-service/ddd/domain/port"
)

// fakeEngine 内存版MediaEngine，记录每次调用的参数序列
type fakeEngine struct {
	mu       sync.Mutex
	files    map[string][]byte
	runs     [][]string
	cleanups int

	// failWhen 返回true时对应的Run调用失败
	failWhen func(args []string) bool
	// runHook 每次Run前调用，可用于模拟外部事件（如取消）
	runHook func(args []string)
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{files: make(map[string][]byte)}
}

func (e *fakeEngine) WriteInput(ctx context.Context, name string, data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.files[name] = append([]byte(nil), data...)
	return nil
}

func (e *fakeEngine) Run(ctx context.Context, args []string, opts port.RunOptions) error {
	e.mu.Lock()
	e.runs = append(e.runs, append([]string(nil), args...))
	hook := e.runHook
	e.mu.Unlock()

	if hook != nil {
		hook(args)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if e.failWhen != nil && e.failWhen(args) {
		return fmt.Errorf("engine exited with status 1")
	}

	// 最后一个参数约定为输出路径，产出非空文件
	if len(args) > 0 {
		e.mu.Lock()
		e.files[workspaceRelative(args[len(args)-1])] = []byte("media")
		e.mu.Unlock()
	}
	return nil
}

func (e *fakeEngine) ReadOutput(ctx context.Context, name string) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	data, ok := e.files[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	return append([]byte(nil), data...), nil
}

func (e *fakeEngine) FileSize(ctx context.Context, name string) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return int64(len(e.files[name])), nil
}

func (e *fakeEngine) Remove(ctx context.Context, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.files, name)
	return nil
}

func (e *fakeEngine) WorkspacePath(name string) string {
	return "/work/" + name
}

func (e *fakeEngine) Cleanup() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cleanups++
	e.files = make(map[string][]byte)
	return nil
}

func (e *fakeEngine) runCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.runs)
}

func (e *fakeEngine) lastRun() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.runs) == 0 {
		return nil
	}
	return e.runs[len(e.runs)-1]
}

func (e *fakeEngine) anyRunContains(want string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, run := range e.runs {
		if argsContain(run, want) {
			return true
		}
	}
	return false
}

func (e *fakeEngine) hasFile(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	data, ok := e.files[name]
	return ok && len(data) > 0
}

func workspaceRelative(path string) string {
	return strings.TrimPrefix(path, "/work/")
}

func argsContain(args []string, want string) bool {
	for _, a := range args {
		if strings.Contains(a, want) {
			return true
		}
	}
	return false
}
