package assert

import (
	"fmt"
	"sync"
)

var (
	mu       sync.Mutex
	building map[string]bool
)

// NotNil panics when v is nil; used to guard singleton assembly.
func NotNil(v interface{}) {
	if v == nil {
		panic("assert: unexpected nil value during assembly")
	}
}

// NotCircular detects re-entrant singleton construction on the same goroutine
// chain. Assembly code calls it at the top of every Default* constructor.
func NotCircular() {
	mu.Lock()
	defer mu.Unlock()
	if building == nil {
		building = make(map[string]bool)
	}
}

// Must panics with the given message when cond is false.
func Must(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
