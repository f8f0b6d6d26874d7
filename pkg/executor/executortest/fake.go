// Package executortest provides a scripted executor.Executor for tests.
package executortest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/nguyentantai21042004/video-comprehend/pkg/executor"
)

// Call records one Execute or ExecuteInDir invocation.
type Call struct {
	Dir  string
	Name string
	Args []string
}

// Line renders the call as a shell-like string for assertions.
func (c Call) Line() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Handler scripts the result of one command.
type Handler func(call Call) (string, error)

// Fake dispatches commands to per-binary handlers. Binaries without a
// handler fail with executor.ErrNotFound, as if they were not installed.
type Fake struct {
	mu       sync.Mutex
	handlers map[string]Handler
	calls    []Call
}

// New returns an empty Fake.
func New() *Fake {
	return &Fake{handlers: make(map[string]Handler)}
}

// Handle registers h for the named binary and returns f for chaining.
func (f *Fake) Handle(name string, h Handler) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[name] = h
	return f
}

// Calls returns a copy of the recorded calls.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsTo returns the recorded calls for one binary.
func (f *Fake) CallsTo(name string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

func (f *Fake) Execute(ctx context.Context, name string, args ...string) (string, error) {
	return f.ExecuteInDir(ctx, "", name, args...)
}

func (f *Fake) ExecuteInDir(ctx context.Context, dir string, name string, args ...string) (string, error) {
	call := Call{Dir: dir, Name: name, Args: append([]string(nil), args...)}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	h, ok := f.handlers[name]
	f.mu.Unlock()

	if !ok {
		return "", fmt.Errorf("%w: %s", executor.ErrNotFound, name)
	}
	return h(call)
}

func (f *Fake) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.handlers[name]; !ok {
		return "", fmt.Errorf("%w: %s", executor.ErrNotFound, name)
	}
	return "/usr/bin/" + name, nil
}

// Arg returns the value following flag in args, or "".
func Arg(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

// Has reports whether args contains flag.
func Has(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}
