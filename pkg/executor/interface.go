package executor

import (
	"context"
	"errors"
)

// ErrNotFound is returned when the requested binary is not on PATH.
var ErrNotFound = errors.New("executable not found")

// Executor defines the interface for executing external commands
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
	ExecuteInDir(ctx context.Context, dir string, name string, args ...string) (string, error)
	// LookPath resolves name against PATH. Missing binaries wrap ErrNotFound.
	LookPath(name string) (string, error)
}
