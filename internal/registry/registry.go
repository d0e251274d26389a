// Package registry caches compiled zones by name, collapsing
// concurrent loads of the same name into a single compile.
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// ErrInvalidName reports a zone name the registry refuses to look up.
var ErrInvalidName = errors.New("registry: invalid zone name")

// Registry caches values compiled from zone names. Construct with New;
// the zero value is not usable.
type Registry[T any] struct {
	compile func(name string) (T, error)

	mu    sync.Mutex
	done  map[string]T
	calls map[string]*call[T]
}

// call tracks one in-flight compile so latecomers can wait on it.
type call[T any] struct {
	ready chan struct{}
	val   T
	err   error
}

// New returns a registry compiling cache misses with compile. Failed
// compiles are not cached; the next Load retries.
func New[T any](compile func(name string) (T, error)) *Registry[T] {
	return &Registry[T]{
		compile: compile,
		done:    make(map[string]T),
		calls:   make(map[string]*call[T]),
	}
}

// Load returns the cached value for name, compiling it on first use.
func (r *Registry[T]) Load(name string) (T, error) {
	var zero T
	if err := ValidateName(name); err != nil {
		return zero, err
	}

	r.mu.Lock()
	if v, ok := r.done[name]; ok {
		r.mu.Unlock()
		return v, nil
	}
	if c, ok := r.calls[name]; ok {
		r.mu.Unlock()
		<-c.ready
		return c.val, c.err
	}
	c := &call[T]{ready: make(chan struct{})}
	r.calls[name] = c
	r.mu.Unlock()

	start := time.Now()
	c.val, c.err = r.compile(name)

	r.mu.Lock()
	delete(r.calls, name)
	if c.err == nil {
		r.done[name] = c.val
	}
	r.mu.Unlock()
	close(c.ready)

	if c.err != nil {
		slog.Warn("zone compile failed", "zone", name, "error", c.err)
	} else {
		slog.Debug("zone compiled", "zone", name, "duration", time.Since(start))
	}
	return c.val, c.err
}

// ValidateName rejects names that are empty, rooted, or traverse
// upward, before any source sees them.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if strings.HasPrefix(name, "/") || strings.HasPrefix(name, "\\") {
		return fmt.Errorf("%w: %q is rooted", ErrInvalidName, name)
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return fmt.Errorf("%w: %q contains traversal", ErrInvalidName, name)
		}
	}
	return nil
}
