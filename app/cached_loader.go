package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"profitpulse/domain/table"
	"profitpulse/internal"
	"profitpulse/ports"
)

// CachedLoader reuses the last successful load until one of the watched
// files changes size or modification time. Degraded loads are never cached.
type CachedLoader struct {
	inner  ports.TableLoader
	paths  []string
	logger *internal.Logger

	mu     sync.Mutex
	key    string
	cached *table.LoadResult
}

// NewCachedLoader wraps inner and keys its result on the given files
func NewCachedLoader(inner ports.TableLoader, paths []string, logger *internal.Logger) *CachedLoader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &CachedLoader{inner: inner, paths: paths, logger: logger.With("CachedLoader")}
}

// Load returns the cached pair or reloads through the wrapped loader
func (l *CachedLoader) Load(ctx context.Context) table.LoadResult {
	key, ok := l.fileKey()
	if !ok {
		return l.inner.Load(ctx)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cached != nil && l.key == key {
		l.logger.Trace("cache hit for %s", key)
		return *l.cached
	}

	result := l.inner.Load(ctx)
	if result.OK() {
		l.key = key
		l.cached = &result
		l.logger.Debug("cached tables for %s", key)
	}
	return result
}

// Invalidate drops the cached pair
func (l *CachedLoader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cached = nil
	l.key = ""
}

// fileKey combines path, size and mtime of every watched file
func (l *CachedLoader) fileKey() (string, bool) {
	parts := make([]string, 0, len(l.paths))
	for _, path := range l.paths {
		info, err := os.Stat(path)
		if err != nil {
			return "", false
		}
		parts = append(parts, fmt.Sprintf("%s:%d:%d", path, info.Size(), info.ModTime().UnixNano()))
	}
	return strings.Join(parts, "|"), true
}
