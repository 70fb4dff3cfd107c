package internal

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the fetcher's logger. It is a no-op logger unless
// SetLogger installed one.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the fetcher's logger. Call it before fetching.
func SetLogger(l *zap.Logger) {
	logger = l
}
