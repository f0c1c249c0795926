package logger

import (
	"go.uber.org/zap"
)

// New returns a production logger when env is "production" and a
// development logger otherwise.
func New(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// Sync flushes buffered entries. The error is dropped because stdout and
// stderr report EINVAL on sync under most container runtimes.
func Sync(l *zap.Logger) {
	_ = l.Sync()
}
