package remote

import (
	"fmt"
	"log/slog"
)

// slogLogger adapts resty's printf-style logger to slog.
type slogLogger struct {
	logger *slog.Logger
}

func (l slogLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

func (l slogLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, v...))
}

func (l slogLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, v...))
}
