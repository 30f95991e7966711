package shopify

import (
	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

// leveledLogger routes go-shopify's internal logging (retries, rate limits) to zerolog
type leveledLogger struct {
	logger zerolog.Logger
}

func newLeveledLogger(logger zerolog.Logger) *leveledLogger {
	return &leveledLogger{logger: logger.With().Str("component", "go-shopify").Logger()}
}

func (l *leveledLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug().Msgf(format, v...)
}

func (l *leveledLogger) Infof(format string, v ...interface{}) {
	l.logger.Info().Msgf(format, v...)
}

func (l *leveledLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn().Msgf(format, v...)
}

func (l *leveledLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error().Msgf(format, v...)
}

var _ goshopify.LeveledLoggerInterface = (*leveledLogger)(nil)
