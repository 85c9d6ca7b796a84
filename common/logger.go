// The common package holds types and helpers that are shared by
// the topicproducer packages, and generically useful.
package common

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NopLogger is used by all topicproducer packages when no logger is
// configured. It keeps them blissfully quiet. Should you wish to see
// logging output, pass a logger built by NewLogger or any other
// *zap.Logger in the relevant Config.
var NopLogger = zap.NewNop()

// NewLogger builds a zap logger at the given level ("debug", "info",
// "warn", "error"). Development loggers write human readable output to
// stderr, production ones write JSON.
func NewLogger(level string, development bool) (*zap.Logger, error) {
	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", level)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	l, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build logger")
	}
	return l.Named("topicproducer"), nil
}

// OrNop returns l, or NopLogger if l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return NopLogger
	}
	return l
}
