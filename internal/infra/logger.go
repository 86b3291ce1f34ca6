package infra

import (
	"io"
	"os"
	"time"

	"github.com/Ayush3323/crm-backend/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger installs the global zerolog logger: pretty console output in
// development, JSON in production, plus a rotating file when LOG_FILE is set.
// The returned closer flushes the file sink; it is a no-op without one.
func NewLogger(cfg *config.Config) (zerolog.Logger, io.Closer) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	var console io.Writer = os.Stderr
	if !cfg.IsProduction() {
		console = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	var closer io.Closer = nopCloser{}
	out := console
	if cfg.LogFile != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
			MaxAge:     cfg.LogMaxAgeDays,
			Compress:   true,
		}
		out = zerolog.MultiLevelWriter(console, file)
		closer = file
	}

	logger := zerolog.New(out).With().Timestamp().Str("service", "crm-backend").Logger()
	log.Logger = logger
	return logger, closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
