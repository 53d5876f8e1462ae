package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger and makes it the fallback for
// log.Ctx. Development gets a console writer; every other environment logs
// JSON to stdout.
func Setup(env, level string) zerolog.Logger {
	return setup(os.Stdout, env, level)
}

func setup(w io.Writer, env, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339

	out := w
	if env == "development" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	l := zerolog.New(out).With().Timestamp().Str("service", "label-api").Logger()
	log.Logger = l
	zerolog.DefaultContextLogger = &log.Logger
	return l
}
