// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Debug bool
	// File, when set, receives a rotated JSON copy of every log line.
	File string
	// Console defaults to stderr.
	Console io.Writer
}

// Setup installs the global logger and returns a closer for the log file.
func Setup(opts Options) io.Closer {
	zerolog.TimeFieldFormat = time.RFC3339
	level := zerolog.InfoLevel
	if opts.Debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	out := opts.Console
	if out == nil {
		out = os.Stderr
	}
	console := zerolog.ConsoleWriter{Out: out, TimeFormat: time.DateTime}

	var closer io.Closer = nopCloser{}
	var w io.Writer = console
	if opts.File != "" {
		file := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10,
			MaxBackups: 5,
			MaxAge:     28,
			Compress:   true,
		}
		w = zerolog.MultiLevelWriter(console, file)
		closer = file
	}

	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	return closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
