// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logging

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/natefinch/lumberjack"
)

// Rotation limits for file logs.
const (
	logFileMaxSizeMB  = 100
	logFileMaxBackups = 5
	logFileMaxAgeDays = 28
)

// EnvLogLevel is the environment variable consulted for the default level.
const EnvLogLevel = "LOG_LEVEL"

// ParseLogLevel converts a level name into a slog.Level.
// Unknown or empty values map to slog.LevelInfo.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewStructuredLogger returns a JSON logger writing to stderr.
func NewStructuredLogger(module, version, level string) *slog.Logger {
	return newLogger(os.Stderr, module, version, ParseLogLevel(level))
}

func newLogger(w io.Writer, module, version string, lvl slog.Level) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: lvl <= slog.LevelDebug,
		Level:     lvl,
	})
	return slog.New(h).With(
		slog.String("module", module),
		slog.String("version", version),
	)
}

// SetDefaultStructuredLogger installs a structured logger as the slog default,
// using LOG_LEVEL for verbosity.
func SetDefaultStructuredLogger(module, version string) {
	SetDefaultStructuredLoggerWithLevel(module, version, os.Getenv(EnvLogLevel))
}

// SetDefaultStructuredLoggerWithLevel installs a structured logger with an
// explicit level as the slog default.
func SetDefaultStructuredLoggerWithLevel(module, version, level string) {
	slog.SetDefault(NewStructuredLogger(module, version, level))
}

// NewFileWriter returns a size-rotated log file writer. Rotated files are
// gzip-compressed.
func NewFileWriter(path string) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    logFileMaxSizeMB,
		MaxBackups: logFileMaxBackups,
		MaxAge:     logFileMaxAgeDays,
		Compress:   true,
	}
}

// SetDefaultStructuredLoggerWithWriter installs a structured logger writing
// to w as the slog default.
func SetDefaultStructuredLoggerWithWriter(w io.Writer, module, version, level string) {
	slog.SetDefault(newLogger(w, module, version, ParseLogLevel(level)))
}

// NewLogLogger adapts the default slog handler to a standard library logger,
// for APIs such as http.Server.ErrorLog.
func NewLogLogger(level slog.Level, addSource bool) *log.Logger {
	h := slog.Default().Handler()
	if addSource {
		return slog.NewLogLogger(h, level)
	}
	l := slog.NewLogLogger(h, level)
	l.SetFlags(0)
	return l
}
