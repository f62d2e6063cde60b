// SPDX-FileCopyrightText: 2023-present Datadog, Inc.
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileOutput describes an optional rotating log file destination.
type FileOutput struct {
	// Path of the log file.
	Path string
	// RotationSize is the size in megabytes a file may reach before rotation.
	RotationSize int
	// MaxBackups is the number of rotated files kept around.
	MaxBackups int
}

// LogrusFactory builds loggers backed by a shared logrus instance writing to
// the console and, when configured, to a rotating log file.
type LogrusFactory struct {
	root *logrus.Logger
}

var (
	_ Factory = (*LogrusFactory)(nil)
	_ Logger  = (*logrusAdapter)(nil)
)

// NewLogrusFactory assembles the production logger. The threshold applies to
// every logger created from the factory. A nil file output logs to the
// console only.
func NewLogrusFactory(threshold LoggerLevel, file *FileOutput) *LogrusFactory {
	root := logrus.New()
	root.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	root.SetLevel(logrusLevel(threshold))

	writers := []io.Writer{os.Stderr}
	if file != nil && file.Path != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   file.Path,
			MaxSize:    file.RotationSize,
			MaxBackups: file.MaxBackups,
			Compress:   true,
		})
	}
	root.SetOutput(io.MultiWriter(writers...))

	return &LogrusFactory{root: root}
}

// New creates a new logger.
func (f *LogrusFactory) New() Logger {
	return &logrusAdapter{
		entry: logrus.NewEntry(f.root),
		level: InfoLevel,
	}
}

// -----------------------------------------------------------------------------

type logrusAdapter struct {
	entry *logrus.Entry
	level LoggerLevel
}

func (l *logrusAdapter) Level(lvl LoggerLevel) Logger {
	return &logrusAdapter{entry: l.entry, level: lvl}
}

func (l *logrusAdapter) Field(k string, v any) Logger {
	return &logrusAdapter{entry: l.entry.WithField(k, v), level: l.level}
}

func (l *logrusAdapter) Fields(data map[string]any) Logger {
	return &logrusAdapter{entry: l.entry.WithFields(logrus.Fields(data)), level: l.level}
}

func (l *logrusAdapter) Error(err error) Logger {
	return &logrusAdapter{entry: l.entry.WithError(err), level: ErrorLevel}
}

func (l *logrusAdapter) Message(msg string) {
	l.entry.Log(logrusLevel(l.level), msg)
}

func (l *logrusAdapter) Messagef(format string, v ...any) {
	l.entry.Logf(logrusLevel(l.level), format, v...)
}

func logrusLevel(lvl LoggerLevel) logrus.Level {
	switch lvl {
	case DebugLevel:
		return logrus.DebugLevel
	case ErrorLevel:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
