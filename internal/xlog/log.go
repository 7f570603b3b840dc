/*
 *    Copyright 2021 chenquan
 *
 *    Licensed under the Apache License, Version 2.0 (the "License");
 *    you may not use this file except in compliance with the License.
 *    You may obtain a copy of the License at
 *
 *        http://www.apache.org/licenses/LICENSE-2.0
 *
 *    Unless required by applicable law or agreed to in writing, software
 *    distributed under the License is distributed on an "AS IS" BASIS,
 *    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *    See the License for the specific language governing permissions and
 *    limitations under the License.
 */

// Package xlog wraps zap with the module-tagging convention the broker uses
// throughout (xlog.LoggerModule("server"), xlog.LoggerModule("handler"),
// ...), rotating output through lumberjack when configured with a file
// sink. The eight syslog-style severities of spec §6 are layered on top of
// zap's levels via four helpers for the severities zap has no direct
// equivalent for: Notice logs at info level, and Critical, Alert and
// Emergency log at error level, each adding a "severity" field.
package xlog

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu   sync.RWMutex
	base *zap.Logger = newDefault()
)

// Options configures the process-wide logger. A zero value logs JSON to
// stderr at info level.
type Options struct {
	Level      string // debug, info, warn, error
	FilePath   string // when set, rotated through lumberjack instead of stderr
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

func newDefault() *zap.Logger {
	l, _ := zap.NewProduction()
	return l
}

// Init (re)configures the process-wide logger. Call once at startup before
// any Log instance is used; thread-safe for tests that call it repeatedly.
func Init(opts Options) error {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return err
		}
	}

	var writer zapcore.WriteSyncer
	if opts.FilePath != "" {
		writer = zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    nonZero(opts.MaxSizeMB, 100),
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
		})
	} else {
		writer = zapcore.AddSync(os.Stderr)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), writer, level)

	mu.Lock()
	base = zap.New(core)
	mu.Unlock()
	return nil
}

func nonZero(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

// Log is a module-scoped logger, mirroring the teacher's xlog.Log handle
// returned from LoggerModule.
type Log struct {
	z *zap.Logger
}

// LoggerModule returns a Log bound to the given module name, attached as a
// structured field to every line it emits.
func LoggerModule(module string) *Log {
	mu.RLock()
	z := base
	mu.RUnlock()
	return &Log{z: z.With(zap.String("module", module))}
}

func (l *Log) Debug(msg string, fields ...zap.Field)   { l.z.Debug(msg, fields...) }
func (l *Log) Info(msg string, fields ...zap.Field)    { l.z.Info(msg, fields...) }
func (l *Log) Notice(msg string, fields ...zap.Field)  { l.z.Info(msg, append(fields, zap.String("severity", "notice"))...) }
func (l *Log) Warn(msg string, fields ...zap.Field)    { l.z.Warn(msg, fields...) }
func (l *Log) Error(msg string, fields ...zap.Field)   { l.z.Error(msg, fields...) }
func (l *Log) Critical(msg string, fields ...zap.Field) {
	l.z.Error(msg, append(fields, zap.String("severity", "critical"))...)
}
func (l *Log) Alert(msg string, fields ...zap.Field) {
	l.z.Error(msg, append(fields, zap.String("severity", "alert"))...)
}
func (l *Log) Emergency(msg string, fields ...zap.Field) {
	l.z.Error(msg, append(fields, zap.String("severity", "emergency"))...)
}
func (l *Log) Panic(msg string, fields ...zap.Field) { l.z.Panic(msg, fields...) }
func (l *Log) Fatal(msg string, fields ...zap.Field) { l.z.Fatal(msg, fields...) }

// Sync flushes the underlying zap core; call on shutdown.
func Sync() error {
	mu.RLock()
	z := base
	mu.RUnlock()
	return z.Sync()
}
