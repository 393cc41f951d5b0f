// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logger

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var LogContainer logContainer

type logContainer struct {
	mu           sync.Mutex
	level        zap.AtomicLevel
	logger       *zap.Logger
	simpleLogger *zap.SugaredLogger
	file         *os.File
}

// GetSimpleLogger returns the pointer to the sugared logger and creates one
// if none exists
func (l *logContainer) GetSimpleLogger() *zap.SugaredLogger {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.initLocked()
	return l.simpleLogger
}

// SetDebug toggles debug output, which traces every EC handshake step.
func (l *logContainer) SetDebug(on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.initLocked()
	if on {
		l.level.SetLevel(zapcore.DebugLevel)
	} else {
		l.level.SetLevel(zapcore.InfoLevel)
	}
}

// AddFile tees all further log output into a JSON log at path.
// Loggers handed out earlier keep writing to the console only.
func (l *logContainer) AddFile(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.initLocked()
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("unable to open logfile: %w", err)
	}
	l.file = f
	l.setCoreLocked(zapcore.NewTee(l.getConsoleCore(), l.getJsonCore(zapcore.AddSync(f))))
	return nil
}

// Sync flushes buffered entries and closes the log file, if any.
func (l *logContainer) Sync() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.logger != nil {
		l.logger.Sync()
	}
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
}

func (l *logContainer) initLocked() {
	if l.logger != nil {
		return
	}
	l.level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	l.setCoreLocked(l.getConsoleCore())
}

func (l *logContainer) setCoreLocked(core zapcore.Core) {
	l.logger = zap.New(core)
	l.simpleLogger = l.logger.Sugar()
}

func getConsoleEncoder() zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(encoderConfig)
}

func getJsonEncoder() zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.EpochTimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(encoderConfig)
}

// stdout belongs to command output, so the console core writes to stderr.
func (l *logContainer) getConsoleCore() zapcore.Core {
	return zapcore.NewCore(getConsoleEncoder(), zapcore.Lock(os.Stderr), l.level)
}

func (l *logContainer) getJsonCore(w zapcore.WriteSyncer) zapcore.Core {
	return zapcore.NewCore(getJsonEncoder(), w, l.level)
}
