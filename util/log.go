// Copyright 2016, RadiantBlue Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package util

import (
	"errors"
	"io"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AppName is reported on every log line
const AppName = "bf-gibs-explorer"

// Severity is the audit severity of a log message
type Severity string

// Severities understood by the logger
const (
	DEBUG Severity = "DEBUG"
	INFO  Severity = "INFO"
	ALERT Severity = "ALERT"
	ERROR Severity = "ERROR"
	FATAL Severity = "FATAL"
)

// LogContext identifies the component and session a log line belongs to
type LogContext interface {
	AppName() string
	SessionID() string
	LogRootDir() string
}

// BasicLogContext is a LogContext with a lazily generated session ID
type BasicLogContext struct {
	sessionID string
}

// AppName returns the application name
func (c *BasicLogContext) AppName() string {
	return AppName
}

// SessionID returns the session ID, generating one on first use
func (c *BasicLogContext) SessionID() string {
	if c.sessionID == "" {
		c.sessionID = NewSessionID()
	}
	return c.sessionID
}

// LogRootDir is unused; logs go to stderr
func (c *BasicLogContext) LogRootDir() string {
	return ""
}

// NewSessionID returns a random session identifier
func NewSessionID() string {
	return uuid.NewString()
}

// LogAuditInput describes a single audit event
type LogAuditInput struct {
	Actor    string
	Action   string
	Actee    string
	Message  string
	Severity Severity
}

var (
	loggerMu   sync.Mutex
	baseLogger *zerolog.Logger
)

func logger() *zerolog.Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if baseLogger == nil {
		var out io.Writer = os.Stderr
		if IsPrettyLogging() {
			out = zerolog.ConsoleWriter{Out: os.Stderr}
		}
		level, err := zerolog.ParseLevel(GetLogLevel())
		if err != nil || level == zerolog.NoLevel {
			level = zerolog.InfoLevel
		}
		l := zerolog.New(out).Level(level).With().Timestamp().Logger()
		baseLogger = &l
	}
	return baseLogger
}

// SetLogOutput redirects all logging to w; used by tests and the terminal explorer.
func SetLogOutput(w io.Writer) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	l := zerolog.New(w).With().Timestamp().Logger()
	baseLogger = &l
}

func levelFor(severity Severity) zerolog.Level {
	switch severity {
	case DEBUG:
		return zerolog.DebugLevel
	case ALERT:
		return zerolog.WarnLevel
	case ERROR:
		return zerolog.ErrorLevel
	case FATAL:
		// Logged at error level; callers decide whether to exit.
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func event(ctx LogContext, severity Severity) *zerolog.Event {
	e := logger().WithLevel(levelFor(severity))
	if ctx != nil {
		e = e.Str("app", ctx.AppName()).Str("session", ctx.SessionID())
	}
	return e.Str("severity", string(severity))
}

// LogAudit logs an audit event: who did what to whom
func LogAudit(ctx LogContext, input LogAuditInput) {
	event(ctx, input.Severity).
		Str("actor", input.Actor).
		Str("action", input.Action).
		Str("actee", input.Actee).
		Msg(input.Message)
}

// LogInfo logs an informational message
func LogInfo(ctx LogContext, message string) {
	event(ctx, INFO).Msg(message)
}

// LogAlert logs a message that needs attention but is not an error
func LogAlert(ctx LogContext, message string) {
	event(ctx, ALERT).Msg(message)
}

// LogSimpleErr logs message along with err and returns an error combining both.
func LogSimpleErr(ctx LogContext, message string, err error) error {
	if err == nil {
		err = errors.New(message)
		event(ctx, ERROR).Msg(message)
		return err
	}
	event(ctx, ERROR).Err(err).Msg(message)
	return &wrappedErr{message: message, err: err}
}

type wrappedErr struct {
	message string
	err     error
}

func (e *wrappedErr) Error() string {
	return e.message + " " + e.err.Error()
}

func (e *wrappedErr) Unwrap() error {
	return e.err
}
