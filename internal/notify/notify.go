// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package notify is the decoder's diagnostic sink: directory orphans are
// non-fatal, so they are reported here rather than as errors.
package notify

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Level orders diagnostic severity.
type Level int

const (
	DebugLevel Level = iota
	WarnLevel
)

// Logger is a minimal mutex-guarded sink; it carries no other state so a
// *File can own one without reaching for a process-wide logging framework.
type Logger struct {
	mu    sync.Mutex
	out   io.Writer
	level Level
}

// New creates a Logger writing to w, filtering anything below level.
func New(w io.Writer, level Level) *Logger {
	return &Logger{out: w, level: level}
}

var def = New(io.Discard, WarnLevel)

// Default returns the process-wide diagnostic sink used by a *File that
// hasn't been given one explicitly. It exists purely for convenience —
// every File can still be pointed at its own Logger.
func Default() *Logger { return def }

// SetDefault replaces the process-wide default sink, e.g. to point it at
// os.Stderr for a command-line caller.
func SetDefault(l *Logger) { def = l }

func (l *Logger) log(level Level, msg string) {
	if l == nil || level < l.level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "[%s] %s\n", level, msg)
}

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case WarnLevel:
		return "WARN"
	default:
		return "UNKNOWN"
	}
}

func (l *Logger) Debug(msg string) { l.log(DebugLevel, msg) }
func (l *Logger) Warn(msg string)  { l.log(WarnLevel, msg) }

func (l *Logger) Debugf(format string, args ...any) { l.log(DebugLevel, fmt.Sprintf(format, args...)) }
func (l *Logger) Warnf(format string, args ...any)  { l.log(WarnLevel, fmt.Sprintf(format, args...)) }

// Stderr is a convenience Logger callers can pass to WithNotifier.
var Stderr = New(os.Stderr, WarnLevel)
