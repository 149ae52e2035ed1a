// Package hostlog wraps charmbracelet/log with the component tagging and
// opt-in-per-component filtering the reference host's debug logger uses,
// so a CPU trace can be switched on without drowning it in screen/audio
// chatter.
package hostlog

import (
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

// Component names one of the machine's subsystems, mirroring the
// reference debug logger's Component enum.
type Component string

const (
	ComponentCPU      Component = "cpu"
	ComponentScreen   Component = "screen"
	ComponentAudio    Component = "audio"
	ComponentInput    Component = "input"
	ComponentFS       Component = "fs"
	ComponentDatetime Component = "datetime"
	ComponentHost     Component = "host"
)

// Logger fans component-tagged messages out to a charmbracelet/log.Logger,
// with each component individually enabled or disabled; logging is opt-in
// exactly like the reference host, which defaults every component to off.
type Logger struct {
	base *log.Logger

	mu      sync.RWMutex
	enabled map[Component]bool
}

// New builds a Logger writing to w (os.Stderr if nil) at the given level.
func New(w io.Writer, level log.Level) *Logger {
	if w == nil {
		w = os.Stderr
	}
	base := log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.000",
	})
	return &Logger{base: base, enabled: make(map[Component]bool)}
}

// Enable turns logging on for a component. All components start disabled.
func (l *Logger) Enable(c Component) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled[c] = true
}

// Disable turns logging back off for a component.
func (l *Logger) Disable(c Component) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled[c] = false
}

func (l *Logger) isEnabled(c Component) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.enabled[c]
}

// Debugf logs at debug level under the given component if it's enabled.
func (l *Logger) Debugf(c Component, format string, args ...any) {
	if !l.isEnabled(c) {
		return
	}
	l.base.With("component", string(c)).Debugf(format, args...)
}

// Errorf logs at error level unconditionally — errors are never filtered
// by component, only by the base logger's level.
func (l *Logger) Errorf(c Component, format string, args ...any) {
	l.base.With("component", string(c)).Errorf(format, args...)
}

// Infof logs at info level unconditionally.
func (l *Logger) Infof(c Component, format string, args ...any) {
	l.base.With("component", string(c)).Infof(format, args...)
}

// forComponent adapts Logger to uxn.Logger (a bare Debugf(format, args...))
// for one fixed component, so internal/uxn.Machine can log without knowing
// about components at all.
type forComponent struct {
	l *Logger
	c Component
}

// For returns a uxn.Logger-shaped adapter that always tags messages with c.
func (l *Logger) For(c Component) interface{ Debugf(string, ...any) } {
	return forComponent{l: l, c: c}
}

func (f forComponent) Debugf(format string, args ...any) { f.l.Debugf(f.c, format, args...) }
