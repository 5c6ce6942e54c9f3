package config

import (
	"io"
	"log"
	"os"
)

// LogLevel selects how verbose the analyses are.
type LogLevel int

const (
	// ErrLevel=1 - the minimum level of logging.
	ErrLevel LogLevel = iota + 1

	// WarnLevel=2 - the level for logging warnings and errors.
	WarnLevel

	// InfoLevel=3 - the level for high-level information and results.
	InfoLevel

	// DebugLevel=4 - the level for debugging information.
	DebugLevel

	// TraceLevel=5 - the level for per-node tracing. Only usable on small
	// graphs.
	TraceLevel
)

// LogGroup bundles one logger per level, gated on the configured level.
type LogGroup struct {
	level LogLevel
	trace *log.Logger
	debug *log.Logger
	info  *log.Logger
	warn  *log.Logger
	err   *log.Logger
}

// NewLogGroup returns a log group configured to the logging settings stored
// in the config.
func NewLogGroup(config *Config) *LogGroup {
	return &LogGroup{
		level: LogLevel(config.LogLevel),
		trace: log.New(os.Stderr, "[TRACE] ", log.Ltime),
		debug: log.New(os.Stderr, "[DEBUG] ", log.Ltime),
		info:  log.New(os.Stderr, "[INFO] ", log.Ltime),
		warn:  log.New(os.Stderr, "[WARN] ", log.Ltime),
		err:   log.New(os.Stderr, "[ERROR] ", log.Ltime),
	}
}

// SetAllOutput sets the output of every logger in the group to w.
func (l *LogGroup) SetAllOutput(w io.Writer) {
	l.trace.SetOutput(w)
	l.debug.SetOutput(w)
	l.info.SetOutput(w)
	l.warn.SetOutput(w)
	l.err.SetOutput(w)
}

// SetAllFlags sets the flags of every logger in the group to x.
func (l *LogGroup) SetAllFlags(x int) {
	l.trace.SetFlags(x)
	l.debug.SetFlags(x)
	l.info.SetFlags(x)
	l.warn.SetFlags(x)
	l.err.SetFlags(x)
}

// Tracef logs at trace level. Arguments are handled in the manner of Printf.
func (l *LogGroup) Tracef(format string, v ...any) {
	if l.level >= TraceLevel {
		l.trace.Printf(format, v...)
	}
}

// Debugf logs at debug level. Arguments are handled in the manner of Printf.
func (l *LogGroup) Debugf(format string, v ...any) {
	if l.level >= DebugLevel {
		l.debug.Printf(format, v...)
	}
}

// Infof logs at info level. Arguments are handled in the manner of Printf.
func (l *LogGroup) Infof(format string, v ...any) {
	if l.level >= InfoLevel {
		l.info.Printf(format, v...)
	}
}

// Warnf logs at warn level. Arguments are handled in the manner of Printf.
func (l *LogGroup) Warnf(format string, v ...any) {
	if l.level >= WarnLevel {
		l.warn.Printf(format, v...)
	}
}

// Errorf logs at error level. Arguments are handled in the manner of Printf.
func (l *LogGroup) Errorf(format string, v ...any) {
	if l.level >= ErrLevel {
		l.err.Printf(format, v...)
	}
}
