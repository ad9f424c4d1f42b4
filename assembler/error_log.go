package assembler

import (
	"fmt"
	"io"
)

// LogEntry is one diagnostic.
type LogEntry struct {
	Filename   string
	LineNumber int
	Source     string
	Message    string
	IsError    bool
}

func (e LogEntry) String() string {
	kind := "warning"
	if e.IsError {
		kind = "error"
	}
	if e.Filename == "" && e.LineNumber == 0 {
		return fmt.Sprintf("%s: %s", kind, e.Message)
	}
	return fmt.Sprintf("%s:%d: %s: %s", e.Filename, e.LineNumber, kind, e.Message)
}

// ErrorLog accumulates errors and warnings in the order they were raised.
type ErrorLog struct {
	entries  []LogEntry
	errors   int
	warnings int
}

// NewErrorLog returns an empty log.
func NewErrorLog() *ErrorLog {
	return &ErrorLog{}
}

// LogEntry records a diagnostic against line, which may be nil.
func (l *ErrorLog) LogEntry(line *SourceLine, isError bool, format string, args ...interface{}) {
	e := LogEntry{Message: fmt.Sprintf(format, args...), IsError: isError}
	if line != nil {
		e.Filename, e.LineNumber, e.Source = line.Filename, line.LineNumber, line.String()
	}
	l.entries = append(l.entries, e)
	if isError {
		l.errors++
	} else {
		l.warnings++
	}
}

// LogError records err, taking its line when it is an *Error.
func (l *ErrorLog) LogError(err error) {
	if ae, ok := err.(*Error); ok {
		l.LogEntry(ae.Line, true, "%s", ae.Msg)
		return
	}
	l.LogEntry(nil, true, "%v", err)
}

func (l *ErrorLog) HasErrors() bool   { return l.errors > 0 }
func (l *ErrorLog) HasWarnings() bool { return l.warnings > 0 }
func (l *ErrorLog) ErrorCount() int   { return l.errors }
func (l *ErrorLog) WarningCount() int { return l.warnings }

// Entries returns the recorded diagnostics.
func (l *ErrorLog) Entries() []LogEntry {
	return l.entries
}

// Clear empties the log.
func (l *ErrorLog) Clear() {
	l.entries = nil
	l.errors, l.warnings = 0, 0
}

// Dump writes every entry, one per line.
func (l *ErrorLog) Dump(w io.Writer) error {
	for _, e := range l.entries {
		if _, err := fmt.Fprintln(w, e); err != nil {
			return err
		}
	}
	return nil
}
