package testutil

import (
	"fmt"
	"strings"
	"sync"
)

// Entry is one recorded log call.
type Entry struct {
	Level  string
	Msg    string
	Fields []interface{}
}

// RecordingLogger keeps every log call for assertions. Safe for
// concurrent use.
type RecordingLogger struct {
	mu      sync.Mutex
	entries []Entry
}

func (l *RecordingLogger) record(level, msg string, kv []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{Level: level, Msg: msg, Fields: kv})
}

func (l *RecordingLogger) Debug(msg string, kv ...interface{}) { l.record("debug", msg, kv) }
func (l *RecordingLogger) Info(msg string, kv ...interface{})  { l.record("info", msg, kv) }
func (l *RecordingLogger) Warn(msg string, kv ...interface{})  { l.record("warn", msg, kv) }
func (l *RecordingLogger) Error(msg string, kv ...interface{}) { l.record("error", msg, kv) }

// Entries returns a copy of the recorded calls.
func (l *RecordingLogger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

// Contains reports whether a call at level has a message containing substr.
func (l *RecordingLogger) Contains(level, substr string) bool {
	for _, e := range l.Entries() {
		if e.Level == level && strings.Contains(e.Msg, substr) {
			return true
		}
	}
	return false
}

// String renders all entries, for failure messages.
func (l *RecordingLogger) String() string {
	var b strings.Builder
	for _, e := range l.Entries() {
		fmt.Fprintf(&b, "%s %s %v\n", e.Level, e.Msg, e.Fields)
	}
	return b.String()
}
