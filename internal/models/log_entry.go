// Package models contains domain types for the GStreamer Log Visualizer.
package models

import "fmt"

// Level is the debug level tag attached to a log line by its emitter.
type Level string

const (
	LevelError   Level = "ERROR"
	LevelWarning Level = "WARNING"
	LevelFixme   Level = "FIXME"
	LevelInfo    Level = "INFO"
	LevelDebug   Level = "DEBUG"
	LevelLog     Level = "LOG"
	LevelTrace   Level = "TRACE"
	LevelMemdump Level = "MEMDUMP"
)

var levelTable = map[string]Level{
	"ERROR":   LevelError,
	"WARNING": LevelWarning,
	"FIXME":   LevelFixme,
	"INFO":    LevelInfo,
	"DEBUG":   LevelDebug,
	"LOG":     LevelLog,
	"TRACE":   LevelTrace,
	"MEMDUMP": LevelMemdump,
}

// ParseLevel matches a raw token against the fixed level table.
// Matching is case-sensitive; GStreamer always emits upper-case tags.
func ParseLevel(s string) (Level, bool) {
	l, ok := levelTable[s]
	return l, ok
}

// Levels returns all known levels in emitter order.
func Levels() []Level {
	return []Level{
		LevelError, LevelWarning, LevelFixme, LevelInfo,
		LevelDebug, LevelLog, LevelTrace, LevelMemdump,
	}
}

// Entry represents a single parsed line from a GStreamer debug log.
// Entries are immutable once constructed.
type Entry struct {
	Timestamp uint64  `json:"ts"` // monotonic device time, nanoseconds
	PID       uint32  `json:"pid"`
	Thread    string  `json:"thread"`
	Level     Level   `json:"level"`
	Category  string  `json:"category"`
	File      string  `json:"file"`
	Line      uint32  `json:"line"`
	Function  string  `json:"function"`
	Object    *string `json:"object"` // nil when the location had no <...> token
	Message   string  `json:"message"`
}

// TimestampMillis returns the entry timestamp in milliseconds.
func (e *Entry) TimestampMillis() uint64 {
	return e.Timestamp / 1_000_000
}

// TimestampMicros returns the entry timestamp in microseconds.
func (e *Entry) TimestampMicros() uint64 {
	return e.Timestamp / 1_000
}

// FormatTimestamp renders a nanosecond timestamp the way GStreamer prints
// clock times: H:MM:SS.fffffffff.
func FormatTimestamp(ns uint64) string {
	secs := ns / 1_000_000_000
	frac := ns % 1_000_000_000
	return fmt.Sprintf("%d:%02d:%02d.%09d", secs/3600, (secs/60)%60, secs%60, frac)
}

// SerializableEntry is the external rendering of an Entry: timestamp as a
// display string, level as its symbolic name, object null when absent.
type SerializableEntry struct {
	TS       string  `json:"ts"`
	PID      uint32  `json:"pid"`
	Thread   string  `json:"thread"`
	Level    string  `json:"level"`
	Category string  `json:"category"`
	File     string  `json:"file"`
	Line     uint32  `json:"line"`
	Function string  `json:"function"`
	Object   *string `json:"object"`
	Message  string  `json:"message"`
}

// NewSerializableEntry converts an Entry for an API response.
func NewSerializableEntry(e *Entry) SerializableEntry {
	return SerializableEntry{
		TS:       FormatTimestamp(e.Timestamp),
		PID:      e.PID,
		Thread:   e.Thread,
		Level:    string(e.Level),
		Category: e.Category,
		File:     e.File,
		Line:     e.Line,
		Function: e.Function,
		Object:   e.Object,
		Message:  e.Message,
	}
}
