package logger

import (
	"encoding/json"

	"github.com/rs/zerolog"
)

const defaultBufferSize = 1000

// LogEntry is one parsed log line as served by the logs endpoint.
type LogEntry struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Component string         `json:"component,omitempty"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Recorder is an io.Writer that keeps the latest zerolog JSON entries.
type Recorder struct {
	buffer *RingBuffer[LogEntry]
}

// NewRecorder creates a recorder holding up to size entries.
func NewRecorder(size int) *Recorder {
	if size <= 0 {
		size = defaultBufferSize
	}
	return &Recorder{buffer: NewRingBuffer[LogEntry](size)}
}

// Write implements io.Writer. Lines that are not JSON objects are dropped.
func (r *Recorder) Write(p []byte) (int, error) {
	if entry, ok := parseLogEntry(p); ok {
		r.buffer.Push(entry)
	}
	return len(p), nil
}

// GetRecentLogs returns all buffered entries, oldest first.
func (r *Recorder) GetRecentLogs() []LogEntry {
	return r.buffer.GetAll()
}

// Recent returns the newest limit entries, oldest first.
func (r *Recorder) Recent(limit int) []LogEntry {
	return r.buffer.Last(limit)
}

func parseLogEntry(data []byte) (LogEntry, bool) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return LogEntry{}, false
	}

	entry := LogEntry{
		Timestamp: take(raw, zerolog.TimestampFieldName),
		Level:     take(raw, zerolog.LevelFieldName),
		Component: take(raw, "component"),
		Message:   take(raw, zerolog.MessageFieldName),
	}
	if len(raw) > 0 {
		entry.Fields = raw
	}
	return entry, true
}

// take removes key from raw and returns it when it holds a string.
func take(raw map[string]any, key string) string {
	s, ok := raw[key].(string)
	if ok {
		delete(raw, key)
	}
	return s
}
