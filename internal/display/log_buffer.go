package display

import (
	"io"
	"log"
	"strings"
	"sync"
	"time"
)

// LogEntry is one captured log line.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
}

// LogBuffer is a thread-safe ring buffer of recent log lines shown on the
// admin page.
type LogBuffer struct {
	mu      sync.RWMutex
	entries []LogEntry
	cap     int
}

// NewLogBuffer creates a log buffer with the given capacity.
func NewLogBuffer(capacity int) *LogBuffer {
	if capacity <= 0 {
		capacity = 200
	}
	return &LogBuffer{
		entries: make([]LogEntry, 0, capacity),
		cap:     capacity,
	}
}

// Add records one entry, dropping the oldest when full.
func (lb *LogBuffer) Add(level, message string) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	entry := LogEntry{Timestamp: time.Now(), Level: level, Message: message}
	if len(lb.entries) >= lb.cap {
		copy(lb.entries, lb.entries[1:])
		lb.entries[len(lb.entries)-1] = entry
	} else {
		lb.entries = append(lb.entries, entry)
	}
}

// Entries returns a copy of all entries, oldest first.
func (lb *LogBuffer) Entries() []LogEntry {
	lb.mu.RLock()
	defer lb.mu.RUnlock()

	result := make([]LogEntry, len(lb.entries))
	copy(result, lb.entries)
	return result
}

// Clear removes all entries.
func (lb *LogBuffer) Clear() {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	lb.entries = lb.entries[:0]
}

// logWriter adapts LogBuffer to io.Writer for the standard log package.
type logWriter struct {
	buf *LogBuffer
}

func (lw *logWriter) Write(p []byte) (int, error) {
	msg := strings.TrimSpace(string(p))
	if msg == "" {
		return len(p), nil
	}

	level := "info"
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "error") || strings.Contains(lower, "fail") {
		level = "error"
	} else if strings.Contains(lower, "warn") {
		level = "warn"
	}

	// Strip the standard "2006/01/02 15:04:05 " prefix if present.
	if len(msg) > 20 && msg[4] == '/' && msg[7] == '/' && msg[10] == ' ' {
		msg = msg[20:]
	}

	lw.buf.Add(level, msg)
	return len(p), nil
}

// InstallLogCapture routes the standard log package into the buffer while
// keeping the existing output.
func InstallLogCapture(buf *LogBuffer) {
	lw := &logWriter{buf: buf}
	log.SetOutput(io.MultiWriter(lw, log.Writer()))
	log.SetFlags(log.LstdFlags)
}
