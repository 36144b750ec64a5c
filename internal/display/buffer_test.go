package display

import (
	"fmt"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vndevents/checkin-kiosk/internal/backend"
)

func TestFeedBufferDropsOldestWhenFull(t *testing.T) {
	fb := NewFeedBuffer(3)
	for i := 0; i < 5; i++ {
		fb.Add(FeedEvent{ID: fmt.Sprintf("ev-%d", i)})
	}

	entries := fb.Entries()
	require.Len(t, entries, 3)
	// Newest first.
	assert.Equal(t, "ev-4", entries[0].ID)
	assert.Equal(t, "ev-2", entries[2].ID)
}

func TestFeedBufferCounters(t *testing.T) {
	fb := NewFeedBuffer(10)
	total, checkin := fb.Counters()
	assert.Zero(t, total)
	assert.Zero(t, checkin)

	fb.SetCounters(120, 45)
	total, checkin = fb.Counters()
	assert.Equal(t, 120, total)
	assert.Equal(t, 45, checkin)
}

func TestEventFromUser(t *testing.T) {
	u := &backend.User{Name: "Ada", Title: "Engineer", Department: "R&D", SeatNumber: 12}
	ev := EventFromUser("n-1", "new_checkin", u)
	assert.Equal(t, "n-1", ev.ID)
	assert.Equal(t, "new_checkin", ev.Type)
	assert.Equal(t, "Ada", ev.Name)
	assert.Equal(t, 12, ev.SeatNumber)
	assert.False(t, ev.At.IsZero())
}

func TestLogBufferRing(t *testing.T) {
	lb := NewLogBuffer(2)
	lb.Add("info", "first")
	lb.Add("info", "second")
	lb.Add("error", "third")

	entries := lb.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].Message)
	assert.Equal(t, "third", entries[1].Message)

	lb.Clear()
	assert.Empty(t, lb.Entries())
}

func TestLogWriterStripsPrefixAndInfersLevel(t *testing.T) {
	lb := NewLogBuffer(10)
	lw := &logWriter{buf: lb}

	lw.Write([]byte("2026/08/31 10:30:00 ws: dial failed: refused\n"))
	lw.Write([]byte("plain message with no prefix\n"))
	lw.Write([]byte("   \n"))

	entries := lb.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "ws: dial failed: refused", entries[0].Message)
	assert.Equal(t, "error", entries[0].Level)
	assert.Equal(t, "plain message with no prefix", entries[1].Message)
	assert.Equal(t, "info", entries[1].Level)
}

func TestInstallLogCapture(t *testing.T) {
	prev := log.Writer()
	defer log.SetOutput(prev)

	lb := NewLogBuffer(10)
	InstallLogCapture(lb)
	log.Printf("capture check %d", 1)

	entries := lb.Entries()
	require.NotEmpty(t, entries)
	assert.Equal(t, "capture check 1", entries[len(entries)-1].Message)
}
