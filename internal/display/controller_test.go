package display

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vndevents/checkin-kiosk/internal/backend"
	"github.com/vndevents/checkin-kiosk/internal/notify"
	"github.com/vndevents/checkin-kiosk/internal/wsclient"
)

func TestControllerFeedsDisplayFromCheckinChannel(t *testing.T) {
	upgrader := websocket.Upgrader{}
	events := make(chan map[string]interface{}, 4)
	defer close(events)

	be := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ws/checkin":
			conn, err := upgrader.Upgrade(w, r, nil)
			if err != nil {
				return
			}
			for ev := range events {
				conn.WriteJSON(ev)
			}
		case "/api/users":
			json.NewEncoder(w).Encode(backend.UserPage{Total: 80, CheckinTotal: 33})
		default:
			http.NotFound(w, r)
		}
	}))
	defer be.Close()

	api := backend.NewClient(be.URL, "service-key", 5*time.Second)
	feed := NewFeedBuffer(10)
	notices := notify.NewCenter(10, time.Minute)
	ws := wsclient.NewManager(be.URL, 10*time.Millisecond, 5)

	c := NewController(ws, api, feed, notices, "/ws/checkin")
	require.NoError(t, c.Start())
	defer c.Stop()

	events <- map[string]interface{}{
		"action": "new_checkin",
		"data": map[string]interface{}{
			"name":       "<script>alert(1)</script>Ada",
			"title":      "Engineer",
			"department": "R&D",
		},
	}
	events <- map[string]interface{}{
		"action": "user_checkout",
		"data":   map[string]interface{}{"name": "Grace"},
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && len(feed.Entries()) < 2 {
		time.Sleep(5 * time.Millisecond)
	}

	entries := feed.Entries()
	require.Len(t, entries, 2)
	// Newest first.
	assert.Equal(t, "user_checkout", entries[0].Type)
	assert.Equal(t, "Grace", entries[0].Name)
	assert.Equal(t, "new_checkin", entries[1].Type)
	assert.Equal(t, "Ada", entries[1].Name, "markup must be stripped from event fields")

	deadline = time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if total, _ := feed.Counters(); total == 80 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	total, checkin := feed.Counters()
	assert.Equal(t, 80, total)
	assert.Equal(t, 33, checkin)

	toasts := notices.Toasts()
	require.NotEmpty(t, toasts)
	found := false
	for _, n := range toasts {
		if n.Title == "New check-in" && n.Message == "Ada" {
			found = true
		}
	}
	assert.True(t, found, "check-in toast missing")
}
