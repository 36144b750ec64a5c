package display

import (
	"encoding/json"
	"log"

	"github.com/google/uuid"

	"github.com/vndevents/checkin-kiosk/internal/backend"
	"github.com/vndevents/checkin-kiosk/internal/notify"
	"github.com/vndevents/checkin-kiosk/internal/sanitize"
	"github.com/vndevents/checkin-kiosk/internal/wsclient"
)

// Controller drives the welcome display: it subscribes to the backend
// check-in channel and turns inbound events into feed entries, counter
// refreshes, and toasts.
type Controller struct {
	ws       *wsclient.Manager
	api      *backend.Client
	feed     *FeedBuffer
	notices  *notify.Center
	endpoint string
}

// NewController wires the display controller.
func NewController(ws *wsclient.Manager, api *backend.Client, feed *FeedBuffer, notices *notify.Center, endpoint string) *Controller {
	return &Controller{
		ws:       ws,
		api:      api,
		feed:     feed,
		notices:  notices,
		endpoint: endpoint,
	}
}

// Start registers the message handlers and opens the connection. The
// counters are refreshed once up front so the display is not empty before
// the first event.
func (c *Controller) Start() error {
	go c.refreshCounters()

	handlers := map[wsclient.Action]wsclient.MessageHandler{
		wsclient.ActionNewCheckin:   c.onNewCheckin,
		wsclient.ActionUserCheckout: c.onUserCheckout,
	}
	return c.ws.Connect(c.endpoint, handlers, wsclient.ConnectionHandlers{
		OnOpen: func() {
			log.Printf("display: check-in channel open")
		},
		OnClose: func(code int, reason string) {
			log.Printf("display: check-in channel closed: %d %s", code, reason)
		},
		OnError: func(err error) {
			log.Printf("display: check-in channel error: %v", err)
		},
		OnReconnect: func(attempt int) {
			c.notices.Flash(notify.KindInfo, "Reconnecting", "Re-establishing the live check-in feed")
		},
	})
}

// Stop closes the connection.
func (c *Controller) Stop() {
	c.ws.Disconnect(0, "display shutdown")
}

func (c *Controller) onNewCheckin(msg wsclient.Message) {
	u, ok := c.decodeUser(msg.Data)
	if !ok {
		return
	}
	c.feed.Add(EventFromUser(uuid.New().String(), string(wsclient.ActionNewCheckin), u))
	c.notices.Flash(notify.KindSuccess, "New check-in", u.Name)
	go c.refreshCounters()
}

func (c *Controller) onUserCheckout(msg wsclient.Message) {
	u, ok := c.decodeUser(msg.Data)
	if !ok {
		return
	}
	c.feed.Add(EventFromUser(uuid.New().String(), string(wsclient.ActionUserCheckout), u))
	go c.refreshCounters()
}

// decodeUser parses and sanitizes the user payload of an event.
func (c *Controller) decodeUser(data json.RawMessage) (*backend.User, bool) {
	var u backend.User
	if err := json.Unmarshal(data, &u); err != nil {
		log.Printf("display: malformed event payload: %v", err)
		return nil, false
	}
	u.Name = sanitize.Text(u.Name)
	u.Title = sanitize.Text(u.Title)
	u.Department = sanitize.Text(u.Department)
	return &u, true
}

// refreshCounters pulls the latest totals from the backend.
func (c *Controller) refreshCounters() {
	page, err := c.api.Users(0, 1, "")
	if err != nil {
		log.Printf("display: counter refresh failed: %v", err)
		return
	}
	c.feed.SetCounters(page.Total, page.CheckinTotal)
}
