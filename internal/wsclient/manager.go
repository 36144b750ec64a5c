package wsclient

import (
	"encoding/json"
	"errors"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// State is the connection lifecycle state of a Manager.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateReconnecting
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateReconnecting:
		return "reconnecting"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Action tags an inbound message.
type Action string

// Known inbound actions on the check-in channel.
const (
	ActionNewCheckin   Action = "new_checkin"
	ActionUserCheckout Action = "user_checkout"
)

// Message is one inbound frame: a tagged payload.
type Message struct {
	Action Action          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// MessageHandler receives a full inbound message for its action.
type MessageHandler func(Message)

// ConnectionHandlers are optional lifecycle callbacks. Each Connect call
// replaces the previous set; last write wins.
type ConnectionHandlers struct {
	OnOpen      func()
	OnClose     func(code int, reason string)
	OnError     func(err error)
	OnReconnect func(attempt int)
}

// Manager owns at most one live socket to the backend and dispatches inbound
// messages to registered handlers by action tag. On abnormal closure it
// reconnects with a fixed delay, up to a bounded number of attempts; after
// that it stays failed until an explicit new Connect call.
type Manager struct {
	baseURL     string
	delay       time.Duration
	maxAttempts int

	mu           sync.Mutex
	state        State
	conn         *websocket.Conn
	endpoint     string
	handlers     map[Action]MessageHandler
	connHandlers ConnectionHandlers
	attempts     int
	timer        *time.Timer

	// gen invalidates the read loop and pending timer of a superseded
	// connection; bumped on every explicit Connect and Disconnect.
	gen int
}

// NewManager creates a manager. baseURL is the backend HTTP base URL; the
// socket scheme follows it (wss iff https). delay and maxAttempts fall back
// to 5s and 5 when zero.
func NewManager(baseURL string, delay time.Duration, maxAttempts int) *Manager {
	if delay <= 0 {
		delay = 5 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &Manager{
		baseURL:     baseURL,
		delay:       delay,
		maxAttempts: maxAttempts,
		state:       StateIdle,
	}
}

// Connect replaces any handler registrations, closes an existing connection
// and opens a new socket to the given endpoint path. The endpoint is not
// validated; callers pass a leading-slash path.
func (m *Manager) Connect(endpoint string, handlers map[Action]MessageHandler, ch ConnectionHandlers) error {
	m.mu.Lock()
	m.endpoint = endpoint
	m.handlers = handlers
	m.connHandlers = ch
	m.stopTimerLocked()
	if m.conn != nil {
		m.closeConnLocked(websocket.CloseNormalClosure, "Manual disconnect")
	}
	m.gen++
	gen := m.gen
	m.attempts = 0
	m.state = StateConnecting
	m.mu.Unlock()

	return m.dial(gen)
}

// Disconnect closes the socket if present and resets the reconnect counter.
// Idempotent.
func (m *Manager) Disconnect(code int, reason string) {
	if code == 0 {
		code = websocket.CloseNormalClosure
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	m.stopTimerLocked()
	if m.conn != nil {
		m.closeConnLocked(code, reason)
	}
	m.attempts = 0
	m.state = StateIdle
}

// Send serializes and transmits a message only if the socket is currently
// open; otherwise it logs and silently drops. Fire-and-forget: there is no
// queue and no retry.
func (m *Manager) Send(v interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateOpen || m.conn == nil {
		log.Printf("ws: send while not connected, dropping message")
		return
	}
	if err := m.conn.WriteJSON(v); err != nil {
		log.Printf("ws: send failed: %v", err)
	}
}

// IsConnected reports whether a socket exists and is open.
func (m *Manager) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateOpen && m.conn != nil
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Attempts returns the current reconnect attempt counter.
func (m *Manager) Attempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}

// wsURL derives the socket URL from the backend base URL: wss iff the
// backend itself is reached over a secure transport.
func (m *Manager) wsURL(endpoint string) (string, error) {
	u, err := url.Parse(m.baseURL)
	if err != nil {
		return "", err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return scheme + "://" + u.Host + endpoint, nil
}

func (m *Manager) dial(gen int) error {
	m.mu.Lock()
	endpoint := m.endpoint
	ch := m.connHandlers
	m.mu.Unlock()

	target, err := m.wsURL(endpoint)
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.Dial(target, nil)
	if err != nil {
		log.Printf("ws: dial %s failed: %v", target, err)
		if ch.OnError != nil {
			ch.OnError(err)
		}
		// A failed dial behaves like an abnormal close so the bounded
		// reconnect logic applies.
		m.handleClose(gen, websocket.CloseAbnormalClosure, err.Error())
		return err
	}

	m.mu.Lock()
	if gen != m.gen {
		// Superseded by a newer Connect/Disconnect while dialing.
		m.mu.Unlock()
		conn.Close()
		return nil
	}
	m.conn = conn
	m.state = StateOpen
	m.attempts = 0
	m.mu.Unlock()

	log.Printf("ws: connected to %s", target)
	if ch.OnOpen != nil {
		ch.OnOpen()
	}

	go m.readLoop(conn, gen)
	return nil
}

// readLoop dispatches frames in arrival order until the socket closes.
func (m *Manager) readLoop(conn *websocket.Conn, gen int) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			code := websocket.CloseAbnormalClosure
			reason := err.Error()
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				code = closeErr.Code
				reason = closeErr.Text
			}
			m.handleClose(gen, code, reason)
			return
		}
		m.handleFrame(data)
	}
}

// handleFrame parses one inbound frame and invokes the matching handler
// synchronously. Parse failures and unknown actions are logged and dropped;
// a single malformed frame must not kill the connection.
func (m *Manager) handleFrame(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("ws: failed to parse frame: %v", err)
		return
	}

	switch msg.Action {
	case ActionNewCheckin, ActionUserCheckout:
		m.mu.Lock()
		handler := m.handlers[msg.Action]
		m.mu.Unlock()
		if handler == nil {
			log.Printf("ws: no handler registered for %q, dropping", msg.Action)
			return
		}
		handler(msg)
	default:
		log.Printf("ws: unknown action %q, dropping", msg.Action)
	}
}

// handleClose runs once per socket closure: it invokes OnClose and, for
// abnormal closures, schedules a bounded reconnect.
func (m *Manager) handleClose(gen int, code int, reason string) {
	m.mu.Lock()
	if gen != m.gen {
		// A newer Connect or Disconnect already took over.
		m.mu.Unlock()
		return
	}
	m.conn = nil
	ch := m.connHandlers

	if code == websocket.CloseNormalClosure {
		m.state = StateIdle
		m.mu.Unlock()
		if ch.OnClose != nil {
			ch.OnClose(code, reason)
		}
		return
	}

	if m.attempts >= m.maxAttempts {
		m.state = StateFailed
		m.mu.Unlock()
		log.Printf("ws: giving up after %d reconnect attempts", m.maxAttempts)
		if ch.OnClose != nil {
			ch.OnClose(code, reason)
		}
		return
	}

	m.state = StateReconnecting
	m.stopTimerLocked()
	m.timer = time.AfterFunc(m.delay, func() { m.reconnect(gen) })
	m.mu.Unlock()

	if ch.OnClose != nil {
		ch.OnClose(code, reason)
	}
}

// reconnect fires from the owned timer: bump the attempt counter, notify,
// and redial the same endpoint with the same handler sets.
func (m *Manager) reconnect(gen int) {
	m.mu.Lock()
	if gen != m.gen || m.state != StateReconnecting {
		m.mu.Unlock()
		return
	}
	m.attempts++
	attempt := m.attempts
	ch := m.connHandlers
	m.state = StateConnecting
	m.mu.Unlock()

	log.Printf("ws: reconnect attempt %d/%d", attempt, m.maxAttempts)
	if ch.OnReconnect != nil {
		ch.OnReconnect(attempt)
	}
	m.dial(gen)
}

func (m *Manager) stopTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// closeConnLocked writes a close frame and drops the socket. Callers hold mu.
func (m *Manager) closeConnLocked(code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	deadline := time.Now().Add(time.Second)
	if err := m.conn.WriteControl(websocket.CloseMessage, msg, deadline); err != nil {
		log.Printf("ws: close write failed: %v", err)
	}
	m.conn.Close()
	m.conn = nil
}
