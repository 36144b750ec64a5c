package display

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/vndevents/checkin-kiosk/internal/backend"
	"github.com/vndevents/checkin-kiosk/internal/config"
	"github.com/vndevents/checkin-kiosk/internal/notify"
	"github.com/vndevents/checkin-kiosk/internal/scan"
	"github.com/vndevents/checkin-kiosk/internal/session"
	"github.com/vndevents/checkin-kiosk/internal/wsclient"
)

// Server is the kiosk's local HTTP server: the welcome display, the admin
// login and user-management pages, and the JSON API behind them.
type Server struct {
	cfg      *config.Config
	api      *backend.Client
	feed     *FeedBuffer
	logs     *LogBuffer
	notices  *notify.Center
	pipeline *scan.Pipeline
	ws       *wsclient.Manager
	router   *mux.Router
}

// NewServer wires the routes. pipeline may be nil when the kiosk runs
// display-only.
func NewServer(cfg *config.Config, api *backend.Client, feed *FeedBuffer, logs *LogBuffer, notices *notify.Center, pipeline *scan.Pipeline, ws *wsclient.Manager) *Server {
	s := &Server{
		cfg:      cfg,
		api:      api,
		feed:     feed,
		logs:     logs,
		notices:  notices,
		pipeline: pipeline,
		ws:       ws,
		router:   mux.NewRouter(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router

	// Pages
	r.HandleFunc("/", s.page(welcomeUI)).Methods(http.MethodGet)
	r.HandleFunc("/login", s.page(loginUI)).Methods(http.MethodGet)
	r.Handle("/admin", session.Middleware(s.page(adminUI))).Methods(http.MethodGet)
	r.Handle("/scan", session.Middleware(s.page(scanUI))).Methods(http.MethodGet)

	// Public API used by the welcome display
	r.HandleFunc("/api/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/feed", s.handleFeed).Methods(http.MethodGet)
	r.HandleFunc("/api/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/logout", s.handleLogout).Methods(http.MethodPost)

	// Authenticated API: user management
	r.HandleFunc("/api/users", s.handleListUsers).Methods(http.MethodGet)
	r.HandleFunc("/api/users", s.handleCreateUser).Methods(http.MethodPost)
	r.HandleFunc("/api/users/import", s.handleImportUsers).Methods(http.MethodPost)
	r.HandleFunc("/api/users/{id}", s.handleGetUser).Methods(http.MethodGet)
	r.HandleFunc("/api/users/{id}", s.handleUpdateUser).Methods(http.MethodPut)
	r.HandleFunc("/api/users/{id}", s.handleDeleteUser).Methods(http.MethodDelete)
	r.HandleFunc("/api/users/{id}/qr", s.handleUserQR).Methods(http.MethodGet)

	// Authenticated API: scanner and notices
	r.HandleFunc("/api/scanner", s.handleScannerStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/scanner/toggle", s.handleScannerToggle).Methods(http.MethodPost)
	r.HandleFunc("/api/scanner/switch", s.handleScannerSwitch).Methods(http.MethodPost)
	r.HandleFunc("/api/scanner/submit", s.handleScannerSubmit).Methods(http.MethodPost)
	r.HandleFunc("/api/notices", s.handleNotices).Methods(http.MethodGet)
	r.HandleFunc("/api/notices/{id}/ack", s.handleNoticeAck).Methods(http.MethodPost)
	r.HandleFunc("/api/logs", s.handleLogs).Methods(http.MethodGet)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the server; it blocks.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Display.Host, s.cfg.Display.Port)
	log.Printf("display: serving on http://%s", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) page(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(body))
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeAPIError maps the client error taxonomy onto HTTP responses. Auth
// failures become 401 so the pages can redirect to login.
func writeAPIError(w http.ResponseWriter, err error) {
	if apiErr, ok := err.(*backend.APIError); ok {
		switch apiErr.Kind {
		case backend.ErrAuthRequired, backend.ErrSessionExpired:
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": string(apiErr.Kind)})
			return
		case backend.ErrHTTP:
			status := apiErr.StatusCode
			if status == 0 {
				status = http.StatusBadGateway
			}
			writeJSON(w, status, map[string]string{"error": string(apiErr.Kind), "message": apiErr.Message})
			return
		case backend.ErrParse:
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": string(apiErr.Kind)})
			return
		}
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

// cookieClient returns a backend client keyed by the caller's cookie.
func (s *Server) cookieClient(r *http.Request) (*backend.Client, error) {
	key, err := session.Key(r)
	if err != nil {
		return nil, &backend.APIError{Kind: backend.ErrAuthRequired}
	}
	return s.api.WithKey(key), nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	total, checkinTotal := s.feed.Counters()
	status := map[string]interface{}{
		"status":        "running",
		"ws_state":      s.ws.State().String(),
		"ws_connected":  s.ws.IsConnected(),
		"total":         total,
		"checkin_total": checkinTotal,
	}
	if s.pipeline != nil {
		status["scanner"] = s.pipeline.Status()
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	total, checkinTotal := s.feed.Counters()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"events":        s.feed.Entries(),
		"total":         total,
		"checkin_total": checkinTotal,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SecretKey string `json:"secret_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SecretKey == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "secret_key required"})
		return
	}

	result, err := s.api.WithKey(req.SecretKey).Validate()
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Access Denied"})
		return
	}

	session.Set(w, req.SecretKey, result.Role)
	writeJSON(w, http.StatusOK, map[string]string{"role": result.Role})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	session.Clear(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	client, err := s.cookieClient(r)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	q := r.URL.Query()
	pageNumber, _ := strconv.Atoi(q.Get("page_number"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))
	if pageSize <= 0 {
		pageSize = 10
	}

	page, err := client.Users(pageNumber, pageSize, q.Get("search"))
	if err != nil {
		writeAPIError(w, err)
		return
	}

	pageCount := PageCount(page.Total, pageSize)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":          page.Data,
		"total":         page.Total,
		"checkin_total": page.CheckinTotal,
		"page_number":   pageNumber,
		"page_size":     pageSize,
		"page_count":    pageCount,
		"pages":         PageWindow(pageNumber, pageCount),
	})
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	client, err := s.cookieClient(r)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	var u backend.User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	id, err := client.CreateUser(&u)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"user_id": id})
}

// handleImportUsers proxies a spreadsheet upload to the backend's bulk
// import, keyed by the caller's cookie.
func (s *Server) handleImportUsers(w http.ResponseWriter, r *http.Request) {
	client, err := s.cookieClient(r)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart upload required"})
		return
	}

	summary, err := client.ImportUsers(contentType, r.Body)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	client, err := s.cookieClient(r)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	u, err := client.User(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	client, err := s.cookieClient(r)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	var fields map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := client.UpdateUser(mux.Vars(r)["id"], fields); err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	client, err := s.cookieClient(r)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	if err := client.DeleteUser(mux.Vars(r)["id"]); err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleUserQR redirects to the backend's static QR image for the user.
func (s *Server) handleUserQR(w http.ResponseWriter, r *http.Request) {
	if _, err := session.Key(r); err != nil {
		writeAPIError(w, &backend.APIError{Kind: backend.ErrAuthRequired})
		return
	}
	http.Redirect(w, r, s.api.QRImageURL(mux.Vars(r)["id"]), http.StatusFound)
}

func (s *Server) handleScannerStatus(w http.ResponseWriter, r *http.Request) {
	if _, err := session.Key(r); err != nil {
		writeAPIError(w, &backend.APIError{Kind: backend.ErrAuthRequired})
		return
	}
	if s.pipeline == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	writeJSON(w, http.StatusOK, s.pipeline.Status())
}

func (s *Server) handleScannerToggle(w http.ResponseWriter, r *http.Request) {
	if _, err := session.Key(r); err != nil {
		writeAPIError(w, &backend.APIError{Kind: backend.ErrAuthRequired})
		return
	}
	if s.pipeline == nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "scanner disabled"})
		return
	}
	if err := s.pipeline.ToggleCamera(); err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.pipeline.Status())
}

func (s *Server) handleScannerSwitch(w http.ResponseWriter, r *http.Request) {
	if _, err := session.Key(r); err != nil {
		writeAPIError(w, &backend.APIError{Kind: backend.ErrAuthRequired})
		return
	}
	if s.pipeline == nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "scanner disabled"})
		return
	}
	if err := s.pipeline.SwitchCamera(); err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.pipeline.Status())
}

// handleScannerSubmit is the manual-entry path: the payload goes through the
// same decode handling as a scanned code.
func (s *Server) handleScannerSubmit(w http.ResponseWriter, r *http.Request) {
	if _, err := session.Key(r); err != nil {
		writeAPIError(w, &backend.APIError{Kind: backend.ErrAuthRequired})
		return
	}
	if s.pipeline == nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "scanner disabled"})
		return
	}

	var req struct {
		Payload string `json:"payload"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Payload == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "payload required"})
		return
	}

	go s.pipeline.Submit(req.Payload)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "submitted"})
}

func (s *Server) handleNotices(w http.ResponseWriter, r *http.Request) {
	if _, err := session.Key(r); err != nil {
		writeAPIError(w, &backend.APIError{Kind: backend.ErrAuthRequired})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"pending": s.notices.Pending(),
		"toasts":  s.notices.Toasts(),
	})
}

func (s *Server) handleNoticeAck(w http.ResponseWriter, r *http.Request) {
	if _, err := session.Key(r); err != nil {
		writeAPIError(w, &backend.APIError{Kind: backend.ErrAuthRequired})
		return
	}

	var req struct {
		Confirmed bool `json:"confirmed"`
	}
	// Body is optional; a bare ack means dismissed.
	_ = json.NewDecoder(r.Body).Decode(&req)

	if !s.notices.Ack(mux.Vars(r)["id"], req.Confirmed) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no such dialog"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	if _, err := session.Key(r); err != nil {
		writeAPIError(w, &backend.APIError{Kind: backend.ErrAuthRequired})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": s.logs.Entries()})
}
