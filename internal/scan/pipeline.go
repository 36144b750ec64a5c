package scan

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vndevents/checkin-kiosk/internal/backend"
	"github.com/vndevents/checkin-kiosk/internal/notify"
	"github.com/vndevents/checkin-kiosk/internal/sanitize"
)

// Phase is the pipeline state.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhasePermission  Phase = "permission_pending"
	PhaseStarting    Phase = "camera_starting"
	PhaseScanning    Phase = "scanning"
	PhaseDecoded     Phase = "decoded"
	PhaseSubmitting  Phase = "submitting"
	PhaseResultShown Phase = "result_shown"
	PhaseError       Phase = "error"
)

// Submitter performs the check-in call for a resolved identifier.
type Submitter interface {
	CheckIn(userID string) (*backend.User, error)
}

// Display is what the pipeline needs from the notice center: blocking
// dialogs whose dismissal gates scan resumption, and fire-and-forget
// flashes.
type Display interface {
	Dialog(kind notify.Kind, title, message string) bool
	Flash(kind notify.Kind, title, message string)
}

// Options configures a Pipeline.
type Options struct {
	Source  Source
	Submit  Submitter
	Display Display

	// OnResult observes each successful check-in result exactly once.
	OnResult func(*backend.User)

	// DecodeCooldown is the pause after an unreadable payload before
	// scanning resumes (default 2s). ResumeSettle is the pause after a
	// result or error dialog is dismissed (default 500ms).
	DecodeCooldown time.Duration
	ResumeSettle   time.Duration

	// RequireSecure makes an insecure backend transport a terminal
	// capability failure; Secure reports the actual transport.
	RequireSecure bool
	Secure        bool
}

// Pipeline drives the scan-and-check-in cycle: acquire the scan source,
// sample until a payload decodes, resolve the identifier, submit, show the
// result, resume. One active stream, one in-flight submission.
type Pipeline struct {
	source   Source
	submit   Submitter
	display  Display
	onResult func(*backend.User)

	cooldown      time.Duration
	settle        time.Duration
	requireSecure bool
	secure        bool

	mu           sync.Mutex
	phase        Phase
	scanning     bool
	inflight     bool
	gen          int
	stop         chan struct{}
	deviceIndex  int
	sessionID    string
	lastErr      *DeviceError
	lastResult   *backend.User
	lastResultAt time.Time
}

// NewPipeline creates a pipeline in the Idle phase.
func NewPipeline(opts Options) *Pipeline {
	if opts.DecodeCooldown <= 0 {
		opts.DecodeCooldown = 2 * time.Second
	}
	if opts.ResumeSettle <= 0 {
		opts.ResumeSettle = 500 * time.Millisecond
	}
	p := &Pipeline{
		source:        opts.Source,
		submit:        opts.Submit,
		display:       opts.Display,
		onResult:      opts.OnResult,
		cooldown:      opts.DecodeCooldown,
		settle:        opts.ResumeSettle,
		requireSecure: opts.RequireSecure,
		secure:        opts.Secure,
		phase:         PhaseIdle,
	}
	if opts.Source != nil {
		p.deviceIndex = opts.Source.PreferredIndex()
	}
	return p
}

// Start verifies capability and permission, acquires the device and begins
// scanning. Capability failures are terminal for the session; only a new
// Start call (the retry affordance) recovers.
func (p *Pipeline) Start() error {
	p.mu.Lock()
	if p.scanning {
		p.mu.Unlock()
		return errors.New("scan: already running")
	}
	p.mu.Unlock()

	// Idle: capability verification.
	if p.source == nil {
		return p.fail(&DeviceError{Category: CatNotSupported, Reason: "no scan source configured"})
	}
	if devErr := p.source.Check(); devErr != nil {
		return p.fail(devErr)
	}
	if p.requireSecure && !p.secure {
		return p.fail(&DeviceError{Category: CatSecurity, Reason: "backend transport is not secure"})
	}

	// PermissionPending: denied and unsupported never reach acquisition.
	p.setPhase(PhasePermission)
	switch p.source.Probe() {
	case PermDenied:
		return p.fail(&DeviceError{Category: CatAccessDenied, Reason: "device access denied", Retryable: true})
	case PermUnsupported:
		return p.fail(&DeviceError{Category: CatNotSupported, Reason: "permission query unsupported", Retryable: true})
	}

	return p.startStream(p.currentIndex())
}

// startStream acquires the device and launches the sampling loop. Open
// failures are classified, surfaced, and never auto-retried.
func (p *Pipeline) startStream(index int) error {
	p.setPhase(PhaseStarting)
	if err := p.source.Open(index); err != nil {
		return p.fail(classify(err))
	}

	p.mu.Lock()
	p.deviceIndex = index
	p.sessionID = uuid.New().String()
	p.gen++
	gen := p.gen
	p.stop = make(chan struct{})
	p.scanning = true
	p.phase = PhaseScanning
	p.lastErr = nil
	p.mu.Unlock()

	go p.loop(gen)
	return nil
}

// Stop tears the session down: the scanning flag clears before the stream
// stops so no sample can be scheduled against a dying stream. Idempotent.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	if !p.scanning && p.stop == nil {
		p.phase = PhaseIdle
		p.mu.Unlock()
		return
	}
	p.scanning = false
	p.gen++
	if p.stop != nil {
		close(p.stop)
		p.stop = nil
	}
	p.phase = PhaseIdle
	p.mu.Unlock()

	p.source.Close()
}

// ToggleCamera stops an active session, or starts one when idle. The active
// stream is fully released before any new stream is requested.
func (p *Pipeline) ToggleCamera() error {
	if p.source != nil && p.source.Active() {
		p.Stop()
		return nil
	}
	return p.Start()
}

// SwitchCamera cycles to the next enumerated device. Only available when
// more than one device was enumerated.
func (p *Pipeline) SwitchCamera() error {
	if p.source == nil {
		return errors.New("scan: no source")
	}
	devices := p.source.Devices()
	if len(devices) <= 1 {
		return errors.New("scan: only one device available")
	}

	next := (p.currentIndex() + 1) % len(devices)
	p.Stop()
	return p.startStream(next)
}

// RequestPermission is the explicit retry affordance after an access-denied
// failure.
func (p *Pipeline) RequestPermission() error {
	return p.Start()
}

// Submit feeds an externally supplied payload (manual entry) through the
// decode path of the current session.
func (p *Pipeline) Submit(payload string) {
	p.mu.Lock()
	gen := p.gen
	p.mu.Unlock()
	p.handleDecode(gen, payload)
}

// loop samples one payload at a time. Each iteration yields between frames
// inside Source.Next; the loop exits as soon as the session is superseded.
func (p *Pipeline) loop(gen int) {
	for p.running(gen) {
		text, err := p.source.Next()
		if err != nil {
			if !errors.Is(err, ErrSourceClosed) {
				log.Printf("scan: source read failed: %v", err)
			}
			return
		}
		if !p.running(gen) {
			// Stale sample after teardown; discard.
			return
		}
		p.handleDecode(gen, text)
	}
}

// handleDecode runs the Decoded -> Submitting -> ResultShown leg. Sampling
// does not resume until this returns, and a decode that arrives while a
// submission is in flight is rejected outright.
func (p *Pipeline) handleDecode(gen int, text string) {
	// The in-flight flag is claimed in the same critical section that tests
	// it, so two racing decodes can never both proceed.
	p.mu.Lock()
	if p.inflight {
		p.mu.Unlock()
		log.Printf("scan: submission in flight, dropping decode")
		return
	}
	p.inflight = true
	p.phase = PhaseDecoded
	p.mu.Unlock()
	defer p.clearInflight()

	p.display.Flash(notify.KindSuccess, "Code detected", "")

	id := ResolveUserID(text)
	if id == "" {
		p.display.Flash(notify.KindError, "Unreadable code", "The scanned code has no usable identifier.")
		p.setPhaseIf(gen, PhaseScanning)
		p.wait(gen, p.cooldown)
		return
	}
	id = StripScheme(id)

	p.mu.Lock()
	p.phase = PhaseSubmitting
	p.mu.Unlock()

	user, err := p.submit.CheckIn(id)
	if !p.running(gen) {
		// The session moved on while the call was in flight; the result
		// is discarded.
		return
	}

	if err != nil {
		p.display.Dialog(notify.KindError, "Check-in failed", sanitize.Text(err.Error()))
		p.wait(gen, p.settle)
		p.setPhaseIf(gen, PhaseScanning)
		return
	}

	p.mu.Lock()
	p.phase = PhaseResultShown
	p.lastResult = user
	p.lastResultAt = time.Now()
	p.mu.Unlock()

	if p.onResult != nil {
		p.onResult(user)
	}
	p.display.Dialog(notify.KindSuccess, "Checked in", renderResult(user))
	p.wait(gen, p.settle)
	p.setPhaseIf(gen, PhaseScanning)
}

// renderResult formats the identity and status for the result dialog.
func renderResult(u *backend.User) string {
	name := sanitize.Text(u.Name)
	if name == "" {
		name = sanitize.Text(u.UserID)
	}
	msg := fmt.Sprintf("Welcome, %s", name)
	if t := sanitize.Text(u.Title); t != "" {
		msg += " — " + t
	}
	if d := sanitize.Text(u.Department); d != "" {
		msg += " (" + d + ")"
	}
	if u.CheckInTime != "" {
		msg += "\nChecked in at " + sanitize.Text(u.CheckInTime)
	}
	return msg
}

// Status is a snapshot of the pipeline for the display layer.
type Status struct {
	Phase        Phase         `json:"phase"`
	Scanning     bool          `json:"scanning"`
	SessionID    string        `json:"session_id,omitempty"`
	Devices      []DeviceInfo  `json:"devices"`
	DeviceIndex  int           `json:"device_index"`
	CanSwitch    bool          `json:"can_switch"`
	LastError    *StatusError  `json:"last_error,omitempty"`
	LastResult   *backend.User `json:"last_result,omitempty"`
	LastResultAt time.Time     `json:"last_result_at,omitempty"`
}

// StatusError is the rendered form of a classified device failure.
type StatusError struct {
	Category  Category `json:"category"`
	Message   string   `json:"message"`
	Retryable bool     `json:"retryable"`
}

// Status reports the current pipeline state.
func (p *Pipeline) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	var devices []DeviceInfo
	if p.source != nil {
		devices = p.source.Devices()
	}
	st := Status{
		Phase:        p.phase,
		Scanning:     p.scanning,
		SessionID:    p.sessionID,
		Devices:      devices,
		DeviceIndex:  p.deviceIndex,
		CanSwitch:    len(devices) > 1,
		LastResult:   p.lastResult,
		LastResultAt: p.lastResultAt,
	}
	if p.lastErr != nil {
		st.LastError = &StatusError{
			Category:  p.lastErr.Category,
			Message:   p.lastErr.Remediation(),
			Retryable: p.lastErr.Retryable,
		}
	}
	return st
}

// Scanning reports the scanning flag.
func (p *Pipeline) Scanning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scanning
}

// fail records a terminal failure, surfaces it as a blocking error, and
// leaves the pipeline in the Error phase.
func (p *Pipeline) fail(devErr *DeviceError) error {
	p.mu.Lock()
	p.lastErr = devErr
	p.phase = PhaseError
	p.scanning = false
	p.mu.Unlock()

	log.Printf("scan: %v", devErr)
	if p.display != nil {
		p.display.Dialog(notify.KindError, string(devErr.Category), devErr.Remediation())
	}
	return devErr
}

func (p *Pipeline) running(gen int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scanning && gen == p.gen
}

func (p *Pipeline) currentIndex() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.deviceIndex
}

func (p *Pipeline) setPhase(ph Phase) {
	p.mu.Lock()
	p.phase = ph
	p.mu.Unlock()
}

func (p *Pipeline) setPhaseIf(gen int, ph Phase) {
	p.mu.Lock()
	if gen == p.gen {
		p.phase = ph
	}
	p.mu.Unlock()
}

func (p *Pipeline) clearInflight() {
	p.mu.Lock()
	p.inflight = false
	p.mu.Unlock()
}

// wait pauses for d unless the session is torn down first.
func (p *Pipeline) wait(gen int, d time.Duration) {
	p.mu.Lock()
	stop := p.stop
	p.mu.Unlock()
	if stop == nil {
		return
	}
	select {
	case <-stop:
	case <-time.After(d):
	}
}
