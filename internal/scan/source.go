package scan

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Permission is the result of probing device access before acquisition.
type Permission int

const (
	PermGranted Permission = iota
	PermDenied
	PermPrompt
	PermUnsupported
)

func (p Permission) String() string {
	switch p {
	case PermGranted:
		return "granted"
	case PermDenied:
		return "denied"
	case PermPrompt:
		return "prompt"
	case PermUnsupported:
		return "unsupported"
	}
	return "unknown"
}

// DeviceInfo identifies one enumerated scan device.
type DeviceInfo struct {
	Path  string `json:"path"`
	Label string `json:"label"`
}

// Source delivers decoded scan payloads from a physical device. The camera
// source samples and decodes frames; the serial source reads pre-decoded
// lines from a badge scanner. A source owns at most one active stream.
type Source interface {
	// Check verifies capability (device API, decoder) before any
	// acquisition. A non-nil result is terminal for the session.
	Check() *DeviceError
	// Probe queries permission state without acquiring the device.
	Probe() Permission
	// Devices returns the list enumerated at construction.
	Devices() []DeviceInfo
	// PreferredIndex picks the initial device, preferring one whose label
	// looks like a rear-facing camera.
	PreferredIndex() int
	// Open acquires the device at index, stopping any active stream
	// first. Failures are classified DeviceErrors.
	Open(index int) error
	// Next blocks until a payload is decoded or the source is closed
	// (ErrSourceClosed).
	Next() (string, error)
	// Close stops the stream and releases the device handle. Idempotent.
	Close()
	// Active reports whether a stream is currently owned.
	Active() bool
}

var rearLabel = regexp.MustCompile(`(?i)back|rear|environment`)

// preferredIndex returns the first device whose label matches a rear-facing
// camera, or 0.
func preferredIndex(devices []DeviceInfo) int {
	for i, d := range devices {
		if rearLabel.MatchString(d.Label) {
			return i
		}
	}
	return 0
}

// ResolveUserID extracts the user identifier from a decoded payload. A JSON
// object is searched for the id under its three alternate key names;
// anything else is trimmed and used directly. Empty means unreadable.
func ResolveUserID(payload string) string {
	trimmed := strings.TrimSpace(payload)
	if strings.HasPrefix(trimmed, "{") {
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(trimmed), &obj); err == nil {
			for _, key := range []string{"user_id", "userId", "id"} {
				switch v := obj[key].(type) {
				case string:
					if s := strings.TrimSpace(v); s != "" {
						return s
					}
				case float64:
					return strconv.FormatFloat(v, 'f', -1, 64)
				}
			}
			return ""
		}
	}
	return trimmed
}

// StripScheme drops any scheme-like prefix before the last colon, so
// "badge:42" submits as "42".
func StripScheme(id string) string {
	if i := strings.LastIndex(id, ":"); i >= 0 {
		return strings.TrimSpace(id[i+1:])
	}
	return strings.TrimSpace(id)
}
