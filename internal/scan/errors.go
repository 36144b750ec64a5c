package scan

import (
	"errors"
	"io/fs"
	"os"
	"syscall"
)

// Category is the user-facing failure category for device errors.
type Category string

const (
	CatAccessDenied Category = "Access Denied"
	CatNoCamera     Category = "No Camera Found"
	CatNotSupported Category = "Not Supported"
	CatSecurity     Category = "Security Error"
	CatLibrary      Category = "Library Error"
	// CatUnknown surfaces the raw platform message verbatim.
	CatUnknown Category = "Scanner Error"
)

// ErrSourceClosed signals that the scan source was stopped while a read was
// pending. Not an error condition for the pipeline.
var ErrSourceClosed = errors.New("scan source closed")

// DeviceError is a classified device or capability failure.
type DeviceError struct {
	Category Category
	Reason   string
	// Retryable marks categories that get a retry affordance in the UI.
	Retryable bool
}

func (e *DeviceError) Error() string {
	if e.Reason == "" {
		return string(e.Category)
	}
	return string(e.Category) + ": " + e.Reason
}

// Remediation returns the user-facing message for the category.
func (e *DeviceError) Remediation() string {
	switch e.Category {
	case CatAccessDenied:
		return "Camera access was denied. Allow camera access for the kiosk and try again."
	case CatNoCamera:
		return "No camera device was found on this kiosk."
	case CatNotSupported:
		return "This kiosk does not support camera capture."
	case CatSecurity:
		return "The backend connection is not secure; scanning is disabled."
	case CatLibrary:
		return "The QR decoder is unavailable. Restart the kiosk service."
	}
	return e.Reason
}

// classify maps a platform error onto the failure table. Permission problems
// keep a retry affordance; missing or incapable devices do not.
func classify(err error) *DeviceError {
	var devErr *DeviceError
	if errors.As(err, &devErr) {
		return devErr
	}

	switch {
	case errors.Is(err, os.ErrPermission):
		return &DeviceError{Category: CatAccessDenied, Reason: err.Error(), Retryable: true}
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, syscall.ENODEV), errors.Is(err, syscall.ENXIO):
		return &DeviceError{Category: CatNoCamera, Reason: err.Error()}
	case errors.Is(err, syscall.ENOTTY), errors.Is(err, syscall.EINVAL), errors.Is(err, syscall.ENOTSUP):
		return &DeviceError{Category: CatNotSupported, Reason: err.Error()}
	}
	return &DeviceError{Category: CatUnknown, Reason: err.Error()}
}
