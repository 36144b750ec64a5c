package scan

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/tarm/serial"
)

// SerialSource reads badge-scanner output from a serial port. The scanner
// hardware decodes the code itself, so payloads enter the pipeline already
// decoded.
type SerialSource struct {
	portName string
	baud     int

	mu     sync.Mutex
	port   *serial.Port
	active bool
	line   []byte
}

// NewSerialSource prepares a source for a line-emitting serial scanner.
func NewSerialSource(portName string, baud int) *SerialSource {
	if baud <= 0 {
		baud = 9600
	}
	return &SerialSource{portName: portName, baud: baud}
}

func (s *SerialSource) Check() *DeviceError {
	if s.portName == "" {
		return &DeviceError{Category: CatNotSupported, Reason: "no serial port configured"}
	}
	return nil
}

func (s *SerialSource) Probe() Permission {
	f, err := os.OpenFile(s.portName, os.O_RDWR, 0)
	if err != nil {
		if os.IsPermission(err) {
			return PermDenied
		}
		return PermGranted
	}
	f.Close()
	return PermGranted
}

func (s *SerialSource) Devices() []DeviceInfo {
	return []DeviceInfo{{Path: s.portName, Label: "serial badge scanner"}}
}

func (s *SerialSource) PreferredIndex() int { return 0 }

func (s *SerialSource) Open(index int) error {
	s.Close()

	port, err := serial.OpenPort(&serial.Config{
		Name:        s.portName,
		Baud:        s.baud,
		ReadTimeout: 250 * time.Millisecond,
	})
	if err != nil {
		return classify(err)
	}

	s.mu.Lock()
	s.port = port
	s.active = true
	s.line = s.line[:0]
	s.mu.Unlock()
	return nil
}

// Next accumulates bytes until a line terminator and returns the trimmed
// payload. Stops as soon as the source is closed.
func (s *SerialSource) Next() (string, error) {
	buf := make([]byte, 64)
	for {
		s.mu.Lock()
		port, active := s.port, s.active
		s.mu.Unlock()
		if !active || port == nil {
			return "", ErrSourceClosed
		}

		n, err := port.Read(buf)
		if err != nil && err != io.EOF {
			return "", err
		}

		for _, b := range buf[:n] {
			if b == '\n' || b == '\r' {
				text := strings.TrimSpace(string(s.line))
				s.line = s.line[:0]
				if text != "" {
					return text, nil
				}
				continue
			}
			s.line = append(s.line, b)
		}
	}
}

func (s *SerialSource) Close() {
	s.mu.Lock()
	port := s.port
	s.active = false
	s.port = nil
	s.line = s.line[:0]
	s.mu.Unlock()

	if port != nil {
		port.Close()
	}
}

func (s *SerialSource) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

var _ Source = (*SerialSource)(nil)
