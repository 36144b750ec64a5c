package scan

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/blackjack/webcam"
)

// V4L2 fourcc codes for the frame formats we can convert.
const (
	pixFmtYUYV = webcam.PixelFormat(0x56595559) // 'YUYV'
	pixFmtMJPG = webcam.PixelFormat(0x47504A4D) // 'MJPG'
)

// CameraSource samples frames from a V4L2 capture device and decodes QR
// payloads from them. The camera list is enumerated once at construction.
type CameraSource struct {
	devices []DeviceInfo
	decoder *qrDecoder

	idealW, idealH int
	maxW, maxH     int

	mu     sync.Mutex
	cam    *webcam.Webcam
	format webcam.PixelFormat
	width  int
	height int
	active bool
}

// CameraOptions carries the resolution hints for stream acquisition.
type CameraOptions struct {
	Device         string // explicit device path; empty enumerates /dev/video*
	IdealW, IdealH int
	MaxW, MaxH     int
}

// NewCameraSource enumerates capture devices and prepares the decoder.
func NewCameraSource(opts CameraOptions) *CameraSource {
	if opts.IdealW <= 0 || opts.IdealH <= 0 {
		opts.IdealW, opts.IdealH = 1280, 720
	}
	if opts.MaxW <= 0 || opts.MaxH <= 0 {
		opts.MaxW, opts.MaxH = 1920, 1080
	}
	return &CameraSource{
		devices: enumerateCameras(opts.Device),
		decoder: newQRDecoder(),
		idealW:  opts.IdealW,
		idealH:  opts.IdealH,
		maxW:    opts.MaxW,
		maxH:    opts.MaxH,
	}
}

// enumerateCameras lists V4L2 capture nodes with their card labels.
func enumerateCameras(explicit string) []DeviceInfo {
	var paths []string
	if explicit != "" {
		paths = []string{explicit}
	} else {
		matches, _ := filepath.Glob("/dev/video*")
		sort.Strings(matches)
		paths = matches
	}

	devices := make([]DeviceInfo, 0, len(paths))
	for _, path := range paths {
		devices = append(devices, DeviceInfo{
			Path:  path,
			Label: cameraLabel(path),
		})
	}
	return devices
}

// cameraLabel reads the card name sysfs exposes for a video node.
func cameraLabel(path string) string {
	name, err := os.ReadFile("/sys/class/video4linux/" + filepath.Base(path) + "/name")
	if err != nil {
		return filepath.Base(path)
	}
	return strings.TrimSpace(string(name))
}

// Check verifies capture capability and decoder availability.
func (s *CameraSource) Check() *DeviceError {
	if s.decoder == nil {
		return &DeviceError{Category: CatLibrary, Reason: "qr decoder not initialized"}
	}
	return nil
}

// Probe opens the first enumerated device briefly to detect permission
// problems without starting a stream.
func (s *CameraSource) Probe() Permission {
	if len(s.devices) == 0 {
		// Let Open classify the missing-device case.
		return PermGranted
	}
	f, err := os.OpenFile(s.devices[0].Path, os.O_RDWR, 0)
	if err != nil {
		if os.IsPermission(err) {
			return PermDenied
		}
		return PermGranted
	}
	f.Close()
	return PermGranted
}

func (s *CameraSource) Devices() []DeviceInfo {
	out := make([]DeviceInfo, len(s.devices))
	copy(out, s.devices)
	return out
}

func (s *CameraSource) PreferredIndex() int {
	return preferredIndex(s.devices)
}

// Open acquires the device at index. Any existing stream is stopped first;
// the source never owns two streams.
func (s *CameraSource) Open(index int) error {
	s.Close()

	if len(s.devices) == 0 {
		return &DeviceError{Category: CatNoCamera, Reason: "no capture device enumerated"}
	}
	if index < 0 || index >= len(s.devices) {
		index = 0
	}

	cam, err := webcam.Open(s.devices[index].Path)
	if err != nil {
		return classify(err)
	}

	format, ok := pickFormat(cam.GetSupportedFormats())
	if !ok {
		cam.Close()
		return &DeviceError{Category: CatNotSupported, Reason: "no supported frame format"}
	}

	w, h := s.pickSize(cam.GetSupportedFrameSizes(format))
	_, gotW, gotH, err := cam.SetImageFormat(format, uint32(w), uint32(h))
	if err != nil {
		cam.Close()
		return classify(err)
	}

	if err := cam.StartStreaming(); err != nil {
		cam.Close()
		return classify(err)
	}

	s.mu.Lock()
	s.cam = cam
	s.format = format
	s.width = int(gotW)
	s.height = int(gotH)
	s.active = true
	s.mu.Unlock()

	log.Printf("scan: camera %s streaming at %dx%d", s.devices[index].Path, gotW, gotH)
	return nil
}

// pickFormat prefers YUYV, falls back to MJPG.
func pickFormat(formats map[webcam.PixelFormat]string) (webcam.PixelFormat, bool) {
	if _, ok := formats[pixFmtYUYV]; ok {
		return pixFmtYUYV, true
	}
	if _, ok := formats[pixFmtMJPG]; ok {
		return pixFmtMJPG, true
	}
	return 0, false
}

// pickSize chooses the discrete size closest to the ideal resolution without
// exceeding the cap.
func (s *CameraSource) pickSize(sizes []webcam.FrameSize) (int, int) {
	bestW, bestH := s.idealW, s.idealH
	bestScore := -1
	for _, fs := range sizes {
		w, h := int(fs.MaxWidth), int(fs.MaxHeight)
		if w > s.maxW || h > s.maxH {
			continue
		}
		score := abs(w-s.idealW) + abs(h-s.idealH)
		if bestScore < 0 || score < bestScore {
			bestW, bestH, bestScore = w, h, score
		}
	}
	return bestW, bestH
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Next samples frames until one decodes. One frame is drawn and decoded per
// iteration; the loop yields on the frame-wait between samples and stops as
// soon as the source is no longer active.
func (s *CameraSource) Next() (string, error) {
	for {
		s.mu.Lock()
		cam, format, active := s.cam, s.format, s.active
		w, h := s.width, s.height
		s.mu.Unlock()
		if !active || cam == nil {
			return "", ErrSourceClosed
		}

		err := cam.WaitForFrame(1)
		switch err.(type) {
		case nil:
		case *webcam.Timeout:
			continue
		default:
			return "", err
		}

		frame, err := cam.ReadFrame()
		if err != nil || len(frame) == 0 {
			continue
		}

		img := frameToImage(frame, format, w, h)
		if img == nil {
			continue
		}
		text, err := s.decoder.Decode(img)
		if err != nil {
			// No code in this frame; sample the next one.
			continue
		}
		return text, nil
	}
}

// frameToImage converts a raw frame to an image the decoder accepts, sized
// to the stream's native resolution.
func frameToImage(frame []byte, format webcam.PixelFormat, w, h int) image.Image {
	switch format {
	case pixFmtYUYV:
		return yuyvToGray(frame, w, h)
	case pixFmtMJPG:
		img, err := jpeg.Decode(bytes.NewReader(frame))
		if err != nil {
			return nil
		}
		return img
	}
	return nil
}

// yuyvToGray extracts the luma plane of a packed YUYV frame. The decoder
// only needs luminance, so the chroma bytes are skipped.
func yuyvToGray(frame []byte, w, h int) *image.Gray {
	if w <= 0 || h <= 0 || len(frame) < w*h*2 {
		return nil
	}
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := 0; i < w*h; i++ {
		img.Pix[i] = frame[i*2]
	}
	return img
}

// Close stops the stream and releases the device. The active flag clears
// before the stream stops so a pending Next cannot resample.
func (s *CameraSource) Close() {
	s.mu.Lock()
	cam := s.cam
	s.active = false
	s.cam = nil
	s.mu.Unlock()

	if cam != nil {
		if err := cam.StopStreaming(); err != nil {
			log.Printf("scan: stop streaming: %v", err)
		}
		cam.Close()
	}
}

func (s *CameraSource) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

var _ Source = (*CameraSource)(nil)

// String describes the source for status reporting.
func (s *CameraSource) String() string {
	return fmt.Sprintf("camera(%d devices)", len(s.devices))
}
