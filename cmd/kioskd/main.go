package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/vndevents/checkin-kiosk/internal/backend"
	"github.com/vndevents/checkin-kiosk/internal/config"
	"github.com/vndevents/checkin-kiosk/internal/display"
	"github.com/vndevents/checkin-kiosk/internal/notify"
	"github.com/vndevents/checkin-kiosk/internal/scan"
	"github.com/vndevents/checkin-kiosk/internal/wsclient"
)

func main() {
	fmt.Println("Check-in Kiosk Agent")
	fmt.Println("====================")

	logBuf := display.NewLogBuffer(500)
	display.InstallLogCapture(logBuf)

	cfg, err := config.Load()
	if err != nil {
		log.Printf("Warning: Could not load config file: %v", err)
		log.Println("Using default configuration")
		cfg = config.Default()
		cfg.ConfigPath = "config.yaml"
	}

	fmt.Printf("Display Port: %d\n", cfg.Display.Port)
	fmt.Printf("Backend: %s\n", cfg.Backend.BaseURL)

	api := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.SecretKey, cfg.Backend.Timeout)
	notices := notify.NewCenter(20, 15*time.Second)
	feed := display.NewFeedBuffer(50)
	ws := wsclient.NewManager(cfg.Backend.BaseURL, cfg.Backend.WSReconnectDelay, cfg.Backend.WSMaxReconnects)

	pipeline := buildPipeline(cfg, api, notices)

	controller := display.NewController(ws, api, feed, notices, cfg.Backend.WSEndpoint)
	if err := controller.Start(); err != nil {
		log.Printf("Warning: check-in channel unavailable: %v", err)
	}

	if pipeline != nil {
		if err := pipeline.Start(); err != nil {
			log.Printf("Warning: scanner unavailable: %v", err)
		}
	}

	server := display.NewServer(cfg, api, feed, logBuf, notices, pipeline, ws)

	// Release the camera and close the socket cleanly on shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutting down")
		if pipeline != nil {
			pipeline.Stop()
		}
		controller.Stop()
		os.Exit(0)
	}()

	fmt.Printf("\nServing kiosk on http://localhost:%d\n", cfg.Display.Port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// buildPipeline assembles the scan pipeline for the configured source.
func buildPipeline(cfg *config.Config, api *backend.Client, notices *notify.Center) *scan.Pipeline {
	var source scan.Source
	switch cfg.Scanner.Source {
	case "camera":
		source = scan.NewCameraSource(scan.CameraOptions{
			Device: cfg.Scanner.Device,
			IdealW: cfg.Scanner.IdealWidth,
			IdealH: cfg.Scanner.IdealHeight,
			MaxW:   cfg.Scanner.MaxWidth,
			MaxH:   cfg.Scanner.MaxHeight,
		})
	case "serial":
		source = scan.NewSerialSource(cfg.Scanner.SerialPort, cfg.Scanner.SerialBaud)
	case "", "none":
		log.Println("Scanner disabled by configuration")
		return nil
	default:
		log.Printf("Unknown scanner source %q, scanner disabled", cfg.Scanner.Source)
		return nil
	}

	return scan.NewPipeline(scan.Options{
		Source:         source,
		Submit:         api,
		Display:        notices,
		DecodeCooldown: cfg.Scanner.DecodeCooldown,
		ResumeSettle:   cfg.Scanner.ResumeSettle,
		Secure:         strings.HasPrefix(cfg.Backend.BaseURL, "https://"),
		// Feed entries arrive via the websocket broadcast, so the
		// result callback only logs.
		OnResult: func(u *backend.User) {
			log.Printf("Checked in: %s (%s)", u.Name, u.UserID)
		},
	})
}
