package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Display DisplayConfig `yaml:"display"`
	Backend BackendConfig `yaml:"backend"`
	Scanner ScannerConfig `yaml:"scanner"`

	// ConfigPath is the path to the config file (not serialized)
	ConfigPath string `yaml:"-"`
}

// DisplayConfig represents the local display server configuration
type DisplayConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// BackendConfig represents the check-in backend connection configuration
type BackendConfig struct {
	BaseURL   string        `yaml:"base_url"`
	SecretKey string        `yaml:"secret_key"`
	Timeout   time.Duration `yaml:"timeout"`

	// WebSocket settings
	WSEndpoint       string        `yaml:"ws_endpoint"`
	WSReconnectDelay time.Duration `yaml:"ws_reconnect_delay"`
	WSMaxReconnects  int           `yaml:"ws_max_reconnects"`
}

// ScannerConfig represents the scan source configuration
type ScannerConfig struct {
	// Source is "camera" or "serial"
	Source string `yaml:"source"`

	// Camera settings
	Device      string `yaml:"device,omitempty"`
	IdealWidth  int    `yaml:"ideal_width,omitempty"`
	IdealHeight int    `yaml:"ideal_height,omitempty"`
	MaxWidth    int    `yaml:"max_width,omitempty"`
	MaxHeight   int    `yaml:"max_height,omitempty"`

	// Serial settings
	SerialPort string `yaml:"serial_port,omitempty"`
	SerialBaud int    `yaml:"serial_baud,omitempty"`

	// Pipeline timing
	DecodeCooldown time.Duration `yaml:"decode_cooldown"`
	ResumeSettle   time.Duration `yaml:"resume_settle"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Display: DisplayConfig{
			Port: 8080,
			Host: "0.0.0.0",
		},
		Backend: BackendConfig{
			BaseURL:          "http://localhost:8000",
			Timeout:          15 * time.Second,
			WSEndpoint:       "/ws/checkin",
			WSReconnectDelay: 5 * time.Second,
			WSMaxReconnects:  5,
		},
		Scanner: ScannerConfig{
			Source:         "camera",
			IdealWidth:     1280,
			IdealHeight:    720,
			MaxWidth:       1920,
			MaxHeight:      1080,
			SerialBaud:     9600,
			DecodeCooldown: 2 * time.Second,
			ResumeSettle:   500 * time.Millisecond,
		},
	}
}

// Load loads configuration from the config file
func Load() (*Config, error) {
	// Try to find config file in common locations
	configPaths := []string{
		"config.yaml",
		"configs/config.yaml",
		"/etc/kioskd/config.yaml",
	}

	var data []byte
	var err error
	var loadedPath string

	for _, path := range configPaths {
		data, err = os.ReadFile(path)
		if err == nil {
			loadedPath = path
			break
		}
	}

	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.ConfigPath = loadedPath
	return cfg, nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
