package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all bridge configuration values.
type Config struct {
	// MQTT / credentials. UCenterJSON overrides ClientID, server and
	// plan with the values from the downloaded configuration file.
	MQTTServer     string
	MQTTPort       int
	ClientID       string
	CredentialsDir string
	UCenterJSON    string
	LBand          bool

	// Correction service
	Localized     bool
	Region        string // fixed region code, "" = automatic detection
	TileLevel     int    // 0, 1 or 2
	DistanceM     int    // movement threshold for node reselection, meters
	MaxEpochs     int    // max fixes between reselections, 0 = unlimited
	AssistNow     bool   // keep AssistNow active regardless of fix quality
	StatsInterval int    // print fix quality stats every N fixes, 0 = off

	// Receiver link: exactly one of SerialPort and RosbridgeURL.
	SerialPort   string
	BaudRate     int
	RosbridgeURL string

	// Output
	UBXCapture string // write all receiver output to this file, "" = off
	StatusPort int    // HTTP status endpoint port, 0 = off
}

var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := &Config{
		MQTTServer:     "pp.services.u-blox.com",
		MQTTPort:       8883,
		CredentialsDir: ".",
		TileLevel:      2,
		DistanceM:      50000,
		BaudRate:       38400,
	}
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT / credentials
	case "MQTT_SERVER":
		c.MQTTServer = value
	case "MQTT_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid MQTT_PORT %q: %w", value, err)
		}
		c.MQTTPort = port
	case "CLIENT_ID":
		c.ClientID = value
	case "CREDENTIALS_DIR":
		c.CredentialsDir = value
	case "UCENTER_JSON":
		c.UCenterJSON = value
	case "LBAND":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid LBAND %q: %w", value, err)
		}
		c.LBand = b

	// Correction service
	case "LOCALIZED":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid LOCALIZED %q: %w", value, err)
		}
		c.Localized = b
	case "REGION":
		c.Region = value
	case "TILE_LEVEL":
		level, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid TILE_LEVEL %q: %w", value, err)
		}
		if level < 0 || level > 2 {
			return fmt.Errorf("TILE_LEVEL must be 0-2, got %d", level)
		}
		c.TileLevel = level
	case "DISTANCE_M":
		dist, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISTANCE_M %q: %w", value, err)
		}
		if dist <= 0 {
			return fmt.Errorf("DISTANCE_M must be positive, got %d", dist)
		}
		c.DistanceM = dist
	case "MAX_EPOCHS":
		epochs, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid MAX_EPOCHS %q: %w", value, err)
		}
		c.MaxEpochs = epochs
	case "ASSISTNOW":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid ASSISTNOW %q: %w", value, err)
		}
		c.AssistNow = b
	case "STATS_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid STATS_INTERVAL %q: %w", value, err)
		}
		c.StatsInterval = interval

	// Receiver link
	case "SERIAL_PORT":
		c.SerialPort = value
	case "BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid BAUD_RATE %q: %w", value, err)
		}
		c.BaudRate = rate
	case "ROSBRIDGE_URL":
		c.RosbridgeURL = value

	// Output
	case "UBX_CAPTURE":
		c.UBXCapture = value
	case "STATUS_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid STATUS_PORT %q: %w", value, err)
		}
		c.StatusPort = port

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// Validate checks that the configuration is complete and consistent.
func (c *Config) Validate() error {
	if c.UCenterJSON == "" && c.ClientID == "" {
		return fmt.Errorf("either UCENTER_JSON or CLIENT_ID is required")
	}
	if c.SerialPort == "" && c.RosbridgeURL == "" {
		return fmt.Errorf("either SERIAL_PORT or ROSBRIDGE_URL is required")
	}
	if c.SerialPort != "" && c.RosbridgeURL != "" {
		return fmt.Errorf("SERIAL_PORT and ROSBRIDGE_URL are mutually exclusive")
	}
	if c.Localized && c.Region != "" {
		return fmt.Errorf("REGION and LOCALIZED are mutually exclusive")
	}
	if !c.Localized && c.MaxEpochs > 0 {
		return fmt.Errorf("MAX_EPOCHS requires LOCALIZED=true")
	}
	return nil
}

// InitGlobal initializes the global configuration from file. Uses
// sync.Once so this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance. InitGlobal must be
// called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
