package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker          string
	MQTTClientIDStation string
	MQTTClientIDWeb     string
	MQTTClientIDConsole string
	MQTTClientIDTrack   string
	MQTTClientIDJog     string
	MQTTClientIDDisplay string

	// Topics
	TopicViewState string
	TopicViewInput string
	TopicTrack     string
	TopicJog       string

	// Frames
	// Source: "mock" (generated test pattern), "still" (single image),
	// "sequence" (numbered frame directory)
	FrameSource string
	FramePath   string
	SequenceFPS float64

	// Render
	OutputWidth     int
	OutputHeight    int
	TickRateHz      int
	RenderWorkers   int // 0 = all cores but one
	FrontLensOffset float64

	// Timing
	ConsoleLogInterval int // milliseconds

	// Web Server
	WebServerPort int

	// Track playback
	// Source: "file" (recorded NMEA log), "serial" (live receiver)
	TrackSource     string
	TrackPath       string
	TrackSerialPort string
	TrackBaudRate   int

	// Jog console
	JogSerialPort string
	JogBaudRate   int

	// Display
	DisplayLeftI2CAddr    uint16
	DisplayRightI2CAddr   uint16
	DisplayUpdateInterval int    // milliseconds
	DisplayLeftContent    string // what to show: "view", "track"
	DisplayRightContent   string // what to show: "view", "track"
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: unexported (lowercase) so other packages cannot access it directly.
//     This enforces encapsulation and prevents external code from modifying config without proper locking.
//     Has package-level scope (visible to all functions in this package, persists for program lifetime).
//   - configOnce: ensures InitGlobal() only runs once, even if called multiple times.
//   - configMu: RWMutex protects concurrent access. Write lock (Lock) for initialization,
//     read lock (RLock) for Get() allows multiple concurrent readers without blocking each other.
//
// External code must use InitGlobal() to set and Get() to read, ensuring thread safety.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// newConfig returns a Config with optional keys at their defaults. Only the
// lens offset needs one: zero is a legitimate post-calibration value, so its
// absence cannot mean zero.
func newConfig() *Config {
	return &Config{
		FrontLensOffset: 91, // stock camera mount heading correction
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := newConfig()
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

	// Validate required fields
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_STATION":
		c.MQTTClientIDStation = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_TRACK":
		c.MQTTClientIDTrack = value
	case "MQTT_CLIENT_ID_JOG":
		c.MQTTClientIDJog = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_VIEW_STATE":
		c.TopicViewState = value
	case "TOPIC_VIEW_INPUT":
		c.TopicViewInput = value
	case "TOPIC_TRACK":
		c.TopicTrack = value
	case "TOPIC_JOG":
		c.TopicJog = value

	// Frames
	case "FRAME_SOURCE":
		if value != "mock" && value != "still" && value != "sequence" {
			return fmt.Errorf("FRAME_SOURCE must be mock, still or sequence, got %q", value)
		}
		c.FrameSource = value
	case "FRAME_PATH":
		c.FramePath = value
	case "SEQUENCE_FPS":
		fps, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid SEQUENCE_FPS %q: %w", value, err)
		}
		if fps <= 0 {
			return fmt.Errorf("SEQUENCE_FPS must be positive, got %v", fps)
		}
		c.SequenceFPS = fps

	// Render
	case "OUTPUT_WIDTH":
		width, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid OUTPUT_WIDTH %q: %w", value, err)
		}
		if width <= 0 {
			return fmt.Errorf("OUTPUT_WIDTH must be positive, got %d", width)
		}
		c.OutputWidth = width
	case "OUTPUT_HEIGHT":
		height, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid OUTPUT_HEIGHT %q: %w", value, err)
		}
		if height <= 0 {
			return fmt.Errorf("OUTPUT_HEIGHT must be positive, got %d", height)
		}
		c.OutputHeight = height
	case "TICK_RATE_HZ":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid TICK_RATE_HZ %q: %w", value, err)
		}
		if rate < 1 || rate > 240 {
			return fmt.Errorf("TICK_RATE_HZ must be 1-240, got %d", rate)
		}
		c.TickRateHz = rate
	case "RENDER_WORKERS":
		workers, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid RENDER_WORKERS %q: %w", value, err)
		}
		if workers < 0 {
			return fmt.Errorf("RENDER_WORKERS must be >= 0 (0 = all cores but one), got %d", workers)
		}
		c.RenderWorkers = workers
	case "FRONT_LENS_OFFSET":
		offset, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid FRONT_LENS_OFFSET %q: %w", value, err)
		}
		c.FrontLensOffset = offset

	// Timing
	case "CONSOLE_LOG_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid CONSOLE_LOG_INTERVAL %q: %w", value, err)
		}
		c.ConsoleLogInterval = interval

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	// Track playback
	case "TRACK_SOURCE":
		if value != "file" && value != "serial" {
			return fmt.Errorf("TRACK_SOURCE must be file or serial, got %q", value)
		}
		c.TrackSource = value
	case "TRACK_PATH":
		c.TrackPath = value
	case "TRACK_SERIAL_PORT":
		c.TrackSerialPort = value
	case "TRACK_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid TRACK_BAUD_RATE %q: %w", value, err)
		}
		c.TrackBaudRate = rate

	// Jog console
	case "JOG_SERIAL_PORT":
		c.JogSerialPort = value
	case "JOG_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid JOG_BAUD_RATE %q: %w", value, err)
		}
		c.JogBaudRate = rate

	// Display
	case "DISPLAY_LEFT_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_LEFT_I2C_ADDR %q: %w", value, err)
		}
		c.DisplayLeftI2CAddr = uint16(addr)
	case "DISPLAY_RIGHT_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_RIGHT_I2C_ADDR %q: %w", value, err)
		}
		c.DisplayRightI2CAddr = uint16(addr)
	case "DISPLAY_UPDATE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_UPDATE_INTERVAL %q: %w", value, err)
		}
		c.DisplayUpdateInterval = interval
	case "DISPLAY_LEFT_CONTENT":
		if value != "view" && value != "track" {
			return fmt.Errorf("DISPLAY_LEFT_CONTENT must be view or track, got %q", value)
		}
		c.DisplayLeftContent = value
	case "DISPLAY_RIGHT_CONTENT":
		if value != "view" && value != "track" {
			return fmt.Errorf("DISPLAY_RIGHT_CONTENT must be view or track, got %q", value)
		}
		c.DisplayRightContent = value

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.OutputWidth == 0 {
		return fmt.Errorf("OUTPUT_WIDTH is required")
	}
	if c.OutputHeight == 0 {
		return fmt.Errorf("OUTPUT_HEIGHT is required")
	}
	if c.TickRateHz == 0 {
		return fmt.Errorf("TICK_RATE_HZ is required")
	}
	if c.FrameSource == "" {
		return fmt.Errorf("FRAME_SOURCE is required")
	}
	if c.FrameSource != "mock" && c.FramePath == "" {
		return fmt.Errorf("FRAME_PATH is required when FRAME_SOURCE=%s", c.FrameSource)
	}
	if c.FrameSource == "sequence" && c.SequenceFPS == 0 {
		return fmt.Errorf("SEQUENCE_FPS is required when FRAME_SOURCE=sequence")
	}
	if c.ConsoleLogInterval == 0 {
		return fmt.Errorf("CONSOLE_LOG_INTERVAL is required")
	}
	if c.TrackSource == "file" && c.TrackPath == "" {
		return fmt.Errorf("TRACK_PATH is required when TRACK_SOURCE=file")
	}
	if c.TrackSource == "serial" {
		if c.TrackSerialPort == "" {
			return fmt.Errorf("TRACK_SERIAL_PORT is required when TRACK_SOURCE=serial")
		}
		if c.TrackBaudRate == 0 {
			return fmt.Errorf("TRACK_BAUD_RATE is required when TRACK_SOURCE=serial")
		}
	}
	if c.JogSerialPort != "" && c.JogBaudRate == 0 {
		return fmt.Errorf("JOG_BAUD_RATE is required when JOG_SERIAL_PORT is set")
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
// Acquires write lock (configMu.Lock) during initialization to prevent concurrent access.
// This is the only function that can set globalConfig.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
// Uses read lock (configMu.RLock) to allow multiple concurrent readers without blocking.
// This is thread-safe and efficient for concurrent access across goroutines.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
