package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "review_config.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `MQTT_BROKER=tcp://localhost:1883
OUTPUT_WIDTH=1280
OUTPUT_HEIGHT=720
TICK_RATE_HZ=60
FRAME_SOURCE=mock
CONSOLE_LOG_INTERVAL=1000
`

func TestLoadMinimalAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MQTTBroker != "tcp://localhost:1883" {
		t.Errorf("broker = %q", cfg.MQTTBroker)
	}
	if cfg.OutputWidth != 1280 || cfg.OutputHeight != 720 || cfg.TickRateHz != 60 {
		t.Errorf("render block = %d x %d @ %d Hz", cfg.OutputWidth, cfg.OutputHeight, cfg.TickRateHz)
	}
	if cfg.FrontLensOffset != 91 {
		t.Errorf("default lens offset = %v, want 91", cfg.FrontLensOffset)
	}
	if cfg.RenderWorkers != 0 {
		t.Errorf("default render workers = %d, want 0 (auto)", cfg.RenderWorkers)
	}
}

func TestLoadFullFile(t *testing.T) {
	content := `# Review station configuration
MQTT_BROKER=tcp://10.0.0.5:1883
MQTT_CLIENT_ID_STATION=review-station

TOPIC_VIEW_STATE=review/view/state
TOPIC_VIEW_INPUT=review/view/input
TOPIC_TRACK=review/track
TOPIC_JOG=review/input/jog

FRAME_SOURCE=sequence
FRAME_PATH=/var/evidence/case-0142/frames
SEQUENCE_FPS=29.97

OUTPUT_WIDTH=1920
OUTPUT_HEIGHT=1080
TICK_RATE_HZ=60
RENDER_WORKERS=4
FRONT_LENS_OFFSET=-12.5

CONSOLE_LOG_INTERVAL=500
WEB_SERVER_PORT=8080

TRACK_SOURCE=file
TRACK_PATH=/var/evidence/case-0142/track.nmea

JOG_SERIAL_PORT=/dev/ttyUSB0
JOG_BAUD_RATE=115200

DISPLAY_LEFT_I2C_ADDR=0x3C
DISPLAY_RIGHT_I2C_ADDR=0x3D
DISPLAY_UPDATE_INTERVAL=250
DISPLAY_LEFT_CONTENT=view
DISPLAY_RIGHT_CONTENT=track
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TopicViewState != "review/view/state" || cfg.TopicJog != "review/input/jog" {
		t.Errorf("topics = %q / %q", cfg.TopicViewState, cfg.TopicJog)
	}
	if cfg.FrameSource != "sequence" || cfg.SequenceFPS != 29.97 {
		t.Errorf("frame source = %q @ %v fps", cfg.FrameSource, cfg.SequenceFPS)
	}
	if cfg.FrontLensOffset != -12.5 {
		t.Errorf("lens offset = %v, want config override -12.5", cfg.FrontLensOffset)
	}
	if cfg.DisplayLeftI2CAddr != 0x3C || cfg.DisplayRightI2CAddr != 0x3D {
		t.Errorf("display addrs = %#x / %#x", cfg.DisplayLeftI2CAddr, cfg.DisplayRightI2CAddr)
	}
	if cfg.DisplayLeftContent != "view" || cfg.DisplayRightContent != "track" {
		t.Errorf("display contents = %q / %q", cfg.DisplayLeftContent, cfg.DisplayRightContent)
	}
	if cfg.TrackSource != "file" || cfg.TrackPath == "" {
		t.Errorf("track block = %q %q", cfg.TrackSource, cfg.TrackPath)
	}
}

func TestLoadRejectsBadConfigs(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "missing broker",
			content: strings.Replace(minimalConfig, "MQTT_BROKER=tcp://localhost:1883\n", "", 1),
			want:    "MQTT_BROKER is required",
		},
		{
			name:    "unknown frame source",
			content: strings.Replace(minimalConfig, "FRAME_SOURCE=mock", "FRAME_SOURCE=dvd", 1),
			want:    "FRAME_SOURCE must be",
		},
		{
			name:    "sequence without fps",
			content: strings.Replace(minimalConfig, "FRAME_SOURCE=mock", "FRAME_SOURCE=sequence\nFRAME_PATH=/tmp/frames", 1),
			want:    "SEQUENCE_FPS is required",
		},
		{
			name:    "still without path",
			content: strings.Replace(minimalConfig, "FRAME_SOURCE=mock", "FRAME_SOURCE=still", 1),
			want:    "FRAME_PATH is required",
		},
		{
			name:    "serial track without port",
			content: minimalConfig + "TRACK_SOURCE=serial\n",
			want:    "TRACK_SERIAL_PORT is required",
		},
		{
			name:    "jog port without baud",
			content: minimalConfig + "JOG_SERIAL_PORT=/dev/ttyUSB0\n",
			want:    "JOG_BAUD_RATE is required",
		},
		{
			name:    "unknown key",
			content: minimalConfig + "FRAME_SHAPE=round\n",
			want:    "unknown config key",
		},
		{
			name:    "malformed line",
			content: minimalConfig + "JUSTAKEY\n",
			want:    "invalid config line",
		},
		{
			name:    "zero width",
			content: strings.Replace(minimalConfig, "OUTPUT_WIDTH=1280", "OUTPUT_WIDTH=0", 1),
			want:    "OUTPUT_WIDTH must be positive",
		},
		{
			name:    "tick rate out of range",
			content: strings.Replace(minimalConfig, "TICK_RATE_HZ=60", "TICK_RATE_HZ=500", 1),
			want:    "TICK_RATE_HZ must be 1-240",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			if err == nil {
				t.Fatalf("Load accepted a bad config")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error = %q, want it to mention %q", err, tc.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Fatalf("Load of a missing file did not fail")
	}
}
