package app

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/evidence_viewer/internal/config"
	"github.com/relabs-tech/evidence_viewer/internal/input"
)

// The jog console firmware speaks a line protocol over serial:
//
//	JOG <dx> <dy>   rotary knobs, relative deltas in device pixels
//	ZOOM <delta>    zoom ring, wheel-style delta
//	MODE <name>     selector switch: stitched, front, back, flat, raw
//	BTN <name>      momentary buttons: calibrate, reset, play, mark, jump
var (
	jogModeKeys = map[string]string{
		"stitched": "Digit1",
		"front":    "Digit2",
		"back":     "Digit3",
		"flat":     "Digit4",
		"raw":      "Digit5",
	}
	jogButtonKeys = map[string]string{
		"calibrate": "KeyC",
		"reset":     "KeyR",
		"play":      "Space",
		"mark":      "KeyM",
		"jump":      "KeyJ",
	}
)

// parseJogLine translates one console line into session input events. A jog
// nudge becomes a miniature drag: press at the origin, move by the delta,
// release.
func parseJogLine(line string) ([]input.Event, error) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return nil, nil
	}

	switch fields[0] {
	case "JOG":
		if len(fields) != 3 {
			return nil, fmt.Errorf("JOG wants 2 arguments, got %d", len(fields)-1)
		}
		dx, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("bad JOG dx %q: %w", fields[1], err)
		}
		dy, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("bad JOG dy %q: %w", fields[2], err)
		}
		return []input.Event{
			{Kind: input.PointerDown, X: 0, Y: 0},
			{Kind: input.PointerMove, X: dx, Y: dy},
			{Kind: input.PointerUp, X: dx, Y: dy},
		}, nil

	case "ZOOM":
		if len(fields) != 2 {
			return nil, fmt.Errorf("ZOOM wants 1 argument, got %d", len(fields)-1)
		}
		delta, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("bad ZOOM delta %q: %w", fields[1], err)
		}
		return []input.Event{{Kind: input.Wheel, DeltaY: delta}}, nil

	case "MODE":
		if len(fields) != 2 {
			return nil, fmt.Errorf("MODE wants 1 argument, got %d", len(fields)-1)
		}
		code, ok := jogModeKeys[fields[1]]
		if !ok {
			return nil, fmt.Errorf("unknown MODE %q", fields[1])
		}
		return []input.Event{{Kind: input.KeyPress, Code: code}}, nil

	case "BTN":
		if len(fields) != 2 {
			return nil, fmt.Errorf("BTN wants 1 argument, got %d", len(fields)-1)
		}
		code, ok := jogButtonKeys[fields[1]]
		if !ok {
			return nil, fmt.Errorf("unknown BTN %q", fields[1])
		}
		return []input.Event{{Kind: input.KeyPress, Code: code}}, nil
	}
	return nil, fmt.Errorf("unknown jog command %q", fields[0])
}

// RunJogProducer reads the physical jog console off its serial port and
// publishes the translated input events to the bus.
func RunJogProducer() error {
	cfg := config.Get()

	if cfg.JogSerialPort == "" {
		return fmt.Errorf("JOG_SERIAL_PORT is not configured")
	}

	// ---- 1) Connect to MQTT broker ----
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDJog)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("jog producer: connected to MQTT broker at %s", cfg.MQTTBroker)

	// ---- 2) Open jog console serial port ----
	serialOpts := serial.OpenOptions{
		PortName:              cfg.JogSerialPort,
		BaudRate:              uint(cfg.JogBaudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(serialOpts)
	if err != nil {
		return err
	}
	defer port.Close()
	log.Printf("jog serial port opened on %s at %d baud", cfg.JogSerialPort, cfg.JogBaudRate)

	reader := bufio.NewReader(port)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			log.Printf("jog read error: %v", err)
			return err
		}

		events, err := parseJogLine(line)
		if err != nil {
			log.Printf("jog parse error: %v", err)
			continue
		}

		for _, e := range events {
			payload, err := json.Marshal(e)
			if err != nil {
				log.Printf("jog JSON marshal error: %v", err)
				continue
			}
			if token := client.Publish(cfg.TopicJog, 0, false, payload); token.Wait() && token.Error() != nil {
				log.Printf("jog publish error: %v", token.Error())
			}
		}
		if len(events) > 0 {
			log.Printf("jog: %q -> %d event(s)", strings.TrimSpace(line), len(events))
		}
	}
}
