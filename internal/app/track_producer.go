package app

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	nmea "github.com/adrianmo/go-nmea"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/evidence_viewer/internal/config"
	"github.com/relabs-tech/evidence_viewer/internal/track"
)

// RunTrackProducer publishes escort-vehicle track fixes to the bus, either
// replayed from a recorded NMEA log or parsed live off a serial receiver.
func RunTrackProducer() error {
	cfg := config.Get()

	// ---- 1) Connect to MQTT broker ----
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDTrack)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("track producer: connected to MQTT broker at %s", cfg.MQTTBroker)

	// ---- 2) Read sentences from the configured source ----
	switch cfg.TrackSource {
	case "serial":
		return produceFromSerial(client, cfg)
	case "file":
		return produceFromLog(client, cfg)
	}
	return fmt.Errorf("unknown TRACK_SOURCE %q", cfg.TrackSource)
}

func produceFromSerial(client mqtt.Client, cfg *config.Config) error {
	serialOpts := serial.OpenOptions{
		PortName:              cfg.TrackSerialPort,
		BaudRate:              uint(cfg.TrackBaudRate),
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
	log.Printf("track serial port opened on %s at %d baud", cfg.TrackSerialPort, cfg.TrackBaudRate)

	reader := bufio.NewReader(port)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			log.Printf("track read error: %v", err)
			return err
		}
		publishSentence(client, cfg.TopicTrack, line)
	}
}

// produceFromLog replays a recorded NMEA log at RMC cadence, one fix per
// second, and restarts at the end of the file the way the footage itself
// loops during a review.
func produceFromLog(client mqtt.Client, cfg *config.Config) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		file, err := os.Open(cfg.TrackPath)
		if err != nil {
			return fmt.Errorf("open track log: %w", err)
		}
		log.Printf("track producer: replaying %s", cfg.TrackPath)

		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			if publishSentence(client, cfg.TopicTrack, scanner.Text()) {
				<-ticker.C
			}
		}
		if err := scanner.Err(); err != nil {
			file.Close()
			return fmt.Errorf("read track log: %w", err)
		}
		file.Close()
		log.Println("track producer: log finished, restarting replay")
	}
}

// publishSentence parses one NMEA line and publishes RMC fixes. Reports
// whether a fix went out; other sentence types and parse noise are skipped.
func publishSentence(client mqtt.Client, topic, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	// NMEA sentences usually start with '$'
	if !strings.HasPrefix(line, "$") {
		return false
	}

	sentence, err := nmea.Parse(line)
	if err != nil {
		// noisy receiver or partial sentences
		return false
	}
	if sentence.DataType() != nmea.TypeRMC {
		return false
	}

	fix := track.FromRMC(sentence.(nmea.RMC))
	payload, err := json.Marshal(fix)
	if err != nil {
		log.Printf("track JSON marshal error: %v", err)
		return false
	}

	if token := client.Publish(topic, 0, true, payload); token.Wait() && token.Error() != nil {
		log.Printf("track publish error: %v", token.Error())
		return false
	}

	log.Printf("published track fix: %+v", fix)
	return true
}
