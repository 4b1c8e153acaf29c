package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/evidence_viewer/internal/config"
	"github.com/relabs-tech/evidence_viewer/internal/input"
	"github.com/relabs-tech/evidence_viewer/internal/session"
	"github.com/relabs-tech/evidence_viewer/internal/track"
)

// RunConsoleMQTT tails the review bus: view state, the input audit trail
// and the escort track, one line per message.
func RunConsoleMQTT() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	// Subscribe to view state. The station republishes on every change, up
	// to tick rate during a drag, so view rows are throttled to the
	// configured console interval.
	var (
		mu        sync.Mutex
		lastPrint time.Time
	)
	minGap := time.Duration(cfg.ConsoleLogInterval) * time.Millisecond

	viewToken := client.Subscribe(cfg.TopicViewState, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var st session.State
		if err := json.Unmarshal(msg.Payload(), &st); err != nil {
			log.Printf("console: view state unmarshal error: %v", err)
			return
		}

		mu.Lock()
		if time.Since(lastPrint) < minGap {
			mu.Unlock()
			return
		}
		lastPrint = time.Now()
		mu.Unlock()

		lock := " "
		if st.Locked {
			lock = "L"
		}
		fmt.Printf(
			"[VIEW] %-8s %s PAN=%7.2f (%6.2f) TILT=%6.2f ZOOM=%6.2f OFF=%6.2f POS=%6.1fs\n",
			st.Mode, lock, st.Pan, st.NormalizedPan, st.Tilt, st.Zoom, st.FrontLensOffset, st.PositionS,
		)
	})
	viewToken.Wait()
	if viewToken.Error() != nil {
		return viewToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicViewState)

	// Subscribe to the input audit trail
	inputToken := client.Subscribe(cfg.TopicViewInput, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var rec AuditRecord
		if err := json.Unmarshal(msg.Payload(), &rec); err != nil {
			log.Printf("console: audit record unmarshal error: %v", err)
			return
		}

		switch rec.Event.Kind {
		case input.KeyPress:
			fmt.Printf("[EVNT] %-7s key %s -> %s pan=%.1f\n",
				rec.Origin, rec.Event.Code, rec.State.Mode, rec.State.Pan)
		case input.Wheel:
			fmt.Printf("[EVNT] %-7s wheel dy=%.1f -> zoom=%.1f\n",
				rec.Origin, rec.Event.DeltaY, rec.State.Zoom)
		case input.PinchUpdate:
			fmt.Printf("[EVNT] %-7s pinch dist=%.1f -> zoom=%.1f\n",
				rec.Origin, rec.Event.Distance, rec.State.Zoom)
		default:
			fmt.Printf("[EVNT] %-7s %s x=%.0f y=%.0f\n",
				rec.Origin, rec.Event.Kind, rec.Event.X, rec.Event.Y)
		}
	})
	inputToken.Wait()
	if inputToken.Error() != nil {
		return inputToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicViewInput)

	// Subscribe to the escort track
	trackToken := client.Subscribe(cfg.TopicTrack, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var f track.Fix
		if err := json.Unmarshal(msg.Payload(), &f); err != nil {
			log.Printf("console: track unmarshal error: %v", err)
			return
		}

		fmt.Printf(
			"[TRK ] time=%s date=%s lat=%.6f lon=%.6f speed=%.1fkn course=%.1f validity=%s\n",
			f.Time, f.Date, f.Latitude, f.Longitude, f.SpeedKnots, f.CourseDeg, f.Validity,
		)
	})
	trackToken.Wait()
	if trackToken.Error() != nil {
		return trackToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicTrack)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
