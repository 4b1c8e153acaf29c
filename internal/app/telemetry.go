package app

import (
	"encoding/json"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/evidence_viewer/internal/input"
	"github.com/relabs-tech/evidence_viewer/internal/session"
)

// AuditRecord is one entry in the operator input audit stream: who did
// what, when, and the view state that resulted. The stream is the review
// session's chain-of-custody record.
type AuditRecord struct {
	Time   string        `json:"time"`   // RFC3339
	Origin string        `json:"origin"` // station, web, jog
	Event  input.Event   `json:"event"`
	State  session.State `json:"state"`
}

// Telemetry publishes the session's view state and input audit trail on the
// bus. Both hosting shells carry one so the consoles and panel displays see
// the same picture regardless of which shell is driving.
type Telemetry struct {
	client     mqtt.Client
	stateTopic string
	inputTopic string
}

func NewTelemetry(client mqtt.Client, stateTopic, inputTopic string) *Telemetry {
	return &Telemetry{client: client, stateTopic: stateTopic, inputTopic: inputTopic}
}

// PublishState pushes a snapshot, retained so late subscribers get the
// current view immediately.
func (t *Telemetry) PublishState(st session.State) {
	payload, err := json.Marshal(st)
	if err != nil {
		log.Printf("json marshal error (view state): %v", err)
		return
	}
	if token := t.client.Publish(t.stateTopic, 0, true, payload); token.Wait() && token.Error() != nil {
		log.Printf("MQTT publish error (view state): %v", token.Error())
	}
}

// PublishInput appends one event and the state it produced to the audit
// stream. Pointer moves are dropped: they arrive at tick rate and the drag
// they belong to is already bracketed by its down/up pair.
func (t *Telemetry) PublishInput(origin string, e input.Event, st session.State) {
	if e.Kind == input.PointerMove {
		return
	}
	rec := AuditRecord{
		Time:   time.Now().Format(time.RFC3339),
		Origin: origin,
		Event:  e,
		State:  st,
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		log.Printf("json marshal error (audit record): %v", err)
		return
	}
	if token := t.client.Publish(t.inputTopic, 0, false, payload); token.Wait() && token.Error() != nil {
		log.Printf("MQTT publish error (audit record): %v", token.Error())
	}
}
