package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/png"
	"log"
	"net/http"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/evidence_viewer/internal/config"
	"github.com/relabs-tech/evidence_viewer/internal/input"
	"github.com/relabs-tech/evidence_viewer/internal/render"
	"github.com/relabs-tech/evidence_viewer/internal/session"
	"github.com/relabs-tech/evidence_viewer/internal/viewmode"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// WSMessage is one remote command from the browser shell.
type WSMessage struct {
	Action  string       `json:"action"` // input, set_mode, calibrate, reset, play, pause, seek, set_rate, state
	Mode    string       `json:"mode,omitempty"`
	Event   *input.Event `json:"event,omitempty"`
	Seconds float64      `json:"seconds,omitempty"`
	Rate    float64      `json:"rate,omitempty"`
}

// WSResponse is the session's answer. Rendered frames ride the same socket
// as binary PNG messages.
type WSResponse struct {
	Type    string         `json:"type"` // state, error
	State   *session.State `json:"state,omitempty"`
	Message string         `json:"message,omitempty"`
}

// wsHub tracks connected browsers. Gorilla connections do not allow
// concurrent writers, so every connection carries its own write lock.
type wsHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]*sync.Mutex
}

func newWSHub() *wsHub {
	return &wsHub{clients: make(map[*websocket.Conn]*sync.Mutex)}
}

func (h *wsHub) add(conn *websocket.Conn) *sync.Mutex {
	h.mu.Lock()
	defer h.mu.Unlock()
	wmu := &sync.Mutex{}
	h.clients[conn] = wmu
	return wmu
}

func (h *wsHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
}

func (h *wsHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *wsHub) snapshot() map[*websocket.Conn]*sync.Mutex {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[*websocket.Conn]*sync.Mutex, len(h.clients))
	for conn, wmu := range h.clients {
		out[conn] = wmu
	}
	return out
}

func (h *wsHub) writeJSON(conn *websocket.Conn, wmu *sync.Mutex, v interface{}) error {
	wmu.Lock()
	defer wmu.Unlock()
	return conn.WriteJSON(v)
}

// broadcastFrame pushes one encoded frame to every browser; dead
// connections are dropped on the spot.
func (h *wsHub) broadcastFrame(frame []byte) {
	for conn, wmu := range h.snapshot() {
		wmu.Lock()
		err := conn.WriteMessage(websocket.BinaryMessage, frame)
		wmu.Unlock()
		if err != nil {
			log.Printf("web: frame push error, dropping client: %v", err)
			h.remove(conn)
			conn.Close()
		}
	}
}

func (h *wsHub) broadcastState(st session.State) {
	resp := WSResponse{Type: "state", State: &st}
	for conn, wmu := range h.snapshot() {
		if err := h.writeJSON(conn, wmu, resp); err != nil {
			log.Printf("web: state push error, dropping client: %v", err)
			h.remove(conn)
			conn.Close()
		}
	}
}

// applyWS executes one remote command against the session.
func applyWS(sess *session.Session, tele *Telemetry, msg WSMessage) error {
	switch msg.Action {
	case "input":
		if msg.Event == nil {
			return fmt.Errorf("input action without event")
		}
		sess.Dispatch(*msg.Event)
		tele.PublishInput("web", *msg.Event, sess.State())

	case "set_mode":
		m, err := viewmode.Parse(msg.Mode)
		if err != nil {
			return err
		}
		sess.SetMode(m)

	case "calibrate":
		sess.Calibrate()

	case "reset":
		sess.ResetView()

	case "play", "pause", "seek", "set_rate":
		pb, ok := sess.Playback()
		if !ok {
			return fmt.Errorf("frame source has no playback transport")
		}
		switch msg.Action {
		case "play":
			pb.Play()
		case "pause":
			pb.Pause()
		case "seek":
			if msg.Seconds < 0 {
				return fmt.Errorf("seek position must be >= 0")
			}
			pb.Seek(time.Duration(msg.Seconds * float64(time.Second)))
		case "set_rate":
			if msg.Rate <= 0 {
				return fmt.Errorf("rate must be positive")
			}
			pb.SetRate(msg.Rate)
		}

	case "state":
		// Reply-only action; the state response goes out below.

	default:
		return fmt.Errorf("unknown action %q", msg.Action)
	}
	return nil
}

// RunWeb hosts a headless review session behind an HTTP/WebSocket server:
// rendered frames and state go out to connected browsers, commands and
// input events come back in.
func RunWeb() error {
	cfg := config.Get()

	// ---- 1) Frame source, renderer, session ----
	source, err := newFrameSource(cfg)
	if err != nil {
		return err
	}
	renderer := render.NewSoftware(source, cfg.OutputWidth, cfg.OutputHeight, cfg.RenderWorkers)
	sess := session.New(source, renderer, cfg.OutputWidth, cfg.OutputHeight)
	sess.SetFrontLensOffset(cfg.FrontLensOffset)

	// ---- 2) Connect to MQTT broker ----
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	tele := NewTelemetry(client, cfg.TopicViewState, cfg.TopicViewInput)

	// ---- 3) Jog console events from the bus ----
	token := client.Subscribe(cfg.TopicJog, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var e input.Event
		if err := json.Unmarshal(msg.Payload(), &e); err != nil {
			log.Printf("web: jog event unmarshal error: %v", err)
			return
		}
		sess.Dispatch(e)
		st := sess.State()
		go tele.PublishInput("jog", e, st)
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: subscribed to %s", cfg.TopicJog)

	// ---- 4) Tick loop ----
	hub := newWSHub()
	frameEvery := cfg.TickRateHz / 15 // browsers get ~15 fps, ticks stay at full rate
	if frameEvery < 1 {
		frameEvery = 1
	}
	go func() {
		ticker := time.NewTicker(time.Second / time.Duration(cfg.TickRateHz))
		defer ticker.Stop()

		var last session.State
		n := 0
		for range ticker.C {
			sess.Tick()
			if st := sess.State(); st != last {
				tele.PublishState(st)
				hub.broadcastState(st)
				last = st
			}
			n++
			if n%frameEvery == 0 && hub.count() > 0 {
				var buf bytes.Buffer
				if err := png.Encode(&buf, sess.Output()); err != nil {
					log.Printf("web: frame encode error: %v", err)
					continue
				}
				hub.broadcastFrame(buf.Bytes())
			}
		}
	}()

	// ---- 5) WebSocket endpoint ----
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("web: websocket upgrade error: %v", err)
			return
		}
		wmu := hub.add(conn)
		defer func() {
			hub.remove(conn)
			conn.Close()
		}()
		log.Printf("web: browser connected from %s", r.RemoteAddr)

		st := sess.State()
		if err := hub.writeJSON(conn, wmu, WSResponse{Type: "state", State: &st}); err != nil {
			return
		}

		for {
			var msg WSMessage
			if err := conn.ReadJSON(&msg); err != nil {
				log.Printf("web: websocket read error: %v", err)
				return
			}
			if err := applyWS(sess, tele, msg); err != nil {
				if werr := hub.writeJSON(conn, wmu, WSResponse{Type: "error", Message: err.Error()}); werr != nil {
					return
				}
				continue
			}
			st := sess.State()
			if err := hub.writeJSON(conn, wmu, WSResponse{Type: "state", State: &st}); err != nil {
				return
			}
		}
	})

	// ---- 6) JSON API: latest view state ----
	http.HandleFunc("/api/view", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(sess.State()); err != nil {
			log.Printf("json encode error: %v", err)
		}
	})

	// ---- 7) PNG snapshot of the current output ----
	http.HandleFunc("/api/frame", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		if err := png.Encode(w, sess.OutputCopy()); err != nil {
			log.Printf("web: snapshot encode error: %v", err)
		}
	})

	// ---- 8) Static files from ./web as the root ----
	fs := http.FileServer(http.Dir("web"))
	http.Handle("/", fs)

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web server listening on %s", addr)
	return http.ListenAndServe(addr, nil)
}
