// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/relabs-tech/evidence_viewer/internal/config"
	"github.com/relabs-tech/evidence_viewer/internal/input"
	"github.com/relabs-tech/evidence_viewer/internal/render"
	"github.com/relabs-tech/evidence_viewer/internal/session"
)

// keyCodes maps the desktop keys the station understands onto the shared
// KeyboardEvent.code spellings of the session keymap.
var keyCodes = map[ebiten.Key]string{
	ebiten.KeyDigit1:     "Digit1",
	ebiten.KeyDigit2:     "Digit2",
	ebiten.KeyDigit3:     "Digit3",
	ebiten.KeyDigit4:     "Digit4",
	ebiten.KeyDigit5:     "Digit5",
	ebiten.KeyC:          "KeyC",
	ebiten.KeyR:          "KeyR",
	ebiten.KeyM:          "KeyM",
	ebiten.KeyJ:          "KeyJ",
	ebiten.KeySpace:      "Space",
	ebiten.KeyArrowLeft:  "ArrowLeft",
	ebiten.KeyArrowRight: "ArrowRight",
	ebiten.KeyArrowUp:    "ArrowUp",
	ebiten.KeyArrowDown:  "ArrowDown",
	ebiten.KeyEqual:      "Equal",
	ebiten.KeyMinus:      "Minus",
}

// auditEntry pairs an event with its origin and the state it produced, for
// the bus publisher goroutine.
type auditEntry struct {
	origin string
	event  input.Event
	state  session.State
}

type stationGame struct {
	sess *session.Session

	// Bus pushes leave the game loop through buffered channels; a slow
	// broker drops snapshots instead of stalling the frame.
	states chan<- session.State
	audits chan<- auditEntry

	tex          *ebiten.Image
	lastX, lastY int
	lastState    session.State
	width        int
	height       int
}

func (g *stationGame) dispatch(e input.Event) {
	g.sess.Dispatch(e)
	if e.Kind == input.PointerMove {
		return
	}
	select {
	case g.audits <- auditEntry{origin: "station", event: e, state: g.sess.State()}:
	default:
	}
}

func (g *stationGame) Update() error {
	// 1) Pointer
	x, y := ebiten.CursorPosition()
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.dispatch(input.Event{Kind: input.PointerDown, X: float64(x), Y: float64(y)})
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) && (x != g.lastX || y != g.lastY) {
		g.dispatch(input.Event{Kind: input.PointerMove, X: float64(x), Y: float64(y)})
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.dispatch(input.Event{Kind: input.PointerUp, X: float64(x), Y: float64(y)})
	}
	g.lastX, g.lastY = x, y

	// 2) Wheel. One notch is ~100 browser-style delta units, opposite sign.
	if _, wy := ebiten.Wheel(); wy != 0 {
		g.dispatch(input.Event{Kind: input.Wheel, DeltaY: -wy * 100})
	}

	// 3) Keys
	for k, code := range keyCodes {
		if inpututil.IsKeyJustPressed(k) {
			g.dispatch(input.Event{Kind: input.KeyPress, Code: code})
		}
	}

	// 4) Advance the session and publish the state when it changed
	g.sess.Tick()
	if st := g.sess.State(); st != g.lastState {
		select {
		case g.states <- st:
		default:
		}
		g.lastState = st
	}
	return nil
}

func (g *stationGame) Draw(screen *ebiten.Image) {
	frame := g.sess.Output()
	b := frame.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return
	}
	if g.tex == nil || g.tex.Bounds().Dx() != b.Dx() || g.tex.Bounds().Dy() != b.Dy() {
		if g.tex != nil {
			g.tex.Deallocate()
		}
		g.tex = ebiten.NewImage(b.Dx(), b.Dy())
	}
	g.tex.WritePixels(frame.Pix)
	screen.DrawImage(g.tex, nil)

	st := g.lastState
	lock := ""
	if st.Locked {
		lock = " LOCKED"
	}
	ebitenutil.DebugPrint(screen, fmt.Sprintf(
		"%s%s  pan %.1f (%.1f)  tilt %.1f  zoom %.1f  pos %.1fs",
		st.Mode, lock, st.Pan, st.NormalizedPan, st.Tilt, st.Zoom, st.PositionS,
	))
}

func (g *stationGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.sess.Resize(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

// RunStation hosts the review session in a desktop window and mirrors it
// onto the bus: view state out, jog console events in.
func RunStation() error {
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
		SetClientID(cfg.MQTTClientIDStation)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("station: connected to MQTT broker at %s", cfg.MQTTBroker)

	tele := NewTelemetry(client, cfg.TopicViewState, cfg.TopicViewInput)
	states := make(chan session.State, 8)
	audits := make(chan auditEntry, 64)
	go func() {
		for {
			select {
			case st := <-states:
				tele.PublishState(st)
			case en := <-audits:
				tele.PublishInput(en.origin, en.event, en.state)
			}
		}
	}()

	// ---- 3) Jog console events from the bus ----
	token := client.Subscribe(cfg.TopicJog, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var e input.Event
		if err := json.Unmarshal(msg.Payload(), &e); err != nil {
			log.Printf("station: jog event unmarshal error: %v", err)
			return
		}
		sess.Dispatch(e)
		select {
		case audits <- auditEntry{origin: "jog", event: e, state: sess.State()}:
		default:
		}
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("station: subscribed to %s", cfg.TopicJog)

	// ---- 4) Window ----
	game := &stationGame{
		sess:   sess,
		states: states,
		audits: audits,
		width:  cfg.OutputWidth,
		height: cfg.OutputHeight,
	}
	ebiten.SetWindowTitle("Evidence Viewer")
	ebiten.SetWindowSize(cfg.OutputWidth, cfg.OutputHeight)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.TickRateHz)
	log.Printf("station: window %dx%d at %d Hz", cfg.OutputWidth, cfg.OutputHeight, cfg.TickRateHz)

	return ebiten.RunGame(game)
}
