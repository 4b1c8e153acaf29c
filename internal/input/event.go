package input

import "fmt"

// Kind is the closed set of input events the core understands. Every hosting
// surface (desktop window, websocket shell, jog console) translates its
// native events into these before dispatch, which keeps the core free of any
// UI framework.
type Kind int

const (
	PointerDown Kind = iota
	PointerMove
	PointerUp
	Wheel
	PinchUpdate
	KeyPress
)

func (k Kind) String() string {
	switch k {
	case PointerDown:
		return "pointerdown"
	case PointerMove:
		return "pointermove"
	case PointerUp:
		return "pointerup"
	case Wheel:
		return "wheel"
	case PinchUpdate:
		return "pinch"
	case KeyPress:
		return "key"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps the wire spelling onto a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "pointerdown":
		return PointerDown, nil
	case "pointermove":
		return PointerMove, nil
	case "pointerup":
		return PointerUp, nil
	case "wheel":
		return Wheel, nil
	case "pinch":
		return PinchUpdate, nil
	case "key":
		return KeyPress, nil
	}
	return PointerDown, fmt.Errorf("unknown input kind %q", s)
}

// MarshalJSON emits the wire spelling so bus payloads stay readable.
func (k Kind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

func (k *Kind) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("input kind: expected JSON string, got %s", b)
	}
	parsed, err := ParseKind(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Event is one input step. Which fields are meaningful depends on Kind:
// pointer events carry X/Y in device pixels, wheel carries DeltaY, pinch
// carries the current inter-finger Distance, key presses carry the Code
// (KeyboardEvent.code spelling, e.g. "KeyC", "Digit2", "ArrowLeft").
type Event struct {
	Kind     Kind    `json:"kind"`
	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
	DeltaY   float64 `json:"delta_y,omitempty"`
	Distance float64 `json:"distance,omitempty"`
	Code     string  `json:"code,omitempty"`
}
