package draw

import (
	"fmt"
	"strings"

	"elec-takeoff/pkg/geometry"
)

// Tool represents the current interaction tool.
type Tool int

const (
	ToolHand Tool = iota
	ToolCount
	ToolSegment
	ToolPolyline
	ToolFreeform
	ToolCalibrate
)

var toolNames = [...]string{"hand", "count", "segment", "polyline", "freeform", "calibrate"}

// Tools lists every tool in toolbar order.
func Tools() []Tool {
	return []Tool{ToolHand, ToolCount, ToolSegment, ToolPolyline, ToolFreeform, ToolCalibrate}
}

func (t Tool) String() string {
	if t < 0 || int(t) >= len(toolNames) {
		return fmt.Sprintf("Tool(%d)", int(t))
	}
	return toolNames[t]
}

// ParseTool parses a tool name such as "polyline".
func ParseTool(s string) (Tool, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range toolNames {
		if name == s {
			return Tool(i), nil
		}
	}
	return ToolHand, fmt.Errorf("unknown tool %q", s)
}

// Phase is the state of the interaction state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDrawingSegment
	PhaseDrawingPolyline
	PhaseDrawingFreeform
	PhaseCalibrating
	PhaseAwaitingLength // waiting for the calibration length reply
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDrawingSegment:
		return "drawing-segment"
	case PhaseDrawingPolyline:
		return "drawing-polyline"
	case PhaseDrawingFreeform:
		return "drawing-freeform"
	case PhaseCalibrating:
		return "calibrating"
	case PhaseAwaitingLength:
		return "awaiting-length"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Button identifies a pointer button.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
)

// PointerEvent is a pointer event in screen (widget) coordinates.
type PointerEvent struct {
	Pos    geometry.Point2D
	Button Button
}

// Key is a keyboard command understood by the engine.
type Key int

const (
	KeyEscape Key = iota
	KeyEnter
	KeyDelete
	KeyBackspace
	KeyUndo
	KeyRedo
)
