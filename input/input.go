// Package input polls the keyboard and mouse once per frame into a
// plain state snapshot that gameplay systems read.
package input

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/jakecoffman/cp"
)

// State is one frame of input. Held flags are level-triggered; Pressed
// flags are true only on the frame the control went down.
type State struct {
	// MoveX is -1 for left, 0 for none, +1 for right.
	MoveX float64
	// MoveY is -1 for down, 0 for none, +1 for up.
	MoveY float64

	AttackPressed bool
	AttackHeld    bool
	ThrowPressed  bool
	ThrowHeld     bool

	// DebugCrashPressed is the F9 forced-crash chord.
	DebugCrashPressed bool

	// MouseWorld is the cursor in world coordinates; MouseInView is
	// false when the cursor is outside the window.
	MouseWorld  cp.Vector
	MouseInView bool
}

// Projector converts window cursor coordinates to world coordinates.
type Projector interface {
	ScreenToWorld(x, y int) (cp.Vector, bool)
}

// Poller reads device state each frame.
type Poller struct {
	projector Projector
}

func NewPoller(projector Projector) *Poller {
	return &Poller{projector: projector}
}

// Poll samples the devices and returns the frame's state.
func (p *Poller) Poll() State {
	var s State

	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyLeft) {
		s.MoveX -= 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyRight) {
		s.MoveX += 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyDown) {
		s.MoveY -= 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyUp) {
		s.MoveY += 1
	}

	s.AttackPressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
	s.AttackHeld = ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	s.ThrowPressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight)
	s.ThrowHeld = ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)

	s.DebugCrashPressed = inpututil.IsKeyJustPressed(ebiten.KeyF9)

	mx, my := ebiten.CursorPosition()
	if p.projector != nil {
		s.MouseWorld, s.MouseInView = p.projector.ScreenToWorld(mx, my)
	}
	return s
}
