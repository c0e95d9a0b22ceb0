package texture

import (
	"fmt"

	"github.com/gogpu/texbridge/gpuctx"
	"github.com/gogpu/texbridge/native"
)

// State is the lifecycle state of a Surface.
type State uint8

// Surface states.
const (
	StateCreated State = iota
	StateActive
	StateInvalidated
	StateReleased
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateActive:
		return "active"
	case StateInvalidated:
		return "invalidated"
	case StateReleased:
		return "released"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Surface is one render surface shared between the host and the native
// renderer. At most one context, and so one native renderer, is live per
// surface.
type Surface struct {
	ID     int64
	Width  int
	Height int
	State  State

	producer Producer
	ctx      *gpuctx.Context

	// Resize requested since the last render pass.
	pending       bool
	pendingWidth  int
	pendingHeight int
}

// Handle returns the live native handle, or native.Null.
func (s *Surface) Handle() native.Handle { return s.ctx.Handle() }

// Live reports whether the surface has a live native renderer.
func (s *Surface) Live() bool { return s.ctx.Live() }

// Context returns the surface's GPU context, or nil while it has none.
func (s *Surface) Context() *gpuctx.Context { return s.ctx }

// Producer returns the surface's host producer.
func (s *Surface) Producer() Producer { return s.producer }

func (s *Surface) closeContext() {
	s.ctx.Close()
	s.ctx = nil
}
