// Package host exposes the surface lifecycle to platform glue.
//
// Requests arrive as loosely-typed messages, so every field is optional and
// its absence is reported as an invalid_argument reply rather than a
// panic. Every failure is turned into a ReplyError carrying a stable code
// from texbridge.Code.
package host

import (
	"fmt"

	"github.com/gogpu/texbridge"
	"github.com/gogpu/texbridge/texture"
)

// CreateRequest asks for a new surface.
type CreateRequest struct {
	Width  *int `json:"width,omitempty"`
	Height *int `json:"height,omitempty"`
}

// RemoveRequest asks to remove a surface.
type RemoveRequest struct {
	ID *int64 `json:"surfaceId,omitempty"`
}

// ResizeRequest asks to resize a surface on its next frame.
type ResizeRequest struct {
	ID     *int64 `json:"surfaceId,omitempty"`
	Width  *int   `json:"width,omitempty"`
	Height *int   `json:"height,omitempty"`
}

// ReplyError is a failed request.
type ReplyError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ReplyError) Error() string { return e.Code + ": " + e.Message }

// Reply is the result of a request. Err is nil on success.
type Reply struct {
	SurfaceID int64       `json:"surfaceId,omitempty"`
	Err       *ReplyError `json:"error,omitempty"`
}

// OK reports whether the request succeeded.
func (r Reply) OK() bool { return r.Err == nil }

// Bridge dispatches lifecycle requests to a texture.Manager. Like the
// manager it must only be used from the coordinating goroutine.
type Bridge struct {
	surfaces *texture.Manager
}

// NewBridge returns a Bridge over surfaces.
func NewBridge(surfaces *texture.Manager) *Bridge {
	return &Bridge{surfaces: surfaces}
}

// CreateSurface creates a surface of the requested size.
func (b *Bridge) CreateSurface(req CreateRequest) Reply {
	if req.Width == nil || req.Height == nil {
		return errorReply(fmt.Errorf("host: width and height are required: %w", texbridge.ErrInvalidArgument))
	}
	id, err := b.surfaces.CreateSurface(*req.Width, *req.Height)
	if err != nil {
		return errorReply(err)
	}
	return Reply{SurfaceID: id}
}

// RemoveSurface removes a surface.
func (b *Bridge) RemoveSurface(req RemoveRequest) Reply {
	if req.ID == nil {
		return errorReply(fmt.Errorf("host: surfaceId is required: %w", texbridge.ErrInvalidArgument))
	}
	if err := b.surfaces.RemoveSurface(*req.ID); err != nil {
		return errorReply(err)
	}
	return Reply{SurfaceID: *req.ID}
}

// ResizeSurface records a new size for a surface.
func (b *Bridge) ResizeSurface(req ResizeRequest) Reply {
	if req.ID == nil || req.Width == nil || req.Height == nil {
		return errorReply(fmt.Errorf("host: surfaceId, width and height are required: %w", texbridge.ErrInvalidArgument))
	}
	if err := b.surfaces.ResizeIfChanged(*req.ID, *req.Width, *req.Height); err != nil {
		return errorReply(err)
	}
	return Reply{SurfaceID: *req.ID}
}

func errorReply(err error) Reply {
	texbridge.Logger().Debug("host: request failed", "error", err)
	return Reply{Err: &ReplyError{Code: texbridge.Code(err), Message: err.Error()}}
}
