package decode

import (
	"fmt"

	"github.com/gogpu/texbridge/memview"
)

// ScriptResponseHeader is the header returned by the native script
// response query: (available, dataPtr, size).
type ScriptResponseHeader struct {
	Available uint32
	Data      uint32
	Size      uint32
}

// ScriptResponse is a decoded script work response.
type ScriptResponse struct {
	// Available reports whether the work item has produced a result.
	Available bool

	// Data aliases the response bytes. Empty when not available.
	Data memview.View
}

// ReadScriptResponse decodes a script response header. When the result is
// not available, Data and Size are ignored whatever their values.
func ReadScriptResponse(r memview.Region, h ScriptResponseHeader) (ScriptResponse, error) {
	if h.Available == 0 {
		return ScriptResponse{}, nil
	}
	v, err := memview.New(r, int(h.Data), int(h.Size), memview.KindByte)
	if err != nil {
		return ScriptResponse{}, fmt.Errorf("decode: script response: %w", err)
	}
	return ScriptResponse{Available: true, Data: v}, nil
}

// HighlightHeader is the header returned by the native highlight query:
// (count, dataPtr).
type HighlightHeader struct {
	Count uint32
	Data  uint32
}

// ReadHighlightRow decodes a highlight header into a uint32 view of Count
// elements.
func ReadHighlightRow(r memview.Region, h HighlightHeader) (memview.View, error) {
	v, err := memview.New(r, int(h.Data), int(h.Count), memview.KindUint32)
	if err != nil {
		return memview.View{}, fmt.Errorf("decode: highlight row: %w", err)
	}
	return v, nil
}
