package decode

import (
	"fmt"

	"github.com/gogpu/texbridge/memview"
	"github.com/gogpu/texbridge/native"
)

// ShapeResult wraps an opaque shaping result. Results spans from the result
// record to the end of the region; its layout is owned by the shaping
// service.
type ShapeResult struct {
	Raw     native.Handle
	Results memview.View
}

// LineBreaks wraps an opaque line breaking result, shaped like ShapeResult.
type LineBreaks struct {
	Raw     native.Handle
	Results memview.View
}

// ReadShapeResult decodes the pointer returned by the native shaping call.
// A null pointer (nothing to shape) yields an empty result.
func ReadShapeResult(r memview.Region, ptr uint32) (ShapeResult, error) {
	raw, v, err := opaque(r, ptr)
	if err != nil {
		return ShapeResult{}, fmt.Errorf("decode: shape result: %w", err)
	}
	return ShapeResult{Raw: raw, Results: v}, nil
}

// ReadLineBreaks decodes the pointer returned by the native line breaking
// call. A null pointer yields an empty result.
func ReadLineBreaks(r memview.Region, ptr uint32) (LineBreaks, error) {
	raw, v, err := opaque(r, ptr)
	if err != nil {
		return LineBreaks{}, fmt.Errorf("decode: line breaks: %w", err)
	}
	return LineBreaks{Raw: raw, Results: v}, nil
}

func opaque(r memview.Region, ptr uint32) (native.Handle, memview.View, error) {
	if ptr == 0 {
		return native.Null, memview.View{}, nil
	}
	v, err := memview.Tail(r, int(ptr))
	if err != nil {
		return native.Null, memview.View{}, err
	}
	return native.Handle(ptr), v, nil
}
