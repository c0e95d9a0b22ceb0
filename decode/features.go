package decode

import (
	"fmt"

	"github.com/gogpu/texbridge/memview"
)

// Tag is an OpenType feature tag such as 'liga' or 'kern'.
type Tag uint32

// MakeTag builds a tag from its four-character name.
func MakeTag(s string) Tag {
	var b [4]byte
	copy(b[:], s)
	for i := len(s); i < 4; i++ {
		b[i] = ' '
	}
	return Tag(uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]))
}

// String returns the four-character tag name.
func (t Tag) String() string {
	return string([]byte{byte(t >> 24), byte(t >> 16), byte(t >> 8), byte(t)})
}

// Freer is a native deallocation entry point.
type Freer func(ptr uint32)

// ReadFontFeatures decodes the feature list record returned by the native
// font features call.
//
// The record holds (dataPtr uint32, count uint32) little-endian at offsets 0
// and 4; dataPtr points to count little-endian uint32 tags. The tags are
// copied out, then free is called with headerPtr exactly once, also when
// count is zero and also when decoding fails. A null headerPtr (no font)
// yields no tags and nothing to free.
func ReadFontFeatures(r memview.Region, headerPtr uint32, free Freer) (tags []Tag, err error) {
	if headerPtr == 0 {
		return nil, nil
	}
	defer free(headerPtr)

	dataPtr, err := memview.ReadUint32(r, int(headerPtr))
	if err != nil {
		return nil, fmt.Errorf("decode: font features header: %w", err)
	}
	count, err := memview.ReadUint32(r, int(headerPtr)+4)
	if err != nil {
		return nil, fmt.Errorf("decode: font features header: %w", err)
	}
	if count == 0 {
		return []Tag{}, nil
	}

	v, err := memview.New(r, int(dataPtr), int(count), memview.KindUint32)
	if err != nil {
		return nil, fmt.Errorf("decode: font features data: %w", err)
	}
	tags = make([]Tag, v.Len())
	for i := range tags {
		tags[i] = Tag(v.Uint32(i))
	}
	return tags, nil
}
