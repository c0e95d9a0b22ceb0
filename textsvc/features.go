package textsvc

import (
	"slices"

	gotext "github.com/go-text/typesetting/font"

	"github.com/gogpu/texbridge"
	"github.com/gogpu/texbridge/decode"
	"github.com/gogpu/texbridge/native"
)

// FontFeatures writes the OpenType feature tags of the font's GSUB and GPOS
// tables into the heap and returns the pointer to a (dataPtr, count) record,
// as read by decode.ReadFontFeatures. Tags are deduplicated and sorted. A
// font without layout tables yields a zero count and a null data pointer.
func (s *Service) FontFeatures(h native.Handle) (uint32, error) {
	f, err := s.font(h)
	if err != nil {
		return 0, err
	}
	tags := featureTags(f.shaper)

	s.mu.Lock()
	defer s.mu.Unlock()
	var data uint32
	if len(tags) > 0 {
		if data, err = s.heap.Alloc(4 * len(tags)); err != nil {
			return 0, err
		}
		words := make([]uint32, len(tags))
		for i, t := range tags {
			words[i] = uint32(t)
		}
		_ = s.heap.PutUint32s(data, words...)
	}
	header, err := s.heap.Alloc(8)
	if err != nil {
		if data != 0 {
			_ = s.heap.Free(data)
		}
		return 0, err
	}
	_ = s.heap.PutUint32s(header, data, uint32(len(tags)))
	s.features[header] = data
	return header, nil
}

// DeleteFontFeatures frees a record returned by FontFeatures. It has the
// shape of a decode.Freer; unknown pointers are logged and ignored.
func (s *Service) DeleteFontFeatures(ptr uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.features[ptr]
	if !ok {
		texbridge.Logger().Warn("textsvc: free of unknown font features", "ptr", ptr)
		return
	}
	delete(s.features, ptr)
	if data != 0 {
		_ = s.heap.Free(data)
	}
	_ = s.heap.Free(ptr)
}

// featureTags lists the feature tags of the GSUB and GPOS FeatureLists of f,
// sorted and without duplicates.
func featureTags(f *gotext.Font) []decode.Tag {
	tags := make([]decode.Tag, 0, len(f.GSUB.Features)+len(f.GPOS.Features))
	for _, ft := range f.GSUB.Features {
		tags = append(tags, decode.Tag(uint32(ft.Tag)))
	}
	for _, ft := range f.GPOS.Features {
		tags = append(tags, decode.Tag(uint32(ft.Tag)))
	}
	slices.Sort(tags)
	return slices.Compact(tags)
}
