// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package texbridge

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"invalid argument", ErrInvalidArgument, CodeInvalidArgument},
		{"wrapped not found", fmt.Errorf("remove surface 3: %w", ErrNotFound), CodeNotFound},
		{"typed out of bounds", &OutOfBoundsError{Offset: 8, Length: 4, ElemSize: 4, RegionLen: 16}, CodeOutOfBounds},
		{"context creation", fmt.Errorf("probe: %w", ErrContextCreation), CodeContextCreation},
		{"unclassified", errors.New("boom"), CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Code(tt.err); got != tt.want {
				t.Errorf("Code(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestOutOfBoundsError(t *testing.T) {
	err := error(&OutOfBoundsError{Offset: 10, Length: 3, ElemSize: 4, RegionLen: 16})
	if !errors.Is(err, ErrOutOfBounds) {
		t.Error("OutOfBoundsError should match ErrOutOfBounds")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("OutOfBoundsError should not match ErrNotFound")
	}

	var oob *OutOfBoundsError
	if !errors.As(fmt.Errorf("decode: %w", err), &oob) {
		t.Fatal("errors.As should find *OutOfBoundsError through wrapping")
	}
	if oob.RegionLen != 16 {
		t.Errorf("RegionLen = %d, want 16", oob.RegionLen)
	}
	if !strings.Contains(err.Error(), "16 bytes") {
		t.Errorf("Error() = %q, want region size in message", err.Error())
	}
}
