package texture

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSwapchainRotation(t *testing.T) {
	s := NewSwapchain(0, 1, 2)
	ctx := context.Background()

	a, err := s.Acquire(ctx)
	if err != nil {
		t.Fatal(err)
	}
	s.Present(a)

	var presenting int
	s.Presenting(func(v int) { presenting = v })
	if presenting != a {
		t.Errorf("presenting = %d, want %d", presenting, a)
	}

	// Two textures are free again: the initial presenting one and the
	// other render texture.
	b, _ := s.Acquire(ctx)
	c, _ := s.Acquire(ctx)
	if b == a || c == a || b == c {
		t.Errorf("acquired %d and %d while %d presents", b, c, a)
	}
}

func TestSwapchainAcquireBlocks(t *testing.T) {
	s := NewSwapchain("present", "render")
	ctx := context.Background()

	r, _ := s.Acquire(ctx)
	done := make(chan string)
	go func() {
		v, err := s.Acquire(ctx)
		if err != nil {
			close(done)
			return
		}
		done <- v
	}()

	select {
	case <-done:
		t.Fatal("Acquire should block while no texture is free")
	case <-time.After(20 * time.Millisecond):
	}

	s.Present(r)
	select {
	case v := <-done:
		if v != "present" {
			t.Errorf("Acquire() = %q, want the previously presenting texture", v)
		}
	case <-time.After(time.Second):
		t.Fatal("Acquire did not wake after Present")
	}
}

func TestSwapchainAcquireCanceled(t *testing.T) {
	s := NewSwapchain[int](0)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := s.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Acquire() error = %v, want DeadlineExceeded", err)
	}
}

func TestSwapchainClose(t *testing.T) {
	s := NewSwapchain[int](0)
	errc := make(chan error, 1)
	go func() {
		_, err := s.Acquire(context.Background())
		errc <- err
	}()
	time.Sleep(10 * time.Millisecond)
	s.Close()

	select {
	case err := <-errc:
		if !errors.Is(err, ErrSwapchainClosed) {
			t.Errorf("Acquire() error = %v, want ErrSwapchainClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Close did not wake Acquire")
	}
}

func TestSwapchainRelease(t *testing.T) {
	s := NewSwapchain(0, 1)
	v, _ := s.Acquire(context.Background())
	s.Release(v)
	w, err := s.Acquire(context.Background())
	if err != nil || w != v {
		t.Errorf("Acquire() after Release = %d, %v; want %d", w, err, v)
	}
}
