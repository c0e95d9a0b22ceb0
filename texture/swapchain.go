package texture

import (
	"context"
	"errors"
	"sync"
)

// ErrSwapchainClosed is returned by Acquire after Close.
var ErrSwapchainClosed = errors.New("texture: swapchain is closed")

// Swapchain rotates one presenting texture and a set of render textures.
//
// A producer Acquires a free render texture, draws into it and Presents it;
// the previously presenting texture goes back to the free set. The host
// reads the presenting texture through Presenting. Swapchain is safe for
// concurrent use.
type Swapchain[T any] struct {
	mu         sync.Mutex
	cond       *sync.Cond
	presenting T
	free       []T
	closed     bool
}

// NewSwapchain returns a swapchain presenting presenting and rendering into
// render.
func NewSwapchain[T any](presenting T, render ...T) *Swapchain[T] {
	s := &Swapchain[T]{
		presenting: presenting,
		free:       append([]T(nil), render...),
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Acquire returns a free render texture, blocking until one is available,
// ctx is done or the swapchain is closed.
func (s *Swapchain[T]) Acquire(ctx context.Context) (T, error) {
	stop := context.AfterFunc(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.cond.Broadcast()
	})
	defer stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.free) == 0 && !s.closed && ctx.Err() == nil {
		s.cond.Wait()
	}
	var zero T
	if s.closed {
		return zero, ErrSwapchainClosed
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	t := s.free[len(s.free)-1]
	s.free = s.free[:len(s.free)-1]
	return t, nil
}

// Present makes t the presenting texture and frees the previous one.
func (s *Swapchain[T]) Present(t T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.free = append(s.free, s.presenting)
	s.presenting = t
	s.cond.Signal()
}

// Release returns an acquired texture without presenting it.
func (s *Swapchain[T]) Release(t T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.free = append(s.free, t)
	s.cond.Signal()
}

// Presenting calls fn with the presenting texture. The texture cannot be
// swapped out while fn runs.
func (s *Swapchain[T]) Presenting(fn func(t T)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.presenting)
}

// Close wakes every blocked Acquire.
func (s *Swapchain[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.cond.Broadcast()
}
