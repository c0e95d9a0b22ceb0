// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package notify delivers work completions from worker goroutines to the
// coordinating goroutine.
//
// Workers never call completion callbacks themselves. They post a Message
// into the Coordinator's inbox, and the coordinating goroutine delivers
// pending messages with Drain or Run. Every worker is bound to its
// Coordinator when it is spawned, so no completion can be posted before
// someone listens for it.
package notify

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/gogpu/texbridge"
)

// WorkspaceID identifies a script workspace.
type WorkspaceID uint64

// WorkID identifies one work item within a workspace.
type WorkID uint64

// Message reports that work item WorkID of Workspace completed.
type Message struct {
	Workspace WorkspaceID
	WorkID    WorkID
}

// Callback is invoked on the coordinating goroutine for each completion.
type Callback func(id WorkID)

const (
	defaultInboxSize = 64
	defaultWorkers   = 2
	defaultQueueSize = 16
)

// Option configures a Coordinator or Pool.
type Option func(*options)

type options struct {
	inboxSize int
	workers   int
}

func buildOptions(opts []Option) options {
	o := options{inboxSize: defaultInboxSize, workers: defaultWorkers}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithInboxSize sets the Coordinator's inbox capacity. Workers block when
// the inbox is full until the coordinating goroutine drains it.
func WithInboxSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.inboxSize = n
		}
	}
}

// WithWorkers sets the number of workers a Pool spawns.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// Coordinator routes completion messages to registered workspace callbacks.
//
// Register, Unregister and Dropped are safe for concurrent use. Drain and
// Run must only be called from the coordinating goroutine.
type Coordinator struct {
	mu        sync.RWMutex
	callbacks map[WorkspaceID]Callback

	inbox   chan Message
	dropped atomic.Uint64
}

// NewCoordinator returns a Coordinator with no registered workspaces.
func NewCoordinator(opts ...Option) *Coordinator {
	o := buildOptions(opts)
	return &Coordinator{
		callbacks: make(map[WorkspaceID]Callback),
		inbox:     make(chan Message, o.inboxSize),
	}
}

// Register sets the completion callback of ws, replacing any previous one.
func (c *Coordinator) Register(ws WorkspaceID, cb Callback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.callbacks[ws] = cb
}

// Unregister removes the callback of ws. Later completions for ws are
// dropped.
func (c *Coordinator) Unregister(ws WorkspaceID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.callbacks, ws)
}

// Dropped returns the number of messages dropped because their workspace
// was not registered.
func (c *Coordinator) Dropped() uint64 { return c.dropped.Load() }

// Spawn starts a Worker bound to c. The worker stops when ctx is done or
// Stop is called.
func (c *Coordinator) Spawn(ctx context.Context) *Worker {
	w := c.newWorker()
	go func() {
		if err := w.run(ctx); err != nil {
			texbridge.Logger().Debug("notify: worker exited", "error", err)
		}
	}()
	return w
}

// Drain delivers every pending message and returns how many were read.
// It never blocks.
func (c *Coordinator) Drain() int {
	n := 0
	for {
		select {
		case m := <-c.inbox:
			c.deliver(m)
			n++
		default:
			return n
		}
	}
}

// Run delivers messages until ctx is done.
func (c *Coordinator) Run(ctx context.Context) error {
	for {
		select {
		case m := <-c.inbox:
			c.deliver(m)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Coordinator) deliver(m Message) {
	c.mu.RLock()
	cb, ok := c.callbacks[m.Workspace]
	c.mu.RUnlock()
	if !ok {
		c.dropped.Add(1)
		texbridge.Logger().Debug("notify: message for unregistered workspace dropped",
			"workspace", m.Workspace, "work", m.WorkID)
		return
	}
	cb(m.WorkID)
}

func (c *Coordinator) post(ctx context.Context, m Message) error {
	select {
	case c.inbox <- m:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
