// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package script runs script workspace jobs on worker goroutines and exposes
// their results through the native header format.
//
// A job's output is copied into the workspace heap when it completes, and
// the completion is reported to the coordinating goroutine through a
// notify.Coordinator. The coordinating goroutine then reads the response
// header and decodes it with decode.ReadScriptResponse.
package script

import (
	"context"
	"fmt"
	"sync"

	"github.com/gogpu/texbridge"
	"github.com/gogpu/texbridge/decode"
	"github.com/gogpu/texbridge/native"
	"github.com/gogpu/texbridge/notify"
)

// Job computes a work item's response bytes.
type Job func(ctx context.Context) ([]byte, error)

type response struct {
	done bool
	ptr  uint32
	size uint32
	err  error
}

// Workspace is one script workspace.
//
// Workspace is safe for concurrent use; decoded views stay valid only
// until the next job completes, since completions may grow the heap.
type Workspace struct {
	id     notify.WorkspaceID
	coord  *notify.Coordinator
	pool   *notify.Pool
	onDone notify.Callback

	mu        sync.Mutex
	heap      *native.Heap
	next      notify.WorkID
	responses map[notify.WorkID]*response
	sources   map[string][]string
}

// NewWorkspace registers a workspace with coord. onDone is called on the
// coordinating goroutine for every completed job and may be nil.
func NewWorkspace(id notify.WorkspaceID, coord *notify.Coordinator, pool *notify.Pool,
	heap *native.Heap, onDone notify.Callback) *Workspace {
	w := &Workspace{
		id:        id,
		coord:     coord,
		pool:      pool,
		onDone:    onDone,
		heap:      heap,
		responses: make(map[notify.WorkID]*response),
		sources:   make(map[string][]string),
	}
	coord.Register(id, w.completed)
	return w
}

// ID returns the workspace id.
func (w *Workspace) ID() notify.WorkspaceID { return w.id }

// Bytes implements memview.Region over the workspace heap.
func (w *Workspace) Bytes() []byte {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.heap.Bytes()
}

// Submit schedules job and returns its work id.
func (w *Workspace) Submit(job Job) (notify.WorkID, error) {
	w.mu.Lock()
	w.next++
	id := w.next
	w.responses[id] = &response{}
	w.mu.Unlock()

	err := w.pool.Submit(w.id, id, func(ctx context.Context) {
		out, err := job(ctx)
		w.store(id, out, err)
	})
	if err != nil {
		w.mu.Lock()
		delete(w.responses, id)
		w.mu.Unlock()
		return 0, fmt.Errorf("script: submit work %d: %w", id, err)
	}
	return id, nil
}

func (w *Workspace) store(id notify.WorkID, out []byte, jobErr error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	r, ok := w.responses[id]
	if !ok {
		return
	}
	r.done = true
	if jobErr != nil {
		r.err = jobErr
		return
	}
	ptr, err := w.heap.AllocBytes(out)
	if err != nil {
		r.err = err
		return
	}
	r.ptr, r.size = ptr, uint32(len(out))
}

func (w *Workspace) completed(id notify.WorkID) {
	if w.onDone != nil {
		w.onDone(id)
	}
}

// ResponseHeader returns the native response header of work item id.
// Pending, failed and unknown items report Available == 0.
func (w *Workspace) ResponseHeader(id notify.WorkID) decode.ScriptResponseHeader {
	w.mu.Lock()
	defer w.mu.Unlock()
	r, ok := w.responses[id]
	if !ok || !r.done || r.err != nil {
		return decode.ScriptResponseHeader{}
	}
	return decode.ScriptResponseHeader{Available: 1, Data: r.ptr, Size: r.size}
}

// Response decodes the response of work item id.
func (w *Workspace) Response(id notify.WorkID) (decode.ScriptResponse, error) {
	return decode.ReadScriptResponse(w, w.ResponseHeader(id))
}

// Err returns the error of a failed work item.
func (w *Workspace) Err(id notify.WorkID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if r, ok := w.responses[id]; ok {
		return r.err
	}
	return fmt.Errorf("script: work %d: %w", id, texbridge.ErrNotFound)
}

// Release frees the response of work item id.
func (w *Workspace) Release(id notify.WorkID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	r, ok := w.responses[id]
	if !ok {
		return fmt.Errorf("script: release work %d: %w", id, texbridge.ErrNotFound)
	}
	delete(w.responses, id)
	if r.ptr != 0 {
		return w.heap.Free(r.ptr)
	}
	return nil
}

// Close unregisters the workspace. Completions arriving later are dropped
// by the coordinator.
func (w *Workspace) Close() {
	w.coord.Unregister(w.id)
}
