package notify

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Pool is a fixed set of pre-spawned workers bound to one Coordinator.
type Pool struct {
	c       *Coordinator
	workers []*Worker
	next    atomic.Uint64
	g       *errgroup.Group
	cancel  context.CancelFunc
}

// NewPool spawns the pool's workers. Workers exit when ctx is done or the
// pool is closed.
func NewPool(ctx context.Context, c *Coordinator, opts ...Option) *Pool {
	o := buildOptions(opts)
	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)

	p := &Pool{c: c, g: g, cancel: cancel}
	for range o.workers {
		w := c.newWorker()
		p.workers = append(p.workers, w)
		g.Go(func() error { return w.run(gctx) })
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Submit queues task on the next worker in round-robin order, trying the
// others if its queue is full.
func (p *Pool) Submit(ws WorkspaceID, id WorkID, task Task) error {
	start := p.next.Add(1) - 1
	var err error
	for i := range uint64(len(p.workers)) {
		w := p.workers[(start+i)%uint64(len(p.workers))]
		if err = w.Submit(ws, id, task); !errors.Is(err, ErrQueueFull) {
			return err
		}
	}
	return err
}

// Close stops every worker after its queued tasks and waits for them.
// It must be called from the coordinating goroutine: completions posted
// while it waits are delivered by Close itself, so workers blocked on a
// full inbox can finish.
func (p *Pool) Close() error {
	defer p.cancel()
	for _, w := range p.workers {
		w.closeQueue()
	}
	waited := make(chan error, 1)
	go func() { waited <- p.g.Wait() }()
	for {
		select {
		case m := <-p.c.inbox:
			p.c.deliver(m)
		case err := <-waited:
			p.c.Drain()
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
	}
}
