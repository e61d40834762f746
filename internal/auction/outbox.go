package auction

import (
	"context"
	"sync"

	"github.com/jensholdgaard/player-auction/internal/event"
)

type batch struct {
	ctx    context.Context
	events []event.Event
}

// outbox queues event batches in session order and publishes them outside
// the Manager's lock. One caller drains at a time; batches queued while a
// drain is running are picked up by that drain.
type outbox struct {
	mu       sync.Mutex
	queue    []batch
	draining bool
}

func (o *outbox) push(ctx context.Context, events []event.Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.queue = append(o.queue, batch{ctx: context.WithoutCancel(ctx), events: events})
}

func (o *outbox) drain(sink event.Sink) {
	o.mu.Lock()
	if o.draining {
		o.mu.Unlock()
		return
	}
	o.draining = true

	for len(o.queue) > 0 {
		b := o.queue[0]
		o.queue = o.queue[1:]
		o.mu.Unlock()
		sink.Publish(b.ctx, b.events...)
		o.mu.Lock()
	}
	// The empty check and clearing draining happen under the same lock.
	o.draining = false
	o.mu.Unlock()
}
