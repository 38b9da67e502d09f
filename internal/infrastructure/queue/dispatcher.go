package queue

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/stackit/qa-api/internal/core/domain"
	"github.com/stackit/qa-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	recordTimeout  = 5 * time.Second
)

// Dispatcher fans activity events out to a fixed set of workers that persist
// them. Events are sharded by actor so each actor's trail is written in order.
type Dispatcher struct {
	workers []chan domain.ActivityEvent
	repo    ports.ActivityRepository
	log     zerolog.Logger

	dropped atomic.Uint64
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.ActivityRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.ActivityEvent, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.ActivityEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers drain what is already queued
// and stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Publish hands an event to its worker without blocking. When the worker's
// buffer is full the event is dropped.
func (d *Dispatcher) Publish(event domain.ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	select {
	case d.workers[d.shardIndex(event.ActorID)] <- event:
	default:
		d.dropped.Add(1)
		d.log.Warn().
			Str("kind", string(event.Kind)).
			Str("actor_id", event.ActorID).
			Msg("activity queue full, event dropped")
	}
}

// Depth returns the number of events waiting across all workers.
func (d *Dispatcher) Depth() int {
	n := 0
	for _, ch := range d.workers {
		n += len(ch)
	}
	return n
}

// Dropped returns how many events were discarded because a buffer was full.
func (d *Dispatcher) Dropped() uint64 {
	return d.dropped.Load()
}

// shardIndex maps an actor id deterministically to a worker index.
func (d *Dispatcher) shardIndex(actorID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(actorID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.ActivityEvent) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			d.drain(id, ch)
			return
		case event := <-ch:
			d.record(ctx, id, event)
		}
	}
}

// drain flushes queued events after shutdown using a fresh context.
func (d *Dispatcher) drain(id int, ch <-chan domain.ActivityEvent) {
	for {
		select {
		case event := <-ch:
			d.record(context.Background(), id, event)
		default:
			return
		}
	}
}

func (d *Dispatcher) record(ctx context.Context, id int, event domain.ActivityEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	ev := event
	if err := d.repo.Record(ctx, &ev); err != nil {
		d.log.Error().Err(err).
			Str("kind", string(event.Kind)).
			Str("actor_id", event.ActorID).
			Int("worker_id", id).
			Msg("activity record failed")
	}
}
