// Package audit records access-control outcomes worth keeping: denied
// navigations, redirects, and forced logouts.
package audit

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/rs/zerolog"

	"github.com/brokerhub/admin-gateway/internal/api/metrics"
	"github.com/brokerhub/admin-gateway/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
	insertTimeout  = 5 * time.Second
)

// Dispatcher fans access events out to a fixed set of workers using
// consistent hashing on the event path, guaranteeing per-path ordering
// in the audit trail.
type Dispatcher struct {
	workers []chan ports.AccessEvent
	repo    ports.AuditRepository
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.AuditRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.AccessEvent, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.AccessEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is
// cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Record enqueues an event for its path's worker. When the worker's
// buffer is full the event is dropped rather than blocking a navigation
// decision; the drop is counted and logged.
func (d *Dispatcher) Record(event ports.AccessEvent) {
	idx := d.shardIndex(event.Path)
	select {
	case d.workers[idx] <- event:
		metrics.AuditQueueDepth.WithLabelValues(fmt.Sprint(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.AuditEventsTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().Str("path", event.Path).Msg("audit queue full, event dropped")
	}
}

// shardIndex maps a path deterministically to a worker index.
func (d *Dispatcher) shardIndex(path string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(path))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.AccessEvent) {
	label := fmt.Sprint(id)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			metrics.AuditQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.persist(ctx, event)
		}
	}
}

func (d *Dispatcher) persist(ctx context.Context, event ports.AccessEvent) {
	insertCtx, cancel := context.WithTimeout(ctx, insertTimeout)
	defer cancel()

	if err := d.repo.Insert(insertCtx, event); err != nil {
		metrics.AuditEventsTotal.WithLabelValues("error").Inc()
		d.log.Error().
			Err(err).
			Str("path", event.Path).
			Str("action", event.Action).
			Msg("failed to persist access event")
		return
	}
	metrics.AuditEventsTotal.WithLabelValues("ok").Inc()
}
