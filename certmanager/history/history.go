// Package history asynchronous writer of certificate history events
package history

import (
	"context"
	"time"

	"github.com/whitekid/goxp/log"
	"github.com/whitekid/goxp/retry"

	"certhub/certmanager/types"
	"certhub/pkg/metrics"
	"certhub/pkg/worker"
)

// Writer persists events
type Writer interface {
	CreateEvents(ctx context.Context, events ...*types.Event) error
}

// Sink fire and forget event recorder
type Sink interface {
	Record(events ...*types.Event)
}

// New create sink which writes events on worker pool.
// if pool is nil, events are written synchronously
func New(writer Writer, pool worker.Interface) Sink {
	return &sinkImpl{
		writer: writer,
		pool:   pool,
	}
}

type sinkImpl struct {
	writer Writer
	pool   worker.Interface
}

const (
	submitRetryInterval = 50 * time.Millisecond
	submitRetryLimit    = 5
)

// Record hands events to writer. events are dropped if queue remains full
func (s *sinkImpl) Record(events ...*types.Event) {
	if len(events) == 0 {
		return
	}

	if s.pool == nil {
		s.write(context.Background(), events)
		return
	}

	task := func(ctx context.Context) error {
		s.write(ctx, events)
		return nil
	}

	if err := s.pool.Submit("history", task); err == nil {
		return
	}

	go func() {
		if err := retry.New().Backoff(submitRetryInterval, 1.0).Limit(submitRetryLimit).
			Do(context.Background(), func() error { return s.pool.Submit("history", task) }); err != nil {
			log.Errorf("drop %d history events: %v", len(events), err)
			metrics.HistoryEvents.WithLabelValues("dropped").Add(float64(len(events)))
		}
	}()
}

func (s *sinkImpl) write(ctx context.Context, events []*types.Event) {
	if err := s.writer.CreateEvents(ctx, events...); err != nil {
		log.Errorf("fail to write %d history events: %+v", len(events), err)
		metrics.HistoryEvents.WithLabelValues("failed").Add(float64(len(events)))
		return
	}

	metrics.HistoryEvents.WithLabelValues("written").Add(float64(len(events)))
}
