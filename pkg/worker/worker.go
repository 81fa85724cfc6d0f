// Package worker bounded queue task executor
package worker

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/whitekid/goxp/fx"
	"github.com/whitekid/goxp/log"

	"certhub/pkg/metrics"
)

var (
	ErrQueueFull = errors.New("worker queue is full")
	ErrClosed    = errors.New("worker pool is closed")
)

// Task unit of work
type Task func(ctx context.Context) error

// Interface task executor
type Interface interface {
	// Submit enqueue task and returns immediately
	Submit(name string, task Task) error
	// Wait wait until all submitted tasks are done
	Wait()
	Close()
}

type job struct {
	name string
	task Task
}

// Pool fixed number of workers on bounded queue
type Pool struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool
	jobs   chan *job

	pending sync.WaitGroup // submitted but not finished
	workers sync.WaitGroup
}

var _ Interface = (*Pool)(nil)

// New start pool with workers. tasks run with ctx derived from the given context
func New(ctx context.Context, workers int, queueSize int) *Pool {
	ctx, cancel := context.WithCancel(ctx)

	p := &Pool{
		ctx:    ctx,
		cancel: cancel,
		jobs:   make(chan *job, queueSize),
	}

	for i := 0; i < fx.Ternary(workers < 1, 1, workers); i++ {
		p.workers.Add(1)
		go func() {
			defer p.workers.Done()
			for j := range p.jobs {
				p.run(j)
			}
		}()
	}

	return p
}

func (p *Pool) run(j *job) {
	defer p.pending.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("task %s panic: %v", j.name, r)
			metrics.WorkerTasks.WithLabelValues("panic").Inc()
		}
	}()

	log.Debugf("run task %s", j.name)
	if err := j.task(p.ctx); err != nil {
		log.Errorf("task %s failed: %+v", j.name, err)
		metrics.WorkerTasks.WithLabelValues("failed").Inc()
		return
	}

	metrics.WorkerTasks.WithLabelValues("success").Inc()
}

func (p *Pool) Submit(name string, task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrClosed
	}

	p.pending.Add(1)
	select {
	case p.jobs <- &job{name: name, task: task}:
		return nil
	default:
		p.pending.Done()
		metrics.WorkerTasks.WithLabelValues("rejected").Inc()
		return errors.Wrapf(ErrQueueFull, "task %s", name)
	}
}

func (p *Pool) Wait() { p.pending.Wait() }

// Close stop accepting tasks and wait for queued tasks
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	p.workers.Wait()
	p.cancel()
}
