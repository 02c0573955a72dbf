package events

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"ironroute-backend/internal/logger"
)

// Listener handles one event. Errors are logged, never propagated to the
// publisher -- a slow or failing subscriber must not block game state
// mutations.
type Listener func(ctx context.Context, event Event) error

// Bus defines the publish/subscribe surface the rest of the pipeline
// depends on.
type Bus interface {
	Subscribe(eventType string, listener Listener)
	Publish(ctx context.Context, event Event) error
	Close() error
}

type job struct {
	ctx      context.Context
	event    Event
	listener Listener
}

// InMemoryBus implements Bus with a bounded worker pool so that a burst
// of events from many concurrent games never spawns unbounded
// goroutines (spec.md §5: "across games, pipelines run in parallel").
type InMemoryBus struct {
	listeners map[string][]Listener
	mutex     sync.RWMutex
	jobQueue  chan job
	workers   int
	workerWg  sync.WaitGroup
	closeOnce sync.Once
	closed    chan struct{}
	sem       chan struct{}
}

// NewInMemoryBus creates a bus with the given worker count and queue
// depth. workerCount <= 0 defaults to 10, bufferSize <= 0 defaults to
// 1000.
func NewInMemoryBus(workerCount, bufferSize int) *InMemoryBus {
	if workerCount <= 0 {
		workerCount = 10
	}
	if bufferSize <= 0 {
		bufferSize = 1000
	}
	b := &InMemoryBus{
		listeners: make(map[string][]Listener),
		jobQueue:  make(chan job, bufferSize),
		workers:   workerCount,
		closed:    make(chan struct{}),
		sem:       make(chan struct{}, workerCount),
	}
	b.startWorkers()
	return b
}

func (b *InMemoryBus) startWorkers() {
	for i := 0; i < b.workers; i++ {
		b.workerWg.Add(1)
		go b.worker(i)
	}
}

func (b *InMemoryBus) worker(id int) {
	defer b.workerWg.Done()
	log := logger.WithContext(zap.Int("worker_id", id))

	for {
		select {
		case <-b.closed:
			return
		case j := <-b.jobQueue:
			b.sem <- struct{}{}
			func() {
				defer func() {
					<-b.sem
					if r := recover(); r != nil {
						log.Error("event listener panicked",
							zap.Any("panic", r),
							zap.String("event_type", j.event.GetType()))
					}
				}()

				ctx, cancel := context.WithTimeout(j.ctx, 30*time.Second)
				defer cancel()

				if err := j.listener(ctx, j.event); err != nil {
					log.Error("event listener failed",
						zap.String("event_type", j.event.GetType()),
						zap.String("game_id", j.event.GetGameID()),
						zap.Error(err))
				}
			}()
		}
	}
}

// Subscribe registers listener for eventType.
func (b *InMemoryBus) Subscribe(eventType string, listener Listener) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.listeners[eventType] = append(b.listeners[eventType], listener)
}

// Publish queues event for every listener subscribed to its type. It
// never blocks on listener execution.
func (b *InMemoryBus) Publish(ctx context.Context, event Event) error {
	select {
	case <-b.closed:
		return ErrEventBusClosed
	default:
	}

	b.mutex.RLock()
	listeners := append([]Listener(nil), b.listeners[event.GetType()]...)
	b.mutex.RUnlock()

	for _, l := range listeners {
		select {
		case b.jobQueue <- job{ctx: ctx, event: event, listener: l}:
		case <-b.closed:
			return ErrEventBusClosed
		}
	}
	return nil
}

// Close stops accepting new work and drains running workers.
func (b *InMemoryBus) Close() error {
	b.closeOnce.Do(func() {
		close(b.closed)
	})
	b.workerWg.Wait()
	return nil
}
