package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/listshare/todo-share/internal/core/domain"
	"github.com/listshare/todo-share/internal/core/ports"
	"github.com/listshare/todo-share/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	defaultBuffer  = 256
	defaultTimeout = 30 * time.Second
)

// Options tunes a Dispatcher. Zero values fall back to defaults.
type Options struct {
	Workers    int
	BufferSize int
	Timeout    time.Duration
}

// Dispatcher hands notifications to a fixed set of workers, sharded by
// recipient address so mail to one person goes out in order.
type Dispatcher struct {
	workers []chan domain.Notification
	service ports.NotificationService
	timeout time.Duration
	log     zerolog.Logger

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

var _ ports.NotificationQueue = (*Dispatcher)(nil)

func NewDispatcher(service ports.NotificationService, opts Options, log zerolog.Logger) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = defaultBuffer
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	d := &Dispatcher{
		workers: make([]chan domain.Notification, opts.Workers),
		service: service,
		timeout: opts.Timeout,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.Notification, opts.BufferSize)
	}
	return d
}

// Start launches the worker goroutines. Cancelling ctx makes workers exit
// without draining; Stop drains.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue never blocks. It returns false when the dispatcher is stopped or
// the target worker's buffer is full; the notification is then dropped.
func (d *Dispatcher) Enqueue(n domain.Notification) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		d.drop(n, "dispatcher stopped")
		return false
	}

	idx := d.shardIndex(n.ToEmail)
	select {
	case d.workers[idx] <- n:
		metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return true
	default:
		d.drop(n, "queue full")
		return false
	}
}

// Stop refuses new work, lets workers finish what is buffered and waits for them.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) drop(n domain.Notification, reason string) {
	metrics.NotificationsTotal.WithLabelValues("dropped").Inc()
	d.log.Warn().
		Str("list_id", n.ListID).
		Str("reason", reason).
		Msg("notification dropped")
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.Notification) {
	defer d.wg.Done()
	label := strconv.Itoa(id)

	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			metrics.NotificationQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.deliver(ctx, id, n)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, id int, n domain.Notification) {
	// Deliveries outlive the request that enqueued them, so only the
	// per-delivery timeout bounds them.
	deliverCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()

	start := time.Now()
	err := d.service.Deliver(deliverCtx, n)
	result := "ok"
	if err != nil {
		result = "error"
		d.log.Error().Err(err).
			Str("list_id", n.ListID).
			Int("worker_id", id).
			Msg("notification delivery failed")
	}
	metrics.NotificationDeliveryDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
}
