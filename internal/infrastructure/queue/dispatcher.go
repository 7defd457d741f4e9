// Package queue delivers failure reports to the audit sink off the request
// path.
package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/admin-console/internal/core/domain"
	"github.com/99minutos/admin-console/internal/core/ports"
	"github.com/99minutos/admin-console/internal/pkg/metrics"
)

const (
	defaultWorkers = 2
	channelBuffer  = 256
	recordTimeout  = 5 * time.Second
)

// Dispatcher routes failure reports to a fixed set of workers, hashing on the
// report target so reports about one user are recorded in order.
type Dispatcher struct {
	workers []chan domain.FailureReport
	sink    ports.FailureSink
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sink ports.FailureSink, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.FailureReport, numWorkers),
		sink:    sink,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.FailureReport, channelBuffer)
	}
	return d
}

// Start launches the workers. They drain their queues and exit once ctx is
// cancelled; Wait blocks until they have.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue never blocks: a report for a full shard is dropped and counted.
func (d *Dispatcher) Enqueue(report domain.FailureReport) bool {
	idx := d.shardIndex(report.Target)
	select {
	case d.workers[idx] <- report:
		metrics.ReportQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return true
	default:
		metrics.ReportsDroppedTotal.Inc()
		d.log.Warn().
			Str("op", report.Op).
			Str("target", report.Target).
			Int("worker_id", idx).
			Msg("failure report dropped, audit queue full")
		return false
	}
}

func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch chan domain.FailureReport) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			d.drain(id, ch)
			return
		case report := <-ch:
			metrics.ReportQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.record(ctx, id, report)
		}
	}
}

// drain records whatever is still queued at shutdown, detached from the
// cancelled context.
func (d *Dispatcher) drain(id int, ch chan domain.FailureReport) {
	for {
		select {
		case report := <-ch:
			d.record(context.Background(), id, report)
		default:
			metrics.ReportQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(0)
			return
		}
	}
}

func (d *Dispatcher) record(ctx context.Context, id int, report domain.FailureReport) {
	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if err := d.sink.Record(recCtx, report); err != nil {
		d.log.Error().Err(err).
			Str("op", report.Op).
			Str("target", report.Target).
			Int("worker_id", id).
			Msg("failure report not recorded")
	}
}
