// infrastructure/analysis_dispatcher.go
package infrastructure

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/vitovidale/video-upload-gateway/domain"
)

// AnalysisDispatcher hands notifications to a fixed set of workers. Callers
// never wait on delivery and never see its errors.
type AnalysisDispatcher struct {
	notifier domain.AnalysisNotifier
	timeout  time.Duration
	logger   hclog.Logger
	metrics  *Metrics

	mu     sync.RWMutex
	closed bool
	queue  chan domain.VideoAnalysisMessage
	wg     sync.WaitGroup
}

var _ domain.AnalysisTrigger = (*AnalysisDispatcher)(nil)

func NewAnalysisDispatcher(notifier domain.AnalysisNotifier, workers, queueSize int, timeout time.Duration, logger hclog.Logger, metrics *Metrics) *AnalysisDispatcher {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	d := &AnalysisDispatcher{
		notifier: notifier,
		timeout:  timeout,
		logger:   logger,
		metrics:  metrics,
		queue:    make(chan domain.VideoAnalysisMessage, queueSize),
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.run()
	}
	return d
}

// Dispatch enqueues msg. When the queue is full or the dispatcher is closed
// the notification is dropped and logged.
func (d *AnalysisDispatcher) Dispatch(msg domain.VideoAnalysisMessage) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.Warn("dispatcher closed, dropping analysis notification", "video_id", msg.VideoID)
		d.metrics.ObserveNotification(NotificationDropped)
		return
	}
	select {
	case d.queue <- msg:
	default:
		d.logger.Warn("analysis queue full, dropping notification", "video_id", msg.VideoID)
		d.metrics.ObserveNotification(NotificationDropped)
	}
}

// Close stops accepting work and waits for queued notifications to finish,
// or for ctx to end.
func (d *AnalysisDispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *AnalysisDispatcher) run() {
	defer d.wg.Done()
	for msg := range d.queue {
		d.deliver(msg)
	}
}

func (d *AnalysisDispatcher) deliver(msg domain.VideoAnalysisMessage) {
	log := d.logger.With("video_id", msg.VideoID)
	defer func() {
		if r := recover(); r != nil {
			log.Error("analysis notifier panicked", "panic", fmt.Sprint(r))
			d.metrics.ObserveNotification(NotificationFailed)
		}
	}()

	ctx := context.Background()
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	log.Info("triggering video analysis")
	if err := d.notifier.Notify(ctx, msg); err != nil {
		log.Error("failed to trigger video analysis", "error", err)
		d.metrics.ObserveNotification(NotificationFailed)
		return
	}
	log.Info("video analysis triggered")
	d.metrics.ObserveNotification(NotificationSent)
}
