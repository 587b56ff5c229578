package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"topstore/internal/config"
	"topstore/internal/interfaces"
	"topstore/internal/logger"
	"topstore/internal/metrics"
	"topstore/internal/model"
)

// Dispatcher отправляет оповещения в фоне. Ошибки и паники канала
// логируются и считаются, вызывающему ничего не возвращается.
type Dispatcher struct {
	notifier interfaces.OrderNotifier
	channel  string
	timeout  time.Duration
	metrics  *metrics.Metrics
	log      *logrus.Entry

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(n interfaces.OrderNotifier, cfg config.NotifyConfig, m *metrics.Metrics, log *logger.Logger) *Dispatcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{
		notifier: n,
		channel:  channelName(n),
		timeout:  timeout,
		metrics:  m,
		log:      logger.OrDiscard(log).Component("notify"),
	}
}

// Dispatch запускает отправку и сразу возвращает управление.
// После Close оповещения отбрасываются.
func (d *Dispatcher) Dispatch(note model.OrderNotification) {
	if d == nil || d.notifier == nil {
		return
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.log.WithField("order_id", note.OrderID).Warn("Notification dropped, dispatcher closed")
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		d.send(note)
	}()
}

func (d *Dispatcher) send(note model.OrderNotification) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notifier panic: %v", r)
		}
		d.metrics.RecordNotification(d.channel, err)
		if err != nil {
			d.log.WithError(err).WithFields(logrus.Fields{
				"order_id": note.OrderID,
				"channel":  d.channel,
			}).Error("Order notification failed")
		}
	}()

	err = d.notifier.Notify(ctx, note)
}

// Close перестает принимать оповещения и ждет отправки начатых,
// но не дольше, чем позволяет ctx
func (d *Dispatcher) Close(ctx context.Context) error {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	d.closed = true
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
