package ledger

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "topstore/internal/errors"
	"topstore/internal/logger"
	"topstore/internal/metrics"
	"topstore/internal/model"
	"topstore/internal/store"
)

// Ledger журнал заказов, новые заказы в начале списка
type Ledger struct {
	mu      sync.RWMutex
	orders  []model.Order
	store   *store.Store
	metrics *metrics.Metrics
	log     *logrus.Entry
}

// New загружает журнал из хранилища
func New(ctx context.Context, s *store.Store, m *metrics.Metrics, log *logger.Logger) *Ledger {
	orders, _ := store.Load[model.Order](ctx, s, store.CollectionOrders)
	m.SetOrdersInStore(len(orders))

	return &Ledger{
		orders:  orders,
		store:   s,
		metrics: m,
		log:     logger.OrDiscard(log).Component("ledger"),
	}
}

// Create добавляет заказ в начало журнала. Повторный id игнорируется.
func (l *Ledger) Create(ctx context.Context, order model.Order) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.indexOf(order.ID) >= 0 {
		l.log.WithField("order_id", order.ID).Warn("Duplicate order id ignored")
		return false
	}

	l.orders = append([]model.Order{order.Clone()}, l.orders...)
	l.persist(ctx)
	l.metrics.RecordOrder(order.TotalAmount, len(l.orders))

	l.log.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"total_amount": order.TotalAmount,
		"items":        len(order.Items),
	}).Info("Order recorded")
	return true
}

// UpdateStatus меняет статус заказа. Переходы не ограничены, допустим любой
// статус из перечисления. Отсутствующий id - (false, nil).
func (l *Ledger) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) (bool, error) {
	if !status.Valid() {
		return false, apperrors.ErrInvalidStatus.WithDetails(fmt.Sprintf("status %q", status))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.indexOf(orderID)
	if idx < 0 {
		return false, nil
	}
	from := l.orders[idx].Status
	l.orders[idx].Status = status
	l.persist(ctx)

	l.log.WithFields(logrus.Fields{
		"order_id": orderID,
		"from":     from,
		"to":       status,
	}).Info("Order status updated")
	return true, nil
}

// Get заказ по id
func (l *Ledger) Get(id string) (model.Order, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	idx := l.indexOf(id)
	if idx < 0 {
		return model.Order{}, false
	}
	return l.orders[idx].Clone(), true
}

// List копия журнала, новые заказы первыми
func (l *Ledger) List() []model.Order {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]model.Order, len(l.orders))
	for i, o := range l.orders {
		out[i] = o.Clone()
	}
	return out
}

func (l *Ledger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.orders)
}

// Stats сводка для админки. pending - заказы в статусах New и Paid.
func (l *Ledger) Stats(productCount int) model.AdminStats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	stats := model.AdminStats{
		TotalOrders: len(l.orders),
		Products:    productCount,
		ByStatus:    make(map[model.OrderStatus]int, len(model.OrderStatuses)),
	}
	for _, s := range model.OrderStatuses {
		stats.ByStatus[s] = 0
	}
	for _, o := range l.orders {
		stats.TotalRevenue += o.TotalAmount
		stats.ByStatus[o.Status]++
		if o.Status == model.OrderStatusNew || o.Status == model.OrderStatusPaid {
			stats.PendingOrders++
		}
	}
	return stats
}

// persist вызывается под l.mu
func (l *Ledger) persist(ctx context.Context) {
	store.Save(context.WithoutCancel(ctx), l.store, store.CollectionOrders, l.orders)
}

func (l *Ledger) indexOf(id string) int {
	for i := range l.orders {
		if l.orders[i].ID == id {
			return i
		}
	}
	return -1
}

// IDGenerator выдает id заказов вида ORD-<unix nano>, строго возрастающие
// в пределах процесса даже при одинаковом показании часов
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

// Seed учитывает уже выданные id, чтобы после перезапуска не было повторов
func (g *IDGenerator) Seed(orders []model.Order) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, o := range orders {
		n, err := strconv.ParseInt(strings.TrimPrefix(o.ID, "ORD-"), 10, 64)
		if err == nil && n > g.last {
			g.last = n
		}
	}
}

func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := g.now().UnixNano()
	if n <= g.last {
		n = g.last + 1
	}
	g.last = n
	return "ORD-" + strconv.FormatInt(n, 10)
}
