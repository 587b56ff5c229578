package cart

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"topstore/internal/logger"
	"topstore/internal/metrics"
	"topstore/internal/model"
	"topstore/internal/store"
)

// Manager корзина покупателя. Строка корзины уникальна по тройке
// (товар, размер, цвет), количество всегда не меньше 1.
type Manager struct {
	mu      sync.RWMutex
	items   []model.CartItem
	store   *store.Store
	metrics *metrics.Metrics
	log     *logrus.Entry
	newID   func() string
}

// New загружает корзину из хранилища
func New(ctx context.Context, s *store.Store, m *metrics.Metrics, log *logger.Logger) *Manager {
	items, _ := store.Load[model.CartItem](ctx, s, store.CollectionCart)

	return &Manager{
		items:   normalize(items),
		store:   s,
		metrics: m,
		log:     logger.OrDiscard(log).Component("cart"),
		newID:   uuid.NewString,
	}
}

// normalize отбрасывает строки, нарушающие инварианты корзины (после ручной
// правки файла), и склеивает дубли по тройке
func normalize(items []model.CartItem) []model.CartItem {
	out := make([]model.CartItem, 0, len(items))
	for _, item := range items {
		if item.Quantity < 1 || item.CartID == "" {
			continue
		}
		merged := false
		for i := range out {
			if out[i].Matches(item.ID, item.SelectedSize, item.SelectedColor) {
				out[i].Quantity += item.Quantity
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, item)
		}
	}
	return out
}

// Add кладет товар в корзину. Если такая тройка уже есть, увеличивает количество.
func (m *Manager) Add(ctx context.Context, p model.Product, size, color string) model.CartItem {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.items {
		if m.items[i].Matches(p.ID, size, color) {
			m.items[i].Quantity++
			m.persist(ctx, "add")
			return m.items[i].Clone()
		}
	}

	item := model.CartItem{
		Product:       p.Clone(),
		CartID:        m.newID(),
		SelectedSize:  size,
		SelectedColor: color,
		Quantity:      1,
	}
	m.items = append(m.items, item)
	m.persist(ctx, "add")

	m.log.WithFields(logrus.Fields{
		"product_id": p.ID,
		"size":       size,
		"color":      color,
	}).Debug("Item added to cart")

	return item.Clone()
}

// Remove удаляет строку. Отсутствующий cartID - не ошибка.
func (m *Manager) Remove(ctx context.Context, cartID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(cartID)
	if idx < 0 {
		return false
	}
	m.items = append(m.items[:idx:idx], m.items[idx+1:]...)
	m.persist(ctx, "remove")
	return true
}

// UpdateQuantity задает количество. qty < 1 и неизвестный cartID игнорируются.
func (m *Manager) UpdateQuantity(ctx context.Context, cartID string, qty int) bool {
	if qty < 1 {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(cartID)
	if idx < 0 {
		return false
	}
	m.items[idx].Quantity = qty
	m.persist(ctx, "update_quantity")
	return true
}

// Clear очищает корзину
func (m *Manager) Clear(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = []model.CartItem{}
	m.persist(ctx, "clear")
}

// RemoveLines вычитает из корзины оплаченные строки: количество каждой строки
// уменьшается на количество из снимка, строка с остатком < 1 удаляется.
// Строки, добавленные после снимка, остаются в корзине.
func (m *Manager) RemoveLines(ctx context.Context, paid []model.CartItem) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, line := range paid {
		idx := m.indexOf(line.CartID)
		if idx < 0 {
			continue
		}
		if m.items[idx].Quantity > line.Quantity {
			m.items[idx].Quantity -= line.Quantity
			continue
		}
		m.items = append(m.items[:idx:idx], m.items[idx+1:]...)
	}
	m.persist(ctx, "remove_paid")
}

// Items копия строк корзины
func (m *Manager) Items() []model.CartItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return model.CloneItems(m.items)
}

func (m *Manager) Subtotal() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return model.Subtotal(m.items)
}

func (m *Manager) TotalWeight() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return model.TotalWeight(m.items)
}

// Count количество единиц товара в корзине
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, item := range m.items {
		n += item.Quantity
	}
	return n
}

// Len количество строк
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func (m *Manager) indexOf(cartID string) int {
	for i := range m.items {
		if m.items[i].CartID == cartID {
			return i
		}
	}
	return -1
}

// persist вызывается под m.mu. Сохранение не зависит от отмены запроса.
func (m *Manager) persist(ctx context.Context, operation string) {
	store.Save(context.WithoutCancel(ctx), m.store, store.CollectionCart, m.items)
	m.metrics.RecordCartMutation(operation)
}
