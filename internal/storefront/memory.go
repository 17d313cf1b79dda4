package storefront

import (
	"context"
	"sync"
	"time"

	"ecoshop/internal/models"
	"ecoshop/internal/repo"
)

// MemorySessions is a SessionStore for running the bot without Postgres.
type MemorySessions struct {
	mu       sync.Mutex
	sessions map[int64]models.Session
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{sessions: make(map[int64]models.Session)}
}

func (m *MemorySessions) SaveSession(_ context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.CreatedAt = time.Now()
	m.sessions[s.ChatID] = *s
	return nil
}

func (m *MemorySessions) Session(_ context.Context, chatID int64) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[chatID]
	if !ok {
		return nil, repo.ErrSessionNotFound
	}
	return &s, nil
}

func (m *MemorySessions) DeleteSession(_ context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, chatID)
	return nil
}

// MemoryCarts is a CartStore for running the bot without Postgres.
type MemoryCarts struct {
	mu     sync.Mutex
	nextID int
	carts  map[int64]*models.OrderWithItems
	done   map[int64][]models.Order
}

func NewMemoryCarts() *MemoryCarts {
	return &MemoryCarts{
		carts: make(map[int64]*models.OrderWithItems),
		done:  make(map[int64][]models.Order),
	}
}

func (m *MemoryCarts) OpenCart(_ context.Context, chatID int64) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[chatID]
	if !ok {
		m.nextID++
		c = &models.OrderWithItems{Order: models.Order{
			ID: m.nextID, ChatID: chatID, Status: models.OrderStatusNew, CreatedAt: time.Now(),
		}}
		m.carts[chatID] = c
	}
	order := c.Order
	return &order, nil
}

func (m *MemoryCarts) AddItemToCart(_ context.Context, item models.OrderItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.carts {
		if c.Order.ID != item.OrderID {
			continue
		}
		merged := false
		for i := range c.Items {
			it := &c.Items[i]
			if it.ProductID == item.ProductID && it.Size == item.Size && it.Color == item.Color {
				it.Quantity += item.Quantity
				merged = true
				break
			}
		}
		if !merged {
			item.ID = len(c.Items) + 1
			c.Items = append(c.Items, item)
		}
		c.Order.Amount = c.Total()
		return nil
	}
	return repo.ErrNoOpenCart
}

func (m *MemoryCarts) DetailCart(_ context.Context, chatID int64) (*models.OrderWithItems, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[chatID]
	if !ok {
		return nil, nil
	}
	out := models.OrderWithItems{Order: c.Order, Items: append([]models.OrderItem(nil), c.Items...)}
	return &out, nil
}

func (m *MemoryCarts) ConfirmOrder(_ context.Context, chatID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[chatID]
	if !ok || len(c.Items) == 0 {
		return 0, repo.ErrNoOpenCart
	}
	delete(m.carts, chatID)
	order := c.Order
	order.Status = models.OrderStatusConfirmed
	m.done[chatID] = append(m.done[chatID], order)
	return order.ID, nil
}

func (m *MemoryCarts) UserOrders(_ context.Context, chatID int64) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Order
	if c, ok := m.carts[chatID]; ok {
		out = append(out, c.Order)
	}
	for i := len(m.done[chatID]) - 1; i >= 0; i-- {
		out = append(out, m.done[chatID][i])
	}
	return out, nil
}
