package repo

import (
	"context"
	"database/sql"
	"errors"

	"ecoshop/internal/models"

	"github.com/rs/zerolog/log"
)

var ErrNoOpenCart = errors.New("no open cart")

// OrderRepo stores carts: an order in status 'new' is the chat's cart.
type OrderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

func (r *OrderRepo) OrderItems(ctx context.Context, orderID int) ([]models.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, size, color, quantity, price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		log.Printf("Ошибка скана: %v", err)
		return nil, err
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.Size,
			&item.Color, &item.Quantity, &item.Price,
		)
		if err != nil {
			log.Printf("Ошибка скана: %v", err)
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// OpenCart returns the chat's cart, creating it when none is open.
func (r *OrderRepo) OpenCart(ctx context.Context, chatID int64) (*models.Order, error) {
	var order models.Order
	err := r.db.QueryRowContext(ctx, `
        SELECT id, chat_id, amount, status, created_at
        FROM orders
        WHERE chat_id = $1 AND status = 'new'
        ORDER BY id DESC
        LIMIT 1`, chatID).Scan(
		&order.ID, &order.ChatID, &order.Amount, &order.Status, &order.CreatedAt,
	)
	if err == nil {
		return &order, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx, `
        INSERT INTO orders (chat_id, status)
        VALUES ($1, 'new')
        RETURNING id, chat_id, amount, status, created_at`, chatID).Scan(
		&order.ID, &order.ChatID, &order.Amount, &order.Status, &order.CreatedAt,
	)
	if err != nil {
		log.Printf("Ошибка создания корзины: %v", err)
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepo) UserOrders(ctx context.Context, chatID int64) ([]models.Order, error) {
	query := `
        SELECT id, chat_id, amount, status, created_at
        FROM orders
        WHERE chat_id = $1
        ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var order models.Order
		err := rows.Scan(
			&order.ID, &order.ChatID, &order.Amount,
			&order.Status, &order.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (r *OrderRepo) ConfirmOrder(ctx context.Context, chatID int64) (int, error) {
	var orderID int
	err := r.db.QueryRowContext(ctx, `
        UPDATE orders
        SET status = 'confirmed'
        WHERE id = (
            SELECT id FROM orders
            WHERE chat_id = $1 AND status = 'new'
            ORDER BY created_at DESC
            LIMIT 1)
          AND EXISTS (SELECT 1 FROM order_items WHERE order_id = orders.id)
        RETURNING id`, chatID).Scan(&orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNoOpenCart
		}
		return 0, err
	}
	return orderID, nil
}

// DetailCart returns nil, nil when the chat has no open cart.
func (r *OrderRepo) DetailCart(ctx context.Context, chatID int64) (*models.OrderWithItems, error) {
	query := `
        SELECT id, chat_id, amount, status, created_at
        FROM orders
        WHERE chat_id = $1 AND status = 'new'
        ORDER BY id DESC
        LIMIT 1`

	var order models.Order
	err := r.db.QueryRowContext(ctx, query, chatID).Scan(
		&order.ID, &order.ChatID, &order.Amount, &order.Status, &order.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		log.Printf("Ошибка корзины: %v", err)
		return nil, err
	}

	items, err := r.OrderItems(ctx, order.ID)
	if err != nil {
		log.Printf("Ошибка получения товаров корзины: %v", err)
		return nil, err
	}

	return &models.OrderWithItems{Order: order, Items: items}, nil
}

// AddItemToCart adds the item; the same product, size and color again
// increases the quantity. The order amount is recalculated.
func (r *OrderRepo) AddItemToCart(ctx context.Context, item models.OrderItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
        INSERT INTO order_items (order_id, product_id, size, color, quantity, price)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (order_id, product_id, size, color)
        DO UPDATE SET quantity = order_items.quantity + $5`,
		item.OrderID, item.ProductID, item.Size, item.Color, item.Quantity, item.Price)
	if err != nil {
		log.Printf("Ошибка добавления в корзину: %v", err)
		return err
	}
	_, err = tx.ExecContext(ctx, `
        UPDATE orders
        SET amount = (SELECT COALESCE(SUM(quantity * price), 0) FROM order_items WHERE order_id = $1)
        WHERE id = $1`, item.OrderID)
	if err != nil {
		return err
	}
	return tx.Commit()
}
