package models

import "time"

type Order struct {
	ID        int       `json:"id"`
	ChatID    int64     `json:"chat_id"`
	Amount    float64   `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	OrderStatusNew       = "new"
	OrderStatusConfirmed = "confirmed"
)

type OrderItem struct {
	ID        int     `json:"id"`
	OrderID   int     `json:"order_id"`
	ProductID int     `json:"product_id"`
	Size      string  `json:"size"`
	Color     string  `json:"color"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

func (i OrderItem) Total() float64 {
	return i.Price * float64(i.Quantity)
}

type OrderWithItems struct { //корзина: заказ и его позиции
	Order Order       `json:"order"`
	Items []OrderItem `json:"items"`
}

func (o OrderWithItems) Total() float64 {
	var sum float64
	for _, it := range o.Items {
		sum += it.Total()
	}
	return sum
}
