package model

import (
	"time"
)

// OrderStatus статус заказа
type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "New"
	OrderStatusPaid      OrderStatus = "Paid"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusDelivered OrderStatus = "Delivered"
)

// OrderStatuses все статусы в порядке жизненного цикла
var OrderStatuses = []OrderStatus{
	OrderStatusNew,
	OrderStatusPaid,
	OrderStatusShipped,
	OrderStatusDelivered,
}

// Valid проверяет что статус входит в перечисление
func (s OrderStatus) Valid() bool {
	for _, st := range OrderStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// DeliveryType способ получения
type DeliveryType string

const (
	DeliveryCourier DeliveryType = "courier"
	DeliveryPoint   DeliveryType = "point"
)

// DeliveryOption вариант доставки из расчета тарифа
type DeliveryOption struct {
	ID      string       `json:"id" validate:"required"`
	Name    string       `json:"name" validate:"required"`
	Price   int          `json:"price" validate:"min=0"`
	DaysMin int          `json:"daysMin" validate:"min=0"`
	DaysMax int          `json:"daysMax" validate:"gtefield=DaysMin"`
	Type    DeliveryType `json:"type" validate:"oneof=courier point"`
}

// UserDetails контактные данные и адрес покупателя
type UserDetails struct {
	FullName string `json:"fullName" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Country  string `json:"country" validate:"required"`
	City     string `json:"city" validate:"required"`
	Address  string `json:"address" validate:"required"`
}

// OrderDelivery выбранная доставка и ее стоимость на момент заказа
type OrderDelivery struct {
	Method DeliveryOption `json:"method"`
	Cost   int            `json:"cost"`
}

// Order оформленный заказ. Позиции хранятся копией корзины,
// итог считается один раз при создании.
type Order struct {
	ID          string        `json:"id"`
	Date        time.Time     `json:"date"`
	Status      OrderStatus   `json:"status"`
	Items       []CartItem    `json:"items"`
	UserDetails UserDetails   `json:"userDetails"`
	Delivery    OrderDelivery `json:"delivery"`
	TotalAmount int           `json:"totalAmount"`
}

// Clone возвращает независимую копию заказа
func (o Order) Clone() Order {
	out := o
	out.Items = CloneItems(o.Items)
	return out
}

// OrderNotification уведомление оператору о новом заказе
type OrderNotification struct {
	OrderID            string `json:"orderId"`
	CustomerName       string `json:"customerName"`
	Phone              string `json:"phone"`
	City               string `json:"city"`
	Address            string `json:"address"`
	TotalAmount        int    `json:"totalAmount"`
	DeliveryMethodName string `json:"deliveryMethodName"`
}

// NewOrderNotification собирает уведомление из заказа
func NewOrderNotification(o Order) OrderNotification {
	return OrderNotification{
		OrderID:            o.ID,
		CustomerName:       o.UserDetails.FullName,
		Phone:              o.UserDetails.Phone,
		City:               o.UserDetails.City,
		Address:            o.UserDetails.Address,
		TotalAmount:        o.TotalAmount,
		DeliveryMethodName: o.Delivery.Method.Name,
	}
}

// AdminStats сводка для админки
type AdminStats struct {
	TotalOrders   int                 `json:"totalOrders"`
	TotalRevenue  int                 `json:"totalRevenue"`
	PendingOrders int                 `json:"pendingOrders"`
	Products      int                 `json:"products"`
	ByStatus      map[OrderStatus]int `json:"byStatus"`
}
