package models

import (
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusServed    OrderStatus = "served"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// validNextStatuses is the whole order lifecycle: served and cancelled are
// terminal and accept no further transitions.
var validNextStatuses = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing: {OrderStatusServed, OrderStatusCancelled},
	OrderStatusServed:    {},
	OrderStatusCancelled: {},
}

// CanTransitionTo reports whether an order in status s may move to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range validNextStatuses[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsValid reports whether s is one of the known order statuses.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPreparing, OrderStatusServed, OrderStatusCancelled:
		return true
	}
	return false
}

// Order only comes into existence from a successful payment webhook; checkout
// initiation never inserts a row. YocoChargeID is the webhook dedup key.
type Order struct {
	gorm.Model
	OrderNumber       string        `json:"order_number" gorm:"not null;index"`
	MenuID            uint          `json:"menu_id" gorm:"not null;index"`
	Menu              Menu          `json:"menu,omitempty" gorm:"foreignKey:MenuID"`
	YocoChargeID      string        `json:"yoco_charge_id" gorm:"uniqueIndex"`
	YocoCheckoutID    string        `json:"yoco_checkout_id" gorm:"index"`
	CustomerEmail     string        `json:"customer_email" gorm:"not null"`
	CustomerPhone     string        `json:"customer_phone" gorm:"not null"`
	TableNumber       *string       `json:"table_number"`
	Notes             *string       `json:"notes"`
	TotalPriceInCents int64         `json:"total_price_in_cents" gorm:"not null"`
	Status            OrderStatus   `json:"status" gorm:"not null;index"`
	PaymentStatus     PaymentStatus `json:"payment_status" gorm:"not null;index"`
	Items             []OrderItem   `json:"items" gorm:"foreignKey:OrderID"`
}

// OrderItem snapshots the dish name and unit price at order time so the line
// stays stable even if the dish is later edited or deleted.
type OrderItem struct {
	gorm.Model
	OrderID             uint   `json:"order_id" gorm:"not null;index"`
	DishID              uint   `json:"dish_id" gorm:"not null"`
	DishName            string `json:"dish_name" gorm:"not null"`
	Quantity            int64  `json:"quantity" gorm:"not null"`
	PriceInCentsAtOrder int64  `json:"price_in_cents_at_order" gorm:"not null"`
}
