package models

import "time"

// OrderStatus represents all possible states of a food delivery order
type OrderStatus string

const (
	StatusPlaced         OrderStatus = "PLACED"
	StatusConfirmed      OrderStatus = "CONFIRMED"
	StatusPreparing      OrderStatus = "PREPARING"
	StatusReady          OrderStatus = "READY"
	StatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	StatusDelivered      OrderStatus = "DELIVERED"
	StatusPickedUp       OrderStatus = "PICKED_UP"
	StatusCancelled      OrderStatus = "CANCELLED"
)

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []OrderStatus{
	StatusPlaced,
	StatusConfirmed,
	StatusPreparing,
	StatusReady,
	StatusOutForDelivery,
	StatusDelivered,
	StatusPickedUp,
	StatusCancelled,
}

// IsValid reports whether s is one of the known statuses.
func (s OrderStatus) IsValid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further agent association is expected after s.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusPickedUp || s == StatusCancelled
}

// OrderType distinguishes orders brought to the customer from orders collected in store.
type OrderType string

const (
	OrderTypeDelivery OrderType = "DELIVERY"
	OrderTypeTakeaway OrderType = "TAKEAWAY"
)

func (t OrderType) IsValid() bool {
	return t == OrderTypeDelivery || t == OrderTypeTakeaway
}

type Order struct {
	ID                 string      `json:"id" gorm:"primaryKey"`
	CustomerID         string      `json:"customer_id" gorm:"not null;index"`
	Items              []OrderItem `json:"items" gorm:"serializer:json;not null"`
	OrderType          OrderType   `json:"order_type" gorm:"not null"`
	DeliveryAddress    *string     `json:"delivery_address"`
	Status             OrderStatus `json:"status" gorm:"not null;default:'PLACED';index"`
	EstimatedReadyTime time.Time   `json:"estimated_ready_time"`
	DeliveryAgentID    *string     `json:"delivery_agent_id" gorm:"index"`
	TotalAmount        float64     `json:"total_amount"`
	CreatedAt          time.Time   `json:"created_at" gorm:"autoCreateTime:false"`
	UpdatedAt          time.Time   `json:"updated_at" gorm:"autoUpdateTime:false"`
}

// OrderItem is a cart line priced at the moment the order was placed.
type OrderItem struct {
	ItemID    string  `json:"item_id"`
	Name      string  `json:"name"`       // snapshot name
	UnitPrice float64 `json:"unit_price"` // snapshot price at time of order
	Quantity  int     `json:"quantity"`
}

// HasAgent reports whether an agent id has ever been stamped on the order.
func (o *Order) HasAgent() bool {
	return o.DeliveryAgentID != nil && *o.DeliveryAgentID != ""
}

// OrderStatusHistory tracks every status change
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    string      `json:"order_id" gorm:"not null;index"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status" gorm:"not null"`
	ChangedBy  string      `json:"changed_by"` // user ID who triggered the transition
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"created_at" gorm:"autoCreateTime:false"`
}
