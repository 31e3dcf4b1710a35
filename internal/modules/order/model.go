// README: Order aggregate, line-item snapshots, and status definitions.
package order

import (
	"time"

	"breeze/internal/types"
)

type Status string

const (
	StatusPending     Status = "Pending"
	StatusPaid        Status = "Paid"
	StatusShipped     Status = "Shipped"
	StatusDelivered   Status = "Delivered"
	StatusUndelivered Status = "Undelivered"
	StatusCancelled   Status = "Cancelled"
)

// LineItem is a snapshot of a catalog variant taken at order creation; it never
// changes afterwards, even if the product does.
type LineItem struct {
	ProductID types.ID    `json:"product"`
	Name      string      `json:"name"`
	Color     string      `json:"color"`
	Size      string      `json:"size"`
	UnitPrice types.Money `json:"unitPrice"`
	Quantity  int         `json:"quantity"`
	Image     string      `json:"image"`
}

// PaymentResult records the outcome reported by the payment provider.
type PaymentResult struct {
	TransactionID string    `json:"transactionId"`
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	PayerEmail    string    `json:"payerEmail"`
}

type Order struct {
	ID              types.ID       `json:"_id"`
	UserID          types.ID       `json:"user"`
	UserName        string         `json:"userName,omitempty"`
	UserEmail       string         `json:"userEmail,omitempty"`
	Items           []LineItem     `json:"orderItems"`
	ShippingAddress types.Address  `json:"shippingAddress"`
	PaymentMethod   string         `json:"paymentMethod"`
	PaymentResult   *PaymentResult `json:"paymentResult,omitempty"`
	TotalPrice      types.Money    `json:"totalPrice"`
	Status          Status         `json:"status"`
	IsPaid          bool           `json:"isPaid"`
	PaidAt          *time.Time     `json:"paidAt,omitempty"`
	IsDelivered     bool           `json:"isDelivered"`
	DeliveredAt     *time.Time     `json:"deliveredAt,omitempty"`
	RiderID         *types.ID      `json:"rider,omitempty"`
	RiderName       string         `json:"riderName,omitempty"`
	RiderEmail      string         `json:"riderEmail,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// Event is one row of the status audit log.
type Event struct {
	ID         int64
	OrderID    types.ID
	FromStatus Status
	ToStatus   Status
	ActorType  string
	ActorID    *types.ID
	CreatedAt  time.Time
}

// AllowedTransitions models the fulfilment pipeline: forward-only, with two
// recovery edges (Undelivered -> Shipped re-attempts delivery, Paid -> Cancelled
// allows cancellation before shipment). Delivered and Cancelled are terminal.
var AllowedTransitions = map[Status][]Status{
	StatusPending:     {StatusPaid},
	StatusPaid:        {StatusShipped, StatusDelivered, StatusCancelled},
	StatusShipped:     {StatusDelivered, StatusUndelivered},
	StatusUndelivered: {StatusShipped},
	StatusDelivered:   {},
	StatusCancelled:   {},
}

// CanTransition reports whether from -> to is a legal move. Requesting the
// current status again is never allowed.
func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}
