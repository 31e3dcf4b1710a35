// README: Order status engine: transition validation, rider assignment, side effects.
package order

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"breeze/internal/types"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrRiderRequired     = errors.New("rider must be assigned when changing status to Shipped")
	ErrInvalidRider      = errors.New("invalid rider")
	ErrEmptyOrder        = errors.New("no order items")
	ErrUnauthenticated   = errors.New("no authenticated account")
	ErrBadRequest        = errors.New("bad request")
)

// RiderDirectory answers whether an account id belongs to a rider. Satisfied by
// the account service.
type RiderDirectory interface {
	IsRider(ctx context.Context, id types.ID) (bool, error)
}

type Service struct {
	store  Store
	riders RiderDirectory
	now    func() time.Time
}

func NewService(store Store, riders RiderDirectory) *Service {
	return &Service{store: store, riders: riders, now: time.Now}
}

type CreateCommand struct {
	UserID          types.ID
	Items           []LineItem
	ShippingAddress types.Address
	PaymentMethod   string
	TotalPrice      types.Money
	PaymentResult   *PaymentResult
}

type TransitionCommand struct {
	OrderID   types.ID
	To        Status
	ActorID   types.ID
	ActorType string
	RiderID   *types.ID
}

// Create snapshots the given line items into a new order. Totals are taken as
// submitted; there is no catalog re-validation here. An order created with a
// successful payment result starts directly in Paid, the only path that skips
// Pending.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Order, error) {
	if cmd.UserID == "" {
		return nil, ErrUnauthenticated
	}
	// An explicitly empty item list is rejected; an absent one is not.
	if cmd.Items != nil && len(cmd.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	if !cmd.ShippingAddress.Complete() {
		return nil, ErrBadRequest
	}

	now := s.now()
	o := &Order{
		ID:              newID(),
		UserID:          cmd.UserID,
		Items:           cmd.Items,
		ShippingAddress: cmd.ShippingAddress,
		PaymentMethod:   cmd.PaymentMethod,
		TotalPrice:      cmd.TotalPrice,
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if o.TotalPrice.Currency == "" {
		o.TotalPrice.Currency = types.DefaultCurrency
	}
	if cmd.PaymentResult != nil && cmd.PaymentResult.Status == "Paid" {
		o.PaymentResult = cmd.PaymentResult
		o.Status = StatusPaid
		o.IsPaid = true
		paidAt := now
		o.PaidAt = &paidAt
	}

	if err := s.store.Create(ctx, o); err != nil {
		return nil, err
	}
	_ = s.store.AppendEvent(ctx, &Event{
		OrderID:    o.ID,
		FromStatus: "",
		ToStatus:   o.Status,
		ActorType:  "customer",
		ActorID:    &cmd.UserID,
		CreatedAt:  now,
	})
	return o, nil
}

// ApplyTransition validates and applies a status change. Legality is a pure
// function of (current, requested); rider checks only apply when moving to
// Shipped or when a rider id is supplied.
func (s *Service) ApplyTransition(ctx context.Context, cmd TransitionCommand) (*Order, error) {
	o, err := s.store.Get(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	if !CanTransition(o.Status, cmd.To) {
		return nil, ErrInvalidTransition
	}
	if cmd.To == StatusShipped && o.RiderID == nil && cmd.RiderID == nil {
		return nil, ErrRiderRequired
	}
	if cmd.RiderID != nil {
		ok, err := s.riders.IsRider(ctx, *cmd.RiderID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrInvalidRider
		}
	}

	from := o.Status
	now := s.now()
	o.Status = cmd.To

	// Paid and Delivered side effects fire once, the first time the status is
	// reached, and are never reset.
	if cmd.To == StatusPaid && !o.IsPaid {
		o.IsPaid = true
		paidAt := now
		o.PaidAt = &paidAt
	}
	if cmd.To == StatusDelivered && !o.IsDelivered {
		o.IsDelivered = true
		deliveredAt := now
		o.DeliveredAt = &deliveredAt
	}

	// Rider assignment is sticky: later transitions, including Undelivered,
	// never clear it.
	if cmd.RiderID != nil {
		o.RiderID = cmd.RiderID
	}

	if err := s.store.UpdateStatus(ctx, o); err != nil {
		return nil, err
	}
	_ = s.store.AppendEvent(ctx, &Event{
		OrderID:    o.ID,
		FromStatus: from,
		ToStatus:   cmd.To,
		ActorType:  cmd.ActorType,
		ActorID:    &cmd.ActorID,
		CreatedAt:  now,
	})

	// Re-read so the response carries the joined rider identity.
	return s.store.Get(ctx, o.ID)
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Order, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) ListAll(ctx context.Context) ([]Order, error) {
	return s.store.ListAll(ctx)
}

func (s *Service) ListMine(ctx context.Context, userID types.ID) ([]Order, error) {
	return s.store.ListByUser(ctx, userID)
}

func (s *Service) ListByRider(ctx context.Context, riderID types.ID) ([]Order, error) {
	return s.store.ListByRider(ctx, riderID)
}

func newID() types.ID {
	var b [12]byte
	_, _ = rand.Read(b[:])
	return types.ID(hex.EncodeToString(b[:]))
}
