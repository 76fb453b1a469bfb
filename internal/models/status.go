package models

import (
	"errors"
	"fmt"
)

type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "PENDING"
	OrderStatusPaid     OrderStatus = "PAID"
	OrderStatusVerified OrderStatus = "VERIFIED"
)

type SlipStatus string

const (
	SlipStatusPending  SlipStatus = "PENDING"
	SlipStatusApproved SlipStatus = "APPROVED"
	SlipStatusRejected SlipStatus = "REJECTED"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// orderNext holds every legal order transition. A slip submission moves
// PENDING to PAID; verification moves PAID to VERIFIED on approval, or back
// to PENDING on rejection.
var orderNext = map[OrderStatus]map[OrderStatus]bool{
	OrderStatusPending:  {OrderStatusPaid: true},
	OrderStatusPaid:     {OrderStatusVerified: true, OrderStatusPending: true},
	OrderStatusVerified: {},
}

func (s OrderStatus) CanTransition(to OrderStatus) bool {
	return orderNext[s][to]
}

// Transition returns the target status, or a typed failure when the move is
// not in the table. Callers never write an order status any other way.
func (s OrderStatus) Transition(to OrderStatus) (OrderStatus, error) {
	if !s.CanTransition(to) {
		return s, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, to)
	}
	return to, nil
}

func (s SlipStatus) Decided() bool {
	return s == SlipStatusApproved || s == SlipStatusRejected
}

// OrderStatusForDecision maps a slip decision to the order status the
// verification transaction must apply alongside it.
func OrderStatusForDecision(decision SlipStatus) (OrderStatus, error) {
	switch decision {
	case SlipStatusApproved:
		return OrderStatusVerified, nil
	case SlipStatusRejected:
		return OrderStatusPending, nil
	default:
		return "", fmt.Errorf("invalid slip decision: %q", decision)
	}
}
