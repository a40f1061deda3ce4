// Package order holds the order lifecycle: statuses, the transition table
// and the actor gating that decides who may move an order forward.
package order

import (
	"errors"
	"fmt"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusPaid       Status = "paid"
	StatusDelivering Status = "delivering"
	StatusDelivered  Status = "delivered"
	StatusReceived   Status = "received"
	StatusCancelled  Status = "cancelled"
)

var (
	ErrUnknownStatus     = errors.New("unknown status")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrActorNotAllowed   = errors.New("actor not allowed")
)

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return st, nil
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusDelivering, StatusDelivered, StatusReceived, StatusCancelled:
		return true
	}
	return false
}

func (s Status) IsTerminal() bool {
	return s == StatusReceived || s == StatusCancelled
}

// Label is the French text shown to users.
func (s Status) Label() string {
	switch s {
	case StatusPaid:
		return "Payé"
	case StatusDelivering:
		return "En livraison"
	case StatusDelivered:
		return "Livré"
	case StatusReceived:
		return "Reçu"
	case StatusCancelled:
		return "Annulé"
	default:
		return "En attente"
	}
}

// Revenue reports whether lines of an order in this status count as sales.
func (s Status) Revenue() bool {
	switch s {
	case StatusPaid, StatusDelivering, StatusDelivered, StatusReceived:
		return true
	}
	return false
}
