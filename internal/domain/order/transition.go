package order

import "fmt"

// Actor is the side of an order a transition belongs to.
type Actor string

const (
	ActorBuyer  Actor = "buyer"
	ActorFarmer Actor = "farmer"
)

// Relation is how a user relates to one order. A user can be both, when a
// farmer buys their own produce.
type Relation struct {
	Buyer  bool
	Farmer bool
}

func (r Relation) Involved() bool { return r.Buyer || r.Farmer }

func (r Relation) is(a Actor) bool {
	switch a {
	case ActorBuyer:
		return r.Buyer
	case ActorFarmer:
		return r.Farmer
	}
	return false
}

type Action string

const (
	ActionMarkDelivering   Action = "mark_delivering"
	ActionMarkDelivered    Action = "mark_delivered"
	ActionConfirmReception Action = "confirm_reception"
)

type Transition struct {
	From   Status
	To     Status
	Actor  Actor
	Action Action
}

// Checkout creates orders straight in StatusPaid, so the table only holds
// the moves made on an existing order. Cancelled has no path in.
var transitions = []Transition{
	{From: StatusPaid, To: StatusDelivering, Actor: ActorFarmer, Action: ActionMarkDelivering},
	{From: StatusDelivering, To: StatusDelivered, Actor: ActorFarmer, Action: ActionMarkDelivered},
	{From: StatusDelivered, To: StatusReceived, Actor: ActorBuyer, Action: ActionConfirmReception},
}

// InitialStatus is the status checkout writes.
const InitialStatus = StatusPaid

func lookup(from, to Status) (Transition, bool) {
	for _, t := range transitions {
		if t.From == from && t.To == to {
			return t, true
		}
	}
	return Transition{}, false
}

// Authorize checks both the table and the actor gating.
func Authorize(from, to Status, rel Relation) (Transition, error) {
	t, ok := lookup(from, to)
	if !ok {
		return Transition{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	if !rel.is(t.Actor) {
		return Transition{}, fmt.Errorf("%w: %s -> %s requires %s", ErrActorNotAllowed, from, to, t.Actor)
	}
	return t, nil
}

// AvailableActions lists what a client should offer this user right now.
func AvailableActions(current Status, rel Relation) []Transition {
	var out []Transition
	for _, t := range transitions {
		if t.From == current && rel.is(t.Actor) {
			out = append(out, t)
		}
	}
	return out
}

// ByAction finds the transition a client names by its action instead of
// the target status.
func ByAction(a Action) (Transition, bool) {
	for _, t := range transitions {
		if t.Action == a {
			return t, true
		}
	}
	return Transition{}, false
}
