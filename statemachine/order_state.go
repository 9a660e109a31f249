package statemachine

import (
	"fmt"
	"strings"

	"foodiehub-api/models"
)

// Event names a move through the order lifecycle.
type Event string

const (
	EventAccept   Event = "accept"
	EventAssign   Event = "assign"
	EventComplete Event = "complete"
)

// Transition defines a valid state change and who can perform it
type Transition struct {
	From  models.OrderStatus `json:"from"`
	Event Event              `json:"event"`
	To    models.OrderStatus `json:"to"`
	Actor models.UserRole    `json:"actor"`
}

// validTransitions is the authoritative state machine definition
var validTransitions = []Transition{
	// Kitchen accepts the order
	{From: models.StatusPending, Event: EventAccept, To: models.StatusPreparing, Actor: models.RoleAdmin},
	// Admin hands the order to a delivery user
	{From: models.StatusPreparing, Event: EventAssign, To: models.StatusOutForDelivery, Actor: models.RoleAdmin},
	// The assigned delivery user completes the handoff
	{From: models.StatusOutForDelivery, Event: EventComplete, To: models.StatusDelivered, Actor: models.RoleDelivery},
}

type transitionKey struct {
	From  models.OrderStatus
	Event Event
}

var transitionMap = func() map[transitionKey]Transition {
	m := make(map[transitionKey]Transition, len(validTransitions))
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.Event}] = t
	}
	return m
}()

// Next returns the transition fired by event from the given state.
func Next(from models.OrderStatus, event Event) (Transition, error) {
	t, ok := transitionMap[transitionKey{From: from, Event: event}]
	if !ok {
		return Transition{}, &TransitionError{From: from, Reason: fmt.Sprintf("%s is not allowed from %s", event, from)}
	}
	return t, nil
}

// TransitionError is returned for a move the current state does not accept.
// It matches models.ErrInvalidTransition.
type TransitionError struct {
	From   models.OrderStatus
	Reason string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s; valid next states: %s", models.ErrInvalidTransition, e.Reason, describeValidFrom(e.From))
}

func (e *TransitionError) Unwrap() error { return models.ErrInvalidTransition }

// ValidNextStates lists where the order can go from e.From. Never nil.
func (e *TransitionError) ValidNextStates() []models.OrderStatus {
	nexts := ValidTransitionsFrom(e.From)
	if nexts == nil {
		return []models.OrderStatus{}
	}
	return nexts
}

// CanTransition checks that event is legal from the given state and that role may fire it.
// An illegal event wins over a wrong role.
func CanTransition(from models.OrderStatus, event Event, role models.UserRole) (Transition, error) {
	t, err := Next(from, event)
	if err != nil {
		return Transition{}, err
	}
	if t.Actor != role {
		return Transition{}, fmt.Errorf("%w: %s requires role %s", models.ErrForbidden, event, t.Actor)
	}
	return t, nil
}

// EventFor maps a requested target status to the event that reaches it.
func EventFor(to models.OrderStatus) (Event, bool) {
	for _, t := range validTransitions {
		if t.To == to {
			return t.Event, true
		}
	}
	return "", false
}

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	for _, t := range validTransitions {
		if t.From == status {
			nexts = append(nexts, t.To)
		}
	}
	return nexts
}

// IsTerminal reports whether no transition leaves status.
func IsTerminal(status models.OrderStatus) bool {
	return len(ValidTransitionsFrom(status)) == 0
}

func describeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	names := make([]string, len(nexts))
	for i, s := range nexts {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	out := make([]Transition, len(validTransitions))
	copy(out, validTransitions)
	return out
}
