package statemachine

import (
	"fmt"
	"strings"

	"food-delivery-orders/models"
)

// Transition defines a valid state change and who can perform it.
// An empty OrderType applies to both delivery and takeaway orders.
type Transition struct {
	From      models.OrderStatus `json:"from"`
	To        models.OrderStatus `json:"to"`
	Actor     models.UserRole    `json:"actor"`
	OrderType models.OrderType   `json:"order_type,omitempty"`
}

const (
	manager  = models.RoleRestaurantManager
	customer = models.RoleCustomer
	agent    = models.RoleDeliveryAgent

	delivery = models.OrderTypeDelivery
	takeaway = models.OrderTypeTakeaway
)

// validTransitions is the lifecycle offered to staff and customers. The
// order service itself accepts any status; this table is enforced by the
// HTTP layer, and admins may override it.
var validTransitions = []Transition{
	// Kitchen flow
	{From: models.StatusPlaced, To: models.StatusConfirmed, Actor: manager},
	{From: models.StatusConfirmed, To: models.StatusPreparing, Actor: manager},
	{From: models.StatusPreparing, To: models.StatusReady, Actor: manager},

	// Customer or manager can cancel before preparation starts
	{From: models.StatusPlaced, To: models.StatusCancelled, Actor: customer},
	{From: models.StatusPlaced, To: models.StatusCancelled, Actor: manager},
	{From: models.StatusConfirmed, To: models.StatusCancelled, Actor: customer},
	{From: models.StatusConfirmed, To: models.StatusCancelled, Actor: manager},
	// Only the manager can cancel later on
	{From: models.StatusPreparing, To: models.StatusCancelled, Actor: manager},
	{From: models.StatusReady, To: models.StatusCancelled, Actor: manager},
	{From: models.StatusOutForDelivery, To: models.StatusCancelled, Actor: manager, OrderType: delivery},

	// Takeaway hand-over
	{From: models.StatusReady, To: models.StatusPickedUp, Actor: manager, OrderType: takeaway},

	// Delivery run
	{From: models.StatusConfirmed, To: models.StatusOutForDelivery, Actor: agent, OrderType: delivery},
	{From: models.StatusReady, To: models.StatusOutForDelivery, Actor: agent, OrderType: delivery},
	{From: models.StatusReady, To: models.StatusOutForDelivery, Actor: manager, OrderType: delivery},
	{From: models.StatusOutForDelivery, To: models.StatusDelivered, Actor: agent, OrderType: delivery},
}

// transitionKey is used to look up valid transitions quickly
type transitionKey struct {
	OrderType models.OrderType
	From      models.OrderStatus
	To        models.OrderStatus
	Actor     models.UserRole
}

// Build a lookup map for O(1) validation
var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		types := []models.OrderType{t.OrderType}
		if t.OrderType == "" {
			types = []models.OrderType{delivery, takeaway}
		}
		for _, ot := range types {
			m[transitionKey{ot, t.From, t.To, t.Actor}] = true
		}
	}
	return m
}()

func (t Transition) appliesTo(orderType models.OrderType) bool {
	return t.OrderType == "" || t.OrderType == orderType
}

// ValidTransitionsFrom returns all valid next states for an order of the given type
func ValidTransitionsFrom(orderType models.OrderType, status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	seen := map[models.OrderStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && t.appliesTo(orderType) && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// TransitionError reports a state change the table does not allow.
type TransitionError struct {
	OrderType models.OrderType
	From      models.OrderStatus
	To        models.OrderStatus
	Actor     models.UserRole
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf(
		"invalid transition: %s → %s is not allowed for actor '%s' on a %s order. Valid transitions from %s are: %s",
		e.From, e.To, e.Actor, strings.ToLower(string(e.OrderType)), e.From, describeValidFrom(e.OrderType, e.From),
	)
}

// ValidNext lists the statuses the order could move to instead.
func (e *TransitionError) ValidNext() []models.OrderStatus {
	return ValidTransitionsFrom(e.OrderType, e.From)
}

// CanTransition checks if a given actor can move an order from one state to
// another. A refusal is a *TransitionError.
func CanTransition(orderType models.OrderType, from, to models.OrderStatus, actor models.UserRole) error {
	if transitionMap[transitionKey{orderType, from, to, actor}] {
		return nil
	}
	return &TransitionError{OrderType: orderType, From: from, To: to, Actor: actor}
}

func describeValidFrom(orderType models.OrderType, status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(orderType, status)
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
	return append([]Transition(nil), validTransitions...)
}
