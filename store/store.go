// Package store persists orders, delivery agents, menu items, users and the
// order status history.
//
// Two backends implement Repository: FileStore keeps a whole-file JSON
// snapshot that is rewritten on every committed change, GormStore keeps one
// SQLite table per entity. Callers that touch more than one record in a
// single logical operation must do so inside Atomic.
package store

import (
	"context"
	"errors"

	"food-delivery-orders/models"
)

// ErrNotFound is returned by every Get and Delete method when the id does not resolve.
var ErrNotFound = errors.New("store: record not found")

// OrderFilter narrows ListOrders. Zero-valued fields are ignored.
type OrderFilter struct {
	CustomerID string
	AgentID    string
	Status     models.OrderStatus
}

func (f OrderFilter) matches(o *models.Order) bool {
	if f.CustomerID != "" && o.CustomerID != f.CustomerID {
		return false
	}
	if f.AgentID != "" && (o.DeliveryAgentID == nil || *o.DeliveryAgentID != f.AgentID) {
		return false
	}
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	return true
}

// Repository is the port the order and delivery services depend on.
//
// List methods return records in a stable order: orders by creation time,
// agents and menu items by name, history by insertion.
type Repository interface {
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, error)
	PutOrder(ctx context.Context, order *models.Order) error

	GetAgent(ctx context.Context, id string) (*models.DeliveryAgent, error)
	ListAgents(ctx context.Context) ([]models.DeliveryAgent, error)
	PutAgent(ctx context.Context, agent *models.DeliveryAgent) error
	DeleteAgent(ctx context.Context, id string) error

	GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error)
	ListMenuItems(ctx context.Context) ([]models.MenuItem, error)
	PutMenuItem(ctx context.Context, item *models.MenuItem) error
	DeleteMenuItem(ctx context.Context, id string) error

	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	PutUser(ctx context.Context, user *models.User) error

	// AppendHistory assigns entry.ID and stores it.
	AppendHistory(ctx context.Context, entry *models.OrderStatusHistory) error
	ListHistory(ctx context.Context, orderID string) ([]models.OrderStatusHistory, error)

	// Atomic runs fn against a repository whose writes are committed together
	// when fn returns nil and discarded otherwise. Concurrent Atomic calls are
	// serialized. fn must not use the outer repository.
	Atomic(ctx context.Context, fn func(tx Repository) error) error
}

// Closer is implemented by backends holding an open file or connection.
type Closer interface {
	Close() error
}
