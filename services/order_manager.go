package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"food-delivery-orders/catalog"
	"food-delivery-orders/models"
	"food-delivery-orders/store"
)

// CartLine is one requested item of a new order.
type CartLine struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// StatusChange annotates a status update in the order history.
type StatusChange struct {
	ChangedBy string
	Note      string
	// Check, when set, vets the order as loaded inside the update's atomic
	// unit. Its error aborts the update and is returned as is.
	Check func(order *models.Order) error
}

// OrderManager creates orders priced against the catalog and moves them
// through their statuses.
type OrderManager struct {
	repo    store.Repository
	catalog catalog.Catalog
	settings
}

func NewOrderManager(repo store.Repository, cat catalog.Catalog, opts ...Option) *OrderManager {
	return &OrderManager{repo: repo, catalog: cat, settings: newSettings(opts)}
}

// CreateOrder snapshots name and price of every line from the catalog and
// stores the order as PLACED. If any item is unknown nothing is stored.
func (m *OrderManager) CreateOrder(ctx context.Context, customerID string, lines []CartLine, orderType models.OrderType, deliveryAddress *string) (*models.Order, error) {
	address, err := validateOrder(customerID, lines, orderType, deliveryAddress)
	if err != nil {
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(lines))
	total := decimal.Zero
	for _, line := range lines {
		item, err := m.catalog.Lookup(ctx, line.ItemID)
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrItemNotFound, line.ItemID)
		}
		if err != nil {
			return nil, fmt.Errorf("lookup item %s: %w", line.ItemID, err)
		}
		items = append(items, models.OrderItem{
			ItemID:    line.ItemID,
			Name:      item.Name,
			UnitPrice: item.Price,
			Quantity:  line.Quantity,
		})
		total = total.Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	now := m.now()
	order := &models.Order{
		ID:                 uuid.NewString(),
		CustomerID:         customerID,
		Items:              items,
		OrderType:          orderType,
		DeliveryAddress:    address,
		Status:             models.StatusPlaced,
		EstimatedReadyTime: now.Add(m.bounds.estimate(m.rng, orderType)),
		TotalAmount:        total.InexactFloat64(),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err = m.repo.Atomic(ctx, func(tx store.Repository) error {
		if err := tx.PutOrder(ctx, order); err != nil {
			return err
		}
		return tx.AppendHistory(ctx, &models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  models.StatusPlaced,
			ChangedBy: customerID,
			Note:      "Order placed by customer",
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	m.log.WithFields(logrus.Fields{
		"order_id":    order.ID,
		"customer_id": customerID,
		"order_type":  orderType,
		"total":       order.TotalAmount,
	}).Info("Order placed")
	return order, nil
}

func validateOrder(customerID string, lines []CartLine, orderType models.OrderType, deliveryAddress *string) (*string, error) {
	if customerID == "" {
		return nil, fmt.Errorf("%w: customer id is required", ErrInvalidOrder)
	}
	if !orderType.IsValid() {
		return nil, fmt.Errorf("%w: unknown order type %q", ErrInvalidOrder, orderType)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", ErrInvalidOrder)
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity for %s must be positive, got %d", ErrInvalidOrder, line.ItemID, line.Quantity)
		}
	}

	var address string
	if deliveryAddress != nil {
		address = strings.TrimSpace(*deliveryAddress)
	}
	switch {
	case orderType == models.OrderTypeDelivery && address == "":
		return nil, fmt.Errorf("%w: delivery address is required for delivery orders", ErrInvalidOrder)
	case orderType == models.OrderTypeTakeaway && address != "":
		return nil, fmt.Errorf("%w: takeaway orders do not take a delivery address", ErrInvalidOrder)
	case orderType == models.OrderTypeTakeaway:
		return nil, nil
	}
	return &address, nil
}

// UpdateOrderStatus sets any status on the order. When agentID is given the
// agent is stamped on the order and marked busy with it; a terminal status
// releases the agent bound to the order.
func (m *OrderManager) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus, agentID *string) error {
	return m.UpdateOrderStatusBy(ctx, orderID, status, agentID, StatusChange{})
}

// UpdateOrderStatusBy is UpdateOrderStatus with the actor and note recorded in the history.
func (m *OrderManager) UpdateOrderStatusBy(ctx context.Context, orderID string, status models.OrderStatus, agentID *string, change StatusChange) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	var prev models.OrderStatus
	var released string
	err := m.repo.Atomic(ctx, func(tx store.Repository) error {
		order, err := getOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if change.Check != nil {
			if err := change.Check(order); err != nil {
				return &checkError{err}
			}
		}
		prev = order.Status
		order.Status = status
		order.UpdatedAt = m.now()

		if agentID != nil && *agentID != "" {
			if err := m.bindAgent(ctx, tx, order, *agentID); err != nil {
				return err
			}
		}

		if status.IsTerminal() && order.HasAgent() {
			ok, err := releaseAgent(ctx, tx, *order.DeliveryAgentID, order.ID)
			if err != nil {
				return err
			}
			if ok {
				released = *order.DeliveryAgentID
			}
		}

		if err := tx.PutOrder(ctx, order); err != nil {
			return err
		}
		return tx.AppendHistory(ctx, &models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: prev,
			ToStatus:   status,
			ChangedBy:  change.ChangedBy,
			Note:       change.Note,
			CreatedAt:  order.UpdatedAt,
		})
	})
	if err != nil {
		var cerr *checkError
		if errors.As(err, &cerr) {
			return cerr.err
		}
		if IsExpected(err) {
			return err
		}
		return fmt.Errorf("update order %s: %w", orderID, err)
	}

	entry := m.log.WithFields(logrus.Fields{
		"order_id": orderID,
		"from":     prev,
		"to":       status,
	})
	if released != "" {
		entry = entry.WithField("released_agent", released)
	}
	entry.Info("Order status updated")
	return nil
}

// checkError carries a StatusChange.Check refusal out of the atomic unit.
type checkError struct{ err error }

func (e *checkError) Error() string { return e.err.Error() }
func (e *checkError) Unwrap() error { return e.err }

// bindAgent stamps agentID on the order and marks the agent busy with it.
// An id with no agent record is still stamped.
func (m *OrderManager) bindAgent(ctx context.Context, tx store.Repository, order *models.Order, agentID string) error {
	agent, err := tx.GetAgent(ctx, agentID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		m.log.WithFields(logrus.Fields{"order_id": order.ID, "agent_id": agentID}).Warn("Stamping unknown delivery agent")
	case err != nil:
		return err
	case agent.CurrentOrderID != nil && *agent.CurrentOrderID != order.ID:
		return fmt.Errorf("%w: %s is on order %s", ErrAgentBusy, agentID, *agent.CurrentOrderID)
	}

	if order.HasAgent() && *order.DeliveryAgentID != agentID {
		if _, err := releaseAgent(ctx, tx, *order.DeliveryAgentID, order.ID); err != nil {
			return err
		}
	}
	order.DeliveryAgentID = &agentID

	if agent == nil {
		return nil
	}
	agent.Assign(order.ID)
	return tx.PutAgent(ctx, agent)
}

// releaseAgent frees the agent if it is still bound to orderID.
func releaseAgent(ctx context.Context, tx store.Repository, agentID, orderID string) (bool, error) {
	agent, err := tx.GetAgent(ctx, agentID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if agent.CurrentOrderID == nil || *agent.CurrentOrderID != orderID {
		return false, nil
	}
	agent.Release()
	return true, tx.PutAgent(ctx, agent)
}

// TimeRemaining returns the whole minutes left until the estimate made at
// creation, never less than zero.
func (m *OrderManager) TimeRemaining(ctx context.Context, orderID string) (int, error) {
	order, err := getOrder(ctx, m.repo, orderID)
	if err != nil {
		return 0, err
	}
	remaining := order.EstimatedReadyTime.Sub(m.now())
	if remaining < 0 {
		return 0, nil
	}
	return int(remaining.Minutes()), nil
}

func (m *OrderManager) Get(ctx context.Context, orderID string) (*models.Order, error) {
	return getOrder(ctx, m.repo, orderID)
}

// CustomerOrders returns the customer's orders, oldest first.
func (m *OrderManager) CustomerOrders(ctx context.Context, customerID string) ([]models.Order, error) {
	return m.repo.ListOrders(ctx, store.OrderFilter{CustomerID: customerID})
}

// AllOrders returns every order, optionally only those in status.
func (m *OrderManager) AllOrders(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	if status != "" && !status.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return m.repo.ListOrders(ctx, store.OrderFilter{Status: status})
}

// History returns the status changes of an order in the order they happened.
func (m *OrderManager) History(ctx context.Context, orderID string) ([]models.OrderStatusHistory, error) {
	if _, err := getOrder(ctx, m.repo, orderID); err != nil {
		return nil, err
	}
	return m.repo.ListHistory(ctx, orderID)
}

func getOrder(ctx context.Context, repo store.Repository, orderID string) (*models.Order, error) {
	order, err := repo.GetOrder(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", orderID, err)
	}
	return order, nil
}
