package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"food-delivery-orders/models"
	"food-delivery-orders/store"
)

// DeliveryManager tracks the pool of delivery agents and hands orders to them.
type DeliveryManager struct {
	repo store.Repository
	settings
}

func NewDeliveryManager(repo store.Repository, opts ...Option) *DeliveryManager {
	return &DeliveryManager{repo: repo, settings: newSettings(opts)}
}

// AvailableAgents returns the agents that are not on an order.
func (d *DeliveryManager) AvailableAgents(ctx context.Context) ([]models.DeliveryAgent, error) {
	agents, err := d.repo.ListAgents(ctx)
	if err != nil {
		return nil, err
	}
	return filterAvailable(agents), nil
}

func (d *DeliveryManager) AllAgents(ctx context.Context) ([]models.DeliveryAgent, error) {
	return d.repo.ListAgents(ctx)
}

func filterAvailable(agents []models.DeliveryAgent) []models.DeliveryAgent {
	available := agents[:0]
	for _, a := range agents {
		if a.Status == models.AgentAvailable {
			available = append(available, a)
		}
	}
	return available
}

// AssignDeliveryAgent picks a random available agent for the order and marks
// it busy. The order status is left unchanged. An agent previously bound to
// the order goes back to the pool.
func (d *DeliveryManager) AssignDeliveryAgent(ctx context.Context, orderID string) (string, error) {
	var agent models.DeliveryAgent
	err := d.repo.Atomic(ctx, func(tx store.Repository) error {
		order, err := getOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		agents, err := tx.ListAgents(ctx)
		if err != nil {
			return err
		}
		available := filterAvailable(agents)
		if len(available) == 0 {
			return ErrNoAgentsAvailable
		}
		agent = available[d.rng.IntN(len(available))]

		if order.HasAgent() && *order.DeliveryAgentID != agent.ID {
			if _, err := releaseAgent(ctx, tx, *order.DeliveryAgentID, order.ID); err != nil {
				return err
			}
		}
		order.DeliveryAgentID = &agent.ID
		agent.Assign(order.ID)

		if err := tx.PutOrder(ctx, order); err != nil {
			return err
		}
		return tx.PutAgent(ctx, &agent)
	})
	if err != nil {
		if IsExpected(err) {
			return "", err
		}
		return "", fmt.Errorf("assign agent to order %s: %w", orderID, err)
	}

	d.log.WithFields(logrus.Fields{
		"order_id": orderID,
		"agent_id": agent.ID,
	}).Info("Delivery agent assigned")
	return agent.ID, nil
}

// AgentOrders returns every order ever assigned to the agent, whatever its status.
func (d *DeliveryManager) AgentOrders(ctx context.Context, agentID string) ([]models.Order, error) {
	return d.repo.ListOrders(ctx, store.OrderFilter{AgentID: agentID})
}

// Agent returns a single agent.
func (d *DeliveryManager) Agent(ctx context.Context, agentID string) (*models.DeliveryAgent, error) {
	agent, err := d.repo.GetAgent(ctx, agentID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: agent %s", ErrUserNotFound, agentID)
	}
	return agent, err
}
