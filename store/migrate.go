package store

import (
	"context"
	"fmt"
)

// CopyStats counts the records written by Copy.
type CopyStats struct {
	Users     int
	MenuItems int
	Agents    int
	Orders    int
	History   int
}

// Copy writes every record of src into dst in one atomic unit. Existing
// records in dst with the same ids are overwritten; history entries are
// appended and receive new ids.
func Copy(ctx context.Context, src, dst Repository) (CopyStats, error) {
	var stats CopyStats

	users, err := src.ListUsers(ctx)
	if err != nil {
		return stats, fmt.Errorf("store: copy users: %w", err)
	}
	items, err := src.ListMenuItems(ctx)
	if err != nil {
		return stats, fmt.Errorf("store: copy menu items: %w", err)
	}
	agents, err := src.ListAgents(ctx)
	if err != nil {
		return stats, fmt.Errorf("store: copy agents: %w", err)
	}
	orders, err := src.ListOrders(ctx, OrderFilter{})
	if err != nil {
		return stats, fmt.Errorf("store: copy orders: %w", err)
	}

	err = dst.Atomic(ctx, func(tx Repository) error {
		for i := range users {
			if err := tx.PutUser(ctx, &users[i]); err != nil {
				return err
			}
			stats.Users++
		}
		for i := range items {
			if err := tx.PutMenuItem(ctx, &items[i]); err != nil {
				return err
			}
			stats.MenuItems++
		}
		for i := range agents {
			if err := tx.PutAgent(ctx, &agents[i]); err != nil {
				return err
			}
			stats.Agents++
		}
		for i := range orders {
			if err := tx.PutOrder(ctx, &orders[i]); err != nil {
				return err
			}
			stats.Orders++

			history, err := src.ListHistory(ctx, orders[i].ID)
			if err != nil {
				return err
			}
			for j := range history {
				if err := tx.AppendHistory(ctx, &history[j]); err != nil {
					return err
				}
				stats.History++
			}
		}
		return nil
	})
	if err != nil {
		return CopyStats{}, fmt.Errorf("store: copy: %w", err)
	}
	return stats, nil
}
