// Package catalog resolves menu items for order pricing and manages the menu.
package catalog

//go:generate mockgen -destination=../mocks/mock_catalog.go -package=mocks food-delivery-orders/catalog Catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"food-delivery-orders/models"
	"food-delivery-orders/store"
)

var (
	ErrNotFound    = errors.New("catalog: item not found")
	ErrInvalidItem = errors.New("catalog: invalid item")
)

// Item is the read-only view of a menu entry used for pricing.
type Item struct {
	ID       string
	Name     string
	Price    float64
	Category string
}

// Catalog is read by the order service once per cart line.
type Catalog interface {
	Lookup(ctx context.Context, itemID string) (Item, error)
}

// Menu is the repository-backed Catalog with menu management on top.
type Menu struct {
	repo store.Repository
}

func NewMenu(repo store.Repository) *Menu {
	return &Menu{repo: repo}
}

func (m *Menu) Lookup(ctx context.Context, itemID string) (Item, error) {
	mi, err := m.repo.GetMenuItem(ctx, itemID)
	if errors.Is(err, store.ErrNotFound) {
		return Item{}, fmt.Errorf("%w: %s", ErrNotFound, itemID)
	}
	if err != nil {
		return Item{}, err
	}
	return Item{ID: mi.ID, Name: mi.Name, Price: mi.Price, Category: mi.Category}, nil
}

func (m *Menu) Add(ctx context.Context, name, description string, price float64, category string) (*models.MenuItem, error) {
	item := &models.MenuItem{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(name),
		Description: description,
		Price:       price,
		Category:    category,
	}
	if err := validate(item); err != nil {
		return nil, err
	}
	if err := m.repo.PutMenuItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// ItemUpdate carries the fields to change; nil fields are left alone.
type ItemUpdate struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
}

// Update edits a menu entry. Orders already placed keep the name and price
// they were created with.
func (m *Menu) Update(ctx context.Context, id string, upd ItemUpdate) (*models.MenuItem, error) {
	var item *models.MenuItem
	err := m.repo.Atomic(ctx, func(tx store.Repository) error {
		var err error
		item, err = tx.GetMenuItem(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if err != nil {
			return err
		}
		if upd.Name != nil {
			item.Name = strings.TrimSpace(*upd.Name)
		}
		if upd.Description != nil {
			item.Description = *upd.Description
		}
		if upd.Price != nil {
			item.Price = *upd.Price
		}
		if upd.Category != nil {
			item.Category = *upd.Category
		}
		if err := validate(item); err != nil {
			return err
		}
		return tx.PutMenuItem(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (m *Menu) Remove(ctx context.Context, id string) error {
	err := m.repo.DeleteMenuItem(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return err
}

func (m *Menu) Get(ctx context.Context, id string) (*models.MenuItem, error) {
	item, err := m.repo.GetMenuItem(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return item, err
}

// List returns the menu, optionally restricted to one category.
func (m *Menu) List(ctx context.Context, category string) ([]models.MenuItem, error) {
	items, err := m.repo.ListMenuItems(ctx)
	if err != nil || category == "" {
		return items, err
	}
	filtered := items[:0]
	for _, item := range items {
		if strings.EqualFold(item.Category, category) {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

func validate(item *models.MenuItem) error {
	if item.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidItem)
	}
	if item.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrInvalidItem)
	}
	return nil
}
