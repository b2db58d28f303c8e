package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"food-delivery-orders/models"
)

// GormStore keeps one table per entity. Orders carry their line items as a
// JSON column so an order is always written as a single row.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore migrates the schema and wraps db.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	err := db.AutoMigrate(
		&models.User{},
		&models.MenuItem{},
		&models.Order{},
		&models.DeliveryAgent{},
		&models.OrderStatusHistory{},
	)
	if err != nil {
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// DB exposes the underlying handle for health checks.
func (s *GormStore) DB() *gorm.DB { return s.db }

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormStore) Atomic(ctx context.Context, fn func(tx Repository) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, wrapGorm("get order", err)
	}
	return &order, nil
}

func (s *GormStore) ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	query := s.db.WithContext(ctx)
	if filter.CustomerID != "" {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.AgentID != "" {
		query = query.Where("delivery_agent_id = ?", filter.AgentID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	var orders []models.Order
	if err := query.Order("created_at asc, id asc").Find(&orders).Error; err != nil {
		return nil, wrapGorm("list orders", err)
	}
	return orders, nil
}

func (s *GormStore) PutOrder(ctx context.Context, order *models.Order) error {
	return upsert(ctx, s.db, "put order", order)
}

func (s *GormStore) GetAgent(ctx context.Context, id string) (*models.DeliveryAgent, error) {
	var agent models.DeliveryAgent
	if err := s.db.WithContext(ctx).First(&agent, "id = ?", id).Error; err != nil {
		return nil, wrapGorm("get agent", err)
	}
	return &agent, nil
}

func (s *GormStore) ListAgents(ctx context.Context) ([]models.DeliveryAgent, error) {
	var agents []models.DeliveryAgent
	if err := s.db.WithContext(ctx).Order("name asc, id asc").Find(&agents).Error; err != nil {
		return nil, wrapGorm("list agents", err)
	}
	return agents, nil
}

func (s *GormStore) PutAgent(ctx context.Context, agent *models.DeliveryAgent) error {
	return upsert(ctx, s.db, "put agent", agent)
}

func (s *GormStore) DeleteAgent(ctx context.Context, id string) error {
	return deleteByID(ctx, s.db, "delete agent", &models.DeliveryAgent{}, id)
}

func (s *GormStore) GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, wrapGorm("get menu item", err)
	}
	return &item, nil
}

func (s *GormStore) ListMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	if err := s.db.WithContext(ctx).Order("name asc, id asc").Find(&items).Error; err != nil {
		return nil, wrapGorm("list menu items", err)
	}
	return items, nil
}

func (s *GormStore) PutMenuItem(ctx context.Context, item *models.MenuItem) error {
	return upsert(ctx, s.db, "put menu item", item)
}

func (s *GormStore) DeleteMenuItem(ctx context.Context, id string) error {
	return deleteByID(ctx, s.db, "delete menu item", &models.MenuItem{}, id)
}

func (s *GormStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, wrapGorm("get user", err)
	}
	return &user, nil
}

func (s *GormStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, wrapGorm("get user", err)
	}
	return &user, nil
}

func (s *GormStore) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("username asc").Find(&users).Error; err != nil {
		return nil, wrapGorm("list users", err)
	}
	return users, nil
}

func (s *GormStore) PutUser(ctx context.Context, user *models.User) error {
	return upsert(ctx, s.db, "put user", user)
}

func (s *GormStore) AppendHistory(ctx context.Context, entry *models.OrderStatusHistory) error {
	entry.ID = 0
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return wrapGorm("append history", err)
	}
	return nil
}

func (s *GormStore) ListHistory(ctx context.Context, orderID string) ([]models.OrderStatusHistory, error) {
	var entries []models.OrderStatusHistory
	err := s.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id asc").Find(&entries).Error
	if err != nil {
		return nil, wrapGorm("list history", err)
	}
	return entries, nil
}

func upsert(ctx context.Context, db *gorm.DB, op string, value any) error {
	if err := db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(value).Error; err != nil {
		return wrapGorm(op, err)
	}
	return nil
}

func deleteByID(ctx context.Context, db *gorm.DB, op string, model any, id string) error {
	res := db.WithContext(ctx).Delete(model, "id = ?", id)
	if res.Error != nil {
		return wrapGorm(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func wrapGorm(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("store: %s: %w", op, err)
}
