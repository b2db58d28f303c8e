package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/goccy/go-json"

	"food-delivery-orders/models"
)

// snapshot is the on-disk layout of a FileStore: one map per entity type
// keyed by id, plus the append-only status history.
type snapshot struct {
	Users          map[string]models.User          `json:"users"`
	MenuItems      map[string]models.MenuItem      `json:"menu_items"`
	Orders         map[string]models.Order         `json:"orders"`
	DeliveryAgents map[string]models.DeliveryAgent `json:"delivery_agents"`
	StatusHistory  []models.OrderStatusHistory     `json:"status_history"`
}

func newSnapshot() *snapshot {
	return &snapshot{
		Users:          map[string]models.User{},
		MenuItems:      map[string]models.MenuItem{},
		Orders:         map[string]models.Order{},
		DeliveryAgents: map[string]models.DeliveryAgent{},
	}
}

func (s *snapshot) fillNil() {
	if s.Users == nil {
		s.Users = map[string]models.User{}
	}
	if s.MenuItems == nil {
		s.MenuItems = map[string]models.MenuItem{}
	}
	if s.Orders == nil {
		s.Orders = map[string]models.Order{}
	}
	if s.DeliveryAgents == nil {
		s.DeliveryAgents = map[string]models.DeliveryAgent{}
	}
}

// clone copies the maps so a transaction can be discarded. Records are
// copied in and out by value, so sharing them between snapshots is safe.
func (s *snapshot) clone() *snapshot {
	c := newSnapshot()
	for k, v := range s.Users {
		c.Users[k] = v
	}
	for k, v := range s.MenuItems {
		c.MenuItems[k] = v
	}
	for k, v := range s.Orders {
		c.Orders[k] = v
	}
	for k, v := range s.DeliveryAgents {
		c.DeliveryAgents[k] = v
	}
	c.StatusHistory = append([]models.OrderStatusHistory(nil), s.StatusHistory...)
	return c
}

// FileStore keeps every entity in memory and rewrites the whole JSON file
// after each committed change. An empty path keeps the data in memory only.
type FileStore struct {
	path string

	mu   sync.Mutex
	data *snapshot
}

// OpenFile loads the snapshot at path, or starts empty when the file does not exist yet.
func OpenFile(path string) (*FileStore, error) {
	s := &FileStore{path: path, data: newSnapshot()}
	if path == "" {
		return s, nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read %q: %w", path, err)
	}
	if len(raw) == 0 {
		return s, nil
	}
	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("store: decode %q: %w", path, err)
	}
	snap.fillNil()
	s.data = &snap
	return s, nil
}

// NewMemory returns a FileStore that never touches disk.
func NewMemory() *FileStore {
	s, _ := OpenFile("")
	return s
}

// Path returns the backing file, empty for memory stores.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Close() error { return nil }

func (s *FileStore) Atomic(ctx context.Context, fn func(tx Repository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(&fileTx{data: work}); err != nil {
		return err
	}
	if err := s.save(work); err != nil {
		return err
	}
	s.data = work
	return nil
}

func (s *FileStore) save(snap *snapshot) error {
	if s.path == "" {
		return nil
	}
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode snapshot: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("store: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("store: write %q: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: close %q: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("store: replace %q: %w", s.path, err)
	}
	return nil
}

// read runs fn against the committed snapshot.
func (s *FileStore) read(fn func(tx *fileTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&fileTx{data: s.data})
}

func (s *FileStore) GetOrder(ctx context.Context, id string) (order *models.Order, err error) {
	err = s.read(func(tx *fileTx) error {
		order, err = tx.GetOrder(ctx, id)
		return err
	})
	return order, err
}

func (s *FileStore) ListOrders(ctx context.Context, filter OrderFilter) (orders []models.Order, err error) {
	err = s.read(func(tx *fileTx) error {
		orders, err = tx.ListOrders(ctx, filter)
		return err
	})
	return orders, err
}

func (s *FileStore) PutOrder(ctx context.Context, order *models.Order) error {
	return s.Atomic(ctx, func(tx Repository) error { return tx.PutOrder(ctx, order) })
}

func (s *FileStore) GetAgent(ctx context.Context, id string) (agent *models.DeliveryAgent, err error) {
	err = s.read(func(tx *fileTx) error {
		agent, err = tx.GetAgent(ctx, id)
		return err
	})
	return agent, err
}

func (s *FileStore) ListAgents(ctx context.Context) (agents []models.DeliveryAgent, err error) {
	err = s.read(func(tx *fileTx) error {
		agents, err = tx.ListAgents(ctx)
		return err
	})
	return agents, err
}

func (s *FileStore) PutAgent(ctx context.Context, agent *models.DeliveryAgent) error {
	return s.Atomic(ctx, func(tx Repository) error { return tx.PutAgent(ctx, agent) })
}

func (s *FileStore) DeleteAgent(ctx context.Context, id string) error {
	return s.Atomic(ctx, func(tx Repository) error { return tx.DeleteAgent(ctx, id) })
}

func (s *FileStore) GetMenuItem(ctx context.Context, id string) (item *models.MenuItem, err error) {
	err = s.read(func(tx *fileTx) error {
		item, err = tx.GetMenuItem(ctx, id)
		return err
	})
	return item, err
}

func (s *FileStore) ListMenuItems(ctx context.Context) (items []models.MenuItem, err error) {
	err = s.read(func(tx *fileTx) error {
		items, err = tx.ListMenuItems(ctx)
		return err
	})
	return items, err
}

func (s *FileStore) PutMenuItem(ctx context.Context, item *models.MenuItem) error {
	return s.Atomic(ctx, func(tx Repository) error { return tx.PutMenuItem(ctx, item) })
}

func (s *FileStore) DeleteMenuItem(ctx context.Context, id string) error {
	return s.Atomic(ctx, func(tx Repository) error { return tx.DeleteMenuItem(ctx, id) })
}

func (s *FileStore) GetUser(ctx context.Context, id string) (user *models.User, err error) {
	err = s.read(func(tx *fileTx) error {
		user, err = tx.GetUser(ctx, id)
		return err
	})
	return user, err
}

func (s *FileStore) GetUserByUsername(ctx context.Context, username string) (user *models.User, err error) {
	err = s.read(func(tx *fileTx) error {
		user, err = tx.GetUserByUsername(ctx, username)
		return err
	})
	return user, err
}

func (s *FileStore) ListUsers(ctx context.Context) (users []models.User, err error) {
	err = s.read(func(tx *fileTx) error {
		users, err = tx.ListUsers(ctx)
		return err
	})
	return users, err
}

func (s *FileStore) PutUser(ctx context.Context, user *models.User) error {
	return s.Atomic(ctx, func(tx Repository) error { return tx.PutUser(ctx, user) })
}

func (s *FileStore) AppendHistory(ctx context.Context, entry *models.OrderStatusHistory) error {
	return s.Atomic(ctx, func(tx Repository) error { return tx.AppendHistory(ctx, entry) })
}

func (s *FileStore) ListHistory(ctx context.Context, orderID string) (entries []models.OrderStatusHistory, err error) {
	err = s.read(func(tx *fileTx) error {
		entries, err = tx.ListHistory(ctx, orderID)
		return err
	})
	return entries, err
}

// fileTx operates on a snapshot without locking; FileStore owns the lock.
type fileTx struct {
	data *snapshot
}

func (t *fileTx) Atomic(_ context.Context, fn func(tx Repository) error) error {
	return fn(t)
}

func (t *fileTx) GetOrder(_ context.Context, id string) (*models.Order, error) {
	o, ok := t.data.Orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneOrder(o), nil
}

func (t *fileTx) ListOrders(_ context.Context, filter OrderFilter) ([]models.Order, error) {
	orders := make([]models.Order, 0, len(t.data.Orders))
	for _, o := range t.data.Orders {
		if filter.matches(&o) {
			orders = append(orders, *cloneOrder(o))
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID < orders[j].ID
		}
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})
	return orders, nil
}

func (t *fileTx) PutOrder(_ context.Context, order *models.Order) error {
	if order.ID == "" {
		return errors.New("store: order id is empty")
	}
	t.data.Orders[order.ID] = *cloneOrder(*order)
	return nil
}

func (t *fileTx) GetAgent(_ context.Context, id string) (*models.DeliveryAgent, error) {
	a, ok := t.data.DeliveryAgents[id]
	if !ok {
		return nil, ErrNotFound
	}
	a.CurrentOrderID = cloneString(a.CurrentOrderID)
	return &a, nil
}

func (t *fileTx) ListAgents(_ context.Context) ([]models.DeliveryAgent, error) {
	agents := make([]models.DeliveryAgent, 0, len(t.data.DeliveryAgents))
	for _, a := range t.data.DeliveryAgents {
		a.CurrentOrderID = cloneString(a.CurrentOrderID)
		agents = append(agents, a)
	}
	sort.Slice(agents, func(i, j int) bool {
		if agents[i].Name == agents[j].Name {
			return agents[i].ID < agents[j].ID
		}
		return agents[i].Name < agents[j].Name
	})
	return agents, nil
}

func (t *fileTx) PutAgent(_ context.Context, agent *models.DeliveryAgent) error {
	if agent.ID == "" {
		return errors.New("store: agent id is empty")
	}
	a := *agent
	a.CurrentOrderID = cloneString(agent.CurrentOrderID)
	t.data.DeliveryAgents[a.ID] = a
	return nil
}

func (t *fileTx) DeleteAgent(_ context.Context, id string) error {
	if _, ok := t.data.DeliveryAgents[id]; !ok {
		return ErrNotFound
	}
	delete(t.data.DeliveryAgents, id)
	return nil
}

func (t *fileTx) GetMenuItem(_ context.Context, id string) (*models.MenuItem, error) {
	item, ok := t.data.MenuItems[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (t *fileTx) ListMenuItems(_ context.Context) ([]models.MenuItem, error) {
	items := make([]models.MenuItem, 0, len(t.data.MenuItems))
	for _, item := range t.data.MenuItems {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Name == items[j].Name {
			return items[i].ID < items[j].ID
		}
		return items[i].Name < items[j].Name
	})
	return items, nil
}

func (t *fileTx) PutMenuItem(_ context.Context, item *models.MenuItem) error {
	if item.ID == "" {
		return errors.New("store: menu item id is empty")
	}
	t.data.MenuItems[item.ID] = *item
	return nil
}

func (t *fileTx) DeleteMenuItem(_ context.Context, id string) error {
	if _, ok := t.data.MenuItems[id]; !ok {
		return ErrNotFound
	}
	delete(t.data.MenuItems, id)
	return nil
}

func (t *fileTx) GetUser(_ context.Context, id string) (*models.User, error) {
	u, ok := t.data.Users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (t *fileTx) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range t.data.Users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (t *fileTx) ListUsers(_ context.Context) ([]models.User, error) {
	users := make([]models.User, 0, len(t.data.Users))
	for _, u := range t.data.Users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (t *fileTx) PutUser(_ context.Context, user *models.User) error {
	if user.ID == "" {
		return errors.New("store: user id is empty")
	}
	for id, u := range t.data.Users {
		if id != user.ID && u.Username == user.Username {
			return fmt.Errorf("store: username %q already used", user.Username)
		}
	}
	t.data.Users[user.ID] = *user
	return nil
}

func (t *fileTx) AppendHistory(_ context.Context, entry *models.OrderStatusHistory) error {
	var next uint = 1
	for _, h := range t.data.StatusHistory {
		if h.ID >= next {
			next = h.ID + 1
		}
	}
	entry.ID = next
	t.data.StatusHistory = append(t.data.StatusHistory, *entry)
	return nil
}

func (t *fileTx) ListHistory(_ context.Context, orderID string) ([]models.OrderStatusHistory, error) {
	var entries []models.OrderStatusHistory
	for _, h := range t.data.StatusHistory {
		if h.OrderID == orderID {
			entries = append(entries, h)
		}
	}
	return entries, nil
}

func cloneOrder(o models.Order) *models.Order {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	o.DeliveryAddress = cloneString(o.DeliveryAddress)
	o.DeliveryAgentID = cloneString(o.DeliveryAgentID)
	return &o
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
