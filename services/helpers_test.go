package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"food-delivery-orders/catalog"
	"food-delivery-orders/models"
	"food-delivery-orders/store"
)

// testClock is a settable clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// pickRand returns pick(n) for every draw.
type pickRand func(n int) int

func (p pickRand) IntN(n int) int { return p(n) }

func lowest() Rand  { return pickRand(func(int) int { return 0 }) }
func highest() Rand { return pickRand(func(n int) int { return n - 1 }) }

type env struct {
	repo     *store.FileStore
	menu     *catalog.Menu
	orders   *OrderManager
	delivery *DeliveryManager
	clock    *testClock
	logs     *test.Hook
}

const (
	pizzaID  = "item-pizza"
	burgerID = "item-burger"
)

func newEnv(t *testing.T, rng Rand) *env {
	t.Helper()
	ctx := context.Background()
	repo := store.NewMemory()
	require.NoError(t, repo.PutMenuItem(ctx, &models.MenuItem{ID: pizzaID, Name: "Pizza", Price: 12.99, Category: "Pizza"}))
	require.NoError(t, repo.PutMenuItem(ctx, &models.MenuItem{ID: burgerID, Name: "Burger", Price: 9.99, Category: "Burger"}))

	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	clock := newTestClock()
	opts := []Option{WithClock(clock.Now), WithRand(rng), WithLogger(log)}

	menu := catalog.NewMenu(repo)
	return &env{
		repo:     repo,
		menu:     menu,
		orders:   NewOrderManager(repo, menu, opts...),
		delivery: NewDeliveryManager(repo, opts...),
		clock:    clock,
		logs:     hook,
	}
}

func (e *env) addAgent(t *testing.T, id, name string) {
	t.Helper()
	require.NoError(t, e.repo.PutAgent(context.Background(), &models.DeliveryAgent{ID: id, Name: name, Status: models.AgentAvailable}))
}

func (e *env) agent(t *testing.T, id string) *models.DeliveryAgent {
	t.Helper()
	a, err := e.repo.GetAgent(context.Background(), id)
	require.NoError(t, err)
	return a
}

func (e *env) order(t *testing.T, id string) *models.Order {
	t.Helper()
	o, err := e.repo.GetOrder(context.Background(), id)
	require.NoError(t, err)
	return o
}

func (e *env) placeDelivery(t *testing.T) *models.Order {
	t.Helper()
	order, err := e.orders.CreateOrder(context.Background(), "cust-1",
		[]CartLine{{ItemID: pizzaID, Quantity: 1}}, models.OrderTypeDelivery, strPtr("221B Baker Street"))
	require.NoError(t, err)
	return order
}

func strPtr(s string) *string { return &s }
