package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"food-delivery-orders/catalog"
	"food-delivery-orders/mocks"
	"food-delivery-orders/models"
	"food-delivery-orders/store"
)

func TestCreateOrderPricesCart(t *testing.T) {
	e := newEnv(t, lowest())
	ctx := context.Background()

	order, err := e.orders.CreateOrder(ctx, "cust-1", []CartLine{
		{ItemID: pizzaID, Quantity: 2},
		{ItemID: burgerID, Quantity: 1},
	}, models.OrderTypeDelivery, strPtr("221B Baker Street"))
	require.NoError(t, err)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, models.StatusPlaced, order.Status)
	assert.Equal(t, 35.97, order.TotalAmount)
	assert.Equal(t, []models.OrderItem{
		{ItemID: pizzaID, Name: "Pizza", UnitPrice: 12.99, Quantity: 2},
		{ItemID: burgerID, Name: "Burger", UnitPrice: 9.99, Quantity: 1},
	}, order.Items)
	assert.Equal(t, "221B Baker Street", *order.DeliveryAddress)
	assert.Nil(t, order.DeliveryAgentID)
	assert.Equal(t, e.clock.Now(), order.CreatedAt)
	assert.Equal(t, e.clock.Now(), order.UpdatedAt)

	stored := e.order(t, order.ID)
	assert.Equal(t, order.TotalAmount, stored.TotalAmount)

	history, err := e.orders.History(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.StatusPlaced, history[0].ToStatus)
	assert.Equal(t, "cust-1", history[0].ChangedBy)
}

func TestCreateOrderEstimate(t *testing.T) {
	tests := []struct {
		name      string
		rng       Rand
		orderType models.OrderType
		address   *string
		want      time.Duration
	}{
		{"delivery shortest", lowest(), models.OrderTypeDelivery, strPtr("1 Main St"), 25 * time.Minute},
		{"delivery longest", highest(), models.OrderTypeDelivery, strPtr("1 Main St"), 75 * time.Minute},
		{"takeaway shortest", lowest(), models.OrderTypeTakeaway, nil, 10 * time.Minute},
		{"takeaway longest", highest(), models.OrderTypeTakeaway, nil, 30 * time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, tt.rng)
			order, err := e.orders.CreateOrder(context.Background(), "cust-1",
				[]CartLine{{ItemID: pizzaID, Quantity: 1}}, tt.orderType, tt.address)
			require.NoError(t, err)
			assert.Equal(t, e.clock.Now().Add(tt.want), order.EstimatedReadyTime)
		})
	}
}

func TestCreateOrderSnapshotSurvivesPriceChange(t *testing.T) {
	e := newEnv(t, lowest())
	ctx := context.Background()
	order, err := e.orders.CreateOrder(ctx, "cust-1", []CartLine{{ItemID: pizzaID, Quantity: 3}}, models.OrderTypeTakeaway, nil)
	require.NoError(t, err)

	newPrice, newName := 99.0, "Premium Pizza"
	_, err = e.menu.Update(ctx, pizzaID, catalog.ItemUpdate{Price: &newPrice, Name: &newName})
	require.NoError(t, err)

	stored := e.order(t, order.ID)
	assert.Equal(t, 12.99, stored.Items[0].UnitPrice)
	assert.Equal(t, "Pizza", stored.Items[0].Name)
	assert.InDelta(t, 38.97, stored.TotalAmount, 1e-9)
}

func TestCreateOrderUnknownItemStoresNothing(t *testing.T) {
	e := newEnv(t, lowest())
	ctx := context.Background()

	_, err := e.orders.CreateOrder(ctx, "cust-1", []CartLine{
		{ItemID: pizzaID, Quantity: 1},
		{ItemID: "item-ghost", Quantity: 1},
	}, models.OrderTypeTakeaway, nil)
	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.ErrorContains(t, err, "item-ghost")

	orders, err := e.orders.AllOrders(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCreateOrderLooksUpEachLineOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	cat := mocks.NewMockCatalog(ctrl)
	repo := store.NewMemory()
	m := NewOrderManager(repo, cat, WithRand(lowest()))
	ctx := context.Background()

	gomock.InOrder(
		cat.EXPECT().Lookup(gomock.Any(), "a").Return(catalog.Item{ID: "a", Name: "Taco", Price: 5.99}, nil),
		cat.EXPECT().Lookup(gomock.Any(), "b").Return(catalog.Item{}, catalog.ErrNotFound),
	)
	_, err := m.CreateOrder(ctx, "cust-1", []CartLine{{ItemID: "a", Quantity: 2}, {ItemID: "b", Quantity: 1}}, models.OrderTypeTakeaway, nil)
	assert.ErrorIs(t, err, ErrItemNotFound)

	orders, err := repo.ListOrders(ctx, store.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCreateOrderCatalogFailureIsNotItemNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	cat := mocks.NewMockCatalog(ctrl)
	m := NewOrderManager(store.NewMemory(), cat)

	cat.EXPECT().Lookup(gomock.Any(), "a").Return(catalog.Item{}, errors.New("disk on fire"))
	_, err := m.CreateOrder(context.Background(), "cust-1", []CartLine{{ItemID: "a", Quantity: 1}}, models.OrderTypeTakeaway, nil)
	require.Error(t, err)
	assert.False(t, IsExpected(err))
}

func TestCreateOrderValidation(t *testing.T) {
	tests := []struct {
		name      string
		customer  string
		lines     []CartLine
		orderType models.OrderType
		address   *string
	}{
		{"no customer", "", []CartLine{{pizzaID, 1}}, models.OrderTypeTakeaway, nil},
		{"empty cart", "cust-1", nil, models.OrderTypeTakeaway, nil},
		{"zero quantity", "cust-1", []CartLine{{pizzaID, 0}}, models.OrderTypeTakeaway, nil},
		{"negative quantity", "cust-1", []CartLine{{pizzaID, -2}}, models.OrderTypeTakeaway, nil},
		{"unknown type", "cust-1", []CartLine{{pizzaID, 1}}, models.OrderType("DRONE"), nil},
		{"delivery without address", "cust-1", []CartLine{{pizzaID, 1}}, models.OrderTypeDelivery, nil},
		{"delivery with blank address", "cust-1", []CartLine{{pizzaID, 1}}, models.OrderTypeDelivery, strPtr("  ")},
		{"takeaway with address", "cust-1", []CartLine{{pizzaID, 1}}, models.OrderTypeTakeaway, strPtr("1 Main St")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, lowest())
			_, err := e.orders.CreateOrder(context.Background(), tt.customer, tt.lines, tt.orderType, tt.address)
			assert.ErrorIs(t, err, ErrInvalidOrder)
		})
	}
}

func TestCreateOrderTakeawayHasNoAddress(t *testing.T) {
	e := newEnv(t, lowest())
	order, err := e.orders.CreateOrder(context.Background(), "cust-1", []CartLine{{ItemID: burgerID, Quantity: 1}}, models.OrderTypeTakeaway, strPtr(""))
	require.NoError(t, err)
	assert.Nil(t, order.DeliveryAddress)
}

func TestUpdateOrderStatus(t *testing.T) {
	e := newEnv(t, lowest())
	ctx := context.Background()
	order := e.placeDelivery(t)

	e.clock.Advance(5 * time.Minute)
	require.NoError(t, e.orders.UpdateOrderStatus(ctx, order.ID, models.StatusConfirmed, nil))

	stored := e.order(t, order.ID)
	assert.Equal(t, models.StatusConfirmed, stored.Status)
	assert.Equal(t, e.clock.Now(), stored.UpdatedAt)
	assert.Equal(t, order.CreatedAt, stored.CreatedAt)
}

func TestUpdateOrderStatusErrors(t *testing.T) {
	e := newEnv(t, lowest())
	ctx := context.Background()

	err := e.orders.UpdateOrderStatus(ctx, "missing", models.StatusConfirmed, nil)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	order := e.placeDelivery(t)
	err = e.orders.UpdateOrderStatus(ctx, order.ID, models.OrderStatus("LOST"), nil)
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Equal(t, models.StatusPlaced, e.order(t, order.ID).Status)
}

func TestUpdateOrderStatusDoesNotCheckTransitions(t *testing.T) {
	e := newEnv(t, lowest())
	ctx := context.Background()
	order := e.placeDelivery(t)

	require.NoError(t, e.orders.UpdateOrderStatus(ctx, order.ID, models.StatusDelivered, nil))
	require.NoError(t, e.orders.UpdateOrderStatus(ctx, order.ID, models.StatusPlaced, nil))
	assert.Equal(t, models.StatusPlaced, e.order(t, order.ID).Status)
}

func TestUpdateOrderStatusCheckSeesStoredOrder(t *testing.T) {
	e := newEnv(t, lowest())
	ctx := context.Background()
	e.addAgent(t, "agent-1", "Amy")
	order := e.placeDelivery(t)
	require.NoError(t, e.orders.UpdateOrderStatus(ctx, order.ID, models.StatusPreparing, nil))

	refused := errors.New("kitchen already started")
	var seen models.OrderStatus
	err := e.orders.UpdateOrderStatusBy(ctx, order.ID, models.StatusCancelled, strPtr("agent-1"), StatusChange{
		Check: func(o *models.Order) error {
			seen = o.Status
			if o.Status == models.StatusPreparing {
				return refused
			}
			return nil
		},
	})
	assert.Equal(t, refused, err)
	assert.Equal(t, models.StatusPreparing, seen)

	stored := e.order(t, order.ID)
	assert.Equal(t, models.StatusPreparing, stored.Status)
	assert.Nil(t, stored.DeliveryAgentID)
	assert.Equal(t, models.AgentAvailable, e.agent(t, "agent-1").Status)
	history, err := e.orders.History(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	err = e.orders.UpdateOrderStatusBy(ctx, order.ID, models.StatusReady, nil, StatusChange{
		Check: func(*models.Order) error { return nil },
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusReady, e.order(t, order.ID).Status)
}

func TestUpdateOrderStatusWithAgentMarksBusy(t *testing.T) {
	e := newEnv(t, lowest())
	ctx := context.Background()
	e.addAgent(t, "agent-1", "Amy")
	order := e.placeDelivery(t)

	err := e.orders.UpdateOrderStatusBy(ctx, order.ID, models.StatusOutForDelivery, strPtr("agent-1"),
		StatusChange{ChangedBy: "agent-1", Note: "on my way"})
	require.NoError(t, err)

	stored := e.order(t, order.ID)
	assert.Equal(t, "agent-1", *stored.DeliveryAgentID)
	agent := e.agent(t, "agent-1")
	assert.Equal(t, models.AgentBusy, agent.Status)
	assert.Equal(t, order.ID, *agent.CurrentOrderID)

	history, err := e.orders.History(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.StatusPlaced, history[1].FromStatus)
	assert.Equal(t, models.StatusOutForDelivery, history[1].ToStatus)
	assert.Equal(t, "on my way", history[1].Note)
}

func TestUpdateOrderStatusRejectsAgentBusyElsewhere(t *testing.T) {
	e := newEnv(t, lowest())
	ctx := context.Background()
	e.addAgent(t, "agent-1", "Amy")
	first := e.placeDelivery(t)
	second := e.placeDelivery(t)

	require.NoError(t, e.orders.UpdateOrderStatus(ctx, first.ID, models.StatusOutForDelivery, strPtr("agent-1")))
	err := e.orders.UpdateOrderStatus(ctx, second.ID, models.StatusOutForDelivery, strPtr("agent-1"))
	assert.ErrorIs(t, err, ErrAgentBusy)

	assert.Equal(t, models.StatusPlaced, e.order(t, second.ID).Status)
	assert.Nil(t, e.order(t, second.ID).DeliveryAgentID)
}

func TestUpdateOrderStatusStampsUnknownAgent(t *testing.T) {
	e := newEnv(t, lowest())
	order := e.placeDelivery(t)

	require.NoError(t, e.orders.UpdateOrderStatus(context.Background(), order.ID, models.StatusOutForDelivery, strPtr("ghost")))
	assert.Equal(t, "ghost", *e.order(t, order.ID).DeliveryAgentID)
	var warned bool
	for _, entry := range e.logs.AllEntries() {
		warned = warned || entry.Level == logrus.WarnLevel
	}
	assert.True(t, warned)
}

func TestTerminalStatusReleasesAgent(t *testing.T) {
	for _, status := range []models.OrderStatus{models.StatusDelivered, models.StatusPickedUp, models.StatusCancelled} {
		t.Run(string(status), func(t *testing.T) {
			e := newEnv(t, lowest())
			ctx := context.Background()
			e.addAgent(t, "agent-1", "Amy")
			order := e.placeDelivery(t)

			agentID, err := e.delivery.AssignDeliveryAgent(ctx, order.ID)
			require.NoError(t, err)
			require.NoError(t, e.orders.UpdateOrderStatus(ctx, order.ID, models.StatusOutForDelivery, nil))

			require.NoError(t, e.orders.UpdateOrderStatus(ctx, order.ID, status, nil))

			agent := e.agent(t, agentID)
			assert.Equal(t, models.AgentAvailable, agent.Status)
			assert.Nil(t, agent.CurrentOrderID)
			// the order keeps its agent for the record
			assert.Equal(t, agentID, *e.order(t, order.ID).DeliveryAgentID)
		})
	}
}

func TestTerminalStatusLeavesReassignedAgentAlone(t *testing.T) {
	e := newEnv(t, lowest())
	ctx := context.Background()
	e.addAgent(t, "agent-1", "Amy")
	first := e.placeDelivery(t)
	second := e.placeDelivery(t)

	_, err := e.delivery.AssignDeliveryAgent(ctx, first.ID)
	require.NoError(t, err)
	require.NoError(t, e.orders.UpdateOrderStatus(ctx, first.ID, models.StatusDelivered, nil))
	_, err = e.delivery.AssignDeliveryAgent(ctx, second.ID)
	require.NoError(t, err)

	// cancelling the finished order again must not free the agent from the second one
	require.NoError(t, e.orders.UpdateOrderStatus(ctx, first.ID, models.StatusCancelled, nil))
	agent := e.agent(t, "agent-1")
	assert.Equal(t, models.AgentBusy, agent.Status)
	assert.Equal(t, second.ID, *agent.CurrentOrderID)
}

func TestTimeRemaining(t *testing.T) {
	e := newEnv(t, lowest())
	ctx := context.Background()
	order := e.placeDelivery(t) // ready in 25 minutes

	minutes, err := e.orders.TimeRemaining(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, minutes)

	e.clock.Advance(10*time.Minute + 30*time.Second)
	minutes, err = e.orders.TimeRemaining(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 14, minutes)

	require.NoError(t, e.orders.UpdateOrderStatus(ctx, order.ID, models.StatusDelivered, nil))
	minutes, err = e.orders.TimeRemaining(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 14, minutes)

	e.clock.Advance(time.Hour)
	minutes, err = e.orders.TimeRemaining(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, minutes)

	_, err = e.orders.TimeRemaining(ctx, "missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderQueries(t *testing.T) {
	e := newEnv(t, lowest())
	ctx := context.Background()
	first := e.placeDelivery(t)
	e.clock.Advance(time.Minute)
	_, err := e.orders.CreateOrder(ctx, "cust-2", []CartLine{{ItemID: burgerID, Quantity: 1}}, models.OrderTypeTakeaway, nil)
	require.NoError(t, err)
	require.NoError(t, e.orders.UpdateOrderStatus(ctx, first.ID, models.StatusConfirmed, nil))

	mine, err := e.orders.CustomerOrders(ctx, "cust-1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, first.ID, mine[0].ID)

	all, err := e.orders.AllOrders(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	confirmed, err := e.orders.AllOrders(ctx, models.StatusConfirmed)
	require.NoError(t, err)
	assert.Len(t, confirmed, 1)

	_, err = e.orders.AllOrders(ctx, "NOPE")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = e.orders.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
	_, err = e.orders.History(ctx, "missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
