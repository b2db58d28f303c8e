package statemachine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food-delivery-orders/models"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name      string
		orderType models.OrderType
		from, to  models.OrderStatus
		actor     models.UserRole
		wantErr   bool
	}{
		{"manager confirms", delivery, models.StatusPlaced, models.StatusConfirmed, manager, false},
		{"customer cannot confirm", delivery, models.StatusPlaced, models.StatusConfirmed, customer, true},
		{"customer cancels placed", takeaway, models.StatusPlaced, models.StatusCancelled, customer, false},
		{"customer cannot cancel while preparing", delivery, models.StatusPreparing, models.StatusCancelled, customer, true},
		{"agent takes ready delivery", delivery, models.StatusReady, models.StatusOutForDelivery, agent, false},
		{"no delivery run for takeaway", takeaway, models.StatusReady, models.StatusOutForDelivery, agent, true},
		{"takeaway picked up", takeaway, models.StatusReady, models.StatusPickedUp, manager, false},
		{"delivery is never picked up", delivery, models.StatusReady, models.StatusPickedUp, manager, true},
		{"agent delivers", delivery, models.StatusOutForDelivery, models.StatusDelivered, agent, false},
		{"delivered is terminal", delivery, models.StatusDelivered, models.StatusCancelled, manager, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanTransition(tt.orderType, tt.from, tt.to, tt.actor)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidTransitionsFrom(t *testing.T) {
	assert.ElementsMatch(t,
		[]models.OrderStatus{models.StatusCancelled, models.StatusPickedUp},
		ValidTransitionsFrom(takeaway, models.StatusReady))
	assert.ElementsMatch(t,
		[]models.OrderStatus{models.StatusCancelled, models.StatusOutForDelivery},
		ValidTransitionsFrom(delivery, models.StatusReady))
	assert.Empty(t, ValidTransitionsFrom(delivery, models.StatusDelivered))
}

func TestErrorListsAlternatives(t *testing.T) {
	err := CanTransition(delivery, models.StatusDelivered, models.StatusPlaced, manager)
	assert.ErrorContains(t, err, "none (terminal state)")

	err = CanTransition(delivery, models.StatusPlaced, models.StatusReady, manager)
	assert.ErrorContains(t, err, "CONFIRMED, CANCELLED")

	var terr *TransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, models.StatusPlaced, terr.From)
	assert.Equal(t, []models.OrderStatus{models.StatusConfirmed, models.StatusCancelled}, terr.ValidNext())
}

func TestGetAllTransitionsReturnsCopy(t *testing.T) {
	all := GetAllTransitions()
	all[0].To = models.StatusDelivered
	assert.NoError(t, CanTransition(delivery, models.StatusPlaced, models.StatusConfirmed, manager))
	assert.Equal(t, models.StatusConfirmed, GetAllTransitions()[0].To)
}
