package services

import (
	"time"

	"food-delivery-orders/models"
)

// EstimateBounds are inclusive minute ranges for the random ready-time estimate.
type EstimateBounds struct {
	PrepMin, PrepMax         int
	DeliveryMin, DeliveryMax int
}

var DefaultEstimateBounds = EstimateBounds{
	PrepMin: 10, PrepMax: 30,
	DeliveryMin: 15, DeliveryMax: 45,
}

// estimate draws a preparation time, plus a delivery time for delivery orders.
func (b EstimateBounds) estimate(rng Rand, orderType models.OrderType) time.Duration {
	minutes := between(rng, b.PrepMin, b.PrepMax)
	if orderType == models.OrderTypeDelivery {
		minutes += between(rng, b.DeliveryMin, b.DeliveryMax)
	}
	return time.Duration(minutes) * time.Minute
}

func between(rng Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.IntN(hi-lo+1)
}
