package models

type AgentStatus string

const (
	AgentAvailable AgentStatus = "AVAILABLE"
	AgentBusy      AgentStatus = "BUSY"
)

// DeliveryAgent shares its ID with the delivery_agent user it was registered for.
type DeliveryAgent struct {
	ID             string      `json:"id" gorm:"primaryKey"`
	Name           string      `json:"name" gorm:"not null"`
	Status         AgentStatus `json:"status" gorm:"not null;default:'AVAILABLE';index"`
	CurrentOrderID *string     `json:"current_order_id"`
}

// Assign marks the agent busy on orderID.
func (a *DeliveryAgent) Assign(orderID string) {
	a.Status = AgentBusy
	a.CurrentOrderID = &orderID
}

// Release returns the agent to the available pool.
func (a *DeliveryAgent) Release() {
	a.Status = AgentAvailable
	a.CurrentOrderID = nil
}
