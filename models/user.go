package models

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleCustomer          UserRole = "customer"
	RoleRestaurantManager UserRole = "restaurant_manager"
	RoleDeliveryAgent     UserRole = "delivery_agent"
	RoleAdmin             UserRole = "admin"
)

func (r UserRole) IsValid() bool {
	switch r {
	case RoleCustomer, RoleRestaurantManager, RoleDeliveryAgent, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           string   `json:"id" gorm:"primaryKey"`
	Username     string   `json:"username" gorm:"uniqueIndex;not null"`
	Name         string   `json:"name" gorm:"not null"`
	PasswordHash string   `json:"password_hash" gorm:"not null"`
	Role         UserRole `json:"role" gorm:"not null;default:'customer'"`
}
