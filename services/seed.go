package services

import (
	"context"

	"food-delivery-orders/catalog"
	"food-delivery-orders/models"
)

type sampleItem struct {
	name, description string
	price             float64
	category          string
}

var sampleMenu = []sampleItem{
	{"Margherita Pizza", "Classic cheese and tomato pizza", 12.99, "Pizza"},
	{"Pepperoni Pizza", "Pizza with pepperoni toppings", 14.99, "Pizza"},
	{"Chicken Burger", "Grilled chicken burger with lettuce and mayo", 9.99, "Burger"},
	{"Vegetable Biryani", "Fragrant rice dish with mixed vegetables", 10.99, "Main"},
	{"Chocolate Brownie", "Rich chocolate brownie with ice cream", 6.99, "Dessert"},
}

type sampleUser struct {
	username, password string
	role               models.UserRole
	name               string
}

var sampleUsers = []sampleUser{
	{"customer1", "pass123", models.RoleCustomer, "John Doe"},
	{"manager1", "pass123", models.RoleRestaurantManager, "Restaurant Manager"},
	{"agent1", "pass123", models.RoleDeliveryAgent, "Delivery Agent 1"},
	{"admin1", "pass123", models.RoleAdmin, "System Admin"},
}

// SeedResult reports what Seed inserted.
type SeedResult struct {
	MenuItems int
	Users     int
}

// Seed fills an empty menu and an empty user table with demo data. Tables
// that already hold records are left untouched.
func Seed(ctx context.Context, menu *catalog.Menu, users *UserManager) (SeedResult, error) {
	var res SeedResult

	items, err := menu.List(ctx, "")
	if err != nil {
		return res, err
	}
	if len(items) == 0 {
		for _, s := range sampleMenu {
			if _, err := menu.Add(ctx, s.name, s.description, s.price, s.category); err != nil {
				return res, err
			}
			res.MenuItems++
		}
	}

	existing, err := users.List(ctx, "")
	if err != nil {
		return res, err
	}
	if len(existing) == 0 {
		for _, s := range sampleUsers {
			if _, err := users.Register(ctx, s.username, s.password, s.role, s.name); err != nil {
				return res, err
			}
			res.Users++
		}
	}
	return res, nil
}
