package models

import "time"

type DishCategory string

const (
	CategoryStarter DishCategory = "starter"
	CategoryMain    DishCategory = "main"
	CategoryDessert DishCategory = "dessert"
	CategoryDrink   DishCategory = "drink"
)

type Dish struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Price       float64      `json:"price"`
	Category    DishCategory `json:"category"`
	Image       string       `json:"image,omitempty"`
	Available   bool         `json:"available"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}
