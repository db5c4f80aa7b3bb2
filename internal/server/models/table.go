package models

import "time"

type TableLocation string

const (
	LocationIndoor  TableLocation = "indoor"
	LocationOutdoor TableLocation = "outdoor"
	LocationBalcony TableLocation = "balcony"
	LocationVIP     TableLocation = "vip"
)

type TableStatus string

const (
	StatusAvailable    TableStatus = "available"
	StatusOccupied     TableStatus = "occupied"
	StatusReserved     TableStatus = "reserved"
	StatusOutOfService TableStatus = "out_of_service"
)

// Table is a physical restaurant table. Number is unique.
type Table struct {
	ID        string        `json:"id"`
	Number    int           `json:"number"`
	Capacity  int           `json:"capacity"`
	Location  TableLocation `json:"location"`
	Status    TableStatus   `json:"status"`
	Notes     string        `json:"notes,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}
