package models

import (
	"time"

	"github.com/google/uuid"
)

// Property is a read-only projection of the platform's property record:
// just enough for routing (service area) and notifications (name,
// address). Property CRUD lives elsewhere.
type Property struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	ZipCode     string    `json:"zip_code"`
	ServiceArea string    `json:"service_area"`
	TimeZone    string    `json:"time_zone"`

	CreatedAt time.Time `json:"created_at"`
}
