package models

import (
	"time"

	"github.com/google/uuid"
)

type VendorAvailability string

const (
	VendorAvailable VendorAvailability = "AVAILABLE"
	VendorBusy      VendorAvailability = "BUSY"
	VendorOffline   VendorAvailability = "OFFLINE"
)

// Vendor directory entry. Availability is flipped by the assignment
// process when the vendor_busy_on_assign policy flag is enabled.
type Vendor struct {
	Versioned

	ID             uuid.UUID          `json:"id"`
	Name           string             `json:"name"`
	Specialty      string             `json:"specialty"`
	Availability   VendorAvailability `json:"availability"`
	ServiceAreas   []string           `json:"service_areas"`
	Certifications []string           `json:"certifications,omitempty"`
	Phone          string             `json:"phone"`
	Email          string             `json:"email"`

	CreatedAt time.Time `json:"created_at"`
}

func (v *Vendor) GetID() string {
	return v.ID.String()
}

// ServesArea reports whether the vendor covers the given service area.
func (v *Vendor) ServesArea(area string) bool {
	for _, a := range v.ServiceAreas {
		if a == area {
			return true
		}
	}
	return false
}
