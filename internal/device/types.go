package device

import "time"

// Device is one physical unit in the lab.
// This matches the devices table in migrations/20230601_120000_devices.up.sql.
//
// Names are not unique: several units of the same model share a name and
// are told apart by ID.
type Device struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Available bool   `json:"available"`

	// Set on booking and kept after return as the last holder.
	LastBookedPersonName *string    `json:"lastBookedPersonName"`
	LastBookedTime       *time.Time `json:"lastBookedTime"`
}

// IsBookedBy reports whether the device is currently held by person.
func (d *Device) IsBookedBy(person string) bool {
	return !d.Available && d.LastBookedPersonName != nil && *d.LastBookedPersonName == person
}

// BookingRequest targets a device by name, by id, or both.
//
// With both set, the name is tried first and then the id, each as its own
// operation.
type BookingRequest struct {
	Person     string  `json:"person"`
	DeviceName *string `json:"deviceName,omitempty"`
	DeviceID   *int64  `json:"deviceId,omitempty"`
}

// Booking operation labels, used in logs and metrics.
const (
	OpBookByID     = "book_by_id"
	OpBookByName   = "book_by_name"
	OpReturnByID   = "return_by_id"
	OpReturnByName = "return_by_name"
)
