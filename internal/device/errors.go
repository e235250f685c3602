package device

import "errors"

// Domain errors for the device package.
//
// Callers classify failures with errors.Is:
//
//	if errors.Is(err, device.ErrDeviceNotAvailable) {
//	    // someone else holds it
//	}
//
// Returned errors usually wrap one of these with the offending id or name.
var (
	// ErrDeviceIDNotFound is returned when no device has the requested id.
	ErrDeviceIDNotFound = errors.New("device: id not found")

	// ErrDeviceNameNotFound is returned by name queries that match nothing.
	ErrDeviceNameNotFound = errors.New("device: name not found")

	// ErrDeviceNotAvailable is returned when the booking target is already
	// booked, or when no device with the requested name is available.
	ErrDeviceNotAvailable = errors.New("device: not available")

	// ErrNoPersonWithGivenBookedDevice is returned when a return does not
	// match a device currently booked by the requester.
	ErrNoPersonWithGivenBookedDevice = errors.New("device: no person with given booked device")

	// ErrRequestMustHaveEitherDeviceIDOrName is returned for booking
	// requests that name no target.
	ErrRequestMustHaveEitherDeviceIDOrName = errors.New("device: request must have either device id or name")

	// ErrInvalidName is returned when a device name is blank or too long.
	ErrInvalidName = errors.New("device: invalid name")

	// ErrInvalidPerson is returned when a person name is blank or too long.
	ErrInvalidPerson = errors.New("device: invalid person")

	// ErrStorage wraps every database fault. The transaction that hit it
	// has been rolled back.
	ErrStorage = errors.New("device: storage failure")
)
