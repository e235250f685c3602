// Package api implements the HTTP/JSON surface of the device service.
//
// Endpoints fall into three groups under /api:
//   - management: register a device, delete one, delete all
//   - info: list devices (all, available, by name substring) or fetch one,
//     each enriched with network capabilities
//   - booking: book or return by device name and/or id
//
// Failures of the booking core map to a fixed status and code, for
// example 409 device_not_available. Storage faults are reported as a
// generic 500 and logged with the request id.
//
// The server follows the same lifecycle pattern as other infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api
