// Package device provides the device registry and booking core of the
// device lab service.
//
// A Device is one physical phone. Several devices may share a name (units
// of the same model) and are told apart by a monotonic integer id.
//
// # State machine
//
//	          book(p)                 return(p)
//	AVAILABLE ────────► BOOKED(p,t) ─────────► AVAILABLE   (p and t kept)
//	                        │
//	                        └── return by another person: rejected
//
// A return is accepted only from the person recorded as the last booker.
// After return the device is available again and still reports who booked
// it last and when.
//
// # Key Types
//
//   - Registry: validation, writer exclusion, logging and metrics
//   - SQLiteRepository: the devices table, one transaction per mutator
//   - Clock: strictly increasing booking timestamps in a reference zone
//
// # Usage
//
//	repo := device.NewSQLiteRepository(db.DB, loc)
//	registry := device.NewRegistry(repo, device.NewClock(loc))
//	registry.SetLogger(logger.Component("registry"))
//
//	id, err := registry.Register(ctx, "iPhone 14")
//	err = registry.BookByID(ctx, "Andrej", id)
//	err = registry.ReturnByID(ctx, "Andrej", id)
//
// # Thread Safety
//
// Reads share a read lock. Register, Delete, DeleteAll and every booking
// operation take the write lock for their full duration.
package device
