// Package database provides the SQLite store behind the device registry.
//
// This package manages:
//   - Opening the database file with WAL mode and a busy timeout
//   - Sizing the handle pool (readers run alongside one writer)
//   - Versioned schema migrations embedded in the binary
//   - Detecting a fresh store so initial devices are seeded once
//
// All queries use parameterised statements. The database file is created
// with 0600 permissions.
//
// Usage:
//
//	db, err := database.Open(database.Config{
//	    Path:         cfg.Database.Path,
//	    WALMode:      cfg.Database.WALMode,
//	    BusyTimeout:  cfg.Database.BusyTimeout,
//	    MaxOpenConns: cfg.Database.MaxOpenConns,
//	})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	existed, err := db.TableExists(ctx, "devices")
//	if err != nil {
//	    return err
//	}
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migrations are additive. Each version has an .up.sql file and, where a
// rollback makes sense, a .down.sql file.
package database
