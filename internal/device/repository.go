package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository defines the persistence operations behind the Registry.
//
// Every mutating method is one atomic read-check-write unit: either all of
// its writes commit or none do. Implementations must be safe for concurrent
// use; the Registry adds its own writer exclusion on top.
type Repository interface {
	// Create inserts an available device and returns its new id.
	Create(ctx context.Context, name string) (int64, error)

	// CreateBatch inserts one device per name in a single transaction.
	CreateBatch(ctx context.Context, names []string) ([]int64, error)

	// Delete removes the device with the given id. Deleting a missing id
	// is not an error.
	Delete(ctx context.Context, id int64) error

	// DeleteAll removes every device.
	DeleteAll(ctx context.Context) error

	// GetByID returns ErrDeviceIDNotFound when the id is unknown.
	GetByID(ctx context.Context, id int64) (*Device, error)

	// List, ListAvailable and ListByName return devices ordered by id.
	List(ctx context.Context) ([]Device, error)
	ListAvailable(ctx context.Context) ([]Device, error)
	// ListByName matches a case-sensitive substring of the name.
	ListByName(ctx context.Context, substr string) ([]Device, error)

	// BookByID books the device with the given id at now (or just after
	// its previous booking, whichever is later).
	BookByID(ctx context.Context, person string, id int64, now time.Time) (*Device, error)

	// BookByName books the lowest-id available device named exactly name.
	BookByName(ctx context.Context, person, name string, now time.Time) (*Device, error)

	// ReturnByID makes the device available again if person holds it.
	ReturnByID(ctx context.Context, person string, id int64) (*Device, error)

	// ReturnByName returns the lowest-id device named exactly name that
	// person holds.
	ReturnByName(ctx context.Context, person, name string) (*Device, error)
}

// SQLiteRepository implements Repository on the devices table.
type SQLiteRepository struct {
	db  *sql.DB
	loc *time.Location
}

// NewSQLiteRepository creates a repository over an open, migrated database.
// Timestamps are written in loc; a nil loc means UTC.
func NewSQLiteRepository(db *sql.DB, loc *time.Location) *SQLiteRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &SQLiteRepository{db: db, loc: loc}
}

const selectDevice = `
	SELECT id, name, available, lastBookedPersonName, lastBookedTime
	FROM devices`

// Create inserts one available device.
func (r *SQLiteRepository) Create(ctx context.Context, name string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO devices (name, available) VALUES (?, 1)",
		name,
	)
	if err != nil {
		return 0, storageErr("inserting device", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, storageErr("reading inserted id", err)
	}
	return id, nil
}

// CreateBatch inserts all names atomically, returning ids in input order.
func (r *SQLiteRepository) CreateBatch(ctx context.Context, names []string) ([]int64, error) {
	ids := make([]int64, 0, len(names))
	err := r.inTx(ctx, "inserting devices", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, "INSERT INTO devices (name, available) VALUES (?, 1)")
		if err != nil {
			return storageErr("preparing insert", err)
		}
		defer stmt.Close()

		for _, name := range names {
			result, err := stmt.ExecContext(ctx, name)
			if err != nil {
				return storageErr("inserting device", err)
			}
			id, err := result.LastInsertId()
			if err != nil {
				return storageErr("reading inserted id", err)
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Delete removes one row; a missing row is silently ignored.
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM devices WHERE id = ?", id); err != nil {
		return storageErr("deleting device", err)
	}
	return nil
}

// DeleteAll removes every row. AUTOINCREMENT keeps ids from being reused.
func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM devices"); err != nil {
		return storageErr("deleting all devices", err)
	}
	return nil
}

// GetByID retrieves a device by id.
func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*Device, error) {
	d, err := scanDevice(r.db.QueryRowContext(ctx, selectDevice+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrDeviceIDNotFound, id)
	}
	if err != nil {
		return nil, storageErr("querying device by id", err)
	}
	return d, nil
}

// List retrieves all devices.
func (r *SQLiteRepository) List(ctx context.Context) ([]Device, error) {
	return r.queryDevices(ctx, selectDevice+" ORDER BY id")
}

// ListAvailable retrieves devices nobody holds.
func (r *SQLiteRepository) ListAvailable(ctx context.Context) ([]Device, error) {
	return r.queryDevices(ctx, selectDevice+" WHERE available = 1 ORDER BY id")
}

// ListByName retrieves devices whose name contains substr.
// instr is case-sensitive, unlike LIKE.
func (r *SQLiteRepository) ListByName(ctx context.Context, substr string) ([]Device, error) {
	return r.queryDevices(ctx, selectDevice+" WHERE instr(name, ?) > 0 ORDER BY id", substr)
}

// BookByID books one device by id.
func (r *SQLiteRepository) BookByID(ctx context.Context, person string, id int64, now time.Time) (*Device, error) {
	var booked *Device
	err := r.inTx(ctx, "booking device", func(tx *sql.Tx) error {
		d, err := scanDevice(tx.QueryRowContext(ctx, selectDevice+" WHERE id = ?", id))
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %d", ErrDeviceIDNotFound, id)
		}
		if err != nil {
			return storageErr("reading device", err)
		}
		if !d.Available {
			return fmt.Errorf("%w: id %d", ErrDeviceNotAvailable, id)
		}

		booked, err = r.book(ctx, tx, d, person, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return booked, nil
}

// BookByName books the first available device with exactly this name.
func (r *SQLiteRepository) BookByName(ctx context.Context, person, name string, now time.Time) (*Device, error) {
	var booked *Device
	err := r.inTx(ctx, "booking device", func(tx *sql.Tx) error {
		d, err := scanDevice(tx.QueryRowContext(ctx,
			selectDevice+" WHERE name = ? AND available = 1 ORDER BY id LIMIT 1",
			name,
		))
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: name %q", ErrDeviceNotAvailable, name)
		}
		if err != nil {
			return storageErr("reading device", err)
		}

		booked, err = r.book(ctx, tx, d, person, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return booked, nil
}

// book writes the booked state for d inside tx. The stored time is moved
// past the row's previous booking if the clock has not advanced beyond it.
func (r *SQLiteRepository) book(ctx context.Context, tx *sql.Tx, d *Device, person string, now time.Time) (*Device, error) {
	at := now.In(r.loc)
	if d.LastBookedTime != nil && !at.After(*d.LastBookedTime) {
		at = d.LastBookedTime.Add(time.Nanosecond).In(r.loc)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE devices
		SET available = 0, lastBookedPersonName = ?, lastBookedTime = ?
		WHERE id = ? AND available = 1`,
		person, formatTime(at, r.loc), d.ID,
	)
	if err != nil {
		return nil, storageErr("updating device", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return nil, storageErr("checking rows affected", err)
	} else if n != 1 {
		return nil, fmt.Errorf("%w: id %d", ErrDeviceNotAvailable, d.ID)
	}

	d.Available = false
	d.LastBookedPersonName = &person
	d.LastBookedTime = &at
	return d, nil
}

// ReturnByID returns a device by id when person holds it.
func (r *SQLiteRepository) ReturnByID(ctx context.Context, person string, id int64) (*Device, error) {
	var returned *Device
	err := r.inTx(ctx, "returning device", func(tx *sql.Tx) error {
		d, err := scanDevice(tx.QueryRowContext(ctx, selectDevice+" WHERE id = ?", id))
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: id %d", ErrNoPersonWithGivenBookedDevice, id)
		}
		if err != nil {
			return storageErr("reading device", err)
		}
		if !d.IsBookedBy(person) {
			return fmt.Errorf("%w: id %d", ErrNoPersonWithGivenBookedDevice, id)
		}

		returned, err = r.release(ctx, tx, d)
		return err
	})
	if err != nil {
		return nil, err
	}
	return returned, nil
}

// ReturnByName returns the first device with exactly this name held by person.
func (r *SQLiteRepository) ReturnByName(ctx context.Context, person, name string) (*Device, error) {
	var returned *Device
	err := r.inTx(ctx, "returning device", func(tx *sql.Tx) error {
		d, err := scanDevice(tx.QueryRowContext(ctx,
			selectDevice+" WHERE name = ? AND available = 0 AND lastBookedPersonName = ? ORDER BY id LIMIT 1",
			name, person,
		))
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: name %q", ErrNoPersonWithGivenBookedDevice, name)
		}
		if err != nil {
			return storageErr("reading device", err)
		}

		returned, err = r.release(ctx, tx, d)
		return err
	})
	if err != nil {
		return nil, err
	}
	return returned, nil
}

// release marks d available. The last-booked fields stay as history.
func (r *SQLiteRepository) release(ctx context.Context, tx *sql.Tx, d *Device) (*Device, error) {
	if _, err := tx.ExecContext(ctx, "UPDATE devices SET available = 1 WHERE id = ?", d.ID); err != nil {
		return nil, storageErr("updating device", err)
	}
	d.Available = true
	return d, nil
}

// inTx runs fn in a transaction, committing only if fn succeeds.
func (r *SQLiteRepository) inTx(ctx context.Context, what string, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr(what, err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return storageErr(what, err)
	}
	return nil
}

func (r *SQLiteRepository) queryDevices(ctx context.Context, query string, args ...any) ([]Device, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("querying devices", err)
	}
	defer rows.Close()

	devices := []Device{}
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, storageErr("scanning device", err)
		}
		devices = append(devices, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterating devices", err)
	}
	return devices, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDevice(row rowScanner) (*Device, error) {
	var (
		d          Device
		available  int
		person     sql.NullString
		bookedTime sql.NullString
	)
	if err := row.Scan(&d.ID, &d.Name, &available, &person, &bookedTime); err != nil {
		return nil, err
	}

	d.Available = available != 0
	if person.Valid {
		d.LastBookedPersonName = &person.String
	}
	if bookedTime.Valid {
		t, err := parseTime(bookedTime.String)
		if err != nil {
			return nil, fmt.Errorf("parsing lastBookedTime of device %d: %w", d.ID, err)
		}
		d.LastBookedTime = &t
	}
	return &d, nil
}

// storageErr wraps a driver error so callers can match ErrStorage.
func storageErr(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, what, err)
}
