package device

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Logger defines the logging interface used by the Registry.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Recorder receives one call per booking or return attempt.
// Outcomes are the Outcome* constants.
type Recorder interface {
	RecordBookingOp(op, outcome string)
}

type noopRecorder struct{}

func (noopRecorder) RecordBookingOp(string, string) {}

// Booking outcomes reported to the Recorder.
const (
	OutcomeOK           = "ok"
	OutcomeNotFound     = "not_found"
	OutcomeNotAvailable = "not_available"
	OutcomeRejected     = "rejected"
	OutcomeInvalid      = "invalid"
	OutcomeError        = "error"
)

// Registry is the device registry and booking core.
//
// Reads run concurrently with each other. Every mutator holds the write
// lock for its whole read-check-write, so it excludes all other
// operations, and the repository runs it as one transaction.
//
// All public methods are thread-safe.
type Registry struct {
	repo  Repository
	clock *Clock

	mu       sync.RWMutex
	logger   Logger
	recorder Recorder
}

// NewRegistry creates a registry over repo, stamping bookings with clock.
func NewRegistry(repo Repository, clock *Clock) *Registry {
	if clock == nil {
		clock = NewClock(nil)
	}
	return &Registry{
		repo:     repo,
		clock:    clock,
		logger:   noopLogger{},
		recorder: noopRecorder{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// SetRecorder sets the booking metrics sink.
func (r *Registry) SetRecorder(rec Recorder) {
	r.recorder = rec
}

// Register creates an available device and returns its id.
func (r *Registry) Register(ctx context.Context, name string) (int64, error) {
	if err := ValidateName(name); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := r.repo.Create(ctx, name)
	if err != nil {
		r.logger.Error("registering device failed", "name", name, "error", err)
		return 0, err
	}

	r.logger.Info("device registered", "id", id, "name", name)
	return id, nil
}

// Seed registers the given names in one transaction. It is called once,
// when startup finds the devices table missing.
func (r *Registry) Seed(ctx context.Context, names []string) ([]int64, error) {
	for _, name := range names {
		if err := ValidateName(name); err != nil {
			return nil, err
		}
	}
	if len(names) == 0 {
		return nil, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ids, err := r.repo.CreateBatch(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("seeding devices: %w", err)
	}

	r.logger.Info("initial devices registered", "count", len(ids))
	return ids, nil
}

// Delete removes a device. Deleting an unknown id succeeds.
func (r *Registry) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.repo.Delete(ctx, id); err != nil {
		r.logger.Error("deleting device failed", "id", id, "error", err)
		return err
	}

	r.logger.Info("device deleted", "id", id)
	return nil
}

// DeleteAll removes every device.
func (r *Registry) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.repo.DeleteAll(ctx); err != nil {
		r.logger.Error("deleting all devices failed", "error", err)
		return err
	}

	r.logger.Info("all devices deleted")
	return nil
}

// ListAll returns every device ordered by id.
func (r *Registry) ListAll(ctx context.Context) ([]Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.repo.List(ctx)
}

// ListAvailable returns devices nobody holds, ordered by id.
func (r *Registry) ListAvailable(ctx context.Context) ([]Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.repo.ListAvailable(ctx)
}

// ListByName returns devices whose name contains substr (case-sensitive),
// ordered by id. An empty result is not an error here.
func (r *Registry) ListByName(ctx context.Context, substr string) ([]Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.repo.ListByName(ctx, substr)
}

// GetByID returns one device or ErrDeviceIDNotFound.
func (r *Registry) GetByID(ctx context.Context, id int64) (*Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.repo.GetByID(ctx, id)
}

// BookByID books a device by id for person.
func (r *Registry) BookByID(ctx context.Context, person string, id int64) error {
	if err := ValidatePerson(person); err != nil {
		r.recorder.RecordBookingOp(OpBookByID, OutcomeInvalid)
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	d, err := r.repo.BookByID(ctx, person, id, r.clock.Now())
	r.finish(OpBookByID, err, "id", id)
	if err != nil {
		return err
	}

	r.logger.Debug("device booked", "id", d.ID, "person", person)
	return nil
}

// BookByName books the lowest-id available device named exactly name.
func (r *Registry) BookByName(ctx context.Context, person, name string) error {
	if err := ValidatePerson(person); err != nil {
		r.recorder.RecordBookingOp(OpBookByName, OutcomeInvalid)
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	d, err := r.repo.BookByName(ctx, person, name, r.clock.Now())
	r.finish(OpBookByName, err, "name", name)
	if err != nil {
		return err
	}

	r.logger.Debug("device booked", "id", d.ID, "person", person)
	return nil
}

// ReturnByID returns a device by id. Only the person holding it may.
func (r *Registry) ReturnByID(ctx context.Context, person string, id int64) error {
	if err := ValidatePerson(person); err != nil {
		r.recorder.RecordBookingOp(OpReturnByID, OutcomeInvalid)
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.repo.ReturnByID(ctx, person, id)
	r.finish(OpReturnByID, err, "id", id)
	return err
}

// ReturnByName returns the lowest-id device named exactly name that
// person holds.
func (r *Registry) ReturnByName(ctx context.Context, person, name string) error {
	if err := ValidatePerson(person); err != nil {
		r.recorder.RecordBookingOp(OpReturnByName, OutcomeInvalid)
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.repo.ReturnByName(ctx, person, name)
	r.finish(OpReturnByName, err, "name", name)
	return err
}

// Book handles a booking request. With both a name and an id, the name is
// booked first and then the id; the first failure stops the sequence.
func (r *Registry) Book(ctx context.Context, req BookingRequest) error {
	if req.DeviceName == nil && req.DeviceID == nil {
		return ErrRequestMustHaveEitherDeviceIDOrName
	}
	if req.DeviceName != nil {
		if err := r.BookByName(ctx, req.Person, *req.DeviceName); err != nil {
			return err
		}
	}
	if req.DeviceID != nil {
		return r.BookByID(ctx, req.Person, *req.DeviceID)
	}
	return nil
}

// Return handles a return request with the same targeting rules as Book.
func (r *Registry) Return(ctx context.Context, req BookingRequest) error {
	if req.DeviceName == nil && req.DeviceID == nil {
		return ErrRequestMustHaveEitherDeviceIDOrName
	}
	if req.DeviceName != nil {
		if err := r.ReturnByName(ctx, req.Person, *req.DeviceName); err != nil {
			return err
		}
	}
	if req.DeviceID != nil {
		return r.ReturnByID(ctx, req.Person, *req.DeviceID)
	}
	return nil
}

// finish logs and records the outcome of a booking operation.
func (r *Registry) finish(op string, err error, targetKey string, target any) {
	outcome := Outcome(err)
	r.recorder.RecordBookingOp(op, outcome)

	switch outcome {
	case OutcomeOK:
		r.logger.Info("booking operation succeeded", "op", op, targetKey, target)
	case OutcomeError:
		r.logger.Error("booking operation failed", "op", op, targetKey, target, "error", err)
	default:
		r.logger.Debug("booking operation refused", "op", op, targetKey, target, "outcome", outcome)
	}
}

// Outcome classifies an error returned by a booking operation.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrDeviceIDNotFound), errors.Is(err, ErrDeviceNameNotFound):
		return OutcomeNotFound
	case errors.Is(err, ErrDeviceNotAvailable):
		return OutcomeNotAvailable
	case errors.Is(err, ErrNoPersonWithGivenBookedDevice):
		return OutcomeRejected
	case errors.Is(err, ErrInvalidName), errors.Is(err, ErrInvalidPerson),
		errors.Is(err, ErrRequestMustHaveEitherDeviceIDOrName):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}
