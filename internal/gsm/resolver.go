package gsm

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/achomutovskij/deviceservice/internal/device"
)

// defaultEnrichConcurrency bounds parallel lookups in EnrichAll.
const defaultEnrichConcurrency = 8

// RemoteLookup is a capability source that may be slow or unreachable.
// SpecsClient implements it.
type RemoteLookup interface {
	Lookup(ctx context.Context, name string) (Details, bool)
}

// Recorder receives one call per resolved device.
type Recorder interface {
	RecordEnrichmentLookup(source string)
}

type noopRecorder struct{}

func (noopRecorder) RecordEnrichmentLookup(string) {}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithRemote adds the remote tier. A nil client leaves it disabled.
func WithRemote(client *SpecsClient) ResolverOption {
	return func(r *Resolver) {
		if client != nil {
			r.remote = client
		}
	}
}

// WithRemoteLookup adds any RemoteLookup as the remote tier.
func WithRemoteLookup(remote RemoteLookup) ResolverOption {
	return func(r *Resolver) {
		r.remote = remote
	}
}

// WithLogger sets the resolver's logger.
func WithLogger(logger Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRecorder sets the sink for per-tier lookup counts.
func WithRecorder(rec Recorder) ResolverOption {
	return func(r *Resolver) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

// WithConcurrency bounds how many devices EnrichAll resolves at once.
func WithConcurrency(n int) ResolverOption {
	return func(r *Resolver) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// Resolver attaches capabilities to devices, trying the remote API, then
// the reference dataset, then the placeholder. It never fails.
type Resolver struct {
	dataset     *Dataset
	remote      RemoteLookup
	logger      Logger
	recorder    Recorder
	concurrency int
}

// NewResolver creates a resolver over dataset. A nil dataset behaves as
// an empty one.
func NewResolver(dataset *Dataset, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		dataset:     dataset,
		logger:      noopLogger{},
		recorder:    noopRecorder{},
		concurrency: defaultEnrichConcurrency,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// HasRemote reports whether the remote tier is configured.
func (r *Resolver) HasRemote() bool {
	return r.remote != nil
}

// Details returns the capabilities for a device name and the tier that
// produced them.
func (r *Resolver) Details(ctx context.Context, name string) (Details, Source) {
	det, src := r.resolve(ctx, name)
	r.recorder.RecordEnrichmentLookup(string(src))
	r.logger.Debug("device enriched", "name", name, "source", src)
	return det, src
}

func (r *Resolver) resolve(ctx context.Context, name string) (Details, Source) {
	if r.remote != nil {
		if det, ok := r.remote.Lookup(ctx, name); ok {
			return det, SourceRemote
		}
	}
	if det, ok := r.dataset.Lookup(name); ok {
		return det, SourceDataset
	}
	return Unavailable(), SourceUnavailable
}

// Enrich returns dev with its capabilities attached.
func (r *Resolver) Enrich(ctx context.Context, dev device.Device) EnrichedDevice {
	det, _ := r.Details(ctx, dev.Name)
	return EnrichedDevice{Device: dev, Details: det}
}

// EnrichAll enriches devs concurrently and returns them in input order.
// The result is never nil.
func (r *Resolver) EnrichAll(ctx context.Context, devs []device.Device) []EnrichedDevice {
	out := make([]EnrichedDevice, len(devs))

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i := range devs {
		g.Go(func() error {
			out[i] = r.Enrich(ctx, devs[i])
			return nil
		})
	}
	_ = g.Wait() // Enrich never fails

	return out
}
