// Package session keeps the live preview instances served to browsers and
// routes control activations to them.
//
// Each instance is guarded by its own mutex so events for one preview are
// applied and rendered in order while different previews proceed in
// parallel.
package session

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/conneroisu/docblocks/internal/errors"
	"github.com/conneroisu/docblocks/internal/logging"
	"github.com/conneroisu/docblocks/internal/preview"
)

// DefaultMaxInstances bounds the store when no limit is configured.
const DefaultMaxInstances = 1000

// Gauge is the slice of a metrics gauge the store updates.
type Gauge interface {
	Set(float64)
}

type instance struct {
	mu       sync.Mutex
	preview  *preview.Preview
	created  time.Time
	lastUsed time.Time
}

// Store holds preview instances by id.
type Store struct {
	mu        sync.Mutex
	instances map[string]*instance
	order     []string // least to most recently used
	max       int
	options   []preview.Option
	logger    logging.Logger
	gauge     Gauge
}

// Option configures a Store.
type Option func(*Store)

// WithMaxInstances caps the number of live instances. The least recently
// used instance is evicted when the cap is exceeded.
func WithMaxInstances(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.max = n
		}
	}
}

// WithPreviewOptions adds options applied to every preview the store
// creates.
func WithPreviewOptions(opts ...preview.Option) Option {
	return func(s *Store) { s.options = append(s.options, opts...) }
}

// WithLogger sets the store's logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger.WithComponent("session")
		}
	}
}

// WithGauge reports the instance count to g.
func WithGauge(g Gauge) Option {
	return func(s *Store) { s.gauge = g }
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		instances: make(map[string]*instance),
		max:       DefaultMaxInstances,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create builds a preview from cfg under a fresh id and tracks it. Its
// signature matches docs.Factory.
func (s *Store) Create(cfg preview.Config) *preview.Preview {
	id := xid.New().String()

	opts := make([]preview.Option, 0, len(s.options)+1)
	opts = append(opts, s.options...)
	opts = append(opts, preview.WithID(id))
	p := preview.New(cfg, opts...)

	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.instances[id] = &instance{preview: p, created: now, lastUsed: now}
	s.order = append(s.order, id)

	for len(s.order) > s.max {
		evicted := s.order[0]
		s.order = s.order[1:]
		delete(s.instances, evicted)
		s.logger.Debug(context.Background(), "Evicted preview instance", "id", evicted)
	}
	s.report()

	return p
}

// Get returns the preview with id.
func (s *Store) Get(id string) (*preview.Preview, bool) {
	inst, ok := s.lookup(id)
	if !ok {
		return nil, false
	}
	return inst.preview, true
}

// lookup returns instance id and marks it most recently used, so previews a
// page is still interacting with outlive ones from abandoned page views.
func (s *Store) lookup(id string) (*instance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.instances[id]
	if !ok {
		return nil, false
	}
	for i, other := range s.order {
		if other == id {
			s.order = append(append(s.order[:i:i], s.order[i+1:]...), id)
			break
		}
	}
	return inst, true
}

// Dispatch activates the named control on instance id and, when w is not
// nil, renders the instance's new markup to w. Both happen under the
// instance lock, so the markup reflects exactly this event.
func (s *Store) Dispatch(ctx context.Context, id, action string, w io.Writer) error {
	inst, ok := s.lookup(id)
	if !ok {
		return errors.NewNotFoundError(errors.ErrCodeInstanceNotFound, "preview instance not found").
			WithContext("id", id)
	}

	inst.mu.Lock()
	defer inst.mu.Unlock()

	if err := inst.preview.Activate(ctx, action); err != nil {
		s.logger.Debug(ctx, "Rejected preview action", "id", id, "action", action, "error", err.Error())
		return err
	}
	inst.lastUsed = time.Now()

	s.logger.Debug(ctx, "Dispatched preview action",
		"id", id,
		"action", action,
		"expanded", inst.preview.Expanded(),
		"scale", inst.preview.Scale(),
	)

	if w == nil {
		return nil
	}
	return inst.preview.Component().Render(ctx, w)
}

// Render writes the current markup of instance id.
func (s *Store) Render(ctx context.Context, id string, w io.Writer) error {
	inst, ok := s.lookup(id)
	if !ok {
		return errors.NewNotFoundError(errors.ErrCodeInstanceNotFound, "preview instance not found").
			WithContext("id", id)
	}

	inst.mu.Lock()
	defer inst.mu.Unlock()
	return inst.preview.Component().Render(ctx, w)
}

// Reset drops every instance. Called after the manifest changes, since the
// stories held by old instances may be stale.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.instances = make(map[string]*instance)
	s.order = nil
	s.report()
}

// Count returns the number of live instances.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.instances)
}

// report must be called with s.mu held.
func (s *Store) report() {
	if s.gauge != nil {
		s.gauge.Set(float64(len(s.instances)))
	}
}
