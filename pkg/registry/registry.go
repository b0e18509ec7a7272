// Package registry multiplexes independent pd instances by caller-chosen
// integer id.
//
// The host plugin ABI passes a single float parameter per audio node, so the
// managed client picks ids and the audio callback uses that parameter to find
// the instance that should render a node.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/justyntemme/unitylibpd/pkg/framework/debug"
	"github.com/justyntemme/unitylibpd/pkg/pd"
	"github.com/justyntemme/unitylibpd/pkg/receiver"
)

var (
	// ErrEntryExists is returned by Create when the id already has a live
	// instance.
	ErrEntryExists = errors.New("registry: entry already exists")
	// ErrNoEntry is returned when the id has no live instance.
	ErrNoEntry = errors.New("registry: no such entry")
	// ErrNoPatch is returned when a patch handle is unknown to its entry.
	ErrNoPatch = errors.New("registry: no such patch")
	// ErrBufferSize is returned by ProcessAudio when the host buffers do not
	// hold the interleaved stereo blocks the instance renders.
	ErrBufferSize = errors.New("registry: buffer does not fit the stereo layout")
)

// InvalidPatch is the handle OpenPatch returns on failure.
const InvalidPatch = -1

// entry is one pd instance and its bookkeeping. ctx is nil once released.
type entry struct {
	mu         sync.Mutex
	id         int
	ctx        pd.Context
	patchCount int
	patches    map[int]pd.Patch
	receiver   *receiver.Receiver
	profile    string
}

// Registry owns every pd instance of the plugin.
//
// The id map is guarded by a read-write lock and each entry by its own mutex.
// Release drops an entry's context under that mutex, so audio processing that
// races a release on the same id either finishes first or sees ErrNoEntry.
//
// Messages pd emits during a call are queued by the entry's receiver and
// delivered after every lock is released, so callbacks may call back into the
// registry, on any id, including from the audio thread.
type Registry struct {
	mu       sync.RWMutex
	entries  map[int]*entry
	factory  pd.Factory
	fwd      *receiver.Forwarder
	logger   *debug.Logger
	profiler *debug.Profiler
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger; entries log through children of it.
func WithLogger(l *debug.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithProfiler times ProcessAudio per entry under "process/<id>". It is meant
// for debugging: each profiled block allocates a closure and takes the
// profiler's mutex on the audio thread.
func WithProfiler(p *debug.Profiler) Option {
	return func(r *Registry) {
		r.profiler = p
	}
}

// New creates an empty registry. Every entry's receiver forwards through fwd.
func New(factory pd.Factory, fwd *receiver.Forwarder, opts ...Option) *Registry {
	if fwd == nil {
		fwd = receiver.NewForwarder()
	}
	r := &Registry{
		entries: make(map[int]*entry),
		factory: factory,
		fwd:     fwd,
		logger:  debug.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Forwarder returns the callback slots shared by all entries.
func (r *Registry) Forwarder() *receiver.Forwarder {
	return r.fwd
}

// lookup returns the entry for id with its lock held, or ErrNoEntry. The
// caller must unlock the entry.
func (r *Registry) lookup(id int) (*entry, error) {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNoEntry, id)
	}
	e.mu.Lock()
	if e.ctx == nil {
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: %d", ErrNoEntry, id)
	}
	return e, nil
}

// with runs fn against the live context of id, then delivers whatever the
// instance emitted meanwhile.
func (r *Registry) with(id int, fn func(e *entry) error) error {
	e, err := r.lookup(id)
	if err != nil {
		return err
	}
	err = func() error {
		defer e.mu.Unlock()
		return fn(e)
	}()
	e.receiver.Flush()
	return err
}

// Create allocates a new pd instance under id and wires its receiver.
func (r *Registry) Create(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[id]; ok {
		e.mu.Lock()
		live := e.ctx != nil
		e.mu.Unlock()
		if live {
			return fmt.Errorf("%w: %d", ErrEntryExists, id)
		}
	}

	ctx, err := r.factory()
	if err != nil {
		r.logger.Error("create %d: %v", id, err)
		return fmt.Errorf("registry: create %d: %w", id, err)
	}

	logger := r.logger.With("pd" + strconv.Itoa(id))
	e := &entry{
		id:       id,
		ctx:      ctx,
		patches:  make(map[int]pd.Patch),
		receiver: receiver.New(id, r.fwd, logger),
		profile:  "process/" + strconv.Itoa(id),
	}
	ctx.SetReceiver(e.receiver)
	r.entries[id] = e

	r.logger.Info("created instance %d", id)
	return nil
}

// Init configures id for stereo in and out at sampleRate.
func (r *Registry) Init(id int, sampleRate float64) error {
	return r.with(id, func(e *entry) error {
		if err := e.ctx.Init(pd.NumInputs, pd.NumOutputs, sampleRate); err != nil {
			r.logger.Error("init %d at %.0f Hz: %v", id, sampleRate, err)
			return fmt.Errorf("registry: init %d: %w", id, err)
		}
		r.logger.Debug("initialised instance %d at %.0f Hz", id, sampleRate)
		return nil
	})
}

// Release stops DSP on id, closes its patches and frees its instance. With
// erase the entry is removed; otherwise an empty entry stays behind, which
// every operation treats as absent.
func (r *Registry) Release(id int, erase bool) error {
	e, err := func() (*entry, error) {
		r.mu.Lock()
		defer r.mu.Unlock()

		e, ok := r.entries[id]
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrNoEntry, id)
		}
		if err := r.release(e); err != nil {
			return nil, err
		}
		if erase {
			delete(r.entries, id)
		}
		return e, nil
	}()
	if err != nil {
		return err
	}

	// Output printed while the patches closed.
	e.receiver.Flush()
	return nil
}

// ReleaseAll releases every entry and empties the registry. With a profiler
// the report of every instance is logged first.
func (r *Registry) ReleaseAll() {
	released := func() []*entry {
		r.mu.Lock()
		defer r.mu.Unlock()

		if r.profiler != nil {
			r.logger.Info("profile:\n%s", r.profiler.Report())
		}

		out := make([]*entry, 0, len(r.entries))
		for _, id := range r.sortedIDs() {
			// The map is cleared below; released entries are not erased one by one.
			if e := r.entries[id]; r.release(e) == nil {
				out = append(out, e)
			}
		}
		r.entries = make(map[int]*entry)
		return out
	}()

	for _, e := range released {
		e.receiver.Flush()
	}
	r.logger.Info("released all instances")
}

// release tears down e. Callers hold r.mu for writing.
func (r *Registry) release(e *entry) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ctx == nil {
		return fmt.Errorf("%w: %d", ErrNoEntry, e.id)
	}

	e.ctx.ComputeAudio(false)
	e.closeAll()
	if err := e.ctx.Close(); err != nil {
		r.logger.Warn("close instance %d: %v", e.id, err)
	}
	e.ctx = nil

	if r.profiler != nil {
		if m, ok := r.profiler.Measurement(e.profile); ok {
			r.logger.Debug("%s", m)
		}
		r.profiler.Forget(e.profile)
	}

	r.logger.Info("released instance %d", e.id)
	return nil
}

// Len returns the number of live entries.
func (r *Registry) Len() int {
	return len(r.IDs())
}

// IDs returns the ids of live entries in ascending order.
func (r *Registry) IDs() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int, 0, len(r.entries))
	for _, id := range r.sortedIDs() {
		e := r.entries[id]
		e.mu.Lock()
		live := e.ctx != nil
		e.mu.Unlock()
		if live {
			ids = append(ids, id)
		}
	}
	return ids
}

func (r *Registry) sortedIDs() []int {
	ids := make([]int, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
