// Package store keeps named prompt-template documents cached in memory
// and guarantees they are reloaded whenever the underlying source
// changes or the staleness window elapses.
//
// The reload decision is computed fresh on every Load call:
//
//	fileModified = cached AND currentModTime after lastKnownModTime
//	cacheExpired = not cached OR (now - lastLoadTime) > TTL
//	shouldReload = fileModified OR cacheExpired OR not cached
//
// Concurrent Load calls for the same name share one reload through a
// per-name single-flight group; without it two callers observing a
// stale entry would race to re-read and overwrite it.
package store

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	templerrors "github.com/harusame/templight/internal/errors"
	"github.com/harusame/templight/internal/logging"
	"github.com/harusame/templight/internal/parser"
)

// entry is one cached template. rawText and structure are replaced
// together, never mutated in place, so a snapshot taken under the read
// lock is always internally consistent.
type entry struct {
	rawText          string
	structure        *parser.TemplateStructure
	lastLoadTime     time.Time
	lastKnownModTime time.Time
}

// Snapshot is a consistent read of one cache entry. Structure always
// corresponds to RawText from the same load.
type Snapshot struct {
	Name             string
	RawText          string
	Structure        *parser.TemplateStructure
	LastLoadTime     time.Time
	LastKnownModTime time.Time
}

// Freshness describes the TTL view of one cache entry. It intentionally
// ignores source modification state; Load's reload decision additionally
// consults the current mtime.
type Freshness struct {
	Name             string        `json:"name"`
	IsCached         bool          `json:"is_cached"`
	LastLoadTime     time.Time     `json:"last_load_time"`
	ModificationTime time.Time     `json:"modification_time"`
	CacheAge         time.Duration `json:"cache_age"`
	IsExpired        bool          `json:"is_expired"`
	NeedsReload      bool          `json:"needs_reload"`
}

// UpdateStatus is the per-template outcome of an update sweep.
type UpdateStatus struct {
	Name           string    `json:"name"`
	CurrentModTime time.Time `json:"current_mod_time"`
	CachedModTime  time.Time `json:"cached_mod_time"`
	Reloaded       bool      `json:"reloaded"`
	Error          string    `json:"error,omitempty"`
}

// Stats holds cache counters.
type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Reloads int64 `json:"reloads"`
	Entries int   `json:"entries"`
}

// Store is the template cache. Construct with NewStore; the zero value
// is not usable.
type Store struct {
	provider SourceProvider
	ttl      time.Duration
	clock    func() time.Time
	logger   logging.Logger

	entries map[string]*entry
	mutex   sync.RWMutex
	flight  singleflight.Group

	// known template names from configuration; cached names are merged
	// in during sweeps so lazily discovered templates are swept too
	names []string

	hits    int64
	misses  int64
	reloads int64
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the wall clock, for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

// WithLogger sets the store logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *Store) { s.logger = logger.WithComponent("store") }
}

// WithKnownNames seeds the set of template names the update sweep
// iterates over before any of them has been loaded.
func WithKnownNames(names []string) Option {
	return func(s *Store) { s.names = append([]string(nil), names...) }
}

// NewStore creates a template store backed by provider. Entries older
// than ttl are considered expired and reloaded on next access.
func NewStore(provider SourceProvider, ttl time.Duration, opts ...Option) *Store {
	s := &Store{
		provider: provider,
		ttl:      ttl,
		clock:    time.Now,
		logger:   logging.NopLogger{},
		entries:  make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns a consistent snapshot of the named template, reloading
// it first if the source changed, the TTL elapsed, or it was never
// loaded. A provider failure for an uncached name is returned to the
// caller; for a cached name the stale entry is served instead and the
// failure only logged.
func (s *Store) Load(ctx context.Context, name string) (Snapshot, error) {
	cached, exists := s.snapshot(name)

	currentModTime, err := s.provider.ModTime(name)
	if err != nil {
		if exists {
			// Stale-but-present beats no data; keep serving the entry.
			s.logger.Warn(ctx, err, "mtime probe failed, serving cached entry", "template", name)
			atomic.AddInt64(&s.hits, 1)
			return cached, nil
		}
		atomic.AddInt64(&s.misses, 1)
		return Snapshot{}, templerrors.NewSourceError(name, "stat", err)
	}

	now := s.clock()
	fileModified := exists && currentModTime.After(cached.LastKnownModTime)
	cacheExpired := !exists || now.Sub(cached.LastLoadTime) > s.ttl

	if !fileModified && !cacheExpired {
		atomic.AddInt64(&s.hits, 1)
		return cached, nil
	}

	atomic.AddInt64(&s.misses, 1)
	return s.reload(ctx, name, currentModTime)
}

// reload reads and parses the template under a per-name single flight,
// so concurrent callers for the same name share one provider read and
// all observe the resulting entry.
func (s *Store) reload(ctx context.Context, name string, currentModTime time.Time) (Snapshot, error) {
	result, err, shared := s.flight.Do(name, func() (interface{}, error) {
		rawText, err := s.provider.Read(name)
		if err != nil {
			return nil, templerrors.NewSourceError(name, "read", err)
		}

		structure := parser.ParseStructure(rawText)
		loaded := &entry{
			rawText:          rawText,
			structure:        structure,
			lastLoadTime:     s.clock(),
			lastKnownModTime: currentModTime,
		}

		s.mutex.Lock()
		s.entries[name] = loaded
		s.mutex.Unlock()

		atomic.AddInt64(&s.reloads, 1)
		return snapshotOf(name, loaded), nil
	})
	if err != nil {
		// The existing entry, if any, was left untouched.
		return Snapshot{}, err
	}

	snap := result.(Snapshot)
	s.logger.Debug(ctx, "template loaded",
		"template", name,
		"sections", len(snap.Structure.Sections),
		"completeness", snap.Structure.CompletenessScore,
		"shared", shared,
	)
	return snap, nil
}

// Freshness returns the TTL diagnostics for one template name.
func (s *Store) Freshness(name string) Freshness {
	cached, exists := s.snapshot(name)

	info := Freshness{Name: name, IsCached: exists}
	if !exists {
		info.IsExpired = true
		info.NeedsReload = true
		return info
	}

	info.LastLoadTime = cached.LastLoadTime
	info.ModificationTime = cached.LastKnownModTime
	info.CacheAge = s.clock().Sub(cached.LastLoadTime)
	info.IsExpired = info.CacheAge > s.ttl
	info.NeedsReload = info.IsExpired
	return info
}

// FreshnessAll returns diagnostics for every known template name.
func (s *Store) FreshnessAll() []Freshness {
	names := s.knownNames()
	out := make([]Freshness, 0, len(names))
	for _, name := range names {
		out = append(out, s.Freshness(name))
	}
	return out
}

// CheckForUpdates sweeps all known templates, comparing the current
// source mtime against the cached one and forcing a reload where the
// source is newer. Per-template failures are recorded in the returned
// status map and in collector (if non-nil); the sweep never aborts.
func (s *Store) CheckForUpdates(ctx context.Context, collector *templerrors.ErrorCollector) map[string]UpdateStatus {
	statuses := make(map[string]UpdateStatus)

	for _, name := range s.knownNames() {
		status := UpdateStatus{Name: name}

		cached, exists := s.snapshot(name)
		if exists {
			status.CachedModTime = cached.LastKnownModTime
		}

		currentModTime, err := s.provider.ModTime(name)
		if err != nil {
			status.Error = err.Error()
			if collector != nil {
				collector.Add(name, "mtime probe failed during sweep", err)
			}
			statuses[name] = status
			continue
		}
		status.CurrentModTime = currentModTime

		if exists && currentModTime.After(cached.LastKnownModTime) {
			if _, err := s.reload(ctx, name, currentModTime); err != nil {
				status.Error = err.Error()
				if collector != nil {
					collector.Add(name, "reload failed during sweep", err)
				}
			} else {
				status.Reloaded = true
			}
		}

		statuses[name] = status
	}

	return statuses
}

// ClearCache removes the named entries, or every entry when called with
// no arguments. The next access re-creates entries lazily.
func (s *Store) ClearCache(names ...string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if len(names) == 0 {
		s.entries = make(map[string]*entry)
		return
	}
	for _, name := range names {
		delete(s.entries, name)
	}
}

// Stats returns the cache counters.
func (s *Store) Stats() Stats {
	s.mutex.RLock()
	entries := len(s.entries)
	s.mutex.RUnlock()

	return Stats{
		Hits:    atomic.LoadInt64(&s.hits),
		Misses:  atomic.LoadInt64(&s.misses),
		Reloads: atomic.LoadInt64(&s.reloads),
		Entries: entries,
	}
}

// TTL returns the staleness window the store was configured with.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// snapshot takes a consistent read of one entry.
func (s *Store) snapshot(name string) (Snapshot, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	e, ok := s.entries[name]
	if !ok {
		return Snapshot{}, false
	}
	return snapshotOf(name, e), true
}

func snapshotOf(name string, e *entry) Snapshot {
	return Snapshot{
		Name:             name,
		RawText:          e.rawText,
		Structure:        e.structure,
		LastLoadTime:     e.lastLoadTime,
		LastKnownModTime: e.lastKnownModTime,
	}
}

// knownNames merges configured names with names seen in the cache,
// preserving configured order first.
func (s *Store) knownNames() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	seen := make(map[string]bool, len(s.names)+len(s.entries))
	names := make([]string, 0, len(s.names)+len(s.entries))
	for _, name := range s.names {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for name := range s.entries {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}
