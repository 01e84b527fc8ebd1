package poll

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/herdwatch/herdwatch/internal/domain/cases"
	"github.com/herdwatch/herdwatch/internal/domain/farmers"
	"github.com/herdwatch/herdwatch/internal/domain/livestock"
	"github.com/herdwatch/herdwatch/internal/domain/vets"
)

// Snapshot is one immutable, versioned view of the record store. Consumers
// read a snapshot in full and never mutate it; the coordinator swaps whole
// snapshots so concurrent readers never observe a half-refreshed view.
type Snapshot struct {
	Version       uint64               `json:"version"`
	TakenAt       time.Time            `json:"taken_at"`
	Cases         []*cases.Case        `json:"cases"`
	Veterinarians []*vets.Veterinarian `json:"veterinarians"`
	Farmers       []*farmers.Farmer    `json:"farmers"`
	Livestock     []*livestock.Animal  `json:"livestock"`
}

// Source is the record store read surface the coordinator polls. The two
// implementations live in internal/platform/recordstore.
type Source interface {
	FetchCases(ctx context.Context) ([]*cases.Case, error)
	FetchVeterinarians(ctx context.Context) ([]*vets.Veterinarian, error)
	FetchFarmers(ctx context.Context) ([]*farmers.Farmer, error)
	FetchLivestock(ctx context.Context) ([]*livestock.Animal, error)
}

// Cache optionally persists applied snapshots so a restarted node can serve
// data before its first successful fetch. Implemented by the redis cache;
// nil-safe to omit.
type Cache interface {
	Store(ctx context.Context, snap *Snapshot) error
	Load(ctx context.Context) (*Snapshot, error)
}

// Coordinator owns the single poll loop shared by every dashboard surface.
// Versions are reserved before a fetch starts and a response is discarded if
// a fresher snapshot was applied while it was in flight, so overlapping
// refreshes can never roll the view backward.
type Coordinator struct {
	source   Source
	cache    Cache
	interval time.Duration
	log      zerolog.Logger

	version atomic.Uint64

	mu      sync.RWMutex
	current *Snapshot
	subs    map[int]chan *Snapshot
	nextSub int
}

func NewCoordinator(source Source, interval time.Duration, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		source:   source,
		interval: interval,
		log:      log,
		subs:     make(map[int]chan *Snapshot),
	}
}

// WithCache attaches an optional snapshot cache used for warm starts.
func (c *Coordinator) WithCache(cache Cache) *Coordinator {
	c.cache = cache
	return c
}

// Current returns the latest applied snapshot, or nil before the first
// successful refresh.
func (c *Coordinator) Current() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Version returns the current snapshot's version, or 0 before the first
// applied refresh.
func (c *Coordinator) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return 0
	}
	return c.current.Version
}

// LastUpdated returns when the current snapshot was taken.
func (c *Coordinator) LastUpdated() (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return time.Time{}, false
	}
	return c.current.TakenAt, true
}

// Subscribe returns a channel receiving each applied snapshot and a cancel
// function. Slow subscribers miss intermediate snapshots rather than block
// the poll loop.
func (c *Coordinator) Subscribe() (<-chan *Snapshot, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	ch := make(chan *Snapshot, 1)
	c.subs[id] = ch

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if _, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// Start runs the poll loop until ctx is cancelled. It attempts a warm start
// from the cache, then an initial fetch, then ticks on the fixed interval.
// Automatic refresh failures are logged and the previous snapshot retained.
func (c *Coordinator) Start(ctx context.Context) {
	c.warmStart(ctx)

	if err := c.Refresh(ctx); err != nil {
		c.log.Warn().Err(err).Msg("initial poll failed, serving stale or empty data until next tick")
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Refresh(ctx); err != nil {
				c.log.Warn().Err(err).Msg("automatic poll failed, retaining previous snapshot")
			}
		}
	}
}

// Refresh fetches all collections and applies the result as a new snapshot.
// It is the manual-refresh path: the error is returned to the caller instead
// of being swallowed. The reserved version guards against an overlapping
// refresh applying fresher data first.
func (c *Coordinator) Refresh(ctx context.Context) error {
	version := c.version.Add(1)

	caseSet, err := c.source.FetchCases(ctx)
	if err != nil {
		return fmt.Errorf("fetch cases: %w", err)
	}
	vetSet, err := c.source.FetchVeterinarians(ctx)
	if err != nil {
		return fmt.Errorf("fetch veterinarians: %w", err)
	}
	farmerSet, err := c.source.FetchFarmers(ctx)
	if err != nil {
		return fmt.Errorf("fetch farmers: %w", err)
	}
	animalSet, err := c.source.FetchLivestock(ctx)
	if err != nil {
		return fmt.Errorf("fetch livestock: %w", err)
	}

	snap := &Snapshot{
		Version:       version,
		TakenAt:       time.Now().UTC(),
		Cases:         caseSet,
		Veterinarians: vetSet,
		Farmers:       farmerSet,
		Livestock:     animalSet,
	}

	if !c.apply(snap) {
		// A fresher refresh finished while this one was in flight.
		c.log.Debug().Uint64("version", version).Msg("discarding stale poll response")
		return nil
	}

	if c.cache != nil {
		if err := c.cache.Store(ctx, snap); err != nil {
			c.log.Warn().Err(err).Msg("snapshot cache store failed")
		}
	}
	return nil
}

// apply installs snap as current unless a newer snapshot is already applied.
// The fan-out happens under the lock: every send is non-blocking, and a
// concurrent cancel closes its channel under the same lock, so the loop can
// never send on a closed channel.
func (c *Coordinator) apply(snap *Snapshot) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil && c.current.Version >= snap.Version {
		return false
	}
	c.current = snap

	for _, ch := range c.subs {
		select {
		case ch <- snap:
		default:
			// Drop the oldest pending snapshot so the latest one lands.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
	return true
}

// warmStart loads the cached snapshot, if any, so the node serves data
// before its first fetch completes. A live fetch always supersedes it.
func (c *Coordinator) warmStart(ctx context.Context) {
	if c.cache == nil {
		return
	}
	snap, err := c.cache.Load(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("snapshot cache load failed")
		return
	}
	if snap == nil {
		return
	}
	// Cached versions belong to a previous process; restart local numbering
	// above it so fresh fetches always win.
	for {
		cur := c.version.Load()
		if cur >= snap.Version {
			break
		}
		if c.version.CompareAndSwap(cur, snap.Version) {
			break
		}
	}
	c.apply(snap)
	c.log.Info().Uint64("version", snap.Version).Time("taken_at", snap.TakenAt).Msg("warm start from cached snapshot")
}
