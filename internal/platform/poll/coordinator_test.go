package poll

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/herdwatch/herdwatch/internal/domain/cases"
	"github.com/herdwatch/herdwatch/internal/domain/farmers"
	"github.com/herdwatch/herdwatch/internal/domain/livestock"
	"github.com/herdwatch/herdwatch/internal/domain/vets"
)

type fakeSource struct {
	mu      sync.Mutex
	cases   []*cases.Case
	failing bool
	fetches int
}

func (f *fakeSource) setCases(cs []*cases.Case) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cases = cs
}

func (f *fakeSource) setFailing(failing bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = failing
}

func (f *fakeSource) FetchCases(_ context.Context) ([]*cases.Case, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.failing {
		return nil, fmt.Errorf("record store unreachable")
	}
	return f.cases, nil
}

func (f *fakeSource) FetchVeterinarians(_ context.Context) ([]*vets.Veterinarian, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, fmt.Errorf("record store unreachable")
	}
	return nil, nil
}

func (f *fakeSource) FetchFarmers(_ context.Context) ([]*farmers.Farmer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, fmt.Errorf("record store unreachable")
	}
	return nil, nil
}

func (f *fakeSource) FetchLivestock(_ context.Context) ([]*livestock.Animal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, fmt.Errorf("record store unreachable")
	}
	return nil, nil
}

type memCache struct {
	mu   sync.Mutex
	snap *Snapshot
}

func (m *memCache) Store(_ context.Context, snap *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = snap
	return nil
}

func (m *memCache) Load(_ context.Context) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap, nil
}

func newTestCoordinator(src Source) *Coordinator {
	return NewCoordinator(src, 30*time.Second, zerolog.Nop())
}

func TestRefreshAppliesSnapshot(t *testing.T) {
	src := &fakeSource{}
	src.setCases([]*cases.Case{{CaseID: "HC-001"}})
	coord := newTestCoordinator(src)

	if coord.Current() != nil {
		t.Fatal("expected no snapshot before first refresh")
	}
	if err := coord.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := coord.Current()
	if snap == nil {
		t.Fatal("expected a snapshot after refresh")
	}
	if snap.Version != 1 {
		t.Errorf("expected version 1, got %d", snap.Version)
	}
	if len(snap.Cases) != 1 || snap.Cases[0].CaseID != "HC-001" {
		t.Errorf("unexpected snapshot cases: %v", snap.Cases)
	}
}

func TestRefreshVersionsAreMonotonic(t *testing.T) {
	src := &fakeSource{}
	coord := newTestCoordinator(src)

	for i := 0; i < 3; i++ {
		if err := coord.Refresh(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if v := coord.Current().Version; v != 3 {
		t.Errorf("expected version 3, got %d", v)
	}
}

func TestFailedRefreshRetainsPreviousSnapshot(t *testing.T) {
	src := &fakeSource{}
	src.setCases([]*cases.Case{{CaseID: "HC-001"}})
	coord := newTestCoordinator(src)

	if err := coord.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := coord.Current()

	src.setFailing(true)
	if err := coord.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh to fail")
	}
	if coord.Current() != before {
		t.Error("failed refresh must retain the previous snapshot")
	}
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	src := &fakeSource{}
	src.setCases([]*cases.Case{{CaseID: "fresh"}})
	coord := newTestCoordinator(src)

	if err := coord.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Simulate an in-flight response reserved before the applied one.
	stale := &Snapshot{Version: 0, TakenAt: time.Now(), Cases: []*cases.Case{{CaseID: "stale"}}}
	if coord.apply(stale) {
		t.Error("expected stale snapshot to be rejected")
	}
	if coord.Current().Cases[0].CaseID != "fresh" {
		t.Error("stale response must not replace fresher data")
	}
}

func TestSubscribeReceivesAppliedSnapshots(t *testing.T) {
	src := &fakeSource{}
	coord := newTestCoordinator(src)
	ch, cancel := coord.Subscribe()
	defer cancel()

	if err := coord.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case snap := <-ch:
		if snap.Version != 1 {
			t.Errorf("expected version 1, got %d", snap.Version)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a snapshot notification")
	}
}

func TestSlowSubscriberGetsLatestSnapshot(t *testing.T) {
	src := &fakeSource{}
	coord := newTestCoordinator(src)
	ch, cancel := coord.Subscribe()
	defer cancel()

	for i := 0; i < 3; i++ {
		if err := coord.Refresh(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	var last *Snapshot
	for {
		select {
		case snap := <-ch:
			last = snap
			continue
		default:
		}
		break
	}
	if last == nil || last.Version != 3 {
		t.Errorf("expected the latest snapshot (version 3), got %+v", last)
	}
}

func TestCancelDuringRefreshDoesNotPanic(t *testing.T) {
	src := &fakeSource{}
	coord := newTestCoordinator(src)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			if err := coord.Refresh(context.Background()); err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
		}
	}()

	// Churning subscriptions while the refresher fans out must never crash
	// the poll loop.
	for i := 0; i < 500; i++ {
		ch, cancel := coord.Subscribe()
		select {
		case <-ch:
		default:
		}
		cancel()
	}
	<-done
}

func TestVersionReflectsCurrentSnapshot(t *testing.T) {
	src := &fakeSource{}
	coord := newTestCoordinator(src)

	if v := coord.Version(); v != 0 {
		t.Errorf("expected version 0 before first refresh, got %d", v)
	}
	if err := coord.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v := coord.Version(); v != 1 {
		t.Errorf("expected version 1, got %d", v)
	}
}

func TestWarmStartFromCache(t *testing.T) {
	cache := &memCache{snap: &Snapshot{
		Version: 7,
		TakenAt: time.Now().Add(-time.Minute),
		Cases:   []*cases.Case{{CaseID: "cached"}},
	}}
	src := &fakeSource{}
	coord := newTestCoordinator(src).WithCache(cache)

	coord.warmStart(context.Background())
	snap := coord.Current()
	if snap == nil || snap.Cases[0].CaseID != "cached" {
		t.Fatal("expected warm start to install the cached snapshot")
	}

	// A live fetch after warm start must supersede the cached data.
	src.setCases([]*cases.Case{{CaseID: "live"}})
	if err := coord.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := coord.Current(); got.Version <= 7 || got.Cases[0].CaseID != "live" {
		t.Errorf("expected the live fetch to win, got version %d", got.Version)
	}
}
