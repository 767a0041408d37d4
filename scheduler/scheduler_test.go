package scheduler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"vigil/alert"
	"vigil/config"
	"vigil/model"
	"vigil/probe"
)

// fakeStore mimics the conditional-update claim semantics of the real store.
type fakeStore struct {
	mu       sync.Mutex
	monitors map[string]*model.Monitor
	checks   []model.Check
	dueErr   error
	deleted  []time.Time
}

func newFakeStore(monitors ...*model.Monitor) *fakeStore {
	f := &fakeStore{monitors: map[string]*model.Monitor{}}
	for _, m := range monitors {
		f.monitors[m.ID] = m
	}
	return f
}

func (f *fakeStore) DueMonitors(ctx context.Context, now time.Time) ([]model.Monitor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dueErr != nil {
		return nil, f.dueErr
	}
	var due []model.Monitor
	for _, m := range f.monitors {
		if m.Active && !m.NextCheckAt.After(now) {
			due = append(due, *m)
		}
	}
	return due, nil
}

func (f *fakeStore) ClaimMonitor(ctx context.Context, id string, next time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.monitors[id]
	if !ok || !m.Active || m.NextCheckAt.After(time.Now()) {
		return false, nil
	}
	m.NextCheckAt = next
	return true, nil
}

func (f *fakeStore) InsertCheck(ctx context.Context, c *model.Check) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checks = append(f.checks, *c)
	return nil
}

func (f *fakeStore) UpdateMonitorStatus(ctx context.Context, id string, status model.Status, checkedAt, nextCheckAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.monitors[id]; ok {
		m.LastStatus = status
		m.LastCheckedAt = &checkedAt
		m.NextCheckAt = nextCheckAt
	}
	return nil
}

func (f *fakeStore) ActiveChannelsForMonitor(ctx context.Context, monitorID string) ([]model.AlertChannel, error) {
	return nil, nil
}

func (f *fakeStore) ListChecks(ctx context.Context, monitorID string, since, until time.Time) ([]model.Check, error) {
	return nil, nil
}

func (f *fakeStore) DeleteChecksOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, cutoff)
	return 7, nil
}

func (f *fakeStore) checkCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.checks)
}

func dueMonitor(id, url string) *model.Monitor {
	return &model.Monitor{
		ID:             id,
		Name:           id,
		URL:            url,
		Method:         "GET",
		IntervalSec:    300,
		TimeoutSec:     2,
		ExpectedStatus: 200,
		Active:         true,
		NextCheckAt:    time.Now().Add(-time.Second),
	}
}

func newTestScheduler(st *fakeStore) *Scheduler {
	cfg := &config.Config{AlertTimeout: time.Second}
	return New(st, probe.NewExecutor(st), alert.NewDispatcher(st, cfg), nil, time.Minute, 4)
}

func TestScanOnceSchedulesDueMonitors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	st := newFakeStore(dueMonitor("m1", srv.URL), dueMonitor("m2", srv.URL))
	// m3 is not due yet.
	notDue := dueMonitor("m3", srv.URL)
	notDue.NextCheckAt = time.Now().Add(time.Hour)
	st.monitors["m3"] = notDue

	s := newTestScheduler(st)
	if got := s.ScanOnce(context.Background()); got != 2 {
		t.Errorf("scheduled %d, want 2", got)
	}
	s.pool.Stop()

	if st.checkCount() != 2 {
		t.Errorf("recorded %d checks, want 2", st.checkCount())
	}
}

func TestOverlappingScansClaimOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	st := newFakeStore(dueMonitor("m1", srv.URL))
	s := newTestScheduler(st)

	var wg sync.WaitGroup
	total := make(chan int, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			total <- s.ScanOnce(context.Background())
		}()
	}
	wg.Wait()
	close(total)

	sum := 0
	for n := range total {
		sum += n
	}
	if sum != 1 {
		t.Errorf("overlapping scans scheduled %d probes, want exactly 1", sum)
	}
	s.pool.Stop()

	if st.checkCount() != 1 {
		t.Errorf("recorded %d checks, want 1", st.checkCount())
	}
}

func TestScanOnceSurvivesStoreFailure(t *testing.T) {
	st := newFakeStore()
	st.dueErr = errors.New("connection refused")

	s := newTestScheduler(st)
	if got := s.ScanOnce(context.Background()); got != 0 {
		t.Errorf("scheduled %d on store failure, want 0", got)
	}

	// The next tick succeeds once the store recovers.
	st.mu.Lock()
	st.dueErr = nil
	st.mu.Unlock()
	if got := s.ScanOnce(context.Background()); got != 0 {
		t.Errorf("scheduled %d with no due monitors, want 0", got)
	}
	s.pool.Stop()
}

func TestPausedMonitorNotScheduled(t *testing.T) {
	paused := dueMonitor("m1", "http://unused.local")
	paused.Active = false

	st := newFakeStore(paused)
	s := newTestScheduler(st)
	if got := s.ScanOnce(context.Background()); got != 0 {
		t.Errorf("scheduled %d, want 0 for paused monitor", got)
	}
	s.pool.Stop()
}

func TestSweeperUsesRetentionHorizon(t *testing.T) {
	st := newFakeStore()
	sw := NewSweeper(st, 90*24*time.Hour)

	n, err := sw.Sweep(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 7 {
		t.Errorf("Sweep returned %d, want 7", n)
	}

	if len(st.deleted) != 1 {
		t.Fatalf("DeleteChecksOlderThan called %d times, want 1", len(st.deleted))
	}
	want := time.Now().UTC().Add(-90 * 24 * time.Hour)
	if diff := st.deleted[0].Sub(want); diff < -time.Minute || diff > time.Minute {
		t.Errorf("cutoff = %v, want ~%v", st.deleted[0], want)
	}
}
