package maintenance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"guestlens/backend/internal/telemetry"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fakeStore struct {
	mu      sync.Mutex
	expires []time.Time
	err     error
}

func (f *fakeStore) add(at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expires = append(f.expires, at)
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.expires)
}

func (f *fakeStore) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	var kept []time.Time
	var removed int64
	for _, at := range f.expires {
		if at.Before(before) {
			removed++
			continue
		}
		kept = append(kept, at)
	}
	f.expires = kept
	return removed, nil
}

type captureReporter struct {
	mu      sync.Mutex
	reports []telemetry.SweepReport
}

func (c *captureReporter) ReportSweep(_ context.Context, r telemetry.SweepReport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports = append(c.reports, r)
}

func TestSweeper_Sweep(t *testing.T) {
	clk := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	sessions := &fakeStore{}
	revocations := &fakeStore{}
	reporter := &captureReporter{}

	sessions.add(clk.Now().Add(-time.Hour))
	sessions.add(clk.Now().Add(-time.Minute))
	sessions.add(clk.Now().Add(time.Hour)) // still live
	revocations.add(clk.Now().Add(-time.Second))
	revocations.add(clk.Now()) // exactly now is not strictly before

	s, err := NewSweeper(sessions, revocations, clk, nil, reporter)
	if err != nil {
		t.Fatalf("NewSweeper: %v", err)
	}
	res, err := s.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if res.SessionsRemoved != 2 || res.RevocationsRemoved != 1 {
		t.Errorf("Sweep = %+v, want 2 sessions and 1 revocation removed", res)
	}
	if sessions.count() != 1 || revocations.count() != 1 {
		t.Errorf("kept %d sessions, %d revocations; want 1 each", sessions.count(), revocations.count())
	}

	// A second pass finds nothing.
	res, err = s.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep second pass: %v", err)
	}
	if res.SessionsRemoved != 0 || res.RevocationsRemoved != 0 {
		t.Errorf("second Sweep = %+v, want zero removals", res)
	}

	// Once the clock moves past the remaining expiries they go too.
	clk.Advance(2 * time.Hour)
	res, err = s.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep third pass: %v", err)
	}
	if res.SessionsRemoved != 1 || res.RevocationsRemoved != 1 {
		t.Errorf("third Sweep = %+v, want 1 each", res)
	}

	if len(reporter.reports) != 3 {
		t.Errorf("got %d sweep reports, want 3", len(reporter.reports))
	}
	if r := reporter.reports[0]; r.SessionsRemoved != 2 || r.RevocationsRemoved != 1 || r.Err != "" {
		t.Errorf("first report = %+v", r)
	}
}

func TestSweeper_SweepPartialFailure(t *testing.T) {
	clk := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	sessions := &fakeStore{err: errors.New("db down")}
	revocations := &fakeStore{}
	reporter := &captureReporter{}
	revocations.add(clk.Now().Add(-time.Minute))

	s, err := NewSweeper(sessions, revocations, clk, nil, reporter)
	if err != nil {
		t.Fatalf("NewSweeper: %v", err)
	}
	res, err := s.Sweep(context.Background())
	if err == nil {
		t.Fatal("Sweep succeeded with failing session store")
	}
	if res.RevocationsRemoved != 1 {
		t.Errorf("RevocationsRemoved = %d, want 1 despite session failure", res.RevocationsRemoved)
	}
	if len(reporter.reports) != 1 || reporter.reports[0].Err == "" {
		t.Errorf("failure not reported: %+v", reporter.reports)
	}
}

func TestSweeper_RunStopsOnCancel(t *testing.T) {
	clk := &fakeClock{t: time.Now().UTC()}
	s, err := NewSweeper(&fakeStore{}, &fakeStore{}, clk, nil, nil)
	if err != nil {
		t.Fatalf("NewSweeper: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
