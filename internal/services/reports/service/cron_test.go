package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	perr "storeuptime/internal/platform/errors"
	"storeuptime/internal/services/reports/domain"
	"storeuptime/internal/services/reports/guardrails"
)

// stubPort hands out ids and reports whatever status is set
type stubPort struct {
	n         int
	status    domain.JobStatus
	submitErr error
}

func (s *stubPort) Submit(context.Context) (string, error) {
	if s.submitErr != nil {
		return "", s.submitErr
	}
	s.n++
	return fmt.Sprintf("r%d", s.n), nil
}

func (s *stubPort) Retrieve(_ context.Context, id string) (domain.Job, error) {
	return domain.Job{ID: id, Status: s.status}, nil
}

func (s *stubPort) Export(context.Context, domain.Job, string) (domain.Download, error) {
	return domain.Download{}, nil
}

func TestParseSchedule(t *testing.T) {
	for _, ok := range []string{"@hourly", "*/15 * * * *", "0 3 * * 1-5"} {
		if _, err := ParseSchedule(ok); err != nil {
			t.Fatalf("ParseSchedule(%q): %v", ok, err)
		}
	}
	_, err := ParseSchedule("every tuesday")
	if perr.CodeOf(err) != perr.ErrorCodeValidation {
		t.Fatalf("want validation error, got %v", err)
	}
	if _, err := NewTrigger(&stubPort{}, "* * *"); err == nil {
		t.Fatalf("NewTrigger should reject a bad expression")
	}
}

func TestTrigger_SkipsWhileRunning(t *testing.T) {
	port := &stubPort{status: domain.StatusRunning}
	tr, err := NewTrigger(port, "@every 1h")
	if err != nil {
		t.Fatalf("NewTrigger: %v", err)
	}
	ctx := context.Background()

	if id := tr.Fire(ctx); id != "r1" {
		t.Fatalf("first tick = %q", id)
	}
	if id := tr.Fire(ctx); id != "" {
		t.Fatalf("tick while running should skip, got %q", id)
	}
	port.status = domain.StatusComplete
	if id := tr.Fire(ctx); id != "r2" {
		t.Fatalf("tick after completion = %q", id)
	}

	port.submitErr = errors.New("registry down")
	port.status = domain.StatusFailed
	if id := tr.Fire(ctx); id != "" {
		t.Fatalf("failed submit should return empty id, got %q", id)
	}

	tr.Start()
	if err := tr.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestTrigger_TickUnderLease(t *testing.T) {
	claimed := map[time.Time]bool{}
	lease := func(ctx context.Context, tick time.Time, do func(context.Context) error) error {
		if claimed[tick] {
			return guardrails.ErrLeaseHeld
		}
		claimed[tick] = true
		return do(ctx)
	}
	port := &stubPort{status: domain.StatusComplete}
	tr, err := NewTrigger(port, "*/5 * * * *", WithLease(lease))
	if err != nil {
		t.Fatalf("NewTrigger: %v", err)
	}
	ctx := context.Background()
	at := time.Date(2024, 1, 8, 10, 5, 0, 0, time.UTC)

	if id := tr.Tick(ctx, at); id != "r1" {
		t.Fatalf("first replica = %q", id)
	}
	// a second replica firing late in the same minute loses the claim
	if id := tr.Tick(ctx, at.Add(700*time.Millisecond)); id != "" {
		t.Fatalf("second replica fired %q", id)
	}
	if id := tr.Tick(ctx, at.Add(5*time.Minute)); id != "r2" {
		t.Fatalf("next tick = %q", id)
	}

	failing := func(context.Context, time.Time, func(context.Context) error) error {
		return errors.New("db down")
	}
	tr, _ = NewTrigger(port, "@hourly", WithLease(failing))
	if id := tr.Tick(ctx, at); id != "" || port.n != 2 {
		t.Fatalf("tick with a broken lease fired %q (%d submits)", id, port.n)
	}
}
