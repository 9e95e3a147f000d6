package registry

import (
	"context"
	"testing"

	perr "storeuptime/internal/platform/errors"
	"storeuptime/internal/services/reports/domain"
)

// exercise runs the lifecycle every registry must honor
func exercise(t *testing.T, reg domain.Registry) {
	t.Helper()
	ctx := context.Background()

	if _, err := reg.Get(ctx, "missing"); perr.CodeOf(err) != perr.ErrorCodeNotFound {
		t.Fatalf("unknown id: want not found, got %v", err)
	}

	if err := reg.Create(ctx, domain.Job{ID: "r1"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := reg.Create(ctx, domain.Job{ID: "r1"}); perr.CodeOf(err) != perr.ErrorCodeConflict {
		t.Fatalf("duplicate create: want conflict, got %v", err)
	}

	job, err := reg.Get(ctx, "r1")
	if err != nil || job.Status != domain.StatusRunning || job.SubmittedAt.IsZero() {
		t.Fatalf("running job = %+v, %v", job, err)
	}

	if err := reg.Finish(ctx, domain.Job{ID: "r1", Status: domain.StatusRunning}); perr.CodeOf(err) != perr.ErrorCodeValidation {
		t.Fatalf("finish as Running: want validation, got %v", err)
	}
	if err := reg.Finish(ctx, domain.Job{ID: "nope", Status: domain.StatusFailed}); perr.CodeOf(err) != perr.ErrorCodeNotFound {
		t.Fatalf("finish unknown: want not found, got %v", err)
	}

	done := domain.Job{ID: "r1", Status: domain.StatusComplete, ArtifactPath: "/reports/r1.csv", Stores: 3}
	if err := reg.Finish(ctx, done); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if err := reg.Finish(ctx, domain.Job{ID: "r1", Status: domain.StatusFailed, Error: "late"}); perr.CodeOf(err) != perr.ErrorCodeConflict {
		t.Fatalf("second finish: want conflict, got %v", err)
	}

	// retrieval is repeatable
	for i := 0; i < 2; i++ {
		job, err = reg.Get(ctx, "r1")
		if err != nil {
			t.Fatalf("Get #%d: %v", i, err)
		}
		if job.Status != domain.StatusComplete || job.ArtifactPath != done.ArtifactPath || job.Stores != 3 || job.Error != "" {
			t.Fatalf("Get #%d = %+v", i, job)
		}
		if job.FinishedAt.IsZero() {
			t.Fatalf("finished_at not recorded")
		}
	}

	if err := reg.Create(ctx, domain.Job{ID: "r2"}); err != nil {
		t.Fatalf("Create r2: %v", err)
	}
	if err := reg.Finish(ctx, domain.Job{ID: "r2", Status: domain.StatusFailed, Error: "store 7 has no timezone"}); err != nil {
		t.Fatalf("Finish r2: %v", err)
	}
	job, err = reg.Get(ctx, "r2")
	if err != nil || job.Status != domain.StatusFailed || job.Error != "store 7 has no timezone" || job.ArtifactPath != "" {
		t.Fatalf("failed job = %+v, %v", job, err)
	}

	if err := reg.Create(ctx, domain.Job{}); perr.CodeOf(err) != perr.ErrorCodeValidation {
		t.Fatalf("empty id: want validation, got %v", err)
	}
}
