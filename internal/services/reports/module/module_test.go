package module

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storeuptime/internal/modkit"
	"storeuptime/internal/modkit/repokit"
	"storeuptime/internal/platform/config"
	perr "storeuptime/internal/platform/errors"
	phttp "storeuptime/internal/platform/net/http"
	"storeuptime/internal/platform/testkit"
	"storeuptime/internal/services/reports/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	goredis "github.com/redis/go-redis/v9"
)

// brokenTx fails every transaction with a non retryable error
type brokenTx struct{ repokit.Queryer }

func (brokenTx) Tx(context.Context, func(repokit.Queryer) error) error {
	return perr.New(perr.ErrorCodeParse, "bad hours")
}

func deps(t *testing.T) modkit.Deps {
	t.Helper()
	t.Setenv("CORE_API_REPORT_DIR", t.TempDir())
	return modkit.Deps{Cfg: config.New(), PG: brokenTx{}}
}

func TestFromConfig_Defaults(t *testing.T) {
	o := FromConfig(config.New())
	if o.Dir != "./reports" || o.Registry != RegistryMemory || o.Observations != ObservationsPG {
		t.Fatalf("defaults %+v", o)
	}
	if o.Retries != 3 || o.RetryBase != 500*time.Millisecond || o.Cron != "" || o.Retention != 0 {
		t.Fatalf("defaults %+v", o)
	}

	t.Setenv("CORE_API_REPORT_REGISTRY", "Redis")
	t.Setenv("CORE_API_REPORT_RETENTION", "24h")
	o = FromConfig(config.New())
	if o.Registry != RegistryRedis || o.Retention != 24*time.Hour {
		t.Fatalf("overrides %+v", o)
	}

	t.Setenv("CORE_API_REPORT_OBSERVATIONS", "mysql")
	testkit.MustPanic(t, func() { FromConfig(config.New()) })
}

func TestNew_RequiresBackends(t *testing.T) {
	d := deps(t)
	d.PG = nil
	testkit.MustPanic(t, func() { New(d) })

	d = deps(t)
	t.Setenv("CORE_API_REPORT_REGISTRY", "redis")
	testkit.MustPanic(t, func() { New(d) })

	t.Setenv("CORE_API_REPORT_REGISTRY", "memory")
	t.Setenv("CORE_API_REPORT_OBSERVATIONS", "clickhouse")
	testkit.MustPanic(t, func() { New(d) })

	t.Setenv("CORE_API_REPORT_OBSERVATIONS", "pg")
	t.Setenv("CORE_API_REPORT_CRON", "every day")
	testkit.MustPanic(t, func() { New(d) })
}

func TestModule_RoutesAndLifecycle(t *testing.T) {
	t.Setenv("CORE_API_REPORT_CRON", "@hourly")
	m := New(deps(t))
	if m.Name() != "reports" || m.Prefix() != "/reports" {
		t.Fatalf("name %q prefix %q", m.Name(), m.Prefix())
	}
	if _, ok := m.Ports().(Ports); !ok {
		t.Fatalf("ports %T", m.Ports())
	}

	mux := chi.NewRouter()
	r := phttp.AdaptChi(mux)
	m.MountRoutes(r)
	m.MountLegacy(r)
	m.Start()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/reports/", nil))
	if rec.Code != http.StatusAccepted || !strings.Contains(rec.Body.String(), "report_id") {
		t.Fatalf("submit %d %q", rec.Code, rec.Body.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	port := m.Ports().(Ports)
	job, err := m.Service().RunNow(ctx)
	if err != nil {
		t.Fatalf("run now: %v", err)
	}
	if job.Status != domain.StatusFailed || !strings.Contains(job.Error, "bad hours") {
		t.Fatalf("job %+v", job)
	}
	got, err := port.Reports.Retrieve(ctx, job.ID)
	if err != nil || got.Status != domain.StatusFailed {
		t.Fatalf("retrieve %+v %v", got, err)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/get_report?report_id="+job.ID, nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"Failed"`) {
		t.Fatalf("legacy %d %q", rec.Code, rec.Body.String())
	}
}

func TestModule_RedisRegistry(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	d := deps(t)
	d.RDS = rdb
	t.Setenv("CORE_API_REPORT_REGISTRY", "redis")
	m := New(d)

	job, err := m.Service().RunNow(context.Background())
	if err != nil {
		t.Fatalf("run now: %v", err)
	}
	if !mr.Exists("storeuptime:report:" + job.ID) {
		t.Fatalf("job not stored in redis")
	}
	if st := mr.HGet("storeuptime:report:"+job.ID, "status"); st != string(domain.StatusFailed) {
		t.Fatalf("status %q", st)
	}
}
