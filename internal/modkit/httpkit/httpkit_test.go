package httpkit

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storeuptime/internal/platform/config"
	"storeuptime/internal/platform/metrics"
	phttp "storeuptime/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

type fmtQuery struct {
	Format string `query:"format" validate:"omitempty,oneof=csv xlsx"`
}

func newRouter(t *testing.T) (Router, func(method, path string) *httptest.ResponseRecorder) {
	t.Helper()
	r := phttp.AdaptChi(chi.NewRouter())
	return r, func(method, path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		r.Mux().ServeHTTP(rec, httptest.NewRequest(method, path, nil))
		return rec
	}
}

func TestMountUnder_PrefixAndMiddleware(t *testing.T) {
	r, do := newRouter(t)
	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("X-Mod", "reports")
			next.ServeHTTP(w, req)
		})
	}
	MountUnder(r, "api/v1/", []func(http.Handler) http.Handler{mw}, func(sub Router) {
		Get(sub, "/reports/{id}", func(req *http.Request) (any, error) { return URLParam(req, "id"), nil })
	})
	MountUnder(r, "", nil, func(sub Router) {
		Post(sub, "/trigger", func(*http.Request) (any, error) { return Accepted("queued"), nil })
	})

	rec := do("GET", "/api/v1/reports/abc")
	if rec.Code != 200 || rec.Header().Get("X-Mod") != "reports" || !strings.Contains(rec.Body.String(), `"data":"abc"`) {
		t.Fatalf("prefixed route: %d %v %q", rec.Code, rec.Header(), rec.Body.String())
	}
	if rec := do("POST", "/trigger"); rec.Code != http.StatusAccepted || rec.Header().Get("X-Mod") != "" {
		t.Fatalf("group route: %d %v", rec.Code, rec.Header())
	}
}

func TestCall_ErrorsAndSugar(t *testing.T) {
	r, do := newRouter(t)
	Get(r, "/boom", func(*http.Request) (any, error) { return nil, errors.New("boom") })
	GetQuery(r, "/q", func(_ *http.Request, q fmtQuery) Response { return OK(q.Format) })

	if rec := do("GET", "/boom"); rec.Code != http.StatusInternalServerError {
		t.Fatalf("error code %d", rec.Code)
	}
	if rec := do("GET", "/q?format=csv"); rec.Code != 200 || !strings.Contains(rec.Body.String(), `"csv"`) {
		t.Fatalf("query route %d %q", rec.Code, rec.Body.String())
	}
	if rec := do("GET", "/q?format=doc"); rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid query code %d", rec.Code)
	}
}

func TestCommonStack_ServesHealthAndCountsRoutes(t *testing.T) {
	m := metrics.New()
	mux := chi.NewRouter()
	mux.Use(CommonStack(config.New().Prefix("CORE_API_"), m)...)
	r := phttp.AdaptChi(mux)
	Get(r, "/x", func(*http.Request) (any, error) { return NoContent(), nil })

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("health code %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/x", nil))
	if rec.Code != http.StatusNoContent || rec.Header().Get("Cache-Control") == "" {
		t.Fatalf("stack response %d %v", rec.Code, rec.Header())
	}
	if n, _ := m.Registry().Gather(); len(n) == 0 {
		t.Fatalf("no metric families gathered")
	}
}
