package http

import (
	"context"
	stdhttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	perr "storeuptime/internal/platform/errors"
	phttp "storeuptime/internal/platform/net/http"
	"storeuptime/internal/services/reports/domain"

	"github.com/go-chi/chi/v5"
)

type stubPort struct {
	jobs      map[string]domain.Job
	submitErr error
	downloads map[string]domain.Download
	formats   []string
	submits   int
}

func (s *stubPort) Submit(context.Context) (string, error) {
	s.submits++
	if s.submitErr != nil {
		return "", s.submitErr
	}
	return "r-1", nil
}

func (s *stubPort) Retrieve(_ context.Context, id string) (domain.Job, error) {
	j, ok := s.jobs[id]
	if !ok {
		return domain.Job{}, perr.Newf(perr.ErrorCodeNotFound, "report %s not found", id)
	}
	return j, nil
}

func (s *stubPort) Export(_ context.Context, j domain.Job, format string) (domain.Download, error) {
	s.formats = append(s.formats, format)
	d, ok := s.downloads[j.ID]
	if !ok {
		return domain.Download{}, perr.New(perr.ErrorCodeNotFound, "artifact missing")
	}
	return d, nil
}

func serve(t *testing.T, port domain.ServicePort) func(method, path string) *httptest.ResponseRecorder {
	t.Helper()
	mux := chi.NewRouter()
	r := phttp.AdaptChi(mux)
	r.Route("/reports", func(sub phttp.Router) { Register(sub, port) })
	RegisterLegacy(r, port)
	return func(method, path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
		return rec
	}
}

func csvFile(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "done.csv")
	if err := os.WriteFile(p, []byte(strings.Join(domain.ReportColumns, ",")+"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestSubmit(t *testing.T) {
	port := &stubPort{}
	do := serve(t, port)

	rec := do("POST", "/reports/")
	if rec.Code != stdhttp.StatusAccepted || !strings.Contains(rec.Body.String(), `"report_id":"r-1"`) {
		t.Fatalf("submit: %d %q", rec.Code, rec.Body.String())
	}

	rec = do("GET", "/trigger_report")
	if rec.Code != stdhttp.StatusOK || !strings.Contains(rec.Body.String(), `"report_id":"r-1"`) {
		t.Fatalf("legacy trigger: %d %q", rec.Code, rec.Body.String())
	}
	if port.submits != 2 {
		t.Fatalf("submits %d", port.submits)
	}

	port.submitErr = perr.New(perr.ErrorCodeUnavailable, "registry down")
	if rec := do("POST", "/reports/"); rec.Code != stdhttp.StatusServiceUnavailable {
		t.Fatalf("submit error code %d", rec.Code)
	}
}

func TestRetrieve_States(t *testing.T) {
	path := csvFile(t)
	port := &stubPort{
		jobs: map[string]domain.Job{
			"run":   {ID: "run", Status: domain.StatusRunning},
			"fail":  {ID: "fail", Status: domain.StatusFailed, Error: "store s1: boom"},
			"empty": {ID: "empty", Status: domain.StatusComplete},
			"done":  {ID: "done", Status: domain.StatusComplete, ArtifactPath: path},
		},
		downloads: map[string]domain.Download{
			"done": {Name: "done.csv", ContentType: "text/csv; charset=utf-8", Path: path},
		},
	}
	do := serve(t, port)

	rec := do("GET", "/reports/run")
	if rec.Code != 200 || rec.Header().Get(StatusHeader) != "Running" || !strings.Contains(rec.Body.String(), `"status":"Running"`) {
		t.Fatalf("running: %d %v %q", rec.Code, rec.Header(), rec.Body.String())
	}

	rec = do("GET", "/reports/fail")
	if rec.Code != 200 || !strings.Contains(rec.Body.String(), `"error":"store s1: boom"`) {
		t.Fatalf("failed: %d %q", rec.Code, rec.Body.String())
	}

	rec = do("GET", "/reports/empty")
	if rec.Code != stdhttp.StatusNoContent || rec.Header().Get(StatusHeader) != "Complete" || rec.Body.Len() != 0 {
		t.Fatalf("empty: %d %v %q", rec.Code, rec.Header(), rec.Body.String())
	}

	rec = do("GET", "/reports/done")
	if rec.Code != 200 || rec.Header().Get(StatusHeader) != "Complete" {
		t.Fatalf("done: %d %v", rec.Code, rec.Header())
	}
	if !strings.HasPrefix(rec.Body.String(), "store_id,uptime_last_hour") {
		t.Fatalf("done body %q", rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "done.csv") {
		t.Fatalf("disposition %q", cd)
	}

	if rec := do("GET", "/reports/nope"); rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("unknown: %d", rec.Code)
	}
}

func TestRetrieve_FormatAndLegacy(t *testing.T) {
	path := csvFile(t)
	port := &stubPort{
		jobs: map[string]domain.Job{"done": {ID: "done", Status: domain.StatusComplete, ArtifactPath: path}},
		downloads: map[string]domain.Download{
			"done": {Name: "done.xlsx", ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", Bytes: []byte("PK")},
		},
	}
	do := serve(t, port)

	rec := do("GET", "/reports/done?format=xlsx")
	if rec.Code != 200 || rec.Body.String() != "PK" || !strings.Contains(rec.Header().Get("Content-Type"), "spreadsheetml") {
		t.Fatalf("xlsx: %d %v %q", rec.Code, rec.Header(), rec.Body.String())
	}
	if rec := do("GET", "/reports/done?format=pdf"); rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("bad format: %d", rec.Code)
	}

	if rec := do("GET", "/get_report?report_id=done"); rec.Code != 200 || rec.Header().Get(StatusHeader) != "Complete" {
		t.Fatalf("legacy: %d %v", rec.Code, rec.Header())
	}
	if rec := do("GET", "/get_report"); rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("legacy without id: %d", rec.Code)
	}
	if rec := do("GET", "/get_report?report_id=zzz"); rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("legacy unknown: %d", rec.Code)
	}
	if len(port.formats) != 2 || port.formats[0] != "xlsx" || port.formats[1] != "" {
		t.Fatalf("formats %v", port.formats)
	}
}
