// Package http provides http transport for report jobs
package http

import (
	stdhttp "net/http"

	"storeuptime/internal/modkit/httpkit"
	"storeuptime/internal/services/reports/domain"
)

// StatusHeader carries the job status on every retrieval response
const StatusHeader = "X-Report-Status"

// Register mounts the canonical report routes
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}

	// start a batch report
	httpkit.Post(r, "/", h.submit)

	// status or file of a report
	httpkit.GetQuery(r, "/{id}", h.retrieve)
}

// RegisterLegacy mounts the unversioned trigger and poll routes
func RegisterLegacy(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}
	httpkit.Get(r, "/trigger_report", h.trigger)
	httpkit.GetQuery(r, "/get_report", h.legacyRetrieve)
}

type handlers struct{ svc domain.ServicePort }

// swagger:route POST /api/v1/reports Reports reportsSubmit
// @Summary Start a batch uptime report
// @Tags Reports
// @Produce json
// @Success 202 {object} domain.SubmitResponse "accepted"
// @Router /api/v1/reports [post]
func (h *handlers) submit(r *stdhttp.Request) (any, error) {
	id, err := h.svc.Submit(r.Context())
	if err != nil {
		return nil, err
	}
	return httpkit.Accepted(domain.SubmitResponse{ReportID: id}), nil
}

// trigger is the legacy GET form of submit and answers 200
func (h *handlers) trigger(r *stdhttp.Request) (any, error) {
	id, err := h.svc.Submit(r.Context())
	if err != nil {
		return nil, err
	}
	return domain.SubmitResponse{ReportID: id}, nil
}

// swagger:route GET /api/v1/reports/{id} Reports reportsRetrieve
// @Summary Report status, or the report file once complete
// @Tags Reports
// @Produce json,text/csv
// @Param id path string true "report id"
// @Param format query string false "csv or xlsx"
// @Success 200 {object} domain.StatusResponse "running or failed"
// @Success 204 "complete without rows"
// @Failure 404 "unknown report"
// @Router /api/v1/reports/{id} [get]
func (h *handlers) retrieve(r *stdhttp.Request, q domain.RetrieveQuery) httpkit.Response {
	return h.respond(r, httpkit.URLParam(r, "id"), q.Format)
}

func (h *handlers) legacyRetrieve(r *stdhttp.Request, q domain.LegacyQuery) httpkit.Response {
	return h.respond(r, q.ReportID, q.Format)
}

func (h *handlers) respond(r *stdhttp.Request, id, format string) httpkit.Response {
	job, err := h.svc.Retrieve(r.Context(), id)
	if err != nil {
		return httpkit.Error(err)
	}

	switch {
	case job.Status != domain.StatusComplete:
		return httpkit.OK(domain.StatusResponse{ReportID: job.ID, Status: job.Status, Error: job.Error}).
			WithHeader(StatusHeader, string(job.Status))
	case !job.HasArtifact():
		return httpkit.NoContent().WithHeader(StatusHeader, string(job.Status))
	}

	d, err := h.svc.Export(r.Context(), job, format)
	if err != nil {
		return httpkit.Error(err)
	}
	return httpkit.Download(httpkit.Attachment{
		Name:        d.Name,
		ContentType: d.ContentType,
		Path:        d.Path,
		Bytes:       d.Bytes,
	}).WithHeader(StatusHeader, string(job.Status))
}
