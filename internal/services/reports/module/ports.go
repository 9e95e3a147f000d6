package module

import (
	"context"

	"storeuptime/internal/services/reports/domain"
	"storeuptime/internal/services/reports/service"
)

// Ports defines the reports module ports
type Ports struct {
	Reports domain.ServicePort
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

type adaptReportsPort struct{ svc service.Service }

// Submit starts a report in the background
func (a adaptReportsPort) Submit(ctx context.Context) (string, error) { return a.svc.Submit(ctx) }

// Retrieve returns the job for id
func (a adaptReportsPort) Retrieve(ctx context.Context, id string) (domain.Job, error) {
	return a.svc.Retrieve(ctx, id)
}

// Export opens the artifact of a complete job
func (a adaptReportsPort) Export(ctx context.Context, job domain.Job, format string) (domain.Download, error) {
	return a.svc.Export(ctx, job, format)
}
