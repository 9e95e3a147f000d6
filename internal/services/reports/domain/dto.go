package domain

// Artifact formats served by the download routes
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// SubmitResponse is returned when a report job is accepted
type SubmitResponse struct {
	ReportID string `json:"report_id" example:"3b241101-e2bb-4255-8caf-4136c566a962"`
}

// StatusResponse describes a report that has no file to download
type StatusResponse struct {
	ReportID string    `json:"report_id" example:"3b241101-e2bb-4255-8caf-4136c566a962"`
	Status   JobStatus `json:"status" example:"Running"`
	Error    string    `json:"error,omitempty"`
}

// RetrieveQuery selects the download format
type RetrieveQuery struct {
	Format string `query:"format" validate:"omitempty,oneof=csv xlsx"`
}

// LegacyQuery is the query string of GET /get_report
type LegacyQuery struct {
	ReportID string `query:"report_id" validate:"required"`
	Format   string `query:"format" validate:"omitempty,oneof=csv xlsx"`
}
