package reports

import (
	"time"

	"github.com/fitfuel/fitfuel-server/internal/storage"
	"github.com/google/uuid"
)

const (
	FormatPDF = "pdf"
	FormatCSV = "csv"
)

type ReportDTO struct {
	ID        uuid.UUID `json:"id"`
	Format    string    `json:"format"`
	FromDate  string    `json:"from"`
	ToDate    string    `json:"to"`
	SizeBytes int64     `json:"size_bytes"`
	Status    string    `json:"status"`
	Error     *string   `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type ReportListResponse struct {
	Reports []ReportDTO `json:"reports"`
}

type CreateReportRequest struct {
	Format string `json:"format"`
	From   string `json:"from"`
	To     string `json:"to"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func toDTO(r *storage.ReportMeta) ReportDTO {
	return ReportDTO{
		ID:        r.ID,
		Format:    r.Format,
		FromDate:  r.FromDate,
		ToDate:    r.ToDate,
		SizeBytes: r.SizeBytes,
		Status:    r.Status,
		Error:     r.Error,
		CreatedAt: r.CreatedAt,
	}
}
