package reports

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/fitfuel/fitfuel-server/internal/blob"
	"github.com/fitfuel/fitfuel-server/internal/config"
	"github.com/fitfuel/fitfuel-server/internal/ledger"
	"github.com/fitfuel/fitfuel-server/internal/storage"
	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("report not found")
	ErrInvalidFormat  = errors.New("format must be pdf or csv")
	ErrInvalidRange   = errors.New("from and to must be YYYY-MM-DD with from <= to")
	ErrRangeTooWide   = errors.New("date range exceeds the allowed maximum")
	ErrReportNotReady = errors.New("report is not ready")
)

type Service struct {
	cfg       *config.Config
	storage   storage.ReportsStorage
	progress  storage.ProgressStorage
	blobs     blob.Store
	generator *Generator
}

func NewService(cfg *config.Config, reportsStorage storage.ReportsStorage,
	progress storage.ProgressStorage, blobs blob.Store) *Service {
	return &Service{
		cfg:       cfg,
		storage:   reportsStorage,
		progress:  progress,
		blobs:     blobs,
		generator: NewGenerator(),
	}
}

// Create renders a report over the requested range and stores it. The meta row
// is written even when the blob upload fails, with status "failed", so the
// client can see what happened.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req CreateReportRequest) (*ReportDTO, error) {
	format := strings.ToLower(strings.TrimSpace(req.Format))
	if format != FormatPDF && format != FormatCSV {
		return nil, ErrInvalidFormat
	}

	from, err := time.Parse(ledger.DateLayout, req.From)
	if err != nil {
		return nil, ErrInvalidRange
	}
	to, err := time.Parse(ledger.DateLayout, req.To)
	if err != nil || to.Before(from) {
		return nil, ErrInvalidRange
	}
	if days := int(to.Sub(from).Hours()/24) + 1; days > s.cfg.ReportsMaxRangeDays {
		return nil, ErrRangeTooWide
	}

	rows, err := s.progress.ListRange(ctx, userID, req.From, req.To)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress range: %w", err)
	}

	data, err := s.generator.Generate(format, req.From, req.To, rows)
	if err != nil {
		return nil, fmt.Errorf("failed to generate report: %w", err)
	}

	meta := &storage.ReportMeta{
		ID:        uuid.New(),
		UserID:    userID,
		Format:    format,
		FromDate:  req.From,
		ToDate:    req.To,
		SizeBytes: int64(len(data)),
		Status:    "ready",
		CreatedAt: time.Now().UTC(),
	}

	key := fmt.Sprintf("reports/%s/%s.%s", userID, meta.ID, format)
	if _, err := s.blobs.PutObject(ctx, key, data, contentTypeFor(format)); err != nil {
		msg := err.Error()
		meta.Status = "failed"
		meta.Error = &msg
		meta.SizeBytes = 0
	} else {
		meta.ObjectKey = &key
	}

	if err := s.storage.CreateReport(ctx, meta); err != nil {
		return nil, fmt.Errorf("failed to store report meta: %w", err)
	}

	dto := toDTO(meta)
	return &dto, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]ReportDTO, error) {
	rows, err := s.storage.ListReports(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	result := make([]ReportDTO, 0, len(rows))
	for i := range rows {
		result = append(result, toDTO(&rows[i]))
	}
	return result, nil
}

// Download returns a presigned URL when the blob store supports signing,
// otherwise the report bytes.
func (s *Service) Download(ctx context.Context, userID, reportID uuid.UUID) (url string, data []byte, contentType, filename string, err error) {
	meta, err := s.storage.GetReport(ctx, reportID)
	if err != nil || meta.UserID != userID {
		return "", nil, "", "", ErrNotFound
	}
	if meta.Status != "ready" || meta.ObjectKey == nil {
		return "", nil, "", "", ErrReportNotReady
	}

	filename = fmt.Sprintf("report_%s_%s.%s", meta.FromDate, meta.ToDate, meta.Format)

	url, err = s.blobs.PresignGet(ctx, *meta.ObjectKey, s.cfg.Blob.S3.PresignTTLSeconds)
	if err == nil && url != "" {
		return url, nil, "", filename, nil
	}

	data, err = s.blobs.GetObject(ctx, *meta.ObjectKey)
	if err != nil {
		return "", nil, "", "", fmt.Errorf("failed to read report: %w", err)
	}
	return "", data, contentTypeFor(meta.Format), filename, nil
}

func (s *Service) Delete(ctx context.Context, userID, reportID uuid.UUID) error {
	meta, err := s.storage.GetReport(ctx, reportID)
	if err != nil || meta.UserID != userID {
		return ErrNotFound
	}

	if err := s.storage.DeleteReport(ctx, reportID); err != nil {
		return ErrNotFound
	}

	if meta.ObjectKey != nil {
		if err := s.blobs.DeleteObject(ctx, *meta.ObjectKey); err != nil {
			log.Printf("reports: failed to delete object %s: %v", *meta.ObjectKey, err)
		}
	}
	return nil
}

func contentTypeFor(format string) string {
	if format == FormatPDF {
		return "application/pdf"
	}
	return "text/csv"
}
