package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"

	"github.com/fitfuel/fitfuel-server/internal/blob"
	"github.com/fitfuel/fitfuel-server/internal/config"
	"github.com/fitfuel/fitfuel-server/internal/storage"
	"github.com/fitfuel/fitfuel-server/internal/storage/memory"
	"github.com/google/uuid"
)

type testEnv struct {
	service  *Service
	reports  *memory.ReportsMemoryStorage
	progress *memory.ProgressMemoryStorage
	blobs    *blob.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		reports:  memory.NewReportsMemoryStorage(),
		progress: memory.NewProgressMemoryStorage(),
		blobs:    blob.NewMemoryStore(),
	}
	cfg := &config.Config{ReportsMaxRangeDays: 90}
	env.service = NewService(cfg, env.reports, env.progress, env.blobs)
	return env
}

func (e *testEnv) seedDay(t *testing.T, userID uuid.UUID, date string, intake, burned float64, steps int) {
	t.Helper()
	ctx := context.Background()

	err := e.progress.ApplyDelta(ctx, userID, date, storage.ProgressDelta{
		Calories: intake,
		Burned:   burned,
	})
	if err != nil {
		t.Fatalf("seed delta %s: %v", date, err)
	}
	if steps > 0 {
		if _, err := e.progress.UpsertAncillary(ctx, userID, date, &steps, nil, nil); err != nil {
			t.Fatalf("seed steps %s: %v", date, err)
		}
	}
}

func TestCreateCSVReport(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	env.seedDay(t, userID, "2026-03-08", 1800, 300, 8000)
	env.seedDay(t, userID, "2026-03-09", 2100, 450, 10000)

	report, err := env.service.Create(ctx, userID, CreateReportRequest{
		Format: "csv",
		From:   "2026-03-08",
		To:     "2026-03-10",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if report.Status != "ready" || report.Format != FormatCSV {
		t.Fatalf("unexpected report meta: %+v", report)
	}
	if report.SizeBytes == 0 {
		t.Fatal("expected non-empty report")
	}

	url, data, contentType, filename, err := env.service.Download(ctx, userID, report.ID)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if url != "" {
		t.Fatalf("memory store must not presign, got %q", url)
	}
	if contentType != "text/csv" || filename != "report_2026-03-08_2026-03-10.csv" {
		t.Fatalf("unexpected download meta: %s %s", contentType, filename)
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	// Header plus the two seeded days; the empty third day has no row.
	if len(records) != 3 {
		t.Fatalf("expected 3 csv records, got %d", len(records))
	}
	if records[1][0] != "2026-03-08" || records[1][1] != "1800.0" {
		t.Fatalf("unexpected first data row: %v", records[1])
	}
	if records[2][6] != "10000" {
		t.Fatalf("expected steps column 10000, got %v", records[2])
	}
}

func TestCreatePDFReport(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()
	env.seedDay(t, userID, "2026-03-09", 2000, 400, 9000)

	report, err := env.service.Create(ctx, userID, CreateReportRequest{
		Format: "pdf",
		From:   "2026-03-01",
		To:     "2026-03-10",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, data, contentType, _, err := env.service.Download(ctx, userID, report.ID)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if contentType != "application/pdf" {
		t.Fatalf("unexpected content type %s", contentType)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("expected a PDF document, got %q", data[:8])
	}
}

func TestCreateReportValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	tests := []struct {
		name    string
		req     CreateReportRequest
		wantErr error
	}{
		{"bad format", CreateReportRequest{Format: "xlsx", From: "2026-03-01", To: "2026-03-02"}, ErrInvalidFormat},
		{"bad from", CreateReportRequest{Format: "csv", From: "01.03.2026", To: "2026-03-02"}, ErrInvalidRange},
		{"inverted range", CreateReportRequest{Format: "csv", From: "2026-03-05", To: "2026-03-01"}, ErrInvalidRange},
		{"too wide", CreateReportRequest{Format: "csv", From: "2025-01-01", To: "2026-03-01"}, ErrRangeTooWide},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.service.Create(ctx, userID, tt.req); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDownloadOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := uuid.New()

	report, err := env.service.Create(ctx, owner, CreateReportRequest{
		Format: "csv",
		From:   "2026-03-01",
		To:     "2026-03-02",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, _, _, _, err := env.service.Download(ctx, uuid.New(), report.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("stranger must not download, got %v", err)
	}
}

func TestDeleteReportRemovesObject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	report, err := env.service.Create(ctx, userID, CreateReportRequest{
		Format: "csv",
		From:   "2026-03-01",
		To:     "2026-03-02",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := env.service.Delete(ctx, userID, report.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := env.service.Delete(ctx, userID, report.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}

	reports, err := env.service.List(ctx, userID, 50, 0)
	if err != nil || len(reports) != 0 {
		t.Fatalf("expected empty list after delete, got %+v (%v)", reports, err)
	}
}
