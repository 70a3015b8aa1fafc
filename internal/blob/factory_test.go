package blob

import (
	"bytes"
	"context"
	"log"
	"strings"
	"testing"

	appcfg "github.com/fitfuel/fitfuel-server/internal/config"
)

func TestNewBlobStoreLocalForced(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)

	store, mode, err := NewBlobStore(appcfg.BlobConfig{
		Mode: appcfg.BlobModeLocal,
		S3:   appcfg.S3Config{},
	}, logger)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if mode != appcfg.BlobModeLocal {
		t.Fatalf("expected mode=local, got %s", mode)
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Fatalf("expected MemoryStore in local mode, got %T", store)
	}
	if !strings.Contains(buf.String(), "mode=local (forced)") {
		t.Fatalf("expected local mode log, got: %s", buf.String())
	}
}

func TestNewBlobStoreAutoEmptyS3FallsBackToLocal(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)

	_, mode, err := NewBlobStore(appcfg.BlobConfig{
		Mode: appcfg.BlobModeAuto,
		S3:   appcfg.S3Config{},
	}, logger)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if mode != appcfg.BlobModeLocal {
		t.Fatalf("expected fallback to local, got %s", mode)
	}
	if !strings.Contains(buf.String(), "S3 not configured") {
		t.Fatalf("expected fallback log, got: %s", buf.String())
	}
}

func TestNewBlobStoreS3Incomplete(t *testing.T) {
	_, _, err := NewBlobStore(appcfg.BlobConfig{
		Mode: appcfg.BlobModeS3,
		S3:   appcfg.S3Config{Endpoint: "https://s3.example.com"},
	}, nil)
	if err == nil {
		t.Fatal("expected error for incomplete forced S3 config")
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	size, err := store.PutObject(ctx, "products/img.png", []byte("png-bytes"), "image/png")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if size != int64(len("png-bytes")) {
		t.Fatalf("unexpected size %d", size)
	}

	data, err := store.GetObject(ctx, "products/img.png")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Fatalf("unexpected data %q", data)
	}

	ct, ok := store.ContentType("products/img.png")
	if !ok || ct != "image/png" {
		t.Fatalf("unexpected content type %q (%v)", ct, ok)
	}

	if err := store.DeleteObject(ctx, "products/img.png"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetObject(ctx, "products/img.png"); err == nil {
		t.Fatal("expected error after delete")
	}
}
