package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func fixedNow() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func TestLocalSaveAndDelete(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir(), 1, fixedNow)
	if err != nil {
		t.Fatalf("new local: %v", err)
	}

	rel, err := store.Save(ctx, "photo.png", strings.NewReader("payload"))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasSuffix(rel, "-photo.png") {
		t.Fatalf("expected timestamped name, got %s", rel)
	}
	data, err := os.ReadFile(filepath.Join(store.Root(), rel))
	if err != nil {
		t.Fatalf("reading saved asset: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("unexpected content %q", data)
	}

	if err := store.Delete(ctx, rel); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(store.Root(), rel)); !os.IsNotExist(err) {
		t.Fatalf("expected asset gone, stat err=%v", err)
	}
}

func TestLocalDeleteMissingIsNoError(t *testing.T) {
	store, err := NewLocal(t.TempDir(), 1, nil)
	if err != nil {
		t.Fatalf("new local: %v", err)
	}
	if err := store.Delete(context.Background(), "never-existed.png"); err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}
}

func TestLocalSaveStripsPathComponents(t *testing.T) {
	store, err := NewLocal(t.TempDir(), 1, fixedNow)
	if err != nil {
		t.Fatalf("new local: %v", err)
	}
	rel, err := store.Save(context.Background(), "../../etc/passwd", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if strings.Contains(rel, "..") || strings.Contains(rel, "/") {
		t.Fatalf("expected sanitized name, got %s", rel)
	}
}

func TestLocalSaveRejectsOversize(t *testing.T) {
	store, err := NewLocal(t.TempDir(), 0, fixedNow)
	if err != nil {
		t.Fatalf("new local: %v", err)
	}
	store.maxBytes = 4
	if _, err := store.Save(context.Background(), "big.bin", strings.NewReader("too large")); err == nil {
		t.Fatalf("expected oversize rejection")
	}
	entries, err := os.ReadDir(store.Root())
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected partial file removed, found %d entries", len(entries))
	}
}
