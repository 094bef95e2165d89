package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Store abstracts asset persistence so services can run against a fake in
// tests.
type Store interface {
	Save(ctx context.Context, name string, src io.Reader) (string, error)
	Delete(ctx context.Context, relPath string) error
}

// Local writes uploaded assets under a single directory on disk. Saved paths
// are relative so they can be served from a static route and stored in the
// database without the deployment root leaking in.
type Local struct {
	root     string
	maxBytes int64
	now      func() time.Time
}

// NewLocal prepares the upload directory and verifies it is writable.
func NewLocal(root string, maxUploadMB int, now func() time.Time) (*Local, error) {
	if root == "" {
		return nil, errors.New("upload directory is required")
	}
	if now == nil {
		now = time.Now
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	probe := filepath.Join(root, ".write-probe")
	if err := os.WriteFile(probe, nil, 0o644); err != nil {
		return nil, fmt.Errorf("upload dir not writable: %w", err)
	}
	_ = os.Remove(probe)
	return &Local{
		root:     root,
		maxBytes: int64(maxUploadMB) * 1024 * 1024,
		now:      now,
	}, nil
}

// Save streams src to disk under a timestamped name derived from the original
// filename and returns the relative path.
func (l *Local) Save(ctx context.Context, name string, src io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	rel := fmt.Sprintf("%d-%s", l.now().UnixMilli(), sanitizeName(name))
	dst, err := os.Create(filepath.Join(l.root, rel))
	if err != nil {
		return "", fmt.Errorf("creating asset file: %w", err)
	}
	defer dst.Close()

	reader := src
	if l.maxBytes > 0 {
		reader = io.LimitReader(src, l.maxBytes+1)
	}
	written, err := io.Copy(dst, reader)
	if err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("writing asset: %w", err)
	}
	if l.maxBytes > 0 && written > l.maxBytes {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("asset exceeds %d bytes", l.maxBytes)
	}
	return rel, nil
}

// Delete removes a stored asset. A missing file is not an error; disposition
// flows call this best-effort.
func (l *Local) Delete(ctx context.Context, relPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	clean := sanitizeName(relPath)
	if clean == "" {
		return nil
	}
	err := os.Remove(filepath.Join(l.root, clean))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing asset: %w", err)
	}
	return nil
}

// Root returns the directory assets are written to, for static serving.
func (l *Local) Root() string { return l.root }

// SaveMultipart persists a multipart file header.
func (l *Local) SaveMultipart(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", errors.New("file is required")
	}
	if l.maxBytes > 0 && fh.Size > l.maxBytes {
		return "", fmt.Errorf("asset exceeds %d bytes", l.maxBytes)
	}
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("opening upload: %w", err)
	}
	defer src.Close()
	return l.Save(ctx, fh.Filename, src)
}

// sanitizeName strips any path components so stored names stay inside root.
func sanitizeName(name string) string {
	base := path.Base(filepath.ToSlash(strings.TrimSpace(name)))
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	return base
}
