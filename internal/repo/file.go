package repo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkordes/eventmap/internal/domain"
)

// fileSlotRepo keeps one file per slot in a directory.
// The file extension is fixed at construction (".json" or ".yaml") so the
// files on disk are readable by hand.
type fileSlotRepo struct {
	dir string
	ext string
}

// NewFileSlotRepo creates a file-backed SlotRepo rooted at dir, creating the
// directory if needed. ext is appended to every slot name.
func NewFileSlotRepo(dir, ext string) (SlotRepo, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("repo.NewFileSlotRepo: mkdir %s: %w", dir, err)
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return &fileSlotRepo{dir: dir, ext: ext}, nil
}

func (r *fileSlotRepo) path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid slot name %q", name)
	}
	return filepath.Join(r.dir, name+r.ext), nil
}

// Get reads the slot file.
func (r *fileSlotRepo) Get(_ context.Context, name string) ([]byte, error) {
	fn, err := r.path(name)
	if err != nil {
		return nil, fmt.Errorf("repo.SlotRepo.Get: %w", err)
	}
	data, err := os.ReadFile(fn)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("repo.SlotRepo.Get: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("repo.SlotRepo.Get: read %s: %w", fn, err)
	}
	return data, nil
}

// Put writes the slot atomically: a temp file in the same directory is
// synced and then renamed over the target.
func (r *fileSlotRepo) Put(_ context.Context, name string, payload []byte) error {
	fn, err := r.path(name)
	if err != nil {
		return fmt.Errorf("repo.SlotRepo.Put: %w", err)
	}

	tmp, err := os.CreateTemp(r.dir, "."+name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("repo.SlotRepo.Put: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("repo.SlotRepo.Put: write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("repo.SlotRepo.Put: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("repo.SlotRepo.Put: close: %w", err)
	}
	if err := os.Rename(tmpName, fn); err != nil {
		return fmt.Errorf("repo.SlotRepo.Put: rename: %w", err)
	}
	return nil
}

// Delete removes the slot file.
func (r *fileSlotRepo) Delete(_ context.Context, name string) error {
	fn, err := r.path(name)
	if err != nil {
		return fmt.Errorf("repo.SlotRepo.Delete: %w", err)
	}
	if err := os.Remove(fn); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("repo.SlotRepo.Delete: %w", err)
	}
	return nil
}
