package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/agenthands/cartoonist/internal/core/model"
)

// Disk writes {ref}.png and {ref}.json side by side in one directory.
type Disk struct {
	dir string
}

func NewDisk(dir string) (*Disk, error) {
	if dir == "" {
		dir = "data/cartoons"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &Disk{dir: dir}, nil
}

func (d *Disk) Save(_ context.Context, art *model.GeneratedArtifact) (string, error) {
	ref := prepare(art)
	meta := metadataFor(ref, art)

	if err := os.WriteFile(filepath.Join(d.dir, meta.ImageFile), art.Image, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(d.dir, ref+".json"), data, 0o644); err != nil {
		return "", fmt.Errorf("write metadata: %w", err)
	}
	return ref, nil
}

func (d *Disk) Load(_ context.Context, ref string) (*Record, error) {
	if !ValidRef(ref) {
		return nil, ErrNotFound
	}

	data, err := os.ReadFile(filepath.Join(d.dir, ref+".json"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	if meta.ImageFile == "" || filepath.Base(meta.ImageFile) != meta.ImageFile {
		return nil, fmt.Errorf("metadata for %s has a bad image file %q", ref, meta.ImageFile)
	}

	img, err := os.ReadFile(filepath.Join(d.dir, meta.ImageFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return &Record{Meta: meta, Image: img}, nil
}
