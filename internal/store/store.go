package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agenthands/cartoonist/internal/config"
	"github.com/agenthands/cartoonist/internal/core/model"
)

var ErrNotFound = errors.New("artifact not found")

// Store persists artifacts and hands back a stable reference.
type Store interface {
	Save(ctx context.Context, art *model.GeneratedArtifact) (string, error)
	Load(ctx context.Context, ref string) (*Record, error)
}

// Metadata is the JSON document stored next to the image.
type Metadata struct {
	Ref       string               `json:"ref"`
	Location  string               `json:"location"`
	Concepts  model.ConceptSet     `json:"concepts"`
	ImageFile string               `json:"image_file"`
	MIMEType  string               `json:"mime_type"`
	Mode      model.GenerationMode `json:"generation_mode"`
	Script    model.ScriptState    `json:"script_state"`
	Warnings  []string             `json:"warnings,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
}

type Record struct {
	Meta  Metadata
	Image []byte
}

var refPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// NewRef builds {location}_{YYYYMMDD_HHMMSS}_{8 hex}. The suffix keeps two
// cartoons for one place in the same second apart.
func NewRef(location string, at time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s_%s_%s", Sanitize(location), at.UTC().Format("20060102_150405"), suffix)
}

// Sanitize keeps letters, digits, '-' and '_', turning spaces into '_'.
func Sanitize(location string) string {
	var sb strings.Builder
	for _, r := range location {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			sb.WriteRune(r)
		case r == ' ':
			sb.WriteByte('_')
		}
	}
	if sb.Len() == 0 {
		return "unknown"
	}
	return sb.String()
}

// ValidRef rejects anything that could escape the store's namespace.
func ValidRef(ref string) bool {
	return refPattern.MatchString(ref)
}

func extension(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}

func metadataFor(ref string, art *model.GeneratedArtifact) Metadata {
	return Metadata{
		Ref:       ref,
		Location:  art.Location,
		Concepts:  art.Concepts,
		ImageFile: ref + extension(art.MIMEType),
		MIMEType:  art.MIMEType,
		Mode:      art.Mode,
		Script:    art.Script,
		Warnings:  art.Warnings,
		CreatedAt: art.CreatedAt,
	}
}

func prepare(art *model.GeneratedArtifact) string {
	if art.CreatedAt.IsZero() {
		art.CreatedAt = time.Now()
	}
	if art.MIMEType == "" {
		art.MIMEType = "image/png"
	}
	ref := NewRef(art.Location, art.CreatedAt)
	art.ID = ref
	return ref
}

// New builds the blob store selected by cfg.Backend.
func New(cfg config.StoreConfig) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "disk", "":
		return NewDisk(cfg.Dir)
	case "s3":
		return NewS3(cfg.S3)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", cfg.Backend)
	}
}
