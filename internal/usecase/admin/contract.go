package admin

import (
	"context"

	"github.com/medwayhorizons/healthbridge/internal/domain/catalog"
	"github.com/medwayhorizons/healthbridge/internal/domain/rawdoc"
)

// Repository defines the storage contract for catalog writes.
type Repository interface {
	LoadAll(ctx context.Context, collection string) ([]rawdoc.Doc, error)
	Get(ctx context.Context, collection, id string) (rawdoc.Doc, error)
	Create(ctx context.Context, collection, id string, fields map[string]any) (rawdoc.Doc, error)
	CreateMany(ctx context.Context, collection string, docs []rawdoc.Doc) error
	Update(ctx context.Context, collection, id string, fields map[string]any) (rawdoc.Doc, error)
	Delete(ctx context.Context, collection, id string) error
}

// Sanitizer cleans rich-text fields.
type Sanitizer interface {
	HTML(s string) string
}

// Invalidator drops cached snapshots after a write.
type Invalidator interface {
	Invalidate(kind catalog.Kind)
}
