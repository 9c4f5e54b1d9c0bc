package catalog

import (
	"context"

	"github.com/medwayhorizons/healthbridge/internal/domain/rawdoc"
)

// Repository defines the read contract for catalog collections.
type Repository interface {
	LoadAll(ctx context.Context, collection string) ([]rawdoc.Doc, error)
	Get(ctx context.Context, collection, id string) (rawdoc.Doc, error)
}

// Notifier delivers a user-facing notice out of band.
type Notifier interface {
	Notify(ctx context.Context, msg string)
}
