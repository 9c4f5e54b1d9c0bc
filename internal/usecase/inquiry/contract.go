package inquiry

import (
	"context"

	dominquiry "github.com/medwayhorizons/healthbridge/internal/domain/inquiry"
	"github.com/medwayhorizons/healthbridge/internal/domain/rawdoc"
)

// Repository defines the storage contract for inquiries.
type Repository interface {
	LoadAll(ctx context.Context, collection string) ([]rawdoc.Doc, error)
	Get(ctx context.Context, collection, id string) (rawdoc.Doc, error)
	Create(ctx context.Context, collection, id string, fields map[string]any) (rawdoc.Doc, error)
	Update(ctx context.Context, collection, id string, fields map[string]any) (rawdoc.Doc, error)
	Delete(ctx context.Context, collection, id string) error
}

// Publisher announces new leads to downstream systems.
type Publisher interface {
	Publish(ctx context.Context, inq dominquiry.Inquiry) error
}

// NopPublisher discards leads.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, dominquiry.Inquiry) error { return nil }
