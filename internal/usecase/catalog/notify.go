package catalog

import (
	"context"

	"github.com/medwayhorizons/healthbridge/internal/domain"
)

// ContextNotifier appends notices to the request's collector, if any.
type ContextNotifier struct{}

// Notify implements Notifier.
func (ContextNotifier) Notify(ctx context.Context, msg string) {
	domain.NoticesFromContext(ctx).Add(msg)
}
