package healthbridge

import "github.com/medwayhorizons/healthbridge/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound          = domain.ErrNotFound
	ErrUnknownCollection = domain.ErrUnknownCollection
	ErrInvalidRecord     = domain.ErrInvalidRecord
)
