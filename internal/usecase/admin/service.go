package admin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medwayhorizons/healthbridge/internal/domain"
	dombatch "github.com/medwayhorizons/healthbridge/internal/domain/batch"
	"github.com/medwayhorizons/healthbridge/internal/domain/catalog"
	"github.com/medwayhorizons/healthbridge/internal/domain/csvimport"
	"github.com/medwayhorizons/healthbridge/internal/domain/query"
	"github.com/medwayhorizons/healthbridge/internal/domain/rawdoc"
	"github.com/medwayhorizons/healthbridge/internal/logger"
	"github.com/medwayhorizons/healthbridge/internal/metrics"
)

// Service manages catalog records for the admin console.
type Service struct {
	repo        Repository
	sanitizer   Sanitizer
	invalidator Invalidator
	log         *zap.Logger
	maxRows     int
	newID       func() string
	now         func() time.Time
}

// New creates an admin service.
func New(repo Repository, sanitizer Sanitizer, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
		log:       log,
		maxRows:   csvimport.DefaultMaxRows,
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// WithInvalidator registers the snapshot cache to clear after writes.
func (s *Service) WithInvalidator(inv Invalidator) *Service {
	s.invalidator = inv
	return s
}

// WithMaxImportRows caps CSV uploads.
func (s *Service) WithMaxImportRows(n int) *Service {
	if n > 0 {
		s.maxRows = n
	}
	return s
}

// WithIDGenerator overrides record id generation.
func (s *Service) WithIDGenerator(fn func() string) *Service {
	if fn != nil {
		s.newID = fn
	}
	return s
}

// WithClock overrides the import timestamp source.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Create validates and stores a new record.
func (s *Service) Create(ctx context.Context, kind catalog.Kind, fields map[string]any) (catalog.Record, error) {
	rec, err := s.prepare(kind, fields)
	if err != nil {
		return nil, err
	}

	d, err := s.repo.Create(ctx, kind.Collection(), s.newID(), rec.Fields())
	if err != nil {
		s.count(kind, "create", err)
		return nil, fmt.Errorf("create %s: %w", kind.Label(), err)
	}
	s.count(kind, "create", nil)
	s.invalidate(kind)
	return catalog.Normalize(kind, d), nil
}

// Update merges fields into a record and stores the validated result.
func (s *Service) Update(ctx context.Context, kind catalog.Kind, id string, fields map[string]any) (catalog.Record, error) {
	current, err := s.repo.Get(ctx, kind.Collection(), id)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", kind.Label(), err)
	}
	merged := make(map[string]any, len(current.Fields)+len(fields))
	for k, v := range current.Fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	rec, err := s.prepare(kind, merged)
	if err != nil {
		return nil, err
	}
	d, err := s.repo.Update(ctx, kind.Collection(), id, rec.Fields())
	if err != nil {
		s.count(kind, "update", err)
		return nil, fmt.Errorf("update %s: %w", kind.Label(), err)
	}
	s.count(kind, "update", nil)
	s.invalidate(kind)
	return catalog.Normalize(kind, d), nil
}

// Delete removes a record.
func (s *Service) Delete(ctx context.Context, kind catalog.Kind, id string) error {
	if err := s.repo.Delete(ctx, kind.Collection(), id); err != nil {
		s.count(kind, "delete", err)
		return fmt.Errorf("delete %s: %w", kind.Label(), err)
	}
	s.count(kind, "delete", nil)
	s.invalidate(kind)
	return nil
}

// List returns every record of a collection, narrowed by the admin quick filter.
func (s *Service) List(ctx context.Context, kind catalog.Kind, quickQuery string) ([]catalog.Record, error) {
	docs, err := s.repo.LoadAll(ctx, kind.Collection())
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind.Collection(), err)
	}
	items := query.Search(catalog.Items(kind, docs, catalog.ProfileAdmin), quickQuery)
	out := make([]catalog.Record, len(items))
	for i, it := range items {
		out[i] = it.Record()
	}
	return out, nil
}

// Import stores the valid rows of a CSV upload in one batch. Rows that fail
// validation are reported and skipped; an unusable file fails as a whole.
func (s *Service) Import(ctx context.Context, kind catalog.Kind, r io.Reader) ([]dombatch.Result, error) {
	rows, err := csvimport.Parse(kind, r, s.maxRows, s.now())
	if err != nil {
		return nil, fmt.Errorf("parse %s import: %w", kind.Collection(), err)
	}

	results := make([]dombatch.Result, len(rows))
	valid := make([]rawdoc.Doc, 0, len(rows))
	validIdx := make([]int, 0, len(rows))
	for i, row := range rows {
		rec, err := s.prepare(kind, row.Fields)
		if err != nil {
			results[i] = dombatch.NewError(row.Line, err)
			continue
		}
		valid = append(valid, rawdoc.Doc{ID: s.newID(), Fields: rec.Fields()})
		validIdx = append(validIdx, i)
	}

	if len(valid) > 0 {
		if err := s.repo.CreateMany(ctx, kind.Collection(), valid); err != nil {
			s.count(kind, "import", err)
			return nil, fmt.Errorf("import %s: %w", kind.Collection(), err)
		}
		s.invalidate(kind)
	}
	for n, i := range validIdx {
		results[i] = dombatch.NewOK(rows[i].Line, valid[n].ID)
	}

	sum := dombatch.Summarize(results)
	s.count(kind, "import", nil)
	logger.FromContextOr(ctx, s.log).Info("catalog import",
		zap.String("collection", kind.Collection()),
		zap.Int("imported", sum.Imported),
		zap.Int("failed", sum.Failed))
	return results, nil
}

// Seed stores records under their own ids, skipping ids that already exist.
// It returns how many were created.
func (s *Service) Seed(ctx context.Context, recs []catalog.Record) (int, error) {
	created := 0
	touched := map[catalog.Kind]bool{}
	for _, rec := range recs {
		kind := rec.Kind()
		_, err := s.repo.Get(ctx, kind.Collection(), rec.RecordID())
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return created, fmt.Errorf("seed %s %s: %w", kind.Label(), rec.RecordID(), err)
		}
		prepared, err := s.prepare(kind, rec.Fields())
		if err != nil {
			return created, fmt.Errorf("seed %s %s: %w", kind.Label(), rec.RecordID(), err)
		}
		if _, err := s.repo.Create(ctx, kind.Collection(), rec.RecordID(), prepared.Fields()); err != nil {
			s.count(kind, "seed", err)
			return created, fmt.Errorf("seed %s %s: %w", kind.Label(), rec.RecordID(), err)
		}
		s.count(kind, "seed", nil)
		touched[kind] = true
		created++
	}
	for kind := range touched {
		s.invalidate(kind)
	}
	return created, nil
}

// prepare normalizes raw fields into a sanitized, validated record.
func (s *Service) prepare(kind catalog.Kind, fields map[string]any) (catalog.Record, error) {
	rec := catalog.Normalize(kind, rawdoc.Doc{Fields: fields})
	if rec == nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCollection, kind)
	}
	s.sanitize(rec)
	if err := domain.Validate(rec); err != nil {
		return nil, fmt.Errorf("validate %s: %w", kind.Label(), err)
	}
	return rec, nil
}

func (s *Service) sanitize(rec catalog.Record) {
	if s.sanitizer == nil {
		return
	}
	switch r := rec.(type) {
	case *catalog.Treatment:
		r.DescriptionHTML = s.sanitizer.HTML(r.DescriptionHTML)
		r.WhyChooseHTML = s.sanitizer.HTML(r.WhyChooseHTML)
	case *catalog.BlogPost:
		r.Content = s.sanitizer.HTML(r.Content)
	}
}

func (s *Service) invalidate(kind catalog.Kind) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(kind)
	}
}

func (s *Service) count(kind catalog.Kind, op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.AdminWritesTotal.WithLabelValues(kind.Collection(), op, result).Inc()
}
