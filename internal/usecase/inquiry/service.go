package inquiry

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medwayhorizons/healthbridge/internal/domain/catalog"
	dominquiry "github.com/medwayhorizons/healthbridge/internal/domain/inquiry"
	"github.com/medwayhorizons/healthbridge/internal/domain/query"
	"github.com/medwayhorizons/healthbridge/internal/logger"
	"github.com/medwayhorizons/healthbridge/internal/metrics"
)

// Service handles lead capture and the admin follow-up workflow.
type Service struct {
	repo      Repository
	publisher Publisher
	log       *zap.Logger
	newID     func() string
	now       func() time.Time
}

// New creates an inquiry service. Leads are not published until a
// publisher is set.
func New(repo Repository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		repo:      repo,
		publisher: NopPublisher{},
		log:       log,
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// WithPublisher sets the lead publisher.
func (s *Service) WithPublisher(p Publisher) *Service {
	if p != nil {
		s.publisher = p
	}
	return s
}

// WithIDGenerator overrides inquiry id generation.
func (s *Service) WithIDGenerator(fn func() string) *Service {
	if fn != nil {
		s.newID = fn
	}
	return s
}

// WithClock overrides the submission timestamp source.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Submit validates and stores a new inquiry with status New.
func (s *Service) Submit(ctx context.Context, inq dominquiry.Inquiry) (dominquiry.Inquiry, error) {
	inq.ID = ""
	inq.Status = dominquiry.StatusNew
	inq.CreatedAt = s.now().UTC()
	if err := inq.Validate(); err != nil {
		return dominquiry.Inquiry{}, fmt.Errorf("validate inquiry: %w", err)
	}

	d, err := s.repo.Create(ctx, dominquiry.Collection, s.newID(), inq.Fields())
	if err != nil {
		return dominquiry.Inquiry{}, fmt.Errorf("create inquiry: %w", err)
	}
	stored := dominquiry.FromDoc(d)
	metrics.InquiriesSubmittedTotal.Inc()

	if err := s.publisher.Publish(ctx, stored); err != nil {
		metrics.LeadPublishErrorsTotal.Inc()
		logger.FromContextOr(ctx, s.log).Warn("lead publish failed",
			zap.String("inquiry_id", stored.ID), zap.Error(err))
	}
	return stored, nil
}

// List returns inquiries newest first, narrowed by the quick filter.
func (s *Service) List(ctx context.Context, quickQuery string) ([]dominquiry.Inquiry, error) {
	docs, err := s.repo.LoadAll(ctx, dominquiry.Collection)
	if err != nil {
		return nil, fmt.Errorf("list inquiries: %w", err)
	}
	byID := make(map[string]dominquiry.Inquiry, len(docs))
	items := make([]catalog.Item, 0, len(docs))
	for _, d := range docs {
		inq := dominquiry.FromDoc(d)
		byID[inq.ID] = inq
		items = append(items, inq.Item())
	}
	items = query.Sort(query.Search(items, quickQuery), query.NewestFirst)

	out := make([]dominquiry.Inquiry, len(items))
	for i, it := range items {
		out[i] = byID[it.ID()]
	}
	return out, nil
}

// Get returns a single inquiry.
func (s *Service) Get(ctx context.Context, id string) (dominquiry.Inquiry, error) {
	d, err := s.repo.Get(ctx, dominquiry.Collection, id)
	if err != nil {
		return dominquiry.Inquiry{}, fmt.Errorf("get inquiry: %w", err)
	}
	return dominquiry.FromDoc(d), nil
}

// Advance moves an inquiry one step along New, In Progress, Completed.
func (s *Service) Advance(ctx context.Context, id string, next dominquiry.Status) (dominquiry.Inquiry, error) {
	inq, err := s.Get(ctx, id)
	if err != nil {
		return dominquiry.Inquiry{}, err
	}
	if err := inq.Advance(next); err != nil {
		return dominquiry.Inquiry{}, err
	}
	d, err := s.repo.Update(ctx, dominquiry.Collection, id, map[string]any{"status": string(inq.Status)})
	if err != nil {
		return dominquiry.Inquiry{}, fmt.Errorf("update inquiry: %w", err)
	}
	logger.FromContextOr(ctx, s.log).Info("inquiry advanced",
		zap.String("inquiry_id", id), zap.String("status", string(inq.Status)))
	return dominquiry.FromDoc(d), nil
}

// Delete removes an inquiry.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, dominquiry.Collection, id); err != nil {
		return fmt.Errorf("delete inquiry: %w", err)
	}
	return nil
}
