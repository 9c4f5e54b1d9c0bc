package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/medwayhorizons/healthbridge/internal/domain/catalog"
	"github.com/medwayhorizons/healthbridge/internal/domain/query"
	"github.com/medwayhorizons/healthbridge/internal/logger"
	"github.com/medwayhorizons/healthbridge/internal/metrics"
)

// DefaultSuggestLimit caps autocomplete entries when the caller gives none.
const DefaultSuggestLimit = 10

type snapshot struct {
	items    []catalog.Item
	loadedAt time.Time
}

// Service serves listing pages from collection snapshots.
type Service struct {
	repo         Repository
	notifier     Notifier
	log          *zap.Logger
	initial      int
	increment    int
	ttl          time.Duration
	suggestLimit int
	now          func() time.Time

	mu    sync.RWMutex
	cache map[catalog.Kind]snapshot
	// gen is bumped by Invalidate; a load started under an older
	// generation must not populate the cache.
	gen map[catalog.Kind]uint64
}

// New creates a catalog service. Snapshots are not cached until WithSnapshotTTL.
func New(repo Repository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		repo:         repo,
		notifier:     ContextNotifier{},
		log:          log,
		initial:      query.DefaultInitial,
		increment:    query.DefaultIncrement,
		suggestLimit: DefaultSuggestLimit,
		now:          time.Now,
		cache:        make(map[catalog.Kind]snapshot),
		gen:          make(map[catalog.Kind]uint64),
	}
}

// WithNotifier replaces the load-failure notifier.
func (s *Service) WithNotifier(n Notifier) *Service {
	if n != nil {
		s.notifier = n
	}
	return s
}

// WithPageSizes configures the collapsed page size and the "show more" step.
func (s *Service) WithPageSizes(initial, increment int) *Service {
	if initial > 0 {
		s.initial = initial
	}
	if increment > 0 {
		s.increment = increment
	}
	return s
}

// WithSnapshotTTL enables snapshot caching. Zero disables it.
func (s *Service) WithSnapshotTTL(ttl time.Duration) *Service {
	if ttl >= 0 {
		s.ttl = ttl
	}
	return s
}

// WithSuggestLimit configures the default autocomplete size.
func (s *Service) WithSuggestLimit(n int) *Service {
	if n > 0 {
		s.suggestLimit = n
	}
	return s
}

// WithClock overrides the cache clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// PageSizes returns the collapsed page size and increment.
func (s *Service) PageSizes() (initial, increment int) { return s.initial, s.increment }

// Load returns the collection snapshot. A failed load is logged, counted and
// reported through the notifier, and yields an empty snapshot.
func (s *Service) Load(ctx context.Context, kind catalog.Kind) []catalog.Item {
	col := kind.Collection()
	if items, ok := s.cached(kind); ok {
		metrics.SnapshotCacheTotal.WithLabelValues(col, "hit").Inc()
		return items
	}
	if s.ttl > 0 {
		metrics.SnapshotCacheTotal.WithLabelValues(col, "miss").Inc()
	}
	gen := s.generation(kind)

	docs, err := s.repo.LoadAll(ctx, col)
	if err != nil {
		metrics.SnapshotLoadsTotal.WithLabelValues(col, "error").Inc()
		logger.FromContextOr(ctx, s.log).Warn("snapshot load failed",
			zap.String("collection", col), zap.Error(err))
		s.notifier.Notify(ctx, fmt.Sprintf("Failed to load %s", col))
		return []catalog.Item{}
	}

	items := catalog.Items(kind, docs, catalog.ProfilePublic)
	metrics.SnapshotLoadsTotal.WithLabelValues(col, "ok").Inc()
	metrics.SnapshotSize.WithLabelValues(col).Set(float64(len(items)))

	if s.ttl > 0 {
		s.mu.Lock()
		if s.gen[kind] == gen {
			s.cache[kind] = snapshot{items: items, loadedAt: s.now()}
		}
		s.mu.Unlock()
	}
	return items
}

func (s *Service) generation(kind catalog.Kind) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen[kind]
}

func (s *Service) cached(kind catalog.Kind) ([]catalog.Item, bool) {
	if s.ttl <= 0 {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.cache[kind]
	if !ok || s.now().Sub(snap.loadedAt) >= s.ttl {
		return nil, false
	}
	return snap.items, true
}

// Invalidate drops the cached snapshot of a collection.
func (s *Service) Invalidate(kind catalog.Kind) {
	s.mu.Lock()
	delete(s.cache, kind)
	s.gen[kind]++
	s.mu.Unlock()
}

// Query renders one listing with explicit parameters.
func (s *Service) Query(ctx context.Context, kind catalog.Kind, p query.Params) query.Page {
	if p.Initial <= 0 {
		p.Initial = s.initial
	}
	page := query.Run(s.Load(ctx, kind), p)
	metrics.QueryResultItems.WithLabelValues(kind.Collection()).Observe(float64(page.Total))
	return page
}

// PageMove is a "show more" or "show less" request.
type PageMove string

// Page moves.
const (
	MoveNone PageMove = ""
	MoveMore PageMove = "more"
	MoveLess PageMove = "less"
)

// ParsePageMove converts a wire value to a PageMove.
func ParsePageMove(s string) (PageMove, error) {
	switch m := PageMove(s); m {
	case MoveNone, MoveMore, MoveLess:
		return m, nil
	}
	return "", fmt.Errorf("unknown page move %q (allowed: more, less)", s)
}

// BrowseRequest is one stateless listing request.
type BrowseRequest struct {
	FreeText string
	Facets   query.Selection
	Sort     query.SortKey
	// Cursor is the token returned by the previous Browse, if any.
	Cursor string
	Move   PageMove
}

// Browse renders a listing and returns the cursor token for the next request.
// A cursor issued for different free text, facets or sort is discarded, so
// changing any of them starts again from the initial page size.
func (s *Service) Browse(ctx context.Context, kind catalog.Kind, req BrowseRequest) (query.Page, string) {
	c := query.NewCursor(s.initial, s.increment)
	c.SetFreeText(req.FreeText)
	c.SetFacets(req.Facets)
	c.SetSort(req.Sort)
	resumed := c.Resume(req.Cursor)

	items := s.Load(ctx, kind)
	page := c.Apply(items)
	switch req.Move {
	case MoveMore:
		// a stale cursor means the selections changed: stay on the first page
		if (resumed || req.Cursor == "") && page.CanShowMore {
			c.ShowMore()
			page = c.Apply(items)
		}
	case MoveLess:
		c.ShowLess()
		page = c.Apply(items)
	}

	metrics.QueryResultItems.WithLabelValues(kind.Collection()).Observe(float64(page.Total))
	logger.FromContextOr(ctx, s.log).Debug("browse",
		zap.String("collection", kind.Collection()),
		zap.Int("total", page.Total),
		zap.Int("visible", page.Visible),
		zap.Bool("resumed", resumed))
	return page, c.Token()
}

// Facets returns the dropdown options of every facet of a collection.
func (s *Service) Facets(ctx context.Context, kind catalog.Kind) map[string][]string {
	items := s.Load(ctx, kind)
	out := make(map[string][]string)
	for _, f := range catalog.FacetsFor(kind) {
		out[f.Name] = catalog.FacetOptions(items, f)
	}
	return out
}

// Get returns one normalized record.
func (s *Service) Get(ctx context.Context, kind catalog.Kind, id string) (catalog.Record, error) {
	d, err := s.repo.Get(ctx, kind.Collection(), id)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", kind.Label(), err)
	}
	return catalog.Normalize(kind, d), nil
}

// Suggest returns autocomplete entries over hospital, doctor and treatment
// names. The three snapshots load concurrently.
func (s *Service) Suggest(ctx context.Context, text string, limit int) []query.Suggestion {
	if limit <= 0 {
		limit = s.suggestLimit
	}
	if strings.TrimSpace(text) == "" {
		return []query.Suggestion{}
	}

	kinds := []catalog.Kind{catalog.KindHospitals, catalog.KindDoctors, catalog.KindTreatments}
	groups := make([][]catalog.Item, len(kinds))
	g, gctx := errgroup.WithContext(ctx)
	for i, k := range kinds {
		g.Go(func() error {
			groups[i] = s.Load(gctx, k)
			return nil
		})
	}
	_ = g.Wait() // Load never fails

	return query.Suggest(groups, text, limit)
}
