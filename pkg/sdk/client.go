package healthbridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/medwayhorizons/healthbridge/internal/db"
	dbRedis "github.com/medwayhorizons/healthbridge/internal/db/redis"
	"github.com/medwayhorizons/healthbridge/internal/domain"
	"github.com/medwayhorizons/healthbridge/internal/domain/catalog"
	"github.com/medwayhorizons/healthbridge/internal/domain/query"
	"github.com/medwayhorizons/healthbridge/internal/repository/record"
	cataloguc "github.com/medwayhorizons/healthbridge/internal/usecase/catalog"
	healthuc "github.com/medwayhorizons/healthbridge/internal/usecase/health"
)

const defaultReadinessTimeout = 10 * time.Second

// Внутренний интерфейс для подмены в тестах.
type catalogUseCase interface {
	Load(ctx context.Context, kind catalog.Kind) []catalog.Item
	Query(ctx context.Context, kind catalog.Kind, p query.Params) query.Page
	Get(ctx context.Context, kind catalog.Kind, id string) (catalog.Record, error)
	Facets(ctx context.Context, kind catalog.Kind) map[string][]string
	Suggest(ctx context.Context, text string, limit int) []query.Suggestion
	PageSizes() (initial, increment int)
}

// Client is the HealthBridge SDK entry point.
type Client struct {
	store      db.Store
	catalogSvc catalogUseCase
	healthSvc  healthUseCase
	obs        *observer
}

// New creates a Client and connects to Redis.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("healthbridge: database address required (use WithRedis)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("healthbridge: create redis store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("healthbridge: database not ready: %w", err)
	}

	return wireClient(store, cfg, obs), nil
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	svc := cataloguc.New(record.New(store, cfg.keyPrefix), nil).
		WithPageSizes(cfg.initialPage, cfg.pageIncrement).
		WithSnapshotTTL(cfg.snapshotTTL)

	return &Client{
		store:      store,
		catalogSvc: svc,
		healthSvc:  healthuc.New(store, nil),
		obs:        obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe(opEvent{op: "ping", start: start, err: err}) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Catalog returns the listing service for one collection.
func (c *Client) Catalog(kind Kind) *CatalogService {
	return &CatalogService{kind: kind, svc: c.catalogSvc, obs: c.obs}
}

// Suggest returns autocomplete entries over hospital, doctor and treatment
// names. A non-positive limit uses the default of 8.
func (c *Client) Suggest(ctx context.Context, text string, limit int) (out []Suggestion, notices []string) {
	start := time.Now()
	defer func() { c.obs.observe(opEvent{op: "catalog.suggest", start: start, notices: notices}) }()

	ctx, n := domain.NewContextWithNotices(ctx)
	out = c.catalogSvc.Suggest(ctx, text, limit)
	return out, n.List()
}
