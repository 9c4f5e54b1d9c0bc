package record

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/medwayhorizons/healthbridge/internal/db"
	"github.com/medwayhorizons/healthbridge/internal/domain"
	"github.com/medwayhorizons/healthbridge/internal/domain/rawdoc"
)

// DefaultKeyPrefix namespaces every key the repository writes.
const DefaultKeyPrefix = "healthbridge:"

// store is the consumer interface for records (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	MGet(ctx context.Context, keys []string) ([][]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetMulti(ctx context.Context, items []db.KVItem) error
	Del(ctx context.Context, keys ...string) error
	ZAdd(ctx context.Context, key string, members ...db.ScoredMember) error
	ZRange(ctx context.Context, key string) ([]string, error)
	ZRem(ctx context.Context, key string, members ...string) error
}

// Repo stores documents of any collection as JSON values plus a sorted-set
// index of ids scored by creation time.
type Repo struct {
	store  store
	prefix string
	now    func() time.Time
}

// New creates a record repository.
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Repo{store: s, prefix: prefix, now: time.Now}
}

// WithClock overrides the creation timestamp source.
func (r *Repo) WithClock(now func() time.Time) *Repo {
	if now != nil {
		r.now = now
	}
	return r
}

// LoadAll returns every document of a collection in creation order.
// Index entries whose value is gone or unreadable are skipped.
func (r *Repo) LoadAll(ctx context.Context, collection string) ([]rawdoc.Doc, error) {
	ids, err := r.store.ZRange(ctx, r.indexKey(collection))
	if err != nil {
		return nil, fmt.Errorf("zrange %s: %w", collection, err)
	}
	if len(ids) == 0 {
		return []rawdoc.Doc{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.docKey(collection, id)
	}
	values, err := r.store.MGet(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("mget %s: %w", collection, err)
	}

	docs := make([]rawdoc.Doc, 0, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}
		d, err := docFromJSON(v)
		if err != nil {
			continue
		}
		if d.ID == "" {
			d.ID = ids[i]
		}
		docs = append(docs, d)
	}
	return docs, nil
}

// Get returns one document.
func (r *Repo) Get(ctx context.Context, collection, id string) (rawdoc.Doc, error) {
	data, err := r.store.Get(ctx, r.docKey(collection, id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return rawdoc.Doc{}, domain.ErrNotFound
		}
		return rawdoc.Doc{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	d, err := docFromJSON(data)
	if err != nil {
		return rawdoc.Doc{}, fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	if d.ID == "" {
		d.ID = id
	}
	return d, nil
}

// Create stores a new document and indexes it. The value write is rolled
// back when indexing fails.
func (r *Repo) Create(ctx context.Context, collection, id string, fields map[string]any) (rawdoc.Doc, error) {
	d := rawdoc.Doc{ID: id, CreatedAt: r.now().UnixMilli(), Fields: fields}
	data, err := docToJSON(d)
	if err != nil {
		return rawdoc.Doc{}, err
	}

	key := r.docKey(collection, id)
	if err := r.store.Set(ctx, key, data); err != nil {
		return rawdoc.Doc{}, fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	member := db.ScoredMember{Score: float64(d.CreatedAt), Member: id}
	if err := r.store.ZAdd(ctx, r.indexKey(collection), member); err != nil {
		cleanupErr := r.store.Del(ctx, key)
		return rawdoc.Doc{}, errors.Join(fmt.Errorf("index %s/%s: %w", collection, id, err), cleanupErr)
	}
	return d, nil
}

// CreateMany stores and indexes documents in two round-trips, stamping them
// with one creation time. On failure every value written is removed again.
func (r *Repo) CreateMany(ctx context.Context, collection string, docs []rawdoc.Doc) error {
	if len(docs) == 0 {
		return nil
	}
	created := r.now().UnixMilli()
	items := make([]db.KVItem, len(docs))
	members := make([]db.ScoredMember, len(docs))
	keys := make([]string, len(docs))
	for i, nd := range docs {
		data, err := docToJSON(rawdoc.Doc{ID: nd.ID, CreatedAt: created, Fields: nd.Fields})
		if err != nil {
			return err
		}
		keys[i] = r.docKey(collection, nd.ID)
		items[i] = db.KVItem{Key: keys[i], Value: data}
		members[i] = db.ScoredMember{Score: float64(created), Member: nd.ID}
	}

	if err := r.store.SetMulti(ctx, items); err != nil {
		cleanupErr := r.store.Del(ctx, keys...)
		return errors.Join(fmt.Errorf("set %s batch: %w", collection, err), cleanupErr)
	}
	if err := r.store.ZAdd(ctx, r.indexKey(collection), members...); err != nil {
		cleanupErr := r.store.Del(ctx, keys...)
		return errors.Join(fmt.Errorf("index %s batch: %w", collection, err), cleanupErr)
	}
	return nil
}

// Update merges fields into an existing document. Keys absent from fields
// keep their stored values.
func (r *Repo) Update(ctx context.Context, collection, id string, fields map[string]any) (rawdoc.Doc, error) {
	d, err := r.Get(ctx, collection, id)
	if err != nil {
		return rawdoc.Doc{}, err
	}
	for k, v := range fields {
		d.Fields[k] = v
	}
	data, err := docToJSON(d)
	if err != nil {
		return rawdoc.Doc{}, err
	}
	if err := r.store.Set(ctx, r.docKey(collection, id), data); err != nil {
		return rawdoc.Doc{}, fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return d, nil
}

// Delete removes a document and its index entry.
func (r *Repo) Delete(ctx context.Context, collection, id string) error {
	key := r.docKey(collection, id)
	if _, err := r.store.Get(ctx, key); err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	if err := r.store.ZRem(ctx, r.indexKey(collection), id); err != nil {
		return fmt.Errorf("unindex %s/%s: %w", collection, id, err)
	}
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s/%s: %w", collection, id, err)
	}
	return nil
}

// Key patterns: {prefix}{collection}:doc:{id}, {prefix}{collection}:ids

func (r *Repo) docKey(collection, id string) string {
	return fmt.Sprintf("%s%s:doc:%s", r.prefix, collection, id)
}

func (r *Repo) indexKey(collection string) string {
	return fmt.Sprintf("%s%s:ids", r.prefix, collection)
}
