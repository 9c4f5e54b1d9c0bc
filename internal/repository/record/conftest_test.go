package record

import (
	"context"
	"sort"

	"github.com/medwayhorizons/healthbridge/internal/db"
)

// memStore is an in-memory implementation of the consumer interface with
// per-operation failure injection.
type memStore struct {
	kv    map[string][]byte
	zsets map[string]map[string]float64

	getErr    error
	setErr    error
	zaddErr   error
	zrangeErr error
	dels      [][]string
}

func newMemStore() *memStore {
	return &memStore{kv: map[string][]byte{}, zsets: map[string]map[string]float64{}}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.kv[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memStore) MGet(_ context.Context, keys []string) ([][]byte, error) {
	out := make([][]byte, len(keys))
	for i, k := range keys {
		out[i] = m.kv[k]
	}
	return out, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.kv[key] = value
	return nil
}

func (m *memStore) SetMulti(_ context.Context, items []db.KVItem) error {
	if m.setErr != nil {
		return m.setErr
	}
	for _, it := range items {
		m.kv[it.Key] = it.Value
	}
	return nil
}

func (m *memStore) Del(_ context.Context, keys ...string) error {
	m.dels = append(m.dels, keys)
	for _, k := range keys {
		delete(m.kv, k)
	}
	return nil
}

func (m *memStore) ZAdd(_ context.Context, key string, members ...db.ScoredMember) error {
	if m.zaddErr != nil {
		return m.zaddErr
	}
	z, ok := m.zsets[key]
	if !ok {
		z = map[string]float64{}
		m.zsets[key] = z
	}
	for _, mem := range members {
		z[mem.Member] = mem.Score
	}
	return nil
}

func (m *memStore) ZRange(_ context.Context, key string) ([]string, error) {
	if m.zrangeErr != nil {
		return nil, m.zrangeErr
	}
	z := m.zsets[key]
	out := make([]string, 0, len(z))
	for mem := range z {
		out = append(out, mem)
	}
	sort.Slice(out, func(i, j int) bool {
		if z[out[i]] != z[out[j]] {
			return z[out[i]] < z[out[j]]
		}
		return out[i] < out[j]
	})
	return out, nil
}

func (m *memStore) ZRem(_ context.Context, key string, members ...string) error {
	for _, mem := range members {
		delete(m.zsets[key], mem)
	}
	return nil
}
