package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/medwayhorizons/healthbridge/internal/domain"
	"github.com/medwayhorizons/healthbridge/internal/domain/rawdoc"
	adminuc "github.com/medwayhorizons/healthbridge/internal/usecase/admin"
	cataloguc "github.com/medwayhorizons/healthbridge/internal/usecase/catalog"
)

type memRepo struct {
	mu   sync.Mutex
	seq  int64
	docs map[string][]rawdoc.Doc
}

func (m *memRepo) LoadAll(_ context.Context, collection string) ([]rawdoc.Doc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]rawdoc.Doc(nil), m.docs[collection]...), nil
}

func (m *memRepo) Get(_ context.Context, collection, id string) (rawdoc.Doc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.docs[collection] {
		if d.ID == id {
			return d, nil
		}
	}
	return rawdoc.Doc{}, domain.ErrNotFound
}

func (m *memRepo) Create(_ context.Context, collection, id string, fields map[string]any) (rawdoc.Doc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	d := rawdoc.Doc{ID: id, CreatedAt: m.seq, Fields: fields}
	m.docs[collection] = append(m.docs[collection], d)
	return d, nil
}

func (m *memRepo) CreateMany(ctx context.Context, collection string, docs []rawdoc.Doc) error {
	for _, d := range docs {
		_, _ = m.Create(ctx, collection, d.ID, d.Fields)
	}
	return nil
}

func (m *memRepo) Update(context.Context, string, string, map[string]any) (rawdoc.Doc, error) {
	return rawdoc.Doc{}, domain.ErrNotFound
}

func (m *memRepo) Delete(context.Context, string, string) error { return domain.ErrNotFound }

func newTestApp() (*app, *bytes.Buffer, *memRepo) {
	repo := &memRepo{docs: map[string][]rawdoc.Doc{}}
	out := &bytes.Buffer{}
	a := &app{
		out: out,
		open: func(context.Context, string) (*services, func(), error) {
			cat := cataloguc.New(repo, nil).WithNotifier(cataloguc.ContextNotifier{})
			adm := adminuc.New(repo, nil, nil).WithInvalidator(cat)
			return &services{catalog: cat, admin: adm}, func() {}, nil
		},
	}
	return a, out, repo
}

func run(t *testing.T, a *app, args ...string) error {
	t.Helper()
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SetErr(&bytes.Buffer{})
	return cmd.Execute()
}

func TestSeedThenQuery(t *testing.T) {
	a, out, _ := newTestApp()

	if err := run(t, a, "seed"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !strings.Contains(out.String(), "seeded 6 of 6") {
		t.Errorf("seed output = %q", out)
	}

	out.Reset()
	if err := run(t, a, "seed"); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if !strings.Contains(out.String(), "seeded 0 of 6") {
		t.Errorf("second seed output = %q", out)
	}

	out.Reset()
	if err := run(t, a, "query", "hospitals", "--facet", "city=New Delhi", "--sort", "name_asc"); err != nil {
		t.Fatalf("query: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, " 1. AIIMS (New Delhi)") || !strings.Contains(got, " 2. Max Hospital") {
		t.Errorf("query output = %q", got)
	}
	if !strings.Contains(got, "showing 2 of 2") {
		t.Errorf("query output = %q", got)
	}
}

func TestQuery_Visible(t *testing.T) {
	a, out, _ := newTestApp()
	_ = run(t, a, "seed")
	out.Reset()

	if err := run(t, a, "query", "hospitals", "--visible", "2"); err != nil {
		t.Fatalf("query: %v", err)
	}
	if !strings.Contains(out.String(), "showing 2 of 6, more available") {
		t.Errorf("output = %q", out)
	}
}

func TestQuery_BadArgs(t *testing.T) {
	a, _, _ := newTestApp()
	if err := run(t, a, "query", "clinics"); err == nil {
		t.Error("expected unknown collection error")
	}
	if err := run(t, a, "query", "hospitals", "--sort", "price"); err == nil {
		t.Error("expected sort error")
	}
	if err := run(t, a, "query", "hospitals", "--facet", "city"); err == nil {
		t.Error("expected facet format error")
	}
}

func TestImportAndList(t *testing.T) {
	a, out, repo := newTestApp()
	path := filepath.Join(t.TempDir(), "treatments.csv")
	csv := "name,description,category,keywords,pricing,duration,imageUrl\n" +
		"Knee Replacement,Total knee,Orthopedics,knee;joint,4500,5 days,\n" +
		",missing name,,,,,\n"
	if err := os.WriteFile(path, []byte(csv), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := run(t, a, "import", "treatments", path); err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out.String(), "imported 1, failed 1") || !strings.Contains(out.String(), "line 3:") {
		t.Errorf("import output = %q", out)
	}
	if len(repo.docs["treatments"]) != 1 {
		t.Errorf("stored = %d", len(repo.docs["treatments"]))
	}

	out.Reset()
	if err := run(t, a, "list", "treatments", "-q", "knee"); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out.String(), "Knee Replacement") || !strings.Contains(out.String(), "1 records") {
		t.Errorf("list output = %q", out)
	}
}

func TestImport_MissingFile(t *testing.T) {
	a, _, _ := newTestApp()
	if err := run(t, a, "import", "hospitals", filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("expected error")
	}
}
