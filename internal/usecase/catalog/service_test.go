package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/medwayhorizons/healthbridge/internal/domain"
	domcat "github.com/medwayhorizons/healthbridge/internal/domain/catalog"
	"github.com/medwayhorizons/healthbridge/internal/domain/query"
	"github.com/medwayhorizons/healthbridge/internal/domain/rawdoc"
)

// --- Mocks ---

type mockRepo struct {
	mu        sync.Mutex
	loads     map[string]int
	loadAllFn func(ctx context.Context, collection string) ([]rawdoc.Doc, error)
	getFn     func(ctx context.Context, collection, id string) (rawdoc.Doc, error)
}

func (m *mockRepo) LoadAll(ctx context.Context, collection string) ([]rawdoc.Doc, error) {
	m.mu.Lock()
	if m.loads == nil {
		m.loads = map[string]int{}
	}
	m.loads[collection]++
	m.mu.Unlock()
	if m.loadAllFn != nil {
		return m.loadAllFn(ctx, collection)
	}
	return nil, nil
}

func (m *mockRepo) Get(ctx context.Context, collection, id string) (rawdoc.Doc, error) {
	if m.getFn != nil {
		return m.getFn(ctx, collection, id)
	}
	return rawdoc.Doc{}, domain.ErrNotFound
}

func (m *mockRepo) loadCount(collection string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loads[collection]
}

type recordingNotifier struct {
	msgs []string
}

func (n *recordingNotifier) Notify(_ context.Context, msg string) { n.msgs = append(n.msgs, msg) }

func hospitalDocs(n int) []rawdoc.Doc {
	docs := make([]rawdoc.Doc, n)
	for i := range docs {
		docs[i] = rawdoc.Doc{ID: fmt.Sprintf("h%02d", i), Fields: map[string]any{
			"name": fmt.Sprintf("Hospital %02d", i), "city": []string{"Chennai", "Delhi"}[i%2], "country": "India",
		}}
	}
	return docs
}

func scenarioRepo() *mockRepo {
	return &mockRepo{loadAllFn: func(_ context.Context, collection string) ([]rawdoc.Doc, error) {
		switch collection {
		case "hospitals":
			return []rawdoc.Doc{
				{ID: "1", Fields: map[string]any{"name": "Apollo", "city": "Chennai", "specialties": []any{"Cardiology"}}},
				{ID: "2", Fields: map[string]any{"name": "AIIMS", "city": "New Delhi", "specialties": "Neurology, Cardiology"}},
				{ID: "3", Fields: map[string]any{"name": "Fortis", "city": "Gurugram"}},
			}, nil
		case "doctors":
			return []rawdoc.Doc{{ID: "d", Fields: map[string]any{"name": "Dr. Apurva Shah", "hospital": "Apollo"}}}, nil
		case "treatments":
			return []rawdoc.Doc{{ID: "t", Fields: map[string]any{"title": "Appendix Surgery"}}}, nil
		}
		return nil, nil
	}}
}

func names(items []domcat.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name()
	}
	return out
}

// --- Tests ---

func TestLoad_FailureIsEmptyPlusNotice(t *testing.T) {
	repo := &mockRepo{loadAllFn: func(context.Context, string) ([]rawdoc.Doc, error) {
		return nil, errors.New("connection refused")
	}}
	n := &recordingNotifier{}
	svc := New(repo, nil).WithNotifier(n)

	items := svc.Load(context.Background(), domcat.KindHospitals)
	if items == nil || len(items) != 0 {
		t.Fatalf("Load() = %v, want empty non-nil", items)
	}
	if len(n.msgs) != 1 || n.msgs[0] != "Failed to load hospitals" {
		t.Errorf("notices = %v", n.msgs)
	}
}

func TestLoad_DefaultNotifierUsesContextCollector(t *testing.T) {
	repo := &mockRepo{loadAllFn: func(context.Context, string) ([]rawdoc.Doc, error) {
		return nil, errors.New("timeout")
	}}
	svc := New(repo, nil)

	ctx, notices := domain.NewContextWithNotices(context.Background())
	_ = svc.Query(ctx, domcat.KindDoctors, query.Params{Visible: 6})
	if got := notices.List(); len(got) != 1 || got[0] != "Failed to load doctors" {
		t.Errorf("notices = %v", got)
	}
}

func TestLoad_SnapshotCache(t *testing.T) {
	repo := scenarioRepo()
	now := time.Unix(0, 0)
	svc := New(repo, nil).WithSnapshotTTL(time.Minute).WithClock(func() time.Time { return now })
	ctx := context.Background()

	svc.Load(ctx, domcat.KindHospitals)
	svc.Load(ctx, domcat.KindHospitals)
	if c := repo.loadCount("hospitals"); c != 1 {
		t.Errorf("loads within TTL = %d, want 1", c)
	}

	svc.Invalidate(domcat.KindHospitals)
	svc.Load(ctx, domcat.KindHospitals)
	if c := repo.loadCount("hospitals"); c != 2 {
		t.Errorf("loads after invalidate = %d, want 2", c)
	}

	now = now.Add(time.Minute)
	svc.Load(ctx, domcat.KindHospitals)
	if c := repo.loadCount("hospitals"); c != 3 {
		t.Errorf("loads after expiry = %d, want 3", c)
	}
}

func TestLoad_InvalidateDuringLoadDropsStaleSnapshot(t *testing.T) {
	var mu sync.Mutex
	stored := 1
	started := make(chan struct{})
	release := make(chan struct{})
	first := true
	repo := &mockRepo{loadAllFn: func(context.Context, string) ([]rawdoc.Doc, error) {
		mu.Lock()
		n, block := stored, first
		first = false
		mu.Unlock()
		if block {
			close(started)
			<-release
		}
		return hospitalDocs(n), nil
	}}
	svc := New(repo, nil).WithSnapshotTTL(time.Minute)
	ctx := context.Background()

	done := make(chan []domcat.Item)
	go func() { done <- svc.Load(ctx, domcat.KindHospitals) }()
	<-started

	mu.Lock()
	stored = 2
	mu.Unlock()
	svc.Invalidate(domcat.KindHospitals)
	close(release)
	if got := <-done; len(got) != 1 {
		t.Fatalf("in-flight load = %d items, want 1", len(got))
	}

	if got := svc.Load(ctx, domcat.KindHospitals); len(got) != 2 {
		t.Errorf("after write+invalidate: %d items, want 2", len(got))
	}
	if c := repo.loadCount("hospitals"); c != 2 {
		t.Errorf("loads = %d, want 2", c)
	}
}

func TestLoad_NoCacheByDefault(t *testing.T) {
	repo := scenarioRepo()
	svc := New(repo, nil)
	svc.Load(context.Background(), domcat.KindHospitals)
	svc.Load(context.Background(), domcat.KindHospitals)
	if c := repo.loadCount("hospitals"); c != 2 {
		t.Errorf("loads = %d, want 2", c)
	}
}

func TestQuery_Scenario(t *testing.T) {
	svc := New(scenarioRepo(), nil)
	ctx := context.Background()

	page := svc.Query(ctx, domcat.KindHospitals, query.Params{FreeText: "ai", Visible: 6})
	if got := names(page.Items); len(got) != 1 || got[0] != "AIIMS" {
		t.Errorf("search ai = %v", got)
	}

	page = svc.Query(ctx, domcat.KindHospitals, query.Params{
		Facets: query.Selection{"specialty": "Cardiology"}, Sort: query.NameAscending, Visible: 6,
	})
	if got := names(page.Items); len(got) != 2 || got[0] != "AIIMS" || got[1] != "Apollo" {
		t.Errorf("cardiology by name = %v", got)
	}

	page = svc.Query(ctx, domcat.KindHospitals, query.Params{Visible: 2})
	if len(page.Items) != 2 || !page.CanShowMore || page.CanShowLess {
		t.Errorf("page = %+v", page)
	}
}

func TestBrowse_ShowMoreAndReset(t *testing.T) {
	repo := &mockRepo{loadAllFn: func(context.Context, string) ([]rawdoc.Doc, error) {
		return hospitalDocs(20), nil
	}}
	svc := New(repo, nil)
	ctx := context.Background()

	page, tok := svc.Browse(ctx, domcat.KindHospitals, BrowseRequest{})
	if page.Visible != 6 || len(page.Items) != 6 {
		t.Fatalf("first page = %d/%d", page.Visible, len(page.Items))
	}

	page, tok = svc.Browse(ctx, domcat.KindHospitals, BrowseRequest{Cursor: tok, Move: MoveMore})
	page, tok = svc.Browse(ctx, domcat.KindHospitals, BrowseRequest{Cursor: tok, Move: MoveMore})
	if page.Visible != 18 || !page.CanShowLess || !page.CanShowMore {
		t.Fatalf("after two more = %+v", page)
	}

	// Same selections without a move keep the expanded list.
	page, _ = svc.Browse(ctx, domcat.KindHospitals, BrowseRequest{Cursor: tok})
	if page.Visible != 18 {
		t.Errorf("resume = %d, want 18", page.Visible)
	}

	// Changing the free text resets, and "more" on a stale cursor does not expand.
	page, _ = svc.Browse(ctx, domcat.KindHospitals, BrowseRequest{FreeText: "hospital", Cursor: tok, Move: MoveMore})
	if page.Visible != 6 {
		t.Errorf("after text change = %d, want 6", page.Visible)
	}

	page, _ = svc.Browse(ctx, domcat.KindHospitals, BrowseRequest{Cursor: tok, Move: MoveLess})
	if page.Visible != 6 || page.CanShowLess {
		t.Errorf("show less = %+v", page)
	}
}

func TestBrowse_MoreStopsAtEnd(t *testing.T) {
	repo := &mockRepo{loadAllFn: func(context.Context, string) ([]rawdoc.Doc, error) {
		return hospitalDocs(8), nil
	}}
	svc := New(repo, nil)
	ctx := context.Background()

	_, tok := svc.Browse(ctx, domcat.KindHospitals, BrowseRequest{})
	page, tok := svc.Browse(ctx, domcat.KindHospitals, BrowseRequest{Cursor: tok, Move: MoveMore})
	if page.Visible != 12 || page.CanShowMore || len(page.Items) != 8 {
		t.Fatalf("page = %+v", page)
	}
	page, _ = svc.Browse(ctx, domcat.KindHospitals, BrowseRequest{Cursor: tok, Move: MoveMore})
	if page.Visible != 12 {
		t.Errorf("visible past the end = %d, want 12", page.Visible)
	}
}

func TestBrowse_CustomPageSizes(t *testing.T) {
	repo := &mockRepo{loadAllFn: func(context.Context, string) ([]rawdoc.Doc, error) {
		return hospitalDocs(20), nil
	}}
	svc := New(repo, nil).WithPageSizes(4, 8)
	page, tok := svc.Browse(context.Background(), domcat.KindHospitals, BrowseRequest{})
	if page.Visible != 4 {
		t.Fatalf("initial = %d", page.Visible)
	}
	page, _ = svc.Browse(context.Background(), domcat.KindHospitals, BrowseRequest{Cursor: tok, Move: MoveMore})
	if page.Visible != 12 {
		t.Errorf("after more = %d, want 12", page.Visible)
	}
}

func TestFacets(t *testing.T) {
	svc := New(scenarioRepo(), nil)
	f := svc.Facets(context.Background(), domcat.KindHospitals)

	city := f["city"]
	if len(city) != 4 || city[0] != "All Cities" || city[1] != "Chennai" {
		t.Errorf("city options = %v", city)
	}
	spec := f["specialty"]
	if len(spec) != 3 || spec[1] != "Cardiology" || spec[2] != "Neurology" {
		t.Errorf("specialty options = %v", spec)
	}
	if len(svc.Facets(context.Background(), domcat.KindBlogs)) != 0 {
		t.Error("blogs have no facets")
	}
}

func TestGet(t *testing.T) {
	repo := &mockRepo{getFn: func(_ context.Context, collection, id string) (rawdoc.Doc, error) {
		if collection == "treatments" && id == "t1" {
			return rawdoc.Doc{ID: "t1", Fields: map[string]any{"title": "IVF"}}, nil
		}
		return rawdoc.Doc{}, domain.ErrNotFound
	}}
	svc := New(repo, nil)

	rec, err := svc.Get(context.Background(), domcat.KindTreatments, "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr, ok := rec.(*domcat.Treatment); !ok || tr.Name != "IVF" {
		t.Errorf("Get() = %#v", rec)
	}
	if _, err := svc.Get(context.Background(), domcat.KindTreatments, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSuggest(t *testing.T) {
	repo := scenarioRepo()
	svc := New(repo, nil)

	got := svc.Suggest(context.Background(), "ap", 0)
	labels := make([]string, len(got))
	for i, s := range got {
		labels[i] = s.Label
	}
	want := []string{"Hospital: Apollo", "Doctor: Dr. Apurva Shah", "Treatment: Appendix Surgery"}
	if fmt.Sprint(labels) != fmt.Sprint(want) {
		t.Errorf("Suggest() = %v, want %v", labels, want)
	}

	if got := svc.Suggest(context.Background(), "ap", 1); len(got) != 1 {
		t.Errorf("limit 1 = %v", got)
	}
	before := repo.loadCount("hospitals")
	if got := svc.Suggest(context.Background(), "  ", 0); len(got) != 0 {
		t.Errorf("blank = %v", got)
	}
	if repo.loadCount("hospitals") != before {
		t.Error("blank text must not load snapshots")
	}
}

func TestParsePageMove(t *testing.T) {
	if m, err := ParsePageMove("more"); err != nil || m != MoveMore {
		t.Errorf("ParsePageMove(more) = %q, %v", m, err)
	}
	if _, err := ParsePageMove("all"); err == nil {
		t.Error("expected error")
	}
}
