package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/medwayhorizons/healthbridge/internal/domain"
	"github.com/medwayhorizons/healthbridge/internal/domain/rawdoc"
	adminuc "github.com/medwayhorizons/healthbridge/internal/usecase/admin"
	cataloguc "github.com/medwayhorizons/healthbridge/internal/usecase/catalog"
	healthuc "github.com/medwayhorizons/healthbridge/internal/usecase/health"
	inquiryuc "github.com/medwayhorizons/healthbridge/internal/usecase/inquiry"
)

// --- Fakes ---

type memRepo struct {
	mu       sync.Mutex
	seq      int64
	docs     map[string][]rawdoc.Doc
	loadErrs map[string]error
}

func newMemRepo() *memRepo {
	return &memRepo{docs: map[string][]rawdoc.Doc{}, loadErrs: map[string]error{}}
}

func (m *memRepo) add(collection string, fields map[string]any) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	id := fmt.Sprintf("%s-%d", collection, m.seq)
	m.docs[collection] = append(m.docs[collection], rawdoc.Doc{ID: id, CreatedAt: m.seq, Fields: fields})
	return id
}

func (m *memRepo) LoadAll(_ context.Context, collection string) ([]rawdoc.Doc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.loadErrs[collection]; err != nil {
		return nil, err
	}
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
		if _, err := m.Create(ctx, collection, d.ID, d.Fields); err != nil {
			return err
		}
	}
	return nil
}

func (m *memRepo) Update(_ context.Context, collection, id string, fields map[string]any) (rawdoc.Doc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, d := range m.docs[collection] {
		if d.ID != id {
			continue
		}
		merged := make(map[string]any, len(d.Fields)+len(fields))
		for k, v := range d.Fields {
			merged[k] = v
		}
		for k, v := range fields {
			merged[k] = v
		}
		d.Fields = merged
		m.docs[collection][i] = d
		return d, nil
	}
	return rawdoc.Doc{}, domain.ErrNotFound
}

func (m *memRepo) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	docs := m.docs[collection]
	for i, d := range docs {
		if d.ID == id {
			m.docs[collection] = append(docs[:i], docs[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type testEnv struct {
	repo    *memRepo
	handler http.Handler
}

func newTestEnv(t *testing.T, apiKeys ...string) *testEnv {
	t.Helper()
	repo := newMemRepo()
	catalogSvc := cataloguc.New(repo, nil).WithNotifier(cataloguc.ContextNotifier{})
	adminSvc := adminuc.New(repo, nil, nil).WithInvalidator(catalogSvc)
	inquirySvc := inquiryuc.New(repo, nil)
	healthSvc := healthuc.New(pinger{}, nil)

	srv := NewServer(catalogSvc, adminSvc, inquirySvc, healthSvc, nil).WithAPIKeys(apiKeys)
	return &testEnv{repo: repo, handler: srv.Handler()}
}

func (e *testEnv) seedHospitals() {
	for _, h := range []struct{ name, city string }{
		{"AIIMS", "Delhi"},
		{"Apollo", "Chennai"},
		{"Fortis", "Mumbai"},
		{"Medanta", "Gurgaon"},
		{"CMC", "Vellore"},
		{"Max", "Delhi"},
		{"Narayana", "Bangalore"},
		{"Kokilaben", "Mumbai"},
	} {
		e.repo.add("hospitals", map[string]any{"name": h.name, "city": h.city, "country": "India"})
	}
}

func (e *testEnv) do(method, target, body string, header ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

type pageBody struct {
	Items []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		City string `json:"city"`
	} `json:"items"`
	Total       int    `json:"total"`
	Visible     int    `json:"visible"`
	CanShowMore bool   `json:"can_show_more"`
	CanShowLess bool   `json:"can_show_less"`
	Cursor      string `json:"cursor"`
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return v
}

// --- Catalog ---

func TestBrowseCatalog_SearchMatchesNameOnly(t *testing.T) {
	env := newTestEnv(t)
	env.seedHospitals()

	rr := env.do("GET", "/api/v1/catalog/hospitals?q=ai", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body)
	}
	page := decode[pageBody](t, rr)
	if page.Total != 1 || page.Items[0].Name != "AIIMS" {
		t.Errorf("page = %+v", page)
	}
}

func TestBrowseCatalog_ShowMoreWithCursor(t *testing.T) {
	env := newTestEnv(t)
	env.seedHospitals()

	first := decode[pageBody](t, env.do("GET", "/api/v1/catalog/hospitals?sort=name_asc", ""))
	if len(first.Items) != 6 || first.Total != 8 || !first.CanShowMore || first.CanShowLess {
		t.Fatalf("first page = %+v", first)
	}
	if first.Items[0].Name != "AIIMS" || first.Cursor == "" {
		t.Errorf("first page = %+v", first)
	}

	next := decode[pageBody](t, env.do("GET",
		"/api/v1/catalog/hospitals?sort=name_asc&page=more&cursor="+url.QueryEscape(first.Cursor), ""))
	if len(next.Items) != 8 || next.CanShowMore || !next.CanShowLess {
		t.Errorf("second page = %+v", next)
	}

	// changing the sort invalidates the cursor
	reset := decode[pageBody](t, env.do("GET",
		"/api/v1/catalog/hospitals?sort=name_desc&cursor="+url.QueryEscape(next.Cursor), ""))
	if reset.Visible != 6 || reset.Items[0].Name != "Narayana" {
		t.Errorf("after sort change = %+v", reset)
	}
}

func TestBrowseCatalog_FacetAndVisible(t *testing.T) {
	env := newTestEnv(t)
	env.seedHospitals()

	page := decode[pageBody](t, env.do("GET", "/api/v1/catalog/hospitals?city=Delhi&visible=1", ""))
	if page.Total != 2 || len(page.Items) != 1 || !page.CanShowMore || page.Cursor != "" {
		t.Errorf("page = %+v", page)
	}

	all := decode[pageBody](t, env.do("GET", "/api/v1/catalog/hospitals?city=All+Cities&visible=20", ""))
	if all.Total != 8 {
		t.Errorf("All Cities total = %d, want 8", all.Total)
	}
}

func TestBrowseCatalog_BadRequests(t *testing.T) {
	env := newTestEnv(t)
	for _, target := range []string{
		"/api/v1/catalog/hospitals?sort=price",
		"/api/v1/catalog/hospitals?visible=abc",
		"/api/v1/catalog/hospitals?visible=-1",
		"/api/v1/catalog/hospitals?visible=0",
		"/api/v1/catalog/hospitals?visible=6&page=more",
		"/api/v1/catalog/hospitals?visible=6&page=less",
		"/api/v1/catalog/hospitals?visible=6&cursor=abc",
		"/api/v1/catalog/hospitals?page=sideways",
	} {
		rr := env.do("GET", target, "")
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rr.Code)
		}
	}

	rr := env.do("GET", "/api/v1/catalog/clinics", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown kind: status = %d, want 404", rr.Code)
	}
	if got := decode[ErrorResponse](t, rr); got.Code != ErrorCodeUnknownCollection {
		t.Errorf("code = %q", got.Code)
	}
}

func TestBrowseCatalog_LoadFailureNotice(t *testing.T) {
	env := newTestEnv(t)
	env.repo.loadErrs["doctors"] = errors.New("connection refused")

	rr := env.do("GET", "/api/v1/catalog/doctors", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := rr.Header().Get(NoticeHeader); got != "Failed to load doctors" {
		t.Errorf("notice = %q", got)
	}
	if page := decode[pageBody](t, rr); page.Total != 0 || page.Items == nil {
		t.Errorf("page = %+v", page)
	}
}

func TestCatalogFacets(t *testing.T) {
	env := newTestEnv(t)
	env.seedHospitals()

	body := decode[FacetsResponse](t, env.do("GET", "/api/v1/catalog/hospitals/facets", ""))
	cities := body.Facets["city"]
	if len(cities) == 0 || cities[0] != "All Cities" || cities[1] != "Delhi" {
		t.Errorf("city options = %v", cities)
	}
}

func TestGetRecord(t *testing.T) {
	env := newTestEnv(t)
	id := env.repo.add("treatments", map[string]any{"title": "Knee Replacement", "pricing": "4500"})

	rr := env.do("GET", "/api/v1/catalog/treatments/"+id, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := decode[map[string]any](t, rr)
	if body["name"] != "Knee Replacement" || body["pricing"] != 4500.0 {
		t.Errorf("record = %v", body)
	}

	if rr := env.do("GET", "/api/v1/catalog/treatments/missing", ""); rr.Code != http.StatusNotFound {
		t.Errorf("missing: status = %d", rr.Code)
	}
}

func TestSuggest(t *testing.T) {
	env := newTestEnv(t)
	env.seedHospitals()
	env.repo.add("doctors", map[string]any{"name": "Dr. Apurva Shah", "hospital": "Apollo"})

	body := decode[SuggestResponse](t, env.do("GET", "/api/v1/suggest?q=ap&limit=5", ""))
	if len(body.Items) != 2 {
		t.Errorf("suggestions = %+v", body.Items)
	}

	if rr := env.do("GET", "/api/v1/suggest?q=ap&limit=0", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("limit=0: status = %d", rr.Code)
	}
}

// --- Inquiries ---

const validInquiry = `{"fullName":"Asha Menon","email":"asha@example.com","mobile":"+91 98450 00000",
"country":"India","state":"Kerala","condition":"Knee pain","treatments":["Knee Replacement"],"hospitals":["AIIMS"]}`

func TestSubmitInquiry(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do("POST", "/api/v1/inquiries", validInquiry)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body)
	}
	inq := decode[InquiryResponse](t, rr)
	if inq.ID == "" || inq.Status != "New" || inq.Phone != "+91 98450 00000" {
		t.Errorf("inquiry = %+v", inq)
	}
}

func TestSubmitInquiry_Invalid(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do("POST", "/api/v1/inquiries", `{"fullName":"Asha"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rr.Code)
	}
	body := decode[ErrorResponse](t, rr)
	if body.Code != ErrorCodeValidationFailed || len(body.Fields) == 0 {
		t.Errorf("error = %+v", body)
	}

	if rr := env.do("POST", "/api/v1/inquiries", `{not json`); rr.Code != http.StatusBadRequest {
		t.Errorf("bad json: status = %d", rr.Code)
	}
}

func TestInquiryWorkflow(t *testing.T) {
	env := newTestEnv(t, "secret")
	auth := []string{"Authorization", "Bearer secret"}

	created := decode[InquiryResponse](t, env.do("POST", "/api/v1/inquiries", validInquiry))

	if rr := env.do("GET", "/api/v1/admin/inquiries", ""); rr.Code != http.StatusUnauthorized {
		t.Errorf("without key: status = %d", rr.Code)
	}

	list := decode[InquiryListResponse](t, env.do("GET", "/api/v1/admin/inquiries?q=knee", "", auth...))
	if list.Total != 1 || list.Items[0].ID != created.ID {
		t.Errorf("list = %+v", list)
	}

	target := "/api/v1/admin/inquiries/" + created.ID + "/status"
	if rr := env.do("POST", target, `{"status":"Completed"}`, auth...); rr.Code != http.StatusConflict {
		t.Errorf("New -> Completed: status = %d", rr.Code)
	}
	if rr := env.do("POST", target, `{"status":"Archived"}`, auth...); rr.Code != http.StatusBadRequest {
		t.Errorf("unknown status: status = %d", rr.Code)
	}
	rr := env.do("POST", target, `{"status":"In Progress"}`, auth...)
	if rr.Code != http.StatusOK || decode[InquiryResponse](t, rr).Status != "In Progress" {
		t.Errorf("advance: status = %d", rr.Code)
	}

	if rr := env.do("DELETE", "/api/v1/admin/inquiries/"+created.ID, "", auth...); rr.Code != http.StatusNoContent {
		t.Errorf("delete: status = %d", rr.Code)
	}
	if rr := env.do("GET", "/api/v1/admin/inquiries/"+created.ID, "", auth...); rr.Code != http.StatusNotFound {
		t.Errorf("get deleted: status = %d", rr.Code)
	}
}

// --- Admin ---

func TestAdminCreateVisibleInCatalog(t *testing.T) {
	env := newTestEnv(t)
	env.seedHospitals()

	// warm the snapshot
	_ = env.do("GET", "/api/v1/catalog/hospitals", "")

	rr := env.do("POST", "/api/v1/admin/hospitals",
		`{"name":"Manipal","city":"Bangalore","country":"India","specialties":"Oncology; Cardiology"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body)
	}
	if !strings.HasPrefix(rr.Header().Get("Location"), "/api/v1/catalog/hospitals/") {
		t.Errorf("location = %q", rr.Header().Get("Location"))
	}

	page := decode[pageBody](t, env.do("GET", "/api/v1/catalog/hospitals?q=manipal", ""))
	if page.Total != 1 {
		t.Errorf("created hospital not listed: %+v", page)
	}
}

func TestAdminCreate_Invalid(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do("POST", "/api/v1/admin/doctors", `{"name":"Dr. Rao"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rr.Code)
	}
	if body := decode[ErrorResponse](t, rr); len(body.Fields) != 1 || body.Fields[0] != "hospital" {
		t.Errorf("fields = %v", body.Fields)
	}

	if rr := env.do("POST", "/api/v1/admin/doctors", `[1,2]`); rr.Code != http.StatusBadRequest {
		t.Errorf("array body: status = %d", rr.Code)
	}
}

func TestAdminUpdateDeleteList(t *testing.T) {
	env := newTestEnv(t)
	env.seedHospitals()
	id := env.repo.add("hospitals", map[string]any{"name": "Ruby Hall", "city": "Pune", "country": "India"})

	rr := env.do("PUT", "/api/v1/admin/hospitals/"+id, `{"city":"Mumbai"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update: status = %d, body = %s", rr.Code, rr.Body)
	}

	list := decode[RecordListResponse](t, env.do("GET", "/api/v1/admin/hospitals?q=mumbai", ""))
	if list.Total != 3 {
		t.Errorf("admin quick filter on city: total = %d, want 3", list.Total)
	}

	if rr := env.do("DELETE", "/api/v1/admin/hospitals/"+id, ""); rr.Code != http.StatusNoContent {
		t.Errorf("delete: status = %d", rr.Code)
	}
	if rr := env.do("DELETE", "/api/v1/admin/hospitals/"+id, ""); rr.Code != http.StatusNotFound {
		t.Errorf("delete twice: status = %d", rr.Code)
	}
}

func TestAdminImport(t *testing.T) {
	env := newTestEnv(t)
	csv := "name,hospital,specialty,bio,imageUrl\n" +
		"Dr. Naresh Trehan,Medanta,Cardiology,,\n" +
		"Dr. Nobody,,,,\n"

	rr := env.do("POST", "/api/v1/admin/doctors/import", csv, "Content-Type", "text/csv")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body)
	}
	body := decode[ImportResponse](t, rr)
	if body.Imported != 1 || body.Failed != 1 {
		t.Errorf("summary = %+v", body)
	}
	if body.Items[1].Line != 3 || body.Items[1].Error == nil || body.Items[1].Error.Code != ErrorCodeValidationFailed {
		t.Errorf("failed row = %+v", body.Items[1])
	}

	rr = env.do("POST", "/api/v1/admin/doctors/import", "foo\nbar\n")
	if rr.Code != http.StatusBadRequest || decode[ErrorResponse](t, rr).Code != ErrorCodeInvalidImport {
		t.Errorf("bad csv: status = %d", rr.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do("GET", "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if body := decode[HealthResponse](t, rr); body.Status != "ok" || body.Checks["database"] != "ok" {
		t.Errorf("health = %+v", body)
	}
}
