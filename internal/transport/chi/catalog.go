package chi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/medwayhorizons/healthbridge/internal/domain"
	"github.com/medwayhorizons/healthbridge/internal/domain/catalog"
	"github.com/medwayhorizons/healthbridge/internal/domain/query"
	cataloguc "github.com/medwayhorizons/healthbridge/internal/usecase/catalog"
)

// BrowseCatalog handles GET /api/v1/catalog/{kind}.
//
// Without visible the request is cursor-driven: pass back the cursor of the
// previous reply with page=more or page=less. With visible the listing is
// rendered statelessly at that size and page or cursor are rejected.
func (s *Server) BrowseCatalog(w http.ResponseWriter, r *http.Request) {
	kind, ok := s.kindParam(w, r)
	if !ok {
		return
	}
	params, err := bindBrowseParams(kind, r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	sortKey, err := params.sortKey()
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	move, err := params.move()
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}

	ctx, notices := domain.NewContextWithNotices(r.Context())
	var resp PageResponse
	if params.Visible != nil {
		page := s.catalog.Query(ctx, kind, query.Params{
			FreeText: deref(params.Q),
			Facets:   params.Facets,
			Sort:     sortKey,
			Visible:  *params.Visible,
		})
		resp = pageToResponse(page, "")
	} else {
		page, cursor := s.catalog.Browse(ctx, kind, cataloguc.BrowseRequest{
			FreeText: deref(params.Q),
			Facets:   params.Facets,
			Sort:     sortKey,
			Cursor:   deref(params.Cursor),
			Move:     move,
		})
		resp = pageToResponse(page, cursor)
	}

	setNotices(w, notices)
	writeJSON(w, http.StatusOK, resp)
}

// CatalogFacets handles GET /api/v1/catalog/{kind}/facets.
func (s *Server) CatalogFacets(w http.ResponseWriter, r *http.Request) {
	kind, ok := s.kindParam(w, r)
	if !ok {
		return
	}
	ctx, notices := domain.NewContextWithNotices(r.Context())
	facets := s.catalog.Facets(ctx, kind)
	setNotices(w, notices)
	writeJSON(w, http.StatusOK, FacetsResponse{Facets: facets})
}

// GetRecord handles GET /api/v1/catalog/{kind}/{id}.
func (s *Server) GetRecord(w http.ResponseWriter, r *http.Request) {
	kind, ok := s.kindParam(w, r)
	if !ok {
		return
	}
	rec, err := s.catalog.Get(r.Context(), kind, chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Suggest handles GET /api/v1/suggest.
func (s *Server) Suggest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var text *string
	var limit *int
	if err := bindOptional("q", q, &text); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	if err := bindOptional("limit", q, &limit); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	if limit != nil && (*limit < 1 || *limit > 50) {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "limit must be between 1 and 50")
		return
	}

	ctx, notices := domain.NewContextWithNotices(r.Context())
	items := s.catalog.Suggest(ctx, deref(text), deref(limit))
	setNotices(w, notices)
	writeJSON(w, http.StatusOK, SuggestResponse{Items: items})
}

func (s *Server) kindParam(w http.ResponseWriter, r *http.Request) (catalog.Kind, bool) {
	kind, err := catalog.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return "", false
	}
	return kind, true
}

func setNotices(w http.ResponseWriter, n *domain.Notices) {
	if msgs := n.List(); len(msgs) > 0 {
		w.Header().Set(NoticeHeader, strings.Join(msgs, "; "))
	}
}
