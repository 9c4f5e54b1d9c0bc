package chi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ListRecords handles GET /api/v1/admin/{kind}.
func (s *Server) ListRecords(w http.ResponseWriter, r *http.Request) {
	kind, ok := s.kindParam(w, r)
	if !ok {
		return
	}
	var q *string
	if err := bindOptional("q", r.URL.Query(), &q); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	recs, err := s.admin.List(r.Context(), kind, deref(q))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RecordListResponse{Items: recs, Total: len(recs)})
}

// CreateRecord handles POST /api/v1/admin/{kind}.
func (s *Server) CreateRecord(w http.ResponseWriter, r *http.Request) {
	kind, ok := s.kindParam(w, r)
	if !ok {
		return
	}
	fields, ok := s.decodeFields(w, r)
	if !ok {
		return
	}
	rec, err := s.admin.Create(r.Context(), kind, fields)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/v1/catalog/"+kind.Collection()+"/"+rec.RecordID())
	writeJSON(w, http.StatusCreated, rec)
}

// UpdateRecord handles PUT /api/v1/admin/{kind}/{id}. Omitted fields keep
// their stored values.
func (s *Server) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	kind, ok := s.kindParam(w, r)
	if !ok {
		return
	}
	fields, ok := s.decodeFields(w, r)
	if !ok {
		return
	}
	rec, err := s.admin.Update(r.Context(), kind, chi.URLParam(r, "id"), fields)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// DeleteRecord handles DELETE /api/v1/admin/{kind}/{id}.
func (s *Server) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	kind, ok := s.kindParam(w, r)
	if !ok {
		return
	}
	if err := s.admin.Delete(r.Context(), kind, chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImportRecords handles POST /api/v1/admin/{kind}/import with a text/csv body.
func (s *Server) ImportRecords(w http.ResponseWriter, r *http.Request) {
	kind, ok := s.kindParam(w, r)
	if !ok {
		return
	}
	body := http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	results, err := s.admin.Import(r.Context(), kind, body)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, importToResponse(results))
}

func (s *Server) decodeFields(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var fields map[string]any
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err := dec.Decode(&fields); err != nil || fields == nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: expected a JSON object")
		return nil, false
	}
	delete(fields, "id")
	delete(fields, "createdAt")
	return fields, true
}
