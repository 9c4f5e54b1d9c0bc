package chi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	dominquiry "github.com/medwayhorizons/healthbridge/internal/domain/inquiry"
)

// SubmitInquiry handles POST /api/v1/inquiries.
func (s *Server) SubmitInquiry(w http.ResponseWriter, r *http.Request) {
	var req InquiryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	inq, err := s.inquiries.Submit(r.Context(), req.toDomain())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, inquiryToResponse(inq))
}

// ListInquiries handles GET /api/v1/admin/inquiries.
func (s *Server) ListInquiries(w http.ResponseWriter, r *http.Request) {
	var q *string
	if err := bindOptional("q", r.URL.Query(), &q); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	list, err := s.inquiries.List(r.Context(), deref(q))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	items := make([]InquiryResponse, len(list))
	for i, inq := range list {
		items[i] = inquiryToResponse(inq)
	}
	writeJSON(w, http.StatusOK, InquiryListResponse{Items: items, Total: len(items)})
}

// GetInquiry handles GET /api/v1/admin/inquiries/{id}.
func (s *Server) GetInquiry(w http.ResponseWriter, r *http.Request) {
	inq, err := s.inquiries.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inquiryToResponse(inq))
}

// AdvanceInquiry handles POST /api/v1/admin/inquiries/{id}/status.
func (s *Server) AdvanceInquiry(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	next, err := dominquiry.ParseStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest,
			"status must be one of New, In Progress, Completed")
		return
	}
	inq, err := s.inquiries.Advance(r.Context(), chi.URLParam(r, "id"), next)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inquiryToResponse(inq))
}

// DeleteInquiry handles DELETE /api/v1/admin/inquiries/{id}.
func (s *Server) DeleteInquiry(w http.ResponseWriter, r *http.Request) {
	if err := s.inquiries.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
