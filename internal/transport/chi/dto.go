package chi

import (
	"time"

	dombatch "github.com/medwayhorizons/healthbridge/internal/domain/batch"
	"github.com/medwayhorizons/healthbridge/internal/domain/catalog"
	dominquiry "github.com/medwayhorizons/healthbridge/internal/domain/inquiry"
	"github.com/medwayhorizons/healthbridge/internal/domain/query"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// PageResponse is one rendered listing.
type PageResponse struct {
	Items       []catalog.Record `json:"items"`
	Total       int              `json:"total"`
	Visible     int              `json:"visible"`
	CanShowMore bool             `json:"can_show_more"`
	CanShowLess bool             `json:"can_show_less"`
	Cursor      string           `json:"cursor,omitempty"`
}

// FacetsResponse lists dropdown options per facet; the first option is the
// "All" label.
type FacetsResponse struct {
	Facets map[string][]string `json:"facets"`
}

// SuggestResponse is the body of GET /suggest.
type SuggestResponse struct {
	Items []query.Suggestion `json:"items"`
}

// RecordListResponse is an admin listing.
type RecordListResponse struct {
	Items []catalog.Record `json:"items"`
	Total int              `json:"total"`
}

// ImportRowResult reports one CSV row.
type ImportRowResult struct {
	Line   int            `json:"line"`
	ID     string         `json:"id,omitempty"`
	Status string         `json:"status"`
	Error  *ErrorResponse `json:"error,omitempty"`
}

// ImportResponse is the body of POST /admin/{kind}/import.
type ImportResponse struct {
	Items    []ImportRowResult `json:"items"`
	Imported int               `json:"imported"`
	Failed   int               `json:"failed"`
}

// InquiryRequest is the lead capture form. mobile is accepted for phone.
type InquiryRequest struct {
	FullName   string   `json:"fullName"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone"`
	Mobile     string   `json:"mobile"`
	Country    string   `json:"country"`
	State      string   `json:"state"`
	Condition  string   `json:"condition"`
	Treatments []string `json:"treatments"`
	Hospitals  []string `json:"hospitals"`
}

// StatusRequest is the body of POST /admin/inquiries/{id}/status.
type StatusRequest struct {
	Status string `json:"status"`
}

// InquiryResponse is one inquiry.
type InquiryResponse struct {
	ID         string    `json:"id"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Country    string    `json:"country"`
	State      string    `json:"state"`
	Condition  string    `json:"condition"`
	Treatments []string  `json:"treatments"`
	Hospitals  []string  `json:"hospitals"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

// InquiryListResponse is the admin inquiry table.
type InquiryListResponse struct {
	Items []InquiryResponse `json:"items"`
	Total int               `json:"total"`
}

func pageToResponse(p query.Page, cursor string) PageResponse {
	items := make([]catalog.Record, len(p.Items))
	for i, it := range p.Items {
		items[i] = it.Record()
	}
	return PageResponse{
		Items:       items,
		Total:       p.Total,
		Visible:     p.Visible,
		CanShowMore: p.CanShowMore,
		CanShowLess: p.CanShowLess,
		Cursor:      cursor,
	}
}

func importToResponse(results []dombatch.Result) ImportResponse {
	items := make([]ImportRowResult, len(results))
	for i, res := range results {
		item := ImportRowResult{
			Line:   res.Line(),
			ID:     res.ID(),
			Status: string(res.Status()),
		}
		if res.Err() != nil {
			item.Error = importRowError(res.Err())
		}
		items[i] = item
	}
	sum := dombatch.Summarize(results)
	return ImportResponse{Items: items, Imported: sum.Imported, Failed: sum.Failed}
}

func (r InquiryRequest) toDomain() dominquiry.Inquiry {
	phone := r.Phone
	if phone == "" {
		phone = r.Mobile
	}
	return dominquiry.Inquiry{
		FullName:   r.FullName,
		Email:      r.Email,
		Phone:      phone,
		Country:    r.Country,
		State:      r.State,
		Condition:  r.Condition,
		Treatments: r.Treatments,
		Hospitals:  r.Hospitals,
	}
}

func inquiryToResponse(inq dominquiry.Inquiry) InquiryResponse {
	return InquiryResponse{
		ID:         inq.ID,
		FullName:   inq.FullName,
		Email:      inq.Email,
		Phone:      inq.Phone,
		Country:    inq.Country,
		State:      inq.State,
		Condition:  inq.Condition,
		Treatments: inq.Treatments,
		Hospitals:  inq.Hospitals,
		Status:     string(inq.Status),
		CreatedAt:  inq.CreatedAt,
	}
}
