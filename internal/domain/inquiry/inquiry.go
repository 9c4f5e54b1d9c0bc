// Package inquiry models a patient quote request and its follow-up lifecycle.
package inquiry

import (
	"fmt"
	"strings"
	"time"

	"github.com/medwayhorizons/healthbridge/internal/domain"
	"github.com/medwayhorizons/healthbridge/internal/domain/catalog"
	"github.com/medwayhorizons/healthbridge/internal/domain/rawdoc"
)

// Collection is the store collection holding inquiries.
const Collection = "inquiries"

// Status is the follow-up state of an inquiry.
type Status string

// Statuses in lifecycle order.
const (
	StatusNew        Status = "New"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// ParseStatus accepts the display form, case-insensitively.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "new":
		return StatusNew, nil
	case "in progress", "in_progress":
		return StatusInProgress, nil
	case "completed":
		return StatusCompleted, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", domain.ErrInvalidTransition, s)
}

// CanAdvanceTo reports whether next directly follows s.
func (s Status) CanAdvanceTo(next Status) bool {
	switch s {
	case StatusNew:
		return next == StatusInProgress
	case StatusInProgress:
		return next == StatusCompleted
	}
	return false
}

// Inquiry is a quote request submitted from the public site.
type Inquiry struct {
	ID         string    `json:"id"`
	FullName   string    `json:"fullName" validate:"required,max=200"`
	Email      string    `json:"email" validate:"required,email,max=320"`
	Phone      string    `json:"phone" validate:"required,max=40"`
	Country    string    `json:"country" validate:"required,max=100"`
	State      string    `json:"state" validate:"required,max=100"`
	Condition  string    `json:"condition" validate:"required,max=5000"`
	Treatments []string  `json:"treatments" validate:"required,min=1,dive,required"`
	Hospitals  []string  `json:"hospitals" validate:"required,min=1,dive,required"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Validate checks the submission form rules.
func (i *Inquiry) Validate() error {
	return domain.Validate(i)
}

// Advance moves the inquiry to next.
func (i *Inquiry) Advance(next Status) error {
	if !i.Status.CanAdvanceTo(next) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, i.Status, next)
	}
	i.Status = next
	return nil
}

// FromDoc hydrates an inquiry. Older admin views stored the phone as mobile;
// a missing status reads as New.
func FromDoc(d rawdoc.Doc) Inquiry {
	f := d.Fields
	status := Status(rawdoc.String(f, "status"))
	if s, err := ParseStatus(string(status)); err == nil {
		status = s
	} else {
		status = StatusNew
	}
	created := rawdoc.Time(f, "createdAt")
	if created.IsZero() && d.CreatedAt > 0 {
		created = time.UnixMilli(d.CreatedAt).UTC()
	}
	return Inquiry{
		ID:         d.ID,
		FullName:   rawdoc.String(f, "fullName", "name"),
		Email:      rawdoc.String(f, "email"),
		Phone:      rawdoc.String(f, "phone", "mobile"),
		Country:    rawdoc.String(f, "country"),
		State:      rawdoc.String(f, "state"),
		Condition:  rawdoc.String(f, "condition"),
		Treatments: nonNil(rawdoc.Strings(f, "treatments")),
		Hospitals:  nonNil(rawdoc.Strings(f, "hospitals")),
		Status:     status,
		CreatedAt:  created,
	}
}

// Fields returns the stored shape, without the id.
func (i *Inquiry) Fields() map[string]any {
	created := ""
	if !i.CreatedAt.IsZero() {
		created = i.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	return map[string]any{
		"fullName":   i.FullName,
		"email":      i.Email,
		"phone":      i.Phone,
		"country":    i.Country,
		"state":      i.State,
		"condition":  i.Condition,
		"treatments": nonNil(i.Treatments),
		"hospitals":  nonNil(i.Hospitals),
		"status":     string(i.Status),
		"createdAt":  created,
	}
}

// Item projects the inquiry for the admin quick filter.
func (i *Inquiry) Item() catalog.Item {
	return catalog.NewItem(catalog.ItemSpec{
		ID:        i.ID,
		Kind:      catalog.Kind(Collection),
		Name:      i.FullName,
		Published: i.CreatedAt,
		Text:      []string{i.FullName, i.Email, i.Phone, i.Condition},
	})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
