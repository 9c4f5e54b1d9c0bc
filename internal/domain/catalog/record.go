package catalog

import (
	"strings"
	"time"

	"github.com/medwayhorizons/healthbridge/internal/domain/rawdoc"
)

// Profile selects which fields feed an item's searchable text.
type Profile int

const (
	// ProfilePublic matches what the public listing pages search.
	ProfilePublic Profile = iota
	// ProfileAdmin matches the admin console quick filter.
	ProfileAdmin
)

// Record is a typed catalog record.
type Record interface {
	Kind() Kind
	RecordID() string
	// Item projects the record for the query engine.
	Item(p Profile) Item
	// Fields returns the canonical stored shape, without the id.
	Fields() map[string]any
}

// Hospital is a partner hospital.
type Hospital struct {
	ID          string    `json:"id"`
	Name        string    `json:"name" validate:"required,max=200"`
	City        string    `json:"city" validate:"required,max=100"`
	Country     string    `json:"country" validate:"required,max=100"`
	Specialties []string  `json:"specialties" validate:"dive,max=100"`
	Image       string    `json:"image,omitempty" validate:"max=2048"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Doctor is a specialist attached to a hospital.
type Doctor struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" validate:"required,max=200"`
	Hospital  string    `json:"hospital" validate:"required,max=200"`
	Specialty []string  `json:"specialty" validate:"dive,max=100"`
	Bio       string    `json:"bio,omitempty"`
	Image     string    `json:"image,omitempty" validate:"max=2048"`
	CreatedAt time.Time `json:"createdAt"`
}

// CostRow is one line of a treatment price table.
type CostRow struct {
	Label string `json:"label"`
	Price string `json:"price"`
	Notes string `json:"notes,omitempty"`
}

// Treatment is a procedure offered through partner hospitals.
type Treatment struct {
	ID              string    `json:"id"`
	Name            string    `json:"name" validate:"required,max=200"`
	Description     string    `json:"description,omitempty"`
	DescriptionHTML string    `json:"descriptionHtml,omitempty"`
	WhyChooseHTML   string    `json:"whyChooseHtml,omitempty"`
	Costing         []CostRow `json:"costing"`
	Procedures      []string  `json:"procedures"`
	Category        string    `json:"category,omitempty" validate:"max=100"`
	Keywords        string    `json:"keywords,omitempty"`
	Pricing         *float64  `json:"pricing" validate:"omitempty,gte=0"`
	Duration        string    `json:"duration,omitempty"`
	Image           string    `json:"image,omitempty" validate:"max=2048"`
	CreatedAt       time.Time `json:"createdAt"`
}

// BlogPost is an article on the blog.
type BlogPost struct {
	ID            string    `json:"id"`
	Title         string    `json:"title" validate:"required,max=300"`
	Excerpt       string    `json:"excerpt,omitempty"`
	Content       string    `json:"content,omitempty"`
	ImageURL      string    `json:"imageUrl,omitempty" validate:"max=2048"`
	PublishedDate time.Time `json:"publishedDate"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Normalize converts a stored document into a typed record. Legacy and
// wrong-typed fields are reconciled; nothing here fails.
func Normalize(k Kind, d rawdoc.Doc) Record {
	f := d.Fields
	var created time.Time
	if d.CreatedAt > 0 {
		created = time.UnixMilli(d.CreatedAt).UTC()
	}
	switch k {
	case KindHospitals:
		specs := rawdoc.Strings(f, "specialties")
		if len(specs) == 0 {
			specs = rawdoc.Strings(f, "specialty")
		}
		return &Hospital{
			ID:          d.ID,
			Name:        rawdoc.String(f, "name"),
			City:        rawdoc.String(f, "city"),
			Country:     rawdoc.String(f, "country"),
			Specialties: specs,
			Image:       rawdoc.Image(f),
			Description: rawdoc.String(f, "description"),
			CreatedAt:   created,
		}
	case KindDoctors:
		specs := rawdoc.Strings(f, "specialty")
		if len(specs) == 0 {
			specs = rawdoc.Strings(f, "specialties")
		}
		return &Doctor{
			ID:        d.ID,
			Name:      rawdoc.String(f, "name"),
			Hospital:  rawdoc.String(f, "hospital"),
			Specialty: specs,
			Bio:       rawdoc.String(f, "bio"),
			Image:     rawdoc.Image(f),
			CreatedAt: created,
		}
	case KindTreatments:
		return &Treatment{
			ID:              d.ID,
			Name:            rawdoc.String(f, "name", "title"),
			Description:     rawdoc.String(f, "description"),
			DescriptionHTML: rawdoc.String(f, "descriptionHtml"),
			WhyChooseHTML:   rawdoc.String(f, "whyChooseHtml"),
			Costing:         costing(f),
			Procedures:      procedures(f),
			Category:        rawdoc.String(f, "category"),
			Keywords:        keywords(f),
			Pricing:         rawdoc.Float(f, "pricing"),
			Duration:        rawdoc.String(f, "duration"),
			Image:           rawdoc.Image(f),
			CreatedAt:       created,
		}
	case KindBlogs:
		return &BlogPost{
			ID:            d.ID,
			Title:         rawdoc.String(f, "title", "name"),
			Excerpt:       rawdoc.String(f, "excerpt"),
			Content:       rawdoc.String(f, "content"),
			ImageURL:      rawdoc.Image(f),
			PublishedDate: rawdoc.Time(f, "publishedDate", "date"),
			CreatedAt:     created,
		}
	}
	return nil
}

func costing(f map[string]any) []CostRow {
	rows := make([]CostRow, 0)
	for _, r := range rawdoc.Objects(f, "costing") {
		label := rawdoc.String(r, "label")
		price := rawdoc.String(r, "price")
		if label == "" && price == "" {
			continue
		}
		rows = append(rows, CostRow{Label: label, Price: price})
	}
	if len(rows) > 0 {
		return rows
	}
	// legacy rows: {item, min, max, notes}
	for _, r := range rawdoc.Objects(f, "costRows") {
		label := rawdoc.String(r, "item", "label")
		lo, hi := rawdoc.String(r, "min"), rawdoc.String(r, "max")
		price := lo
		switch {
		case lo != "" && hi != "" && lo != hi:
			price = lo + "-" + hi
		case lo == "":
			price = hi
		}
		if label == "" && price == "" {
			continue
		}
		rows = append(rows, CostRow{Label: label, Price: price, Notes: rawdoc.String(r, "notes")})
	}
	return rows
}

func procedures(f map[string]any) []string {
	if s, ok := f["procedures"].(string); ok {
		out := make([]string, 0)
		for _, line := range strings.Split(s, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				out = append(out, line)
			}
		}
		return out
	}
	if list := rawdoc.Strings(f, "procedures"); list != nil {
		return list
	}
	return []string{}
}

func keywords(f map[string]any) string {
	if s := rawdoc.String(f, "keywords"); s != "" {
		return s
	}
	if list := rawdoc.Strings(f, "keywords"); len(list) > 0 {
		return strings.Join(list, ", ")
	}
	return ""
}

// Kind implements Record.
func (h *Hospital) Kind() Kind { return KindHospitals }

// RecordID implements Record.
func (h *Hospital) RecordID() string { return h.ID }

// Item implements Record.
func (h *Hospital) Item(p Profile) Item {
	text := []string{h.Name}
	if p == ProfileAdmin {
		text = append(text, h.City, h.Country)
	}
	return NewItem(ItemSpec{
		ID:   h.ID,
		Kind: KindHospitals,
		Name: h.Name,
		City: h.City,
		Text: text,
		Facets: map[string][]string{
			FacetCity:      {h.City},
			FacetCountry:   {h.Country},
			FacetSpecialty: h.Specialties,
		},
		Record: h,
	})
}

// Fields implements Record.
func (h *Hospital) Fields() map[string]any {
	return map[string]any{
		"name":        h.Name,
		"city":        h.City,
		"country":     h.Country,
		"specialties": nonNil(h.Specialties),
		"image":       h.Image,
		"description": h.Description,
	}
}

// Kind implements Record.
func (d *Doctor) Kind() Kind { return KindDoctors }

// RecordID implements Record.
func (d *Doctor) RecordID() string { return d.ID }

// Item implements Record.
func (d *Doctor) Item(Profile) Item {
	return NewItem(ItemSpec{
		ID:   d.ID,
		Kind: KindDoctors,
		Name: d.Name,
		Text: []string{d.Name, d.Hospital},
		Facets: map[string][]string{
			FacetHospital:  {d.Hospital},
			FacetSpecialty: d.Specialty,
		},
		Record: d,
	})
}

// Fields implements Record.
func (d *Doctor) Fields() map[string]any {
	return map[string]any{
		"name":      d.Name,
		"hospital":  d.Hospital,
		"specialty": nonNil(d.Specialty),
		"bio":       d.Bio,
		"image":     d.Image,
	}
}

// Kind implements Record.
func (t *Treatment) Kind() Kind { return KindTreatments }

// RecordID implements Record.
func (t *Treatment) RecordID() string { return t.ID }

// Item implements Record.
func (t *Treatment) Item(p Profile) Item {
	text := []string{t.Name, t.Category, t.Keywords}
	if p == ProfileAdmin {
		text = []string{t.Name, t.Description, t.Category, t.Keywords}
	}
	return NewItem(ItemSpec{
		ID:   t.ID,
		Kind: KindTreatments,
		Name: t.Name,
		Text: text,
		Facets: map[string][]string{
			FacetName:     {t.Name},
			FacetCategory: {t.Category},
		},
		Record: t,
	})
}

// Fields implements Record.
func (t *Treatment) Fields() map[string]any {
	rows := make([]map[string]any, 0, len(t.Costing))
	for _, r := range t.Costing {
		row := map[string]any{"label": r.Label, "price": r.Price}
		if r.Notes != "" {
			row["notes"] = r.Notes
		}
		rows = append(rows, row)
	}
	var pricing any
	if t.Pricing != nil {
		pricing = *t.Pricing
	}
	return map[string]any{
		"name":            t.Name,
		"description":     t.Description,
		"descriptionHtml": t.DescriptionHTML,
		"whyChooseHtml":   t.WhyChooseHTML,
		"costing":         rows,
		"procedures":      nonNil(t.Procedures),
		"category":        t.Category,
		"keywords":        t.Keywords,
		"pricing":         pricing,
		"duration":        t.Duration,
		"image":           t.Image,
	}
}

// Kind implements Record.
func (b *BlogPost) Kind() Kind { return KindBlogs }

// RecordID implements Record.
func (b *BlogPost) RecordID() string { return b.ID }

// Item implements Record.
func (b *BlogPost) Item(p Profile) Item {
	text := []string{b.Title, b.Excerpt}
	if p == ProfileAdmin {
		text = append(text, b.Content)
	}
	return NewItem(ItemSpec{
		ID:        b.ID,
		Kind:      KindBlogs,
		Name:      b.Title,
		Published: b.PublishedDate,
		Text:      text,
		Record:    b,
	})
}

// Fields implements Record.
func (b *BlogPost) Fields() map[string]any {
	published := ""
	if !b.PublishedDate.IsZero() {
		published = b.PublishedDate.UTC().Format(time.RFC3339)
	}
	return map[string]any{
		"title":         b.Title,
		"excerpt":       b.Excerpt,
		"content":       b.Content,
		"imageUrl":      b.ImageURL,
		"publishedDate": published,
	}
}

// Items projects documents of one collection through a profile.
func Items(k Kind, docs []rawdoc.Doc, p Profile) []Item {
	out := make([]Item, 0, len(docs))
	for _, d := range docs {
		if r := Normalize(k, d); r != nil {
			out = append(out, r.Item(p))
		}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
