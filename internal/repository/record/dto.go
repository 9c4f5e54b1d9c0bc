package record

import (
	"encoding/json"
	"fmt"

	"github.com/medwayhorizons/healthbridge/internal/domain/rawdoc"
)

// envelope is the JSON value stored at a record key.
type envelope struct {
	ID        string         `json:"id"`
	CreatedAt int64          `json:"created_at"`
	Fields    map[string]any `json:"fields"`
}

func docToJSON(d rawdoc.Doc) ([]byte, error) {
	fields := d.Fields
	if fields == nil {
		fields = map[string]any{}
	}
	data, err := json.Marshal(envelope{ID: d.ID, CreatedAt: d.CreatedAt, Fields: fields})
	if err != nil {
		return nil, fmt.Errorf("marshal record %s: %w", d.ID, err)
	}
	return data, nil
}

func docFromJSON(data []byte) (rawdoc.Doc, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return rawdoc.Doc{}, fmt.Errorf("unmarshal record: %w", err)
	}
	if env.Fields == nil {
		env.Fields = map[string]any{}
	}
	return rawdoc.Doc{ID: env.ID, CreatedAt: env.CreatedAt, Fields: env.Fields}, nil
}
