package drawing

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Disciplines decodes from a JSON object keyed by discipline name and keeps
// the document's key order.
type Disciplines []Discipline

// Regions decodes from a JSON object keyed by region name and keeps the
// document's key order.
type Regions []Region

// Drawings decodes from a JSON object keyed by drawing id and keeps the
// document's key order.
type Drawings []Drawing

// UnmarshalJSON implements json.Unmarshaler.
func (d *Disciplines) UnmarshalJSON(data []byte) error {
	keys, values, err := decodeOrdered[Discipline](data)
	if err != nil {
		return fmt.Errorf("disciplines: %w", err)
	}
	if keys == nil {
		*d = nil
		return nil
	}
	out := make(Disciplines, len(values))
	for i := range values {
		values[i].Name = keys[i]
		out[i] = values[i]
	}
	*d = out
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Disciplines) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}
	keys := make([]string, len(d))
	for i := range d {
		keys[i] = d[i].Name
	}
	return encodeOrdered(keys, []Discipline(d))
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Regions) UnmarshalJSON(data []byte) error {
	keys, values, err := decodeOrdered[Region](data)
	if err != nil {
		return fmt.Errorf("regions: %w", err)
	}
	if keys == nil {
		*r = nil
		return nil
	}
	out := make(Regions, len(values))
	for i := range values {
		values[i].Name = keys[i]
		out[i] = values[i]
	}
	*r = out
	return nil
}

// MarshalJSON implements json.Marshaler.
func (r Regions) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	keys := make([]string, len(r))
	for i := range r {
		keys[i] = r[i].Name
	}
	return encodeOrdered(keys, []Region(r))
}

// UnmarshalJSON implements json.Unmarshaler. The object key wins over a
// missing "id" field.
func (d *Drawings) UnmarshalJSON(data []byte) error {
	keys, values, err := decodeOrdered[Drawing](data)
	if err != nil {
		return fmt.Errorf("drawings: %w", err)
	}
	out := make(Drawings, len(values))
	for i := range values {
		if values[i].ID == "" {
			values[i].ID = keys[i]
		}
		out[i] = values[i]
	}
	*d = out
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Drawings) MarshalJSON() ([]byte, error) {
	keys := make([]string, len(d))
	for i := range d {
		keys[i] = d[i].ID
	}
	return encodeOrdered(keys, []Drawing(d))
}

// decodeOrdered reads a JSON object into parallel key/value slices in
// document order. A JSON null yields nil slices.
func decodeOrdered[T any](data []byte) ([]string, []T, error) {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("expected object, got %v", tok)
	}

	keys := []string{}
	values := []T{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("expected string key, got %v", tok)
		}
		var v T
		if err := dec.Decode(&v); err != nil {
			return nil, nil, fmt.Errorf("key %q: %w", key, err)
		}
		keys = append(keys, key)
		values = append(values, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return keys, values, nil
}

func encodeOrdered[T any](keys []string, values []T) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
