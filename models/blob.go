package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Blob is a schema-less structured value (a user's address or company)
// stored as a single JSON column. Its inner shape is never queried.
//
// A nil Blob is stored as SQL NULL and scans back to nil.
type Blob map[string]any

// Value implements driver.Valuer. The JSON text is passed as a string so
// that JSONB (Postgres), JSON (MySQL) and TEXT (SQLite) columns all accept it.
func (b Blob) Value() (driver.Value, error) {
	if b == nil {
		return nil, nil
	}
	raw, err := json.Marshal(map[string]any(b))
	if err != nil {
		return nil, fmt.Errorf("models: marshal blob: %w", err)
	}
	return string(raw), nil
}

// Scan implements sql.Scanner.
func (b *Blob) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*b = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("models: cannot scan %T into Blob", src)
	}
	if len(raw) == 0 || string(raw) == "null" {
		*b = nil
		return nil
	}
	// Numbers stay json.Number so integers beyond 2^53 survive the trip.
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return fmt.Errorf("models: unmarshal blob: %w", err)
	}
	*b = m
	return nil
}
