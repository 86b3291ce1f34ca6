package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Ref identifies a record by numeric id or by name. Clients may send either a
// number or a string; a numeric string is accepted as both.
type Ref struct {
	ID   uint
	Name string
}

func RefID(id uint) Ref { return Ref{ID: id} }

func (r Ref) IsZero() bool { return r.ID == 0 && r.Name == "" }

func (r *Ref) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*r = Ref{}
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		r.Name = s
		if id, err := strconv.ParseUint(s, 10, 64); err == nil {
			r.ID = uint(id)
		}
		return nil
	}
	var id uint
	if err := json.Unmarshal(b, &id); err != nil {
		return fmt.Errorf("reference must be an id or a name: %w", err)
	}
	r.ID = id
	return nil
}

func (r Ref) MarshalJSON() ([]byte, error) {
	if r.ID != 0 {
		return json.Marshal(r.ID)
	}
	if r.Name != "" {
		return json.Marshal(r.Name)
	}
	return []byte("null"), nil
}

func (r Ref) String() string {
	if r.ID != 0 {
		return strconv.FormatUint(uint64(r.ID), 10)
	}
	return r.Name
}

// Nullable distinguishes an absent JSON field from an explicit null.
// Set is true whenever the field appeared in the body; Value is nil for null.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

func (n *Nullable[T]) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}
