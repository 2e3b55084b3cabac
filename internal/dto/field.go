package dto

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/yukikurage/teamtasks-api/internal/utils"
)

// Field is a PATCH field: absent, explicitly null, or a value.
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// UnmarshalJSON only runs for keys present in the body.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Null = true
		return nil
	}
	return json.Unmarshal(data, &f.Value)
}

// Ptr returns the value when it was sent and not null.
func (f Field[T]) Ptr() *T {
	if !f.Set || f.Null {
		return nil
	}
	v := f.Value
	return &v
}

// Timestamp decodes RFC 3339 timestamps and zone-less ones, which are read
// as UTC. It always holds a UTC time.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := utils.ParseTimestamp(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// TimePtr converts an optional Timestamp to an optional UTC time.
func TimePtr(t *Timestamp) *time.Time {
	if t == nil {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
