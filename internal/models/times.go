package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// optionalTime decodes timestamp fields of legacy documents, where "never"
// is an empty string rather than null.
type optionalTime struct {
	t *time.Time
}

func (o *optionalTime) UnmarshalJSON(raw []byte) error {
	if bytes.Equal(raw, []byte("null")) || bytes.Equal(raw, []byte(`""`)) {
		o.t = nil
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(raw, &t); err != nil {
		return err
	}
	o.t = &t
	return nil
}
