package dto

import (
	"bytes"
	"encoding/json"
	"time"
)

// NullableTime tells an absent JSON field apart from an explicit null.
// Set is true whenever the field appeared in the payload.
type NullableTime struct {
	Set  bool
	Time *time.Time
}

func (n *NullableTime) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Time = nil
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	n.Time = &t
	return nil
}

func (n NullableTime) MarshalJSON() ([]byte, error) {
	if n.Time == nil {
		return []byte("null"), nil
	}
	return json.Marshal(n.Time)
}
