package core

import (
	"encoding/json"
	"time"
)

// Result is the output of one agent execution.
//
// Payload is the agent's business result. Slush is the signal payload the
// agent emits for downstream consumers; orchestrators forward it as upstream
// slush and never interpret its contents.
type Result struct {
	Payload any            `json:"result"`
	Slush   map[string]any `json:"data_slush,omitempty"`
}

// NewResult is a small helper for agents returning a payload with optional slush.
func NewResult(payload any, slush map[string]any) *Result {
	return &Result{Payload: payload, Slush: slush}
}

// Duration is a time.Duration encoded as integer milliseconds in JSON.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Milliseconds returns the duration as whole milliseconds.
func (d Duration) Milliseconds() int64 { return time.Duration(d).Milliseconds() }

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Milliseconds())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var ms int64
	if err := json.Unmarshal(b, &ms); err != nil {
		return err
	}
	*d = Duration(time.Duration(ms) * time.Millisecond)
	return nil
}

// Since returns the elapsed Duration since start.
func Since(start time.Time) Duration { return Duration(time.Since(start)) }
