package httputil

import (
	"bytes"
	"encoding/json"
)

// OptionalString is a nullable PATCH field (RFC 7396 merge semantics):
//   - Present=false: key absent, keep the stored value
//   - Present=true, Value=nil: key is null, clear the column
//   - Present=true, Value=&s: set to s (may be "")
type OptionalString struct {
	Present bool
	Value   *string
}

// UnmarshalJSON implements json.Unmarshaler.
// When this method is called, the field was present in the JSON.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true

	// Check for JSON null
	if string(bytes.TrimSpace(data)) == "null" {
		o.Value = nil
		return nil
	}

	// Parse as string
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// Apply overwrites *dst when the key was present
func (o OptionalString) Apply(dst **string) {
	if o.Present {
		*dst = o.Value
	}
}
