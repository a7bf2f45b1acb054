package form

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// DecodeValues reads a JSON object of field values. Numbers keep their
// literal text, booleans become "true"/"false" and null becomes empty; arrays
// and nested objects are rejected.
func DecodeValues(r io.Reader) (map[string]string, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("form: decode values: %w", err)
	}
	values := make(map[string]string, len(raw))
	for name, v := range raw {
		switch tv := v.(type) {
		case nil:
			values[name] = ""
		case string:
			values[name] = tv
		case json.Number:
			values[name] = tv.String()
		case bool:
			values[name] = strconv.FormatBool(tv)
		default:
			return nil, fmt.Errorf("%w: field %q must be a string, number or boolean", ErrInvalidValues, name)
		}
	}
	return values, nil
}
