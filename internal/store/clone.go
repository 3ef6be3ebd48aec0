package store

import "github.com/roach88/rqlstore/internal/value"

// cloneValue copies the containers of decoded JSON and NFC-normalizes
// strings. Other values are returned as is.
func cloneValue(v any) any {
	switch x := v.(type) {
	case string:
		return value.NFC(x)
	case map[string]any:
		return cloneRecord(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

func cloneRecord(r Record) Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}
