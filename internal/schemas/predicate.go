package schemas

import (
	"encoding/json"
)

// IsResume reports whether v structurally matches a Resume. v may be a Go
// value, a decoded map, or raw JSON ([]byte, json.RawMessage or string).
// It never panics.
func IsResume(v any) bool {
	return conforms(KindResume, v)
}

// IsJob reports whether v structurally matches a Job. See IsResume.
func IsJob(v any) bool {
	return conforms(KindJob, v)
}

func conforms(kind Kind, v any) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()

	if v == nil {
		return false
	}

	var doc []byte
	switch t := v.(type) {
	case []byte:
		doc = t
	case json.RawMessage:
		doc = t
	case string:
		doc = []byte(t)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return false
		}
		doc = b
	}
	if len(doc) == 0 {
		return false
	}
	return Validate(kind, doc) == nil
}
