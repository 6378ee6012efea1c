package domain

import (
	"bytes"
	"encoding/json"
)

// Object is a JSON object whose member values are kept as raw JSON so they
// pass through the gateway unchanged.
type Object map[string]json.RawMessage

// ErrorObject builds the degraded {"error": message} shape returned when an
// upstream call fails.
func ErrorObject(message string) Object {
	b, _ := json.Marshal(message)
	return Object{"error": b}
}

// DecodeObject parses raw as a JSON object. A body that is valid JSON but not
// an object (array, string, null) is rejected.
func DecodeObject(raw json.RawMessage) (Object, error) {
	if !IsKind(raw, '{') {
		return nil, &ShapeError{Want: "object", Got: kindName(raw)}
	}
	var obj Object
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// String returns the member as a string. Non-string scalars are rendered
// using their JSON text; missing and null members yield "".
func (o Object) String(key string) string {
	raw, ok := o[key]
	if !ok || IsNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}

// IsNull reports whether raw is empty or the JSON literal null.
func IsNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// IsKind reports whether the first significant byte of raw is open.
func IsKind(raw json.RawMessage, open byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == open
}

func kindName(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "empty"
	}
	switch trimmed[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}

// ShapeError reports a well-formed JSON payload with an unexpected shape.
type ShapeError struct {
	Want string
	Got  string
}

func (e *ShapeError) Error() string {
	return "expected JSON " + e.Want + ", got " + e.Got
}
