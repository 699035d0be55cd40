// internal/protocol/codec.go
package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Reply is one decoded response line. Besides command-specific result
// fields it always carries "status" and "cmd_id".
type Reply map[string]any

// Result is the command-specific payload left after correlation removed
// status and cmd_id from a Reply.
type Result map[string]any

// EncodeRequest renders an invocation in the firmware's request framing:
// "[v0,v1,...]\n". The first value is the command id, the rest are
// positional arguments. Values keep their plain string form, unquoted.
// The framing is closed, not general purpose: text arguments must not
// contain literal '[', ']' or ',' characters.
func EncodeRequest(args ...any) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = fmt.Sprintf("%v", arg)
	}
	return "[" + strings.Join(parts, ",") + "]\n"
}

// DecodeResponse parses one response line as JSON. An empty line means no
// response arrived before the link timeout and decodes to an empty Reply,
// not an error; callers must treat an empty Reply as "no data". Numeric
// values are normalized to int64 (float64 for non-integral numbers)
// throughout nested maps and slices so replies carry one canonical
// numeric representation.
func DecodeResponse(line string) (Reply, error) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return Reply{}, nil
	}

	dec := json.NewDecoder(strings.NewReader(line))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, &MalformedResponseError{Line: line, Err: err}
	}
	return Reply(normalizeMap(raw)), nil
}

func normalizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	case map[string]any:
		return normalizeMap(val)
	default:
		return v
	}
}

// Int64 extracts an integer from a decoded reply value.
func Int64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
	}
	return 0, false
}
