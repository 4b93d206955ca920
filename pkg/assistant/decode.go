package assistant

import "encoding/json"

// tryUnmarshal decodes a JSON payload into v, treating malformed JSON as
// absent. Every structured event type shares this one helper so the leniency
// semantics are identical everywhere: one bad payload is dropped and the
// stream continues; it never aborts an otherwise healthy token stream.
func tryUnmarshal(payload string, v any) bool {
	return json.Unmarshal([]byte(payload), v) == nil
}
