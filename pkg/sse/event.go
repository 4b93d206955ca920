// Package sse provides a minimal, purpose-built SSE (Server-Sent Events)
// decoder for the quill assistant client. It reassembles blank-line delimited
// frames out of arbitrarily chunked response bytes and parses the two fields
// the assistant protocol uses: "event:" and "data:".
//
// This package intentionally does NOT provide SSE writer or server
// capabilities, nor the full field set of the SSE specification.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

import "strings"

// Event represents a single parsed event, extracted from one frame.
type Event struct {
	// Type is the event name from the "event:" field.
	Type string

	// Data is the concatenated contents of all "data:" lines for this event,
	// joined with "\n" (per the SSE spec, multiple data fields are joined
	// with a single newline).
	Data string
}

// ParseFrame parses one reassembled frame into an Event.
//
// Field lines have the form "field:value" where a single space after the
// colon is stripped if present. Only "event" and "data" fields are
// interpreted; any other line is ignored. If the "event" field repeats, the
// last occurrence wins.
//
// Returns nil for frames that carry no event name and for frames that are
// empty or all whitespace. Such frames have nothing to dispatch on and are
// dropped, not treated as errors.
func ParseFrame(frame string) *Event {
	if strings.TrimSpace(frame) == "" {
		return nil
	}

	var dataLines []string
	eventType := ""
	hasType := false

	for line := range strings.SplitSeq(frame, "\n") {
		if value, ok := strings.CutPrefix(line, "event:"); ok {
			eventType = strings.TrimPrefix(value, " ")
			hasType = true
			continue
		}

		if value, ok := strings.CutPrefix(line, "data:"); ok {
			// Strip exactly one leading space after the colon, per spec.
			dataLines = append(dataLines, strings.TrimPrefix(value, " "))
		}

		// Unrecognized or malformed lines are ignored.
	}

	if !hasType {
		return nil
	}

	return &Event{
		Type: eventType,
		Data: strings.Join(dataLines, "\n"),
	}
}
