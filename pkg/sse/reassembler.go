package sse

import (
	"bytes"
	"strings"
)

// frameDelimiter separates frames in the wire stream. A blank line ends the
// frame that precedes it.
var frameDelimiter = []byte("\n\n")

// Reassembler converts an unbounded sequence of arbitrarily chunked byte
// fragments into a sequence of complete frames. Chunks may end mid-frame,
// mid-line, or mid-multi-byte character; the reassembler holds the trailing
// incomplete piece over to the next Feed call, so no frame is ever split
// across two deliveries to the caller.
//
// The internal buffer stays in raw bytes until a full frame has arrived.
// UTF-8 continuation bytes can never collide with the "\n\n" delimiter,
// so a multi-byte character split across chunks simply waits in the buffer
// until its remaining bytes arrive. Conversion to string happens only on
// complete frames, which keeps decoding incremental without any replacement
// characters for partial trailing sequences.
//
// The buffer grows as needed within a single stream. There is deliberately no
// size cap: a single assistant turn is bounded in practice, and an arbitrary
// limit could truncate legitimate content.
type Reassembler struct {
	buf []byte
}

// NewReassembler returns an empty Reassembler ready to be fed chunks.
func NewReassembler() *Reassembler {
	return &Reassembler{}
}

// Feed appends a chunk of raw response bytes and returns all complete frames
// it unlocked, in arrival order. The returned frames do not include the
// blank-line delimiter. An empty return means no frame has completed yet.
func (r *Reassembler) Feed(chunk []byte) []string {
	r.buf = append(r.buf, chunk...)

	var frames []string
	for {
		i := bytes.Index(r.buf, frameDelimiter)
		if i < 0 {
			break
		}

		frames = append(frames, string(r.buf[:i]))
		r.buf = r.buf[i+len(frameDelimiter):]
	}

	return frames
}

// Flush drains the reassembler once the transport signals end-of-data. If the
// remaining buffer is non-blank it is treated as one final frame: the
// transport is allowed to omit the final blank-line terminator. A truncated
// multi-byte sequence left at the very end of the stream decodes to
// replacement characters at this point, since no further bytes can arrive.
func (r *Reassembler) Flush() []string {
	tail := string(r.buf)
	r.buf = nil

	if strings.TrimSpace(tail) == "" {
		return nil
	}

	return []string{tail}
}

// Buffered reports the number of bytes held back awaiting a frame delimiter.
func (r *Reassembler) Buffered() int {
	return len(r.buf)
}
