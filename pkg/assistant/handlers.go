package assistant

import "errors"

// Handlers is the set of callbacks a stream invokes as events arrive.
// OnToken, OnComplete, and OnError are required; the rest are optional and
// skipped when nil.
//
// Exactly one of OnComplete or OnError fires per stream, unless the stream
// is cancelled first, in which case neither fires. All callbacks run on the
// stream's own goroutine, in event arrival order.
type Handlers struct {
	// OnToken fires once per token event with the token text. This is the
	// high-frequency callback: tokens are delivered in arrival order with no
	// buffering or coalescing.
	OnToken func(text string)

	// OnConversationID fires at most once, the first time the server
	// identifies the conversation. The id is also cached in session state so
	// the terminal summary carries it even when this handler is nil.
	OnConversationID func(id string)

	// OnBlock fires once per block event whose payload parses as JSON.
	// A payload that fails to parse is dropped without error: structured
	// content is best-effort.
	OnBlock func(block map[string]any)

	// OnDraftUpdate fires once per draft_update event that parses.
	OnDraftUpdate func(update DraftUpdate)

	// OnDocumentUpdate fires once per document_update event that parses.
	OnDocumentUpdate func(update DocumentUpdate)

	// OnComplete is the success terminal callback.
	OnComplete func(summary StreamSummary)

	// OnError is the failure terminal callback.
	OnError func(message string)
}

func (h Handlers) validate() error {
	if h.OnToken == nil {
		return errors.New("OnToken handler is required")
	}
	if h.OnComplete == nil {
		return errors.New("OnComplete handler is required")
	}
	if h.OnError == nil {
		return errors.New("OnError handler is required")
	}
	return nil
}
