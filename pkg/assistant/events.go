// Package assistant provides the client side of the quill chat/assistant
// product: a streaming decoder/dispatcher that consumes the assistant's SSE
// response and routes typed events to caller-supplied handlers, plus a
// non-streaming companion API for the same logical operation.
package assistant

// Event type names on the assistant stream wire. Any other event type is
// silently dropped so servers can add new types without breaking older
// clients.
const (
	eventConversationID = "conversation_id"
	eventToken          = "token"
	eventBlock          = "block"
	eventCitations      = "citations"
	eventDone           = "done"
	eventDraftUpdate    = "draft_update"
	eventDocumentUpdate = "document_update"
	eventError          = "error"
)

// Citation is a single source reference attached to an assistant response.
// The decoder treats citations as opaque beyond JSON validity; the server
// owns their schema.
type Citation map[string]any

// DraftUpdate is the payload of a draft_update event: the assistant's
// revision of an email draft.
type DraftUpdate struct {
	Subject   string `json:"subject"`
	BodyDraft string `json:"body_draft"`
	Tone      string `json:"tone"`
	Reason    string `json:"reason"`
}

// DocumentUpdate is the payload of a document_update event: the assistant's
// revision of a working document.
type DocumentUpdate struct {
	MarkdownContent string `json:"markdown_content"`
	Summary         string `json:"summary"`
}

// StreamSummary is the accumulated session state delivered to OnComplete:
// everything the stream established about the exchange by the time it
// finished.
type StreamSummary struct {
	ConversationID string
	Citations      []Citation
	TokensInput    int
	TokensOutput   int
}
