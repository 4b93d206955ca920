package assistant

// MessageRequest is the body POSTed to an assistant's streaming and
// non-streaming endpoints.
type MessageRequest struct {
	// Message is the user's message text.
	Message string `json:"message"`

	// IncludeHistory asks the server to prepend the conversation's prior
	// turns when generating the response.
	IncludeHistory bool `json:"include_history"`
}

// MessageResponse is the non-streaming companion response returned by Send:
// the same logical operation as Stream, delivered in one piece.
type MessageResponse struct {
	ConversationID string     `json:"conversation_id"`
	Reply          string     `json:"reply"`
	Citations      []Citation `json:"citations,omitempty"`
	TokensInput    int        `json:"tokens_input,omitempty"`
	TokensOutput   int        `json:"tokens_output,omitempty"`
}
