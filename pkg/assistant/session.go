package assistant

import "sync"

// session is the mutable accumulator for one streaming exchange. It lives
// from Stream() until the terminal callback fires or the stream is
// cancelled, and carries no state beyond that single request/response
// exchange.
//
// The completed flag adjudicates the "exactly one terminal callback"
// contract between the normal dispatch path, the synthesized-completion
// tail, and the transport-failure tail. The stream goroutine and the
// caller's cancellation function can touch the session concurrently, so
// every check-and-set goes through the mutex.
type session struct {
	mu             sync.Mutex
	conversationID string
	citations      []Citation
	tokensInput    int
	tokensOutput   int
	completed      bool
	cancelled      bool
}

// tryComplete flips the session into its terminal state. It returns true
// only for the single caller that performed the flip; once the session is
// completed or cancelled every subsequent call returns false, so at most
// one terminal callback can ever fire.
func (s *session) tryComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.completed || s.cancelled {
		return false
	}
	s.completed = true
	return true
}

// cancel marks the session cancelled. Cancellation suppresses all further
// callbacks, including any synthesized or failure-driven terminal dispatch.
func (s *session) cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled = true
}

// terminal reports whether the session has reached a terminal state and no
// further handler may fire.
func (s *session) terminal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed || s.cancelled
}

// setConversationID records the conversation id the first time the server
// supplies one. Returns true only on that first set.
func (s *session) setConversationID(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conversationID != "" {
		return false
	}
	s.conversationID = id
	return true
}

// replaceCitations swaps in a new citation set wholesale. Citations are
// replaced, never merged: the server sends the full current set each time.
func (s *session) replaceCitations(cs []Citation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.citations = cs
}

func (s *session) setUsage(tokensIn, tokensOut int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokensInput = tokensIn
	s.tokensOutput = tokensOut
}

// summary snapshots the accumulated state for the terminal callback.
func (s *session) summary() StreamSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	citations := s.citations
	if citations == nil {
		citations = []Citation{}
	}

	return StreamSummary{
		ConversationID: s.conversationID,
		Citations:      citations,
		TokensInput:    s.tokensInput,
		TokensOutput:   s.tokensOutput,
	}
}
