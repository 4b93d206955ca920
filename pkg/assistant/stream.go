package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/quillhq/quill/pkg/sse"
)

// CancelFunc aborts an in-flight stream. Calling it tears down the transport
// and suppresses every further callback; if it races with a terminal
// dispatch already in flight, at most one terminal callback still fires.
// Safe to call more than once and after the stream has finished.
type CancelFunc func()

// Stream opens a streaming exchange with the given assistant and dispatches
// events to handlers until a terminal condition is reached.
//
// Stream is fire-and-forget: it returns immediately after spawning the read
// loop, and every failure past this point reports through handlers.OnError.
// The returned error covers only synchronous pre-call validation (empty
// assistant id, missing required handlers).
//
// Exactly one of handlers.OnComplete or handlers.OnError fires per call,
// even when the server never sends a done or error event, unless the
// returned CancelFunc runs first.
func (c *Client) Stream(ctx context.Context, assistantID string, req MessageRequest, handlers Handlers) (CancelFunc, error) {
	if strings.TrimSpace(assistantID) == "" {
		return nil, errors.New("assistant id is required")
	}
	if err := handlers.validate(); err != nil {
		return nil, err
	}

	ctx, cancelCtx := context.WithCancel(ctx)
	sess := &session{}

	go c.stream(ctx, cancelCtx, assistantID, req, handlers, sess)

	return func() {
		// Flag the session before tearing down the transport so the read
		// loop's error tail sees the cancellation and stays silent.
		sess.cancel()
		cancelCtx()
	}, nil
}

// stream is the per-session read loop: resolve the credential, open the
// transport, feed chunks through the reassembler, dispatch frames, and
// settle the terminal callback.
func (c *Client) stream(ctx context.Context, release context.CancelFunc, assistantID string, req MessageRequest, h Handlers, sess *session) {
	defer release()

	token, ok := c.authToken(ctx)
	if !ok {
		c.fail(sess, h, authTokenUnavailableMsg)
		return
	}

	body, err := json.Marshal(req)
	if err != nil {
		c.fail(sess, h, fmt.Sprintf("encoding request: %v", err))
		return
	}

	endpoint := fmt.Sprintf("%s/v1/assistants/%s/stream", c.baseURL, url.PathEscape(assistantID))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		c.fail(sess, h, fmt.Sprintf("creating request: %v", err))
		return
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("X-Request-ID", uuid.NewString())

	c.logger.Debug("opening assistant stream",
		"assistant", assistantID,
		"include_history", req.IncludeHistory,
	)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			sess.cancel()
			return
		}
		c.fail(sess, h, fmt.Sprintf("connecting to assistant: %v", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		msg := fmt.Sprintf("assistant stream returned status %d", resp.StatusCode)
		if trimmed := strings.TrimSpace(string(snippet)); trimmed != "" {
			msg += ": " + trimmed
		}
		c.fail(sess, h, msg)
		return
	}

	reassembler := sse.NewReassembler()
	buf := make([]byte, 32*1024)

	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			for _, frame := range reassembler.Feed(buf[:n]) {
				c.dispatch(frame, sess, h)
			}
		}

		if readErr == nil {
			continue
		}

		if errors.Is(readErr, io.EOF) {
			// Natural end-of-data. The transport may omit the final
			// blank-line terminator, so drain the reassembler first.
			for _, frame := range reassembler.Flush() {
				c.dispatch(frame, sess, h)
			}

			// Safety net: if the server closed without a done or error
			// frame, synthesize a completion from accumulated state rather
			// than treating the truncation as a failure.
			if sess.tryComplete() {
				c.logger.Debug("stream ended without terminal event, synthesizing completion")
				h.OnComplete(sess.summary())
			}
			return
		}

		if errors.Is(readErr, context.Canceled) {
			sess.cancel()
			return
		}

		c.fail(sess, h, fmt.Sprintf("reading assistant stream: %v", readErr))
		return
	}
}

// dispatch parses one frame and routes its event. Nothing fires once the
// session is terminal or cancelled.
func (c *Client) dispatch(frame string, sess *session, h Handlers) {
	ev := sse.ParseFrame(frame)
	if ev == nil {
		return
	}

	if sess.terminal() {
		return
	}

	switch ev.Type {
	case eventConversationID:
		if sess.setConversationID(ev.Data) && h.OnConversationID != nil {
			h.OnConversationID(ev.Data)
		}

	case eventToken:
		h.OnToken(ev.Data)

	case eventBlock:
		var block map[string]any
		if !tryUnmarshal(ev.Data, &block) {
			c.logger.Debug("dropping malformed block payload")
			return
		}
		if h.OnBlock != nil {
			h.OnBlock(block)
		}

	case eventCitations:
		var citations []Citation
		if !tryUnmarshal(ev.Data, &citations) {
			c.logger.Debug("dropping malformed citations payload")
			return
		}
		sess.replaceCitations(citations)

	case eventDone:
		var usage struct {
			TokensInput  int `json:"tokens_input"`
			TokensOutput int `json:"tokens_output"`
		}
		// Absent or unparseable token counts default to zero.
		tryUnmarshal(ev.Data, &usage)
		sess.setUsage(usage.TokensInput, usage.TokensOutput)
		if sess.tryComplete() {
			h.OnComplete(sess.summary())
		}

	case eventDraftUpdate:
		var update DraftUpdate
		if !tryUnmarshal(ev.Data, &update) {
			c.logger.Debug("dropping malformed draft_update payload")
			return
		}
		if h.OnDraftUpdate != nil {
			h.OnDraftUpdate(update)
		}

	case eventDocumentUpdate:
		var update DocumentUpdate
		if !tryUnmarshal(ev.Data, &update) {
			c.logger.Debug("dropping malformed document_update payload")
			return
		}
		if h.OnDocumentUpdate != nil {
			h.OnDocumentUpdate(update)
		}

	case eventError:
		if sess.tryComplete() {
			h.OnError(ev.Data)
		}

	default:
		c.logger.Debug("dropping unknown event type", "type", ev.Type)
	}
}

// fail settles the session on the error terminal, unless a terminal
// callback already fired or the stream was cancelled.
func (c *Client) fail(sess *session, h Handlers, msg string) {
	if !sess.tryComplete() {
		return
	}
	c.logger.Debug("stream failed", "message", msg)
	h.OnError(msg)
}
