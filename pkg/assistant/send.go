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
)

// Send performs the non-streaming companion of Stream: the same logical
// operation against the assistant, delivered as a single response instead of
// incremental events.
func (c *Client) Send(ctx context.Context, assistantID string, req MessageRequest) (*MessageResponse, error) {
	if strings.TrimSpace(assistantID) == "" {
		return nil, errors.New("assistant id is required")
	}

	token, ok := c.authToken(ctx)
	if !ok {
		return nil, errors.New(authTokenUnavailableMsg)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/assistants/%s/messages", c.baseURL, url.PathEscape(assistantID))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending message: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(respBody))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("assistant returned status %d: %s", resp.StatusCode, msg)
	}

	result := &MessageResponse{}
	if err := json.Unmarshal(respBody, result); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	return result, nil
}
