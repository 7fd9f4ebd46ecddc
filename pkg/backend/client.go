package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/parley/pkg/transcript"
)

// HeaderGuestID is the correlation header attached to /ask requests made by
// guests.
const HeaderGuestID = "X-Guest-ID"

// Client talks to the chat backend. All state lives server-side; the client
// is stateless apart from its configuration.
type Client struct {
	httpClient *http.Client
	BaseURL    string
}

type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client, mostly to install
// transports or timeouts in tests.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient initializes a backend client for the given base URL.
func NewClient(baseURL string, options ...ClientOption) *Client {
	ret := &Client{
		httpClient: &http.Client{},
		BaseURL:    strings.TrimRight(baseURL, "/"),
	}
	for _, o := range options {
		o(ret)
	}
	return ret
}

func isJSON(resp *http.Response) bool {
	return strings.Contains(resp.Header.Get("Content-Type"), "application/json")
}

func (c *Client) do(req *http.Request) (*http.Response, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, &TransportError{Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &TransportError{Err: err}
	}
	return resp, body, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload interface{}, headers map[string]string) (*http.Response, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, errors.Wrap(err, "marshaling request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, nil, errors.Wrap(err, "creating request")
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return c.do(req)
}

// Ask sends a question bound to the current session. The session id may be
// empty — the backend decides whether that is valid. Guests pass their id,
// attached as the correlation header.
//
// The response is required to be JSON; exactly one of Answer/Error is
// expected but both may be empty, which the caller resolves to a
// placeholder.
func (c *Client) Ask(ctx context.Context, question string, sessionID string, guestID string) (*AskResponse, error) {
	payload := AskRequest{Question: question}
	if sessionID != "" {
		payload.SessionID = &sessionID
	}

	var headers map[string]string
	if guestID != "" {
		headers = map[string]string{HeaderGuestID: guestID}
	}

	resp, body, err := c.postJSON(ctx, "/ask", payload, headers)
	if err != nil {
		return nil, err
	}
	if !isJSON(resp) {
		return nil, &ProtocolError{Body: truncateBody(string(body))}
	}

	var ret AskResponse
	if err := json.Unmarshal(body, &ret); err != nil {
		return nil, &ProtocolError{Body: truncateBody(string(body))}
	}
	return &ret, nil
}

// CreateSession registers a new session and returns its id. Any failure —
// transport, non-JSON body, non-success status — means the caller must not
// adopt a session id.
func (c *Client) CreateSession(ctx context.Context, title string) (string, error) {
	resp, body, err := c.postJSON(ctx, "/session", createSessionRequest{Title: title}, nil)
	if err != nil {
		return "", err
	}
	if !isJSON(resp) {
		return "", &ProtocolError{Body: truncateBody(string(body))}
	}

	var data createSessionResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return "", &ProtocolError{Body: truncateBody(string(body))}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := data.Error
		if msg == "" {
			msg = "session creation failed"
		}
		return "", &ServerError{StatusCode: resp.StatusCode, Message: msg}
	}
	return data.SessionID, nil
}

// ListSessions fetches the session registry in server order. A failing
// status or a non-JSON body (a guest's auth redirect, for instance) is
// reported as ErrDirectoryUnavailable rather than a hard error.
func (c *Client) ListSessions(ctx context.Context) ([]Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/sessions", nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}
	req.Header.Set("Accept", "application/json")

	resp, body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !isJSON(resp) {
		return nil, ErrDirectoryUnavailable
	}

	var sessions []Session
	if err := json.Unmarshal(body, &sessions); err != nil {
		return nil, ErrDirectoryUnavailable
	}
	return sessions, nil
}

// RenameSession updates a session's title. It does not touch local state;
// failures carry the server's message for the user.
func (c *Client) RenameSession(ctx context.Context, id string, title string) error {
	body, err := json.Marshal(renameSessionRequest{Title: title})
	if err != nil {
		return errors.Wrap(err, "marshaling request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.BaseURL+"/session/"+id, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "creating request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, respBody, err := c.do(req)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ServerError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}
	return nil
}

// DeleteSession removes a session from the registry. On failure the raw
// text body is surfaced so the user sees what the server said.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.BaseURL+"/session/"+id, nil)
	if err != nil {
		return errors.Wrap(err, "creating request")
	}

	resp, body, err := c.do(req)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ServerError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	return nil
}

// History fetches the stored transcript of a session in display order.
func (c *Client) History(ctx context.Context, sessionID string) ([]transcript.Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/history/"+sessionID, nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}

	resp, body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if !isJSON(resp) {
		return nil, &ProtocolError{Body: truncateBody(string(body))}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ServerError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var entries []transcript.Entry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, &ProtocolError{Body: truncateBody(string(body))}
	}
	return entries, nil
}

// ReloadChains asks the backend to rebuild its per-user retrieval state.
// Best-effort: callers log failures and move on.
func (c *Client) ReloadChains(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/reload_chains", nil)
	if err != nil {
		return errors.Wrap(err, "creating request")
	}

	resp, _, err := c.do(req)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ServerError{StatusCode: resp.StatusCode}
	}
	return nil
}

// CleanupGuest tells the backend a guest is gone so its scratch storage can
// be reclaimed. Fire-and-forget: no response is expected and the caller
// ignores the outcome beyond logging.
func (c *Client) CleanupGuest(ctx context.Context, guestID string) error {
	_, _, err := c.postJSON(ctx, "/cleanup_guest", cleanupGuestRequest{GuestID: guestID}, nil)
	return err
}

// Logout ends the server session. Navigation afterwards is the frontend's
// job.
func (c *Client) Logout(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/logout", nil)
	if err != nil {
		return errors.Wrap(err, "creating request")
	}

	resp, body, err := c.do(req)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ServerError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	log.Debug().Msg("logged out")
	return nil
}
