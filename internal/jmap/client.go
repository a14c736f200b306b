package jmap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fastmailctl/fastmailctl/internal/model"
)

// DefaultSessionURL is the Fastmail JMAP session endpoint.
const DefaultSessionURL = "https://api.fastmail.com/jmap/session"

// usingCapabilities is sent with every request. The server rejects
// calls belonging to capabilities outside this set.
var usingCapabilities = []string{
	model.CapabilityCore,
	model.CapabilityMail,
	model.CapabilitySubmission,
	model.CapabilityMaskedEmail,
}

// Client is the JMAP transport: it resolves the session, executes
// batches, and downloads blobs over an authenticated channel. It holds
// the session for the lifetime of one command invocation; the session
// is read-only after Authenticate returns.
type Client struct {
	sessionURL string
	token      string
	httpClient *http.Client
	log        *slog.Logger
	session    *model.Session
}

// NewClient creates a JMAP client authenticating with the given bearer
// token. A nil logger disables debug logging.
func NewClient(sessionURL, token string, timeout time.Duration, log *slog.Logger) *Client {
	if sessionURL == "" {
		sessionURL = DefaultSessionURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Client{
		sessionURL: sessionURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// Authenticate fetches the session object and caches it on the client.
// It must be called once before any other operation.
func (c *Client) Authenticate(ctx context.Context) (*model.Session, error) {
	c.log.Debug("fetching JMAP session", "url", c.sessionURL)

	body, err := c.get(ctx, "session", c.sessionURL)
	if err != nil {
		return nil, err
	}

	var session model.Session
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, &ProtocolError{Message: fmt.Sprintf("decoding session object: %v", err)}
	}
	if session.APIURL == "" {
		return nil, &ProtocolError{Message: "session object has no apiUrl"}
	}
	c.session = &session
	c.log.Debug("session established", "username", session.Username)
	return c.session, nil
}

// Session returns the resolved session, or a SessionError when
// Authenticate has not been called.
func (c *Client) Session() (*model.Session, error) {
	if c.session == nil {
		return nil, &SessionError{Message: "not authenticated; run `fastmailctl auth <token>` first"}
	}
	return c.session, nil
}

// RequireCapability verifies the server advertises the capability a
// command needs, so a mismatch surfaces as one clear error before any
// batch is built.
func (c *Client) RequireCapability(urn string) error {
	session, err := c.Session()
	if err != nil {
		return err
	}
	if !session.HasCapability(urn) {
		return &SessionError{Capability: urn, Message: "required by this command"}
	}
	return nil
}

// AccountID returns the primary account id for the mail capability.
func (c *Client) AccountID() (string, error) {
	session, err := c.Session()
	if err != nil {
		return "", err
	}
	id := session.PrimaryAccountID(model.CapabilityMail)
	if id == "" {
		return "", &SessionError{Message: "no primary mail account in session"}
	}
	return id, nil
}

// Do executes a batch and returns its tagged results. Failures of the
// whole exchange are TransportError (network, auth) or ProtocolError
// (the server rejected the request shape); per-call failures live in
// the Response and are surfaced when individual results are decoded.
// No retries: a failed exchange is terminal for this invocation.
func (c *Client) Do(ctx context.Context, batch *Batch) (*Response, error) {
	session, err := c.Session()
	if err != nil {
		return nil, err
	}
	if batch.Len() == 0 {
		return nil, &ProtocolError{Message: "empty batch"}
	}

	reqBody, err := json.Marshal(struct {
		Using       []string     `json:"using"`
		MethodCalls []Invocation `json:"methodCalls"`
	}{usingCapabilities, batch.Calls()})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	c.log.Debug("executing JMAP batch", "url", session.APIURL, "calls", batch.Len())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, session.APIURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "api request", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "reading response", Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, &TransportError{Op: "api request", Status: resp.StatusCode, Err: fmt.Errorf("token expired or invalid")}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &TransportError{Op: "api request", Status: resp.StatusCode, Err: fmt.Errorf("rate limited")}
	case resp.StatusCode >= 500:
		return nil, &TransportError{Op: "api request", Status: resp.StatusCode, Err: fmt.Errorf("server error")}
	case resp.StatusCode >= 400:
		// Request-level rejection: the batch shape itself was refused.
		return nil, &ProtocolError{Message: fmt.Sprintf("server rejected request (HTTP %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))}
	}

	return parseResponse(body)
}

// DownloadBlob fetches raw blob bytes via the session's download URL
// template.
func (c *Client) DownloadBlob(ctx context.Context, blobID string) ([]byte, error) {
	session, err := c.Session()
	if err != nil {
		return nil, err
	}
	accountID, err := c.AccountID()
	if err != nil {
		return nil, err
	}

	url := strings.NewReplacer(
		"{accountId}", accountID,
		"{blobId}", blobID,
		"{name}", "attachment",
		"{type}", "application/octet-stream",
	).Replace(session.DownloadURL)

	c.log.Debug("downloading blob", "blobId", blobID)

	data, err := c.get(ctx, "blob download", url)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// get performs an authenticated GET and maps HTTP-level failures onto
// the error taxonomy.
func (c *Client) get(ctx context.Context, op, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, &TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("token expired or invalid")}
	case resp.StatusCode == http.StatusNotFound:
		return nil, &NotFoundError{Kind: op, Name: url}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("rate limited")}
	case resp.StatusCode >= 400:
		return nil, &TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("unexpected status")}
	}
	return body, nil
}
