package mcpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lydakis/mcpchat/internal/httpheaders"
	"github.com/lydakis/mcpchat/internal/jsonrpc"
)

const (
	healthTimeout       = 5 * time.Second
	notificationTimeout = 5 * time.Second
)

// HTTPTransport POSTs JSON-RPC envelopes to {base}/message. Some servers
// expose a {base}/health probe; its absence never blocks startup.
type HTTPTransport struct {
	baseURL string
	headers map[string]string
	client  *http.Client
}

// NewHTTPTransport builds a transport for the given base URL with
// optional static headers applied to every request.
func NewHTTPTransport(baseURL string, headers map[string]string) *HTTPTransport {
	return &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		headers: httpheaders.Clone(headers),
		client:  &http.Client{},
	}
}

// Acquire probes {base}/health best-effort. Probe failure is a hint, not
// a precondition; the initialize handshake is the real readiness check.
func (t *HTTPTransport) Acquire(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, t.baseURL+"/health", nil)
	if err != nil {
		return nil
	}
	if resp, err := t.client.Do(req); err == nil {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		resp.Body.Close()
	}
	return nil
}

// SendRequest POSTs the envelope and decodes the response body.
func (t *HTTPTransport) SendRequest(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
	body, err := t.post(ctx, req)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var resp jsonrpc.Response
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &resp, nil
}

// SendNotification POSTs the envelope and discards whatever comes back.
func (t *HTTPTransport) SendNotification(req *jsonrpc.Request) error {
	ctx, cancel := context.WithTimeout(context.Background(), notificationTimeout)
	defer cancel()

	body, err := t.post(ctx, req)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, body) //nolint:errcheck
	return body.Close()
}

func (t *HTTPTransport) post(ctx context.Context, req *jsonrpc.Request) (io.ReadCloser, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/message", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for name, value := range t.headers {
		httpReq.Header.Set(name, value)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		resp.Body.Close()
		return nil, fmt.Errorf("%s/message returned %s", t.baseURL, resp.Status)
	}
	return resp.Body, nil
}

// Release drops pooled connections. Idempotent.
func (t *HTTPTransport) Release() {
	t.client.CloseIdleConnections()
}
