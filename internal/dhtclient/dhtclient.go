// Package dhtclient is a thin HTTP client over spec.md §6.1's client-facing
// routes (/files*, /chord/info), used by cmd/client's REPL and
// cmd/loadgen's load generator. It is the client-facing counterpart to
// internal/transport/httprpc, which instead speaks the peer-facing
// /chord/* RPCs. Translated from the teacher's internal/client/query.go
// (latency-measuring grpc stub wrappers), swapping the grpc stub calls for
// plain HTTP requests against whichever node address the caller names.
package dhtclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"chorddfs/internal/chorderr"
)

// Client issues client-facing file and info requests against a node
// address supplied per call, so a single Client can freely follow the
// REPL's "use <addr>" command without reconnecting.
type Client struct {
	http *http.Client
}

// New builds a Client with the given per-request timeout.
func New(timeout time.Duration) *Client {
	return &Client{http: &http.Client{Timeout: timeout}}
}

func (c *Client) urlFor(addr, path string) string {
	return (&url.URL{Scheme: "http", Host: addr, Path: path}).String()
}

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type filesResponse struct {
	Files []string `json:"files"`
}

// Node is a peer reference as returned by GET /chord/info.
type Node struct {
	ID      uint64 `json:"id"`
	Address string `json:"address"`
}

// Info is the GET /chord/info response shape.
type Info struct {
	Self        Node  `json:"self"`
	Successor   Node  `json:"successor"`
	Predecessor *Node `json:"predecessor"`
	MBits       int   `json:"m_bits"`
}

func statusErr(resp *http.Response) error {
	if resp.StatusCode == http.StatusNotFound {
		return chorderr.ErrNotFound
	}
	var errResp errorResponse
	_ = json.NewDecoder(resp.Body).Decode(&errResp)
	if errResp.Error != "" {
		return fmt.Errorf("%w: %s", chorderr.ErrTransport, errResp.Error)
	}
	return fmt.Errorf("%w: status %d", chorderr.ErrTransport, resp.StatusCode)
}

// Save uploads name with contents data to addr. Returns the request
// latency alongside any error, so callers can report it the way the
// teacher's query helpers do.
func (c *Client) Save(ctx context.Context, addr, name string, data []byte) (time.Duration, error) {
	start := time.Now()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return time.Since(start), fmt.Errorf("%w: build multipart: %v", chorderr.ErrInternal, err)
	}
	if _, err := part.Write(data); err != nil {
		return time.Since(start), fmt.Errorf("%w: write multipart body: %v", chorderr.ErrInternal, err)
	}
	if err := mw.Close(); err != nil {
		return time.Since(start), fmt.Errorf("%w: close multipart: %v", chorderr.ErrInternal, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.urlFor(addr, "/files"), &buf)
	if err != nil {
		return time.Since(start), fmt.Errorf("%w: build request: %v", chorderr.ErrTransport, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := c.http.Do(req)
	if err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", chorderr.ErrTransport, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return time.Since(start), statusErr(resp)
	}
	return time.Since(start), nil
}

// Get fetches name's bytes from addr.
func (c *Client) Get(ctx context.Context, addr, name string) ([]byte, time.Duration, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.urlFor(addr, "/files/"+url.PathEscape(name)), nil)
	if err != nil {
		return nil, time.Since(start), fmt.Errorf("%w: build request: %v", chorderr.ErrTransport, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, time.Since(start), fmt.Errorf("%w: %v", chorderr.ErrTransport, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, time.Since(start), statusErr(resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, time.Since(start), fmt.Errorf("%w: read body: %v", chorderr.ErrTransport, err)
	}
	return data, time.Since(start), nil
}

// Delete removes name from addr.
func (c *Client) Delete(ctx context.Context, addr, name string) (time.Duration, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.urlFor(addr, "/files/"+url.PathEscape(name)), nil)
	if err != nil {
		return time.Since(start), fmt.Errorf("%w: build request: %v", chorderr.ErrTransport, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", chorderr.ErrTransport, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return time.Since(start), statusErr(resp)
	}
	return time.Since(start), nil
}

// List returns every filename addr currently holds locally (spec.md
// §4.6.7: List is local-only, never a global listing).
func (c *Client) List(ctx context.Context, addr string) ([]string, time.Duration, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.urlFor(addr, "/files"), nil)
	if err != nil {
		return nil, time.Since(start), fmt.Errorf("%w: build request: %v", chorderr.ErrTransport, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, time.Since(start), fmt.Errorf("%w: %v", chorderr.ErrTransport, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, time.Since(start), statusErr(resp)
	}
	var out filesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, time.Since(start), fmt.Errorf("%w: decode response: %v", chorderr.ErrTransport, err)
	}
	return out.Files, time.Since(start), nil
}

// Info fetches addr's full state snapshot.
func (c *Client) Info(ctx context.Context, addr string) (Info, time.Duration, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.urlFor(addr, "/chord/info"), nil)
	if err != nil {
		return Info{}, time.Since(start), fmt.Errorf("%w: build request: %v", chorderr.ErrTransport, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Info{}, time.Since(start), fmt.Errorf("%w: %v", chorderr.ErrTransport, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return Info{}, time.Since(start), statusErr(resp)
	}
	var out Info
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Info{}, time.Since(start), fmt.Errorf("%w: decode response: %v", chorderr.ErrTransport, err)
	}
	return out, time.Since(start), nil
}

// messageResponse is unused directly by callers but documents the /files/forward-style
// ack shape other boundary routes share, for anyone reading wire payloads
// off the network.
var _ = messageResponse{}
