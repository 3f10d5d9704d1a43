package httprpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"chorddfs/internal/chorderr"
	"chorddfs/internal/logger"
	"chorddfs/internal/ring"
	"chorddfs/internal/telemetry/lookuptrace"
)

// Client implements transport.Transport over HTTP+JSON. It pools
// connections via the standard library's http.Transport, the HTTP analogue
// of the teacher's grpc connection pool (internal/client.Pool).
type Client struct {
	http *http.Client
	lgr  logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger attaches a structured logger used for transport-level
// diagnostics (connect failures, non-2xx responses).
func WithLogger(lgr logger.Logger) Option {
	return func(c *Client) { c.lgr = lgr }
}

// WithTimeout sets the client-wide http.Client timeout. It bounds every
// request, on top of any deadline the caller's context carries.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New builds a Client. The underlying http.Transport is wrapped with
// otelhttp, filtered by lookuptrace.Filter, so only outbound calls tagged
// as part of a lookup chain participate in the caller's trace.
func New(opts ...Option) *Client {
	base := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     90 * time.Second,
	}
	c := &Client{
		http: &http.Client{
			Transport: otelhttp.NewTransport(base, otelhttp.WithFilter(lookuptrace.Filter)),
			Timeout:   5 * time.Second,
		},
		lgr: &logger.NopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) url(addr, path string) string {
	return (&url.URL{Scheme: "http", Host: addr, Path: path}).String()
}

func (c *Client) doJSON(ctx context.Context, method, addr, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encode request: %v", chorderr.ErrInternal, err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url(addr, path), reader)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", chorderr.ErrTransport, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	lookuptrace.Tag(req)
	resp, err := c.http.Do(req)
	if err != nil {
		c.lgr.Debug("transport: request failed", logger.F("addr", addr), logger.F("path", path), logger.F("err", err.Error()))
		return fmt.Errorf("%w: %v", chorderr.ErrTransport, err)
	}
	defer resp.Body.Close()
	return c.decodeResponse(resp, out)
}

func (c *Client) decodeResponse(resp *http.Response, out any) error {
	if resp.StatusCode == http.StatusNotFound {
		return chorderr.ErrNotFound
	}
	if resp.StatusCode >= 300 {
		var errResp errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		return fmt.Errorf("%w: remote status %d: %s", chorderr.ErrTransport, resp.StatusCode, errResp.Error)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", chorderr.ErrTransport, err)
	}
	return nil
}

func toPeerRef(n ring.Node) peerRef { return peerRef{ID: uint64(n.ID), Address: n.Address} }
func fromPeerRef(p peerRef) ring.Node {
	return ring.Node{ID: ring.ID(p.ID), Address: p.Address}
}

func (c *Client) FindSuccessor(ctx context.Context, addr string, key ring.ID, origin ring.Node) (ring.Node, error) {
	var resp peerRef
	err := c.doJSON(ctx, http.MethodPost, addr, "/chord/successor",
		findSuccessorRequest{Key: uint64(key), Origin: toPeerRef(origin)}, &resp)
	if err != nil {
		return ring.Node{}, err
	}
	return fromPeerRef(resp), nil
}

func (c *Client) GetPredecessor(ctx context.Context, addr string) (ring.Node, bool, error) {
	var resp peerRef
	err := c.doJSON(ctx, http.MethodGet, addr, "/chord/predecessor", nil, &resp)
	if chorderr.Is(err, chorderr.ErrNotFound) {
		return ring.Node{}, false, nil
	}
	if err != nil {
		return ring.Node{}, false, err
	}
	if resp.Address == "" {
		return ring.Node{}, false, nil
	}
	return fromPeerRef(resp), true, nil
}

func (c *Client) Notify(ctx context.Context, addr string, candidate ring.Node) error {
	return c.doJSON(ctx, http.MethodPost, addr, "/chord/notify", toPeerRef(candidate), nil)
}

func (c *Client) Join(ctx context.Context, addr string, joiner ring.Node) (ring.Node, error) {
	var resp peerRef
	if err := c.doJSON(ctx, http.MethodPost, addr, "/chord/join", toPeerRef(joiner), &resp); err != nil {
		return ring.Node{}, err
	}
	return fromPeerRef(resp), nil
}

func (c *Client) Ping(ctx context.Context, addr string) error {
	return c.doJSON(ctx, http.MethodPost, addr, "/chord/keepalive", nil, nil)
}

func (c *Client) TransferRange(ctx context.Context, addr string, lo, hi ring.ID, recv func(name string, data []byte) error) error {
	b, err := json.Marshal(transferRangeRequest{Lo: uint64(lo), Hi: uint64(hi)})
	if err != nil {
		return fmt.Errorf("%w: encode request: %v", chorderr.ErrInternal, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(addr, "/files/transfer"), bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("%w: build request: %v", chorderr.ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", chorderr.ErrTransport, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var errResp errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		return fmt.Errorf("%w: remote status %d: %s", chorderr.ErrTransport, resp.StatusCode, errResp.Error)
	}
	_, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		return fmt.Errorf("%w: bad content-type: %v", chorderr.ErrTransport, err)
	}
	mr := multipart.NewReader(resp.Body, params["boundary"])
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: read part: %v", chorderr.ErrTransport, err)
		}
		data, err := io.ReadAll(part)
		if err != nil {
			return fmt.Errorf("%w: read part body: %v", chorderr.ErrTransport, err)
		}
		if err := recv(part.FileName(), data); err != nil {
			return err
		}
	}
}

func (c *Client) ConfirmTransfer(ctx context.Context, addr string, lo, hi ring.ID) error {
	return c.doJSON(ctx, http.MethodPost, addr, "/files/transfer/confirm",
		transferRangeRequest{Lo: uint64(lo), Hi: uint64(hi)}, nil)
}

func (c *Client) ForwardFile(ctx context.Context, addr string, name string, data []byte) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return fmt.Errorf("%w: build multipart: %v", chorderr.ErrInternal, err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("%w: write multipart body: %v", chorderr.ErrInternal, err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("%w: close multipart: %v", chorderr.ErrInternal, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(addr, "/files/forward"), &buf)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", chorderr.ErrTransport, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", chorderr.ErrTransport, err)
	}
	defer resp.Body.Close()
	return c.decodeResponse(resp, nil)
}

func (c *Client) GetFile(ctx context.Context, addr string, name string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(addr, "/files/"+url.PathEscape(name)), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", chorderr.ErrTransport, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", chorderr.ErrTransport, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, chorderr.ErrNotFound
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		var errResp errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		return nil, fmt.Errorf("%w: remote status %d: %s", chorderr.ErrTransport, resp.StatusCode, errResp.Error)
	}
	return resp.Body, nil
}

func (c *Client) DeleteFile(ctx context.Context, addr string, name string) error {
	return c.doJSON(ctx, http.MethodDelete, addr, "/files/"+url.PathEscape(name), nil, nil)
}
