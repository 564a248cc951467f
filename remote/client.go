// Package remote talks to the hosted backend that owns the site content.
//
// Client runs one-off queries against the backend's HTTP query endpoint.
// Feed turns queries into subscriptions: it polls them, keeps the latest value
// of each as a non-blocking snapshot and signals when a value changes.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	pc "github.com/unkn0wn-root/prioritycache"
)

const (
	defaultTimeout   = 10 * time.Second
	maxResponseBytes = 8 << 20
)

var ErrBaseURLRequired = errors.New("remote: base URL is required")

// QueryError is a query the backend executed and reported as failed.
type QueryError struct {
	Path    string
	Message string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %s failed: %s", e.Path, e.Message)
}

// StatusError is a non-2xx HTTP response.
type StatusError struct {
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("query %s: http %d: %s", e.Path, e.Status, e.Body)
}

type ClientOptions struct {
	BaseURL    string        // deployment URL, e.g. https://happy-otter-123.convex.cloud
	HTTPClient *http.Client  // nil => client with Timeout
	Timeout    time.Duration // 0 => 10s; ignored when HTTPClient is set
	Tracer     trace.Tracer  // nil => otel global tracer
	Logger     pc.Logger     // nil => NopLogger
}

// Client executes queries. Concurrent calls for the same path and arguments
// share one round trip.
type Client struct {
	base   string
	http   *http.Client
	tracer trace.Tracer
	log    pc.Logger
	group  singleflight.Group
}

func NewClient(opts ClientOptions) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, ErrBaseURLRequired
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	tr := opts.Tracer
	if tr == nil {
		tr = otel.Tracer("github.com/unkn0wn-root/prioritycache/remote")
	}
	var log pc.Logger = pc.NopLogger{}
	if opts.Logger != nil {
		log = opts.Logger
	}
	return &Client{base: base, http: hc, tracer: tr, log: log}, nil
}

type queryRequest struct {
	Path   string `json:"path"`
	Args   any    `json:"args"`
	Format string `json:"format"`
}

type queryResponse struct {
	Status       string          `json:"status"`
	Value        json.RawMessage `json:"value"`
	ErrorMessage string          `json:"errorMessage"`
}

// Query runs the query at path (e.g. "services:getServices") with args and
// returns its JSON value. A nil args is sent as an empty object.
func (c *Client) Query(ctx context.Context, path string, args any) (json.RawMessage, error) {
	if args == nil {
		args = map[string]any{}
	}
	body, err := json.Marshal(queryRequest{Path: path, Args: args, Format: "json"})
	if err != nil {
		return nil, fmt.Errorf("encode query %s: %w", path, err)
	}

	v, err, shared := c.group.Do(path+"\x00"+string(body), func() (any, error) {
		return c.do(ctx, path, body)
	})
	if shared {
		c.log.Debug("query coalesced", pc.Fields{"path": path})
	}
	if err != nil {
		return nil, err
	}
	return v.(json.RawMessage), nil
}

func (c *Client) do(ctx context.Context, path string, body []byte) (json.RawMessage, error) {
	ctx, span := c.tracer.Start(ctx, "remote.Query", trace.WithAttributes(attribute.String("query.path", path)))
	defer span.End()

	val, err := c.roundTrip(ctx, path, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("query.response_bytes", len(val)))
	return val, nil
}

func (c *Client) roundTrip(ctx context.Context, path string, body []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/query", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Path: path, Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var qr queryResponse
	if err := json.Unmarshal(raw, &qr); err != nil {
		return nil, fmt.Errorf("decode response %s: %w", path, err)
	}
	switch qr.Status {
	case "success":
		if len(qr.Value) == 0 {
			return json.RawMessage("null"), nil
		}
		return qr.Value, nil
	case "error":
		return nil, &QueryError{Path: path, Message: qr.ErrorMessage}
	default:
		return nil, fmt.Errorf("query %s: unexpected status %q", path, qr.Status)
	}
}
