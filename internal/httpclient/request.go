package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Request is a fluent builder for one HTTP request.
type Request struct {
	client  *Client
	headers map[string]string
	query   map[string]string
	body    any
	result  any
}

// Response wraps the outcome of an executed request.
type Response struct {
	StatusCode int
	body       []byte
	result     any
}

// Body returns the raw response body.
func (r *Response) Body() []byte { return r.body }

// String returns the response body as a string.
func (r *Response) String() string { return string(r.body) }

// IsError reports whether the status code is 4xx or 5xx.
func (r *Response) IsError() bool { return r.StatusCode >= 400 }

// Result returns the decoded result set via SetResult, or nil.
func (r *Response) Result() any { return r.result }

// SetHeader sets a request header.
func (r *Request) SetHeader(key, value string) *Request {
	r.headers[key] = value
	return r
}

// SetQueryParam adds a URL query parameter.
func (r *Request) SetQueryParam(key, value string) *Request {
	r.query[key] = value
	return r
}

// SetQueryParams adds multiple URL query parameters.
func (r *Request) SetQueryParams(params map[string]string) *Request {
	for k, v := range params {
		r.query[k] = v
	}
	return r
}

// SetBody sets the request body. It is JSON-encoded unless it is a []byte or
// string, which are sent as-is.
func (r *Request) SetBody(body any) *Request {
	r.body = body
	return r
}

// SetResult sets a pointer the response body is JSON-decoded into on success.
func (r *Request) SetResult(result any) *Request {
	r.result = result
	return r
}

// Get executes a GET request against url.
func (r *Request) Get(ctx context.Context, url string) (*Response, error) {
	return r.execute(ctx, http.MethodGet, url)
}

// Post executes a POST request against url.
func (r *Request) Post(ctx context.Context, url string) (*Response, error) {
	return r.execute(ctx, http.MethodPost, url)
}

func (r *Request) execute(ctx context.Context, method, rawURL string) (*Response, error) {
	fullURL := rawURL
	if r.client.baseURL != "" && !strings.HasPrefix(rawURL, "http") {
		fullURL = r.client.baseURL + rawURL
	}

	ctx, span := r.client.tracer.Start(ctx, fmt.Sprintf("http.%s", strings.ToLower(method)),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.url", fullURL),
			attribute.String("provider", r.client.providerName),
		),
	)
	defer span.End()

	var bodyReader io.Reader
	if r.body != nil {
		switch b := r.body.(type) {
		case []byte:
			bodyReader = bytes.NewReader(b)
		case string:
			bodyReader = strings.NewReader(b)
		default:
			encoded, err := json.Marshal(r.body)
			if err != nil {
				return nil, r.fail(ctx, span, fmt.Errorf("encode request body: %w", err))
			}
			bodyReader = bytes.NewReader(encoded)
			if _, ok := r.headers["Content-Type"]; !ok {
				r.headers["Content-Type"] = "application/json"
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return nil, r.fail(ctx, span, err)
	}

	if len(r.query) > 0 {
		q := req.URL.Query()
		for k, v := range r.query {
			q.Set(k, v)
		}
		req.URL.RawQuery = q.Encode()
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	resp, err := r.client.client.Do(req)
	if err != nil {
		return nil, r.fail(ctx, span, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, r.fail(ctx, span, fmt.Errorf("read response body: %w", err))
	}

	out := &Response{StatusCode: resp.StatusCode, body: body}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	r.record(ctx, !out.IsError())

	if out.IsError() {
		span.SetStatus(codes.Error, resp.Status)
		return out, nil
	}

	if r.result != nil && len(body) > 0 {
		if err := json.Unmarshal(body, r.result); err != nil {
			return out, r.fail(ctx, span, fmt.Errorf("decode response body: %w", err))
		}
		out.result = r.result
	}

	span.SetStatus(codes.Ok, "")
	return out, nil
}

func (r *Request) fail(ctx context.Context, span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	r.record(ctx, false)
	return err
}

func (r *Request) record(ctx context.Context, success bool) {
	r.client.requestCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", r.client.providerName),
		attribute.Bool("success", success),
	))
}

// JoinURL joins a base URL and path segments with single slashes.
func JoinURL(base string, parts ...string) string {
	out := strings.TrimRight(base, "/")
	for _, p := range parts {
		out += "/" + strings.Trim(p, "/")
	}
	return out
}
