package tester

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/moamenhredeen/oastest/internal/validation"
)

// maxResponseBody caps how much of a response body is read.
const maxResponseBody = 10 << 20

// HTTPExecutor performs scenarios over HTTP.
type HTTPExecutor struct {
	requestBuilder *RequestBuilder
	client         *http.Client
	limiter        *rate.Limiter
}

// NewHTTPExecutor creates an executor with the given client timeout and
// request rate. A non-positive requestsPerSecond disables throttling.
func NewHTTPExecutor(timeout time.Duration, requestsPerSecond float64) *HTTPExecutor {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	e := &HTTPExecutor{
		requestBuilder: NewRequestBuilder(),
		client: &http.Client{
			Timeout: timeout,
		},
	}
	if requestsPerSecond > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	return e
}

// Execute builds and sends the request, then reads and decodes the response.
func (e *HTTPExecutor) Execute(ctx context.Context, er ExecutionRequest) (*Response, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := e.requestBuilder.BuildRequest(ctx, er)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return DecodeResponse(resp.StatusCode, resp.Header, data), nil
}

// DecodeResponse decodes a raw response. JSON bodies become JSON values and
// text bodies stay strings; anything else is left unparsed.
func DecodeResponse(status int, header http.Header, data []byte) *Response {
	r := &Response{
		Status:      status,
		Header:      header,
		ContentType: validation.MediaType(header.Get("Content-Type")),
	}

	switch {
	case isJSON(r.ContentType):
		var v any
		if err := json.Unmarshal(data, &v); err == nil {
			r.Body, r.BodyParsed = v, true
		}
	case strings.HasPrefix(r.ContentType, "text/"):
		r.Body, r.BodyParsed = string(data), true
	}
	return r
}
