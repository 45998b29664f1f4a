package tester

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/moamenhredeen/oastest/internal/models"
	"github.com/moamenhredeen/oastest/internal/validation"
)

const userAgent = "oastest/1.0"

// RequestBuilder builds HTTP requests from scenario examples
type RequestBuilder struct {
	userAgent string
}

// NewRequestBuilder creates a new request builder
func NewRequestBuilder() *RequestBuilder {
	return &RequestBuilder{userAgent: userAgent}
}

// BuildRequest builds an HTTP request for one scenario execution
func (rb *RequestBuilder) BuildRequest(ctx context.Context, er ExecutionRequest) (*http.Request, error) {
	op := er.Operation
	if op == nil {
		return nil, fmt.Errorf("operation is nil")
	}

	// Build URL with path parameters
	fullPath := op.Path
	query := url.Values{}
	for i := range op.Parameters {
		param := &op.Parameters[i]
		if param.In != models.InPath {
			continue
		}
		if val, ok := er.Parameters[param.Name]; ok {
			fullPath = strings.ReplaceAll(fullPath, "{"+param.Name+"}", url.PathEscape(parameterString(param, val)))
		}
	}

	fullURL := strings.TrimRight(er.Server, "/") + fullPath

	// Add query parameters
	for i := range op.Parameters {
		param := &op.Parameters[i]
		if param.In != models.InQuery {
			continue
		}
		if val, ok := er.Parameters[param.Name]; ok {
			addQuery(query, param, val)
		}
	}

	var (
		body        *bytes.Reader
		contentType string
	)
	if er.Body != nil {
		data, ct, err := encodeBody(op.RequestBody, er.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body, contentType = bytes.NewReader(data), ct
	}

	var (
		req *http.Request
		err error
	)
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, op.Method, fullURL, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, op.Method, fullURL, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	// Set default headers
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", rb.userAgent)

	// Add header and cookie parameters
	for i := range op.Parameters {
		param := &op.Parameters[i]
		val, ok := er.Parameters[param.Name]
		if !ok {
			continue
		}
		switch param.In {
		case models.InHeader:
			req.Header.Set(param.Name, parameterString(param, val))
		case models.InCookie:
			req.AddCookie(&http.Cookie{Name: param.Name, Value: parameterString(param, val)})
		}
	}

	for _, cred := range er.Credentials {
		applyCredential(req, query, cred)
	}

	if len(query) > 0 {
		req.URL.RawQuery = query.Encode()
	}
	return req, nil
}

// applyCredential places a credential where its scheme expects it.
func applyCredential(req *http.Request, query url.Values, cred Credential) {
	switch cred.Scheme.Type {
	case "apiKey":
		switch cred.Scheme.In {
		case models.InQuery:
			query.Set(cred.Scheme.ParamName, cred.Value)
		case models.InCookie:
			req.AddCookie(&http.Cookie{Name: cred.Scheme.ParamName, Value: cred.Value})
		default:
			req.Header.Set(cred.Scheme.ParamName, cred.Value)
		}
	case "http":
		if cred.Scheme.Scheme == "basic" {
			user, pass, _ := strings.Cut(cred.Value, ":")
			req.SetBasicAuth(user, pass)
			return
		}
		req.Header.Set("Authorization", "Bearer "+cred.Value)
	case "oauth2", "openIdConnect":
		req.Header.Set("Authorization", "Bearer "+cred.Value)
	}
}

// addQuery serializes a query parameter in form style with explode, the
// OpenAPI default. Content-typed parameters are sent as one encoded value.
func addQuery(query url.Values, param *models.Parameter, val any) {
	if param.Shape == models.ShapeContent {
		query.Add(param.Name, parameterString(param, val))
		return
	}
	switch v := val.(type) {
	case []any:
		for _, item := range v {
			query.Add(param.Name, scalarString(item))
		}
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			query.Add(k, scalarString(v[k]))
		}
	default:
		query.Add(param.Name, scalarString(val))
	}
}

// parameterString serializes a path, header or cookie value in simple style.
func parameterString(param *models.Parameter, val any) string {
	if param.Shape == models.ShapeContent {
		if s, ok := val.(string); ok && !isJSON(param.Content.Name) {
			return s
		}
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	}

	switch v := val.(type) {
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = scalarString(item)
		}
		return strings.Join(parts, ",")
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, 2*len(keys))
		for _, k := range keys {
			parts = append(parts, k, scalarString(v[k]))
		}
		return strings.Join(parts, ",")
	}
	return scalarString(val)
}

func scalarString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Sprint(val)
	}
	return string(data)
}

// encodeBody serializes a body skeleton for the body's declared media type.
func encodeBody(body *models.RequestBody, value map[string]any) ([]byte, string, error) {
	contentType := "application/json"
	if body != nil {
		if body.Media != nil {
			contentType = body.Media.Name
		} else if len(body.Content) > 0 {
			contentType = body.Content[0].Name
		}
	}

	mt := validation.MediaType(contentType)
	if mt == "application/x-www-form-urlencoded" {
		form := url.Values{}
		for k, v := range value {
			form.Set(k, scalarString(v))
		}
		return []byte(form.Encode()), contentType, nil
	}
	if strings.Contains(mt, "*") {
		contentType = "application/json"
	}
	data, err := json.Marshal(value)
	return data, contentType, err
}

func isJSON(mediaType string) bool {
	mt := validation.MediaType(mediaType)
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}
