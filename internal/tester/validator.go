package tester

import (
	"fmt"
	"strconv"

	"github.com/moamenhredeen/oastest/internal/diagnostics"
	"github.com/moamenhredeen/oastest/internal/models"
	"github.com/moamenhredeen/oastest/internal/validation"
)

var bodyPath = []string{"body"}

// ValidateResponse checks a response against the operation's declared
// responses. accept is the Accept header example the scenario sent, if any.
func ValidateResponse(op *models.Operation, resp *Response, accept string, set *diagnostics.Set) {
	if !resp.OK() {
		set.Report(diagnostics.InvalidResponse, nil, resp.Status)
		return
	}

	declared := FindResponse(op.Responses, resp.Status)
	if declared == nil {
		set.Report(diagnostics.StatusCodeMismatch, nil, resp.Status)
		return
	}

	// A response declared without content accepts any payload.
	if len(declared.Content) == 0 {
		return
	}

	media := FindMediaType(declared.Content, resp.ContentType)
	if media == nil {
		set.Report(diagnostics.ContentTypeMismatch, nil, displayContentType(resp.ContentType))
		return
	}

	if accept != "" && !validation.Accepts(accept, resp.ContentType) {
		set.Report(diagnostics.MediaTypeMismatch, nil, accept, displayContentType(resp.ContentType))
	}

	if !resp.BodyParsed {
		set.Report(diagnostics.UnableToParseResponseBody, nil, displayContentType(resp.ContentType))
		return
	}
	if media.Schema != nil {
		validation.Match(resp.Body, media.Schema, bodyPath, set)
	}
}

// FindResponse resolves the declared response for a status code: the exact
// code first, then its NXX range, then default.
func FindResponse(responses []models.Response, status int) *models.Response {
	keys := []string{strconv.Itoa(status), fmt.Sprintf("%dXX", status/100), "default"}
	for _, key := range keys {
		for i := range responses {
			if responses[i].Status == key {
				return &responses[i]
			}
		}
	}
	return nil
}

// FindMediaType returns the first declared media type whose key covers
// contentType. Keys may use wildcards such as "application/*".
func FindMediaType(content []models.MediaType, contentType string) *models.MediaType {
	for i := range content {
		if validation.MediaTypeMatches(content[i].Name, contentType) {
			return &content[i]
		}
	}
	return nil
}

func displayContentType(ct string) string {
	if ct == "" {
		return "none"
	}
	return ct
}
