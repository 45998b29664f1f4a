package parser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/pb33f/libopenapi"
	"github.com/pb33f/libopenapi/datamodel"
	"github.com/pb33f/libopenapi/datamodel/high/base"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"

	"github.com/moamenhredeen/oastest/internal/models"
)

// Parser holds the normalized view of one OpenAPI 3 document.
// Everything is built once at parse time and shared read-only afterwards.
type Parser struct {
	document libopenapi.Document

	servers    []models.Server
	schemes    map[string]models.SecurityScheme
	operations []models.Operation

	schemas map[string]*models.Schema
}

// Load parses the document at location, a local file path or an http(s) URL.
func Load(ctx context.Context, location string) (*Parser, error) {
	if u, err := url.Parse(location); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return fetch(ctx, u)
	}
	return ParseFile(location)
}

// ParseFile parses an OpenAPI specification file and returns a Parser instance
func ParseFile(filePath string) (*Parser, error) {
	specBytes, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read OpenAPI file: %w", err)
	}

	return Parse(specBytes, &datamodel.DocumentConfiguration{
		BasePath:            filepath.Dir(filePath),
		AllowFileReferences: true,
	})
}

func fetch(ctx context.Context, u *url.URL) (*Parser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch OpenAPI document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("failed to fetch OpenAPI document: %s", resp.Status)
	}

	specBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read OpenAPI document: %w", err)
	}

	baseURL := *u
	baseURL.Path = pathDir(u.Path)
	return Parse(specBytes, &datamodel.DocumentConfiguration{
		BaseURL:               &baseURL,
		AllowRemoteReferences: true,
	})
}

func pathDir(p string) string {
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[:i]
	}
	return ""
}

// Parse builds a Parser from raw document bytes. config may be nil.
func Parse(specBytes []byte, config *datamodel.DocumentConfiguration) (*Parser, error) {
	var (
		document libopenapi.Document
		err      error
	)
	if config != nil {
		document, err = libopenapi.NewDocumentWithConfiguration(specBytes, config)
	} else {
		document, err = libopenapi.NewDocument(specBytes)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI document: %w", err)
	}

	model, errs := document.BuildV3Model()
	if errs != nil {
		return nil, fmt.Errorf("failed to build v3 model: %v", errs)
	}
	if model == nil {
		return nil, fmt.Errorf("failed to build v3 model: not an OpenAPI 3 document")
	}

	p := &Parser{
		document: document,
		schemes:  make(map[string]models.SecurityScheme),
		schemas:  make(map[string]*models.Schema),
	}
	p.buildServers(&model.Model)
	p.buildSecuritySchemes(&model.Model)
	p.buildOperations(&model.Model)
	return p, nil
}

// Servers returns the document's servers in declaration order.
func (p *Parser) Servers() []models.Server {
	return p.servers
}

// SecuritySchemes returns components.securitySchemes keyed by scheme name.
func (p *Parser) SecuritySchemes() map[string]models.SecurityScheme {
	return p.schemes
}

// Operations returns every operation in path order, then method order.
func (p *Parser) Operations() []models.Operation {
	return p.operations
}

func (p *Parser) buildServers(doc *v3.Document) {
	for _, server := range doc.Servers {
		if server == nil || server.URL == "" {
			continue
		}
		s := models.Server{URL: server.URL, Variables: map[string]string{}}
		if server.Variables != nil {
			for pair := server.Variables.First(); pair != nil; pair = pair.Next() {
				if v := pair.Value(); v != nil {
					s.Variables[pair.Key()] = v.Default
				}
			}
		}
		p.servers = append(p.servers, s)
	}
}

func (p *Parser) buildSecuritySchemes(doc *v3.Document) {
	if doc.Components == nil || doc.Components.SecuritySchemes == nil {
		return
	}
	for pair := doc.Components.SecuritySchemes.First(); pair != nil; pair = pair.Next() {
		scheme := pair.Value()
		if scheme == nil {
			continue
		}
		p.schemes[pair.Key()] = models.SecurityScheme{
			Name:      pair.Key(),
			Type:      scheme.Type,
			In:        scheme.In,
			ParamName: scheme.Name,
			Scheme:    strings.ToLower(scheme.Scheme),
		}
	}
}

func (p *Parser) buildOperations(doc *v3.Document) {
	if doc.Paths == nil || doc.Paths.PathItems == nil {
		return
	}
	docSecurity := securityRequirements(doc.Security)

	for pair := doc.Paths.PathItems.First(); pair != nil; pair = pair.Next() {
		path := pair.Key()
		item := pair.Value()
		if item == nil {
			continue
		}

		methods := []struct {
			name string
			op   *v3.Operation
		}{
			{"GET", item.Get},
			{"PUT", item.Put},
			{"POST", item.Post},
			{"DELETE", item.Delete},
			{"OPTIONS", item.Options},
			{"HEAD", item.Head},
			{"PATCH", item.Patch},
			{"TRACE", item.Trace},
		}

		for _, m := range methods {
			if m.op == nil {
				continue
			}
			op := p.buildOperation(path, m.name, item, m.op)
			if m.op.Security != nil {
				op.Security = securityRequirements(m.op.Security)
			} else {
				op.Security = docSecurity
			}
			p.operations = append(p.operations, op)
		}
	}
}

func (p *Parser) buildOperation(path, method string, item *v3.PathItem, op *v3.Operation) models.Operation {
	id, original := NormalizeOperationID(op.OperationId, method, path)

	tags := []string{}
	if op.Tags != nil {
		tags = append(tags, op.Tags...)
	}

	return models.Operation{
		ID:          id,
		OriginalID:  original,
		Method:      method,
		Path:        path,
		Tags:        tags,
		Parameters:  p.buildParameters(item.Parameters, op.Parameters),
		RequestBody: p.buildRequestBody(op.RequestBody),
		Responses:   p.buildResponses(op.Responses),
	}
}

var nonWord = regexp.MustCompile(`\W`)

// NormalizeOperationID replaces every non-word character of id with "_".
// Operations without an id are named after method and path. The second
// return value is the declared id when normalization changed it.
func NormalizeOperationID(id, method, path string) (string, string) {
	if id == "" {
		return nonWord.ReplaceAllString(strings.ToLower(method)+path, "_"), ""
	}
	normalized := nonWord.ReplaceAllString(id, "_")
	if normalized == id {
		return id, ""
	}
	return normalized, id
}

// buildParameters merges path-level parameters with the operation's own.
// An operation parameter overrides a path parameter of the same name and location.
func (p *Parser) buildParameters(shared, own []*v3.Parameter) []models.Parameter {
	type key struct{ name, in string }

	var params []models.Parameter
	index := make(map[key]int)
	add := func(list []*v3.Parameter) {
		for _, param := range list {
			if param == nil {
				continue
			}
			built := p.buildParameter(param)
			k := key{built.Name, built.In}
			if i, ok := index[k]; ok {
				params[i] = built
				continue
			}
			index[k] = len(params)
			params = append(params, built)
		}
	}
	add(shared)
	add(own)
	return params
}

func (p *Parser) buildParameter(param *v3.Parameter) models.Parameter {
	out := models.Parameter{
		Name:     param.Name,
		In:       param.In,
		Required: param.Required != nil && *param.Required,
	}
	if param.In == models.InPath {
		out.Required = true
	}

	if param.Example != nil {
		out.Example, out.HasExample = decodeNode(param.Example), true
	}
	out.Examples, out.ExampleNames = decodeExamples(param.Examples)
	out.ExampleConflict = out.HasExample && len(out.ExampleNames) > 0

	if param.Schema != nil {
		out.Schema = p.schema(param.Schema)
	}
	content := p.mediaTypes(param.Content)
	if len(content) > 0 {
		out.Content = &content[0]
	}
	out.MediaTypeCount = len(content)

	switch {
	case param.Schema != nil && len(content) > 0:
		out.Fault = models.FaultSchemaAndContent
	case param.Schema != nil:
		out.Shape = models.ShapeSchema
	case len(content) == 0:
		out.Fault = models.FaultNoSchemaOrContent
	case len(content) != 1:
		out.Fault = models.FaultMediaTypeCount
	case content[0].Schema == nil:
		out.Fault = models.FaultMediaTypeSchemaMissing
	default:
		out.Shape = models.ShapeContent
	}
	return out
}

func (p *Parser) buildRequestBody(body *v3.RequestBody) *models.RequestBody {
	if body == nil {
		return nil
	}
	out := &models.RequestBody{
		Required: body.Required != nil && *body.Required,
		Content:  p.mediaTypes(body.Content),
	}

	switch {
	case len(out.Content) != 1:
		out.Fault = models.FaultMediaTypeCount
	case out.Content[0].Schema == nil:
		out.Fault = models.FaultMediaTypeSchemaMissing
	default:
		out.Shape = models.ShapeContent
		out.Media = &out.Content[0]
	}
	return out
}

func (p *Parser) buildResponses(responses *v3.Responses) []models.Response {
	if responses == nil {
		return nil
	}
	var out []models.Response
	if responses.Codes != nil {
		for pair := responses.Codes.First(); pair != nil; pair = pair.Next() {
			r := pair.Value()
			if r == nil {
				continue
			}
			out = append(out, models.Response{
				Status:  strings.ToUpper(pair.Key()),
				Content: p.mediaTypes(r.Content),
			})
		}
	}
	if responses.Default != nil {
		out = append(out, models.Response{
			Status:  "default",
			Content: p.mediaTypes(responses.Default.Content),
		})
	}
	return out
}

func securityRequirements(reqs []*base.SecurityRequirement) []models.SecurityRequirement {
	out := make([]models.SecurityRequirement, 0, len(reqs))
	for _, req := range reqs {
		if req == nil {
			continue
		}
		names := models.SecurityRequirement{}
		if req.Requirements != nil {
			for pair := req.Requirements.First(); pair != nil; pair = pair.Next() {
				names = append(names, pair.Key())
			}
		}
		sort.Strings(names)
		out = append(out, names)
	}
	return out
}
