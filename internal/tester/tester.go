package tester

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/moamenhredeen/oastest/internal/generator"
	"github.com/moamenhredeen/oastest/internal/models"
	"github.com/moamenhredeen/oastest/internal/parser"
)

// DefaultConcurrency is the number of scenarios run in parallel per target.
const DefaultConcurrency = 8

var (
	// ErrAmbiguousServer is returned when a document declares several servers
	// and the target names none of them.
	ErrAmbiguousServer = errors.New("multiple servers declared, choose one explicitly")
	// ErrInvalidServer is returned when the target's server matches no declared server.
	ErrInvalidServer = errors.New("server not declared in document")
	// ErrNoServer is returned when neither the document nor the target names a server.
	ErrNoServer = errors.New("no server declared")
	// ErrMissingCredential is returned when no security alternative of an
	// operation can be satisfied with the target's credentials.
	ErrMissingCredential = errors.New("missing credential")
)

// Credentials are the secrets a target may use to satisfy security schemes.
type Credentials struct {
	APIKey      string
	BearerToken string
	OAuthToken  string
	// BasicAuth is "user:password".
	BasicAuth string
}

// For returns the credential that satisfies scheme, or "".
func (c Credentials) For(scheme models.SecurityScheme) string {
	switch scheme.Type {
	case "apiKey":
		return c.APIKey
	case "http":
		switch scheme.Scheme {
		case "bearer":
			return c.BearerToken
		case "basic":
			return c.BasicAuth
		}
	case "oauth2", "openIdConnect":
		return c.OAuthToken
	}
	return ""
}

// Target is one document to test against one server.
type Target struct {
	Name string
	// Path is a file path or an http(s) URL.
	Path        string
	Server      string
	Credentials Credentials
}

// EventType represents the type of test event
type EventType int

const (
	// EventTargetStarting indicates a target is about to be loaded
	EventTargetStarting EventType = iota
	// EventStarting indicates a scenario is about to start
	EventStarting
	// EventCompleted indicates a scenario has completed
	EventCompleted
	// EventTargetCompleted indicates every scenario of a target has settled
	EventTargetCompleted
)

// TestEvent represents an event during test execution
type TestEvent struct {
	Type     EventType
	Target   string
	Scenario string
	// Result is set for EventCompleted events.
	Result *models.ScenarioResult
	// TargetResult is set for EventTargetCompleted events.
	TargetResult *models.TargetResult
	Index        int // scenario index (0-based)
	Total        int // total number of scenarios of the target
}

// OnTestEvent is a callback function for test events. Calls are serialized.
type OnTestEvent func(event TestEvent)

// Options tune a test run.
type Options struct {
	// Concurrency bounds scenarios in flight per target and targets in flight per batch.
	Concurrency int
	// Filter keeps operations whose path or operation id contains it.
	Filter string
	// Tags keeps operations carrying at least one of the tags.
	Tags    []string
	OnEvent OnTestEvent
}

// Tester executes scenarios derived from OpenAPI documents
type Tester struct {
	conductor *Conductor
	generator *generator.Generator
	logger    zerolog.Logger
	opts      Options

	mu sync.Mutex
}

// NewTester creates a new tester instance
func NewTester(executor Executor, logger zerolog.Logger, opts Options) *Tester {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	return &Tester{
		conductor: NewConductor(executor),
		generator: generator.NewGenerator(),
		logger:    logger,
		opts:      opts,
	}
}

func (t *Tester) emit(ev TestEvent) {
	if t.opts.OnEvent == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error().Interface("panic", r).Str("target", ev.Target).Msg("event callback panicked")
		}
	}()
	t.opts.OnEvent(ev)
}

// RunBatch runs every target and returns their results in input order. A
// target that fails never affects its siblings.
func (t *Tester) RunBatch(ctx context.Context, targets []Target) []models.TargetResult {
	results := make([]models.TargetResult, len(targets))

	var g errgroup.Group
	g.SetLimit(t.opts.Concurrency)
	for i, target := range targets {
		g.Go(func() error {
			results[i] = t.RunTarget(ctx, target)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// RunTarget loads the target's document, resolves its server and
// credentials, and runs every scenario of every selected operation. Setup
// failures are reported in the result's Error.
func (t *Tester) RunTarget(ctx context.Context, target Target) (result models.TargetResult) {
	log := t.logger.With().Str("target", target.Name).Logger()
	t.emit(TestEvent{Type: EventTargetStarting, Target: target.Name})
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			buf = buf[:runtime.Stack(buf, false)]
			log.Error().Interface("panic", r).Bytes("stack", buf).Msg("target run panicked")
			result = models.NewTargetError(target.Name, target.Path, target.Server, fmt.Errorf("unexpected error: %v", r))
		}
		t.emit(TestEvent{Type: EventTargetCompleted, Target: target.Name, TargetResult: &result})
	}()

	log.Info().Str("spec", target.Path).Msg("loading target")

	jobs, server, schemes, err := t.prepare(ctx, target)
	if err != nil {
		log.Warn().Err(err).Msg("target setup failed")
		return models.NewTargetError(target.Name, target.Path, target.Server, err)
	}
	log.Info().Str("server", server).Int("scenarios", len(jobs)).Msg("running scenarios")

	results := make([]models.ScenarioResult, len(jobs))
	var g errgroup.Group
	g.SetLimit(t.opts.Concurrency)
	for i, job := range jobs {
		g.Go(func() error {
			name := job.Scenario.Name()
			t.emit(TestEvent{Type: EventStarting, Target: target.Name, Scenario: name, Index: i, Total: len(jobs)})

			res := t.conductor.Run(ctx, job)
			results[i] = res

			log.Debug().
				Str("operation", res.OperationID).
				Str("scenario", name).
				Int("failures", len(res.Failures)).
				Int("warnings", len(res.Warnings)).
				Msg("scenario completed")
			t.emit(TestEvent{Type: EventCompleted, Target: target.Name, Scenario: name, Result: &res, Index: i, Total: len(jobs)})
			return nil
		})
	}
	_ = g.Wait()

	return models.TargetResult{
		TargetName:      target.Name,
		SpecPath:        target.Path,
		Server:          server,
		SecuritySchemes: schemes,
		Results:         results,
	}
}

// prepare performs target setup and expands the target into scenario jobs.
func (t *Tester) prepare(ctx context.Context, target Target) ([]Job, string, []string, error) {
	p, err := parser.Load(ctx, target.Path)
	if err != nil {
		return nil, "", nil, err
	}

	server, err := SelectServer(p.Servers(), target.Server)
	if err != nil {
		return nil, "", nil, err
	}

	used := make(map[string]bool)
	var jobs []Job
	ops := p.Operations()
	for i := range ops {
		op := &ops[i]
		if !t.selected(op) {
			continue
		}

		creds, err := ResolveSecurity(op, p.SecuritySchemes(), target.Credentials)
		if err != nil {
			return nil, "", nil, err
		}
		for _, c := range creds {
			used[c.Scheme.Name] = true
		}

		for _, s := range t.generator.Scenarios(op) {
			jobs = append(jobs, Job{Scenario: s, Server: server, Credentials: creds})
		}
	}

	schemes := make([]string, 0, len(used))
	for name := range used {
		schemes = append(schemes, name)
	}
	sort.Strings(schemes)

	return jobs, server, schemes, nil
}

func (t *Tester) selected(op *models.Operation) bool {
	if f := t.opts.Filter; f != "" {
		if !strings.Contains(op.Path, f) && !strings.Contains(op.ID, f) && !strings.Contains(op.OriginalID, f) {
			return false
		}
	}
	if len(t.opts.Tags) == 0 {
		return true
	}
	for _, want := range t.opts.Tags {
		for _, tag := range op.Tags {
			if strings.EqualFold(tag, want) {
				return true
			}
		}
	}
	return false
}

// ResolveSecurity picks the first security alternative of op that the
// credentials satisfy. An empty alternative needs no credentials.
func ResolveSecurity(op *models.Operation, schemes map[string]models.SecurityScheme, creds Credentials) ([]Credential, error) {
	if len(op.Security) == 0 {
		return nil, nil
	}

	for _, alt := range op.Security {
		resolved, ok := satisfy(alt, schemes, creds)
		if ok {
			return resolved, nil
		}
	}

	alts := make([]string, len(op.Security))
	for i, alt := range op.Security {
		alts[i] = strings.Join(alt, "+")
	}
	return nil, fmt.Errorf("%w: operation %s requires one of %s", ErrMissingCredential, op.DisplayID(), strings.Join(alts, ", "))
}

func satisfy(alt models.SecurityRequirement, schemes map[string]models.SecurityScheme, creds Credentials) ([]Credential, bool) {
	resolved := make([]Credential, 0, len(alt))
	for _, name := range alt {
		scheme, ok := schemes[name]
		if !ok {
			return nil, false
		}
		value := creds.For(scheme)
		if value == "" {
			return nil, false
		}
		resolved = append(resolved, Credential{Scheme: scheme, Value: value})
	}
	return resolved, true
}
