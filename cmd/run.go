/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/moamenhredeen/oastest/internal/models"
	"github.com/moamenhredeen/oastest/internal/output"
	"github.com/moamenhredeen/oastest/internal/tester"
)

var cyan = color.New(color.FgCyan, color.Bold).SprintFunc()

// runSettings are the knobs shared by the test and batch commands.
type runSettings struct {
	concurrency  int
	rateLimit    float64
	timeout      time.Duration
	filter       string
	tags         []string
	verbose      bool
	outputFormat string
	outputFile   string
}

// runTargets executes targets with live progress on stderr, writes the report
// and returns errProblems when anything failed or was skipped.
func runTargets(ctx context.Context, stdout, stderr io.Writer, targets []tester.Target, rs runSettings) error {
	format, err := output.ParseFormat(rs.outputFormat)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	progress := newProgress(stderr)
	defer progress.stop()

	executor := tester.NewHTTPExecutor(rs.timeout, rs.rateLimit)
	t := tester.NewTester(executor, logger, tester.Options{
		Concurrency: rs.concurrency,
		Filter:      rs.filter,
		Tags:        rs.tags,
		OnEvent:     progress.onEvent,
	})

	results := t.RunBatch(ctx, targets)
	progress.stop()

	renderer, err := output.NewRenderer(format, rs.verbose)
	if err != nil {
		return err
	}
	if rs.outputFile == "" {
		if err := renderer.Render(stdout, results); err != nil {
			return fmt.Errorf("failed to render report: %w", err)
		}
	} else {
		if err := output.Export(results, format, rs.outputFile, rs.verbose); err != nil {
			return fmt.Errorf("failed to export report: %w", err)
		}
		fmt.Fprintf(stderr, "Results exported to: %s\n", rs.outputFile)
	}

	if models.SummarizeBatch(results).HasProblems() {
		return errProblems
	}
	return nil
}

func terminalFile(w io.Writer) (*os.File, bool) {
	f, ok := w.(*os.File)
	if !ok {
		return nil, false
	}
	return f, isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// progress reports target and scenario completion. On a terminal a spinner
// tracks scenarios in flight.
type progress struct {
	w       io.Writer
	tty     *os.File
	spinner *spinner.Spinner
	done    map[string]int
}

func newProgress(w io.Writer) *progress {
	p := &progress{w: w, done: make(map[string]int)}
	if f, ok := terminalFile(w); ok {
		p.tty = f
		p.startSpinner(" Loading targets...")
	}
	return p
}

func (p *progress) startSpinner(suffix string) {
	p.spinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriterFile(p.tty))
	p.spinner.Suffix = suffix
	p.spinner.Start()
}

// onEvent is called serially by the tester.
func (p *progress) onEvent(ev tester.TestEvent) {
	switch ev.Type {
	case tester.EventCompleted:
		p.done[ev.Target]++
		if p.spinner != nil {
			p.spinner.Lock()
			p.spinner.Suffix = fmt.Sprintf(" [%d/%d] %s %s", p.done[ev.Target], ev.Total, ev.Target, ev.Scenario)
			p.spinner.Unlock()
		}

	case tester.EventTargetCompleted:
		summary := models.SummarizeTarget(*ev.TargetResult)
		line := fmt.Sprintf("%s %s %s %d/%d scenarios passed\n",
			output.StatusLabel(summary.Status), ev.Target, cyan("→"), summary.Passed, summary.Scenarios)
		if summary.Status == models.StatusSkipped {
			line = fmt.Sprintf("%s %s %s %s\n", output.StatusLabel(summary.Status), ev.Target, cyan("→"), summary.Error)
		}

		if p.spinner == nil {
			fmt.Fprint(p.w, line)
			return
		}
		p.spinner.Stop()
		fmt.Fprint(p.w, line)
		p.startSpinner(" Running...")
	}
}

func (p *progress) stop() {
	if p.spinner != nil {
		p.spinner.Stop()
	}
}
