package scxml

import (
	"context"
	"fmt"
	"time"

	"github.com/scxml-go/scxml/internal/interp"
)

// RunOptions configures one Run call's driving parameters, distinct
// from the pluggable capabilities configured via Option (§6.2
// "options: cancel_handle, timeout, event_sink, io_processor").
// Cancellation is expressed idiomatically through ctx rather than a
// separate cancel_handle value; event_sink and io_processor are
// Options, configured once per Run via WithEventSink/WithIOProcessor.
type RunOptions struct {
	// Timeout bounds the whole run; zero means no deadline beyond ctx.
	Timeout time.Duration
	// InputData seeds the run's extended state before the chart's own
	// <datamodel> declarations are evaluated (§6.2 "input_data").
	InputData map[string]any
}

// Run drives chart from startup to termination or cancellation (§4.5),
// blocking the calling goroutine. It returns the active configuration
// as it stood when the run ended, captured before the final unmount
// (so a run that reached a top-level final state returns that state).
//
// Only one Run may be in flight per Chart at a time; a second call
// while one is running returns an error rather than silently
// interleaving two interpreters over one chart's history log.
func (c *Chart) Run(ctx context.Context, opts RunOptions, options ...Option) ([]string, error) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil, fmt.Errorf("scxml: chart is already running")
	}
	c.running = true
	if opts.InputData != nil {
		options = append(options, interp.WithInitialData(opts.InputData))
	}
	runner := interp.New(c.tree, options...)
	c.run = runner
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	return runner.Run(ctx, interp.RunOptions{Timeout: opts.Timeout})
}
