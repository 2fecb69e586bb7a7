// Package mock provides test doubles for the page package interfaces.
//
// Use Describer to serve a fixed [page.Description] snapshot to the pipeline
// and Automator to record executed actions and return scripted results.
package mock

import (
	"context"
	"sync"

	"github.com/arvindram27/memex-agent/pkg/page"
)

// Describer is a mock implementation of page.Describer.
type Describer struct {
	mu sync.Mutex

	// Description is the snapshot returned by Describe. If nil, Describe
	// returns an empty-but-valid snapshot.
	Description *page.Description

	// DescribeErr, if non-nil, is returned as the error from Describe.
	DescribeErr error

	// DescribeCalls counts invocations of Describe.
	DescribeCalls int
}

// Describe records the call and returns Description, DescribeErr.
func (d *Describer) Describe(_ context.Context) (*page.Description, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.DescribeCalls++
	if d.DescribeErr != nil {
		return nil, d.DescribeErr
	}
	if d.Description != nil {
		return d.Description, nil
	}
	return page.Empty("", ""), nil
}

var _ page.Describer = (*Describer)(nil)

// Automator is a mock implementation of page.Automator.
type Automator struct {
	mu sync.Mutex

	// Result is returned from Execute. If nil, Execute returns a successful
	// empty result.
	Result *page.Result

	// ExecuteErr, if non-nil, is returned as the error from Execute.
	ExecuteErr error

	// Actions records every action passed to Execute.
	Actions []page.Action
}

// Execute records the action and returns Result, ExecuteErr.
func (a *Automator) Execute(_ context.Context, action page.Action) (*page.Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Actions = append(a.Actions, action)
	if a.ExecuteErr != nil {
		return nil, a.ExecuteErr
	}
	if a.Result != nil {
		return a.Result, nil
	}
	return &page.Result{Success: true}, nil
}

// Reset clears all recorded actions. Thread-safe.
func (a *Automator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Actions = nil
}

var _ page.Automator = (*Automator)(nil)
