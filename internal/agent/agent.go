// Package agent coordinates the voice command pipeline: transcription,
// transcript correction, intent classification, page context building,
// resolution, execution, and interaction memory.
//
// An [Agent] processes one command at a time. While a command is in flight a
// busy flag is set; concurrent calls fail fast with [ErrBusy] instead of
// queueing, because a spoken command refers to the page as the user sees it
// now and queued execution against a changed page is worse than a retry
// prompt. Every run is bounded by a timeout; a run that exceeds it is
// abandoned and leaves no trace in interaction memory.
package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/arvindram27/memex-agent/internal/command"
	"github.com/arvindram27/memex-agent/internal/history"
	"github.com/arvindram27/memex-agent/internal/observe"
	"github.com/arvindram27/memex-agent/internal/pagectx"
	"github.com/arvindram27/memex-agent/internal/resolve"
	"github.com/arvindram27/memex-agent/internal/suggest"
	"github.com/arvindram27/memex-agent/internal/transcript"
	"github.com/arvindram27/memex-agent/pkg/page"
	"github.com/arvindram27/memex-agent/pkg/transcribe"
)

// Sentinel errors returned by the processing entry points.
var (
	// ErrBusy is returned when a command is already being processed.
	ErrBusy = errors.New("agent: a command is already being processed")

	// ErrEmptyTranscript is returned when transcription produced no usable
	// text.
	ErrEmptyTranscript = errors.New("agent: transcription produced no text")
)

// DefaultTimeout bounds a single pipeline run.
const DefaultTimeout = 30 * time.Second

// Outcome is the result of one pipeline run.
type Outcome struct {
	// Transcript is the corrected transcript that was classified.
	Transcript string `json:"transcript"`

	// Corrections lists phonetic substitutions applied to the raw transcript.
	Corrections []transcript.Correction `json:"corrections,omitempty"`

	// Context is the page context the command was resolved against.
	Context pagectx.Context `json:"context"`

	// Resolved is the final resolved command.
	Resolved resolve.ResolvedCommand `json:"resolved"`

	// Executed reports whether browser actions were run.
	Executed bool `json:"executed"`

	// Results holds the automator results, one per executed action.
	Results []page.Result `json:"results,omitempty"`
}

// Config holds the Agent's dependencies. Transcriber may be nil when only
// text commands are processed; Automator may be nil to resolve without
// executing. Everything else is required.
type Config struct {
	Transcriber transcribe.Transcriber
	Describer   page.Describer
	Automator   page.Automator

	Corrector  *transcript.Corrector
	Classifier *command.Classifier
	Builder    *pagectx.Builder
	Resolver   *resolve.Resolver
	Suggester  *suggest.Engine
	Log        *history.Log

	// Timeout bounds a pipeline run. Zero means DefaultTimeout.
	Timeout time.Duration

	// HomeURL is where "go home" navigates. Empty disables execution of
	// that command.
	HomeURL string

	// Metrics defaults to observe.DefaultMetrics when nil.
	Metrics *observe.Metrics
}

// Agent runs the pipeline. All exported methods are safe for concurrent use.
type Agent struct {
	cfg     Config
	metrics *observe.Metrics

	mu      sync.Mutex
	busy    bool
	lastCtx pagectx.Context
}

// New creates an Agent. Returns an error when a required dependency is
// missing.
func New(cfg Config) (*Agent, error) {
	if cfg.Describer == nil {
		return nil, fmt.Errorf("agent: describer is required")
	}
	if cfg.Corrector == nil || cfg.Classifier == nil || cfg.Builder == nil ||
		cfg.Resolver == nil || cfg.Suggester == nil || cfg.Log == nil {
		return nil, fmt.Errorf("agent: corrector, classifier, builder, resolver, suggester and log are required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	m := cfg.Metrics
	if m == nil {
		m = observe.DefaultMetrics()
	}
	return &Agent{cfg: cfg, metrics: m}, nil
}

// Busy reports whether a command is currently being processed.
func (a *Agent) Busy() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.busy
}

// LatestContext returns the page context from the most recent pipeline run.
// Zero value before the first run.
func (a *Agent) LatestContext() pagectx.Context {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastCtx
}

// ProcessAudio transcribes the samples and processes the resulting text.
// Returns ErrEmptyTranscript when nothing intelligible was said.
func (a *Agent) ProcessAudio(ctx context.Context, samples []float32) (*Outcome, error) {
	if a.cfg.Transcriber == nil {
		return nil, fmt.Errorf("agent: no transcriber configured")
	}
	if err := a.acquire(); err != nil {
		return nil, err
	}
	defer a.release()

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	start := time.Now()
	text, err := a.cfg.Transcriber.Transcribe(ctx, samples)
	a.metrics.TranscribeDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		a.metrics.RecordPipelineError(ctx, "transcribe")
		return nil, fmt.Errorf("agent: transcribe: %w", err)
	}
	if text == "" {
		return nil, ErrEmptyTranscript
	}
	return a.process(ctx, text)
}

// ProcessText runs the pipeline on already-transcribed text.
func (a *Agent) ProcessText(ctx context.Context, text string) (*Outcome, error) {
	if text == "" {
		return nil, ErrEmptyTranscript
	}
	if err := a.acquire(); err != nil {
		return nil, err
	}
	defer a.release()

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()
	return a.process(ctx, text)
}

// Suggest returns proactive next actions for the current page. It does not
// take the busy flag: suggestions are read-only and may be requested while a
// command is running.
func (a *Agent) Suggest(ctx context.Context) ([]suggest.Action, error) {
	desc, pctx := a.snapshot(ctx)
	actions := a.cfg.Suggester.Suggest(pctx, desc)
	a.metrics.Suggestions.Add(ctx, int64(len(actions)))
	return actions, nil
}

// Stats returns aggregate interaction statistics.
func (a *Agent) Stats() history.Statistics {
	return a.cfg.Log.Stats()
}

// Recent returns the n most recent history entries, newest first.
func (a *Agent) Recent(n int) []history.Entry {
	return a.cfg.Log.Recent(n)
}

func (a *Agent) acquire() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.busy {
		return ErrBusy
	}
	a.busy = true
	a.metrics.InFlight.Add(context.Background(), 1)
	return nil
}

func (a *Agent) release() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.busy = false
	a.metrics.InFlight.Add(context.Background(), -1)
}

// process runs the pipeline stages. The busy flag is already held.
func (a *Agent) process(ctx context.Context, rawText string) (*Outcome, error) {
	ctx, span := observe.StartSpan(ctx, "pipeline.process")
	defer span.End()

	pipelineStart := time.Now()
	log := observe.Logger(ctx)

	desc, pctx := a.snapshot(ctx)

	corrected, corrections := a.cfg.Corrector.Correct(rawText, desc)
	if n := len(corrections); n > 0 {
		a.metrics.Corrections.Add(ctx, int64(n))
		log.Debug("transcript corrected", "raw", rawText, "corrected", corrected)
	}

	resolveStart := time.Now()
	cmd := a.cfg.Classifier.Classify(corrected, desc)
	resolved := a.cfg.Resolver.Resolve(cmd, pctx, desc)
	a.metrics.ResolveDuration.Record(ctx, time.Since(resolveStart).Seconds())

	log.Info("command resolved",
		"text", corrected,
		"intent", resolved.Intent,
		"confidence", resolved.Confidence,
		"targets", len(resolved.Targets),
	)

	out := &Outcome{
		Transcript:  corrected,
		Corrections: corrections,
		Context:     pctx,
		Resolved:    resolved,
	}

	executed, results, execErr := a.execute(ctx, resolved)
	out.Executed = executed
	out.Results = results

	// A timed-out run leaves no trace in interaction memory.
	if ctx.Err() != nil {
		a.metrics.RecordPipelineError(ctx, "timeout")
		return nil, fmt.Errorf("agent: pipeline: %w", ctx.Err())
	}

	success := executed && execErr == nil
	a.record(ctx, desc, pctx, resolved, success)
	a.metrics.RecordCommand(ctx, string(resolved.Intent), statusOf(executed, execErr))
	a.metrics.PipelineDuration.Record(ctx, time.Since(pipelineStart).Seconds())

	if execErr != nil {
		return out, fmt.Errorf("agent: execute: %w", execErr)
	}
	return out, nil
}

// snapshot captures the page description and derives context from it. A
// failing describer degrades to a nil description rather than aborting;
// classification still works on text alone.
func (a *Agent) snapshot(ctx context.Context) (*page.Description, pagectx.Context) {
	start := time.Now()
	desc, err := a.cfg.Describer.Describe(ctx)
	a.metrics.DescribeDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		observe.Logger(ctx).Warn("page describe failed, continuing without snapshot", "err", err)
		a.metrics.RecordPipelineError(ctx, "describe")
		desc = nil
	}
	pctx := a.cfg.Builder.Build(desc)

	a.mu.Lock()
	a.lastCtx = pctx
	a.mu.Unlock()
	return desc, pctx
}

// execute runs the resolved command's browser actions when the command is
// confident and executable. Returns executed=false for unresolved commands
// and for intents with no browser-side effect.
func (a *Agent) execute(ctx context.Context, resolved resolve.ResolvedCommand) (bool, []page.Result, error) {
	if a.cfg.Automator == nil {
		return false, nil, nil
	}
	if !resolved.Confident {
		// An ambiguous command ships suggestions instead of side effects.
		return false, nil, nil
	}
	actions, ok := a.plan(resolved)
	if !ok {
		return false, nil, nil
	}

	var results []page.Result
	start := time.Now()
	defer func() {
		a.metrics.ExecuteDuration.Record(ctx, time.Since(start).Seconds())
	}()
	for _, act := range actions {
		res, err := a.cfg.Automator.Execute(ctx, act)
		if err != nil {
			a.metrics.RecordPipelineError(ctx, "execute")
			return true, results, fmt.Errorf("%s: %w", act.Kind, err)
		}
		if res != nil {
			results = append(results, *res)
		}
	}
	return true, results, nil
}

// plan maps a resolved command onto automator actions. Returns ok=false for
// intents that have no browser-side execution.
func (a *Agent) plan(resolved resolve.ResolvedCommand) ([]page.Action, bool) {
	params := resolved.Original.Parameters
	selector := ""
	if len(resolved.Targets) > 0 {
		selector = resolved.Targets[0].Selector
	}

	switch resolved.Intent {
	case command.IntentNavigate:
		url := params[command.ParamURL]
		if url == "" {
			return nil, false
		}
		return []page.Action{{Kind: page.ActionNavigate, URL: url}}, true
	case command.IntentGoBack:
		return []page.Action{{Kind: page.ActionBack}}, true
	case command.IntentGoForward:
		return []page.Action{{Kind: page.ActionForward}}, true
	case command.IntentRefresh:
		return []page.Action{{Kind: page.ActionReload}}, true
	case command.IntentGoHome:
		if a.cfg.HomeURL == "" {
			return nil, false
		}
		return []page.Action{{Kind: page.ActionNavigate, URL: a.cfg.HomeURL}}, true
	case command.IntentClick, command.IntentLongPress:
		if selector == "" {
			return nil, false
		}
		return []page.Action{{Kind: page.ActionClick, Selector: selector}}, true
	case command.IntentFillForm:
		value := params[command.ParamValue]
		if value == "" {
			return nil, false
		}
		return []page.Action{{Kind: page.ActionFill, Selector: selector, Value: value}}, true
	case command.IntentSubmitForm:
		return []page.Action{{Kind: page.ActionSubmit, Selector: selector}}, true
	case command.IntentClearForm:
		return []page.Action{{Kind: page.ActionClear, Selector: selector}}, true
	case command.IntentScroll, command.IntentSwipe:
		return []page.Action{scrollAction(params[command.ParamDirection])}, true
	case command.IntentSearch:
		query := params[command.ParamQuery]
		if query == "" {
			return nil, false
		}
		// Fill the search box (or the page's focused input when no target
		// matched) and submit.
		return []page.Action{
			{Kind: page.ActionFill, Selector: selector, Value: query},
			{Kind: page.ActionSubmit, Selector: selector},
		}, true
	case command.IntentRead, command.IntentExtract, command.IntentSummarize:
		return []page.Action{{Kind: page.ActionExtract, Selector: selector}}, true
	default:
		return nil, false
	}
}

// scrollStep is the viewport delta in pixels for one scroll command.
const scrollStep = 600

func scrollAction(direction string) page.Action {
	act := page.Action{Kind: page.ActionScroll}
	switch direction {
	case "up":
		act.DeltaY = -scrollStep
	case "left":
		act.DeltaX = -scrollStep
	case "right":
		act.DeltaX = scrollStep
	default: // down
		act.DeltaY = scrollStep
	}
	return act
}

// record appends the interaction to memory.
func (a *Agent) record(ctx context.Context, desc *page.Description, pctx pagectx.Context, resolved resolve.ResolvedCommand, success bool) {
	url := ""
	if desc != nil {
		url = desc.URL
	}
	a.cfg.Log.Record(ctx, url, resolved.Intent, success, string(pctx.PageType))
}

func statusOf(executed bool, err error) string {
	switch {
	case err != nil:
		return "error"
	case executed:
		return "ok"
	default:
		return "resolved"
	}
}
