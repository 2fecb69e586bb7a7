// Package history implements the bounded interaction memory: an append-only
// log of executed commands with aggregate usage statistics.
//
// The log is a FIFO ring with a fixed capacity — once full, recording a new
// entry evicts the oldest. It is owned by the agent coordinator; every other
// component (context builder, suggestion engine) reads it through the
// read-only accessors. An optional [Sink] receives every recorded entry for
// durable storage; sink failures are logged and never propagated, the
// in-process ring stays the source of truth for statistics.
package history

import (
	"context"
	"log/slog"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/arvindram27/memex-agent/internal/command"
)

// DefaultCapacity is the default ring size.
const DefaultCapacity = 100

// UnknownHost is the bucket for entries whose URL cannot be parsed.
const UnknownHost = "unknown"

// Entry is one recorded interaction.
type Entry struct {
	// Timestamp is when the action was executed.
	Timestamp time.Time `json:"timestamp"`

	// URL is the page address the command ran against.
	URL string `json:"url"`

	// Intent is the resolved intent that was executed.
	Intent command.Intent `json:"intent"`

	// Success reports whether execution succeeded.
	Success bool `json:"success"`

	// Context is free-text context recorded alongside the action.
	Context string `json:"context,omitempty"`
}

// Sink receives recorded entries for durable storage. Implementations must be
// safe for concurrent use.
type Sink interface {
	Write(ctx context.Context, entry Entry) error
}

// Log is the bounded FIFO interaction log. All methods are safe for
// concurrent use.
type Log struct {
	mu       sync.Mutex
	entries  []Entry
	capacity int
	sink     Sink
	now      func() time.Time
}

// Option is a functional option for configuring a [Log].
type Option func(*Log)

// WithCapacity overrides the ring capacity. Values below 1 are ignored.
func WithCapacity(n int) Option {
	return func(l *Log) {
		if n >= 1 {
			l.capacity = n
		}
	}
}

// WithSink attaches a durable sink that receives every recorded entry.
func WithSink(s Sink) Option {
	return func(l *Log) { l.sink = s }
}

// WithClock overrides the timestamp source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(l *Log) {
		if now != nil {
			l.now = now
		}
	}
}

// New creates an empty Log with [DefaultCapacity] unless overridden.
func New(opts ...Option) *Log {
	l := &Log{
		capacity: DefaultCapacity,
		now:      time.Now,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Record appends one interaction, evicting the oldest entry when the ring is
// full. The attached sink, if any, is written best-effort.
func (l *Log) Record(ctx context.Context, url string, intent command.Intent, success bool, freeText string) {
	entry := Entry{
		Timestamp: l.now(),
		URL:       url,
		Intent:    intent,
		Success:   success,
		Context:   freeText,
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	if len(l.entries) > l.capacity {
		l.entries = l.entries[len(l.entries)-l.capacity:]
	}
	sink := l.sink
	l.mu.Unlock()

	if sink != nil {
		if err := sink.Write(ctx, entry); err != nil {
			slog.Warn("history: sink write failed", "url", url, "intent", intent, "err", err)
		}
	}
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Recent returns up to n entries, most recent first.
func (l *Log) Recent(n int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n <= 0 || len(l.entries) == 0 {
		return nil
	}
	if n > len(l.entries) {
		n = len(l.entries)
	}
	out := make([]Entry, n)
	for i := 0; i < n; i++ {
		out[i] = l.entries[len(l.entries)-1-i]
	}
	return out
}

// IntentCount pairs an intent with its recorded frequency.
type IntentCount struct {
	Intent command.Intent `json:"intent"`
	Count  int            `json:"count"`
}

// HostCount pairs a URL host with its visit frequency.
type HostCount struct {
	Host  string `json:"host"`
	Count int    `json:"count"`
}

// Statistics aggregates the retained log for the usage-statistics query.
type Statistics struct {
	// TopIntents lists the up-to-5 most frequent intents, descending.
	TopIntents []IntentCount `json:"top_intents"`

	// SuccessRates maps each recorded intent to successes/total in [0, 1].
	SuccessRates map[command.Intent]float64 `json:"success_rates"`

	// TopHosts lists the up-to-5 most visited URL hosts, descending.
	// Malformed URLs are bucketed under [UnknownHost].
	TopHosts []HostCount `json:"top_hosts"`
}

// Stats computes aggregate usage statistics over the retained entries.
func (l *Log) Stats() Statistics {
	l.mu.Lock()
	entries := make([]Entry, len(l.entries))
	copy(entries, l.entries)
	l.mu.Unlock()

	intentTotals := make(map[command.Intent]int)
	intentSuccess := make(map[command.Intent]int)
	hostTotals := make(map[string]int)

	for _, e := range entries {
		intentTotals[e.Intent]++
		if e.Success {
			intentSuccess[e.Intent]++
		}
		hostTotals[hostOf(e.URL)]++
	}

	stats := Statistics{
		SuccessRates: make(map[command.Intent]float64, len(intentTotals)),
	}
	for intent, total := range intentTotals {
		stats.TopIntents = append(stats.TopIntents, IntentCount{Intent: intent, Count: total})
		stats.SuccessRates[intent] = float64(intentSuccess[intent]) / float64(total)
	}
	sort.Slice(stats.TopIntents, func(i, j int) bool {
		a, b := stats.TopIntents[i], stats.TopIntents[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Intent < b.Intent
	})
	if len(stats.TopIntents) > 5 {
		stats.TopIntents = stats.TopIntents[:5]
	}

	for host, total := range hostTotals {
		stats.TopHosts = append(stats.TopHosts, HostCount{Host: host, Count: total})
	}
	sort.Slice(stats.TopHosts, func(i, j int) bool {
		a, b := stats.TopHosts[i], stats.TopHosts[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Host < b.Host
	})
	if len(stats.TopHosts) > 5 {
		stats.TopHosts = stats.TopHosts[:5]
	}

	return stats
}

// hostOf extracts the host portion of rawURL, bucketing anything unparseable
// (or hostless) under [UnknownHost].
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return UnknownHost
	}
	return u.Host
}
