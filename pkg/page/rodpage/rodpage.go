// Package rodpage implements the page.Describer and page.Automator contracts
// on top of a Chromium browser driven through the DevTools protocol via
// go-rod.
//
// A [Session] owns one browser tab. Snapshots are taken by a single
// JavaScript evaluation that walks the DOM for visible interactive elements,
// so one round-trip yields the whole description.
package rodpage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/arvindram27/memex-agent/pkg/page"
)

// Options configures a browser session.
type Options struct {
	// RemoteURL is a DevTools websocket URL of an already-running browser.
	// Empty launches a managed instance.
	RemoteURL string

	// Headless runs the managed browser without a window. Ignored when
	// attaching to a remote browser.
	Headless bool

	// NavigationTimeout bounds page loads. Zero means 30s.
	NavigationTimeout time.Duration

	// ViewportWidth and ViewportHeight size the tab. Zero means 1280x800.
	ViewportWidth  int
	ViewportHeight int

	// StartURL is the first page opened. Empty opens about:blank.
	StartURL string
}

// Session is a single controlled browser tab.
type Session struct {
	browser  *rod.Browser
	page     *rod.Page
	launched *launcher.Launcher // nil when attached to a remote browser
	navTimeout time.Duration
}

var (
	_ page.Describer = (*Session)(nil)
	_ page.Automator = (*Session)(nil)
)

// New connects to or launches a browser and opens one tab.
func New(ctx context.Context, opts Options) (*Session, error) {
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = 30 * time.Second
	}
	if opts.ViewportWidth <= 0 {
		opts.ViewportWidth = 1280
	}
	if opts.ViewportHeight <= 0 {
		opts.ViewportHeight = 800
	}

	controlURL := opts.RemoteURL
	var l *launcher.Launcher
	if controlURL == "" {
		bin, has := launcher.LookPath()
		if !has {
			return nil, fmt.Errorf("rodpage: no chromium binary found in PATH")
		}
		l = launcher.New().Bin(bin).Headless(opts.Headless)
		url, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("rodpage: launch browser: %w", err)
		}
		controlURL = url
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("rodpage: connect to browser: %w", err)
	}

	startURL := opts.StartURL
	if startURL == "" {
		startURL = "about:blank"
	}
	p, err := browser.Page(proto.TargetCreateTarget{URL: startURL})
	if err != nil {
		_ = browser.Close()
		return nil, fmt.Errorf("rodpage: open tab: %w", err)
	}
	if err := p.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  opts.ViewportWidth,
		Height: opts.ViewportHeight,
	}); err != nil {
		_ = browser.Close()
		return nil, fmt.Errorf("rodpage: set viewport: %w", err)
	}

	return &Session{
		browser:    browser,
		page:       p,
		launched:   l,
		navTimeout: opts.NavigationTimeout,
	}, nil
}

// Close closes the tab and, for managed browsers, the browser process.
func (s *Session) Close() error {
	var errs []error
	if s.page != nil {
		if err := s.page.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.launched != nil {
		s.launched.Kill()
	}
	if len(errs) > 0 {
		return fmt.Errorf("rodpage: close: %v", errs)
	}
	return nil
}

// Ping reports whether the browser connection is alive. Used by readiness
// checks.
func (s *Session) Ping(ctx context.Context) error {
	_, err := s.page.Context(ctx).Eval(`() => document.readyState`)
	if err != nil {
		return fmt.Errorf("rodpage: ping: %w", err)
	}
	return nil
}

// snapshot mirrors the object built by snapshotJS.
type snapshot struct {
	URL         string        `json:"url"`
	Title       string        `json:"title"`
	VisibleText string        `json:"visibleText"`
	Headings    []string      `json:"headings"`
	FormCount   int           `json:"formCount"`
	ImageCount  int           `json:"imageCount"`
	HasNav      bool          `json:"hasNav"`
	Clickable   []snapElement `json:"clickable"`
	FormFields  []snapElement `json:"formFields"`
}

type snapElement struct {
	Kind     string            `json:"kind"`
	Text     string            `json:"text"`
	Selector string            `json:"selector"`
	Attrs    map[string]string `json:"attrs"`
	X        float64           `json:"x"`
	Y        float64           `json:"y"`
	W        float64           `json:"w"`
	H        float64           `json:"h"`
}

// Describe captures the current page state in one DOM walk.
func (s *Session) Describe(ctx context.Context) (*page.Description, error) {
	res, err := s.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:      snapshotJS,
		ByValue: true,
	})
	if err != nil {
		return nil, fmt.Errorf("rodpage: describe: %w", err)
	}
	raw, err := res.Value.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("rodpage: describe: decode result: %w", err)
	}
	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("rodpage: describe: parse snapshot: %w", err)
	}

	desc := page.Empty(snap.URL, snap.Title)
	desc.VisibleText = page.TruncateText(snap.VisibleText, page.MaxVisibleTextLen)
	desc.Structure = page.StructuralFacts{
		Headings:      snap.Headings,
		FormCount:     snap.FormCount,
		ImageCount:    snap.ImageCount,
		HasNavigation: snap.HasNav,
	}
	desc.Clickable = convertElements(snap.Clickable)
	desc.FormFields = convertElements(snap.FormFields)
	return desc, nil
}

func convertElements(in []snapElement) []page.Element {
	if len(in) == 0 {
		return nil
	}
	out := make([]page.Element, 0, len(in))
	for _, e := range in {
		out = append(out, page.Element{
			Kind:     elementKind(e.Kind),
			Text:     page.TruncateText(e.Text, page.MaxElementTextLen),
			Selector: e.Selector,
			Attributes: e.Attrs,
			Bounds: &page.Rect{
				Left:   e.X,
				Top:    e.Y,
				Right:  e.X + e.W,
				Bottom: e.Y + e.H,
			},
		})
	}
	return out
}

func elementKind(kind string) page.ElementKind {
	switch kind {
	case "button":
		return page.KindButton
	case "link":
		return page.KindLink
	case "input":
		return page.KindInput
	case "image":
		return page.KindImage
	case "heading":
		return page.KindHeading
	case "text":
		return page.KindText
	default:
		return page.KindUnknown
	}
}
