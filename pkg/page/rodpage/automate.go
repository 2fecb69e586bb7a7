package rodpage

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/arvindram27/memex-agent/pkg/page"
)

// Execute runs a single action against the live page. The selector on the
// action is advisory; fill actions without one fall back to the first visible
// text input so "type hello" works on pages the snapshot missed.
func (s *Session) Execute(ctx context.Context, action page.Action) (*page.Result, error) {
	p := s.page.Context(ctx)

	switch action.Kind {
	case page.ActionClick:
		el, err := s.locate(p, action)
		if err != nil {
			return failure(fmt.Sprintf("could not find %q", targetName(action))), nil
		}
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			return nil, fmt.Errorf("rodpage: click %q: %w", action.Selector, err)
		}
		return success(fmt.Sprintf("clicked %s", targetName(action))), nil

	case page.ActionFill:
		el, err := s.locateInput(p, action)
		if err != nil {
			return failure("no input field found to fill"), nil
		}
		if err := el.SelectAllText(); err != nil {
			return nil, fmt.Errorf("rodpage: select text: %w", err)
		}
		if err := el.Input(action.Value); err != nil {
			return nil, fmt.Errorf("rodpage: input %q: %w", action.Selector, err)
		}
		return success(fmt.Sprintf("filled %s", targetName(action))), nil

	case page.ActionClear:
		el, err := s.locateInput(p, action)
		if err != nil {
			return failure("no input field found to clear"), nil
		}
		if _, err := el.Eval(`() => { this.value = ''; this.dispatchEvent(new Event('input', {bubbles: true})); }`); err != nil {
			return nil, fmt.Errorf("rodpage: clear %q: %w", action.Selector, err)
		}
		return success(fmt.Sprintf("cleared %s", targetName(action))), nil

	case page.ActionSubmit:
		el, err := s.locateInput(p, action)
		if err != nil {
			return failure("no form found to submit"), nil
		}
		if _, err := el.Eval(`() => { if (this.form) { this.form.requestSubmit(); } else { this.closest('form')?.requestSubmit(); } }`); err != nil {
			return nil, fmt.Errorf("rodpage: submit: %w", err)
		}
		return success("submitted form"), nil

	case page.ActionScroll:
		if err := p.Mouse.Scroll(float64(action.DeltaX), float64(action.DeltaY), 1); err != nil {
			return nil, fmt.Errorf("rodpage: scroll: %w", err)
		}
		return success("scrolled"), nil

	case page.ActionNavigate:
		np := p.Timeout(s.navTimeout)
		if err := np.Navigate(action.URL); err != nil {
			return nil, fmt.Errorf("rodpage: navigate %q: %w", action.URL, err)
		}
		if err := np.WaitLoad(); err != nil {
			return nil, fmt.Errorf("rodpage: wait load %q: %w", action.URL, err)
		}
		return success(fmt.Sprintf("navigated to %s", action.URL)), nil

	case page.ActionBack:
		if err := p.NavigateBack(); err != nil {
			return nil, fmt.Errorf("rodpage: back: %w", err)
		}
		return success("went back"), nil

	case page.ActionForward:
		if err := p.NavigateForward(); err != nil {
			return nil, fmt.Errorf("rodpage: forward: %w", err)
		}
		return success("went forward"), nil

	case page.ActionReload:
		if err := p.Reload(); err != nil {
			return nil, fmt.Errorf("rodpage: reload: %w", err)
		}
		if err := p.Timeout(s.navTimeout).WaitLoad(); err != nil {
			return nil, fmt.Errorf("rodpage: wait load after reload: %w", err)
		}
		return success("reloaded page"), nil

	case page.ActionExtract:
		sel := action.Selector
		if sel == "" {
			sel = "body"
		}
		el, err := p.Element(sel)
		if err != nil {
			return failure(fmt.Sprintf("could not find %q to read", sel)), nil
		}
		text, err := el.Text()
		if err != nil {
			return nil, fmt.Errorf("rodpage: extract text: %w", err)
		}
		return &page.Result{
			Success: true,
			Message: "extracted page text",
			Data:    page.TruncateText(text, page.MaxVisibleTextLen),
		}, nil

	default:
		return nil, fmt.Errorf("rodpage: unsupported action %q", action.Kind)
	}
}

// locate resolves the action's target element, trying the advisory selector
// first and falling back to a text search over clickable elements.
func (s *Session) locate(p *rod.Page, action page.Action) (*rod.Element, error) {
	if action.Selector != "" {
		if el, err := p.Element(action.Selector); err == nil {
			return el, nil
		}
	}
	if action.Text != "" {
		els, err := p.Elements(`a, button, [role="button"], input[type="submit"]`)
		if err == nil {
			want := strings.ToLower(strings.TrimSpace(action.Text))
			for _, el := range els {
				text, err := el.Text()
				if err != nil {
					continue
				}
				if strings.Contains(strings.ToLower(text), want) {
					return el, nil
				}
			}
		}
	}
	return nil, fmt.Errorf("rodpage: element not found")
}

// locateInput resolves a form field, defaulting to the first visible text or
// search input when the action carries no selector.
func (s *Session) locateInput(p *rod.Page, action page.Action) (*rod.Element, error) {
	if action.Selector != "" {
		if el, err := p.Element(action.Selector); err == nil {
			return el, nil
		}
	}
	return p.Element(`input[type="text"], input[type="search"], input[type="email"], input:not([type]), textarea`)
}

func targetName(action page.Action) string {
	if action.Text != "" {
		return action.Text
	}
	if action.Selector != "" {
		return action.Selector
	}
	return "element"
}

func success(msg string) *page.Result {
	return &page.Result{Success: true, Message: msg}
}

func failure(msg string) *page.Result {
	return &page.Result{Success: false, Message: msg}
}
