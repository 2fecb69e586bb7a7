package rodpage

import (
	"testing"

	"github.com/arvindram27/memex-agent/pkg/page"
)

func TestConvertElements(t *testing.T) {
	t.Parallel()
	in := []snapElement{
		{Kind: "button", Text: "Add to cart", Selector: "#cart", Attrs: map[string]string{"id": "cart"}, X: 10, Y: 20, W: 100, H: 40},
		{Kind: "link", Text: "Home", Selector: "a.home"},
	}
	out := convertElements(in)
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}
	if out[0].Kind != page.KindButton {
		t.Errorf("out[0].Kind = %q, want %q", out[0].Kind, page.KindButton)
	}
	if out[0].Bounds == nil || out[0].Bounds.Right != 110 || out[0].Bounds.Bottom != 60 {
		t.Errorf("out[0].Bounds = %+v, want right 110 bottom 60", out[0].Bounds)
	}
	if out[1].Kind != page.KindLink {
		t.Errorf("out[1].Kind = %q, want %q", out[1].Kind, page.KindLink)
	}
}

func TestConvertElements_Empty(t *testing.T) {
	t.Parallel()
	if got := convertElements(nil); got != nil {
		t.Errorf("convertElements(nil) = %v, want nil", got)
	}
}

func TestElementKind_Unknown(t *testing.T) {
	t.Parallel()
	if got := elementKind("widget"); got != page.KindUnknown {
		t.Errorf("elementKind(widget) = %q, want %q", got, page.KindUnknown)
	}
}

func TestTargetName(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		action page.Action
		want   string
	}{
		{"text wins", page.Action{Text: "Login", Selector: "#login"}, "Login"},
		{"selector fallback", page.Action{Selector: "#login"}, "#login"},
		{"generic", page.Action{}, "element"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := targetName(tc.action); got != tc.want {
				t.Errorf("targetName() = %q, want %q", got, tc.want)
			}
		})
	}
}
