package types

import "testing"

func TestElementMap_CloneIndependence(t *testing.T) {
	t.Parallel()

	src := ElementMap{
		"0": {
			TagName:        "input",
			XPath:          "//input[1]",
			Attributes:     map[string]string{"type": "text"},
			IsVisible:      true,
			IsInteractive:  true,
			IsInViewport:   true,
			HighlightIndex: 0,
		},
	}

	dup := src.Clone()
	dup["0"].Attributes["type"] = "password"
	dup["1"] = Element{TagName: "button"}

	if src["0"].Attributes["type"] != "text" {
		t.Fatalf("clone must not share attribute maps")
	}
	if len(src) != 1 {
		t.Fatalf("clone must not share the top-level map")
	}
}
