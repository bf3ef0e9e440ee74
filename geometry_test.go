package lazyview

import "testing"

func TestParseMargin(t *testing.T) {
	cases := []struct {
		in   string
		want Margin
	}{
		{"0px", Margin{}},
		{"40px", Margin{Top: 40, Right: 40, Bottom: 40, Left: 40}},
		{"200", Margin{Top: 200, Right: 200, Bottom: 200, Left: 200}},
		{"10px 0px", Margin{Top: 10, Bottom: 10}},
		{"10px 5px 20px", Margin{Top: 10, Right: 5, Bottom: 20, Left: 5}},
		{"1px 2px 3px 4px", Margin{Top: 1, Right: 2, Bottom: 3, Left: 4}},
		{"-5px", Margin{Top: -5, Right: -5, Bottom: -5, Left: -5}},
		{"  8px   8px  ", Margin{Top: 8, Right: 8, Bottom: 8, Left: 8}},
	}
	for _, tc := range cases {
		got, err := ParseMargin(tc.in)
		if err != nil {
			t.Fatalf("ParseMargin(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseMargin(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestParseMarginRejects(t *testing.T) {
	for _, in := range []string{"", "   ", "abc", "10%", "1px 2px 3px 4px 5px", "10pxpx"} {
		if _, err := ParseMargin(in); err == nil {
			t.Fatalf("ParseMargin(%q) accepted bad input", in)
		}
	}
}

func TestMarginStringRoundTrips(t *testing.T) {
	cases := []Margin{
		{},
		{Top: 40, Right: 40, Bottom: 40, Left: 40},
		{Top: 10, Bottom: 10},
		{Top: 1, Right: 2, Bottom: 3, Left: 4},
	}
	for _, m := range cases {
		back, err := ParseMargin(m.String())
		if err != nil {
			t.Fatalf("round trip %v: %v", m, err)
		}
		if back != m {
			t.Fatalf("round trip %v came back as %v", m, back)
		}
	}
}

func TestRatio(t *testing.T) {
	view := Box{Top: 100, Height: 40}
	cases := []struct {
		name string
		box  Box
		want float64
	}{
		{"fully above", Box{Top: 0, Height: 10}, 0},
		{"fully below", Box{Top: 200, Height: 10}, 0},
		{"fully inside", Box{Top: 110, Height: 10}, 1},
		{"half off the top", Box{Top: 95, Height: 10}, 0.5},
		{"half off the bottom", Box{Top: 135, Height: 10}, 0.5},
		{"touching the edge", Box{Top: 140, Height: 10}, 0},
		{"taller than the view", Box{Top: 80, Height: 80}, 0.5},
		{"zero height", Box{Top: 110, Height: 0}, 0},
	}
	for _, tc := range cases {
		if got := Ratio(tc.box, view); got != tc.want {
			t.Fatalf("%s: Ratio = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestInflate(t *testing.T) {
	view := Box{Top: 100, Height: 40}
	grown := view.Inflate(Margin{Top: 10, Bottom: 30})
	if grown.Top != 90 || grown.Height != 80 {
		t.Fatalf("Inflate = %+v", grown)
	}

	box := Box{Top: 90, Height: 10}
	if Ratio(box, view) != 0 {
		t.Fatalf("box should miss the bare view")
	}
	if got := Ratio(box, grown); got != 1 {
		t.Fatalf("box should land fully inside the inflated view, got %v", got)
	}
	if got := Ratio(Box{Top: 85, Height: 10}, grown); got != 0.5 {
		t.Fatalf("box straddling the inflated edge: Ratio = %v, want 0.5", got)
	}

	shrunk := view.Inflate(Margin{Top: -30, Bottom: -30})
	if !shrunk.Empty() {
		t.Fatalf("negative margins can empty the view, got %+v", shrunk)
	}
}

func TestOverlapSymmetry(t *testing.T) {
	a := Box{Top: 0, Height: 20}
	b := Box{Top: 10, Height: 20}
	if Overlap(a, b) != 10 || Overlap(b, a) != 10 {
		t.Fatalf("overlap = %d / %d, want 10 / 10", Overlap(a, b), Overlap(b, a))
	}
}
