package ansiart

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func lines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func TestRenderFitsBox(t *testing.T) {
	img := solid(100, 100, color.RGBA{R: 200, A: 255})
	out := Render(img, 10, 4)

	got := lines(out)
	if len(got) != 4 {
		t.Fatalf("expected 4 lines for an 8 pixel tall render, got %d", len(got))
	}
	for i, line := range got {
		if w := ansi.StringWidth(line); w != 8 {
			t.Fatalf("line %d is %d cells wide, want 8 for a square image in a 10x4 box", i, w)
		}
	}
	if Rows(img, 10, 4) != 4 {
		t.Fatalf("Rows = %d, want 4", Rows(img, 10, 4))
	}
}

func TestRenderDoesNotUpscale(t *testing.T) {
	img := solid(3, 2, color.RGBA{G: 200, A: 255})
	out := Render(img, 40, 10)

	got := lines(out)
	if len(got) != 1 {
		t.Fatalf("a 2 pixel tall image is one cell row, got %d", len(got))
	}
	if w := ansi.StringWidth(got[0]); w != 3 {
		t.Fatalf("small image must keep its size, got width %d", w)
	}
}

func TestRenderTransparency(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	// Bottom pixel stays transparent.
	out := Render(img, 4, 4)

	plain := ansi.Strip(out)
	if plain != upperHalf {
		t.Fatalf("opaque-over-transparent renders the upper half block, got %q", plain)
	}

	img2 := image.NewRGBA(image.Rect(0, 0, 1, 2))
	img2.Set(0, 1, color.RGBA{B: 255, A: 255})
	if got := ansi.Strip(Render(img2, 4, 4)); got != lowerHalf {
		t.Fatalf("transparent-over-opaque renders the lower half block, got %q", got)
	}

	empty := image.NewRGBA(image.Rect(0, 0, 1, 2))
	if got := ansi.Strip(Render(empty, 4, 4)); got != " " {
		t.Fatalf("fully transparent pair renders a blank, got %q", got)
	}
}

func TestRenderDegenerate(t *testing.T) {
	if Render(nil, 10, 4) != "" {
		t.Fatalf("nil image renders nothing")
	}
	img := solid(4, 4, color.RGBA{A: 255})
	if Render(img, 0, 4) != "" || Render(img, 10, 0) != "" {
		t.Fatalf("degenerate boxes render nothing")
	}
	if Rows(nil, 10, 4) != 0 {
		t.Fatalf("nil image occupies no rows")
	}
}

func TestRenderOddHeight(t *testing.T) {
	img := solid(2, 5, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	out := Render(img, 2, 10)

	got := lines(out)
	if len(got) != 3 {
		t.Fatalf("5 pixel rows need 3 cell lines, got %d", len(got))
	}
	if Rows(img, 2, 10) != 3 {
		t.Fatalf("Rows = %d, want 3", Rows(img, 2, 10))
	}
}
