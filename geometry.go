package lazyview

import (
	"fmt"
	"strconv"
	"strings"
)

// Box is a vertical extent in content coordinates: Top is the first row the
// box covers, Height the number of rows. Rows are half-open, so the box
// spans [Top, Top+Height).
type Box struct {
	Top    int
	Height int
}

// Bottom returns the first row below the box.
func (b Box) Bottom() int { return b.Top + b.Height }

// Empty reports whether the box covers no rows.
func (b Box) Empty() bool { return b.Height <= 0 }

// Inflate grows the box by a margin: the top edge moves up by m.Top, the
// bottom edge down by m.Bottom. Negative values shrink the box and may leave
// it empty.
func (b Box) Inflate(m Margin) Box {
	return Box{Top: b.Top - m.Top, Height: b.Height + m.Top + m.Bottom}
}

// Overlap returns the number of rows shared by a and b.
func Overlap(a, b Box) int {
	top := a.Top
	if b.Top > top {
		top = b.Top
	}
	bottom := a.Bottom()
	if b.Bottom() < bottom {
		bottom = b.Bottom()
	}
	if bottom <= top {
		return 0
	}
	return bottom - top
}

// Ratio returns the fraction of b that lies inside view, in [0, 1]. An empty
// box has ratio 0 regardless of position.
func Ratio(b, view Box) float64 {
	if b.Empty() || view.Empty() {
		return 0
	}
	return float64(Overlap(b, view)) / float64(b.Height)
}

// Margin inflates the viewport before intersection is measured. Values are
// cells; positive values grow the observed area, so elements report as
// intersecting before they scroll into the visible region. Left and Right
// are carried for hosts with horizontal scroll but ignored by row-oriented
// surfaces.
type Margin struct {
	Top    int
	Right  int
	Bottom int
	Left   int
}

// Cells builds a uniform margin of n cells on every side.
func Cells(n int) Margin {
	return Margin{Top: n, Right: n, Bottom: n, Left: n}
}

// ParseMargin reads a CSS-style margin shorthand: "40px", "40px 0px",
// "10px 0px 20px" or "1px 2px 3px 4px". Values are in cells and the px
// suffix is optional. Percentages are not supported.
func ParseMargin(s string) (Margin, error) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) == 0 {
		return Margin{}, fmt.Errorf("lazyview: empty margin")
	}
	if len(fields) > 4 {
		return Margin{}, fmt.Errorf("lazyview: margin %q has %d values, want at most 4", s, len(fields))
	}
	vals := make([]int, len(fields))
	for i, f := range fields {
		n, err := parseCells(f)
		if err != nil {
			return Margin{}, fmt.Errorf("lazyview: margin %q: %w", s, err)
		}
		vals[i] = n
	}
	switch len(vals) {
	case 1:
		return Margin{Top: vals[0], Right: vals[0], Bottom: vals[0], Left: vals[0]}, nil
	case 2:
		return Margin{Top: vals[0], Right: vals[1], Bottom: vals[0], Left: vals[1]}, nil
	case 3:
		return Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[1]}, nil
	default:
		return Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}, nil
	}
}

func parseCells(s string) (int, error) {
	if strings.HasSuffix(s, "%") {
		return 0, fmt.Errorf("percentage values are not supported")
	}
	s = strings.TrimSuffix(s, "px")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad length %q", s)
	}
	return n, nil
}

// String renders the margin as shorthand, collapsing equal sides. The output
// round-trips through ParseMargin and is valid as a DOM rootMargin.
func (m Margin) String() string {
	if m.Top == m.Bottom && m.Left == m.Right {
		if m.Top == m.Left {
			return fmt.Sprintf("%dpx", m.Top)
		}
		return fmt.Sprintf("%dpx %dpx", m.Top, m.Left)
	}
	return fmt.Sprintf("%dpx %dpx %dpx %dpx", m.Top, m.Right, m.Bottom, m.Left)
}
