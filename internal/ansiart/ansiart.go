// Package ansiart rasterizes images into terminal cell art. Each cell
// stacks two pixels with the upper half block: the foreground color carries
// the top pixel, the background the bottom. Scaling is nearest neighbor,
// which is plenty at cell resolution.
package ansiart

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	upperHalf = "▀"
	lowerHalf = "▄"
)

// Render draws img into a box of at most width columns by rows lines,
// keeping aspect ratio. Images smaller than the box are not upscaled. It
// returns the empty string when the image or the box is degenerate.
func Render(img image.Image, width, rows int) string {
	if img == nil || width < 1 || rows < 1 {
		return ""
	}
	b := img.Bounds()
	iw, ih := b.Dx(), b.Dy()
	if iw < 1 || ih < 1 {
		return ""
	}

	outW, outH := fit(iw, ih, width, rows*2)
	var sb strings.Builder
	for y := 0; y < outH; y += 2 {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < outW; x++ {
			top, topOK := sample(img, x, y, outW, outH)
			bottom, bottomOK := sample(img, x, y+1, outW, outH)
			sb.WriteString(cell(top, topOK, bottom, bottomOK))
		}
	}
	return sb.String()
}

// Rows reports how many lines Render will produce for the same box.
func Rows(img image.Image, width, rows int) int {
	if img == nil || width < 1 || rows < 1 {
		return 0
	}
	b := img.Bounds()
	if b.Dx() < 1 || b.Dy() < 1 {
		return 0
	}
	_, outH := fit(b.Dx(), b.Dy(), width, rows*2)
	return (outH + 1) / 2
}

// fit scales iw x ih to the pixel box w x h, preserving aspect and never
// upscaling. Both results are at least 1.
func fit(iw, ih, w, h int) (int, int) {
	scale := float64(w) / float64(iw)
	if s := float64(h) / float64(ih); s < scale {
		scale = s
	}
	if scale > 1 {
		scale = 1
	}
	outW := int(float64(iw) * scale)
	outH := int(float64(ih) * scale)
	if outW < 1 {
		outW = 1
	}
	if outH < 1 {
		outH = 1
	}
	return outW, outH
}

// sample maps an output pixel back onto the source image. ok is false for
// rows below the image and for mostly transparent pixels.
func sample(img image.Image, x, y, outW, outH int) (lipgloss.Color, bool) {
	if y >= outH {
		return "", false
	}
	b := img.Bounds()
	sx := b.Min.X + x*b.Dx()/outW
	sy := b.Min.Y + y*b.Dy()/outH
	r, g, bl, a := img.At(sx, sy).RGBA()
	if a < 0x8000 {
		return "", false
	}
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, bl>>8)), true
}

// cell renders one column of a pixel pair.
func cell(top lipgloss.Color, topOK bool, bottom lipgloss.Color, bottomOK bool) string {
	switch {
	case topOK && bottomOK:
		return lipgloss.NewStyle().Foreground(top).Background(bottom).Render(upperHalf)
	case topOK:
		return lipgloss.NewStyle().Foreground(top).Render(upperHalf)
	case bottomOK:
		return lipgloss.NewStyle().Foreground(bottom).Render(lowerHalf)
	default:
		return " "
	}
}
