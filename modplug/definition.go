// Package modplug loads view modules: small interpreted Go files that
// render widget content on demand. A module is declared by a YAML manifest
// next to its source, or by a bare .go file that is its own declaration.
// Resolution is deliberately separate from discovery, so a gallery can list
// every widget at startup and interpret each one only when it scrolls into
// view, through a lazyview.ViewLoader.
package modplug

import (
	"fmt"
	"strings"
)

// DefaultSymbol is the function a module must export when its manifest does
// not name one: func(width int) string.
const DefaultSymbol = "View"

// Definition describes one view module. The struct mirrors the on-disk
// manifest schema and stays narrow so a gallery can validate widget
// metadata before any source is interpreted.
type Definition struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name,omitempty"`
	Description string `yaml:"description,omitempty"`
	Version     string `yaml:"version,omitempty"`
	// Source is the module's Go file, relative to the manifest directory.
	Source string `yaml:"source"`
	// Symbol is the exported render function. Empty means DefaultSymbol.
	Symbol string `yaml:"symbol,omitempty"`
	// Height is a layout hint: the rows the widget occupies before it has
	// rendered. Zero lets the host pick.
	Height int `yaml:"height,omitempty"`
}

// Normalized returns a trimmed copy of the definition with the symbol
// defaulted.
func (def Definition) Normalized() Definition {
	clone := Definition{
		ID:          strings.TrimSpace(def.ID),
		Name:        strings.TrimSpace(def.Name),
		Description: strings.TrimSpace(def.Description),
		Version:     strings.TrimSpace(def.Version),
		Source:      strings.TrimSpace(def.Source),
		Symbol:      strings.TrimSpace(def.Symbol),
		Height:      def.Height,
	}
	if clone.Symbol == "" {
		clone.Symbol = DefaultSymbol
	}
	return clone
}

// Validate ensures the definition can be resolved later.
func (def Definition) Validate() error {
	normalized := def.Normalized()
	if normalized.ID == "" {
		return fmt.Errorf("modplug: id is required")
	}
	if normalized.Source == "" {
		return fmt.Errorf("modplug %s: source is required", normalized.ID)
	}
	if !strings.HasSuffix(normalized.Source, ".go") {
		return fmt.Errorf("modplug %s: source %s is not a Go file", normalized.ID, normalized.Source)
	}
	if strings.HasPrefix(normalized.Source, "/") || strings.Contains(normalized.Source, "..") {
		return fmt.Errorf("modplug %s: source %s must stay inside the module directory", normalized.ID, normalized.Source)
	}
	if normalized.Height < 0 {
		return fmt.Errorf("modplug %s: height must not be negative", normalized.ID)
	}
	return nil
}

// Title returns the display name, falling back to the id.
func (def Definition) Title() string {
	if name := strings.TrimSpace(def.Name); name != "" {
		return name
	}
	return strings.TrimSpace(def.ID)
}
