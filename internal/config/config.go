// Package config handles gallery configuration and the .lazyview directory.
// Every directory browsed with lazyview gets a .lazyview/ folder holding its
// config file and logs.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/lazyview"
)

// AppDir is the name of the directory created in each browsed project.
const AppDir = ".lazyview"

const (
	defaultImagesDir = "photos"
	defaultWidgetDir = "widgets"
	defaultImageRows = 8
)

const defaultProjectConfigYAML = `# lazyview gallery configuration
version: 1

gallery:
  # Directories are relative to the project directory.
  images: photos
  widgets: widgets
  # Rows each image occupies in the gallery.
  image_rows: 8

tracking:
  # Fraction of an item that must be on screen before it counts as
  # visible. Zero falls back to the built-in default.
  threshold: 0.1
  margin: "0px"
  trigger_once: true
  # Load images shortly before they scroll into view.
  prefetch: true
  prefetch_margin: "200px"
`

// GalleryConfig locates the content the gallery shows.
type GalleryConfig struct {
	Images    string `yaml:"images"`
	Widgets   string `yaml:"widgets"`
	ImageRows int    `yaml:"image_rows,omitempty"`
}

// TrackingConfig models the tracking section of config.yaml. Margins use
// the CSS shorthand lazyview.ParseMargin accepts.
type TrackingConfig struct {
	// Threshold is the visibility ratio. Zero means the built-in default.
	Threshold      float64 `yaml:"threshold,omitempty"`
	Margin         string  `yaml:"margin,omitempty"`
	TriggerOnce    *bool   `yaml:"trigger_once,omitempty"`
	Prefetch       bool    `yaml:"prefetch,omitempty"`
	PrefetchMargin string  `yaml:"prefetch_margin,omitempty"`
}

// ProjectConfig models .lazyview/config.yaml.
type ProjectConfig struct {
	Version  int            `yaml:"version"`
	Gallery  GalleryConfig  `yaml:"gallery"`
	Tracking TrackingConfig `yaml:"tracking"`
}

// Config holds the runtime configuration for one browsed project.
type Config struct {
	// ProjectDir is the directory the user pointed lazyview at.
	ProjectDir string

	// StateDir is ProjectDir/.lazyview.
	StateDir string

	Project ProjectConfig
}

// Init creates the .lazyview directory structure and seeds a commented
// config.yaml on first run.
//
// Structure created:
//
//	.lazyview/
//	├── config.yaml
//	└── logs/
func Init(projectDir string) error {
	stateDir := filepath.Join(projectDir, AppDir)
	if err := os.MkdirAll(filepath.Join(stateDir, "logs"), 0o755); err != nil {
		return err
	}
	return ensureProjectConfig(filepath.Join(stateDir, "config.yaml"))
}

// New loads the configuration for projectDir, applying defaults when the
// config file is missing.
func New(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir: projectDir,
		StateDir:   filepath.Join(projectDir, AppDir),
		Project:    defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ConfigPath returns the on-disk location of the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.StateDir, "config.yaml")
}

// LogsDir returns the path to the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.StateDir, "logs")
}

// ImagesDir returns the resolved image directory.
func (c *Config) ImagesDir() string {
	return resolvePath(c.ProjectDir, c.Project.Gallery.Images)
}

// WidgetsDir returns the resolved view module directory.
func (c *Config) WidgetsDir() string {
	return resolvePath(c.ProjectDir, c.Project.Gallery.Widgets)
}

// ImageRows returns the rows each gallery image occupies.
func (c *Config) ImageRows() int {
	return c.Project.Gallery.ImageRows
}

// TrackerOptions translates the tracking section into tracker options. The
// config is already validated, so parse failures here only occur for a
// Config mutated after load.
func (c *Config) TrackerOptions() ([]lazyview.TrackerOption, error) {
	tc := c.Project.Tracking
	var opts []lazyview.TrackerOption
	if tc.Threshold > 0 {
		opts = append(opts, lazyview.WithThreshold(tc.Threshold))
	}
	if strings.TrimSpace(tc.Margin) != "" {
		m, err := lazyview.ParseMargin(tc.Margin)
		if err != nil {
			return nil, fmt.Errorf("config: tracking.margin: %w", err)
		}
		opts = append(opts, lazyview.WithMargin(m))
	}
	if tc.TriggerOnce != nil {
		opts = append(opts, lazyview.WithTriggerOnce(*tc.TriggerOnce))
	}
	if tc.Prefetch {
		m := lazyview.DefaultPrefetchMargin
		if strings.TrimSpace(tc.PrefetchMargin) != "" {
			parsed, err := lazyview.ParseMargin(tc.PrefetchMargin)
			if err != nil {
				return nil, fmt.Errorf("config: tracking.prefetch_margin: %w", err)
			}
			m = parsed
		}
		opts = append(opts, lazyview.WithPrefetch(m))
	}
	return opts, nil
}

func (c *Config) loadProjectConfig() error {
	path := c.ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		Gallery: GalleryConfig{
			Images:    defaultImagesDir,
			Widgets:   defaultWidgetDir,
			ImageRows: defaultImageRows,
		},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	pc.Gallery.Images = strings.TrimSpace(pc.Gallery.Images)
	if pc.Gallery.Images == "" {
		pc.Gallery.Images = defaultImagesDir
	}
	pc.Gallery.Widgets = strings.TrimSpace(pc.Gallery.Widgets)
	if pc.Gallery.Widgets == "" {
		pc.Gallery.Widgets = defaultWidgetDir
	}
	if pc.Gallery.ImageRows == 0 {
		pc.Gallery.ImageRows = defaultImageRows
	}
	pc.Tracking.Margin = strings.TrimSpace(pc.Tracking.Margin)
	pc.Tracking.PrefetchMargin = strings.TrimSpace(pc.Tracking.PrefetchMargin)
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if pc.Gallery.ImageRows < 1 {
		return fmt.Errorf("gallery.image_rows must be >= 1")
	}
	if pc.Tracking.Threshold < 0 || pc.Tracking.Threshold > 1 {
		return fmt.Errorf("tracking.threshold must be in [0, 1]")
	}
	if pc.Tracking.Margin != "" {
		if _, err := lazyview.ParseMargin(pc.Tracking.Margin); err != nil {
			return fmt.Errorf("tracking.margin: %w", err)
		}
	}
	if pc.Tracking.PrefetchMargin != "" {
		if _, err := lazyview.ParseMargin(pc.Tracking.PrefetchMargin); err != nil {
			return fmt.Errorf("tracking.prefetch_margin: %w", err)
		}
	}
	return nil
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644)
}
