// Package config reads the gutterdemo settings file.
package config

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jesedit/gutter/plumbing"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid configuration")

// Config holds the demo settings. Keys absent from a file keep their
// defaults.
type Config struct {
	Font       string `yaml:"font"`
	GutterFont string `yaml:"gutterfont"`
	Dark       bool   `yaml:"dark"`
	Winsize    string `yaml:"winsize"`
	Margin     int    `yaml:"margin"`
	Service    string `yaml:"service"`
	PlumbPort  string `yaml:"plumbport"`
}

func Default() *Config {
	return &Config{
		Font:       "/lib/font/bit/lucsans/euro.8.font",
		GutterFont: "/lib/font/bit/lucsans/unicode.7.font",
		Winsize:    "1024x768",
		Margin:     4,
		Service:    "gutter",
		PlumbPort:  plumbing.DefaultPort,
	}
}

// DefaultPath is $HOME/lib/gutterdemo.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, "lib", "gutterdemo.yaml")
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

func (c *Config) Validate() error {
	if _, err := ParseWinsize(c.Winsize); err != nil {
		return err
	}
	if c.Margin < 0 {
		return fmt.Errorf("%w: negative margin %d", ErrInvalid, c.Margin)
	}
	if c.Font == "" {
		return fmt.Errorf("%w: no font", ErrInvalid)
	}
	if strings.ContainsAny(c.Service, "/ ") {
		return fmt.Errorf("%w: service name %q", ErrInvalid, c.Service)
	}
	return nil
}

// ParseWinsize parses a WxH window size such as 1024x768.
func ParseWinsize(s string) (image.Point, error) {
	var p image.Point
	if _, err := fmt.Sscanf(s, "%dx%d", &p.X, &p.Y); err != nil {
		return image.Point{}, fmt.Errorf("%w: winsize %q", ErrInvalid, s)
	}
	if p.X <= 0 || p.Y <= 0 {
		return image.Point{}, fmt.Errorf("%w: winsize %q", ErrInvalid, s)
	}
	return p, nil
}
