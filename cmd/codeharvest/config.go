package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/codeharvest/fs"
	"github.com/fwojciec/codeharvest/goquery"
	harvesthttp "github.com/fwojciec/codeharvest/http"
	"gopkg.in/yaml.v3"
)

// DefaultRetries is the number of retries for transient fetch failures.
const DefaultRetries = 2

// MaxRetries bounds the configured retry count.
const MaxRetries = 10

// DefaultAllowedDomain limits the default crawl to the Autodesk help site.
const DefaultAllowedDomain = "help.autodesk.com"

// FileConfig is the schema of the optional configuration file.
// Fields left empty fall back to flags or built-in defaults.
type FileConfig struct {
	BaseURL       string        `yaml:"baseURL" json:"baseURL"`
	IndexURL      string        `yaml:"indexURL" json:"indexURL"`
	AllowedDomain *string       `yaml:"allowedDomain" json:"allowedDomain"`
	Targets       string        `yaml:"targets" json:"targets"`
	Output        string        `yaml:"output" json:"output"`
	Timeout       Duration      `yaml:"timeout" json:"timeout"`
	Retries       *int          `yaml:"retries" json:"retries"`
	UserAgent     string        `yaml:"userAgent" json:"userAgent"`
	Browser       *bool         `yaml:"browser" json:"browser"`
	Verbose       *bool         `yaml:"verbose" json:"verbose"`

	Selectors struct {
		Index     string `yaml:"index" json:"index"`
		Container string `yaml:"container" json:"container"`
		Line      string `yaml:"line" json:"line"`
	} `yaml:"selectors" json:"selectors"`
}

// Duration is a time.Duration written as a string such as "30s".
// Plain integers are read as nanoseconds.
type Duration time.Duration

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch v := v.(type) {
	case nil:
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
	case float64:
		*d = Duration(time.Duration(v))
	default:
		return fmt.Errorf("invalid duration %s", b)
	}
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var v time.Duration
	if err := node.Decode(&v); err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch filepath.Ext(path) {
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	}
	return fc, nil
}

// Config holds the settings a run is wired from.
type Config struct {
	BaseURL       string
	IndexURL      string
	AllowedDomain string
	Targets       string
	Output        string
	Timeout       time.Duration
	Retries       int
	UserAgent     string
	Browser       bool
	Verbose       bool

	IndexSelector     string
	ContainerSelector string
	LineSelector      string
}

// ResolveConfig merges flags over the file config over built-in defaults.
func ResolveConfig(g *Globals, fc FileConfig) *Config {
	cfg := &Config{
		BaseURL:           firstNonEmpty(g.BaseURL, fc.BaseURL, goquery.DefaultBaseURL),
		Targets:           firstNonEmpty(g.Targets, fc.Targets, fs.DefaultTargetsFile),
		Output:            firstNonEmpty(g.Output, fc.Output, "."),
		UserAgent:         firstNonEmpty(g.UserAgent, fc.UserAgent, harvesthttp.DefaultUserAgent),
		Browser:           firstBool(g.Browser, fc.Browser),
		Verbose:           firstBool(g.Verbose, fc.Verbose),
		IndexSelector:     firstNonEmpty(fc.Selectors.Index, goquery.DefaultIndexSelector),
		ContainerSelector: firstNonEmpty(fc.Selectors.Container, goquery.DefaultContainerSelector),
		LineSelector:      firstNonEmpty(fc.Selectors.Line, goquery.DefaultLineSelector),
	}

	// The index page lives under the base URL unless given explicitly.
	cfg.IndexURL = firstNonEmpty(g.IndexURL, fc.IndexURL, cfg.BaseURL+"examples.html")

	switch {
	case g.AnyDomain:
		cfg.AllowedDomain = ""
	case g.AllowedDomain != "":
		cfg.AllowedDomain = g.AllowedDomain
	case fc.AllowedDomain != nil:
		cfg.AllowedDomain = *fc.AllowedDomain
	default:
		cfg.AllowedDomain = DefaultAllowedDomain
	}

	switch {
	case g.Timeout > 0:
		cfg.Timeout = g.Timeout
	case fc.Timeout > 0:
		cfg.Timeout = time.Duration(fc.Timeout)
	default:
		cfg.Timeout = harvesthttp.DefaultFetchTimeout
	}

	switch {
	case g.Retries >= 0:
		cfg.Retries = g.Retries
	case fc.Retries != nil:
		cfg.Retries = *fc.Retries
	default:
		cfg.Retries = DefaultRetries
	}
	cfg.Retries = min(cfg.Retries, MaxRetries)

	return cfg
}

func firstBool(values ...*bool) bool {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
