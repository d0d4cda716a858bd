// Package config loads run parameters from a YAML file.
//
// A Config is built once per run and handed to every step explicitly. It
// replaces the module-level parameter dictionaries the curation scripts used
// to read at import time.
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fak/pfam-map-loader/internal/domain"
)

// TimestampLayout matches the coverage log format
const TimestampLayout = "02 January 2006 15:04:05"

// Config holds every parameter of a run
type Config struct {
	// Driver is the database/sql driver: sqlite3, pgx or mysql.
	Driver string `yaml:"driver"`
	// DSN overrides the connection keys below when set.
	DSN string `yaml:"dsn"`

	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	User    string `yaml:"user"`
	Pword   string `yaml:"pword"`
	Release string `yaml:"release"`

	// Version names the curated mapping files, e.g. 1_3.
	Version string `yaml:"version"`
	// Threshold is the affinity cut-off in µM.
	Threshold float64 `yaml:"threshold"`

	Comment   string `yaml:"comment"`
	Submitter string `yaml:"submitter"`
	Timestamp string `yaml:"timestamp"`

	DataDir string `yaml:"data_dir"`
	LogMode string `yaml:"log_mode"`

	// ValidDomains and ManualMaps override the default file locations; either
	// may be an http(s) URL.
	ValidDomains string `yaml:"valid_domains"`
	ManualMaps   string `yaml:"manual_maps"`
	HeldDomains  string `yaml:"held_domains"`

	// ValidNameColumn and ValidIDColumn name the columns of the validated
	// domain list holding domain names and domain ids.
	ValidNameColumn string `yaml:"valid_name_column"`
	ValidIDColumn   string `yaml:"valid_id_column"`
}

// Load reads and validates a config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrConfiguration, path, err)
	}
	return Parse(data)
}

// Parse decodes YAML, fills defaults and validates
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: unmarshal config: %v", domain.ErrConfiguration, err)
	}
	c.applyDefaults(time.Now())
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := requirePresent(data, "threshold"); err != nil {
		return nil, err
	}
	return &c, nil
}

// requirePresent rejects keys that are absent or null; their zero value
// would otherwise pass as a real setting
func requirePresent(data []byte, keys ...string) error {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: unmarshal config: %v", domain.ErrConfiguration, err)
	}
	for _, k := range keys {
		if v, ok := raw[k]; !ok || v == nil {
			return fmt.Errorf("%w: missing required parameter %q", domain.ErrConfiguration, k)
		}
	}
	return nil
}

func (c *Config) applyDefaults(now time.Time) {
	if c.Driver == "" {
		c.Driver = "pgx"
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.ValidNameColumn == "" {
		c.ValidNameColumn = "domain_name"
	}
	if c.ValidIDColumn == "" {
		c.ValidIDColumn = "domain_id"
	}
	if c.Timestamp == "" {
		c.Timestamp = now.UTC().Format(TimestampLayout)
	}
}

// Validate reports the first missing required parameter
func (c *Config) Validate() error {
	switch c.Driver {
	case "sqlite3", "pgx", "mysql":
	default:
		return fmt.Errorf("%w: unsupported driver %q", domain.ErrConfiguration, c.Driver)
	}
	required := []struct {
		name  string
		value string
	}{
		{"release", c.Release},
		{"version", c.Version},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w: missing required parameter %q", domain.ErrConfiguration, r.name)
		}
	}
	if c.DSN == "" && c.Driver != "sqlite3" && c.Host == "" {
		return fmt.Errorf("%w: either dsn or host is required for driver %s", domain.ErrConfiguration, c.Driver)
	}
	if c.Threshold < 0 {
		return fmt.Errorf("%w: threshold must not be negative", domain.ErrConfiguration)
	}
	return nil
}

// DataSource returns the connection string for the configured driver
func (c *Config) DataSource() string {
	if c.DSN != "" {
		return c.DSN
	}
	switch c.Driver {
	case "pgx":
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(c.User, c.Pword),
			Host:   c.hostPort(),
			Path:   "/" + c.Release,
		}
		return u.String()
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s)/%s", c.User, c.Pword, c.hostPort(), c.Release)
	default:
		return filepath.Join(c.DataDir, c.Release+".db")
	}
}

func (c *Config) hostPort() string {
	if c.Port == 0 {
		return c.Host
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ThresholdNM converts the µM threshold into the nM units of the activity
// table
func (c *Config) ThresholdNM() float64 {
	return c.Threshold * 1000
}

// ThresholdLabel is the threshold as written in the coverage log
func (c *Config) ThresholdLabel() string {
	return strconv.FormatFloat(c.Threshold, 'f', -1, 64)
}

// Path joins a file name onto the data directory
func (c *Config) Path(name string) string {
	return filepath.Join(c.DataDir, name)
}

// ValidDomainsPath is the validated domain list for this version
func (c *Config) ValidDomainsPath() string {
	if c.ValidDomains != "" {
		return c.ValidDomains
	}
	return c.Path(fmt.Sprintf("valid_pfam_v_%s.tab", c.Version))
}

// ManualMapsPath is the curated mapping file for this version
func (c *Config) ManualMapsPath() string {
	if c.ManualMaps != "" {
		return c.ManualMaps
	}
	return c.Path(fmt.Sprintf("manual_pfam_maps_v_%s.tab", c.Version))
}

// HeldDomainsPath is the held domain list for this version
func (c *Config) HeldDomainsPath() string {
	if c.HeldDomains != "" {
		return c.HeldDomains
	}
	return c.Path(fmt.Sprintf("held_pfam_v_%s.tab", c.Version))
}

// AutomaticMapsPath is where the automatic mapping is written
func (c *Config) AutomaticMapsPath() string {
	return c.Path(fmt.Sprintf("automatic_pfam_maps_v_%s.tab", c.Version))
}

// MapsPath is where the merged mapping is written
func (c *Config) MapsPath() string {
	return c.Path(fmt.Sprintf("pfam_maps_v_%s.tab", c.Version))
}

// ReportPath names a per-release report, e.g. ReportPath("multi_dom_archs", ".md")
func (c *Config) ReportPath(stem, ext string) string {
	return c.Path(fmt.Sprintf("%s_%s%s", stem, c.Release, ext))
}

// LogPath is the append-only coverage log
func (c *Config) LogPath() string {
	return c.Path("log.tab")
}
