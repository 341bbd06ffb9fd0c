package store

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Scrape struct {
		BaseURL         string `yaml:"base_url"`
		MaxPages        int    `yaml:"max_pages"`
		DelayMinSeconds int    `yaml:"delay_min_seconds"`
		DelayMaxSeconds int    `yaml:"delay_max_seconds"`
		TimeoutSeconds  int    `yaml:"timeout_seconds"`
		UserAgent       string `yaml:"user_agent"`
	} `yaml:"scrape"`
	Output struct {
		DataDir       string `yaml:"data_dir"`
		AggregateFile string `yaml:"aggregate_file"`
		RawFile       string `yaml:"raw_file"`
		AppliedFile   string `yaml:"applied_file"`
		ReportDir     string `yaml:"report_dir"`
	} `yaml:"output"`
	Save struct {
		Aggregate   bool `yaml:"aggregate"`
		Raw         bool `yaml:"raw"`
		SkipApplied bool `yaml:"skip_applied"`
		DailyReport bool `yaml:"daily_report"`
	} `yaml:"save"`
}

func (c *Config) Validate() error {
	if c.Scrape.BaseURL == "" {
		return fmt.Errorf("scrape.base_url cannot be empty")
	}
	if c.Scrape.MaxPages < 0 {
		return fmt.Errorf("scrape.max_pages must be >= 0 (0 scrapes all pages), got %d", c.Scrape.MaxPages)
	}
	if c.Scrape.DelayMinSeconds < 0 || c.Scrape.DelayMaxSeconds < c.Scrape.DelayMinSeconds {
		return fmt.Errorf("scrape delay range invalid: min=%d max=%d", c.Scrape.DelayMinSeconds, c.Scrape.DelayMaxSeconds)
	}
	if !c.Save.Aggregate && !c.Save.Raw {
		return fmt.Errorf("save.aggregate and save.raw are both disabled - nothing to persist")
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if c.Scrape.BaseURL == "" {
		c.Scrape.BaseURL = "https://merolagani.com/Floorsheet.aspx"
	}
	if c.Scrape.DelayMinSeconds == 0 && c.Scrape.DelayMaxSeconds == 0 {
		c.Scrape.DelayMinSeconds = 1
		c.Scrape.DelayMaxSeconds = 3
	}
	if c.Scrape.TimeoutSeconds == 0 {
		c.Scrape.TimeoutSeconds = 30
	}
	if c.Scrape.UserAgent == "" {
		c.Scrape.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	if c.Output.DataDir == "" {
		c.Output.DataDir = "public/floorsheet_data"
	}
	if c.Output.AggregateFile == "" {
		c.Output.AggregateFile = "broker_aggregates.parquet"
	}
	if c.Output.RawFile == "" {
		c.Output.RawFile = "floorsheet.parquet"
	}
	if c.Output.AppliedFile == "" {
		c.Output.AppliedFile = "applied_dates.json"
	}
	if c.Output.ReportDir == "" {
		c.Output.ReportDir = "reports"
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}

// AggregatePath is the on-disk location of the aggregate store.
func (c *Config) AggregatePath() string {
	return filepath.Join(c.Output.DataDir, c.Output.AggregateFile)
}

// RawPath is the on-disk location of the raw-transaction store.
func (c *Config) RawPath() string {
	return filepath.Join(c.Output.DataDir, c.Output.RawFile)
}

// AppliedPath is the on-disk location of the applied-dates set.
func (c *Config) AppliedPath() string {
	return filepath.Join(c.Output.DataDir, c.Output.AppliedFile)
}
