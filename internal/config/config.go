package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"gopkg.in/yaml.v3"

	"vacstat/internal/currency"
)

var ErrInvalidRate = errors.New("invalid currency rate")

type Config struct {
	Input        string         `yaml:"input"`
	Profession   string         `yaml:"profession"`
	PartitionDir string         `yaml:"partition_dir"`
	Workers      int            `yaml:"workers"`
	SortInput    bool           `yaml:"sort_input"`
	OutputDir    string         `yaml:"output_dir"`
	LogLevel     string         `yaml:"log_level"`
	Rates        currency.Table `yaml:"rates"`
	Server       Server         `yaml:"server"`
}

type Server struct {
	Addr string `yaml:"addr"`
}

func Default() *Config {
	return &Config{
		Input:     "vacancies_by_year.csv",
		Workers:   runtime.NumCPU(),
		OutputDir: "out",
		LogLevel:  "info",
		Rates:     currency.Default(),
		Server:    Server{Addr: ":8080"},
	}
}

// Load reads a YAML file on top of the defaults. An empty path returns the
// defaults. Rates listed in the file replace individual default entries.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		var file Config
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg.merge(&file)
	}
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		cfg.LogLevel = lvl
	}
	return cfg, nil
}

func (c *Config) merge(o *Config) {
	if o.Input != "" {
		c.Input = o.Input
	}
	if o.Profession != "" {
		c.Profession = o.Profession
	}
	if o.PartitionDir != "" {
		c.PartitionDir = o.PartitionDir
	}
	if o.Workers > 0 {
		c.Workers = o.Workers
	}
	if o.SortInput {
		c.SortInput = true
	}
	if o.OutputDir != "" {
		c.OutputDir = o.OutputDir
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	for code, rate := range o.Rates {
		c.Rates[strings.ToUpper(code)] = rate
	}
	if o.Server.Addr != "" {
		c.Server.Addr = o.Server.Addr
	}
}

func (c *Config) Validate() error {
	if c.Input == "" {
		return errors.New("input file is required")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if err := c.Rates.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRate, err)
	}
	return nil
}

// ResolvePartitionDir picks a fresh temp directory when none is configured.
func (c *Config) ResolvePartitionDir() string {
	if c.PartitionDir == "" {
		c.PartitionDir = filepath.Join(os.TempDir(), "vacstat-"+uuid.New().String())
	}
	return c.PartitionDir
}

// Level maps the configured level name onto the gommon logger levels.
func (c *Config) Level() log.Lvl {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "quiet", "off":
		return log.OFF
	default:
		return log.INFO
	}
}
