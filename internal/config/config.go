// Package config loads and persists rxslot settings.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/rxslot-cli/internal/pipeline"
	"github.com/KaramelBytes/rxslot-cli/internal/report"
	"github.com/KaramelBytes/rxslot-cli/internal/utils"
)

// Global configuration structure.
type Global struct {
	DataPath      string  `mapstructure:"data_path" yaml:"data_path"`
	Column        string  `mapstructure:"column" yaml:"column"`
	Delimiter     string  `mapstructure:"delimiter" yaml:"delimiter"`
	MinSupport    float64 `mapstructure:"min_support" yaml:"min_support"`
	MinConfidence float64 `mapstructure:"min_confidence" yaml:"min_confidence"`
	MaxLen        int     `mapstructure:"max_len" yaml:"max_len"`

	// Presentation
	PreviewRows int    `mapstructure:"preview_rows" yaml:"preview_rows"`
	TopRules    int    `mapstructure:"top_rules" yaml:"top_rules"`
	TopItems    int    `mapstructure:"top_items" yaml:"top_items"`
	Suggestions int    `mapstructure:"suggestions" yaml:"suggestions"`
	Locale      string `mapstructure:"locale" yaml:"locale"`

	// Web dashboard
	Bind string `mapstructure:"bind" yaml:"bind"`
	Port int    `mapstructure:"port" yaml:"port"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// Keys lists every settable key in display order.
var Keys = []string{
	"data_path", "column", "delimiter", "min_support", "min_confidence", "max_len",
	"preview_rows", "top_rules", "top_items", "suggestions", "locale",
	"bind", "port", "log_level", "log_format",
}

// EnvPrefix is prepended to environment overrides (RXSLOT_MIN_SUPPORT).
const EnvPrefix = "RXSLOT"

// Default returns the built-in settings.
func Default() *Global {
	def := pipeline.DefaultConfig()
	return &Global{
		DataPath:      pipeline.DefaultDataPath,
		Column:        pipeline.DefaultColumn,
		MinSupport:    def.MinSupport,
		MinConfidence: def.MinConfidence,
		PreviewRows:   def.PreviewRows,
		TopRules:      def.TopRules,
		TopItems:      def.TopItems,
		Suggestions:   def.Suggestions,
		Locale:        report.DefaultLocale,
		Bind:          "127.0.0.1",
		Port:          8501,
		LogLevel:      "info",
		LogFormat:     "console",
	}
}

// DefaultPath is ~/.rxslot/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".rxslot", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.rxslot/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. A missing file is not an error.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("data_path", def.DataPath)
	v.SetDefault("column", def.Column)
	v.SetDefault("delimiter", def.Delimiter)
	v.SetDefault("min_support", def.MinSupport)
	v.SetDefault("min_confidence", def.MinConfidence)
	v.SetDefault("max_len", def.MaxLen)
	v.SetDefault("preview_rows", def.PreviewRows)
	v.SetDefault("top_rules", def.TopRules)
	v.SetDefault("top_items", def.TopItems)
	v.SetDefault("suggestions", def.Suggestions)
	v.SetDefault("locale", def.Locale)
	v.SetDefault("bind", def.Bind)
	v.SetDefault("port", def.Port)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_format", def.LogFormat)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".rxslot"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Get returns the string form of key.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "data_path":
		return c.DataPath, nil
	case "column":
		return c.Column, nil
	case "delimiter":
		return c.Delimiter, nil
	case "min_support":
		return strconv.FormatFloat(c.MinSupport, 'f', -1, 64), nil
	case "min_confidence":
		return strconv.FormatFloat(c.MinConfidence, 'f', -1, 64), nil
	case "max_len":
		return strconv.Itoa(c.MaxLen), nil
	case "preview_rows":
		return strconv.Itoa(c.PreviewRows), nil
	case "top_rules":
		return strconv.Itoa(c.TopRules), nil
	case "top_items":
		return strconv.Itoa(c.TopItems), nil
	case "suggestions":
		return strconv.Itoa(c.Suggestions), nil
	case "locale":
		return c.Locale, nil
	case "bind":
		return c.Bind, nil
	case "port":
		return strconv.Itoa(c.Port), nil
	case "log_level":
		return c.LogLevel, nil
	case "log_format":
		return c.LogFormat, nil
	}
	return "", fmt.Errorf("unknown key: %s", key)
}

// Set validates value and assigns it to key.
func (c *Global) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "data_path":
		c.DataPath = value
	case "column":
		if value == "" {
			return fmt.Errorf("column must not be empty")
		}
		c.Column = value
	case "delimiter":
		if _, err := ParseDelimiter(value); err != nil {
			return err
		}
		c.Delimiter = value
	case "min_support":
		f, err := parseThreshold(key, value, pipeline.SupportRange)
		if err != nil {
			return err
		}
		c.MinSupport = f
	case "min_confidence":
		f, err := parseThreshold(key, value, pipeline.ConfidenceRange)
		if err != nil {
			return err
		}
		c.MinConfidence = f
	case "max_len":
		return setNonNegative(key, value, &c.MaxLen)
	case "preview_rows":
		return setNonNegative(key, value, &c.PreviewRows)
	case "top_rules":
		return setNonNegative(key, value, &c.TopRules)
	case "top_items":
		return setNonNegative(key, value, &c.TopItems)
	case "suggestions":
		return setNonNegative(key, value, &c.Suggestions)
	case "locale":
		if !slices.Contains(report.Locales(), value) {
			return fmt.Errorf("locale must be one of %s", strings.Join(report.Locales(), ", "))
		}
		c.Locale = value
	case "bind":
		c.Bind = value
	case "port":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > 65535 {
			return fmt.Errorf("port must be between 1 and 65535")
		}
		c.Port = n
	case "log_level":
		if _, err := utils.ParseLevel(value); err != nil {
			return err
		}
		c.LogLevel = strings.ToLower(value)
	case "log_format":
		if !slices.Contains(utils.LogFormats, strings.ToLower(value)) {
			return fmt.Errorf("log_format must be console or json")
		}
		c.LogFormat = strings.ToLower(value)
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func parseThreshold(key, value string, r pipeline.Range) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid number %q", key, value)
	}
	if !r.Contains(f) {
		return 0, fmt.Errorf("%w: %s must be within [%v, %v]", pipeline.ErrThresholdRange, key, r.Min, r.Max)
	}
	return f, nil
}

func setNonNegative(key, value string, dst *int) error {
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return fmt.Errorf("%s must be a non-negative integer", key)
	}
	*dst = n
	return nil
}

// ParseDelimiter accepts "" (auto), "tab", `\t` or a single character.
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return 0, nil
	case "tab", `\t`:
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, 'tab' or empty")
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == '"' || r == '\n' || r == '\r' {
		return 0, fmt.Errorf("delimiter %q is not allowed", r)
	}
	return r, nil
}

// Pipeline converts settings into a run configuration.
func (c *Global) Pipeline() (pipeline.Config, error) {
	cfg := pipeline.DefaultConfig()
	delim, err := ParseDelimiter(c.Delimiter)
	if err != nil {
		return cfg, err
	}
	cfg.Source = pipeline.Source{Path: c.DataPath}
	if c.Column != "" {
		cfg.Column = c.Column
	}
	cfg.MinSupport = c.MinSupport
	cfg.MinConfidence = c.MinConfidence
	cfg.Table.Delimiter = delim
	cfg.Table.PreviewRows = c.PreviewRows
	cfg.PreviewRows = c.PreviewRows
	cfg.TopRules = c.TopRules
	cfg.TopItems = c.TopItems
	cfg.Suggestions = c.Suggestions
	return cfg, nil
}
