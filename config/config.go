package config

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	KeyAPIURL         = "api.url"
	KeyAPIToken       = "api.token"
	KeyExportCSVDir   = "export.csv_dir"
	KeyExportExcelDir = "export.excel_dir"
	KeyHistoryPath    = "history.path"
)

// ErrMissingConfiguration marks values that are absent from every
// configuration source and cannot be prompted for.
var ErrMissingConfiguration = errors.New("missing configuration")

type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Export  ExportConfig  `mapstructure:"export"`
	History HistoryConfig `mapstructure:"history"`
}

type APIConfig struct {
	URL   string `mapstructure:"url" validate:"required,url"`
	Token string `mapstructure:"token" validate:"required"`
}

type ExportConfig struct {
	CSVDir   string `mapstructure:"csv_dir" validate:"required"`
	ExcelDir string `mapstructure:"excel_dir" validate:"required"`
}

type HistoryConfig struct {
	Path string `mapstructure:"path"`
}

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// Load reads the configuration as resolved by Viper (file, environment,
// defaults) without validating it. Callers prompt for missing values and
// then run Validate.
func Load() (*Config, error) {
	return loadFromViper(viper.GetViper())
}

// Validate checks the configuration for completeness.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	cfg, err := loadFromViper(local)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# kimai-report configuration
api:
  # Timesheet endpoint of your Kimai instance.
  url: "https://kimai.example.com/api/timesheets"
  # May also come from the API_TOKEN environment variable or a .env file.
  token: ""

export:
  csv_dir: "csv"
  excel_dir: "excel"

history:
  # SQLite file recording export runs. Empty means ~/.kimai-report/history.db.
  path: ""
`
}

func loadFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyAPIURL, "")
	v.SetDefault(KeyAPIToken, "")
	v.SetDefault(KeyExportCSVDir, "csv")
	v.SetDefault(KeyExportExcelDir, "excel")
	v.SetDefault(KeyHistoryPath, "")
}
