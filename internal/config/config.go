package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Inputs    InputsConfig    `yaml:"inputs" envconfig:"INPUTS"`
	Cleaning  CleaningConfig  `yaml:"cleaning" envconfig:"CLEANING"`
	Charts    ChartsConfig    `yaml:"charts" envconfig:"CHARTS"`
	Export    ExportConfig    `yaml:"export" envconfig:"EXPORT"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains the input and output directories
type PathsConfig struct {
	InputDir  string `yaml:"input_dir" envconfig:"INPUT_DIR" validate:"required"`
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
}

// InputsConfig names the source files
type InputsConfig struct {
	ScorePattern    string `yaml:"score_pattern" envconfig:"SCORE_PATTERN" validate:"required,contains=%d"`
	Grades          []int  `yaml:"grades" envconfig:"GRADES" validate:"min=1,dive,min=1,max=12"`
	UsageWorkbook   string `yaml:"usage_workbook" envconfig:"USAGE_WORKBOOK" validate:"required"`
	TaskPlatformCSV string `yaml:"task_platform_csv" envconfig:"TASK_PLATFORM_CSV"`
	Subject         string `yaml:"subject" envconfig:"SUBJECT" validate:"required"`
}

// CleaningConfig controls decoding and school-name normalization
type CleaningConfig struct {
	Encodings      []string `yaml:"encodings" envconfig:"ENCODINGS" validate:"min=1,dive,oneof=cp950 big5 utf-8 utf8 gbk latin1"`
	PlatformStrip  []string `yaml:"platform_strip" envconfig:"PLATFORM_STRIP"`
	ScoreStrip     []string `yaml:"score_strip" envconfig:"SCORE_STRIP"`
	MinJoinSchools int      `yaml:"min_join_schools" envconfig:"MIN_JOIN_SCHOOLS" validate:"min=1"`
}

// ChartsConfig controls PNG rendering
type ChartsConfig struct {
	Enabled  bool   `yaml:"enabled" envconfig:"ENABLED"`
	FontPath string `yaml:"font_path" envconfig:"FONT_PATH"`
	Width    int    `yaml:"width" envconfig:"WIDTH" validate:"min=200,max=8000"`
	Height   int    `yaml:"height" envconfig:"HEIGHT" validate:"min=200,max=8000"`
	TopN     int    `yaml:"top_n" envconfig:"TOP_N" validate:"min=1"`
}

// ExportConfig controls derived file output
type ExportConfig struct {
	BOMPrefix bool `yaml:"bom_prefix" envconfig:"BOM_PREFIX"`
	Workbook  bool `yaml:"workbook" envconfig:"WORKBOOK"`
}

// TelemetryConfig controls run traces and run metrics. Empty paths disable them.
type TelemetryConfig struct {
	TraceFile   string `yaml:"trace_file" envconfig:"TRACE_FILE"`
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Load builds the configuration from defaults, an optional YAML file and
// EDUSIGHT_* environment variables, in increasing order of precedence.
// An empty configFile falls back to the well-known locations.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays YAML values onto cfg; absent keys keep their value
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks field constraints and fills derived defaults
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFile
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		DefaultConfigFile,
		"configs/" + DefaultConfigFile,
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "console",
		},
		Paths: PathsConfig{
			InputDir:  ".",
			OutputDir: ".",
		},
		Inputs: InputsConfig{
			ScorePattern:    DefaultScorePattern,
			Grades:          []int{3, 4, 5, 6, 7, 8},
			UsageWorkbook:   DefaultUsageWorkbook,
			TaskPlatformCSV: DefaultTaskPlatformCSV,
			Subject:         DefaultMathSubject,
		},
		Cleaning: CleaningConfig{
			Encodings:      append([]string(nil), DefaultEncodings...),
			PlatformStrip:  []string{"縣立"},
			ScoreStrip:     []string{"含垵湖分校"},
			MinJoinSchools: 3,
		},
		Charts: ChartsConfig{
			Enabled: true,
			Width:   1400,
			Height:  900,
			TopN:    10,
		},
		Export: ExportConfig{
			BOMPrefix: false,
		},
	}
}
