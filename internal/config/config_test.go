package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "console", cfg.Logging.Output)
				assert.Empty(t, cfg.Logging.FilePath)
				assert.Equal(t, []int{3, 4, 5, 6, 7, 8}, cfg.Inputs.Grades)
				assert.Equal(t, DefaultEncodings, cfg.Cleaning.Encodings)
				assert.Equal(t, []string{"縣立"}, cfg.Cleaning.PlatformStrip)
				assert.Equal(t, []string{"含垵湖分校"}, cfg.Cleaning.ScoreStrip)
				assert.Equal(t, 3, cfg.Cleaning.MinJoinSchools)
				assert.True(t, cfg.Charts.Enabled)
				assert.Equal(t, 10, cfg.Charts.TopN)
			},
		},
		{
			name: "yaml file overlays defaults",
			file: `
paths:
  input_dir: exports
inputs:
  grades: [7, 8]
charts:
  enabled: false
  font_path: fonts/NotoSansTC.ttf
export:
  workbook: true
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "exports", cfg.Paths.InputDir)
				assert.Equal(t, ".", cfg.Paths.OutputDir)
				assert.Equal(t, []int{7, 8}, cfg.Inputs.Grades)
				assert.False(t, cfg.Charts.Enabled)
				assert.Equal(t, "fonts/NotoSansTC.ttf", cfg.Charts.FontPath)
				assert.True(t, cfg.Export.Workbook)
				assert.Equal(t, DefaultUsageWorkbook, cfg.Inputs.UsageWorkbook)
			},
		},
		{
			name: "environment wins over file",
			file: "logging:\n  level: debug\n",
			env: map[string]string{
				"EDUSIGHT_LOGGING_LEVEL":             "warn",
				"EDUSIGHT_LOGGING_OUTPUT":            "both",
				"EDUSIGHT_CLEANING_ENCODINGS":        "utf-8,big5",
				"EDUSIGHT_CLEANING_MIN_JOIN_SCHOOLS": "5",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "warn", cfg.Logging.Level)
				assert.Equal(t, DefaultLogFile, cfg.Logging.FilePath, "file output gets a default path")
				assert.Equal(t, []string{"utf-8", "big5"}, cfg.Cleaning.Encodings)
				assert.Equal(t, 5, cfg.Cleaning.MinJoinSchools)
			},
		},
		{
			name:    "invalid log level",
			env:     map[string]string{"EDUSIGHT_LOGGING_LEVEL": "verbose"},
			wantErr: true,
		},
		{
			name:    "unknown encoding",
			file:    "cleaning:\n  encodings: [shift_jis]\n",
			wantErr: true,
		},
		{
			name:    "pattern without grade placeholder",
			file:    "inputs:\n  score_pattern: scores.csv\n",
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			file:    "charts: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := filepath.Join(t.TempDir(), "absent.yaml")
			if tt.file != "" {
				path = writeConfig(t, tt.file)
			} else {
				require.NoError(t, os.WriteFile(path, nil, 0644))
			}

			cfg, err := Load(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default is valid", func(*Config) {}, false},
		{"no grades", func(c *Config) { c.Inputs.Grades = nil }, true},
		{"grade out of range", func(c *Config) { c.Inputs.Grades = []int{0} }, true},
		{"tiny chart", func(c *Config) { c.Charts.Width = 50 }, true},
		{"zero top n", func(c *Config) { c.Charts.TopN = 0 }, true},
		{"empty output dir", func(c *Config) { c.Paths.OutputDir = "" }, true},
		{"empty subject", func(c *Config) { c.Inputs.Subject = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
