package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths resolves every file the analyses read or write.
// Relative directories are taken from the current working directory, the
// same way the analyses were always run from the folder holding the exports.
type Paths struct {
	InputDir  string
	OutputDir string
}

// NewPaths resolves the configured directories to absolute paths
func NewPaths(cfg PathsConfig) (*Paths, error) {
	in, err := filepath.Abs(cfg.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve input dir %q: %w", cfg.InputDir, err)
	}
	out, err := filepath.Abs(cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output dir %q: %w", cfg.OutputDir, err)
	}
	return &Paths{InputDir: in, OutputDir: out}, nil
}

// EnsureDirectories creates the output directory if it doesn't exist
func (p *Paths) EnsureDirectories() error {
	if err := os.MkdirAll(p.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", p.OutputDir, err)
	}
	slog.Debug("Ensured directory exists", slog.String("directory", p.OutputDir))
	return nil
}

// GetInputPath returns the path of a source file. Absolute names pass through.
func (p *Paths) GetInputPath(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(p.InputDir, filename)
}

// GetReportPath returns the path for a derived CSV, workbook or chart.
func (p *Paths) GetReportPath(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(p.OutputDir, filename)
}

// GetDerivedInputPath locates a file produced by an earlier subcommand:
// the output directory first, then the input directory.
func (p *Paths) GetDerivedInputPath(filename string) string {
	out := p.GetReportPath(filename)
	if FileExists(out) {
		return out
	}
	return p.GetInputPath(filename)
}

// ScoreFiles expands the score file pattern for every grade
func ScoreFiles(pattern string, grades []int) []string {
	files := make([]string, 0, len(grades))
	for _, g := range grades {
		files = append(files, fmt.Sprintf(pattern, g))
	}
	return files
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs the resolved directories
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	wd, _ := os.Getwd()
	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("working", wd),
			slog.String("input", p.InputDir),
			slog.String("output", p.OutputDir),
		))
}
