package files

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"edusight/internal/config"
	"edusight/internal/errors"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery locates the input files of an analysis in the input directory
type Discovery struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(paths *config.Paths, logger *slog.Logger) *Discovery {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discovery{paths: paths, logger: logger.With("component", "discovery")}
}

// ScoreFiles expands the score file pattern for every grade and reports
// which files exist. Missing files are logged and returned separately.
func (d *Discovery) ScoreFiles(ctx context.Context, pattern string, grades []int) (found []FileInfo, missing []string) {
	for _, name := range config.ScoreFiles(pattern, grades) {
		path := d.paths.GetInputPath(name)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			d.logger.WarnContext(ctx, "score file not found", slog.String("path", path))
			missing = append(missing, path)
			continue
		}
		d.logger.InfoContext(ctx, "score file found", slog.String("path", path))
		found = append(found, toFileInfo(path, info))
	}
	return found, missing
}

// DiscoverScoreFiles finds score exports whose names carry a grade marker.
// Used when the configured pattern matches nothing.
func (d *Discovery) DiscoverScoreFiles(ctx context.Context) ([]FileInfo, error) {
	files, err := d.FindFilesByPattern(d.paths.InputDir, config.ScoreGlob)
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	d.logger.InfoContext(ctx, "score files discovered by glob",
		slog.String("glob", config.ScoreGlob),
		slog.Int("count", len(files)))
	return files, nil
}

// UsageWorkbook resolves the usage workbook. When the configured file is
// missing the most recently modified workbook in the input directory is used.
func (d *Discovery) UsageWorkbook(ctx context.Context, name string) (string, error) {
	path := d.paths.GetInputPath(name)
	if config.FileExists(path) {
		return path, nil
	}

	workbooks, err := d.FindExcelFiles(d.paths.InputDir)
	if err != nil {
		return "", errors.NewNotFoundError("usage workbook").WithContext("path", path)
	}
	latest, ok := GetLatestFile(workbooks)
	if !ok {
		return "", errors.NewNotFoundError("usage workbook").WithContext("path", path)
	}
	d.logger.WarnContext(ctx, "configured workbook not found, using latest workbook",
		slog.String("configured", path),
		slog.String("using", latest.Path))
	return latest.Path, nil
}

// Require returns a not-found error naming what when path does not exist.
func (d *Discovery) Require(ctx context.Context, path, what string) error {
	if config.FileExists(path) {
		return nil
	}
	d.logger.ErrorContext(ctx, "required file not found",
		slog.String("file", what),
		slog.String("path", path))
	return errors.NewNotFoundError(what).WithContext("path", path)
}

// FindExcelFiles finds all xlsx workbooks in dir, oldest first
func (d *Discovery) FindExcelFiles(dir string) ([]FileInfo, error) {
	files, err := d.listFiles(dir, func(name string) bool {
		lower := strings.ToLower(name)
		return strings.HasSuffix(lower, ".xlsx") && !strings.HasPrefix(name, "~$")
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ModTime.Before(files[j].ModTime)
	})
	return files, nil
}

// FindCSVFiles finds all CSV files in dir
func (d *Discovery) FindCSVFiles(dir string) ([]FileInfo, error) {
	return d.listFiles(dir, func(name string) bool {
		return strings.HasSuffix(strings.ToLower(name), ".csv")
	})
}

// FindFilesByPattern finds files matching a glob pattern
func (d *Discovery) FindFilesByPattern(dir string, pattern string) ([]FileInfo, error) {
	matches, err := filepath.Glob(filepath.Join(d.resolve(dir), pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
	}

	var files []FileInfo
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, toFileInfo(match, info))
	}
	return files, nil
}

func (d *Discovery) listFiles(dir string, keep func(name string) bool) ([]FileInfo, error) {
	fullPath := d.resolve(dir)
	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !keep(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, toFileInfo(filepath.Join(fullPath, entry.Name()), info))
	}
	return files, nil
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return d.paths.GetInputPath(dir)
}

func toFileInfo(path string, info os.FileInfo) FileInfo {
	return FileInfo{
		Path:    path,
		Name:    filepath.Base(path),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
}

// Paths returns the paths of files in order
func Paths(files []FileInfo) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}

// GetLatestFile returns the most recently modified file from a list
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if file.ModTime.After(latest.ModTime) {
			latest = file
		}
	}
	return latest, true
}
