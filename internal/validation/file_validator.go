package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"edusight/internal/errors"
)

// FileValidator checks the directories and source files of a run before
// they are read, so problems surface as typed errors with the path attached.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{logger: logger}
}

// ValidateInputDirectory checks that dir exists and is a directory.
func (v *FileValidator) ValidateInputDirectory(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Error("Input directory does not exist", slog.String("directory", dir))
		return errors.NewNotFoundError("input directory").WithContext("path", dir)
	}
	if err != nil {
		return errors.NewStorageError("failed to stat input directory", err).WithContext("path", dir)
	}
	if !info.IsDir() {
		v.logger.Error("Input path is not a directory", slog.String("path", dir))
		return errors.NewValidationError(fmt.Sprintf("%s is not a directory", dir))
	}

	csvs, _ := v.CountFiles(dir, "*.csv")
	workbooks, _ := v.CountFiles(dir, "*.xlsx")
	v.logger.Debug("Input directory validated",
		slog.String("directory", dir),
		slog.Int("csv_files", csvs),
		slog.Int("workbooks", workbooks))
	return nil
}

// ValidateOutputDirectory checks that files can be created in dir.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	probe, err := os.CreateTemp(dir, ".write_test_*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return errors.NewStorageError("output directory is not writable", err).WithContext("path", dir)
	}
	probe.Close()
	os.Remove(probe.Name())
	return nil
}

// ValidateFile checks that path is an existing, readable regular file.
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return errors.NewNotFoundError(filepath.Base(path)).WithContext("path", path)
	}
	if err != nil {
		return errors.NewStorageError("failed to stat file", err).WithContext("path", path)
	}
	if info.IsDir() {
		return errors.NewValidationError(fmt.Sprintf("%s is a directory, not a file", path))
	}

	f, err := os.Open(path)
	if err != nil {
		return errors.NewStorageError("file is not readable", err).WithContext("path", path)
	}
	f.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// CountFiles counts regular files matching pattern in dir.
func (v *FileValidator) CountFiles(dir, pattern string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return 0, errors.NewValidationError(fmt.Sprintf("bad file pattern %q", pattern))
	}

	n := 0
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil && !info.IsDir() {
			n++
		}
	}
	return n, nil
}

// ValidateWorkbook checks that path is a workbook excelize can open.
// Legacy .xls files and Office lock files are rejected.
func (v *FileValidator) ValidateWorkbook(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}

	if strings.HasPrefix(filepath.Base(path), "~$") {
		v.logger.Warn("Skipping temporary Excel file", slog.String("file", path))
		return errors.NewValidationError(fmt.Sprintf("%s is a temporary Excel file", path))
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		return nil
	default:
		v.logger.Error("File is not an xlsx workbook",
			slog.String("file", path),
			slog.String("extension", ext))
		return errors.NewValidationError(fmt.Sprintf("%s is not an xlsx workbook (extension: %s)", path, ext))
	}
}

// ValidateCSV checks that path is a non-empty .csv file.
func (v *FileValidator) ValidateCSV(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}

	if ext := strings.ToLower(filepath.Ext(path)); ext != ".csv" {
		return errors.NewValidationError(fmt.Sprintf("%s is not a CSV file (extension: %s)", path, ext))
	}
	if info, err := os.Stat(path); err == nil && info.Size() == 0 {
		return errors.NewValidationError(fmt.Sprintf("%s is empty", path))
	}
	return nil
}
