package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"edusight/internal/config"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter writes CSV files into the output directory
type CSVWriter struct {
	paths *config.Paths
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(paths *config.Paths) *CSVWriter {
	return &CSVWriter{paths: paths}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // lets Excel detect UTF-8
}

// WriteCSV writes data to a CSV file, replacing it, and returns the
// resolved path
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) (string, error) {
	stream, err := w.CreateStreamWriter(filePath, options.Headers, options.BOMPrefix)
	if err != nil {
		return "", err
	}

	slog.Debug("Writing CSV file",
		slog.String("file_path", filePath),
		slog.String("full_path", stream.Path()),
		slog.Int("record_count", len(options.Records)))

	for i, record := range options.Records {
		if err := stream.WriteRecord(record); err != nil {
			stream.Close()
			return "", fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	if err := stream.Close(); err != nil {
		return "", err
	}
	return stream.Path(), nil
}

// StreamWriter writes a table row by row
type StreamWriter struct {
	path   string
	file   *os.File
	writer *csv.Writer
	rows   int
}

// CreateStreamWriter creates a new streaming CSV writer
func (w *CSVWriter) CreateStreamWriter(filePath string, headers []string, bom bool) (*StreamWriter, error) {
	fullPath := w.resolvePath(filePath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	if bom {
		if _, err := file.Write(utf8BOM); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}

	return &StreamWriter{path: fullPath, file: file, writer: writer}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	s.rows++
	return s.writer.Write(record)
}

// Path returns the file being written
func (s *StreamWriter) Path() string {
	return s.path
}

// Rows returns the number of records written so far
func (s *StreamWriter) Rows() int {
	return s.rows
}

// Close flushes and closes the stream writer
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || w.paths == nil {
		return filePath
	}
	return w.paths.GetReportPath(filePath)
}
