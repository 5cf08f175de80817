package dataprocessing

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"

	"edusight/internal/errors"
)

// DefaultEncodings is the order tried by ReadCSVWithFallback.
var DefaultEncodings = []string{"cp950", "big5", "utf-8", "gbk", "latin1"}

// LookupEncoding returns the decoder for a configured encoding name.
func LookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.ReplaceAll(name, "_", "-")) {
	case "cp950", "big5":
		return traditionalchinese.Big5, nil
	case "utf-8", "utf8":
		return unicode.UTF8, nil
	case "gbk", "cp936":
		return simplifiedchinese.GBK, nil
	case "latin1", "latin-1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	default:
		return nil, errors.NewEncodingError(fmt.Sprintf("unsupported encoding %q", name), nil)
	}
}

// DecodeCSV decodes data with the named encoding and parses it as CSV.
// Decoding that produces replacement characters counts as a failure so
// the caller can move on to the next candidate.
func DecodeCSV(data []byte, name string) ([][]string, error) {
	enc, err := LookupEncoding(name)
	if err != nil {
		return nil, err
	}

	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, errors.NewEncodingError("decode failed", err).WithContext("encoding", name)
	}
	if bytes.ContainsRune(decoded, '\uFFFD') {
		return nil, errors.NewEncodingError("invalid byte sequence", nil).WithContext("encoding", name)
	}
	decoded = bytes.TrimPrefix(decoded, []byte("\uFEFF"))

	r := csv.NewReader(bytes.NewReader(decoded))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.NewParsingError("malformed csv", err).WithContext("encoding", name)
	}
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, errors.NewParsingError("csv has no columns", nil).WithContext("encoding", name)
	}
	return records, nil
}

// ReadCSVWithFallback reads path trying each encoding in order and returns
// the records together with the encoding that worked.
func (l *Loader) ReadCSVWithFallback(ctx context.Context, path string) ([][]string, string, error) {
	return l.readCSV(ctx, path, l.encodings)
}

func (l *Loader) readCSV(ctx context.Context, path string, encodings []string) ([][]string, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", errors.NewNotFoundError(path)
		}
		return nil, "", errors.NewStorageError("failed to read csv", err).WithContext("path", path)
	}

	var lastErr error
	for _, enc := range encodings {
		records, err := DecodeCSV(data, enc)
		if err != nil {
			l.logger.DebugContext(ctx, "encoding rejected",
				slog.String("path", path),
				slog.String("encoding", enc),
				slog.String("error", err.Error()))
			lastErr = err
			continue
		}
		l.logger.InfoContext(ctx, "csv decoded",
			slog.String("path", path),
			slog.String("encoding", enc),
			slog.Int("rows", len(records)-1))
		return records, enc, nil
	}

	return nil, "", errors.NewParsingError("no encoding could read file", lastErr).
		WithContext("path", path).
		WithContext("tried", strings.Join(encodings, ","))
}
