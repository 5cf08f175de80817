package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edusight/internal/errors"
	"edusight/internal/shared/testutil"
)

func TestLookupEncoding(t *testing.T) {
	for _, name := range []string{"cp950", "big5", "utf-8", "UTF8", "gbk", "latin1", "ISO-8859-1"} {
		enc, err := LookupEncoding(name)
		require.NoError(t, err, name)
		assert.NotNil(t, enc)
	}

	_, err := LookupEncoding("ebcdic")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeEncoding))
}

func TestDecodeCSV(t *testing.T) {
	big5 := toBig5(t, []byte("學校名稱,總得分率\n金城國中,0.8\n"))

	records, err := DecodeCSV(big5, "big5")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"學校名稱", "總得分率"}, {"金城國中", "0.8"}}, records)

	_, err = DecodeCSV(big5, "utf-8")
	assert.Error(t, err, "big5 bytes are not valid utf-8")

	records, err = DecodeCSV([]byte("\xEF\xBB\xBFa,b\n1,2\n"), "utf-8")
	require.NoError(t, err)
	assert.Equal(t, "a", records[0][0], "BOM stripped")

	_, err = DecodeCSV([]byte(""), "utf-8")
	assert.True(t, errors.IsType(err, errors.ErrTypeParsing))
}

func TestReadCSVWithFallback(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	loader := testLoader()

	tests := []struct {
		name    string
		data    []byte
		wantEnc string
		wantRow []string
	}{
		{
			name:    "big5 export",
			data:    toBig5(t, []byte("學校名稱,分數\n金寧國中,1\n")),
			wantEnc: "cp950",
			wantRow: []string{"金寧國中", "1"},
		},
		{
			name:    "ascii is valid cp950",
			data:    []byte("a,b\n1,2\n"),
			wantEnc: "cp950",
			wantRow: []string{"1", "2"},
		},
		{
			name:    "latin1 as last resort",
			data:    []byte("a,b\nx\xff,1\n"),
			wantEnc: "latin1",
			wantRow: []string{"xÿ", "1"},
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, fmt.Sprintf("case%d.csv", i), tt.data)
			records, enc, err := loader.ReadCSVWithFallback(ctx, path)
			require.NoError(t, err)
			assert.Equal(t, tt.wantEnc, enc)
			require.Len(t, records, 2)
			assert.Equal(t, tt.wantRow, records[1])
		})
	}
}

func TestReadCSVWithFallbackLogsEncoding(t *testing.T) {
	logger, logs := testutil.NewTestLogger()
	loader := NewLoader(logger, LoaderConfig{Encodings: []string{"utf-8", "latin1"}})
	path := writeFile(t, t.TempDir(), "scores.csv", []byte("a,b\nx\xff,1\n"))

	_, enc, err := loader.ReadCSVWithFallback(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "latin1", enc)

	rejected := testutil.AssertLogged(t, logs, slog.LevelDebug, "encoding rejected")
	assert.Equal(t, "utf-8", rejected.Attrs["encoding"])
	decoded := testutil.AssertLogged(t, logs, slog.LevelInfo, "csv decoded")
	assert.Equal(t, "latin1", decoded.Attrs["encoding"])
	assert.Equal(t, int64(1), decoded.Attrs["rows"])
}

func TestReadCSVWithFallbackFailures(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	_, _, err := testLoader().ReadCSVWithFallback(ctx, filepath.Join(dir, "missing.csv"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeNotFound))

	strict := NewLoader(nil, LoaderConfig{Encodings: []string{"utf-8"}})
	path := writeFile(t, dir, "bad.csv", []byte("a,b\nx\xff,1\n"))
	_, _, err = strict.ReadCSVWithFallback(ctx, path)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeParsing))
}
