package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/sync/errgroup"

	"edusight/internal/config"
	"edusight/internal/errors"
	"edusight/pkg/contracts/domain"
)

// scoreColumns maps export positions to the names they are renamed to.
var scoreColumns = []struct {
	pos  int
	name string
}{
	{config.ScoreColSchoolCode, config.ColSchoolCode},
	{config.ScoreColSchoolName, config.ColSchoolName},
	{config.ScoreColName, config.ColName},
	{config.ScoreColGender, config.ColGender},
	{config.ScoreColScoreRate, config.ColScoreRate},
}

const minScoreColumns = config.ScoreColScoreRate + 1

// ExtractGrade returns the digit that follows 數學 in a score file name.
func ExtractGrade(filename string) (int, error) {
	base := filepath.Base(filename)
	_, rest, ok := strings.Cut(base, config.GradeMarker)
	if !ok || rest == "" {
		return 0, errors.NewParsingError("file name has no grade marker", nil).WithContext("file", base)
	}

	first := []rune(rest)[0]
	grade, err := strconv.Atoi(string(first))
	if err != nil {
		return 0, errors.NewParsingError("grade is not a digit", err).WithContext("file", base)
	}
	return grade, nil
}

// ScoreFrame renames the positional columns of a raw score export and adds
// the grade column. The returned frame holds only the renamed columns.
func ScoreFrame(records [][]string, grade int) (dataframe.DataFrame, error) {
	if len(records) == 0 || len(records[0]) < minScoreColumns {
		cols := 0
		if len(records) > 0 {
			cols = len(records[0])
		}
		return dataframe.DataFrame{}, errors.NewParsingError(
			fmt.Sprintf("score export needs at least %d columns, got %d", minScoreColumns, cols), nil)
	}

	df := dataframe.LoadRecords(padRecords(records),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return df, errors.NewParsingError("failed to load score records", df.Err)
	}

	idx := make([]int, len(scoreColumns))
	for i, c := range scoreColumns {
		idx[i] = c.pos
	}
	df = df.Select(idx)
	names := make([]string, len(scoreColumns))
	for i, c := range scoreColumns {
		names[i] = c.name
	}
	if err := df.SetNames(names...); err != nil {
		return df, errors.NewParsingError("failed to rename score columns", err)
	}

	grades := make([]int, df.Nrow())
	for i := range grades {
		grades[i] = grade
	}
	df = df.Mutate(series.New(grades, series.Int, config.ColGrade))
	if df.Err != nil {
		return df, errors.NewParsingError("failed to shape score frame", df.Err)
	}
	return df, nil
}

// StudentScores converts a frame produced by ScoreFrame into typed rows.
func StudentScores(df dataframe.DataFrame) []domain.StudentScore {
	n := df.Nrow()
	if n == 0 {
		return nil
	}

	names := df.Col(config.ColName).Records()
	genders := df.Col(config.ColGender).Records()
	codes := df.Col(config.ColSchoolCode).Records()
	schools := df.Col(config.ColSchoolName).Records()
	rates := df.Col(config.ColScoreRate).Records()
	grades := df.Col(config.ColGrade).Records()

	out := make([]domain.StudentScore, n)
	for i := 0; i < n; i++ {
		gender, _ := strconv.Atoi(strings.TrimSpace(genders[i]))
		grade, _ := strconv.Atoi(grades[i])
		out[i] = domain.StudentScore{
			Name:       strings.TrimSpace(names[i]),
			Gender:     gender,
			SchoolCode: strings.TrimSpace(codes[i]),
			SchoolName: strings.TrimSpace(schools[i]),
			Grade:      grade,
			ScoreRate:  ToNumeric(rates[i]),
		}
	}
	return out
}

// LoadScoreFile reads one grade-level export.
func (l *Loader) LoadScoreFile(ctx context.Context, path string) ([]domain.StudentScore, error) {
	grade, err := ExtractGrade(path)
	if err != nil {
		return nil, err
	}

	records, _, err := l.ReadCSVWithFallback(ctx, path)
	if err != nil {
		return nil, err
	}

	df, err := ScoreFrame(records, grade)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return StudentScores(df), nil
}

// LoadScores reads every export concurrently and concatenates the rows in
// input order. Files that fail are logged and skipped; it is an error only
// when none load.
func (l *Loader) LoadScores(ctx context.Context, paths []string) ([]domain.StudentScore, error) {
	results := make([][]domain.StudentScore, len(paths))
	ok := make([]bool, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rows, err := l.LoadScoreFile(gctx, path)
			if err != nil {
				l.recorder.FileFailed(gctx, "scores")
				l.logger.WarnContext(gctx, "score file skipped",
					slog.String("path", path),
					slog.String("error", err.Error()))
				return nil
			}
			l.recorder.FileLoaded(gctx, "scores")
			l.recorder.RowsLoaded(gctx, "students", len(rows))
			l.logger.InfoContext(gctx, "score file loaded",
				slog.String("path", path),
				slog.Int("rows", len(rows)))
			results[i] = rows
			ok[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []domain.StudentScore
	loaded := 0
	for i, rows := range results {
		if ok[i] {
			loaded++
		}
		all = append(all, rows...)
	}
	if loaded == 0 {
		return nil, errors.NewNotFoundError("score data")
	}

	l.logger.InfoContext(ctx, "score files merged",
		slog.Int("files", loaded),
		slog.Int("rows", len(all)))
	return all, nil
}

// padRecords extends short rows to the header width.
func padRecords(records [][]string) [][]string {
	if len(records) == 0 {
		return records
	}
	width := len(records[0])
	for i, row := range records {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			records[i] = padded
		} else if len(row) > width {
			records[i] = row[:width]
		}
	}
	return records
}
