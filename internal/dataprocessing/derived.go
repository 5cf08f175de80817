package dataprocessing

import (
	"context"
	"log/slog"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"edusight/internal/config"
	"edusight/internal/errors"
	"edusight/pkg/contracts/domain"
)

// Derived files are written as UTF-8; the score-export chain is a fallback
// for copies that were re-saved by spreadsheet tools.
func (l *Loader) derivedEncodings() []string {
	encs := []string{"utf-8"}
	for _, e := range l.encodings {
		if e != "utf-8" && e != "utf8" {
			encs = append(encs, e)
		}
	}
	return encs
}

// loadFrame reads a headered CSV into a string frame holding the given columns.
func (l *Loader) loadFrame(ctx context.Context, path, dataset string, columns ...string) (dataframe.DataFrame, error) {
	records, _, err := l.readCSV(ctx, path, l.derivedEncodings())
	if err != nil {
		l.recorder.FileFailed(ctx, "csv")
		return dataframe.DataFrame{}, err
	}
	records[0] = trimAll(records[0])

	for _, col := range columns {
		if !containsString(records[0], col) {
			l.recorder.FileFailed(ctx, "csv")
			return dataframe.DataFrame{}, errors.NewValidationError("missing column "+col).WithContext("path", path)
		}
	}

	df := dataframe.LoadRecords(padRecords(records),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	).Select(columns)
	if df.Err != nil {
		l.recorder.FileFailed(ctx, "csv")
		return df, errors.NewParsingError("failed to load csv", df.Err).WithContext("path", path)
	}

	l.recorder.FileLoaded(ctx, "csv")
	l.recorder.RowsLoaded(ctx, dataset, df.Nrow())
	return df, nil
}

// LoadSchoolScores reads per-school mean score rates written by the scores command.
func (l *Loader) LoadSchoolScores(ctx context.Context, path string) ([]domain.SchoolScore, error) {
	df, err := l.loadFrame(ctx, path, "school_scores", config.ColSchoolName, config.ColScoreRate)
	if err != nil {
		return nil, err
	}

	names := df.Col(config.ColSchoolName).Records()
	rates := df.Col(config.ColScoreRate).Records()
	out := make([]domain.SchoolScore, len(names))
	for i := range names {
		out[i] = domain.SchoolScore{SchoolName: names[i], ScoreRate: ToNumeric(rates[i])}
	}

	l.logger.InfoContext(ctx, "school scores loaded",
		slog.String("path", path),
		slog.Int("schools", len(out)))
	return out, nil
}

// LoadSchoolUsageMeans reads the per-school platform means written by the platform command.
func (l *Loader) LoadSchoolUsageMeans(ctx context.Context, path string) ([]domain.SchoolUsageMeans, error) {
	cols := []string{
		config.ColSchoolName,
		config.ColPlatformUsage,
		config.ColPracticeAvgScore,
		config.ColVideoUsage,
		config.ColVideoHours,
		config.ColAssignedVideos,
		config.ColSelfVideos,
		config.ColPracticeQuestions,
		config.ColSelfTests,
	}
	df, err := l.loadFrame(ctx, path, "platform_means", cols...)
	if err != nil {
		return nil, err
	}

	values := make([][]string, len(cols))
	for i, c := range cols {
		values[i] = df.Col(c).Records()
	}

	out := make([]domain.SchoolUsageMeans, df.Nrow())
	for i := range out {
		out[i] = domain.SchoolUsageMeans{
			SchoolName:        values[0][i],
			PlatformUsage:     ToNumeric(values[1][i]),
			PracticeAvgScore:  ToNumeric(values[2][i]),
			VideoUsage:        ToNumeric(values[3][i]),
			VideoHours:        ToNumeric(values[4][i]),
			AssignedVideos:    ToNumeric(values[5][i]),
			SelfVideos:        ToNumeric(values[6][i]),
			PracticeQuestions: ToNumeric(values[7][i]),
			SelfTests:         ToNumeric(values[8][i]),
		}
	}

	l.logger.InfoContext(ctx, "platform means loaded",
		slog.String("path", path),
		slog.Int("schools", len(out)))
	return out, nil
}

// LoadTaskPlatform reads the task platform export. Percent signs are
// stripped and "N/A" becomes NaN.
func (l *Loader) LoadTaskPlatform(ctx context.Context, path string) ([]domain.TaskPlatformRecord, error) {
	df, err := l.loadFrame(ctx, path, "task_platform", config.ColSchoolName, config.ColCompletionRate, config.ColAccuracyRate)
	if err != nil {
		return nil, err
	}

	names := df.Col(config.ColSchoolName).Records()
	completion := df.Col(config.ColCompletionRate).Records()
	accuracy := df.Col(config.ColAccuracyRate).Records()

	out := make([]domain.TaskPlatformRecord, len(names))
	missing := 0
	for i := range names {
		c, okC := ParsePercentage(completion[i])
		a, okA := ParsePercentage(accuracy[i])
		if !okC || !okA {
			missing++
		}
		out[i] = domain.TaskPlatformRecord{SchoolName: names[i], CompletionRate: c, AccuracyRate: a}
	}

	l.logger.InfoContext(ctx, "task platform loaded",
		slog.String("path", path),
		slog.Int("schools", len(out)),
		slog.Int("incomplete", missing))
	return out, nil
}
