package dataprocessing

import (
	"context"
	"log/slog"
)

// Recorder receives load counters. infrastructure.RunMetrics satisfies it.
type Recorder interface {
	FileLoaded(ctx context.Context, kind string)
	FileFailed(ctx context.Context, kind string)
	RowsLoaded(ctx context.Context, dataset string, n int)
	RowsDropped(ctx context.Context, dataset string, n int)
}

type nopRecorder struct{}

func (nopRecorder) FileLoaded(context.Context, string)       {}
func (nopRecorder) FileFailed(context.Context, string)       {}
func (nopRecorder) RowsLoaded(context.Context, string, int)  {}
func (nopRecorder) RowsDropped(context.Context, string, int) {}

// LoaderConfig holds the options of a Loader.
type LoaderConfig struct {
	Encodings   []string // decode order for score exports
	Subject     string   // workbook subject kept, e.g. 數學
	Concurrency int      // parallel score file loads
	Recorder    Recorder
}

// Loader reads the score exports, the usage workbook and the derived CSVs.
type Loader struct {
	logger      *slog.Logger
	encodings   []string
	subject     string
	concurrency int
	recorder    Recorder
}

// NewLoader creates a Loader. Zero config values fall back to defaults.
func NewLoader(logger *slog.Logger, cfg LoaderConfig) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Encodings) == 0 {
		cfg.Encodings = DefaultEncodings
	}
	if cfg.Subject == "" {
		cfg.Subject = DefaultSubject
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.Recorder == nil {
		cfg.Recorder = nopRecorder{}
	}

	return &Loader{
		logger:      logger.With("component", "loader"),
		encodings:   cfg.Encodings,
		subject:     cfg.Subject,
		concurrency: cfg.Concurrency,
		recorder:    cfg.Recorder,
	}
}
