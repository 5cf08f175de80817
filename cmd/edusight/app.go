package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"edusight/internal/charts"
	"edusight/internal/config"
	"edusight/internal/dataprocessing"
	"edusight/internal/errors"
	"edusight/internal/exporter"
	"edusight/internal/files"
	"edusight/internal/infrastructure"
	"edusight/internal/report"
	"edusight/internal/validation"
)

// app is the wiring shared by the subcommands for one run
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	paths      *config.Paths
	tel        *infrastructure.Telemetry
	loader     *dataprocessing.Loader
	discovery  *files.Discovery
	validator  *validation.FileValidator
	exporter   *exporter.Exporter
	renderer   *charts.Renderer // nil when charts are disabled
	normalizer *dataprocessing.Normalizer
	out        *report.Printer
	outputs    []string
}

// loadConfig reads the configuration and applies the persistent flags
func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, errors.NewConfigError("failed to load configuration", err)
	}

	if opts.inputDir != "" {
		cfg.Paths.InputDir = opts.inputDir
	}
	if opts.outputDir != "" {
		cfg.Paths.OutputDir = opts.outputDir
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.noCharts {
		cfg.Charts.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.NewConfigError("invalid flag values", err)
	}
	return cfg, nil
}

func newApp(ctx context.Context, cmd *cobra.Command, opts *options, command string) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, errors.NewConfigError("failed to initialize logger", err)
	}
	logger = logger.With(slog.String("command", command))

	paths, err := config.NewPaths(cfg.Paths)
	if err != nil {
		return nil, errors.NewConfigError("failed to resolve paths", err)
	}
	validator := validation.NewFileValidator(infrastructure.WithComponent(logger, "validation"))
	if err := validator.ValidateInputDirectory(paths.InputDir); err != nil {
		return nil, err
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, errors.NewStorageError("failed to create output directory", err)
	}
	if err := validator.ValidateOutputDirectory(paths.OutputDir); err != nil {
		return nil, err
	}
	paths.LogPathResolution(logger)

	tel, err := infrastructure.InitializeTelemetry(ctx, cfg.Telemetry, command, logger)
	if err != nil {
		return nil, errors.NewConfigError("failed to initialize telemetry", err)
	}

	a := &app{
		cfg:        cfg,
		logger:     logger,
		paths:      paths,
		tel:        tel,
		discovery:  files.NewDiscovery(paths, infrastructure.WithComponent(logger, "files")),
		validator:  validator,
		normalizer: dataprocessing.NewNormalizer(cfg.Cleaning.PlatformStrip, cfg.Cleaning.ScoreStrip),
		out:        report.New(cmd.OutOrStdout()),
		loader: dataprocessing.NewLoader(infrastructure.WithComponent(logger, "loader"), dataprocessing.LoaderConfig{
			Encodings: cfg.Cleaning.Encodings,
			Subject:   cfg.Inputs.Subject,
			Recorder:  tel.Metrics,
		}),
	}

	a.exporter, err = exporter.NewExporter(infrastructure.WithComponent(logger, "exporter"), cfg.Export, paths, tel.Metrics)
	if err != nil {
		tel.Shutdown(ctx)
		return nil, err
	}

	if cfg.Charts.Enabled {
		a.renderer, err = charts.NewRenderer(infrastructure.WithComponent(logger, "charts"), cfg.Charts, paths, tel.Metrics)
		if err != nil {
			tel.Shutdown(ctx)
			return nil, err
		}
	}

	logger.InfoContext(ctx, "run started",
		slog.String("version", config.AppVersion),
		slog.Bool("charts", cfg.Charts.Enabled))
	return a, nil
}

// close flushes the workbook mirror and the telemetry of the run
func (a *app) close(ctx context.Context) error {
	err := a.exporter.Close(ctx)
	if shutdownErr := a.tel.Shutdown(context.WithoutCancel(ctx)); shutdownErr != nil {
		a.logger.WarnContext(ctx, "telemetry shutdown failed", slog.String("error", shutdownErr.Error()))
	}
	return err
}

// stage runs fn inside a traced, timed pipeline stage
func (a *app) stage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, end := a.tel.StartStage(ctx, name)
	err := fn(ctx)
	end(err)
	return err
}

// produced remembers an output file for the closing summary
func (a *app) produced(path string) {
	if path != "" {
		a.outputs = append(a.outputs, path)
	}
}

// chart renders one chart when charts are enabled. Failures are logged
// and do not abort the run.
func (a *app) chart(ctx context.Context, name string, draw func(r *charts.Renderer) (string, error)) {
	if a.renderer == nil {
		return
	}
	err := a.stage(ctx, "chart", func(ctx context.Context) error {
		path, err := draw(a.renderer)
		if err != nil {
			return err
		}
		a.produced(path)
		a.out.Success("已生成 %s", name)
		return nil
	})
	if err != nil {
		a.logger.WarnContext(ctx, "chart skipped",
			slog.String("chart", name),
			slog.String("error", err.Error()))
		a.out.Warn("無法生成 %s: %v", name, err)
	}
}

// export writes a table and remembers its path
func (a *app) export(ctx context.Context, t exporter.Table) (string, error) {
	var path string
	err := a.stage(ctx, "export", func(ctx context.Context) error {
		var err error
		path, err = a.exporter.Write(ctx, t)
		return err
	})
	if err != nil {
		return "", err
	}
	a.produced(path)
	return path, nil
}

// runE adapts a subcommand body to cobra, owning the app lifecycle
func runE(opts *options, command string, body func(ctx context.Context, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx := infrastructure.EnsureTraceID(cmd.Context())

		a, err := newApp(ctx, cmd, opts, command)
		if err != nil {
			return err
		}

		err = a.stage(ctx, command, func(ctx context.Context) error {
			return body(ctx, a)
		})
		if closeErr := a.close(ctx); err == nil {
			err = closeErr
		}
		if err != nil {
			return err
		}

		a.out.Outputs(a.outputs)
		a.logger.InfoContext(ctx, "run finished", slog.Int("outputs", len(a.outputs)))
		return nil
	}
}
