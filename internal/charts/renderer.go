package charts

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/golang/freetype/truetype"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"edusight/internal/config"
	"edusight/internal/errors"
)

// OutputRecorder is notified of every chart written. infrastructure.RunMetrics satisfies it.
type OutputRecorder interface {
	OutputWritten(ctx context.Context, kind string)
}

// Renderer draws PNG charts into the output directory.
type Renderer struct {
	logger   *slog.Logger
	paths    *config.Paths
	width    int
	height   int
	font     *truetype.Font
	recorder OutputRecorder
}

// NewRenderer creates a Renderer. A configured font that cannot be read is
// a configuration error; without one go-chart's built-in font is used and
// CJK labels will not render.
func NewRenderer(logger *slog.Logger, cfg config.ChartsConfig, paths *config.Paths, recorder OutputRecorder) (*Renderer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Renderer{
		logger:   logger.With("component", "charts"),
		paths:    paths,
		width:    cfg.Width,
		height:   cfg.Height,
		recorder: recorder,
	}
	if r.width <= 0 {
		r.width = 1400
	}
	if r.height <= 0 {
		r.height = 900
	}

	if cfg.FontPath != "" {
		font, err := LoadFont(cfg.FontPath)
		if err != nil {
			return nil, err
		}
		r.font = font
	} else {
		r.logger.Warn("no chart font configured, CJK labels will not render")
	}
	return r, nil
}

// LoadFont parses a TrueType font file.
func LoadFont(path string) (*truetype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError("failed to read chart font", err).WithContext("path", path)
	}
	font, err := truetype.Parse(data)
	if err != nil {
		return nil, errors.NewConfigError("failed to parse chart font", err).WithContext("path", path)
	}
	return font, nil
}

// renderable is satisfied by chart.Chart and chart.BarChart.
type renderable interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

func (r *Renderer) encode(c renderable) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// save renders c and writes it under name in the output directory.
func (r *Renderer) save(ctx context.Context, name string, c renderable) (string, error) {
	data, err := r.encode(c)
	if err != nil {
		return "", errors.NewRenderError("failed to render chart", err).WithContext("chart", name)
	}
	return r.write(ctx, name, data)
}

func (r *Renderer) write(ctx context.Context, name string, data []byte) (string, error) {
	path := name
	if r.paths != nil {
		path = r.paths.GetReportPath(name)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", errors.NewStorageError("failed to create chart directory", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.NewStorageError("failed to write chart", err).WithContext("path", path)
	}

	if r.recorder != nil {
		r.recorder.OutputWritten(ctx, "png")
	}
	r.logger.InfoContext(ctx, "chart written", slog.String("path", path))
	return path, nil
}

// saveGrid renders the charts into a rows by cols grid and writes one PNG.
func (r *Renderer) saveGrid(ctx context.Context, name string, rows, cols int, cells []chart.Chart) (string, error) {
	cellW, cellH := r.width/cols, r.height/rows
	canvas := image.NewRGBA(image.Rect(0, 0, cellW*cols, cellH*rows))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	for i, c := range cells {
		c.Width, c.Height = cellW, cellH
		data, err := r.encode(c)
		if err != nil {
			return "", errors.NewRenderError("failed to render panel", err).
				WithContext("chart", name).
				WithContext("panel", i)
		}
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			return "", errors.NewRenderError("failed to decode panel", err).WithContext("chart", name)
		}
		origin := image.Pt((i%cols)*cellW, (i/cols)*cellH)
		draw.Draw(canvas, img.Bounds().Add(origin), img, img.Bounds().Min, draw.Over)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return "", errors.NewRenderError("failed to encode chart grid", err).WithContext("chart", name)
	}
	return r.write(ctx, name, buf.Bytes())
}

// paddedRange returns an axis range around the values with a margin.
func paddedRange(values []float64) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		return &chart.ContinuousRange{Min: 0, Max: 1}
	}
	pad := (hi - lo) * 0.08
	if pad == 0 {
		pad = math.Max(math.Abs(hi)*0.1, 1)
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

// barRange starts at zero and leaves headroom above the tallest bar.
func barRange(values []float64, floorMax float64) *chart.ContinuousRange {
	top := floorMax
	for _, v := range values {
		if !math.IsNaN(v) && v*1.1 > top {
			top = v * 1.1
		}
	}
	if top <= 0 {
		top = 1
	}
	return &chart.ContinuousRange{Min: 0, Max: top}
}

// palette returns n evenly spaced viridis colors.
func palette(n int) []drawing.Color {
	colors := make([]drawing.Color, n)
	for i := range colors {
		v := 0.0
		if n > 1 {
			v = float64(i) / float64(n-1)
		}
		colors[i] = chart.Viridis(v, 0, 1)
	}
	return colors
}

func dotStyle(c drawing.Color, width float64) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    width,
		DotColor:    c,
	}
}

func lineStyle(c drawing.Color, width float64, dashed bool) chart.Style {
	s := chart.Style{StrokeColor: c, StrokeWidth: width}
	if dashed {
		s.StrokeDashArray = []float64{6, 4}
	}
	return s
}

func (r *Renderer) titleStyle() chart.Style {
	return chart.Style{FontSize: 14}
}

func fmtFloat(format string) chart.ValueFormatter {
	return func(v interface{}) string {
		if f, ok := v.(float64); ok {
			return fmt.Sprintf(format, f)
		}
		return fmt.Sprint(v)
	}
}
