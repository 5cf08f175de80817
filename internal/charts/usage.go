package charts

import (
	"context"
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"edusight/internal/analysis"
	"edusight/internal/errors"
)

// Point is a labelled scatter point.
type Point struct {
	X, Y  float64
	Label string
}

// Panel is one regression scatter of a grid.
type Panel struct {
	Title  string
	XLabel string
	YLabel string
	Points []Point
	Corr   float64
}

// BubblePoint is a scatter point whose size and color encode two more variables.
type BubblePoint struct {
	X, Y        float64
	Size, Color float64
	Label       string
}

// Bubble describes a bubble chart.
type Bubble struct {
	Title     string
	XLabel    string
	YLabel    string
	SizeLabel string
	ColorName string
	Points    []BubblePoint
}

// UsageScatter plots student platform usage against score rate with one
// regression line per grade, an overall regression line and the mean score
// of each usage band.
func (r *Renderer) UsageScatter(ctx context.Context, rows []analysis.StudentUsage, buckets []analysis.UsageBucket, corr float64) (string, error) {
	grades, groups := analysis.GradeRegressionGroups(rows)
	colors := palette(len(grades))

	var series []chart.Series
	var allX, allY []float64
	for i, g := range grades {
		var xs, ys []float64
		for _, row := range groups[g] {
			if !row.Student.HasScore() {
				continue
			}
			xs = append(xs, row.Usage.PlatformUsage())
			ys = append(ys, row.Student.ScoreRate)
		}
		if len(xs) == 0 {
			continue
		}
		allX = append(allX, xs...)
		allY = append(allY, ys...)

		inner := chart.ContinuousSeries{
			Name:    fmt.Sprintf("%d年級 (n=%d)", g, len(groups[g])),
			XValues: xs,
			YValues: ys,
			Style:   dotStyle(colors[i].WithAlpha(180), 5),
		}
		series = append(series, inner)
		if len(xs) > 2 && hasSpread(xs) {
			series = append(series, &chart.LinearRegressionSeries{
				InnerSeries: inner,
				Style:       lineStyle(colors[i], 1.5, true),
			})
		}
	}
	if len(allX) == 0 {
		return "", errors.NewValidationError("no scored students to plot")
	}

	if len(allX) > 1 && hasSpread(allX) {
		series = append(series, &chart.LinearRegressionSeries{
			Name:        "整體",
			InnerSeries: chart.ContinuousSeries{XValues: allX, YValues: allY},
			Style:       lineStyle(drawing.ColorBlack, 2.5, false),
		})
	}

	var bx, by []float64
	var notes []chart.Value2
	for _, b := range buckets {
		if b.Count == 0 || math.IsNaN(b.Mean) {
			continue
		}
		bx = append(bx, b.Center())
		by = append(by, b.Mean)
		notes = append(notes, chart.Value2{
			XValue: b.Center(),
			YValue: b.Mean,
			Label:  fmt.Sprintf("%s 平均: %.2f n=%d", b.Label, b.Mean, b.Count),
		})
	}
	if len(bx) > 0 {
		series = append(series,
			chart.ContinuousSeries{
				Name:    "分組平均",
				XValues: bx,
				YValues: by,
				Style:   dotStyle(drawing.ColorRed, 10),
			},
			chart.AnnotationSeries{Annotations: notes},
		)
	}

	c := chart.Chart{
		Title:      fmt.Sprintf("平台使用量與平均得分率關係分析 (r = %.3f)", corr),
		TitleStyle: r.titleStyle(),
		Width:      r.width,
		Height:     r.height,
		Font:       r.font,
		XAxis:      chart.XAxis{Name: "平均平台使用量", Range: paddedRange(append(allX, bx...))},
		YAxis:      chart.YAxis{Name: "平均數學得分率", Range: paddedRange(append(allY, by...))},
		Series:     series,
	}
	c.Elements = []chart.Renderable{chart.LegendLeft(&c)}
	return r.save(ctx, UsageScatterPNG, c)
}

// Panels draws regression scatters in a grid with the given column count.
func (r *Renderer) Panels(ctx context.Context, name string, cols int, panels []Panel) (string, error) {
	if len(panels) == 0 {
		return "", errors.NewValidationError("no panels to draw")
	}
	if cols <= 0 {
		cols = 1
	}
	rows := (len(panels) + cols - 1) / cols

	cells := make([]chart.Chart, len(panels))
	for i, p := range panels {
		cells[i] = r.panelChart(p)
	}
	return r.saveGrid(ctx, name, rows, cols, cells)
}

func (r *Renderer) panelChart(p Panel) chart.Chart {
	var xs, ys []float64
	var notes []chart.Value2
	for _, pt := range p.Points {
		if math.IsNaN(pt.X) || math.IsNaN(pt.Y) {
			continue
		}
		xs = append(xs, pt.X)
		ys = append(ys, pt.Y)
		notes = append(notes, chart.Value2{XValue: pt.X, YValue: pt.Y, Label: pt.Label})
	}

	title := p.Title
	if len(xs) == 0 {
		title += " (無有效數據)"
		xs, ys = []float64{0}, []float64{0}
	} else {
		title += fmt.Sprintf(" 相關係數: %.3f", p.Corr)
	}

	inner := chart.ContinuousSeries{
		XValues: xs,
		YValues: ys,
		Style:   dotStyle(chart.ColorBlue.WithAlpha(180), 7),
	}
	series := []chart.Series{inner}
	if len(xs) > 1 && hasSpread(xs) {
		series = append(series, &chart.LinearRegressionSeries{
			InnerSeries: inner,
			Style:       lineStyle(chart.ColorBlue, 2, false),
		})
	}
	if len(notes) > 0 {
		series = append(series, chart.AnnotationSeries{
			Annotations: notes,
			Style:       chart.Style{FontSize: 8},
		})
	}

	return chart.Chart{
		Title:      title,
		TitleStyle: chart.Style{FontSize: 11},
		Font:       r.font,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 24, Bottom: 16}},
		XAxis:      chart.XAxis{Name: p.XLabel, Range: paddedRange(xs)},
		YAxis:      chart.YAxis{Name: p.YLabel, Range: paddedRange(ys)},
		Series:     series,
	}
}

// Bubble draws a scatter whose dot size and viridis color encode two extra variables.
func (r *Renderer) Bubble(ctx context.Context, name string, b Bubble) (string, error) {
	var xs, ys, sizes, hues []float64
	var notes []chart.Value2
	for _, p := range b.Points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) {
			continue
		}
		xs = append(xs, p.X)
		ys = append(ys, p.Y)
		sizes = append(sizes, p.Size)
		hues = append(hues, p.Color)
		notes = append(notes, chart.Value2{XValue: p.X, YValue: p.Y, Label: p.Label})
	}
	if len(xs) == 0 {
		return "", errors.NewValidationError("no bubbles to draw").WithContext("chart", name)
	}

	sizeLo, sizeHi := analysis.Range(sizes)
	hueLo, hueHi := analysis.Range(hues)
	if hueHi == hueLo {
		hueHi = hueLo + 1
	}

	bubbles := chart.ContinuousSeries{
		Name:    fmt.Sprintf("氣泡大小: %s, 顏色: %s", b.SizeLabel, b.ColorName),
		XValues: xs,
		YValues: ys,
		Style: chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidthProvider: func(_, _ chart.Range, index int, _, _ float64) float64 {
				return scaleSize(sizes[index], sizeLo, sizeHi)
			},
			DotColorProvider: func(_, _ chart.Range, index int, _, _ float64) drawing.Color {
				return chart.Viridis(zeroNaN(hues[index]), hueLo, hueHi).WithAlpha(190)
			},
		},
	}

	c := chart.Chart{
		Title:      b.Title,
		TitleStyle: r.titleStyle(),
		Width:      r.width,
		Height:     r.height,
		Font:       r.font,
		Background: chart.Style{Padding: chart.Box{Top: 50, Left: 20, Right: 40, Bottom: 20}},
		XAxis:      chart.XAxis{Name: b.XLabel, Range: paddedRange(xs)},
		YAxis:      chart.YAxis{Name: b.YLabel, Range: paddedRange(ys)},
		Series: []chart.Series{
			bubbles,
			chart.AnnotationSeries{Annotations: notes, Style: chart.Style{FontSize: 9}},
		},
	}
	c.Elements = []chart.Renderable{chart.LegendThin(&c)}
	return r.save(ctx, name, c)
}

// scaleSize maps v onto a dot radius between 4 and 28 pixels.
func scaleSize(v, lo, hi float64) float64 {
	if math.IsNaN(v) || hi <= lo {
		return 12
	}
	return 4 + (v-lo)/(hi-lo)*24
}

func hasSpread(xs []float64) bool {
	lo, hi := analysis.Range(xs)
	return hi > lo
}
