package charts

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"edusight/internal/analysis"
	"edusight/pkg/contracts/domain"
)

// Chart file names.
const (
	GradeMeansPNG        = "不同年級數學能力比較.png"
	GradeDistributionPNG = "不同年級數學能力分布.png"
	GenderMeansPNG       = "性別對數學成績的影響.png"
	GenderSpreadPNG      = "各年級性別成績分布.png"
	GradeSchoolPNGFormat = "%d年級學校間數學表現差異.png"
	UsageScatterPNG      = "平台使用量_vs_成績.png"
	PlatformPanelsPNG    = "力宇平台表現與學力測驗關係.png"
	PlatformBubblePNG    = "力宇平台多維關係分析.png"
	UsageSummaryPNG      = "力宇平台使用統計視覺化.png"
	TaskPanelsPNG        = "康軒平台表現與學力測驗關係.png"
	TaskBubblePNG        = "康軒平台表現與學力測驗多維關係.png"
)

var genderColors = map[string]drawing.Color{
	"男": drawing.ColorFromHex("e41a1c"),
	"女": drawing.ColorFromHex("377eb8"),
}

// GradeMeans draws one bar per grade with the mean score rate.
func (r *Renderer) GradeMeans(ctx context.Context, means []analysis.GradeMean) (string, error) {
	colors := palette(len(means))
	bars := make([]chart.Value, len(means))
	for i, m := range means {
		bars[i] = chart.Value{
			Label: fmt.Sprintf("%d年級 %.2f", m.Grade, m.Mean),
			Value: zeroNaN(m.Mean),
			Style: chart.Style{FillColor: colors[i], StrokeColor: colors[i]},
		}
	}

	c := chart.BarChart{
		Title:      "不同年級的平均數學得分率比較",
		TitleStyle: r.titleStyle(),
		Width:      r.width,
		Height:     r.height,
		Font:       r.font,
		BarWidth:   barWidth(r.width, len(bars)),
		YAxis: chart.YAxis{
			Name:           "總得分率",
			Range:          &chart.ContinuousRange{Min: 0, Max: 1},
			ValueFormatter: fmtFloat("%.1f"),
		},
		Bars: bars,
	}
	return r.save(ctx, GradeMeansPNG, c)
}

// GradeDistribution draws each student's score as a jittered dot per grade.
func (r *Renderer) GradeDistribution(ctx context.Context, byGrade map[int][]float64) (string, error) {
	grades := make([]int, 0, len(byGrade))
	for g := range byGrade {
		grades = append(grades, g)
	}
	sort.Ints(grades)

	colors := palette(len(grades))
	var series []chart.Series
	var ticks []chart.Tick
	for i, g := range grades {
		ticks = append(ticks, chart.Tick{Value: float64(g), Label: fmt.Sprintf("%d年級", g)})
		if len(byGrade[g]) == 0 {
			continue
		}
		xs, ys := strip(float64(g), 0.3, byGrade[g])
		mean := analysis.Mean(byGrade[g])
		series = append(series,
			chart.ContinuousSeries{
				Name:    fmt.Sprintf("%d年級", g),
				XValues: xs,
				YValues: ys,
				Style:   dotStyle(colors[i].WithAlpha(140), 3),
			},
			chart.ContinuousSeries{
				XValues: []float64{float64(g) - 0.35, float64(g) + 0.35},
				YValues: []float64{mean, mean},
				Style:   lineStyle(drawing.ColorBlack, 2, false),
			},
		)
	}

	c := chart.Chart{
		Title:      "不同年級數學得分率分布",
		TitleStyle: r.titleStyle(),
		Width:      r.width,
		Height:     r.height,
		Font:       r.font,
		XAxis:      chart.XAxis{Name: "年級", Ticks: ticks, Range: gradeRange(grades)},
		YAxis:      chart.YAxis{Name: "總得分率", Range: &chart.ContinuousRange{Min: 0, Max: 1}},
		Series:     series,
	}
	return r.save(ctx, GradeDistributionPNG, c)
}

// GenderByGrade draws paired bars for each grade and gender.
func (r *Renderer) GenderByGrade(ctx context.Context, means []analysis.GradeGenderMean) (string, error) {
	bars := make([]chart.Value, len(means))
	for i, m := range means {
		col := genderColors[m.Gender]
		bars[i] = chart.Value{
			Label: fmt.Sprintf("%d年級%s", m.Grade, m.Gender),
			Value: zeroNaN(m.Mean),
			Style: chart.Style{FillColor: col, StrokeColor: col},
		}
	}

	c := chart.BarChart{
		Title:      "不同性別在各年級的平均數學得分率比較",
		TitleStyle: r.titleStyle(),
		Width:      r.width,
		Height:     r.height,
		Font:       r.font,
		BarWidth:   barWidth(r.width, len(bars)),
		YAxis: chart.YAxis{
			Name:           "總得分率",
			Range:          &chart.ContinuousRange{Min: 0, Max: 1},
			ValueFormatter: fmtFloat("%.1f"),
		},
		Bars: bars,
	}
	return r.save(ctx, GenderMeansPNG, c)
}

// GenderSpread draws male and female scores side by side within each grade.
func (r *Renderer) GenderSpread(ctx context.Context, scores []domain.StudentScore) (string, error) {
	type key struct {
		grade  int
		gender string
	}
	groups := map[key][]float64{}
	for _, s := range scores {
		if label := s.GenderLabel(); label != "" && s.HasScore() {
			k := key{s.Grade, label}
			groups[k] = append(groups[k], s.ScoreRate)
		}
	}
	grades := analysis.Grades(scores)

	var series []chart.Series
	var ticks []chart.Tick
	for _, gender := range []string{"男", "女"} {
		var xs, ys []float64
		offset := -0.2
		if gender == "女" {
			offset = 0.2
		}
		for _, g := range grades {
			gx, gy := strip(float64(g)+offset, 0.15, groups[key{g, gender}])
			xs = append(xs, gx...)
			ys = append(ys, gy...)
		}
		if len(xs) == 0 {
			continue
		}
		series = append(series, chart.ContinuousSeries{
			Name:    gender,
			XValues: xs,
			YValues: ys,
			Style:   dotStyle(genderColors[gender].WithAlpha(150), 3),
		})
	}
	for _, g := range grades {
		ticks = append(ticks, chart.Tick{Value: float64(g), Label: fmt.Sprintf("%d年級", g)})
	}

	c := chart.Chart{
		Title:      "各年級性別成績分布",
		TitleStyle: r.titleStyle(),
		Width:      r.width,
		Height:     r.height,
		Font:       r.font,
		XAxis:      chart.XAxis{Name: "年級", Ticks: ticks, Range: gradeRange(grades)},
		YAxis:      chart.YAxis{Name: "總得分率", Range: &chart.ContinuousRange{Min: 0, Max: 1}},
		Series:     series,
	}
	c.Elements = []chart.Renderable{chart.Legend(&c)}
	return r.save(ctx, GenderSpreadPNG, c)
}

// GradeSchools draws the school means of one grade, lowest first.
func (r *Renderer) GradeSchools(ctx context.Context, grade int, means []domain.SchoolScore) (string, error) {
	colors := palette(len(means))
	bars := make([]chart.Value, len(means))
	values := make([]float64, len(means))
	for i, m := range means {
		bars[i] = chart.Value{
			Label: fmt.Sprintf("%s %.2f", m.SchoolName, m.ScoreRate),
			Value: zeroNaN(m.ScoreRate),
			Style: chart.Style{FillColor: colors[i], StrokeColor: colors[i]},
		}
		values[i] = m.ScoreRate
	}

	c := chart.BarChart{
		Title:      fmt.Sprintf("%d年級各學校的平均數學得分率", grade),
		TitleStyle: r.titleStyle(),
		Width:      r.width,
		Height:     r.height,
		Font:       r.font,
		BarWidth:   barWidth(r.width, len(bars)),
		YAxis: chart.YAxis{
			Name:           "總得分率",
			Range:          barRange(values, 1),
			ValueFormatter: fmtFloat("%.2f"),
		},
		Bars: bars,
	}
	return r.save(ctx, fmt.Sprintf(GradeSchoolPNGFormat, grade), c)
}

// strip spreads values horizontally around x with a deterministic jitter.
func strip(x, width float64, values []float64) (xs, ys []float64) {
	for i, v := range values {
		jitter := (float64((i*37)%21)/20 - 0.5) * width
		xs = append(xs, x+jitter)
		ys = append(ys, v)
	}
	return xs, ys
}

func gradeRange(grades []int) *chart.ContinuousRange {
	if len(grades) == 0 {
		return &chart.ContinuousRange{Min: 0, Max: 1}
	}
	return &chart.ContinuousRange{Min: float64(grades[0]) - 0.7, Max: float64(grades[len(grades)-1]) + 0.7}
}

func barWidth(width, n int) int {
	if n == 0 {
		return 40
	}
	w := width / (n * 2)
	return max(min(w, 120), 12)
}

func zeroNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
