package report

import (
	"fmt"
	"strconv"

	"edusight/internal/analysis"
	"edusight/internal/dataprocessing"
	"edusight/pkg/contracts/domain"
)

// Correlation is a labelled Pearson coefficient.
type Correlation struct {
	Label string
	Value float64
}

// ScoreDiagnostics prints the size of the loaded score data and the number
// of students per grade.
func (p *Printer) ScoreDiagnostics(scores []domain.StudentScore) {
	p.Success("成績資料載入成功，共 %d 筆", len(scores))
	p.Line("學校數量: %d", len(analysis.SchoolNames(scores)))

	counts := map[int]int{}
	for _, s := range scores {
		counts[s.Grade]++
	}
	var rows [][]string
	for _, g := range analysis.Grades(scores) {
		rows = append(rows, []string{strconv.Itoa(g), strconv.Itoa(counts[g])})
	}
	p.Line("年級分布:")
	p.Table([]string{"年級", "人數"}, rows)
}

// SchoolMeans prints the mean score rate of each school.
func (p *Printer) SchoolMeans(means []domain.SchoolScore) {
	p.Section("各學校平均得分率")
	rows := make([][]string, len(means))
	for i, m := range means {
		rows[i] = []string{m.SchoolName, num(m.ScoreRate, 3)}
	}
	p.Table([]string{"學校名稱", "總得分率"}, rows)
}

// GradeMeans prints the mean score rate per grade.
func (p *Printer) GradeMeans(means []analysis.GradeMean) {
	p.Section("各年級平均得分率")
	rows := make([][]string, len(means))
	for i, m := range means {
		rows[i] = []string{strconv.Itoa(m.Grade), num(m.Mean, 3), strconv.Itoa(m.Count)}
	}
	p.Table([]string{"年級", "總得分率", "人數"}, rows)
}

// WorkbookStats prints the coverage and value ranges of the usage rows.
func (p *Printer) WorkbookStats(records []domain.UsageRecord) {
	p.Section("力宇平台數據統計")
	usage := make([]float64, len(records))
	practice := make([]float64, len(records))
	for i, r := range records {
		usage[i] = r.PlatformUsage()
		practice[i] = r.PracticeAvgScore
	}
	uLo, uHi := analysis.Range(usage)
	pLo, pHi := analysis.Range(practice)

	p.KV(
		[2]string{"涵蓋學校數", strconv.Itoa(analysis.UsageSchools(records))},
		[2]string{"涵蓋年級", fmt.Sprint(analysis.UsageGrades(records))},
		[2]string{"平台使用量範圍", rangeOf(uLo, uHi, 1)},
		[2]string{"自我練習平均成績範圍", rangeOf(pLo, pHi, 1)},
	)
}

// UsageSummary prints the per-school usage table and the overview.
func (p *Printer) UsageSummary(summaries []domain.SchoolUsageSummary, o analysis.UsageOverview) {
	p.Section("力宇教育平台學校使用摘要")
	rows := make([][]string, len(summaries))
	for i, s := range summaries {
		avg := "N/A"
		if s.AvgPracticeScore > 0 {
			avg = num(s.AvgPracticeScore, 1)
		}
		rows[i] = []string{
			s.SchoolName,
			strconv.Itoa(s.Students),
			num(s.TotalQuestions, 0),
			num(s.TotalTests, 0),
			avg,
			num(s.TotalVideos(), 0),
			num(s.TotalHours, 0),
			num(s.TotalUsage, 0),
		}
	}
	p.Table([]string{"學校名稱", "學生數", "練習題數", "測驗卷數", "平均成績", "影片總數", "累積時數", "平台使用量"}, rows)

	p.Section("統計摘要")
	pairs := [][2]string{
		{"總學校數", strconv.Itoa(o.Schools)},
		{"有使用力宇平台的學校數", strconv.Itoa(o.ActiveSchools)},
		{"平台使用率", num(o.UsageRate, 1) + "%"},
	}
	if o.ActiveSchools > 0 {
		pairs = append(pairs,
			[2]string{"平均每校使用量", num(o.AvgUsage, 1)},
			[2]string{"最高使用量學校", fmt.Sprintf("%s (%s)", o.TopSchool, num(o.TopUsage, 0))},
			[2]string{"平均練習成績範圍", rangeOf(o.PracticeMin, o.PracticeMax, 1)},
		)
	}
	p.KV(pairs...)
}

// NameChanges prints the names rewritten by normalization.
func (p *Printer) NameChanges(title string, changes []dataprocessing.NameChange) {
	p.Line("%s:", title)
	if len(changes) == 0 {
		p.Line("  (無變更)")
		return
	}
	for _, c := range changes {
		p.Line("  %s -> %s", c.Original, c.Normalized)
	}
}

// MatchedSchools prints the pairs of source names that were joined.
func (p *Printer) MatchedSchools(pairs [][2]string) {
	p.Success("成功合併的學校 (%d 所):", len(pairs))
	for _, pair := range pairs {
		p.Item("%s <-> %s", pair[0], pair[1])
	}
}

// Correlations prints one line per coefficient.
func (p *Printer) Correlations(title string, corrs []Correlation) {
	p.Section(title)
	for _, c := range corrs {
		p.Success("%s 相關係數: %s", c.Label, num(c.Value, 3))
	}
}

// Comparison prints the ranked school comparison table.
func (p *Printer) Comparison(rows []analysis.ComparisonRow) {
	p.Section("各學校詳細統計")
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = []string{
			r.School,
			num(r.PlatformUsage, 3),
			num(r.PracticeScore, 3),
			num(r.VideoUsage, 3),
			num(r.VideoHours, 3),
			num(r.ScoreRate, 3),
			num(r.UsageRank, 1),
			num(r.ScoreRank, 1),
		}
	}
	p.Table([]string{"學校名稱_標準", "平台使用量", "自我練習平均成績", "影片使用量", "累積影片總時數", "總得分率", "平台使用量排名", "測驗得分率排名"}, out)
}

// MedianSplit prints the high-scoring schools split by usage.
func (p *Printer) MedianSplit(highUsage, lowUsage []analysis.SchoolComparison) {
	p.Section("表現分析")
	if len(highUsage) > 0 {
		p.Line("高使用量+高成績學校 (%d 所):", len(highUsage))
		for _, s := range highUsage {
			p.Item("%s: 使用量 %s, 得分率 %s", s.Name, num(s.Usage.PlatformUsage, 1), num(s.ScoreRate, 3))
		}
	}
	if len(lowUsage) > 0 {
		p.Line("低使用量但高成績學校 (%d 所):", len(lowUsage))
		for _, s := range lowUsage {
			p.Item("%s: 使用量 %s, 得分率 %s", s.Name, num(s.Usage.PlatformUsage, 1), num(s.ScoreRate, 3))
		}
	}
	if len(highUsage) == 0 && len(lowUsage) == 0 {
		p.Line("沒有高於中位數成績的學校")
	}
}

// Outputs lists the files a command produced.
func (p *Printer) Outputs(paths []string) {
	if len(paths) == 0 {
		return
	}
	p.Line("\n已生成的檔案:")
	for _, path := range paths {
		p.Item("%s", path)
	}
}
