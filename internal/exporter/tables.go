package exporter

import (
	"fmt"

	"edusight/internal/analysis"
	"edusight/internal/config"
	"edusight/pkg/contracts/domain"
)

// Table is a named set of rows written as one CSV file and, when the
// summary workbook is enabled, as one sheet.
type Table struct {
	File    string
	Sheet   string
	Headers []string
	Records [][]string
}

// Summary column names of the per-school usage table.
const (
	colTotalQuestions    = "總練習題目數"
	colTotalTests        = "總測驗卷數"
	colAvgPracticeScore  = "平均練習成績"
	colTotalAssigned     = "總指派影片數"
	colTotalSelfVideos   = "總自選影片數"
	colTotalHours        = "累積總時數"
	colStudents          = "學生人數"
	colTotalUsage        = "總平台使用量"
	colQuestionsPerPupil = "平均每生練習題數"
	colVideosPerPupil    = "平均每生影片數"
	colHoursPerPupil     = "平均每生時數"
)

// SchoolScoresTable lists the mean score rate of every school.
func SchoolScoresTable(scores []domain.SchoolScore) Table {
	t := Table{
		File:    config.ScoreSummaryCSV,
		Sheet:   "test_scores",
		Headers: []string{config.ColSchoolName, config.ColScoreRate},
	}
	for _, s := range scores {
		t.Records = append(t.Records, []string{s.SchoolName, formatFloat(s.ScoreRate)})
	}
	return t
}

// PlatformMeansTable lists the per-school platform means.
func PlatformMeansTable(means []domain.SchoolUsageMeans) Table {
	t := Table{
		File:  config.PlatformMeansCSV,
		Sheet: "platform_means",
		Headers: []string{
			config.ColSchoolName,
			config.ColPlatformUsage,
			config.ColPracticeAvgScore,
			config.ColVideoUsage,
			config.ColVideoHours,
			config.ColAssignedVideos,
			config.ColSelfVideos,
			config.ColPracticeQuestions,
			config.ColSelfTests,
		},
	}
	for _, m := range means {
		t.Records = append(t.Records, []string{
			m.SchoolName,
			formatFloat(m.PlatformUsage),
			formatFloat(m.PracticeAvgScore),
			formatFloat(m.VideoUsage),
			formatFloat(m.VideoHours),
			formatFloat(m.AssignedVideos),
			formatFloat(m.SelfVideos),
			formatFloat(m.PracticeQuestions),
			formatFloat(m.SelfTests),
		})
	}
	return t
}

// UsageSummaryTable lists the per-sheet usage totals in the given order.
func UsageSummaryTable(summaries []domain.SchoolUsageSummary) Table {
	t := Table{
		File:  config.UsageSummaryCSV,
		Sheet: "usage_summary",
		Headers: []string{
			config.ColSchoolName,
			colTotalQuestions,
			colTotalTests,
			colAvgPracticeScore,
			colTotalAssigned,
			colTotalSelfVideos,
			colTotalHours,
			colStudents,
			colTotalUsage,
			colQuestionsPerPupil,
			colVideosPerPupil,
			colHoursPerPupil,
		},
	}
	for _, s := range summaries {
		t.Records = append(t.Records, []string{
			s.SchoolName,
			formatFloat(s.TotalQuestions),
			formatFloat(s.TotalTests),
			formatFloat(s.AvgPracticeScore),
			formatFloat(s.TotalAssigned),
			formatFloat(s.TotalSelfVideos),
			formatFloat(s.TotalHours),
			formatInt(s.Students),
			formatFloat(s.TotalUsage),
			formatFloat(s.QuestionsPerPupil),
			formatFloat(s.VideosPerPupil),
			formatFloat(s.HoursPerPupil),
		})
	}
	return t
}

// ComparisonTable lists the school comparison with both rankings.
func ComparisonTable(rows []analysis.ComparisonRow) Table {
	t := Table{
		File:  config.SchoolComparisonCSV,
		Sheet: "comparison",
		Headers: []string{
			config.ColNormalizedName,
			config.ColPlatformUsage,
			config.ColPracticeAvgScore,
			config.ColVideoUsage,
			config.ColVideoHours,
			config.ColScoreRate,
			config.ColUsageRank,
			config.ColScoreRank,
		},
	}
	for _, r := range rows {
		t.Records = append(t.Records, []string{
			r.School,
			formatFloat(r.PlatformUsage),
			formatFloat(r.PracticeScore),
			formatFloat(r.VideoUsage),
			formatFloat(r.VideoHours),
			formatFloat(r.ScoreRate),
			formatFloat(r.UsageRank),
			formatFloat(r.ScoreRank),
		})
	}
	return t
}

// PivotTable lays out school by grade mean score rates. Missing cells are empty.
func PivotTable(p analysis.Pivot) Table {
	t := Table{
		File:    config.SchoolGradePivotCSV,
		Sheet:   "school_grade",
		Headers: []string{config.ColSchoolName},
	}
	for _, g := range p.Grades {
		t.Headers = append(t.Headers, fmt.Sprintf("%d%s", g, config.ColGrade))
	}
	for i, school := range p.Schools {
		row := []string{school}
		for j := range p.Grades {
			row = append(row, formatFloat(p.Values[i][j]))
		}
		t.Records = append(t.Records, row)
	}
	return t
}
