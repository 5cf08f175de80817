package exporter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edusight/internal/analysis"
	"edusight/internal/config"
	"edusight/pkg/contracts/domain"
)

func TestSchoolScoresTable(t *testing.T) {
	table := SchoolScoresTable([]domain.SchoolScore{
		{SchoolName: "金城國中", ScoreRate: 0.625},
		{SchoolName: "烈嶼國中", ScoreRate: math.NaN()},
	})

	assert.Equal(t, config.ScoreSummaryCSV, table.File)
	assert.Equal(t, []string{"學校名稱", "總得分率"}, table.Headers)
	assert.Equal(t, [][]string{{"金城國中", "0.625"}, {"烈嶼國中", ""}}, table.Records)
}

func TestPlatformMeansTable(t *testing.T) {
	table := PlatformMeansTable([]domain.SchoolUsageMeans{{
		SchoolName:        "縣立金城國中",
		PlatformUsage:     12.5,
		PracticeAvgScore:  80,
		VideoUsage:        3,
		VideoHours:        1.25,
		AssignedVideos:    2,
		SelfVideos:        1,
		PracticeQuestions: 8.5,
		SelfTests:         2,
	}})

	assert.Equal(t, config.PlatformMeansCSV, table.File)
	require.Len(t, table.Headers, 9)
	assert.Equal(t, config.ColPlatformUsage, table.Headers[1])
	assert.Equal(t, []string{"縣立金城國中", "12.5", "80.0", "3.0", "1.25", "2.0", "1.0", "8.5", "2.0"}, table.Records[0])
}

func TestUsageSummaryTable(t *testing.T) {
	table := UsageSummaryTable([]domain.SchoolUsageSummary{{
		SchoolName:        "金湖國小",
		TotalQuestions:    100,
		TotalTests:        5,
		AvgPracticeScore:  72.5,
		TotalAssigned:     10,
		TotalSelfVideos:   4,
		TotalHours:        6.5,
		Students:          20,
		TotalUsage:        119,
		QuestionsPerPupil: 5,
		VideosPerPupil:    0.7,
		HoursPerPupil:     0.325,
	}})

	assert.Equal(t, "總平台使用量", table.Headers[8])
	assert.Equal(t, "20", table.Records[0][7])
	assert.Equal(t, "119.0", table.Records[0][8])
	assert.Equal(t, "0.325", table.Records[0][11])
}

func TestComparisonTable(t *testing.T) {
	table := ComparisonTable([]analysis.ComparisonRow{
		{School: "金城國中", PlatformUsage: 10, ScoreRate: 0.6, UsageRank: 1, ScoreRank: 1.5},
	})

	assert.Equal(t, config.SchoolComparisonCSV, table.File)
	assert.Equal(t, config.ColNormalizedName, table.Headers[0])
	assert.Equal(t, []string{"金城國中", "10.0", "0.0", "0.0", "0.0", "0.6", "1.0", "1.5"}, table.Records[0])
}

func TestPivotTable(t *testing.T) {
	table := PivotTable(analysis.Pivot{
		Schools: []string{"A", "B"},
		Grades:  []int{3, 4},
		Values:  [][]float64{{0.5, math.NaN()}, {0.25, 0.75}},
	})

	assert.Equal(t, []string{"學校名稱", "3年級", "4年級"}, table.Headers)
	assert.Equal(t, [][]string{{"A", "0.5", ""}, {"B", "0.25", "0.75"}}, table.Records)
}
