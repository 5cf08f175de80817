package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edusight/internal/dataprocessing"
	"edusight/pkg/contracts/domain"
)

func TestJoinStudentsUsage(t *testing.T) {
	scores := []domain.StudentScore{
		student("金城國小", 3, 1, 0.5),
		student("金城國小", 4, 2, 0.6),
		student("金湖國小", 3, 1, 0.7),
	}
	usage := []domain.UsageRecord{
		{SchoolName: "金城國小", Grade: 3, AssignedVideos: 1},
		{SchoolName: "金城國小", Grade: 3, AssignedVideos: 2},
		{SchoolName: "金湖國小", Grade: 4, AssignedVideos: 3},
	}

	joined := JoinStudentsUsage(scores, usage)
	require.Len(t, joined, 2, "many-to-many on school and grade")
	assert.Equal(t, 1.0, joined[0].Usage.AssignedVideos)
	assert.Equal(t, 2.0, joined[1].Usage.AssignedVideos)
	assert.Equal(t, 0.5, joined[1].Student.ScoreRate)

	grades, groups := GradeRegressionGroups(joined)
	assert.Equal(t, []int{3}, grades)
	assert.Len(t, groups[3], 2)

	assert.Empty(t, JoinStudentsUsage(scores, nil))
}

func comparisonFixture() []SchoolComparison {
	means := []domain.SchoolUsageMeans{
		{SchoolName: "縣立金城國中", PlatformUsage: 100, PracticeAvgScore: 80, VideoUsage: 20, VideoHours: 5},
		{SchoolName: "縣立金湖國中", PlatformUsage: 50, PracticeAvgScore: 70, VideoUsage: 10, VideoHours: 3},
		{SchoolName: "賢庵國小", PlatformUsage: 10, PracticeAvgScore: 60, VideoUsage: 2, VideoHours: 1},
		{SchoolName: "縣立烈嶼國中", PlatformUsage: 30, PracticeAvgScore: 65, VideoUsage: 4, VideoHours: 2},
		{SchoolName: "縣立不存在國小", PlatformUsage: 1},
	}
	scores := []domain.SchoolScore{
		{SchoolName: "金城國中", ScoreRate: 0.8},
		{SchoolName: "金湖國中", ScoreRate: 0.6},
		{SchoolName: "賢庵國小含垵湖分校", ScoreRate: 0.75},
		{SchoolName: "烈嶼國中", ScoreRate: math.NaN()},
	}
	return JoinSchoolUsage(means, scores, dataprocessing.NewNormalizer(nil, nil))
}

func TestJoinSchoolUsage(t *testing.T) {
	rows := comparisonFixture()
	require.Len(t, rows, 4)
	assert.Equal(t, "金城國中", rows[0].Name)
	assert.Equal(t, "縣立金城國中", rows[0].PlatformName)
	assert.Equal(t, "金城國中", rows[0].ScoreName)
	assert.Equal(t, "賢庵國小", rows[2].Name)
	assert.Equal(t, "賢庵國小含垵湖分校", rows[2].ScoreName)

	complete := CompleteComparisons(rows)
	assert.Len(t, complete, 3)
}

func TestCorrelateSchoolUsage(t *testing.T) {
	rows := CompleteComparisons(comparisonFixture())
	c := CorrelateSchoolUsage(rows)

	assert.False(t, math.IsNaN(c.PlatformUsage))
	assert.InDelta(t, Pearson([]float64{100, 50, 10}, []float64{0.8, 0.6, 0.75}), c.PlatformUsage, 1e-12)
	assert.InDelta(t, Pearson([]float64{5, 3, 1}, []float64{0.8, 0.6, 0.75}), c.VideoHours, 1e-12)
}

func TestComparisonTable(t *testing.T) {
	rows := CompleteComparisons(comparisonFixture())
	rows = append(rows, rows[0]) // duplicate key keeps the first row

	table := ComparisonTable(rows)
	require.Len(t, table, 3)

	byName := map[string]ComparisonRow{}
	for _, r := range table {
		byName[r.School] = r
	}
	assert.Equal(t, 1.0, byName["金城國中"].UsageRank)
	assert.Equal(t, 1.0, byName["金城國中"].ScoreRank)
	assert.Equal(t, 2.0, byName["金湖國中"].UsageRank)
	assert.Equal(t, 3.0, byName["金湖國中"].ScoreRank)
	assert.Equal(t, 3.0, byName["賢庵國小"].UsageRank)
	assert.Equal(t, 2.0, byName["賢庵國小"].ScoreRank)
}

func TestMedianSplit(t *testing.T) {
	rows := []SchoolComparison{
		{Name: "A", Usage: domain.SchoolUsageMeans{PlatformUsage: 100}, ScoreRate: 0.9},
		{Name: "B", Usage: domain.SchoolUsageMeans{PlatformUsage: 10}, ScoreRate: 0.8},
		{Name: "C", Usage: domain.SchoolUsageMeans{PlatformUsage: 50}, ScoreRate: 0.5},
		{Name: "D", Usage: domain.SchoolUsageMeans{PlatformUsage: 80}, ScoreRate: 0.4},
	}

	high, low := MedianSplit(rows)
	require.Len(t, high, 1)
	assert.Equal(t, "A", high[0].Name)
	require.Len(t, low, 1)
	assert.Equal(t, "B", low[0].Name)
}

func TestJoinSchoolTasks(t *testing.T) {
	tasks := []domain.TaskPlatformRecord{
		{SchoolName: "縣立金城國中", CompletionRate: 90, AccuracyRate: 70},
		{SchoolName: "金湖國中", CompletionRate: 40, AccuracyRate: math.NaN()},
		{SchoolName: "賢庵國小", CompletionRate: 60, AccuracyRate: 65},
		{SchoolName: "金寧國中", CompletionRate: 20, AccuracyRate: 50},
	}
	scores := []domain.SchoolScore{
		{SchoolName: "金城國中", ScoreRate: 0.8},
		{SchoolName: "金湖國中", ScoreRate: 0.5},
		{SchoolName: "賢庵國小含垵湖分校", ScoreRate: 0.7},
		{SchoolName: "金寧國中", ScoreRate: 0.4},
	}

	rows := JoinSchoolTasks(tasks, scores, dataprocessing.NewNormalizer(nil, nil))
	require.Len(t, rows, 4)

	complete := CompleteTasks(rows)
	require.Len(t, complete, 3)

	completion, accuracy := CorrelateTasks(complete)
	assert.InDelta(t, Pearson([]float64{90, 60, 20}, []float64{0.8, 0.7, 0.4}), completion, 1e-12)
	assert.InDelta(t, Pearson([]float64{70, 65, 50}, []float64{0.8, 0.7, 0.4}), accuracy, 1e-12)
}
