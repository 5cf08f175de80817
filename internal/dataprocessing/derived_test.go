package dataprocessing

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edusight/internal/errors"
)

func TestLoadSchoolScores(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "test_scores.csv",
		[]byte("\xEF\xBB\xBF學校名稱,總得分率\n金城國中,0.71\n賢庵國小含垵湖分校,\n"))

	scores, err := testLoader().LoadSchoolScores(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, "金城國中", scores[0].SchoolName)
	assert.InDelta(t, 0.71, scores[0].ScoreRate, 1e-9)
	assert.True(t, math.IsNaN(scores[1].ScoreRate))
}

func TestLoadSchoolScoresMissingColumn(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "test_scores.csv", []byte("學校,分數\nA,1\n"))

	_, err := testLoader().LoadSchoolScores(context.Background(), path)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
}

func TestLoadSchoolUsageMeans(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "liyou_platform_data.csv", []byte(
		"學校名稱,平台使用量,自我練習平均成績,影片使用量,累積影片總時數,完成老師指派影片數,自我點播影片數,自我練習題目數,自我測驗卷數\n"+
			"縣立金城國中,120.5,80.25,30,12.5,20,10,95.5,5\n"))

	means, err := testLoader().LoadSchoolUsageMeans(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, means, 1)
	m := means[0]
	assert.Equal(t, "縣立金城國中", m.SchoolName)
	assert.Equal(t, 120.5, m.PlatformUsage)
	assert.Equal(t, 80.25, m.PracticeAvgScore)
	assert.Equal(t, 30.0, m.VideoUsage)
	assert.Equal(t, 12.5, m.VideoHours)
	assert.Equal(t, 20.0, m.AssignedVideos)
	assert.Equal(t, 10.0, m.SelfVideos)
	assert.Equal(t, 95.5, m.PracticeQuestions)
	assert.Equal(t, 5.0, m.SelfTests)
}

func TestLoadTaskPlatform(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "platform_data.csv", []byte(
		"學校名稱,整體數學完成率,平均數學正答率\n"+
			"金城國中,85.5%,72%\n"+
			"金湖國小,40%,N/A\n"))

	records, err := testLoader().LoadTaskPlatform(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 85.5, records[0].CompletionRate)
	assert.Equal(t, 72.0, records[0].AccuracyRate)
	assert.Equal(t, 40.0, records[1].CompletionRate)
	assert.True(t, math.IsNaN(records[1].AccuracyRate))
}
