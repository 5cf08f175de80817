package analysis

import (
	"math"
	"sort"

	"edusight/internal/dataprocessing"
	"edusight/pkg/contracts/domain"
)

// StudentUsage pairs a student's score with a usage row of the same school and grade.
type StudentUsage struct {
	Student domain.StudentScore
	Usage   domain.UsageRecord
}

// SchoolComparison joins a school's platform means with its mean score rate.
type SchoolComparison struct {
	Name         string // normalized join key
	PlatformName string
	ScoreName    string
	Usage        domain.SchoolUsageMeans
	ScoreRate    float64
}

// SchoolTask joins a school's task platform rates with its mean score rate.
type SchoolTask struct {
	Name           string
	PlatformName   string
	ScoreName      string
	CompletionRate float64
	AccuracyRate   float64
	ScoreRate      float64
}

// UsageCorrelations are the school-level correlations with the score rate.
type UsageCorrelations struct {
	PlatformUsage float64
	PracticeScore float64
	VideoUsage    float64
	VideoHours    float64
}

// ComparisonRow is one line of the school comparison table.
type ComparisonRow struct {
	School        string
	PlatformUsage float64
	PracticeScore float64
	VideoUsage    float64
	VideoHours    float64
	ScoreRate     float64
	UsageRank     float64
	ScoreRank     float64
}

// JoinStudentsUsage inner-joins students with usage rows on school name and
// grade. Every matching pair is returned, in student order.
func JoinStudentsUsage(scores []domain.StudentScore, usage []domain.UsageRecord) []StudentUsage {
	type key struct {
		school string
		grade  int
	}
	index := map[key][]domain.UsageRecord{}
	for _, u := range usage {
		k := key{u.SchoolName, u.Grade}
		index[k] = append(index[k], u)
	}

	var out []StudentUsage
	for _, s := range scores {
		for _, u := range index[key{s.SchoolName, s.Grade}] {
			out = append(out, StudentUsage{Student: s, Usage: u})
		}
	}
	return out
}

// JoinSchoolUsage inner-joins platform means and school scores on the
// normalized school name, in platform order.
func JoinSchoolUsage(means []domain.SchoolUsageMeans, scores []domain.SchoolScore, n *dataprocessing.Normalizer) []SchoolComparison {
	index := scoreIndex(scores, n)

	var out []SchoolComparison
	for _, m := range means {
		key := n.Platform(m.SchoolName)
		for _, s := range index[key] {
			out = append(out, SchoolComparison{
				Name:         key,
				PlatformName: m.SchoolName,
				ScoreName:    s.SchoolName,
				Usage:        m,
				ScoreRate:    s.ScoreRate,
			})
		}
	}
	return out
}

// JoinSchoolTasks inner-joins task platform records and school scores on
// the normalized school name, in platform order.
func JoinSchoolTasks(tasks []domain.TaskPlatformRecord, scores []domain.SchoolScore, n *dataprocessing.Normalizer) []SchoolTask {
	index := scoreIndex(scores, n)

	var out []SchoolTask
	for _, t := range tasks {
		key := n.Platform(t.SchoolName)
		for _, s := range index[key] {
			out = append(out, SchoolTask{
				Name:           key,
				PlatformName:   t.SchoolName,
				ScoreName:      s.SchoolName,
				CompletionRate: t.CompletionRate,
				AccuracyRate:   t.AccuracyRate,
				ScoreRate:      s.ScoreRate,
			})
		}
	}
	return out
}

func scoreIndex(scores []domain.SchoolScore, n *dataprocessing.Normalizer) map[string][]domain.SchoolScore {
	index := map[string][]domain.SchoolScore{}
	for _, s := range scores {
		key := n.Score(s.SchoolName)
		index[key] = append(index[key], s)
	}
	return index
}

// CompleteComparisons drops rows without platform usage or score rate.
func CompleteComparisons(rows []SchoolComparison) []SchoolComparison {
	var out []SchoolComparison
	for _, r := range rows {
		if !math.IsNaN(r.Usage.PlatformUsage) && !math.IsNaN(r.ScoreRate) {
			out = append(out, r)
		}
	}
	return out
}

// CompleteTasks drops rows missing either rate or the score rate.
func CompleteTasks(rows []SchoolTask) []SchoolTask {
	var out []SchoolTask
	for _, r := range rows {
		if !math.IsNaN(r.CompletionRate) && !math.IsNaN(r.AccuracyRate) && !math.IsNaN(r.ScoreRate) {
			out = append(out, r)
		}
	}
	return out
}

// CorrelateSchoolUsage correlates each platform measure with the score rate.
func CorrelateSchoolUsage(rows []SchoolComparison) UsageCorrelations {
	score := make([]float64, len(rows))
	usage := make([]float64, len(rows))
	practice := make([]float64, len(rows))
	video := make([]float64, len(rows))
	hours := make([]float64, len(rows))
	for i, r := range rows {
		score[i] = r.ScoreRate
		usage[i] = r.Usage.PlatformUsage
		practice[i] = r.Usage.PracticeAvgScore
		video[i] = r.Usage.VideoUsage
		hours[i] = r.Usage.VideoHours
	}
	return UsageCorrelations{
		PlatformUsage: Pearson(usage, score),
		PracticeScore: Pearson(practice, score),
		VideoUsage:    Pearson(video, score),
		VideoHours:    Pearson(hours, score),
	}
}

// CorrelateTasks returns the completion and accuracy correlations with the score rate.
func CorrelateTasks(rows []SchoolTask) (completion, accuracy float64) {
	comp := make([]float64, len(rows))
	acc := make([]float64, len(rows))
	score := make([]float64, len(rows))
	for i, r := range rows {
		comp[i] = r.CompletionRate
		acc[i] = r.AccuracyRate
		score[i] = r.ScoreRate
	}
	return Pearson(comp, score), Pearson(acc, score)
}

// ComparisonTable keeps the first row per normalized school, ordered by
// name, with values rounded to three decimals and descending ranks.
func ComparisonTable(rows []SchoolComparison) []ComparisonRow {
	first := map[string]SchoolComparison{}
	for _, r := range rows {
		if _, ok := first[r.Name]; !ok {
			first[r.Name] = r
		}
	}

	names := sortedStrings(first)
	out := make([]ComparisonRow, len(names))
	usage := make([]float64, len(names))
	score := make([]float64, len(names))
	for i, name := range names {
		r := first[name]
		out[i] = ComparisonRow{
			School:        name,
			PlatformUsage: Round(r.Usage.PlatformUsage, 3),
			PracticeScore: Round(r.Usage.PracticeAvgScore, 3),
			VideoUsage:    Round(r.Usage.VideoUsage, 3),
			VideoHours:    Round(r.Usage.VideoHours, 3),
			ScoreRate:     Round(r.ScoreRate, 3),
		}
		usage[i] = out[i].PlatformUsage
		score[i] = out[i].ScoreRate
	}

	usageRanks := Rank(usage)
	scoreRanks := Rank(score)
	for i := range out {
		out[i].UsageRank = usageRanks[i]
		out[i].ScoreRank = scoreRanks[i]
	}
	return out
}

// MedianSplit returns the schools above the median score rate, split into
// those above the median usage and those at or below it.
func MedianSplit(rows []SchoolComparison) (highUsage, lowUsage []SchoolComparison) {
	usage := make([]float64, len(rows))
	score := make([]float64, len(rows))
	for i, r := range rows {
		usage[i] = r.Usage.PlatformUsage
		score[i] = r.ScoreRate
	}
	usageMed, scoreMed := Median(usage), Median(score)

	for _, r := range rows {
		if math.IsNaN(r.ScoreRate) || r.ScoreRate <= scoreMed {
			continue
		}
		if r.Usage.PlatformUsage > usageMed {
			highUsage = append(highUsage, r)
		} else {
			lowUsage = append(lowUsage, r)
		}
	}
	return highUsage, lowUsage
}

// GradeRegressionGroups splits joined student rows by grade, ascending.
func GradeRegressionGroups(rows []StudentUsage) ([]int, map[int][]StudentUsage) {
	groups := map[int][]StudentUsage{}
	for _, r := range rows {
		groups[r.Student.Grade] = append(groups[r.Student.Grade], r)
	}
	grades := make([]int, 0, len(groups))
	for g := range groups {
		grades = append(grades, g)
	}
	sort.Ints(grades)
	return grades, groups
}
