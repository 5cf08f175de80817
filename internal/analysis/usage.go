package analysis

import (
	"math"
	"sort"

	"edusight/internal/dataprocessing"
	"edusight/pkg/contracts/domain"
)

// BucketLabels names the usage buckets from lowest to highest.
var BucketLabels = []string{"極低", "低", "中", "高", "極高"}

// bucketEdges are the fixed inner edges; the top edge is the observed maximum.
var bucketEdges = []float64{0, 10, 30, 60, 120}

// UsageBucket is the mean score of the students in one usage band.
type UsageBucket struct {
	Label string
	Lower float64 // exclusive
	Upper float64 // inclusive
	Mean  float64
	Count int
}

// Center is the midpoint of the band.
func (b UsageBucket) Center() float64 {
	return (b.Lower + b.Upper) / 2
}

// UsageOverview summarises the per-school usage table.
type UsageOverview struct {
	Schools       int
	ActiveSchools int
	UsageRate     float64 // percent of schools with any usage
	AvgUsage      float64 // mean total usage of active schools
	TopSchool     string
	TopUsage      float64
	PracticeMin   float64
	PracticeMax   float64
}

// BucketEdges returns the band edges for data whose maximum is top. The top
// band only exists when top exceeds the last fixed edge.
func BucketEdges(top float64) []float64 {
	edges := append([]float64(nil), bucketEdges...)
	if top > edges[len(edges)-1] {
		edges = append(edges, top)
	}
	return edges
}

// BucketIndex returns the band of v, or -1 when v is outside every band.
// Bands are right-inclusive and the lowest edge is exclusive.
func BucketIndex(edges []float64, v float64) int {
	if math.IsNaN(v) {
		return -1
	}
	for i := 0; i < len(edges)-1; i++ {
		if v > edges[i] && v <= edges[i+1] {
			return i
		}
	}
	return -1
}

// BucketUsage bands the usage values and averages the matching scores.
// Bands with no students are returned with Count 0 and a NaN mean.
func BucketUsage(usage, scores []float64) []UsageBucket {
	_, hi := Range(usage)
	edges := BucketEdges(hi)

	members := make([][]float64, len(edges)-1)
	for i, u := range usage {
		if b := BucketIndex(edges, u); b >= 0 {
			members[b] = append(members[b], scores[i])
		}
	}

	out := make([]UsageBucket, len(edges)-1)
	for i := range out {
		out[i] = UsageBucket{
			Label: BucketLabels[i],
			Lower: edges[i],
			Upper: edges[i+1],
			Mean:  Mean(members[i]),
			Count: len(members[i]),
		}
	}
	return out
}

// SummarizeSchool totals the subject rows of one sheet.
func SummarizeSchool(name string, rows []domain.UsageRecord) domain.SchoolUsageSummary {
	s := domain.SchoolUsageSummary{SchoolName: name, Students: len(rows)}
	if len(rows) == 0 {
		return s
	}

	var scoreSum float64
	for _, r := range rows {
		s.TotalQuestions += r.PracticeQuestions
		s.TotalTests += r.SelfTests
		s.TotalAssigned += r.AssignedVideos
		s.TotalSelfVideos += r.SelfVideos
		s.TotalHours += r.VideoHours
		scoreSum += r.PracticeAvgScore
	}
	if scoreSum > 0 {
		s.AvgPracticeScore = scoreSum / float64(len(rows))
	}

	s.TotalUsage = s.TotalQuestions + s.TotalTests + s.TotalVideos()
	n := float64(s.Students)
	s.QuestionsPerPupil = s.TotalQuestions / n
	s.VideosPerPupil = s.TotalVideos() / n
	s.HoursPerPupil = s.TotalHours / n
	return s
}

// SummarizeUsageBySchool builds one summary per sheet, sorted by total
// usage descending. Sheets without a subject column yield zero rows.
func SummarizeUsageBySchool(sheets []dataprocessing.UsageSheet) []domain.SchoolUsageSummary {
	out := make([]domain.SchoolUsageSummary, len(sheets))
	for i, sh := range sheets {
		out[i] = SummarizeSchool(sh.Name, sh.Rows)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalUsage > out[j].TotalUsage })
	return out
}

// ActiveSummaries keeps the schools with positive total usage.
func ActiveSummaries(summaries []domain.SchoolUsageSummary) []domain.SchoolUsageSummary {
	var out []domain.SchoolUsageSummary
	for _, s := range summaries {
		if s.TotalUsage > 0 {
			out = append(out, s)
		}
	}
	return out
}

// OverviewOf computes the headline figures of a sorted summary table.
func OverviewOf(summaries []domain.SchoolUsageSummary) UsageOverview {
	active := ActiveSummaries(summaries)
	o := UsageOverview{
		Schools:       len(summaries),
		ActiveSchools: len(active),
		AvgUsage:      math.NaN(),
		PracticeMin:   math.NaN(),
		PracticeMax:   math.NaN(),
	}
	if len(summaries) > 0 {
		o.UsageRate = float64(len(active)) / float64(len(summaries)) * 100
	}
	if len(active) == 0 {
		return o
	}

	usage := make([]float64, len(active))
	practice := make([]float64, len(active))
	for i, s := range active {
		usage[i] = s.TotalUsage
		practice[i] = s.AvgPracticeScore
	}
	o.AvgUsage = Mean(usage)
	o.TopSchool = active[0].SchoolName
	o.TopUsage = active[0].TotalUsage
	o.PracticeMin, o.PracticeMax = Range(practice)
	return o
}

// SchoolUsageMeans averages the active usage rows per school, ordered by
// name and rounded to two decimals.
func SchoolUsageMeans(records []domain.UsageRecord) []domain.SchoolUsageMeans {
	groups := map[string][]domain.UsageRecord{}
	for _, r := range records {
		groups[r.SchoolName] = append(groups[r.SchoolName], r)
	}

	out := make([]domain.SchoolUsageMeans, 0, len(groups))
	for _, name := range sortedStrings(groups) {
		rows := groups[name]
		col := func(f func(domain.UsageRecord) float64) float64 {
			vals := make([]float64, len(rows))
			for i, r := range rows {
				vals[i] = f(r)
			}
			return Round(Mean(vals), 2)
		}
		out = append(out, domain.SchoolUsageMeans{
			SchoolName:        name,
			PlatformUsage:     col(domain.UsageRecord.PlatformUsage),
			PracticeAvgScore:  col(func(r domain.UsageRecord) float64 { return r.PracticeAvgScore }),
			VideoUsage:        col(domain.UsageRecord.VideoUsage),
			VideoHours:        col(func(r domain.UsageRecord) float64 { return r.VideoHours }),
			AssignedVideos:    col(func(r domain.UsageRecord) float64 { return r.AssignedVideos }),
			SelfVideos:        col(func(r domain.UsageRecord) float64 { return r.SelfVideos }),
			PracticeQuestions: col(func(r domain.UsageRecord) float64 { return r.PracticeQuestions }),
			SelfTests:         col(func(r domain.UsageRecord) float64 { return r.SelfTests }),
		})
	}
	return out
}

// UsageGrades lists the distinct grades present in usage records.
func UsageGrades(records []domain.UsageRecord) []int {
	set := map[int]bool{}
	for _, r := range records {
		set[r.Grade] = true
	}
	return sortedInts(set)
}

// UsageSchools counts the distinct schools in usage records.
func UsageSchools(records []domain.UsageRecord) int {
	set := map[string]bool{}
	for _, r := range records {
		set[r.SchoolName] = true
	}
	return len(set)
}
