package analysis

import (
	"math"
	"sort"

	"edusight/pkg/contracts/domain"
)

// GradeMean is the mean score rate of one grade.
type GradeMean struct {
	Grade int
	Mean  float64
	Count int // students, including those without a score
}

// GradeGenderMean is the mean score rate of one grade and gender.
type GradeGenderMean struct {
	Grade  int
	Gender string
	Mean   float64
	Count  int
}

// SchoolCount is the number of students of one school.
type SchoolCount struct {
	SchoolName string
	Students   int
}

// Pivot is a school by grade table of mean score rates. Missing cells are NaN.
type Pivot struct {
	Schools []string
	Grades  []int
	Values  [][]float64 // [school][grade]
}

// GradeMeans groups students by grade in ascending order.
func GradeMeans(scores []domain.StudentScore) []GradeMean {
	groups := map[int][]float64{}
	for _, s := range scores {
		groups[s.Grade] = append(groups[s.Grade], s.ScoreRate)
	}

	out := make([]GradeMean, 0, len(groups))
	for _, g := range sortedInts(groups) {
		out = append(out, GradeMean{Grade: g, Mean: Mean(groups[g]), Count: len(groups[g])})
	}
	return out
}

// GradeGenderMeans groups by grade then gender label. Unknown gender codes are skipped.
func GradeGenderMeans(scores []domain.StudentScore) []GradeGenderMean {
	type key struct {
		grade  int
		gender string
	}
	groups := map[key][]float64{}
	for _, s := range scores {
		label := s.GenderLabel()
		if label == "" {
			continue
		}
		k := key{s.Grade, label}
		groups[k] = append(groups[k], s.ScoreRate)
	}

	keys := make([]key, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].grade != keys[j].grade {
			return keys[i].grade < keys[j].grade
		}
		return keys[i].gender < keys[j].gender
	})

	out := make([]GradeGenderMean, len(keys))
	for i, k := range keys {
		out[i] = GradeGenderMean{Grade: k.grade, Gender: k.gender, Mean: Mean(groups[k]), Count: len(groups[k])}
	}
	return out
}

// GradeScores returns the score rates of each grade, NaN dropped.
func GradeScores(scores []domain.StudentScore) map[int][]float64 {
	out := map[int][]float64{}
	for _, s := range scores {
		if s.HasScore() {
			out[s.Grade] = append(out[s.Grade], s.ScoreRate)
		}
	}
	return out
}

// SchoolMeans returns the mean score rate per school ordered by name.
func SchoolMeans(scores []domain.StudentScore) []domain.SchoolScore {
	groups := map[string][]float64{}
	for _, s := range scores {
		groups[s.SchoolName] = append(groups[s.SchoolName], s.ScoreRate)
	}

	out := make([]domain.SchoolScore, 0, len(groups))
	for _, name := range sortedStrings(groups) {
		out = append(out, domain.SchoolScore{SchoolName: name, ScoreRate: Mean(groups[name])})
	}
	return out
}

// SchoolCounts orders schools by student count, most first. Ties keep
// first-appearance order.
func SchoolCounts(scores []domain.StudentScore) []SchoolCount {
	index := map[string]int{}
	var out []SchoolCount
	for _, s := range scores {
		i, ok := index[s.SchoolName]
		if !ok {
			i = len(out)
			index[s.SchoolName] = i
			out = append(out, SchoolCount{SchoolName: s.SchoolName})
		}
		out[i].Students++
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Students > out[j].Students })
	return out
}

// TopSchools returns up to n school names with the most students.
func TopSchools(scores []domain.StudentScore, n int) []string {
	counts := SchoolCounts(scores)
	if n < len(counts) {
		counts = counts[:n]
	}
	names := make([]string, len(counts))
	for i, c := range counts {
		names[i] = c.SchoolName
	}
	return names
}

// FilterSchools keeps the students of the named schools.
func FilterSchools(scores []domain.StudentScore, schools []string) []domain.StudentScore {
	keep := make(map[string]bool, len(schools))
	for _, s := range schools {
		keep[s] = true
	}
	var out []domain.StudentScore
	for _, s := range scores {
		if keep[s.SchoolName] {
			out = append(out, s)
		}
	}
	return out
}

// SchoolGradePivot builds the school by grade table of mean score rates.
// Schools and grades are sorted.
func SchoolGradePivot(scores []domain.StudentScore) Pivot {
	type key struct {
		school string
		grade  int
	}
	groups := map[key][]float64{}
	schools := map[string][]float64{}
	grades := map[int][]float64{}
	for _, s := range scores {
		k := key{s.SchoolName, s.Grade}
		groups[k] = append(groups[k], s.ScoreRate)
		schools[s.SchoolName] = nil
		grades[s.Grade] = nil
	}

	p := Pivot{Schools: sortedStrings(schools), Grades: sortedInts(grades)}
	p.Values = make([][]float64, len(p.Schools))
	for i, school := range p.Schools {
		p.Values[i] = make([]float64, len(p.Grades))
		for j, g := range p.Grades {
			vals, ok := groups[key{school, g}]
			if !ok {
				p.Values[i][j] = math.NaN()
				continue
			}
			p.Values[i][j] = Mean(vals)
		}
	}
	return p
}

// GradeSchoolMeans returns the school means of one grade, ascending by mean.
func GradeSchoolMeans(scores []domain.StudentScore, grade int) []domain.SchoolScore {
	var inGrade []domain.StudentScore
	for _, s := range scores {
		if s.Grade == grade {
			inGrade = append(inGrade, s)
		}
	}
	means := SchoolMeans(inGrade)
	sort.SliceStable(means, func(i, j int) bool { return lessNaNLast(means[i].ScoreRate, means[j].ScoreRate) })
	return means
}

// Grades lists the distinct grades in ascending order.
func Grades(scores []domain.StudentScore) []int {
	set := map[int][]float64{}
	for _, s := range scores {
		set[s.Grade] = nil
	}
	return sortedInts(set)
}

// SchoolNames lists the distinct school names in ascending order.
func SchoolNames(scores []domain.StudentScore) []string {
	set := map[string][]float64{}
	for _, s := range scores {
		set[s.SchoolName] = nil
	}
	return sortedStrings(set)
}

func lessNaNLast(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a < b
}

func sortedInts[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func sortedStrings[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
