package domain

import "math"

// Gender codes used by the test-score export.
const (
	GenderMale   = 1
	GenderFemale = 2
)

// StudentScore is one row of a grade-level test-score export after the
// positional columns have been renamed.
type StudentScore struct {
	Name       string  `json:"name"`
	Gender     int     `json:"gender"`
	SchoolCode string  `json:"school_code"`
	SchoolName string  `json:"school_name"`
	Grade      int     `json:"grade"`
	ScoreRate  float64 `json:"score_rate"` // NaN when the export held no number
}

// HasScore reports whether the score rate parsed to a number.
func (s StudentScore) HasScore() bool {
	return !math.IsNaN(s.ScoreRate)
}

// GenderLabel returns the display label for the gender code.
func (s StudentScore) GenderLabel() string {
	switch s.Gender {
	case GenderMale:
		return "男"
	case GenderFemale:
		return "女"
	default:
		return ""
	}
}

// SchoolScore is the mean score rate of one school.
type SchoolScore struct {
	SchoolName string  `json:"school_name"`
	ScoreRate  float64 `json:"score_rate"`
}
