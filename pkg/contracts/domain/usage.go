package domain

// UsageRecord is one student's math activity on the usage platform, taken
// from a single school sheet of the platform workbook.
type UsageRecord struct {
	SchoolName string `json:"school_name"`
	Grade      int    `json:"grade"`
	Subject    string `json:"subject"`

	PracticeAvgScore  float64 `json:"practice_avg_score"`
	SelfTests         float64 `json:"self_tests"`
	PracticeQuestions float64 `json:"practice_questions"`
	AssignedVideos    float64 `json:"assigned_videos"`
	SelfVideos        float64 `json:"self_videos"`
	VideoHours        float64 `json:"video_hours"`
}

// PlatformUsage is assigned videos + practice questions + self tests.
func (r UsageRecord) PlatformUsage() float64 {
	return r.AssignedVideos + r.PracticeQuestions + r.SelfTests
}

// VideoUsage is assigned videos + self-selected videos.
func (r UsageRecord) VideoUsage() float64 {
	return r.AssignedVideos + r.SelfVideos
}

// Metrics returns the six cleaned metrics in workbook column order.
func (r UsageRecord) Metrics() []float64 {
	return []float64{
		r.PracticeAvgScore,
		r.SelfTests,
		r.PracticeQuestions,
		r.AssignedVideos,
		r.SelfVideos,
		r.VideoHours,
	}
}

// IsActive reports whether any metric is non-zero.
func (r UsageRecord) IsActive() bool {
	for _, v := range r.Metrics() {
		if v != 0 {
			return true
		}
	}
	return false
}

// SchoolUsageSummary aggregates all math rows of one school sheet.
type SchoolUsageSummary struct {
	SchoolName        string  `json:"school_name"`
	TotalQuestions    float64 `json:"total_questions"`
	TotalTests        float64 `json:"total_tests"`
	AvgPracticeScore  float64 `json:"avg_practice_score"`
	TotalAssigned     float64 `json:"total_assigned_videos"`
	TotalSelfVideos   float64 `json:"total_self_videos"`
	TotalHours        float64 `json:"total_hours"`
	Students          int     `json:"students"`
	TotalUsage        float64 `json:"total_usage"`
	QuestionsPerPupil float64 `json:"questions_per_student"`
	VideosPerPupil    float64 `json:"videos_per_student"`
	HoursPerPupil     float64 `json:"hours_per_student"`
}

// TotalVideos is assigned plus self-selected videos.
func (s SchoolUsageSummary) TotalVideos() float64 {
	return s.TotalAssigned + s.TotalSelfVideos
}

// SchoolUsageMeans holds per-school means of the platform metrics.
type SchoolUsageMeans struct {
	SchoolName        string  `json:"school_name"`
	PlatformUsage     float64 `json:"platform_usage"`
	PracticeAvgScore  float64 `json:"practice_avg_score"`
	VideoUsage        float64 `json:"video_usage"`
	VideoHours        float64 `json:"video_hours"`
	AssignedVideos    float64 `json:"assigned_videos"`
	SelfVideos        float64 `json:"self_videos"`
	PracticeQuestions float64 `json:"practice_questions"`
	SelfTests         float64 `json:"self_tests"`
}

// TaskPlatformRecord is one school row of the task platform export.
// Rates are percentages; NaN marks a missing value.
type TaskPlatformRecord struct {
	SchoolName     string  `json:"school_name"`
	CompletionRate float64 `json:"completion_rate"`
	AccuracyRate   float64 `json:"accuracy_rate"`
}
