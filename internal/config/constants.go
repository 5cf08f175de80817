package config

// Application constants
const (
	AppName    = "edusight"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable, e.g. EDUSIGHT_LOGGING_LEVEL.
	EnvPrefix = "EDUSIGHT"

	DefaultConfigFile = "edusight.yaml"
	DefaultLogFile    = "logs/edusight.log"
)

// Input file defaults
const (
	DefaultScorePattern    = "113年度_學力測驗_金門縣_數學%d年級成績_202406.csv"
	DefaultUsageWorkbook   = "力宇教育-時數報表113.08.01-113.12.31 (2).xlsx"
	DefaultTaskPlatformCSV = "platform_data.csv"
	DefaultMathSubject     = "數學"
	GradeMarker            = "數學"

	// ScoreGlob matches score exports when the pattern finds none.
	ScoreGlob = "*數學*年級*.csv"
)

// Output file names
const (
	ScoreSummaryCSV      = "test_scores.csv"
	PlatformMeansCSV     = "liyou_platform_data.csv"
	UsageSummaryCSV      = "力宇平台學校使用統計.csv"
	SchoolComparisonCSV  = "力宇平台與測驗成績統計.csv"
	SchoolGradePivotCSV  = "學校年級得分率.csv"
	SummaryWorkbook      = "edusight_summary.xlsx"
	DefaultRunMetricFile = "edusight.prom"
)

// Score export column positions (0-based) of the fields that get renamed.
const (
	ScoreColSchoolCode = 2
	ScoreColSchoolName = 3
	ScoreColName       = 8
	ScoreColGender     = 9
	ScoreColScoreRate  = 18
)

// Canonical column names after renaming.
const (
	ColName       = "姓名"
	ColGender     = "性別"
	ColSchoolCode = "學校代碼"
	ColSchoolName = "學校名稱"
	ColScoreRate  = "總得分率"
	ColGrade      = "年級"
	ColSubject    = "科目"

	ColPlatformUsage  = "平台使用量"
	ColVideoUsage     = "影片使用量"
	ColUsageBucket    = "使用量分組"
	ColNormalizedName = "學校名稱_標準"
	ColUsageRank      = "平台使用量排名"
	ColScoreRank      = "測驗得分率排名"
)

// Usage workbook metric columns, in workbook order.
const (
	ColPracticeAvgScore  = "自我練習平均成績"
	ColSelfTests         = "自我測驗卷數"
	ColPracticeQuestions = "自我練習題目數"
	ColAssignedVideos    = "完成老師指派影片數"
	ColSelfVideos        = "自我點播影片數"
	ColVideoHours        = "累積影片總時數"
)

// UsageMetricColumns lists the six workbook metrics that get cleaned.
var UsageMetricColumns = []string{
	ColPracticeAvgScore,
	ColSelfTests,
	ColPracticeQuestions,
	ColAssignedVideos,
	ColSelfVideos,
	ColVideoHours,
}

// Task platform export columns.
const (
	ColCompletionRate = "整體數學完成率"
	ColAccuracyRate   = "平均數學正答率"
)

// DefaultEncodings is the decode order tried for score exports.
var DefaultEncodings = []string{"cp950", "big5", "utf-8", "gbk", "latin1"}
