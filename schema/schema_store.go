package schema

import "time"

// AnalysisRunRecord represents a row from the repoquality_analysis_runs table.
type AnalysisRunRecord struct {
	AnalysisID        int64
	StartTime         time.Time
	EndTime           *time.Time
	RunDurationMs     *int32
	TotalRepositories int32
	Succeeded         int32
	ConfigParams      *string
}

// RepositoryRecordRow represents a row from the repoquality_repository_records table.
type RepositoryRecordRow struct {
	AnalysisID    int64
	Repository    string
	AnalysisTime  time.Time
	MetricsSource string
	Strategy      *string
	LOC           int32
	Comments      int32
	Stars         int32
	AgeYears      float64
	Releases      int32
	SizeKB        int32
	CBOMean       *float64
	DITMean       *float64
	LCOMMean      *float64
	WMCMean       *float64
	RecordJSON    string
}
