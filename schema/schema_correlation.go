package schema

// ResearchQuestion ties a process variable to the hypothesis tested against quality.
type ResearchQuestion struct {
	ID         string `json:"id"`
	Variable   string `json:"variable"`
	Dimension  string `json:"dimension"`
	Hypothesis string `json:"hypothesis"`
}

// ResearchQuestions are the process-versus-quality questions the report answers.
var ResearchQuestions = []ResearchQuestion{
	{ID: "RQ01", Variable: "stars", Dimension: "popularity", Hypothesis: "More popular repositories have better quality: lower coupling and lower cohesion deficit."},
	{ID: "RQ02", Variable: "age_years", Dimension: "maturity", Hypothesis: "Older repositories have worse quality because of accumulated technical debt."},
	{ID: "RQ03", Variable: "releases", Dimension: "activity", Hypothesis: "Repositories with more releases have better quality through continuous refactoring."},
	{ID: "RQ04", Variable: "size_kb", Dimension: "size", Hypothesis: "Larger repositories have worse quality because of higher complexity."},
}

// Default variable sets for correlation.
var (
	ProcessVariables = []string{"stars", "age_years", "releases", "size_kb", "loc"}
	QualityVariables = []string{"cbo_mean", "dit_mean", "lcom_mean", "wmc_mean"}
	OutlierColumns   = []string{"stars", "cbo_mean", "dit_mean", "lcom_mean"}
)

// CorrelationResult is the association between one process and one quality variable.
type CorrelationResult struct {
	ProcessVar  string  `json:"process_var"`
	QualityVar  string  `json:"quality_var"`
	Pearson     float64 `json:"pearson_r"`
	PearsonP    float64 `json:"pearson_p"`
	Spearman    float64 `json:"spearman_r"`
	SpearmanP   float64 `json:"spearman_p"`
	N           int     `json:"n"`
	Strength    string  `json:"strength"`
	Direction   string  `json:"direction"`
	Significant bool    `json:"significant"`
}

// ColumnDescription is the descriptive statistics of one dataset column.
type ColumnDescription struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	P25    float64 `json:"p25"`
	P50    float64 `json:"p50"`
	P75    float64 `json:"p75"`
	Max    float64 `json:"max"`
}

// CorrelationReport is everything the report renderer needs.
type CorrelationReport struct {
	DatasetPath  string              `json:"dataset_path"`
	TotalRows    int                 `json:"total_rows"`
	CleanedRows  int                 `json:"cleaned_rows"`
	Descriptions []ColumnDescription `json:"descriptions"`
	Results      []CorrelationResult `json:"results"`
}

// ResultsFor returns the correlation results for one process variable.
func (r *CorrelationReport) ResultsFor(processVar string) []CorrelationResult {
	var out []CorrelationResult
	for _, res := range r.Results {
		if res.ProcessVar == processVar {
			out = append(out, res)
		}
	}
	return out
}
