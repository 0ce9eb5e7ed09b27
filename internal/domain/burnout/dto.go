package burnout

import "github.com/cmlabs-hris/workforce-engine/internal/pkg/validator"

type AnalyzeRequest struct {
	PeriodStart string   `json:"period_start"`
	PeriodEnd   string   `json:"period_end"`
	EmployeeIDs []string `json:"employee_ids,omitempty"` // Empty = every employee with attendance
}

func (r *AnalyzeRequest) Validate() error {
	_, _, err := validator.ParseWindow(r.PeriodStart, r.PeriodEnd)
	return err
}

// AnalysisFailure - An employee the analysis could not score
type AnalysisFailure struct {
	EmployeeID string `json:"employee_id"`
	Error      string `json:"error"`
}

type LevelCounts struct {
	Low      int `json:"low"`
	Medium   int `json:"medium"`
	High     int `json:"high"`
	Critical int `json:"critical"`
}

func (c *LevelCounts) Add(level RiskLevel) {
	switch level {
	case RiskLevelCritical:
		c.Critical++
	case RiskLevelHigh:
		c.High++
	case RiskLevelMedium:
		c.Medium++
	default:
		c.Low++
	}
}

type AnalyzeResponse struct {
	PeriodStart  string            `json:"period_start"`
	PeriodEnd    string            `json:"period_end"`
	Employees    []BurnoutEmployee `json:"employees"` // highest risk first
	LevelCounts  LevelCounts       `json:"level_counts"`
	AverageScore float64           `json:"average_score"`
	Failures     []AnalysisFailure `json:"failures,omitempty"`
}
