package tutortypes

// TokenBudget reports the shared token ledger. The daily cap is the hard
// pre-flight gate; the monthly cap is tracked as an advisory ceiling.
type TokenBudget struct {
	DailyCap    int `json:"daily_cap"`
	MonthlyCap  int `json:"monthly_cap"`
	Used        int `json:"used"`
	MonthlyUsed int `json:"monthly_used"`
	Remaining   int `json:"remaining"`
}
