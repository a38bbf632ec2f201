package http

// HealthResponse is the liveness payload
type HealthResponse struct {
	OK      bool   `json:"ok" example:"true"`
	Service string `json:"service" example:"speakertag-api"`
	Started string `json:"started" example:"2026-03-02T09:00:00Z"`
	Uptime  int64  `json:"uptime" example:"300"` // seconds
	Now     string `json:"now" example:"2026-03-02T09:05:00Z"`
}

// ProbeStatus is the outcome of one readiness check, or of all of them
type ProbeStatus string

// Probe outcomes
const (
	StatusOK       ProbeStatus = "ok"
	StatusDegraded ProbeStatus = "degraded"
	StatusFail     ProbeStatus = "fail"
	StatusSkipped  ProbeStatus = "skipped"
	StatusUnknown  ProbeStatus = "unknown"
)

// ReadyCheck is one dependency ping
type ReadyCheck struct {
	Name   string      `json:"name" example:"pg"`
	Status ProbeStatus `json:"status" example:"ok"`
	Error  string      `json:"error,omitempty" example:"dial tcp 127.0.0.1:5432: connect: connection refused"`
}

// ReadyResponse rolls the checks up into one status
type ReadyResponse struct {
	Status ProbeStatus  `json:"status" example:"ok"`
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now" example:"2026-03-02T09:05:00Z"`
}

// RuleSummary is one recognition rule as loaded
type RuleSummary struct {
	ID      string  `json:"id" example:"chair_gives_floor"`
	Kind    string  `json:"kind" example:"plain"`
	Weight  float64 `json:"weight" example:"0.95"`
	Pattern string  `json:"pattern"`
}

// PatternsResponse summarizes the rule table in use
type PatternsResponse struct {
	Version     int           `json:"version" example:"3"`
	IgnoreCase  bool          `json:"ignore_case" example:"true"`
	BoostWindow int           `json:"boost_window" example:"40"`
	BoostAmount float64       `json:"boost_amount" example:"0.05"`
	BoostCap    float64       `json:"boost_cap" example:"0.99"`
	Titles      []string      `json:"titles"`
	Indicators  int           `json:"indicators" example:"12"`
	Rules       []RuleSummary `json:"rules"`
}
