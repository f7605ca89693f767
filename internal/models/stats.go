package models

// DailyStats is the page view and unique visitor count for one day.
type DailyStats struct {
	Date string `json:"date"`
	PV   int64  `json:"pv"`
	UV   int64  `json:"uv"`
}

// Visit describes a single dashboard load for statistics.
type Visit struct {
	IP       string
	OS       string
	Browser  string
	Referrer string
}

// NamedCount is one bucket of a distribution.
type NamedCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// StatsSummary aggregates visit statistics for the admin dashboard.
type StatsSummary struct {
	TotalPV  int64        `json:"totalPv"`
	TotalUV  int64        `json:"totalUv"`
	TodayPV  int64        `json:"todayPv"`
	TodayUV  int64        `json:"todayUv"`
	Trend    []DailyStats `json:"trend"`
	OS       []NamedCount `json:"os"`
	Browsers []NamedCount `json:"browsers"`
}
