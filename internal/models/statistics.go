package models

// AnalysisStatistics is the aggregate view over one user's history.
// DiseaseStats is keyed by display name and formatted "<count>-<avg%>",
// pre-seeded with "0-0%" for every known disease.
type AnalysisStatistics struct {
	TotalLeaves     int               `json:"totalLeaves"`
	AverageAccuracy int               `json:"averageAccuracy"`
	DiseaseStats    map[string]string `json:"diseaseStats"`
}
