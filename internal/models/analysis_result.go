package models

// AnalysisResult is a single classification of a leaf photograph.
// ID is derived from the creation time (epoch milliseconds) and is unique
// within one user's history. ProcessingTime is kept as the raw text the
// classification server reported.
type AnalysisResult struct {
	ID             string  `json:"id"`
	ImagePath      string  `json:"imagePath,omitempty"`
	Timestamp      int64   `json:"timestamp"`
	DiseaseType    string  `json:"diseaseType"`
	Confidence     float64 `json:"confidence"`
	ProcessingTime string  `json:"processingTime"`
}
