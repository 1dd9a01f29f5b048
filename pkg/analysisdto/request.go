package analysisdto

// AnalyzeRequest carries the record to analyze, either inline or by URL
// (exactly one of Kif / KifURL must be set).
type AnalyzeRequest struct {
	Kif    string `json:"kif,omitempty"`
	KifURL string `json:"kif_url,omitempty"`
	Preset string `json:"preset,omitempty"`
}
