package domain

// RankedItem is one entry of a served suggestion list.
type RankedItem struct {
	Identity  string   `json:"identity"`
	ProductID uint64   `json:"product_id,omitempty"`
	Name      string   `json:"name,omitempty"`
	Category  string   `json:"category,omitempty"`
	Text      string   `json:"text,omitempty"`
	Price     *float64 `json:"price,omitempty"`
	InStock   *bool    `json:"in_stock,omitempty"`
	Score     float64  `json:"score"`
	Reasons   []string `json:"reasoning,omitempty"`
}

// SuggestResult is the computed (and cached) payload of one feature call.
type SuggestResult struct {
	Items          []RankedItem `json:"items"`
	TotalFound     int          `json:"total_found"`
	AlgorithmsUsed []string     `json:"algorithms_used"`
}

// SuggestResponse is the envelope every suggestion endpoint returns on
// success. Cached and ExecutionTimeMs are set per call, never cached.
type SuggestResponse struct {
	Success         bool         `json:"success"`
	Items           []RankedItem `json:"items"`
	TotalFound      int          `json:"total_found"`
	AlgorithmsUsed  []string     `json:"algorithms_used"`
	ExecutionTimeMs float64      `json:"execution_time_ms"`
	Cached          bool         `json:"cached"`
}

// SuggestErrorResponse is the envelope every failure path returns.
// Callers never see a raw error or a malformed payload.
type SuggestErrorResponse struct {
	Success         bool    `json:"success"`
	ErrorCode       string  `json:"error_code"`
	Error           string  `json:"error"`
	ExecutionTimeMs float64 `json:"execution_time_ms,omitempty"`
}
