package domain

// StrategyConfig enables one candidate strategy for a feature and sets
// its fusion weight. Weight must be >= 0.
type StrategyConfig struct {
	Name    string  `json:"name"`
	Weight  float64 `json:"weight"`
	Enabled bool    `json:"enabled"`
}

// RankingContext carries every recognized per-request parameter through
// the pipeline. It is immutable for the lifetime of one request.
type RankingContext struct {
	// Exactly one of these is the feature's primary key.
	CustomerID uint64
	ProductID  uint64
	Query      string

	// Limit is the requested result count, already clamped to the
	// feature's documented maximum by the orchestrator.
	Limit int

	// ContextTag tags the surface the request came from ("quote",
	// "browse", "checkout"). Used for the context bonus and, on
	// recommendation features, as a hard filter.
	ContextTag string

	// Caller segment, resolved from the customer row.
	Tier     string
	Industry string

	// Explicit price bounds; nil means no bound.
	PriceMin *float64
	PriceMax *float64

	IncludeOutOfStock bool
	IncludeIntent     bool
}
