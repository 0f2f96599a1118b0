package domain

// Candidate is one item surfaced by a strategy before fusion, filtering
// and ranking. It is request-scoped and mutated in place as it moves
// through the pipeline.
type Candidate struct {
	// Identity is the dedup key: a product id rendered as string, or the
	// lower-cased normalized text for search suggestions.
	Identity string

	// StrategyScores maps strategy name -> raw score assigned by that
	// strategy. Scores are expected in 0..1 but not enforced.
	StrategyScores map[string]float64

	// CompositeScore is populated by fusion, FinalScore by the ranking
	// policy. FinalScore is not touched again once set.
	CompositeScore float64
	FinalScore     float64

	Attributes CandidateAttributes

	// Reasons collects human-readable explanations from every strategy
	// that surfaced this candidate.
	Reasons []string
}

// CandidateAttributes is the read-only payload a strategy attaches to a
// candidate. Fusion and ranking never interpret it beyond the fields the
// policy explicitly reads; pointer fields distinguish "absent" from zero
// so filters can fail open.
type CandidateAttributes struct {
	ProductID uint64
	Name      string
	Category  string
	Text      string

	Price     *float64
	MarginPct *float64
	InStock   *bool
	StockQty  *float64

	// Occurrences feeds the frequency boost (how often the item was
	// bought / the term was searched).
	Occurrences int

	// ContextTag is the context the candidate was recorded under
	// ("quote", "browse", ...). Compared against the request context.
	ContextTag string

	// Tiers / Industries restrict which caller segments may see the
	// item. Empty means unrestricted.
	Tiers      []string
	Industries []string
}

// AddScore records a strategy contribution on the candidate.
func (c *Candidate) AddScore(strategy string, score float64) {
	if c.StrategyScores == nil {
		c.StrategyScores = make(map[string]float64)
	}
	c.StrategyScores[strategy] = score
}

// AddReason appends an explanation string, skipping duplicates.
func (c *Candidate) AddReason(reason string) {
	if reason == "" {
		return
	}
	for _, r := range c.Reasons {
		if r == reason {
			return
		}
	}
	c.Reasons = append(c.Reasons, reason)
}
