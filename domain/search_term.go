package domain

// SearchTerm is one dictionary entry for the text features: a known
// product name, category or historical query with its usage count.
type SearchTerm struct {
	ID         uint64  `gorm:"primaryKey;autoIncrement"`
	Term       string  `gorm:"column:term;type:text;not null"`
	Kind       string  `gorm:"column:kind;type:text"` // product | category | query
	ContextTag string  `gorm:"column:context_tag;type:text"`
	UseCount   int     `gorm:"column:use_count"`
	Score      float64 `gorm:"column:score;type:numeric"` // precomputed popularity score 0..1
}

func (SearchTerm) TableName() string {
	return "search_terms"
}
