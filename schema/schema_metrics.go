package schema

// CategoryBand is the inclusive upper score bound of a category. The last band has no bound.
type CategoryBand struct {
	Category Category `json:"category"`
	MaxScore float64  `json:"max_score,omitempty"`
	Label    string   `json:"label"`
}

// LineTier is one mutually exclusive line-count penalty.
type LineTier struct {
	MinLines int     `json:"min_lines"`
	Points   float64 `json:"points"`
}

// ScoringDefinitions describes every rule used to score and group reports.
type ScoringDefinitions struct {
	BaseScore         float64                  `json:"base_score"`
	HoursPerPoint     float64                  `json:"hours_per_point"`
	Weights           map[BreakdownKey]float64 `json:"weights"`
	LineTiers         []LineTier               `json:"line_tiers"`
	Categories        []CategoryBand           `json:"categories"`
	TokenWeight       float64                  `json:"token_weight"`
	EditWeight        float64                  `json:"edit_weight"`
	NearThreshold     float64                  `json:"near_threshold"`
	ConsolidateAt     float64                  `json:"consolidate_at"`
	EquivalentAt      float64                  `json:"equivalent_at"`
	QualityBands      map[MigrationQuality]int `json:"quality_bands"`
	WeightsCustomized bool                     `json:"weights_customized"`
}
