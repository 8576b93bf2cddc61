package core

import (
	"github.com/huangsam/sqlscope/core/algo"
	"github.com/huangsam/sqlscope/schema"
)

// ScoringDefinitions describes the active weights and thresholds.
func ScoringDefinitions(opts Options, customized bool) schema.ScoringDefinitions {
	tiers := make([]schema.LineTier, len(opts.Weights.LinePenalties))
	for i, p := range opts.Weights.LinePenalties {
		tiers[i] = schema.LineTier{MinLines: p.MinLines, Points: p.Points}
	}
	sw := opts.Cluster.Weights
	if sw == (algo.SimilarityWeights{}) {
		sw = algo.DefaultSimilarityWeights()
	}

	return schema.ScoringDefinitions{
		BaseScore:     algo.BaseScore,
		HoursPerPoint: algo.HoursPerPoint,
		Weights:       opts.Weights.Table(),
		LineTiers:     tiers,
		Categories: []schema.CategoryBand{
			{Category: schema.SimpleCategory, MaxScore: 5, Label: schema.GetPlainLabel(schema.SimpleCategory)},
			{Category: schema.MediumCategory, MaxScore: 15, Label: schema.GetPlainLabel(schema.MediumCategory)},
			{Category: schema.ComplexCategory, MaxScore: 30, Label: schema.GetPlainLabel(schema.ComplexCategory)},
			{Category: schema.VeryComplexCategory, Label: schema.GetPlainLabel(schema.VeryComplexCategory)},
		},
		TokenWeight:   sw.Token,
		EditWeight:    sw.Edit,
		NearThreshold: opts.Cluster.NearThreshold,
		ConsolidateAt: opts.Cluster.ConsolidateAt,
		EquivalentAt:  SemanticEquivalenceAt,
		QualityBands: map[schema.MigrationQuality]int{
			schema.ExcellentQuality: 95,
			schema.GoodQuality:      80,
			schema.FairQuality:      60,
			schema.ReviewQuality:    0,
		},
		WeightsCustomized: customized,
	}
}
