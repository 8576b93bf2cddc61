package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryFor(t *testing.T) {
	tests := []struct {
		score float64
		want  Category
	}{
		{1.0, SimpleCategory},
		{5.0, SimpleCategory},
		{5.1, MediumCategory},
		{15.0, MediumCategory},
		{15.1, ComplexCategory},
		{30.0, ComplexCategory},
		{30.1, VeryComplexCategory},
		{250, VeryComplexCategory},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CategoryFor(tt.score), "score %.1f", tt.score)
	}
}

func TestQualityFor(t *testing.T) {
	tests := []struct {
		name  string
		score int
		want  MigrationQuality
	}{
		{"perfect", 100, ExcellentQuality},
		{"excellent lower", 95, ExcellentQuality},
		{"good upper", 94, GoodQuality},
		{"good lower", 80, GoodQuality},
		{"fair upper", 79, FairQuality},
		{"fair lower", 60, FairQuality},
		{"review", 59, ReviewQuality},
		{"zero", 0, ReviewQuality},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, QualityFor(tt.score))
		})
	}
}

func TestRiskFor(t *testing.T) {
	assert.Equal(t, LowRisk, RiskFor(1))
	assert.Equal(t, LowRisk, RiskFor(15))
	assert.Equal(t, MediumRisk, RiskFor(15.1))
	assert.Equal(t, MediumRisk, RiskFor(25))
	assert.Equal(t, HighRisk, RiskFor(25.1))
}

func TestOwnerOrUnknown(t *testing.T) {
	assert.Equal(t, "alice", OwnerOrUnknown("alice"))
	assert.Equal(t, "bob", OwnerOrUnknown("  bob "))
	assert.Equal(t, UnknownOwner, OwnerOrUnknown(""))
	assert.Equal(t, UnknownOwner, OwnerOrUnknown(" \t"))
}

func TestNearRecommendation(t *testing.T) {
	assert.Equal(t, ConsolidateRecommendation, NearRecommendation(95, 95))
	assert.Equal(t, ConsolidateRecommendation, NearRecommendation(99.99, 95))
	assert.Equal(t, ReviewRecommendation, NearRecommendation(94.99, 95))
	assert.Equal(t, ReviewRecommendation, NearRecommendation(85, 95))
}
