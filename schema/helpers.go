package schema

import "strings"

// CategoryFor maps a complexity score to its category.
// Boundaries are inclusive on the lower tier.
func CategoryFor(score float64) Category {
	switch {
	case score <= 5:
		return SimpleCategory
	case score <= 15:
		return MediumCategory
	case score <= 30:
		return ComplexCategory
	default:
		return VeryComplexCategory
	}
}

// QualityFor maps a compatibility score to a migration quality label.
func QualityFor(compatibility int) MigrationQuality {
	switch {
	case compatibility >= 95:
		return ExcellentQuality
	case compatibility >= 80:
		return GoodQuality
	case compatibility >= 60:
		return FairQuality
	default:
		return ReviewQuality
	}
}

// RiskFor maps a complexity score to a risk level.
func RiskFor(score float64) RiskLevel {
	switch {
	case score > 25:
		return HighRisk
	case score > 15:
		return MediumRisk
	default:
		return LowRisk
	}
}

// OwnerOrUnknown returns the trimmed owner, or UnknownOwner when blank.
func OwnerOrUnknown(owner string) string {
	if o := strings.TrimSpace(owner); o != "" {
		return o
	}
	return UnknownOwner
}

// NearRecommendation picks the recommendation text for a near-duplicate pair.
func NearRecommendation(similarity, consolidateAt float64) string {
	if similarity >= consolidateAt {
		return ConsolidateRecommendation
	}
	return ReviewRecommendation
}
