package algo

import (
	"github.com/huangsam/sqlscope/core/sqltext"
)

// SimilarityWeights blends token overlap and edit similarity.
type SimilarityWeights struct {
	Token float64
	Edit  float64
}

// DefaultSimilarityWeights returns the 0.6 token / 0.4 edit blend.
func DefaultSimilarityWeights() SimilarityWeights {
	return SimilarityWeights{Token: 0.6, Edit: 0.4}
}

// Similarity returns the blended similarity of two SQL texts as a percent in [0,100],
// rounded to 2 decimals.
func Similarity(a, b string) float64 {
	return SimilarityOf(
		sqltext.Normalize(a), sqltext.Normalize(b),
		sqltext.Tokenize(a), sqltext.Tokenize(b),
		DefaultSimilarityWeights(),
	)
}

// SimilarityOf computes the similarity percent from precomputed normalized text and token sets.
func SimilarityOf(normA, normB string, tokA, tokB sqltext.TokenSet, w SimilarityWeights) float64 {
	combined := w.Token*Jaccard(tokA, tokB) + w.Edit*EditSimilarity(normA, normB)
	pct := Round(combined*100, 2)
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}

// Jaccard returns |a∩b| / |a∪b|, or 1 when both sets are empty.
func Jaccard(a, b sqltext.TokenSet) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	inter := 0
	for v := range small {
		if _, ok := large[v]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// EditSimilarity returns 1 - levenshtein(x,y)/max(|x|,|y|) over runes.
// Two empty strings are identical; exactly one empty string scores 0.
func EditSimilarity(x, y string) float64 {
	rx, ry := []rune(x), []rune(y)
	if len(rx) == 0 && len(ry) == 0 {
		return 1.0
	}
	if len(rx) == 0 || len(ry) == 0 {
		return 0.0
	}
	dist := levenshteinRunes(rx, ry)
	return 1.0 - float64(dist)/float64(max(len(rx), len(ry)))
}

// Levenshtein returns the rune edit distance between x and y.
func Levenshtein(x, y string) int {
	return levenshteinRunes([]rune(x), []rune(y))
}

// levenshteinRunes keeps one row of the DP table sized to the shorter input.
func levenshteinRunes(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	row := make([]int, len(b)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(a); i++ {
		diag := row[0]
		row[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			up := row[j]
			row[j] = min(up+1, row[j-1]+1, diag+cost)
			diag = up
		}
	}
	return row[len(b)]
}
