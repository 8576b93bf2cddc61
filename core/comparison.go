package core

import (
	"math"

	"github.com/huangsam/sqlscope/core/algo"
	"github.com/huangsam/sqlscope/core/sqltext"
	"github.com/huangsam/sqlscope/schema"
)

// SemanticEquivalenceAt is the similarity at which two queries count as equivalent.
const SemanticEquivalenceAt = 95.0

// Compare reports how close two SQL texts are for migration purposes.
func Compare(sqlA, sqlB string) schema.ComparisonResult {
	return CompareWith(sqlA, sqlB, algo.DefaultSimilarityWeights())
}

// CompareWith is Compare with a custom similarity blend.
func CompareWith(sqlA, sqlB string, w algo.SimilarityWeights) schema.ComparisonResult {
	tokensA, _ := sqltext.Stream(sqlA)
	tokensB, _ := sqltext.Stream(sqlB)
	normA, normB := sqltext.Render(tokensA), sqltext.Render(tokensB)

	sim := algo.SimilarityOf(normA, normB, sqltext.NewTokenSet(tokensA), sqltext.NewTokenSet(tokensB), w)
	compat := compatibilityScore(sim)
	identical := normA == normB

	result := schema.ComparisonResult{
		AreIdentical:              identical,
		AreSemanticallyEquivalent: sim >= SemanticEquivalenceAt,
		SimilarityPercent:         sim,
		CompatibilityScore:        compat,
		MigrationQuality:          schema.QualityFor(compat),
	}
	if !identical {
		result.Differences = clauseDifferences(tokensA, tokensB)
	} else {
		result.Differences = emptyDifferences()
	}
	return result
}

// compatibilityScore floors the similarity and clamps it to [0,100].
func compatibilityScore(sim float64) int {
	return int(math.Max(0, math.Min(100, math.Floor(sim))))
}

type clause int

const (
	selectClause clause = iota
	fromClause
	whereClause
	otherClause
	noClause
)

// clauseOf maps a clause-opening keyword to its clause. Tokens after GROUP,
// ORDER, HAVING, LIMIT and set operators close the current clause.
func clauseOf(word string) (clause, bool) {
	switch word {
	case "SELECT":
		return selectClause, true
	case "FROM":
		return fromClause, true
	case "WHERE":
		return whereClause, true
	case "GROUP", "ORDER", "HAVING", "LIMIT", "UNION", "INTERSECT", "EXCEPT":
		return otherClause, true
	}
	return noClause, false
}

// splitClauses collects the distinct normalized tokens of the top-level SELECT,
// FROM and WHERE clauses. Nested queries are folded into the enclosing clause.
func splitClauses(tokens []sqltext.Token) [3]sqltext.TokenSet {
	var sets [3]sqltext.TokenSet
	for i := range sets {
		sets[i] = make(sqltext.TokenSet)
	}
	current := noClause
	depth := 0
	for _, tok := range tokens {
		switch tok.Text {
		case "(":
			depth++
		case ")":
			depth = max(0, depth-1)
		}
		if depth == 0 && tok.Kind == sqltext.Keyword {
			if c, ok := clauseOf(tok.Upper()); ok {
				current = c
				continue
			}
		}
		if current <= whereClause {
			sets[current][normalizedText(tok)] = struct{}{}
		}
	}
	return sets
}

func normalizedText(tok sqltext.Token) string {
	switch tok.Kind {
	case sqltext.Number, sqltext.String:
		return "?"
	default:
		return tok.Upper()
	}
}

func clauseDifferences(a, b []sqltext.Token) schema.Differences {
	before, after := splitClauses(a), splitClauses(b)
	return schema.Differences{
		SelectClause: diffClause(before[selectClause], after[selectClause], "Compare SELECT lists manually"),
		FromClause:   diffClause(before[fromClause], after[fromClause], "Verify join paths and table mappings"),
		WhereClause:  diffClause(before[whereClause], after[whereClause], "Check filter predicates for equivalent results"),
	}
}

func diffClause(before, after sqltext.TokenSet, note string) schema.ClauseDiff {
	d := schema.ClauseDiff{Added: []string{}, Removed: []string{}}
	for _, t := range after.Sorted() {
		if !before.Contains(t) {
			d.Added = append(d.Added, t)
		}
	}
	for _, t := range before.Sorted() {
		if !after.Contains(t) {
			d.Removed = append(d.Removed, t)
		}
	}
	if len(d.Added) > 0 || len(d.Removed) > 0 {
		d.Note = note
	}
	return d
}

func emptyDifferences() schema.Differences {
	empty := func() schema.ClauseDiff { return schema.ClauseDiff{Added: []string{}, Removed: []string{}} }
	return schema.Differences{SelectClause: empty(), FromClause: empty(), WhereClause: empty()}
}
