package algo

import (
	"testing"

	"github.com/huangsam/sqlscope/core/sqltext"
	"github.com/stretchr/testify/assert"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"café", "cafe", 1},
		{"SELECT id FROM orders items", "SELECT id FROM orders JOIN items", 5},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Levenshtein(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
		assert.Equal(t, tt.want, Levenshtein(tt.b, tt.a), "%q vs %q", tt.b, tt.a)
	}
}

func TestEditSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, EditSimilarity("", ""))
	assert.Equal(t, 0.0, EditSimilarity("", "a"))
	assert.Equal(t, 0.0, EditSimilarity("a", ""))
	assert.Equal(t, 1.0, EditSimilarity("abc", "abc"))
	assert.InDelta(t, 2.0/3.0, EditSimilarity("abc", "abd"), 1e-12)
}

func TestJaccard(t *testing.T) {
	set := func(vals ...string) sqltext.TokenSet {
		s := sqltext.TokenSet{}
		for _, v := range vals {
			s[v] = struct{}{}
		}
		return s
	}

	assert.Equal(t, 1.0, Jaccard(set(), set()))
	assert.Equal(t, 0.0, Jaccard(set("A"), set()))
	assert.Equal(t, 1.0, Jaccard(set("A", "B"), set("B", "A")))
	assert.InDelta(t, 1.0/3.0, Jaccard(set("A", "B"), set("B", "C")), 1e-12)
}

func TestSimilarityIdentity(t *testing.T) {
	inputs := []string{
		"SELECT a FROM t",
		"select * from orders where id = 5",
		"SELECT 'open",
		"-- comment only",
		"x",
	}
	for _, in := range inputs {
		assert.Equal(t, 100.0, Similarity(in, in), "input %q", in)
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	pairs := [][2]string{
		{"SELECT a FROM t", "SELECT b FROM u"},
		{"SELECT id FROM orders items", "SELECT id FROM orders JOIN items"},
		{"", "SELECT 1"},
		{"SELECT 'open", "SELECT open FROM t"},
	}
	for _, p := range pairs {
		assert.Equal(t, Similarity(p[0], p[1]), Similarity(p[1], p[0]), "%q vs %q", p[0], p[1])
	}
}

func TestSimilarityAddedJoinKeyword(t *testing.T) {
	// tokens: 5 shared of 6 total, normalized text: 5 inserted runes over 32
	got := Similarity("SELECT id FROM orders items", "SELECT id FROM orders JOIN items")
	assert.Equal(t, 83.75, got)
}

func TestSimilarityEquivalentLiterals(t *testing.T) {
	got := Similarity("SELECT * FROM t WHERE id=5", "SELECT *\nFROM t\nWHERE id = 42")
	// normalized text is equal, token sets differ only by the literal
	assert.Less(t, got, 100.0)
	assert.Greater(t, got, 85.0)
}

func TestSimilarityBounds(t *testing.T) {
	got := Similarity("SELECT a FROM t", "")
	assert.GreaterOrEqual(t, got, 0.0)
	assert.LessOrEqual(t, got, 100.0)
	assert.Equal(t, 0.0, got)
}

// FuzzSimilarity checks bounds and symmetry for arbitrary inputs.
func FuzzSimilarity(f *testing.F) {
	f.Add("SELECT a FROM t", "SELECT a FROM t JOIN u")
	f.Add("", "")
	f.Add("SELECT 'x", "((")

	f.Fuzz(func(t *testing.T, a, b string) {
		ab := Similarity(a, b)
		if ab < 0 || ab > 100 {
			t.Fatalf("similarity out of range: %v", ab)
		}
		if ba := Similarity(b, a); ab != ba {
			t.Fatalf("similarity not symmetric: %v vs %v", ab, ba)
		}
	})
}
