package sqltext

import (
	"errors"
	"testing"

	"github.com/huangsam/sqlscope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		expected string
	}{
		{"empty", "", ""},
		{"blank", " \n\t ", ""},
		{"simple", "SELECT a FROM t", "SELECT a FROM t"},
		{"lowercase keywords", "select a from t where x = 1", "SELECT a FROM t WHERE x = ?"},
		{"operator spacing", "SELECT * FROM t WHERE id=5", "SELECT * FROM t WHERE id = ?"},
		{"newlines", "SELECT *\nFROM t\nWHERE id = 42", "SELECT * FROM t WHERE id = ?"},
		{"line comment", "SELECT a -- pick a\nFROM t", "SELECT a FROM t"},
		{"block comment", "SELECT /* all */ a FROM t", "SELECT a FROM t"},
		{"string literal", "SELECT a FROM t WHERE n = 'x'", "SELECT a FROM t WHERE n = ?"},
		{"escaped quote", "SELECT a FROM t WHERE n = 'O''Brien'", "SELECT a FROM t WHERE n = ?"},
		{"decimal", "SELECT a * 1.5e3 FROM t", "SELECT a * ? FROM t"},
		{"digit prefixed word", "SELECT 1abc FROM t", "SELECT 1abc FROM t"},
		{"multi-char operators", "SELECT a FROM t WHERE a<>b AND c<=2", "SELECT a FROM t WHERE a <> b AND c <= ?"},
		{"function call", "select count(*) from t", "SELECT COUNT ( * ) FROM t"},
		{"quoted identifier", `SELECT "My Col" FROM t`, `SELECT "My Col" FROM t`},
		{"comment only", "-- nothing here", ""},
		{"fallback on open string", "SELECT 'abc", "SELECT abc"},
		{"fallback on open paren", "SELECT (a FROM t 7", "SELECT a FROM t ?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.sql))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"SELECT a FROM t",
		"select a,b from t where x='1' and y=2 -- trailing",
		"SELECT 'abc",
		"SELECT (a FROM t",
		"SELECT a FROM t)",
		"SELECT a - -b FROM t",
		"SELECT a-/**/-b FROM t",
		`SELECT "it's" FROM t`,
		"WITH RECURSIVE r AS (SELECT 1 UNION ALL SELECT n + 1 FROM r) SELECT * FROM r",
		"SELECT €, $1, @v FROM t",
		"SELECT '--' , 'b",
		"SELECT 3.14.15 FROM t",
		"SELECT 1e5 FROM (t",
		"SELECT 2E3(fo2 FROM t",
		"SELECT 1.5e-3, 4E+2 FROM (t",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNormalizeFallbackNumbers(t *testing.T) {
	assert.Equal(t, Normalize("SELECT 1e5 FROM (t"), Normalize("SELECT 2e5 FROM (t"))
	assert.Equal(t, Normalize("SELECT 1e5 FROM t"), Normalize(Normalize("SELECT 1e5 FROM (t")))
}

func TestIsNumberLiteral(t *testing.T) {
	tests := []struct {
		in       string
		expected bool
	}{
		{"42", true},
		{"1.5", true},
		{"1e5", true},
		{"3E22", true},
		{"1.5e-3", true},
		{"", false},
		{"1e", false},
		{"1.", false},
		{"e5", false},
		{"1abc", false},
		{"x.5", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsNumberLiteral(tt.in))
		})
	}
}

func TestTokenize(t *testing.T) {
	set := Tokenize("select a, b from t where a = 'x'")
	assert.Equal(t, []string{"'X'", ",", "=", "A", "B", "FROM", "SELECT", "T", "WHERE"}, set.Sorted())
	assert.True(t, set.Contains("SELECT"))
	assert.False(t, set.Contains("select"))
}

func TestTokenizeCollapsesDuplicates(t *testing.T) {
	set := Tokenize("SELECT a FROM t UNION SELECT a FROM t")
	assert.Len(t, set, 5) // SELECT A FROM T UNION
}

func TestTokenizeEmpty(t *testing.T) {
	set := Tokenize("")
	assert.NotNil(t, set)
	assert.Empty(t, set)
}

func TestTokenizeFallback(t *testing.T) {
	set := Tokenize("select 'abc")
	assert.Equal(t, []string{"ABC", "SELECT"}, set.Sorted())
}

func TestStreamTiers(t *testing.T) {
	tokens, tier := Stream("SELECT a FROM t")
	assert.Equal(t, schema.StructuredTier, tier)
	require.Len(t, tokens, 4)
	assert.Equal(t, Keyword, tokens[0].Kind)
	assert.Equal(t, Identifier, tokens[1].Kind)

	_, tier = Stream("SELECT 'open")
	assert.Equal(t, schema.FallbackTier, tier)

	tokens, tier = Stream("")
	assert.Equal(t, schema.StructuredTier, tier)
	assert.Empty(t, tokens)
}

func TestStructuredLexerErrors(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		err  error
	}{
		{"open string", "SELECT 'abc", ErrUnterminatedString},
		{"lone quote", "'", ErrUnterminatedString},
		{"unclosed paren", "SELECT (a", ErrUnbalancedParens},
		{"extra close paren", "SELECT a)", ErrUnbalancedParens},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := StructuredLexer{}.Lex(tt.sql)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.err))
		})
	}
}

func TestStructuredLexerKinds(t *testing.T) {
	tokens, err := StructuredLexer{}.Lex("SELECT x.y, 'a' || 2 FROM t -- done")
	require.NoError(t, err)

	kinds := make([]Kind, len(tokens))
	texts := make([]string, len(tokens))
	for i, tok := range tokens {
		kinds[i] = tok.Kind
		texts[i] = tok.Text
	}
	assert.Equal(t, []string{"SELECT", "x", ".", "y", ",", "'a'", "||", "2", "FROM", "t"}, texts)
	assert.Equal(t, []Kind{Keyword, Identifier, Punctuation, Identifier, Punctuation, String, Operator, Number, Keyword, Identifier}, kinds)
}

func TestRegexLexerNeverFails(t *testing.T) {
	inputs := []string{"", "'''", "/* open", "((((", "\x00\xff", "日本語 テスト 42"}
	for _, in := range inputs {
		tokens := RegexLexer{}.Lex(in)
		assert.NotNil(t, tokens, "input %q", in)
	}

	tokens := RegexLexer{}.Lex("select 42 from t")
	require.Len(t, tokens, 4)
	assert.Equal(t, Keyword, tokens[0].Kind)
	assert.Equal(t, Number, tokens[1].Kind)
}

type failingLexer struct{}

func (failingLexer) Lex(string) ([]Token, error) { return nil, errors.New("boom") }

func TestTokenizerUsesFallback(t *testing.T) {
	tk := &Tokenizer{Primary: failingLexer{}, Fallback: RegexLexer{}}
	tokens, tier := tk.Stream("SELECT a FROM t")
	assert.Equal(t, schema.FallbackTier, tier)
	assert.Len(t, tokens, 4)
	assert.Equal(t, "SELECT a FROM t", tk.Normalize("select a from t"))
}

func TestIsKeyword(t *testing.T) {
	assert.True(t, IsKeyword("select"))
	assert.True(t, IsKeyword("ROW_NUMBER"))
	assert.False(t, IsKeyword("orders"))
	assert.False(t, IsKeyword("id"))
}
