// Package sqltext canonicalizes SQL text and splits it into tokens.
package sqltext

import (
	"regexp"
	"sort"
	"strings"

	"github.com/huangsam/sqlscope/schema"
)

// Kind classifies a lexical token.
type Kind int

// Token kinds.
const (
	Keyword Kind = iota
	Identifier
	Number
	String
	Operator
	Punctuation
)

// Token is one lexical unit of SQL text, whitespace and comments excluded.
type Token struct {
	Kind Kind
	Text string
}

// Upper returns the token text in upper case.
func (t Token) Upper() string {
	return strings.ToUpper(t.Text)
}

// IsWord reports whether the token is a bare keyword or identifier.
func (t Token) IsWord() bool {
	return t.Kind == Keyword || (t.Kind == Identifier && t.Text != "" && isWordRune(firstRune(t.Text)))
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

// Lexer is the structured tier. It may reject malformed text.
type Lexer interface {
	Lex(sql string) ([]Token, error)
}

// FallbackLexer is the last-resort tier. It must accept any text.
type FallbackLexer interface {
	Lex(sql string) []Token
}

var (
	fallbackWordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	numberLiteral       = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)
)

// IsNumberLiteral reports whether s is an integer, decimal or exponent literal
// such as 42, 1.5 or 3E22, the same literals numberMatcher accepts.
func IsNumberLiteral(s string) bool {
	return numberLiteral.MatchString(s)
}

// Tokenizer tries Primary first and falls back to Fallback on any error.
type Tokenizer struct {
	Primary  Lexer
	Fallback FallbackLexer
}

// NewTokenizer returns a tokenizer with the parsly lexer and the word-split fallback.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{Primary: StructuredLexer{}, Fallback: RegexLexer{}}
}

// Stream returns the ordered token stream of sql and the tier that produced it.
func (t *Tokenizer) Stream(sql string) ([]Token, schema.TokenizerTier) {
	if t.Primary != nil {
		if tokens, err := t.Primary.Lex(sql); err == nil {
			return tokens, schema.StructuredTier
		}
	}
	tokens := t.Fallback.Lex(sql)
	if tokens == nil {
		tokens = []Token{}
	}
	return tokens, schema.FallbackTier
}

// Tokenize returns the upper-cased set of distinct tokens in sql.
func (t *Tokenizer) Tokenize(sql string) TokenSet {
	tokens, _ := t.Stream(sql)
	return NewTokenSet(tokens)
}

// Normalize canonicalizes sql: comments are dropped, keywords upper-cased,
// numeric and string literals replaced by ?, and tokens joined by single spaces.
func (t *Tokenizer) Normalize(sql string) string {
	if strings.TrimSpace(sql) == "" {
		return ""
	}
	tokens, _ := t.Stream(sql)
	return Render(tokens)
}

// Render joins tokens the way Normalize does. An empty stream renders as "".
func Render(tokens []Token) string {
	var sb strings.Builder
	for i, tok := range tokens {
		if i > 0 {
			sb.WriteByte(' ')
		}
		switch tok.Kind {
		case Number, String:
			sb.WriteByte('?')
		case Keyword:
			sb.WriteString(tok.Upper())
		default:
			sb.WriteString(tok.Text)
		}
	}
	return sb.String()
}

// TokenSet is a set of upper-cased token values.
type TokenSet map[string]struct{}

// NewTokenSet collects the upper-cased values of tokens.
func NewTokenSet(tokens []Token) TokenSet {
	set := make(TokenSet, len(tokens))
	for _, tok := range tokens {
		set[tok.Upper()] = struct{}{}
	}
	return set
}

// Contains reports whether v is in the set.
func (s TokenSet) Contains(v string) bool {
	_, ok := s[v]
	return ok
}

// Sorted returns the set members in ascending order.
func (s TokenSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

var defaultTokenizer = NewTokenizer()

// Stream tokenizes sql with the default tokenizer.
func Stream(sql string) ([]Token, schema.TokenizerTier) {
	return defaultTokenizer.Stream(sql)
}

// Tokenize returns the token set of sql using the default tokenizer.
func Tokenize(sql string) TokenSet {
	return defaultTokenizer.Tokenize(sql)
}

// Normalize canonicalizes sql using the default tokenizer.
func Normalize(sql string) string {
	return defaultTokenizer.Normalize(sql)
}
