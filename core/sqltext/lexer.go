package sqltext

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

const (
	whitespaceCode = iota
	lineCommentCode
	blockCommentCode
	stringCode
	quotedIdentCode
	numberCode
	wordCode
	operatorCode
	openStringCode
	openCommentCode
	anyCode
)

var (
	whitespaceToken   = parsly.NewToken(whitespaceCode, "Whitespace", &spaceMatcher{})
	lineCommentToken  = parsly.NewToken(lineCommentCode, "LineComment", &lineCommentMatcher{})
	blockCommentToken = parsly.NewToken(blockCommentCode, "BlockComment", matcher.NewSeqBlock("/*", "*/"))
	stringToken       = parsly.NewToken(stringCode, "String", &quotedMatcher{quote: '\''})
	doubleQuotedToken = parsly.NewToken(quotedIdentCode, "QuotedIdentifier", &quotedMatcher{quote: '"'})
	backtickToken     = parsly.NewToken(quotedIdentCode, "QuotedIdentifier", &quotedMatcher{quote: '`'})
	numberToken       = parsly.NewToken(numberCode, "Number", &numberMatcher{})
	wordToken         = parsly.NewToken(wordCode, "Word", &wordMatcher{})
	operatorToken     = parsly.NewToken(operatorCode, "Operator", matcher.NewFragments(
		[]byte("<="), []byte(">="), []byte("<>"), []byte("!="), []byte("||"),
		[]byte("::"), []byte(":="), []byte("=>"),
	))
	openStringToken  = parsly.NewToken(openStringCode, "UnterminatedString", matcher.NewByte('\''))
	openCommentToken = parsly.NewToken(openCommentCode, "UnterminatedComment", matcher.NewFragment("/*"))
	anyToken         = parsly.NewToken(anyCode, "Any", &runeMatcher{})
)

// Errors reported by the structured lexer.
var (
	ErrUnterminatedString  = errors.New("unterminated string literal")
	ErrUnterminatedComment = errors.New("unterminated block comment")
	ErrUnbalancedParens    = errors.New("unbalanced parentheses")
)

// StructuredLexer tokenizes SQL with a parsly cursor. It fails on input it
// cannot delimit: open string literals, open block comments or unbalanced parentheses.
type StructuredLexer struct{}

// Lex implements Lexer.
func (StructuredLexer) Lex(sql string) ([]Token, error) {
	cursor := parsly.NewCursor("", []byte(sql), 0)
	var tokens []Token
	depth := 0
	for cursor.Pos < cursor.InputSize {
		matched := cursor.MatchAfterOptional(whitespaceToken,
			lineCommentToken, blockCommentToken, openCommentToken,
			stringToken, openStringToken, doubleQuotedToken, backtickToken,
			numberToken, wordToken, operatorToken, anyToken)
		switch matched.Code {
		case parsly.EOF:
			// trailing whitespace
		case lineCommentCode, blockCommentCode:
		case openStringCode:
			return nil, fmt.Errorf("%w at offset %d", ErrUnterminatedString, cursor.Pos-1)
		case openCommentCode:
			return nil, fmt.Errorf("%w at offset %d", ErrUnterminatedComment, cursor.Pos-2)
		case stringCode:
			tokens = append(tokens, Token{Kind: String, Text: matched.Text(cursor)})
		case quotedIdentCode:
			tokens = append(tokens, Token{Kind: Identifier, Text: matched.Text(cursor)})
		case numberCode:
			tokens = append(tokens, Token{Kind: Number, Text: matched.Text(cursor)})
		case wordCode:
			tokens = append(tokens, wordTokenOf(matched.Text(cursor)))
		case operatorCode:
			tokens = append(tokens, Token{Kind: Operator, Text: matched.Text(cursor)})
		case anyCode:
			text := matched.Text(cursor)
			switch text {
			case "(":
				depth++
			case ")":
				depth--
				if depth < 0 {
					return nil, fmt.Errorf("%w: unexpected ')' at offset %d", ErrUnbalancedParens, cursor.Pos-1)
				}
			}
			tokens = append(tokens, Token{Kind: kindOfSymbol(text), Text: text})
		default:
			return nil, cursor.NewError(anyToken)
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("%w: %d unclosed '('", ErrUnbalancedParens, depth)
	}
	return tokens, nil
}

func wordTokenOf(text string) Token {
	if IsNumberLiteral(text) {
		return Token{Kind: Number, Text: text}
	}
	if IsKeyword(text) {
		return Token{Kind: Keyword, Text: text}
	}
	return Token{Kind: Identifier, Text: text}
}

func kindOfSymbol(text string) Kind {
	switch text {
	case "=", "<", ">", "+", "-", "*", "/", "%", "!", "|", "&", "^", "~":
		return Operator
	default:
		return Punctuation
	}
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

type spaceMatcher struct{}

func (m *spaceMatcher) Match(cursor *parsly.Cursor) (matched int) {
	for i := cursor.Pos; i < cursor.InputSize; {
		r, size := utf8.DecodeRune(cursor.Input[i:])
		if !unicode.IsSpace(r) {
			break
		}
		matched += size
		i += size
	}
	return matched
}

type lineCommentMatcher struct{}

func (m *lineCommentMatcher) Match(cursor *parsly.Cursor) (matched int) {
	input := cursor.Input[cursor.Pos:cursor.InputSize]
	if len(input) < 2 || input[0] != '-' || input[1] != '-' {
		return 0
	}
	for matched = 2; matched < len(input); matched++ {
		if input[matched] == '\n' {
			break
		}
	}
	return matched
}

// quotedMatcher matches a literal delimited by quote, where a doubled quote is an escape.
type quotedMatcher struct {
	quote byte
}

func (m *quotedMatcher) Match(cursor *parsly.Cursor) (matched int) {
	input := cursor.Input[cursor.Pos:cursor.InputSize]
	if len(input) < 2 || input[0] != m.quote {
		return 0
	}
	for i := 1; i < len(input); i++ {
		if input[i] != m.quote {
			continue
		}
		if i+1 < len(input) && input[i+1] == m.quote {
			i++
			continue
		}
		return i + 1
	}
	return 0
}

// numberMatcher matches integer, decimal and exponent literals that are not
// the prefix of a longer word such as 1abc.
type numberMatcher struct{}

func (m *numberMatcher) Match(cursor *parsly.Cursor) (matched int) {
	input := cursor.Input[cursor.Pos:cursor.InputSize]
	i := 0
	for i < len(input) && isDigit(input[i]) {
		i++
	}
	if i == 0 {
		return 0
	}
	if i+1 < len(input) && input[i] == '.' && isDigit(input[i+1]) {
		i++
		for i < len(input) && isDigit(input[i]) {
			i++
		}
	}
	if i < len(input) && (input[i] == 'e' || input[i] == 'E') {
		j := i + 1
		if j < len(input) && (input[j] == '+' || input[j] == '-') {
			j++
		}
		if j < len(input) && isDigit(input[j]) {
			for j < len(input) && isDigit(input[j]) {
				j++
			}
			i = j
		}
	}
	if i < len(input) {
		if r, _ := utf8.DecodeRune(input[i:]); isWordRune(r) {
			return 0
		}
	}
	return i
}

type wordMatcher struct{}

func (m *wordMatcher) Match(cursor *parsly.Cursor) (matched int) {
	for i := cursor.Pos; i < cursor.InputSize; {
		r, size := utf8.DecodeRune(cursor.Input[i:])
		if !isWordRune(r) {
			break
		}
		matched += size
		i += size
	}
	return matched
}

// runeMatcher consumes exactly one rune.
type runeMatcher struct{}

func (m *runeMatcher) Match(cursor *parsly.Cursor) (matched int) {
	if cursor.Pos >= cursor.InputSize {
		return 0
	}
	_, size := utf8.DecodeRune(cursor.Input[cursor.Pos:])
	return size
}

// RegexLexer splits text into unicode word runs. It never fails.
type RegexLexer struct{}

// Lex implements FallbackLexer.
func (RegexLexer) Lex(sql string) []Token {
	words := fallbackWordPattern.FindAllString(sql, -1)
	tokens := make([]Token, 0, len(words))
	for _, w := range words {
		tokens = append(tokens, wordTokenOf(w))
	}
	return tokens
}
