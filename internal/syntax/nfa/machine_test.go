package nfa

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/tedit/internal/engine/buffer"
	"github.com/dshills/tedit/internal/syntax/scan"
)

const (
	kindIf Kind = iota
	kindIdent
	kindNumber
	kindSpace
)

func matchAll(t *testing.T, m *Machine, input string) []Token {
	t.Helper()
	sc := scan.NewString(input)
	var toks []Token
	for !sc.AtEnd() {
		tok, ok := m.Match(sc)
		require.True(t, ok, "no match at %d in %q", sc.Position(), input)
		toks = append(toks, tok)
	}
	return toks
}

func TestMatch_LongestMatchBeatsKeyword(t *testing.T) {
	m := MustCompile(
		Pattern{Kind: kindIf, Expr: "if"},
		Pattern{Kind: kindIdent, Expr: "[a-zA-Z_]\\w*"},
	)

	toks := matchAll(t, m, "iffy")
	require.Len(t, toks, 1)
	assert.Equal(t, Token{Kind: kindIdent, Start: 0, Len: 4}, toks[0])
}

func TestMatch_RegistrationOrderBreaksTies(t *testing.T) {
	keywordFirst := MustCompile(
		Pattern{Kind: kindIf, Expr: "if"},
		Pattern{Kind: kindIdent, Expr: "[a-z]+"},
	)
	identFirst := MustCompile(
		Pattern{Kind: kindIdent, Expr: "[a-z]+"},
		Pattern{Kind: kindIf, Expr: "if"},
	)

	tok, ok := keywordFirst.Match(scan.NewString("if"))
	require.True(t, ok)
	assert.Equal(t, kindIf, tok.Kind)

	tok, ok = identFirst.Match(scan.NewString("if"))
	require.True(t, ok)
	assert.Equal(t, kindIdent, tok.Kind)
}

func TestMatch_Deterministic(t *testing.T) {
	m := MustCompile(
		Pattern{Kind: kindIf, Expr: "if"},
		Pattern{Kind: kindIdent, Expr: "[a-z]+"},
		Pattern{Kind: kindNumber, Expr: "[0-9]+"},
		Pattern{Kind: kindSpace, Expr: "\\s+"},
	)

	input := "if x1 42 iffy"
	first := matchAll(t, m, input)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, matchAll(t, m, input))
	}
	assert.Equal(t, []Token{
		{kindIf, 0, 2}, {kindSpace, 2, 1}, {kindIdent, 3, 1}, {kindNumber, 4, 1},
		{kindSpace, 5, 1}, {kindNumber, 6, 2}, {kindSpace, 8, 1}, {kindIdent, 9, 4},
	}, first)
}

func TestMatch_NoMatchRewinds(t *testing.T) {
	m := MustCompile(Pattern{Kind: kindNumber, Expr: "[0-9]+\\.[0-9]+"})
	sc := scan.NewString("12.x")

	_, ok := m.Match(sc)
	assert.False(t, ok)
	assert.Equal(t, 0, sc.Position())
}

func TestMatch_BacksOffToLastAccept(t *testing.T) {
	m := MustCompile(
		Pattern{Kind: kindNumber, Expr: "[0-9]+"},
		Pattern{Kind: kindIdent, Expr: "[0-9]+\\.[0-9]+"},
	)
	sc := scan.NewString("12.x")

	tok, ok := m.Match(sc)
	require.True(t, ok)
	assert.Equal(t, Token{Kind: kindNumber, Start: 0, Len: 2}, tok)
	assert.Equal(t, 2, sc.Position())
}

func TestMatch_ZeroLengthIsNoMatch(t *testing.T) {
	m := MustCompile(Pattern{Kind: kindSpace, Expr: " *"})

	_, ok := m.Match(scan.NewString("abc"))
	assert.False(t, ok)
}

func TestMatch_Syntax(t *testing.T) {
	tests := []struct {
		name  string
		expr  string
		input string
		want  int // length of the match, 0 for no match
	}{
		{"literal", "abc", "abcd", 3},
		{"any stops at newline", ".+", "ab\ncd", 2},
		{"star", "ab*", "abbbc", 4},
		{"plus needs one", "ab+", "ac", 0},
		{"question", "colou?r", "color", 5},
		{"alternation", "cat|dog", "dogs", 3},
		{"empty alternative", "a(b|)c", "ac", 2},
		{"group repeat", "(ab)+", "ababa", 4},
		{"nested groups", "((a|b)c)*d", "acbcd", 5},
		{"class range", "[a-c]+", "abcd", 3},
		{"negated class", "[^\\r\\n]+", "line\r\n", 4},
		{"negated class matches newline", "[^x]+", "a\nbx", 3},
		{"literal bracket first", "[]a]+", "a]a]b", 4},
		{"literal dash last", "[a-]+", "a-a-b", 4},
		{"literal dash first", "[-+]?[0-9]+", "-42", 3},
		{"digit escape", "\\d+", "123a", 3},
		{"non-digit escape", "\\D+", "ab1", 2},
		{"word escape", "\\w+", "foo_bar9 x", 8},
		{"space excludes newline", "\\s+", " \t\r\n", 3},
		{"non-space", "\\S+", "ab c", 2},
		{"newline escape", "\\n", "\n", 1},
		{"escaped meta", "\\.\\*\\(", ".*(", 3},
		{"class escape inside brackets", "[\\d.]+", "3.14x", 4},
		{"unicode literal", "é+", "ééa", 2},
		{"floating point", "[+-]?([0-9]+([.][0-9]*)?|[.][0-9]+)([eE][+-]?[0-9]+)?", "-1.5e10x", 7},
		{"quoted string", "\"[^\"]*\"", "\"hi there\" rest", 10},
		{"todo name", "\\[[^\\[\\]]+\\]", "[Project] x", 9},
		{"star of nullable", "(a*)*b", "aab", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Compile(Pattern{Kind: 0, Expr: tt.expr})
			require.NoError(t, err)

			tok, ok := m.Match(scan.NewString(tt.input))
			if tt.want == 0 {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, tok.Len)
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		expr string
		pos  int
	}{
		{"empty", "", 0},
		{"unmatched open", "(ab", 0},
		{"unmatched close", "ab)", 2},
		{"nothing to repeat", "*a", 0},
		{"repeat after bar", "a|+", 2},
		{"unterminated class", "[abc", 0},
		{"empty class", "[]", 0},
		{"invalid range", "[z-a]", 1},
		{"trailing backslash", "ab\\", 2},
		{"class escape ends range", "[a-\\d]", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(Pattern{Kind: 1, Expr: "ok"}, Pattern{Kind: 2, Expr: tt.expr})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrPatternCompile))

			var ce *CompileError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, 1, ce.Index)
			assert.Equal(t, tt.expr, ce.Pattern)
			assert.Equal(t, tt.pos, ce.Pos)
		})
	}
}

func TestCompile_EmptySetAndReservedKind(t *testing.T) {
	_, err := Compile()
	assert.ErrorIs(t, err, ErrPatternCompile)

	_, err = Compile(Pattern{Kind: End, Expr: "x"})
	assert.ErrorIs(t, err, ErrPatternCompile)

	assert.Panics(t, func() { MustCompile(Pattern{Kind: 0, Expr: "("}) })
}

func TestStepAndAccepting(t *testing.T) {
	m := MustCompile(
		Pattern{Kind: kindIf, Expr: "if"},
		Pattern{Kind: kindIdent, Expr: "[a-z]+"},
	)

	_, ok := m.Accepting()
	assert.False(t, ok)
	assert.True(t, m.Alive())

	assert.True(t, m.Step('i'))
	k, ok := m.Accepting()
	require.True(t, ok)
	assert.Equal(t, kindIdent, k)

	assert.True(t, m.Step('f'))
	k, _ = m.Accepting()
	assert.Equal(t, kindIf, k)

	assert.False(t, m.Step('1'))
	assert.False(t, m.Alive())

	m.Reset()
	assert.True(t, m.Alive())
	assert.True(t, m.Step('z'))
}

func TestMatch_OverBuffer(t *testing.T) {
	b := buffer.NewFromString("alpha\nbeta")
	m := MustCompile(
		Pattern{Kind: kindIdent, Expr: "[a-z]+"},
		Pattern{Kind: kindSpace, Expr: "\\n"},
	)
	sc := scan.NewBuffer(b)

	var toks []Token
	for !sc.AtEnd() {
		tok, ok := m.Match(sc)
		require.True(t, ok)
		toks = append(toks, tok)
	}
	require.Len(t, toks, 3)
	assert.Equal(t, Token{Kind: kindIdent, Start: 6, Len: 4}, toks[2])
	assert.Equal(t, buffer.Point{Line: 1, Column: 0}, sc.PointAt(toks[2].Start))
}

func TestKindAndTokenString(t *testing.T) {
	assert.Equal(t, "End", End.String())
	assert.Equal(t, "Unknown", Unknown.String())
	assert.Equal(t, "Root", Root.String())
	assert.Equal(t, "7", Kind(7).String())
	assert.Equal(t, "3: 4..9", Token{Kind: 3, Start: 4, Len: 5}.String())
	assert.Equal(t, 9, Token{Start: 4, Len: 5}.Stop())
}
