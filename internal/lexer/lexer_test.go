package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ProvableHQ/leo/internal/source"
	"github.com/ProvableHQ/leo/internal/token"
)

func tokenize(t *testing.T, src string) ([]token.Token, *source.Bag) {
	t.Helper()
	mgr := source.NewManager()
	id, err := mgr.LoadBytes("t.leo", []byte(src))
	require.NoError(t, err)
	bag := source.NewBag()
	toks := New(mgr, id, bag).Tokenize()
	return toks, bag
}

func kinds(toks []token.Token) []token.Kind {
	var ks []token.Kind
	for _, tk := range toks {
		ks = append(ks, tk.Kind)
	}
	return ks
}

func TestKeywordIdentifierLiteral(t *testing.T) {
	toks, bag := tokenize(t, "function main() -> u8 { return 0u8; }")
	require.False(t, bag.HadErrors())
	require.Equal(t, token.Keyword, toks[0].Kind)
	require.Equal(t, "function", toks[0].Text)
	require.Equal(t, token.Identifier, toks[1].Kind)
	require.Equal(t, token.Keyword, toks[5].Kind) // u8 is a keyword (primitive type)
}

func TestAddressLiteral(t *testing.T) {
	addr := "aleo1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqq"
	require.Len(t, addr, 63)
	toks, bag := tokenize(t, addr)
	require.False(t, bag.HadErrors())
	require.Equal(t, token.AddressLiteral, toks[0].Kind)
}

func TestReservedPrefixNotAddress(t *testing.T) {
	// S1: a "aleo1" prefixed name of the wrong length is reserved, not a
	// legal identifier, and not a well-formed address either.
	_, bag := tokenize(t, "aleo1abcdefghijklmnopqrstuvwxyz0123456789abcdefghijklmnopqrs")
	require.True(t, bag.HadErrors())
}

func TestNumericSuffixes(t *testing.T) {
	toks, bag := tokenize(t, "5u8 10field 3group 42")
	require.False(t, bag.HadErrors())
	require.Equal(t, token.UnsignedLiteral, toks[0].Kind)
	require.Equal(t, "u8", toks[0].Suffix)
	require.Equal(t, token.FieldLiteral, toks[1].Kind)
	require.Equal(t, token.GroupLiteral, toks[2].Kind)
	require.Equal(t, token.IntegerLiteral, toks[3].Kind)
	require.Equal(t, "", toks[3].Suffix)
}

func TestUnknownSuffixSplitsIntoSeparateIdentifier(t *testing.T) {
	toks, bag := tokenize(t, "5abc")
	require.False(t, bag.HadErrors())
	require.Equal(t, token.IntegerLiteral, toks[0].Kind)
	require.Equal(t, "5", toks[0].Text)
	require.Equal(t, token.Identifier, toks[1].Kind)
	require.Equal(t, "abc", toks[1].Text)
}

func TestCharLiteralEscapes(t *testing.T) {
	toks, bag := tokenize(t, `'a' '\n' '\x41' '\u{1F600}'`)
	require.False(t, bag.HadErrors())
	require.Equal(t, 'a', toks[0].Rune())
	require.Equal(t, '\n', toks[1].Rune())
	require.Equal(t, rune(0x41), toks[2].Rune())
	require.Equal(t, rune(0x1F600), toks[3].Rune())
}

func TestStringLiteralElementCount(t *testing.T) {
	toks, bag := tokenize(t, `"abc"`)
	require.False(t, bag.HadErrors())
	require.Equal(t, token.StringLiteral, toks[0].Kind)
	require.Len(t, toks[0].Runes, 3)
}

func TestEmptyString(t *testing.T) {
	toks, bag := tokenize(t, `""`)
	require.False(t, bag.HadErrors())
	require.Len(t, toks[0].Runes, 0)
}

func TestUnterminatedBlockComment(t *testing.T) {
	_, bag := tokenize(t, "/* never closes")
	require.True(t, bag.HadErrors())
	require.Equal(t, source.CodeUnterminatedBlockComment, bag.All()[0].Code)
}

func TestLongestMatchOperators(t *testing.T) {
	toks, bag := tokenize(t, "a **= b ** c ..= d .. e")
	require.False(t, bag.HadErrors())
	var syms []string
	for _, tk := range toks {
		if tk.Kind == token.Symbol {
			syms = append(syms, tk.Text)
		}
	}
	require.Equal(t, []string{"**=", "**", "..=", ".."}, syms)
}

func TestAffineGroupCloseToken(t *testing.T) {
	toks, bag := tokenize(t, "(1, 2)group")
	require.False(t, bag.HadErrors())
	last := toks[len(toks)-2] // before EOF
	require.Equal(t, token.Symbol, last.Kind)
	require.Equal(t, ")group", last.Text)
}

func TestGroupCloseRequiresNoWhitespace(t *testing.T) {
	toks, _ := tokenize(t, "(1, 2) group")
	// With whitespace, ')' and 'group' are two separate tokens.
	var texts []string
	for _, tk := range toks {
		texts = append(texts, tk.Text)
	}
	require.Contains(t, texts, ")")
	require.Contains(t, texts, "group")
}

func TestCommentsStripped(t *testing.T) {
	toks, bag := tokenize(t, "// line comment\nlet /* block */ x = 1;")
	require.False(t, bag.HadErrors())
	require.Equal(t, token.Keyword, toks[0].Kind)
	require.Equal(t, "let", toks[0].Text)
}
