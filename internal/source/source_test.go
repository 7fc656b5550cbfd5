package source

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLineColCRLF(t *testing.T) {
	mgr := NewManager()
	id, err := mgr.LoadBytes("t.leo", []byte("a\r\nbb\nccc\rd"))
	require.NoError(t, err)

	line, col := mgr.LineCol(id, 0)
	require.Equal(t, 1, line)
	require.Equal(t, 1, col)

	// "bb" starts right after the CRLF, at offset 3.
	line, col = mgr.LineCol(id, 3)
	require.Equal(t, 2, line)
	require.Equal(t, 1, col)

	// "ccc" starts after the LF at offset 6, at offset 6.
	line, col = mgr.LineCol(id, 6)
	require.Equal(t, 3, line)
	require.Equal(t, 1, col)

	// "d" starts after the lone CR, at offset 10.
	line, col = mgr.LineCol(id, 10)
	require.Equal(t, 4, line)
	require.Equal(t, 1, col)
}

func TestLineText(t *testing.T) {
	mgr := NewManager()
	id, err := mgr.LoadBytes("t.leo", []byte("function main() {\n    return 0u8;\n}\n"))
	require.NoError(t, err)
	require.Equal(t, "    return 0u8;", mgr.LineText(id, 22))
}

func TestEncodingError(t *testing.T) {
	mgr := NewManager()
	_, err := mgr.LoadBytes("bad.leo", []byte{0xff, 0xfe, 0xfd})
	require.Error(t, err)
}

func TestBagDedup(t *testing.T) {
	mgr := NewManager()
	id, _ := mgr.LoadBytes("t.leo", []byte("let x = 1;"))
	bag := NewBag()
	sp := Pos(id, 4)
	bag.Errorf(CodeUnresolvedName, sp, "undefined identifier %s", "x")
	bag.Errorf(CodeUnresolvedName, sp, "undefined identifier %s", "x")
	require.Len(t, bag.All(), 1)
	require.True(t, bag.HadErrors())
}
