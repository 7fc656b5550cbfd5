package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScalarString(t *testing.T) {
	require.Equal(t, "u32", Scalar(U32).String())
	require.Equal(t, "field", Scalar(Field).String())
}

func TestArrayString(t *testing.T) {
	elem := Scalar(Bool)
	arr := Type{Kind: Array, Elem: &elem, Len: 3}
	require.Equal(t, "[bool; 3]", arr.String())
}

func TestTupleEqual(t *testing.T) {
	a := Type{Kind: Tuple, Elems: []Type{Scalar(U8), Scalar(Bool)}}
	b := Type{Kind: Tuple, Elems: []Type{Scalar(U8), Scalar(Bool)}}
	c := Type{Kind: Tuple, Elems: []Type{Scalar(U8), Scalar(U8)}}
	require.True(t, Equal(a, b))
	require.False(t, Equal(a, c))
}

func TestCircuitEqualityIsNominal(t *testing.T) {
	defA := &CircuitDef{Name: "Point"}
	defB := &CircuitDef{Name: "Point"}
	a := Type{Kind: Circuit, CircuitDef: defA}
	b := Type{Kind: Circuit, CircuitDef: defA}
	c := Type{Kind: Circuit, CircuitDef: defB}
	require.True(t, Equal(a, b))
	require.False(t, Equal(a, c), "two distinct CircuitDefs with the same name must not compare equal")
}

func TestIsIntegerAndSigned(t *testing.T) {
	require.True(t, IsInteger(U64))
	require.True(t, IsInteger(I128))
	require.False(t, IsInteger(Bool))
	require.True(t, IsSigned(I8))
	require.False(t, IsSigned(U8))
}

func TestBitWidth(t *testing.T) {
	require.Equal(t, 8, BitWidth(U8))
	require.Equal(t, 128, BitWidth(I128))
	require.Equal(t, 0, BitWidth(Bool))
}

func TestIsConstSizedArray(t *testing.T) {
	elem := Scalar(U8)
	require.True(t, IsConstSized(Type{Kind: Array, Elem: &elem, Len: 4}))
}
