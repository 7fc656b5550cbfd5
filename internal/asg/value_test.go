package asg

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEqualInt(t *testing.T) {
	a := Value{Kind: ValInt, Int: big.NewInt(5)}
	b := Value{Kind: ValInt, Int: big.NewInt(5)}
	c := Value{Kind: ValInt, Int: big.NewInt(6)}
	require.True(t, Equal(a, b))
	require.False(t, Equal(a, c))
}

func TestEqualArray(t *testing.T) {
	a := Value{Kind: ValArray, Elems: []Value{
		{Kind: ValInt, Int: big.NewInt(1)},
		{Kind: ValInt, Int: big.NewInt(2)},
	}}
	b := Value{Kind: ValArray, Elems: []Value{
		{Kind: ValInt, Int: big.NewInt(1)},
		{Kind: ValInt, Int: big.NewInt(2)},
	}}
	require.True(t, Equal(a, b))
}

func TestEqualAffineGroupWithWildcard(t *testing.T) {
	a := Value{Kind: ValAffineGroup, GX: big.NewInt(1), GY: nil}
	b := Value{Kind: ValAffineGroup, GX: big.NewInt(1), GY: nil}
	c := Value{Kind: ValAffineGroup, GX: big.NewInt(1), GY: big.NewInt(2)}
	require.True(t, Equal(a, b))
	require.False(t, Equal(a, c))
}

func TestEqualDifferentKinds(t *testing.T) {
	a := Value{Kind: ValBool, Bool: true}
	b := Value{Kind: ValInt, Int: big.NewInt(1)}
	require.False(t, Equal(a, b))
}
