package asg

import "math/big"

// ValueKind tags the variant of a Value.
type ValueKind int

const (
	ValInvalid ValueKind = iota
	ValBool
	ValInt // field, group scalar, and every sized integer kind share big.Int storage
	ValAddress
	ValChar
	ValArray
	ValTuple
	ValCircuit
	ValAffineGroup
)

// Value is a fully const-evaluated Leo value, produced by internal/sema's
// const evaluator for array dimensions, for-loop bounds, const-parameter
// arguments, and global const initializers.
type Value struct {
	Kind  ValueKind
	Bool  bool
	Int   *big.Int
	Addr  string
	Char  rune
	Elems []Value // ValArray, ValTuple

	// ValAffineGroup:
	GX, GY *big.Int // nil component means the "_"/"+"/"-" inferred marker

	// ValCircuit:
	CircuitName string
	Fields      map[string]Value
}

// Equal reports whether two const values are identical. Circuit values
// compare field-by-field (circuits have no identity at the value level,
// only at the type level).
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ValBool:
		return a.Bool == b.Bool
	case ValInt:
		return a.Int.Cmp(b.Int) == 0
	case ValAddress:
		return a.Addr == b.Addr
	case ValChar:
		return a.Char == b.Char
	case ValArray, ValTuple:
		if len(a.Elems) != len(b.Elems) {
			return false
		}
		for i := range a.Elems {
			if !Equal(a.Elems[i], b.Elems[i]) {
				return false
			}
		}
		return true
	case ValCircuit:
		if a.CircuitName != b.CircuitName || len(a.Fields) != len(b.Fields) {
			return false
		}
		for k, v := range a.Fields {
			ov, ok := b.Fields[k]
			if !ok || !Equal(v, ov) {
				return false
			}
		}
		return true
	case ValAffineGroup:
		return cmpNilable(a.GX, b.GX) && cmpNilable(a.GY, b.GY)
	default:
		return true
	}
}

func cmpNilable(a, b *big.Int) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	if a == nil {
		return true
	}
	return a.Cmp(b) == 0
}
