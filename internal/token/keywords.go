package token

// Keywords is the fixed reserved word set: no "mut", no "string" (strings
// are sugar over [char; N]), "type" is reserved for type aliases.
var Keywords = map[string]bool{
	"function": true, "circuit": true, "let": true, "const": true,
	"return": true, "if": true, "else": true, "for": true, "in": true,
	"import": true, "as": true, "true": true, "false": true,
	"self": true, "Self": true, "input": true, "console": true,
	"static": true, "type": true,

	// primitive type names
	"bool": true, "char": true, "address": true, "field": true, "group": true,
	"u8": true, "u16": true, "u32": true, "u64": true, "u128": true,
	"i8": true, "i16": true, "i32": true, "i64": true, "i128": true,
}

// IntegerSuffixes is the set of recognized numeric-literal type suffixes.
var IntegerSuffixes = map[string]bool{
	"u8": true, "u16": true, "u32": true, "u64": true, "u128": true,
	"i8": true, "i16": true, "i32": true, "i64": true, "i128": true,
	"field": true, "group": true,
}

// IsPrimitiveType reports whether name names a scalar primitive type.
func IsPrimitiveType(name string) bool {
	switch name {
	case "bool", "char", "address", "field", "group",
		"u8", "u16", "u32", "u64", "u128",
		"i8", "i16", "i32", "i64", "i128":
		return true
	}
	return false
}
