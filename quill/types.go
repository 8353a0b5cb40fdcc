package quill

import "fmt"

// NodeKind identifies a TypeNode's wire encoding family.
type NodeKind uint8

const (
	NodeInt NodeKind = iota
	NodeFloat
	NodeFloat24
	NodeBool
	NodeBoolPacked
	NodeString      // length-prefixed, prefix width in width
	NodeStringFixed // declared length, pad/truncate
	NodeStringNT    // NUL-terminated
	NodeVoid
	NodeNil
	NodeAny
	NodeVector2
	NodeVector3
	NodeTransform
	NodeColor
	NodeEnum
	NodeArray // length-prefixed, prefix width in width
	NodeArrayFixed
	NodeMap // length-prefixed, prefix width in width
	NodeMapFixed
	NodeStruct
	NodeOptional
	NodeBits
)

// String returns the kind name.
func (k NodeKind) String() string {
	switch k {
	case NodeInt:
		return "int"
	case NodeFloat:
		return "float"
	case NodeFloat24:
		return "float24"
	case NodeBool:
		return "bool"
	case NodeBoolPacked:
		return "boolpacked"
	case NodeString:
		return "string"
	case NodeStringFixed:
		return "stringfixed"
	case NodeStringNT:
		return "stringnt"
	case NodeVoid:
		return "void"
	case NodeNil:
		return "nil"
	case NodeAny:
		return "any"
	case NodeVector2:
		return "vector2"
	case NodeVector3:
		return "vector3"
	case NodeTransform:
		return "transform"
	case NodeColor:
		return "color"
	case NodeEnum:
		return "enum"
	case NodeArray:
		return "array"
	case NodeArrayFixed:
		return "arrayfixed"
	case NodeMap:
		return "map"
	case NodeMapFixed:
		return "mapfixed"
	case NodeStruct:
		return "struct"
	case NodeOptional:
		return "optional"
	case NodeBits:
		return "bits"
	default:
		return "unknown"
	}
}

// TypeNode is an immutable description of one value's wire encoding.
//
// Nodes are built with the factory functions below and composed into
// trees; composite nodes own copies of their children, so schemas are
// trees with no sharing and no cycles. A TypeNode is never mutated
// after construction and is safe to reuse across serializers.
type TypeNode struct {
	kind   NodeKind
	width  int  // byte width of ints/floats/bits elements and of length prefixes
	signed bool // integers only
	length int  // fixed lengths and counts
	f24    bool // vector/transform precision variant

	domain   []string // enum only
	children []TypeNode
	fields   []StructField
}

// StructField is one named field of a Struct type, in declared order.
type StructField struct {
	Name string
	Type TypeNode
}

// NamedField creates a StructField for use in Struct construction.
func NamedField(name string, t TypeNode) StructField {
	return StructField{Name: name, Type: t}
}

// NodeKind returns the node's encoding family.
func (t TypeNode) NodeKind() NodeKind {
	return t.kind
}

// String returns a compact human-readable description of the node,
// used in error messages.
func (t TypeNode) String() string {
	switch t.kind {
	case NodeInt:
		if t.signed {
			return fmt.Sprintf("int%d", t.width*8)
		}
		return fmt.Sprintf("uint%d", t.width*8)
	case NodeFloat:
		return fmt.Sprintf("float%d", t.width*8)
	case NodeStringFixed:
		return fmt.Sprintf("stringfixed(%d)", t.length)
	case NodeArray, NodeMap:
		return t.kind.String()
	case NodeArrayFixed:
		return fmt.Sprintf("arrayfixed(%d)", t.length)
	case NodeMapFixed:
		return fmt.Sprintf("mapfixed(%d)", t.length)
	case NodeBits:
		return fmt.Sprintf("bits%d(%d)", t.width*8, t.length)
	default:
		return t.kind.String()
	}
}

// ============================================================
// Factory surface: primitives
// ============================================================

// Int8 describes a signed 8-bit integer.
func Int8() TypeNode { return TypeNode{kind: NodeInt, width: 1, signed: true} }

// Int16 describes a signed 16-bit integer.
func Int16() TypeNode { return TypeNode{kind: NodeInt, width: 2, signed: true} }

// Int32 describes a signed 32-bit integer.
func Int32() TypeNode { return TypeNode{kind: NodeInt, width: 4, signed: true} }

// Int64 describes a signed 64-bit integer.
func Int64() TypeNode { return TypeNode{kind: NodeInt, width: 8, signed: true} }

// Uint8 describes an unsigned 8-bit integer.
func Uint8() TypeNode { return TypeNode{kind: NodeInt, width: 1} }

// Uint16 describes an unsigned 16-bit integer.
func Uint16() TypeNode { return TypeNode{kind: NodeInt, width: 2} }

// Uint32 describes an unsigned 32-bit integer.
func Uint32() TypeNode { return TypeNode{kind: NodeInt, width: 4} }

// Uint64 describes an unsigned 64-bit integer. Values are carried in
// an int64, so the effective encode range is 0..math.MaxInt64.
func Uint64() TypeNode { return TypeNode{kind: NodeInt, width: 8} }

// Float32 describes an IEEE 754 single-precision float.
func Float32() TypeNode { return TypeNode{kind: NodeFloat, width: 4} }

// Float64 describes an IEEE 754 double-precision float.
func Float64() TypeNode { return TypeNode{kind: NodeFloat, width: 8} }

// Float24 describes the reduced-precision 3-byte float format: a sign
// bit, a 7-bit exponent (bias 63) and a 16-bit mantissa. Encoding
// rounds to nearest; values outside the exponent range become ±Inf and
// values too small to normalize flush to ±0. The precision loss is
// deterministic: re-encoding a decoded Float24 value reproduces the
// same three bytes.
func Float24() TypeNode { return TypeNode{kind: NodeFloat24, width: 3} }

// Bool describes a 1-byte boolean (0 or 1).
func Bool() TypeNode { return TypeNode{kind: NodeBool} }

// BoolPacked describes a group of exactly 8 booleans packed into one
// byte. Element i of the group occupies bit i (LSB first). The value
// is a list of exactly 8 bools.
func BoolPacked() TypeNode { return TypeNode{kind: NodeBoolPacked, length: 8} }

// String describes a string with a 2-byte length prefix
// (max 65535 bytes).
func String() TypeNode { return TypeNode{kind: NodeString, width: 2} }

// StringTiny describes a string with a 1-byte length prefix
// (max 255 bytes).
func StringTiny() TypeNode { return TypeNode{kind: NodeString, width: 1} }

// StringFixed describes a string stored in exactly length bytes with
// no prefix. Encode pads short values with NUL bytes and truncates
// long ones; decode strips trailing NUL padding, so values shorter
// than the slot round-trip exactly.
func StringFixed(length int) TypeNode {
	return TypeNode{kind: NodeStringFixed, length: length}
}

// StringNT describes a NUL-terminated string. Encoding a value that
// itself contains a NUL byte fails.
func StringNT() TypeNode { return TypeNode{kind: NodeStringNT} }

// Void describes a zero-byte slot: the value is accepted and ignored
// on encode, and decodes as Nil.
func Void() TypeNode { return TypeNode{kind: NodeVoid} }

// NilType describes a zero-byte slot that only accepts the nil value.
func NilType() TypeNode { return TypeNode{kind: NodeNil} }

// Any describes a self-describing slot: the value's type is inferred
// at encode time and a type tag is embedded before its payload, using
// the same tag protocol as the dynamic engine.
func Any() TypeNode { return TypeNode{kind: NodeAny} }

// ============================================================
// Factory surface: geometry and domain types
// ============================================================

// Vector2 describes a 2D vector as two float32 components (X, Y).
func Vector2() TypeNode { return TypeNode{kind: NodeVector2} }

// Vector2F24 describes a 2D vector with Float24 components.
func Vector2F24() TypeNode { return TypeNode{kind: NodeVector2, f24: true} }

// Vector3 describes a 3D vector as three float32 components (X, Y, Z).
func Vector3() TypeNode { return TypeNode{kind: NodeVector3} }

// Vector3F24 describes a 3D vector with Float24 components.
func Vector3F24() TypeNode { return TypeNode{kind: NodeVector3, f24: true} }

// Transform describes a rigid transform as six float32 components:
// position X Y Z followed by Euler rotation X Y Z.
func Transform() TypeNode { return TypeNode{kind: NodeTransform} }

// TransformF24 describes a transform with Float24 components.
func TransformF24() TypeNode { return TypeNode{kind: NodeTransform, f24: true} }

// Color describes an RGB color as three bytes, R then G then B.
func Color() TypeNode { return TypeNode{kind: NodeColor} }

// Enum describes an enumeration over the given ordered domain of item
// names. Values encode as a 2-byte index into the domain, so encoder
// and decoder must be constructed with the same domain in the same
// order. The domain may hold at most 65536 items.
func Enum(domain ...string) TypeNode {
	d := make([]string, len(domain))
	copy(d, domain)
	return TypeNode{kind: NodeEnum, domain: d}
}

// ============================================================
// Factory surface: composites
// ============================================================

// Array describes a variable-length array with a 2-byte element count
// prefix (max 65535 elements).
func Array(elem TypeNode) TypeNode {
	return TypeNode{kind: NodeArray, width: 2, children: []TypeNode{elem}}
}

// ArrayTiny describes a variable-length array with a 1-byte element
// count prefix (max 255 elements).
func ArrayTiny(elem TypeNode) TypeNode {
	return TypeNode{kind: NodeArray, width: 1, children: []TypeNode{elem}}
}

// ArrayFixed describes an array of exactly length elements with no
// prefix. Encoding a value with any other element count fails.
func ArrayFixed(elem TypeNode, length int) TypeNode {
	return TypeNode{kind: NodeArrayFixed, length: length, children: []TypeNode{elem}}
}

// Map describes a variable-length map with a 2-byte entry count
// prefix (max 65535 entries). Entries encode in the value's insertion
// order, key then value.
func Map(key, value TypeNode) TypeNode {
	return TypeNode{kind: NodeMap, width: 2, children: []TypeNode{key, value}}
}

// MapFixed describes a map of exactly length entries with no prefix.
func MapFixed(key, value TypeNode, length int) TypeNode {
	return TypeNode{kind: NodeMapFixed, length: length, children: []TypeNode{key, value}}
}

// Struct describes a record with the given ordered named fields. The
// wire format carries no field names or counts: fields encode in
// declared order, and values must supply exactly the declared fields.
func Struct(fields ...StructField) TypeNode {
	fs := make([]StructField, len(fields))
	copy(fs, fields)
	return TypeNode{kind: NodeStruct, fields: fs}
}

// Optional describes an optional wrapper: a 1-byte presence flag
// followed by the inner payload only when present. The nil value
// encodes as absent and absent decodes as Nil.
func Optional(inner TypeNode) TypeNode {
	return TypeNode{kind: NodeOptional, children: []TypeNode{inner}}
}

// Bits8 describes count unsigned 8-bit values with no per-element
// prefix. The value is a list of exactly count ints in 0..255.
func Bits8(count int) TypeNode {
	return TypeNode{kind: NodeBits, width: 1, length: count}
}

// Bits16 describes count unsigned 16-bit values with no per-element
// prefix. The value is a list of exactly count ints in 0..65535.
func Bits16(count int) TypeNode {
	return TypeNode{kind: NodeBits, width: 2, length: count}
}

// Bits32 describes count unsigned 32-bit values with no per-element
// prefix. The value is a list of exactly count ints in 0..4294967295.
func Bits32(count int) TypeNode {
	return TypeNode{kind: NodeBits, width: 4, length: count}
}

// ============================================================
// Schema validation
// ============================================================

// validateNode checks constraints that are knowable at compile time,
// before any value is seen.
func validateNode(t TypeNode) error {
	switch t.kind {
	case NodeStringFixed:
		if t.length < 0 {
			return fmt.Errorf("%w: %s: negative length", ErrSchemaMismatch, t)
		}
	case NodeEnum:
		if len(t.domain) > 65536 {
			return fmt.Errorf("%w: enum domain holds %d items (max 65536)", ErrSchemaMismatch, len(t.domain))
		}
	case NodeArrayFixed, NodeMapFixed, NodeBits:
		if t.length < 0 {
			return fmt.Errorf("%w: %s: negative length", ErrSchemaMismatch, t)
		}
	case NodeStruct:
		seen := make(map[string]bool, len(t.fields))
		for _, f := range t.fields {
			if seen[f.Name] {
				return fmt.Errorf("%w: struct declares field %q twice", ErrSchemaMismatch, f.Name)
			}
			seen[f.Name] = true
		}
	}
	for _, c := range t.children {
		if err := validateNode(c); err != nil {
			return err
		}
	}
	for _, f := range t.fields {
		if err := validateNode(f.Type); err != nil {
			return err
		}
	}
	return nil
}
