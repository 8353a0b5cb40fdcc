package quill

import "fmt"

// Kind identifies the shape of a runtime Value.
//
// Values form a closed tagged union: every shape the engine can encode
// or decode is enumerated here, and all dispatch is an explicit switch
// over this enum. Nothing in the engine inspects values by reflection.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindFloat
	KindStr
	KindVector2
	KindVector3
	KindTransform
	KindColor
	KindEnum
	KindList
	KindMap
	KindRecord
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindStr:
		return "str"
	case KindVector2:
		return "vector2"
	case KindVector3:
		return "vector3"
	case KindTransform:
		return "transform"
	case KindColor:
		return "color"
	case KindEnum:
		return "enum"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindRecord:
		return "record"
	default:
		return "unknown"
	}
}

// Vec2 is a 2D vector value.
type Vec2 struct {
	X, Y float64
}

// Vec3 is a 3D vector value.
type Vec3 struct {
	X, Y, Z float64
}

// Xform is a rigid transform: a position and an Euler rotation,
// both in the host's units. The wire layout is position then
// rotation, component order X Y Z.
type Xform struct {
	Pos Vec3
	Rot Vec3
}

// RGB is an 8-bit-per-channel color value.
type RGB struct {
	R, G, B uint8
}

// Value is one runtime value in a value tuple.
//
// Exactly one of the payload fields is meaningful, selected by kind.
// Values are built with the constructor functions below and inspected
// with the As* accessors; containers hold their children in insertion
// order, which is also wire order.
type Value struct {
	kind Kind

	boolVal  bool
	intVal   int64
	floatVal float64
	strVal   string
	vec2Val  Vec2
	vec3Val  Vec3
	xformVal Xform
	colorVal RGB
	enumVal  string

	listVal   []*Value
	mapVal    []MapEntry
	recordVal []Field
}

// MapEntry is one key-value pair of a map value. Entries keep their
// insertion order; that order is the wire order.
type MapEntry struct {
	Key   *Value
	Value *Value
}

// Field is one named field of a record value.
type Field struct {
	Name  string
	Value *Value
}

// ============================================================
// Constructors
// ============================================================

// Nil creates the nil value.
func Nil() *Value {
	return &Value{kind: KindNil}
}

// BoolVal creates a boolean value.
func BoolVal(v bool) *Value {
	return &Value{kind: KindBool, boolVal: v}
}

// Int creates an integer value.
func Int(v int64) *Value {
	return &Value{kind: KindInt, intVal: v}
}

// Float creates a float value.
func Float(v float64) *Value {
	return &Value{kind: KindFloat, floatVal: v}
}

// Str creates a string value.
func Str(v string) *Value {
	return &Value{kind: KindStr, strVal: v}
}

// Vector2Val creates a 2D vector value.
func Vector2Val(x, y float64) *Value {
	return &Value{kind: KindVector2, vec2Val: Vec2{X: x, Y: y}}
}

// Vector3Val creates a 3D vector value.
func Vector3Val(x, y, z float64) *Value {
	return &Value{kind: KindVector3, vec3Val: Vec3{X: x, Y: y, Z: z}}
}

// TransformVal creates a transform value from a position and an Euler
// rotation.
func TransformVal(pos, rot Vec3) *Value {
	return &Value{kind: KindTransform, xformVal: Xform{Pos: pos, Rot: rot}}
}

// ColorVal creates an RGB color value.
func ColorVal(r, g, b uint8) *Value {
	return &Value{kind: KindColor, colorVal: RGB{R: r, G: g, B: b}}
}

// EnumItem creates an enumeration item value identified by name.
// The name must be a member of the Enum type's domain at encode time.
func EnumItem(name string) *Value {
	return &Value{kind: KindEnum, enumVal: name}
}

// List creates a list value.
func List(elems ...*Value) *Value {
	return &Value{kind: KindList, listVal: elems}
}

// MapValue creates a map value from ordered entries.
func MapValue(entries ...MapEntry) *Value {
	return &Value{kind: KindMap, mapVal: entries}
}

// Entry creates a MapEntry for use in MapValue construction.
func Entry(key, value *Value) MapEntry {
	return MapEntry{Key: key, Value: value}
}

// Record creates a record value from ordered named fields.
func Record(fields ...Field) *Value {
	return &Value{kind: KindRecord, recordVal: fields}
}

// FieldOf creates a Field for use in Record construction.
func FieldOf(name string, value *Value) Field {
	return Field{Name: name, Value: value}
}

// ============================================================
// Accessors
// ============================================================

// Kind returns the value kind. A nil *Value reads as KindNil.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNil
	}
	return v.kind
}

// IsNil reports whether this is the nil value.
func (v *Value) IsNil() bool {
	return v == nil || v.kind == KindNil
}

// AsBool returns the boolean payload.
func (v *Value) AsBool() (bool, error) {
	if v.Kind() != KindBool {
		return false, fmt.Errorf("quill: expected bool, got %s", v.Kind())
	}
	return v.boolVal, nil
}

// AsInt returns the integer payload.
func (v *Value) AsInt() (int64, error) {
	if v.Kind() != KindInt {
		return 0, fmt.Errorf("quill: expected int, got %s", v.Kind())
	}
	return v.intVal, nil
}

// AsFloat returns the float payload.
func (v *Value) AsFloat() (float64, error) {
	if v.Kind() != KindFloat {
		return 0, fmt.Errorf("quill: expected float, got %s", v.Kind())
	}
	return v.floatVal, nil
}

// AsStr returns the string payload.
func (v *Value) AsStr() (string, error) {
	if v.Kind() != KindStr {
		return "", fmt.Errorf("quill: expected str, got %s", v.Kind())
	}
	return v.strVal, nil
}

// AsVector2 returns the 2D vector payload.
func (v *Value) AsVector2() (Vec2, error) {
	if v.Kind() != KindVector2 {
		return Vec2{}, fmt.Errorf("quill: expected vector2, got %s", v.Kind())
	}
	return v.vec2Val, nil
}

// AsVector3 returns the 3D vector payload.
func (v *Value) AsVector3() (Vec3, error) {
	if v.Kind() != KindVector3 {
		return Vec3{}, fmt.Errorf("quill: expected vector3, got %s", v.Kind())
	}
	return v.vec3Val, nil
}

// AsTransform returns the transform payload.
func (v *Value) AsTransform() (Xform, error) {
	if v.Kind() != KindTransform {
		return Xform{}, fmt.Errorf("quill: expected transform, got %s", v.Kind())
	}
	return v.xformVal, nil
}

// AsColor returns the color payload.
func (v *Value) AsColor() (RGB, error) {
	if v.Kind() != KindColor {
		return RGB{}, fmt.Errorf("quill: expected color, got %s", v.Kind())
	}
	return v.colorVal, nil
}

// AsEnum returns the enum item name.
func (v *Value) AsEnum() (string, error) {
	if v.Kind() != KindEnum {
		return "", fmt.Errorf("quill: expected enum, got %s", v.Kind())
	}
	return v.enumVal, nil
}

// AsList returns the list elements.
func (v *Value) AsList() ([]*Value, error) {
	if v.Kind() != KindList {
		return nil, fmt.Errorf("quill: expected list, got %s", v.Kind())
	}
	return v.listVal, nil
}

// AsMap returns the ordered map entries.
func (v *Value) AsMap() ([]MapEntry, error) {
	if v.Kind() != KindMap {
		return nil, fmt.Errorf("quill: expected map, got %s", v.Kind())
	}
	return v.mapVal, nil
}

// AsRecord returns the ordered record fields.
func (v *Value) AsRecord() ([]Field, error) {
	if v.Kind() != KindRecord {
		return nil, fmt.Errorf("quill: expected record, got %s", v.Kind())
	}
	return v.recordVal, nil
}

// Len returns the element count of a list, map, or record, and 0 for
// every other kind.
func (v *Value) Len() int {
	switch v.Kind() {
	case KindList:
		return len(v.listVal)
	case KindMap:
		return len(v.mapVal)
	case KindRecord:
		return len(v.recordVal)
	default:
		return 0
	}
}

// Get returns a record field value by name, or nil if absent.
func (v *Value) Get(name string) *Value {
	if v.Kind() != KindRecord {
		return nil
	}
	for _, f := range v.recordVal {
		if f.Name == name {
			return f.Value
		}
	}
	return nil
}

// Index returns the i-th element of a list.
func (v *Value) Index(i int) (*Value, error) {
	if v.Kind() != KindList {
		return nil, fmt.Errorf("quill: not a list")
	}
	if i < 0 || i >= len(v.listVal) {
		return nil, fmt.Errorf("quill: index %d out of bounds (len=%d)", i, len(v.listVal))
	}
	return v.listVal[i], nil
}

// ============================================================
// Equality
// ============================================================

// Equal reports deep structural equality of two values. Nil pointers
// compare equal to the nil value. Floats compare bit-exactly; NaN is
// equal to NaN so decoded tuples can be compared wholesale.
func (v *Value) Equal(o *Value) bool {
	if v.Kind() != o.Kind() {
		return false
	}
	switch v.Kind() {
	case KindNil:
		return true
	case KindBool:
		return v.boolVal == o.boolVal
	case KindInt:
		return v.intVal == o.intVal
	case KindFloat:
		return floatEq(v.floatVal, o.floatVal)
	case KindStr:
		return v.strVal == o.strVal
	case KindVector2:
		return floatEq(v.vec2Val.X, o.vec2Val.X) && floatEq(v.vec2Val.Y, o.vec2Val.Y)
	case KindVector3:
		return vec3Eq(v.vec3Val, o.vec3Val)
	case KindTransform:
		return vec3Eq(v.xformVal.Pos, o.xformVal.Pos) && vec3Eq(v.xformVal.Rot, o.xformVal.Rot)
	case KindColor:
		return v.colorVal == o.colorVal
	case KindEnum:
		return v.enumVal == o.enumVal
	case KindList:
		if len(v.listVal) != len(o.listVal) {
			return false
		}
		for i := range v.listVal {
			if !v.listVal[i].Equal(o.listVal[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.mapVal) != len(o.mapVal) {
			return false
		}
		for i := range v.mapVal {
			if !v.mapVal[i].Key.Equal(o.mapVal[i].Key) || !v.mapVal[i].Value.Equal(o.mapVal[i].Value) {
				return false
			}
		}
		return true
	case KindRecord:
		if len(v.recordVal) != len(o.recordVal) {
			return false
		}
		for i := range v.recordVal {
			if v.recordVal[i].Name != o.recordVal[i].Name || !v.recordVal[i].Value.Equal(o.recordVal[i].Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func floatEq(a, b float64) bool {
	return a == b || (a != a && b != b)
}

func vec3Eq(a, b Vec3) bool {
	return floatEq(a.X, b.X) && floatEq(a.Y, b.Y) && floatEq(a.Z, b.Z)
}
