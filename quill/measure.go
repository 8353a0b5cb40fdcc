package quill

import "fmt"

// measure validates one value against one TypeNode and returns the
// exact number of payload bytes its encoding will occupy. The static
// engine runs measure over the whole tuple before writing anything,
// so encode allocates once and writer methods never grow or fail.
func measure(t TypeNode, v *Value) (int, error) {
	switch t.kind {
	case NodeInt:
		n, err := v.AsInt()
		if err != nil {
			return 0, kindMismatch(t, v)
		}
		if !intFits(n, t.width, t.signed) {
			return 0, fmt.Errorf("%w: %d does not fit %s", ErrEncodingOverflow, n, t)
		}
		return t.width, nil

	case NodeFloat:
		if _, err := v.AsFloat(); err != nil {
			return 0, kindMismatch(t, v)
		}
		return t.width, nil

	case NodeFloat24:
		if _, err := v.AsFloat(); err != nil {
			return 0, kindMismatch(t, v)
		}
		return 3, nil

	case NodeBool:
		if _, err := v.AsBool(); err != nil {
			return 0, kindMismatch(t, v)
		}
		return 1, nil

	case NodeBoolPacked:
		elems, err := v.AsList()
		if err != nil {
			return 0, kindMismatch(t, v)
		}
		if len(elems) != 8 {
			return 0, fmt.Errorf("%w: boolpacked needs exactly 8 bools, got %d", ErrFixedLengthViolation, len(elems))
		}
		for _, e := range elems {
			if _, err := e.AsBool(); err != nil {
				return 0, fmt.Errorf("%w: boolpacked element is %s", ErrSchemaMismatch, e.Kind())
			}
		}
		return 1, nil

	case NodeString:
		s, err := v.AsStr()
		if err != nil {
			return 0, kindMismatch(t, v)
		}
		if max := prefixMax(t.width); len(s) > max {
			return 0, fmt.Errorf("%w: string of %d bytes exceeds %d-byte prefix (max %d)",
				ErrEncodingOverflow, len(s), t.width, max)
		}
		return t.width + len(s), nil

	case NodeStringFixed:
		if _, err := v.AsStr(); err != nil {
			return 0, kindMismatch(t, v)
		}
		return t.length, nil

	case NodeStringNT:
		s, err := v.AsStr()
		if err != nil {
			return 0, kindMismatch(t, v)
		}
		for i := 0; i < len(s); i++ {
			if s[i] == 0 {
				return 0, fmt.Errorf("%w: NUL byte at index %d in NUL-terminated string", ErrEncodingOverflow, i)
			}
		}
		return len(s) + 1, nil

	case NodeVoid:
		return 0, nil

	case NodeNil:
		if !v.IsNil() {
			return 0, kindMismatch(t, v)
		}
		return 0, nil

	case NodeAny:
		return dynMeasure(v)

	case NodeVector2:
		if _, err := v.AsVector2(); err != nil {
			return 0, kindMismatch(t, v)
		}
		return 2 * compWidth(t), nil

	case NodeVector3:
		if _, err := v.AsVector3(); err != nil {
			return 0, kindMismatch(t, v)
		}
		return 3 * compWidth(t), nil

	case NodeTransform:
		if _, err := v.AsTransform(); err != nil {
			return 0, kindMismatch(t, v)
		}
		return 6 * compWidth(t), nil

	case NodeColor:
		if _, err := v.AsColor(); err != nil {
			return 0, kindMismatch(t, v)
		}
		return 3, nil

	case NodeEnum:
		name, err := v.AsEnum()
		if err != nil {
			return 0, kindMismatch(t, v)
		}
		if enumIndex(t.domain, name) < 0 {
			return 0, fmt.Errorf("%w: enum item %q is not in the domain", ErrSchemaMismatch, name)
		}
		return 2, nil

	case NodeArray:
		elems, err := v.AsList()
		if err != nil {
			return 0, kindMismatch(t, v)
		}
		if max := prefixMax(t.width); len(elems) > max {
			return 0, fmt.Errorf("%w: array of %d elements exceeds %d-byte prefix (max %d)",
				ErrEncodingOverflow, len(elems), t.width, max)
		}
		return measureElems(t.children[0], elems, t.width)

	case NodeArrayFixed:
		elems, err := v.AsList()
		if err != nil {
			return 0, kindMismatch(t, v)
		}
		if len(elems) != t.length {
			return 0, fmt.Errorf("%w: %s got %d elements", ErrFixedLengthViolation, t, len(elems))
		}
		return measureElems(t.children[0], elems, 0)

	case NodeMap:
		entries, err := v.AsMap()
		if err != nil {
			return 0, kindMismatch(t, v)
		}
		if max := prefixMax(t.width); len(entries) > max {
			return 0, fmt.Errorf("%w: map of %d entries exceeds %d-byte prefix (max %d)",
				ErrEncodingOverflow, len(entries), t.width, max)
		}
		return measureEntries(t, entries, t.width)

	case NodeMapFixed:
		entries, err := v.AsMap()
		if err != nil {
			return 0, kindMismatch(t, v)
		}
		if len(entries) != t.length {
			return 0, fmt.Errorf("%w: %s got %d entries", ErrFixedLengthViolation, t, len(entries))
		}
		return measureEntries(t, entries, 0)

	case NodeStruct:
		fields, err := v.AsRecord()
		if err != nil {
			return 0, kindMismatch(t, v)
		}
		if len(fields) != len(t.fields) {
			return 0, fmt.Errorf("%w: struct declares %d fields, value has %d",
				ErrSchemaMismatch, len(t.fields), len(fields))
		}
		total := 0
		for _, f := range t.fields {
			fv := v.Get(f.Name)
			if fv == nil {
				return 0, fmt.Errorf("%w: missing struct field %q", ErrSchemaMismatch, f.Name)
			}
			n, err := measure(f.Type, fv)
			if err != nil {
				return 0, fmt.Errorf("field %q: %w", f.Name, err)
			}
			total += n
		}
		return total, nil

	case NodeOptional:
		if v.IsNil() {
			return 1, nil
		}
		n, err := measure(t.children[0], v)
		if err != nil {
			return 0, err
		}
		return 1 + n, nil

	case NodeBits:
		elems, err := v.AsList()
		if err != nil {
			return 0, kindMismatch(t, v)
		}
		if len(elems) != t.length {
			return 0, fmt.Errorf("%w: %s got %d elements", ErrFixedLengthViolation, t, len(elems))
		}
		for i, e := range elems {
			n, err := e.AsInt()
			if err != nil {
				return 0, fmt.Errorf("%w: bits element %d is %s", ErrSchemaMismatch, i, e.Kind())
			}
			if !intFits(n, t.width, false) {
				return 0, fmt.Errorf("%w: bits element %d (%d) does not fit %d bits",
					ErrEncodingOverflow, i, n, t.width*8)
			}
		}
		return t.width * t.length, nil

	default:
		return 0, fmt.Errorf("%w: unknown type node %d", ErrSchemaMismatch, t.kind)
	}
}

func measureElems(elem TypeNode, elems []*Value, prefix int) (int, error) {
	total := prefix
	for i, e := range elems {
		n, err := measure(elem, e)
		if err != nil {
			return 0, fmt.Errorf("element %d: %w", i, err)
		}
		total += n
	}
	return total, nil
}

func measureEntries(t TypeNode, entries []MapEntry, prefix int) (int, error) {
	total := prefix
	for i, e := range entries {
		kn, err := measure(t.children[0], e.Key)
		if err != nil {
			return 0, fmt.Errorf("entry %d key: %w", i, err)
		}
		vn, err := measure(t.children[1], e.Value)
		if err != nil {
			return 0, fmt.Errorf("entry %d value: %w", i, err)
		}
		total += kn + vn
	}
	return total, nil
}

func kindMismatch(t TypeNode, v *Value) error {
	return fmt.Errorf("%w: %s value for %s type", ErrSchemaMismatch, v.Kind(), t)
}

// intFits reports whether n is representable in width bytes with the
// given signedness. Unsigned 8-byte values are capped by the int64
// carrier, which is checked by n >= 0 alone.
func intFits(n int64, width int, signed bool) bool {
	if width == 8 {
		if signed {
			return true
		}
		return n >= 0
	}
	bits := uint(width * 8)
	if signed {
		lim := int64(1) << (bits - 1)
		return n >= -lim && n <= lim-1
	}
	return n >= 0 && n <= int64(1)<<bits-1
}

// prefixMax returns the largest count representable by a length prefix
// of the given byte width.
func prefixMax(width int) int {
	if width == 1 {
		return 0xFF
	}
	return 0xFFFF
}

func enumIndex(domain []string, name string) int {
	for i, d := range domain {
		if d == name {
			return i
		}
	}
	return -1
}

func compWidth(t TypeNode) int {
	if t.f24 {
		return 3
	}
	return 4
}
