package quill

import "fmt"

// Dynamic mode embeds one tag byte before each value's payload so a
// decoder needs no shared schema. The tag space and the inference
// rules below are part of the wire contract: two encoders agree on
// the bytes for a value exactly when they apply the same rules in the
// same order.
//
// Inference is a single ordered switch over the closed value union:
// nil, bool, int, float, string, vector2, vector3, transform, color,
// enum, list, map, record. The numeric policy is "narrowest exact":
// integers take the smallest signed width that holds the value, and
// floats take float32 only when the float64 round trip through
// float32 is exact. Float24 is lossy and is never inferred. Strings
// and lists take the 1-byte count prefix when 255 or fewer bytes or
// elements, else the 2-byte prefix.
const (
	tagNil byte = iota
	tagBool
	tagInt8
	tagInt16
	tagInt32
	tagInt64
	tagFloat32
	tagFloat64
	tagStrTiny // 1-byte length prefix
	tagStr     // 2-byte length prefix
	tagVector2 // 2 float32 components
	tagVector3 // 3 float32 components
	tagXform   // 6 float32 components, position then rotation
	tagColor   // 3 bytes, R G B
	tagEnum    // item name as a tiny string
	tagListTiny
	tagList
	tagMap    // 2-byte count, tagged key/value pairs
	tagRecord // 1-byte field count, tiny-string name + tagged value

	tagCount // one past the last valid tag
)

// Serialize encodes arbitrary values in self-describing form. Level 0
// disables compression; non-zero levels use the default zlib
// transform. The first offset bytes of the result are reserved for
// the caller and left zeroed.
func Serialize(level, offset int, values []*Value) ([]byte, error) {
	return SerializeWith(nil, level, offset, values)
}

// SerializeWith is Serialize with an explicit compressor. A nil
// compressor selects the default zlib transform.
func SerializeWith(c Compressor, level, offset int, values []*Value) ([]byte, error) {
	if offset < 0 {
		return nil, fmt.Errorf("quill: negative offset %d", offset)
	}
	if c == nil {
		c = defaultCompressor
	}
	if level != 0 {
		if err := checkLevel(c, level); err != nil {
			return nil, err
		}
	}

	total := 0
	for i, v := range values {
		n, err := dynMeasure(v)
		if err != nil {
			return nil, fmt.Errorf("quill: value %d: %w", i, err)
		}
		total += n
	}

	buf := make([]byte, offset+total)
	w := &writer{buf: buf, off: offset}
	for _, v := range values {
		dynWrite(w, v)
	}

	if level == 0 {
		return buf, nil
	}
	return compressPayload(c, level, buf, offset)
}

// Deserialize decodes a self-describing buffer produced by Serialize
// with the same level and offset. Values are read back tag by tag
// until the payload is exhausted.
func Deserialize(level, offset int, data []byte) ([]*Value, error) {
	return DeserializeWith(nil, level, offset, data)
}

// DeserializeWith is Deserialize with an explicit compressor.
func DeserializeWith(c Compressor, level, offset int, data []byte) ([]*Value, error) {
	if c == nil {
		c = defaultCompressor
	}
	if level != 0 {
		if err := checkLevel(c, level); err != nil {
			return nil, err
		}
	}
	payload, err := decodePayload(c, level, data, offset)
	if err != nil {
		return nil, err
	}

	r := &reader{buf: payload}
	var values []*Value
	for r.remaining() > 0 {
		v, err := dynRead(r)
		if err != nil {
			return nil, fmt.Errorf("quill: value %d: %w", len(values), err)
		}
		values = append(values, v)
	}
	return values, nil
}

// ============================================================
// Inference and measurement
// ============================================================

// inferTag maps a value to its tag under the fixed inference order.
func inferTag(v *Value) byte {
	switch v.Kind() {
	case KindNil:
		return tagNil
	case KindBool:
		return tagBool
	case KindInt:
		n := v.intVal
		switch {
		case n >= -128 && n <= 127:
			return tagInt8
		case n >= -32768 && n <= 32767:
			return tagInt16
		case n >= -2147483648 && n <= 2147483647:
			return tagInt32
		default:
			return tagInt64
		}
	case KindFloat:
		if float64(float32(v.floatVal)) == v.floatVal || v.floatVal != v.floatVal {
			return tagFloat32
		}
		return tagFloat64
	case KindStr:
		if len(v.strVal) <= 0xFF {
			return tagStrTiny
		}
		return tagStr
	case KindVector2:
		return tagVector2
	case KindVector3:
		return tagVector3
	case KindTransform:
		return tagXform
	case KindColor:
		return tagColor
	case KindEnum:
		return tagEnum
	case KindList:
		if len(v.listVal) <= 0xFF {
			return tagListTiny
		}
		return tagList
	case KindMap:
		return tagMap
	default:
		return tagRecord
	}
}

// dynMeasure returns the encoded size of one value including its tag
// byte, validating prefix capacities along the way.
func dynMeasure(v *Value) (int, error) {
	switch tag := inferTag(v); tag {
	case tagNil:
		return 1, nil
	case tagBool:
		return 2, nil
	case tagInt8:
		return 2, nil
	case tagInt16:
		return 3, nil
	case tagInt32:
		return 5, nil
	case tagInt64:
		return 9, nil
	case tagFloat32:
		return 5, nil
	case tagFloat64:
		return 9, nil
	case tagStrTiny:
		return 1 + 1 + len(v.strVal), nil
	case tagStr:
		if len(v.strVal) > 0xFFFF {
			return 0, fmt.Errorf("%w: string of %d bytes exceeds dynamic prefix (max %d)",
				ErrEncodingOverflow, len(v.strVal), 0xFFFF)
		}
		return 1 + 2 + len(v.strVal), nil
	case tagVector2:
		return 1 + 8, nil
	case tagVector3:
		return 1 + 12, nil
	case tagXform:
		return 1 + 24, nil
	case tagColor:
		return 1 + 3, nil
	case tagEnum:
		if len(v.enumVal) > 0xFF {
			return 0, fmt.Errorf("%w: enum item name of %d bytes (max 255)",
				ErrEncodingOverflow, len(v.enumVal))
		}
		return 1 + 1 + len(v.enumVal), nil
	case tagListTiny, tagList:
		if len(v.listVal) > 0xFFFF {
			return 0, fmt.Errorf("%w: list of %d elements exceeds dynamic prefix (max %d)",
				ErrEncodingOverflow, len(v.listVal), 0xFFFF)
		}
		total := 1 + 1
		if tag == tagList {
			total = 1 + 2
		}
		for i, e := range v.listVal {
			n, err := dynMeasure(e)
			if err != nil {
				return 0, fmt.Errorf("element %d: %w", i, err)
			}
			total += n
		}
		return total, nil
	case tagMap:
		if len(v.mapVal) > 0xFFFF {
			return 0, fmt.Errorf("%w: map of %d entries exceeds dynamic prefix (max %d)",
				ErrEncodingOverflow, len(v.mapVal), 0xFFFF)
		}
		total := 1 + 2
		for i, e := range v.mapVal {
			kn, err := dynMeasure(e.Key)
			if err != nil {
				return 0, fmt.Errorf("entry %d key: %w", i, err)
			}
			vn, err := dynMeasure(e.Value)
			if err != nil {
				return 0, fmt.Errorf("entry %d value: %w", i, err)
			}
			total += kn + vn
		}
		return total, nil
	default: // tagRecord
		if len(v.recordVal) > 0xFF {
			return 0, fmt.Errorf("%w: record of %d fields (max 255)",
				ErrEncodingOverflow, len(v.recordVal))
		}
		total := 1 + 1
		for _, f := range v.recordVal {
			if len(f.Name) > 0xFF {
				return 0, fmt.Errorf("%w: field name of %d bytes (max 255)",
					ErrEncodingOverflow, len(f.Name))
			}
			n, err := dynMeasure(f.Value)
			if err != nil {
				return 0, fmt.Errorf("field %q: %w", f.Name, err)
			}
			total += 1 + len(f.Name) + n
		}
		return total, nil
	}
}

// ============================================================
// Tagged write / read
// ============================================================

func dynWrite(w *writer, v *Value) {
	tag := inferTag(v)
	w.putU8(tag)
	switch tag {
	case tagNil:
	case tagBool:
		if v.boolVal {
			w.putU8(1)
		} else {
			w.putU8(0)
		}
	case tagInt8:
		w.putU8(uint8(v.intVal))
	case tagInt16:
		w.putU16(uint16(v.intVal))
	case tagInt32:
		w.putU32(uint32(v.intVal))
	case tagInt64:
		w.putU64(uint64(v.intVal))
	case tagFloat32:
		w.putF32(v.floatVal)
	case tagFloat64:
		w.putF64(v.floatVal)
	case tagStrTiny:
		w.putU8(uint8(len(v.strVal)))
		w.putStr(v.strVal)
	case tagStr:
		w.putU16(uint16(len(v.strVal)))
		w.putStr(v.strVal)
	case tagVector2:
		w.putF32(v.vec2Val.X)
		w.putF32(v.vec2Val.Y)
	case tagVector3:
		writeVec3F32(w, v.vec3Val)
	case tagXform:
		writeVec3F32(w, v.xformVal.Pos)
		writeVec3F32(w, v.xformVal.Rot)
	case tagColor:
		w.putU8(v.colorVal.R)
		w.putU8(v.colorVal.G)
		w.putU8(v.colorVal.B)
	case tagEnum:
		w.putU8(uint8(len(v.enumVal)))
		w.putStr(v.enumVal)
	case tagListTiny:
		w.putU8(uint8(len(v.listVal)))
		for _, e := range v.listVal {
			dynWrite(w, e)
		}
	case tagList:
		w.putU16(uint16(len(v.listVal)))
		for _, e := range v.listVal {
			dynWrite(w, e)
		}
	case tagMap:
		w.putU16(uint16(len(v.mapVal)))
		for _, e := range v.mapVal {
			dynWrite(w, e.Key)
			dynWrite(w, e.Value)
		}
	case tagRecord:
		w.putU8(uint8(len(v.recordVal)))
		for _, f := range v.recordVal {
			w.putU8(uint8(len(f.Name)))
			w.putStr(f.Name)
			dynWrite(w, f.Value)
		}
	}
}

func writeVec3F32(w *writer, v Vec3) {
	w.putF32(v.X)
	w.putF32(v.Y)
	w.putF32(v.Z)
}

func dynRead(r *reader) (*Value, error) {
	tag, err := r.u8()
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagNil:
		return Nil(), nil
	case tagBool:
		b, err := r.u8()
		if err != nil {
			return nil, err
		}
		return BoolVal(b != 0), nil
	case tagInt8:
		n, err := r.int(1)
		if err != nil {
			return nil, err
		}
		return Int(n), nil
	case tagInt16:
		n, err := r.int(2)
		if err != nil {
			return nil, err
		}
		return Int(n), nil
	case tagInt32:
		n, err := r.int(4)
		if err != nil {
			return nil, err
		}
		return Int(n), nil
	case tagInt64:
		n, err := r.int(8)
		if err != nil {
			return nil, err
		}
		return Int(n), nil
	case tagFloat32:
		f, err := r.f32()
		if err != nil {
			return nil, err
		}
		return Float(f), nil
	case tagFloat64:
		f, err := r.f64()
		if err != nil {
			return nil, err
		}
		return Float(f), nil
	case tagStrTiny, tagStr:
		width := 1
		if tag == tagStr {
			width = 2
		}
		n, err := r.uint(width)
		if err != nil {
			return nil, err
		}
		s, err := r.str(int(n))
		if err != nil {
			return nil, err
		}
		return Str(s), nil
	case tagVector2:
		x, err := r.f32()
		if err != nil {
			return nil, err
		}
		y, err := r.f32()
		if err != nil {
			return nil, err
		}
		return Vector2Val(x, y), nil
	case tagVector3:
		v, err := readVec3F32(r)
		if err != nil {
			return nil, err
		}
		return Vector3Val(v.X, v.Y, v.Z), nil
	case tagXform:
		pos, err := readVec3F32(r)
		if err != nil {
			return nil, err
		}
		rot, err := readVec3F32(r)
		if err != nil {
			return nil, err
		}
		return TransformVal(pos, rot), nil
	case tagColor:
		if err := r.need(3); err != nil {
			return nil, err
		}
		cr, _ := r.u8()
		cg, _ := r.u8()
		cb, _ := r.u8()
		return ColorVal(cr, cg, cb), nil
	case tagEnum:
		n, err := r.u8()
		if err != nil {
			return nil, err
		}
		name, err := r.str(int(n))
		if err != nil {
			return nil, err
		}
		return EnumItem(name), nil
	case tagListTiny, tagList:
		width := 1
		if tag == tagList {
			width = 2
		}
		n, err := r.uint(width)
		if err != nil {
			return nil, err
		}
		elems := make([]*Value, n)
		for i := range elems {
			e, err := dynRead(r)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			elems[i] = e
		}
		return List(elems...), nil
	case tagMap:
		n, err := r.u16()
		if err != nil {
			return nil, err
		}
		entries := make([]MapEntry, n)
		for i := range entries {
			k, err := dynRead(r)
			if err != nil {
				return nil, fmt.Errorf("entry %d key: %w", i, err)
			}
			v, err := dynRead(r)
			if err != nil {
				return nil, fmt.Errorf("entry %d value: %w", i, err)
			}
			entries[i] = MapEntry{Key: k, Value: v}
		}
		return MapValue(entries...), nil
	case tagRecord:
		n, err := r.u8()
		if err != nil {
			return nil, err
		}
		fields := make([]Field, n)
		for i := range fields {
			nameLen, err := r.u8()
			if err != nil {
				return nil, err
			}
			name, err := r.str(int(nameLen))
			if err != nil {
				return nil, err
			}
			fv, err := dynRead(r)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", name, err)
			}
			fields[i] = Field{Name: name, Value: fv}
		}
		return Record(fields...), nil
	default:
		return nil, fmt.Errorf("%w: %#02x", ErrInvalidTypeTag, tag)
	}
}

func readVec3F32(r *reader) (Vec3, error) {
	x, err := r.f32()
	if err != nil {
		return Vec3{}, err
	}
	y, err := r.f32()
	if err != nil {
		return Vec3{}, err
	}
	z, err := r.f32()
	if err != nil {
		return Vec3{}, err
	}
	return Vec3{X: x, Y: y, Z: z}, nil
}
