package quill

import (
	"fmt"
	"strings"
)

// Options configures a compiled Serializer.
type Options struct {
	// CompressionLevel selects the byte-transform level applied to the
	// payload region. 0 means no transform. Non-zero levels are
	// validated against the compressor's bounds at compile time.
	CompressionLevel int

	// Compressor overrides the default zlib transform. Ignored when
	// CompressionLevel is 0.
	Compressor Compressor
}

// Serializer is a compiled schema: an ordered sequence of TypeNodes
// bound to a reusable encode/decode procedure pair. The byte layout
// carries no type metadata, so both sides must be compiled from the
// same schema in the same order.
//
// A Serializer is immutable after Compile and safe for concurrent use.
type Serializer struct {
	schema []TypeNode
	level  int
	comp   Compressor
}

// Compile builds a Serializer from an ordered schema. The schema order
// is the decode contract: Encode consumes values and Decode returns
// them in exactly this order.
func Compile(opts Options, schema ...TypeNode) (*Serializer, error) {
	nodes := make([]TypeNode, len(schema))
	copy(nodes, schema)
	for i, t := range nodes {
		if err := validateNode(t); err != nil {
			return nil, fmt.Errorf("quill: schema node %d: %w", i, err)
		}
	}

	s := &Serializer{schema: nodes, level: opts.CompressionLevel}
	if s.level != 0 {
		s.comp = opts.Compressor
		if s.comp == nil {
			s.comp = defaultCompressor
		}
		if err := checkLevel(s.comp, s.level); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Schema returns the compiled schema description, one line per node.
func (s *Serializer) Schema() string {
	descs := make([]string, len(s.schema))
	for i, t := range s.schema {
		descs[i] = t.String()
	}
	return strings.Join(descs, "\n")
}

// Encode serializes one value tuple. The first offset bytes of the
// result are reserved for the caller and left zeroed; the payload
// starts immediately after. The values must match the schema in arity
// and shape, and the whole tuple is validated and measured before any
// byte is written, so a non-nil error means no output was produced.
func (s *Serializer) Encode(offset int, values []*Value) ([]byte, error) {
	if offset < 0 {
		return nil, fmt.Errorf("quill: negative offset %d", offset)
	}
	if len(values) != len(s.schema) {
		return nil, fmt.Errorf("%w: schema has %d values, got %d",
			ErrSchemaMismatch, len(s.schema), len(values))
	}

	total := 0
	for i, t := range s.schema {
		n, err := measure(t, values[i])
		if err != nil {
			return nil, fmt.Errorf("quill: value %d: %w", i, err)
		}
		total += n
	}

	buf := make([]byte, offset+total)
	w := &writer{buf: buf, off: offset}
	for i, t := range s.schema {
		encodeNode(w, t, values[i])
	}

	if s.level == 0 {
		return buf, nil
	}
	return compressPayload(s.comp, s.level, buf, offset)
}

// Decode reads one value tuple, skipping the first offset bytes. The
// buffer must have been produced by a Serializer compiled from the
// same schema with the same compression level; a shorter or longer
// payload than the schema describes is an error.
func (s *Serializer) Decode(offset int, data []byte) ([]*Value, error) {
	payload, err := decodePayload(s.comp, s.level, data, offset)
	if err != nil {
		return nil, err
	}

	r := &reader{buf: payload}
	values := make([]*Value, len(s.schema))
	for i, t := range s.schema {
		v, err := decodeNode(r, t)
		if err != nil {
			return nil, fmt.Errorf("quill: value %d: %w", i, err)
		}
		values[i] = v
	}
	if r.remaining() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes after last value",
			ErrSchemaMismatch, r.remaining())
	}
	return values, nil
}

// ============================================================
// Node encoding
// ============================================================

// encodeNode writes one value. The value was validated and measured
// beforehand, so every access and range here is known good.
func encodeNode(w *writer, t TypeNode, v *Value) {
	switch t.kind {
	case NodeInt:
		n, _ := v.AsInt()
		w.putUint(uint64(n), t.width)

	case NodeFloat:
		f, _ := v.AsFloat()
		if t.width == 4 {
			w.putF32(f)
		} else {
			w.putF64(f)
		}

	case NodeFloat24:
		f, _ := v.AsFloat()
		w.putF24(f)

	case NodeBool:
		b, _ := v.AsBool()
		if b {
			w.putU8(1)
		} else {
			w.putU8(0)
		}

	case NodeBoolPacked:
		elems, _ := v.AsList()
		var packed uint8
		for i, e := range elems {
			if b, _ := e.AsBool(); b {
				packed |= 1 << i
			}
		}
		w.putU8(packed)

	case NodeString:
		s, _ := v.AsStr()
		w.putUint(uint64(len(s)), t.width)
		w.putStr(s)

	case NodeStringFixed:
		s, _ := v.AsStr()
		w.putStrFixed(s, t.length)

	case NodeStringNT:
		s, _ := v.AsStr()
		w.putStr(s)
		w.putU8(0)

	case NodeVoid, NodeNil:
		// Zero bytes.

	case NodeAny:
		dynWrite(w, v)

	case NodeVector2:
		vec, _ := v.AsVector2()
		putComp(w, t, vec.X)
		putComp(w, t, vec.Y)

	case NodeVector3:
		vec, _ := v.AsVector3()
		putVec3(w, t, vec)

	case NodeTransform:
		x, _ := v.AsTransform()
		putVec3(w, t, x.Pos)
		putVec3(w, t, x.Rot)

	case NodeColor:
		c, _ := v.AsColor()
		w.putU8(c.R)
		w.putU8(c.G)
		w.putU8(c.B)

	case NodeEnum:
		name, _ := v.AsEnum()
		w.putU16(uint16(enumIndex(t.domain, name)))

	case NodeArray:
		elems, _ := v.AsList()
		w.putUint(uint64(len(elems)), t.width)
		for _, e := range elems {
			encodeNode(w, t.children[0], e)
		}

	case NodeArrayFixed:
		elems, _ := v.AsList()
		for _, e := range elems {
			encodeNode(w, t.children[0], e)
		}

	case NodeMap:
		entries, _ := v.AsMap()
		w.putUint(uint64(len(entries)), t.width)
		putEntries(w, t, entries)

	case NodeMapFixed:
		entries, _ := v.AsMap()
		putEntries(w, t, entries)

	case NodeStruct:
		for _, f := range t.fields {
			encodeNode(w, f.Type, v.Get(f.Name))
		}

	case NodeOptional:
		if v.IsNil() {
			w.putU8(0)
			return
		}
		w.putU8(1)
		encodeNode(w, t.children[0], v)

	case NodeBits:
		elems, _ := v.AsList()
		for _, e := range elems {
			n, _ := e.AsInt()
			w.putUint(uint64(n), t.width)
		}
	}
}

func putComp(w *writer, t TypeNode, f float64) {
	if t.f24 {
		w.putF24(f)
	} else {
		w.putF32(f)
	}
}

func putVec3(w *writer, t TypeNode, v Vec3) {
	putComp(w, t, v.X)
	putComp(w, t, v.Y)
	putComp(w, t, v.Z)
}

func putEntries(w *writer, t TypeNode, entries []MapEntry) {
	for _, e := range entries {
		encodeNode(w, t.children[0], e.Key)
		encodeNode(w, t.children[1], e.Value)
	}
}

// ============================================================
// Node decoding
// ============================================================

func decodeNode(r *reader, t TypeNode) (*Value, error) {
	switch t.kind {
	case NodeInt:
		if t.signed {
			n, err := r.int(t.width)
			if err != nil {
				return nil, err
			}
			return Int(n), nil
		}
		n, err := r.uint(t.width)
		if err != nil {
			return nil, err
		}
		return Int(int64(n)), nil

	case NodeFloat:
		var f float64
		var err error
		if t.width == 4 {
			f, err = r.f32()
		} else {
			f, err = r.f64()
		}
		if err != nil {
			return nil, err
		}
		return Float(f), nil

	case NodeFloat24:
		f, err := r.f24()
		if err != nil {
			return nil, err
		}
		return Float(f), nil

	case NodeBool:
		b, err := r.u8()
		if err != nil {
			return nil, err
		}
		return BoolVal(b != 0), nil

	case NodeBoolPacked:
		packed, err := r.u8()
		if err != nil {
			return nil, err
		}
		elems := make([]*Value, 8)
		for i := range elems {
			elems[i] = BoolVal(packed&(1<<i) != 0)
		}
		return List(elems...), nil

	case NodeString:
		n, err := r.uint(t.width)
		if err != nil {
			return nil, err
		}
		s, err := r.str(int(n))
		if err != nil {
			return nil, err
		}
		return Str(s), nil

	case NodeStringFixed:
		s, err := r.str(t.length)
		if err != nil {
			return nil, err
		}
		return Str(strings.TrimRight(s, "\x00")), nil

	case NodeStringNT:
		s, err := r.strNT()
		if err != nil {
			return nil, err
		}
		return Str(s), nil

	case NodeVoid, NodeNil:
		return Nil(), nil

	case NodeAny:
		return dynRead(r)

	case NodeVector2:
		x, y, err := readComp2(r, t)
		if err != nil {
			return nil, err
		}
		return Vector2Val(x, y), nil

	case NodeVector3:
		v, err := readVec3(r, t)
		if err != nil {
			return nil, err
		}
		return Vector3Val(v.X, v.Y, v.Z), nil

	case NodeTransform:
		pos, err := readVec3(r, t)
		if err != nil {
			return nil, err
		}
		rot, err := readVec3(r, t)
		if err != nil {
			return nil, err
		}
		return TransformVal(pos, rot), nil

	case NodeColor:
		if err := r.need(3); err != nil {
			return nil, err
		}
		cr, _ := r.u8()
		cg, _ := r.u8()
		cb, _ := r.u8()
		return ColorVal(cr, cg, cb), nil

	case NodeEnum:
		idx, err := r.u16()
		if err != nil {
			return nil, err
		}
		if int(idx) >= len(t.domain) {
			return nil, fmt.Errorf("%w: enum index %d outside domain of %d items",
				ErrSchemaMismatch, idx, len(t.domain))
		}
		return EnumItem(t.domain[idx]), nil

	case NodeArray:
		n, err := r.uint(t.width)
		if err != nil {
			return nil, err
		}
		return readElems(r, t.children[0], int(n))

	case NodeArrayFixed:
		return readElems(r, t.children[0], t.length)

	case NodeMap:
		n, err := r.uint(t.width)
		if err != nil {
			return nil, err
		}
		return readEntries(r, t, int(n))

	case NodeMapFixed:
		return readEntries(r, t, t.length)

	case NodeStruct:
		fields := make([]Field, len(t.fields))
		for i, f := range t.fields {
			fv, err := decodeNode(r, f.Type)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", f.Name, err)
			}
			fields[i] = Field{Name: f.Name, Value: fv}
		}
		return Record(fields...), nil

	case NodeOptional:
		flag, err := r.u8()
		if err != nil {
			return nil, err
		}
		switch flag {
		case 0:
			return Nil(), nil
		case 1:
			return decodeNode(r, t.children[0])
		default:
			return nil, fmt.Errorf("%w: optional flag byte %#02x", ErrSchemaMismatch, flag)
		}

	case NodeBits:
		elems := make([]*Value, t.length)
		for i := range elems {
			n, err := r.uint(t.width)
			if err != nil {
				return nil, err
			}
			elems[i] = Int(int64(n))
		}
		return List(elems...), nil

	default:
		return nil, fmt.Errorf("%w: unknown type node %d", ErrSchemaMismatch, t.kind)
	}
}

func readComp(r *reader, t TypeNode) (float64, error) {
	if t.f24 {
		return r.f24()
	}
	return r.f32()
}

func readComp2(r *reader, t TypeNode) (float64, float64, error) {
	x, err := readComp(r, t)
	if err != nil {
		return 0, 0, err
	}
	y, err := readComp(r, t)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func readVec3(r *reader, t TypeNode) (Vec3, error) {
	x, y, err := readComp2(r, t)
	if err != nil {
		return Vec3{}, err
	}
	z, err := readComp(r, t)
	if err != nil {
		return Vec3{}, err
	}
	return Vec3{X: x, Y: y, Z: z}, nil
}

func readElems(r *reader, elem TypeNode, n int) (*Value, error) {
	elems := make([]*Value, n)
	for i := range elems {
		e, err := decodeNode(r, elem)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		elems[i] = e
	}
	return List(elems...), nil
}

func readEntries(r *reader, t TypeNode, n int) (*Value, error) {
	entries := make([]MapEntry, n)
	for i := range entries {
		k, err := decodeNode(r, t.children[0])
		if err != nil {
			return nil, fmt.Errorf("entry %d key: %w", i, err)
		}
		v, err := decodeNode(r, t.children[1])
		if err != nil {
			return nil, fmt.Errorf("entry %d value: %w", i, err)
		}
		entries[i] = MapEntry{Key: k, Value: v}
	}
	return MapValue(entries...), nil
}
