// Package quill implements a compact binary serialization engine for
// low-latency state sync between processes.
//
// quill is designed to be:
//   - Schema-compiled: declare a type sequence once, reuse it for many
//     tuples with zero per-call type metadata on the wire
//   - Self-describing on demand: a dynamic mode infers each value's
//     type and embeds one tag byte per value
//   - Exactly sized: every encode measures first and allocates once
//   - Deterministic: same schema, values and level → same bytes
//   - Compressible: a pluggable byte-transform wraps the payload,
//     leaving any caller-reserved header region untouched
//
// # Two Modes
//
// Static mode compiles an ordered schema into a Serializer:
//
//	s, _ := quill.Compile(quill.Options{},
//		quill.Int32(),
//		quill.String(),
//		quill.Struct(
//			quill.NamedField("Hello", quill.String()),
//			quill.NamedField("World", quill.Int32()),
//		),
//	)
//	buf, _ := s.Encode(0, []*quill.Value{
//		quill.Int(42),
//		quill.Str("Hello, world!"),
//		quill.Record(
//			quill.FieldOf("Hello", quill.Str("hi")),
//			quill.FieldOf("World", quill.Int(999)),
//		),
//	})
//	values, _ := s.Decode(0, buf)
//
// Dynamic mode needs no schema; the tag protocol is fixed and
// documented in dynamic.go:
//
//	buf, _ := quill.Serialize(0, 0, []*quill.Value{
//		quill.Int(42), quill.Str("x"), quill.BoolVal(true),
//	})
//	values, _ := quill.Deserialize(0, 0, buf)
//
// # Wire Layout
//
// Both modes produce:
//
//	[offset bytes, caller-reserved, untouched] [payload, raw or transformed]
//
// Static payloads concatenate each schema node's encoding in schema
// order; dynamic payloads concatenate (tag, encoding) pairs in call
// order. All multi-byte formats are little-endian.
//
// # Value Model
//
// Values are a closed tagged union built with pure constructors:
// Nil, BoolVal, Int, Float, Str, Vector2Val, Vector3Val, TransformVal,
// ColorVal, EnumItem, List, MapValue, Record. The engine never
// inspects values by reflection.
//
// # Errors
//
// All failures are synchronous sentinel errors (ErrSchemaMismatch,
// ErrEncodingOverflow, ErrFixedLengthViolation, ErrBufferTruncated,
// ErrInvalidTypeTag, ErrInvalidCompressionLevel,
// ErrCompressionFailure) wrapped with context; test with errors.Is.
// Output from a failed Encode must be discarded.
package quill
