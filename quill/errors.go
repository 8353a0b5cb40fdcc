package quill

import "errors"

// Error kinds surfaced by the engine. All are returned synchronously
// at the point of detection and are never retried internally; a buffer
// produced by a failed Encode call must be discarded.
var (
	// ErrSchemaMismatch reports a value tuple whose arity or per-value
	// shape disagrees with the schema at encode time.
	ErrSchemaMismatch = errors.New("quill: schema mismatch")

	// ErrEncodingOverflow reports a value that exceeds a type's
	// representable range or length-prefix capacity.
	ErrEncodingOverflow = errors.New("quill: encoding overflow")

	// ErrFixedLengthViolation reports a value whose length differs from
	// a Fixed-variant type's declared length.
	ErrFixedLengthViolation = errors.New("quill: fixed length violation")

	// ErrBufferTruncated reports a decode that ran past the end of the
	// buffer before a type's required bytes were available.
	ErrBufferTruncated = errors.New("quill: buffer truncated")

	// ErrInvalidTypeTag reports a dynamic decode that encountered a tag
	// outside the known tag space (corrupt or mismatched input).
	ErrInvalidTypeTag = errors.New("quill: invalid type tag")

	// ErrInvalidCompressionLevel reports a compression level outside
	// the active compressor's supported range.
	ErrInvalidCompressionLevel = errors.New("quill: invalid compression level")

	// ErrCompressionFailure reports a byte-transform that rejected the
	// payload, e.g. a corrupt compressed stream on decode.
	ErrCompressionFailure = errors.New("quill: compression failure")
)
