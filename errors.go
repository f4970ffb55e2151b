package varcodec

import "errors"

var (
	// ErrTruncatedData indicates that the input ended, or held a malformed value,
	// before the decoder had read everything its schema asks for. Truncated and
	// corrupt input are deliberately indistinguishable.
	ErrTruncatedData = errors.New("varcodec: truncated or malformed data")

	// ErrTrailingData is returned by Unmarshal when bytes remain after the
	// value has been fully decoded, which usually means the reader's schema
	// differs from the writer's.
	ErrTrailingData = errors.New("varcodec: trailing data found after decoding")

	// ErrUnregisteredType indicates an Encoder was given a value whose type has
	// no codec in its Registry.
	ErrUnregisteredType = errors.New("varcodec: no codec registered for type")

	// ErrNilValue indicates Encode was called with a nil pointer.
	ErrNilValue = errors.New("varcodec: cannot encode a nil pointer")

	// ErrNotPointer indicates Decode was called with a non-pointer or nil destination.
	ErrNotPointer = errors.New("varcodec: decode destination must be a non-nil pointer")

	// ErrWriteToNil indicates a WriteTo operation was attempted on a nil io.Writer.
	ErrWriteToNil = errors.New("varcodec: WriteTo called with a nil io.Writer")

	// ErrReadFromNil indicates a ReadFrom operation was attempted on a nil io.Reader.
	ErrReadFromNil = errors.New("varcodec: ReadFrom called with a nil io.Reader")

	// ErrInvalidWrite indicates that an io.Writer returned an invalid (negative or outbound) count from Write.
	ErrInvalidWrite = errors.New("varcodec: writer returned invalid count from Write")
)
