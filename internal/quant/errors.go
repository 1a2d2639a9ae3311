package quant

import "errors"

// Common errors.
//
// ErrUnsupportedScheme and ErrUnsupportedType indicate programmer or
// configuration mistakes and are never retried. ErrMissingState indicates a
// malformed persisted state map at load time.
var (
	ErrUnsupportedScheme = errors.New("unsupported quantization scheme")
	ErrUnsupportedType   = errors.New("unsupported quantization target type")
	ErrMissingState      = errors.New("missing quantization state key")
)
