package fx

import "errors"

// Common errors.
var (
	// ErrUnresolvedTarget means a node's dotted target path does not exist on
	// the module tree. Fatal to the render that hit it.
	ErrUnresolvedTarget = errors.New("target path not found on module tree")

	// ErrUnsupportedMeta means a node carries tensor metadata that is not a
	// TensorMeta record or a sequence/mapping of them.
	ErrUnsupportedMeta = errors.New("unsupported tensor metadata value")
)
