package types

import "errors"

// Error kinds shared by the algebra and the public API.
var (
	ErrUnknownIdentifier   = errors.New("unknown identifier")
	ErrUnsupportedKey      = errors.New("unsupported key type")
	ErrIncompatibleOperand = errors.New("incompatible operand")
	ErrOverlapConflict     = errors.New("columns overlap")
	ErrMalformedWindow     = errors.New("malformed row window")
	ErrNotImplemented      = errors.New("not implemented")
	ErrNotSingular         = errors.New("result is not a single value")
	ErrArity               = errors.New("wrong number of operands")
	ErrUnsupportedFeature  = errors.New("unsupported feature")
	ErrNotNumeric          = errors.New("value is not numeric")
)
