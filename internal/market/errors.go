package market

import "errors"

var (
	// ErrInvalidOrder rejects submissions with a non-positive price or
	// quantity.
	ErrInvalidOrder = errors.New("invalid order")

	// ErrUnsupportedOperation signals a policy-specific call on the wrong
	// market kind.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrIllegalConfiguration rejects construction-time parameters such as a
	// negative clear interval.
	ErrIllegalConfiguration = errors.New("illegal configuration")
)
