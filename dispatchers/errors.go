package dispatchers

import "errors"

// Sentinel errors for dispatchers.
var (
	ErrClosed            = errors.New("dispatcher closed")
	ErrUnknownCategory   = errors.New("unknown dispatch category")
	ErrMissingDispatcher = errors.New("no dispatcher for category")
)
