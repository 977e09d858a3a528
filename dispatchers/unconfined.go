package dispatchers

import "context"

// UnconfinedDispatcher runs every function immediately on the calling
// goroutine.
type UnconfinedDispatcher struct{}

// NewUnconfined returns the unconfined dispatcher.
func NewUnconfined() UnconfinedDispatcher {
	return UnconfinedDispatcher{}
}

func (UnconfinedDispatcher) Name() string { return Unconfined.String() }

func (UnconfinedDispatcher) Dispatch(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fn()
	return nil
}
