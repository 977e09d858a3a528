package store

import (
	"errors"
	"fmt"
)

// ErrIllegalState is matched by every IllegalStateError.
var ErrIllegalState = errors.New("illegal state")

// IllegalStateError reports an action or effect the reducer or effector
// does not support in the current state. It is raised with panic: a
// reducer is total over the inputs it claims, so hitting one is a
// programming error.
type IllegalStateError struct {
	State   any
	Input   any
	Message string
}

func (e *IllegalStateError) Error() string {
	if e.Input != nil {
		return fmt.Sprintf("%s: %v when state: %v", e.Message, e.Input, e.State)
	}
	return fmt.Sprintf("%s when state: %v", e.Message, e.State)
}

func (e *IllegalStateError) Unwrap() error {
	return ErrIllegalState
}

// IllegalAction describes action arriving in state.
func IllegalAction(state, action any) *IllegalStateError {
	return &IllegalStateError{State: state, Input: action, Message: "call action"}
}

// IllegalEffect describes effect arriving in state.
func IllegalEffect(state, effect any) *IllegalStateError {
	return &IllegalStateError{State: state, Input: effect, Message: "call effect"}
}

// IllegalState describes any other unsupported situation in state.
func IllegalState(state any, message string) *IllegalStateError {
	return &IllegalStateError{State: state, Message: message}
}
