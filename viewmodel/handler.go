package viewmodel

// ExceptionHandler decides whether a failure is known and dealt with.
// Handle returns true when it claimed err.
type ExceptionHandler interface {
	Handle(err error) bool
}

// HandlerFunc adapts a function to ExceptionHandler.
type HandlerFunc func(err error) bool

func (f HandlerFunc) Handle(err error) bool { return f(err) }
