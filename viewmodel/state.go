package viewmodel

import "fmt"

// ViewState is what the state channel carries: either Content or a
// Failure.
type ViewState[S any] interface {
	fmt.Stringer
	viewState()
}

// Content carries a store state to the view.
type Content[S any] struct {
	Value S
}

func (Content[S]) viewState() {}

func (c Content[S]) String() string { return fmt.Sprint(c.Value) }

// Failure replaces the content with an error screen.
type Failure struct {
	Kind ErrorKind
}

func (Failure) viewState() {}

func (f Failure) String() string { return f.Kind.String() }

// ErrorKind classifies what a Failure shows. The simple kinds are
// comparable values; ErrorAPI carries the server's codes.
type ErrorKind interface {
	fmt.Stringer
	errorKind()
}

type simpleKind string

func (simpleKind) errorKind() {}

func (k simpleKind) String() string { return string(k) }

var (
	ErrorNone        ErrorKind = simpleKind("none")
	ErrorGeneric     ErrorKind = simpleKind("generic")
	ErrorNetwork     ErrorKind = simpleKind("network")
	ErrorMaintenance ErrorKind = simpleKind("maintenance")
	ErrorNotFound    ErrorKind = simpleKind("not_found")
)

// ErrorAPI is a failure reported by a remote API.
type ErrorAPI struct {
	HTTPStatus int
	Code       int
}

func (ErrorAPI) errorKind() {}

func (e ErrorAPI) String() string {
	return fmt.Sprintf("api(http=%d, code=%d)", e.HTTPStatus, e.Code)
}
