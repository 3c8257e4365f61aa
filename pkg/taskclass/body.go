package taskclass

// Done signals task completion. A nil error reports success.
type Done func(err error)

// Handle is an awaitable task result returned by value bodies.
type Handle interface {
	Wait() error
}

// HandleFunc adapts a blocking function to a Handle.
type HandleFunc func() error

// Wait runs the function and returns its error.
func (handleFunc HandleFunc) Wait() error {
	if handleFunc == nil {
		return nil
	}
	return handleFunc()
}

type completedHandle struct {
	err error
}

func (handle completedHandle) Wait() error {
	return handle.err
}

// Completed returns a Handle that has already finished with the provided error.
func Completed(err error) Handle {
	return completedHandle{err: err}
}

// BodyKind identifies how a task body reports completion.
type BodyKind int

const (
	// BodyInvalid marks the zero Body.
	BodyInvalid BodyKind = iota
	// BodySignal bodies receive a Done callback and invoke it when finished.
	BodySignal
	// BodyValue bodies return a Handle the runner awaits.
	BodyValue
)

// String returns a readable representation of the kind.
func (kind BodyKind) String() string {
	switch kind {
	case BodySignal:
		return "signal"
	case BodyValue:
		return "value"
	default:
		return "invalid"
	}
}

// Body is a task body: either signal based or value based.
type Body struct {
	kind   BodyKind
	signal func(Done)
	value  func() Handle
}

// Signal builds a body that reports completion through the Done callback.
func Signal(function func(done Done)) Body {
	return Body{kind: BodySignal, signal: function}
}

// Value builds a body that returns a Handle describing its result.
func Value(function func() Handle) Body {
	return Body{kind: BodyValue, value: function}
}

// Kind reports which variant the body is.
func (body Body) Kind() BodyKind {
	return body.kind
}

func (body Body) invocable() bool {
	switch body.kind {
	case BodySignal:
		return body.signal != nil
	case BodyValue:
		return body.value != nil
	default:
		return false
	}
}
