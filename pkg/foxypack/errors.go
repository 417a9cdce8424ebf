package foxypack

import (
	"errors"
	"fmt"
)

// Kind identifies a node in the error hierarchy.
type Kind int

const (
	// KindSystem is the root of the hierarchy.
	KindSystem Kind = iota
	KindUsage
	KindConfiguration
	KindUnsupportedOperation
	KindContractViolation
	// KindCollection groups failures to collect data from a source.
	KindCollection
	KindServiceUnavailable
	KindTimeout
	KindSyncUnsupported
	KindAsyncUnsupported
)

var kindNames = map[Kind]string{
	KindSystem:               "system",
	KindUsage:                "usage",
	KindConfiguration:        "configuration",
	KindUnsupportedOperation: "unsupported operation",
	KindContractViolation:    "contract violation",
	KindCollection:           "collection",
	KindServiceUnavailable:   "service unavailable",
	KindTimeout:              "timeout",
	KindSyncUnsupported:      "synchronous mode unsupported",
	KindAsyncUnsupported:     "asynchronous mode unsupported",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Parent returns the kind k descends from. The root is its own parent.
func (k Kind) Parent() Kind {
	switch k {
	case KindServiceUnavailable, KindTimeout, KindSyncUnsupported, KindAsyncUnsupported:
		return KindCollection
	default:
		return KindSystem
	}
}

// IsA reports whether k equals ancestor or descends from it.
func (k Kind) IsA(ancestor Kind) bool {
	for {
		if k == ancestor {
			return true
		}
		if k == KindSystem {
			return false
		}
		k = k.Parent()
	}
}

// Error is the system error type. Match it with errors.Is against the Err*
// sentinels, which respects the hierarchy: a timeout is also a collection error
// and a system error.
type Error struct {
	Kind    Kind
	Handler string
	Msg     string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Handler != "" {
		msg = e.Handler + ": " + msg
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinel errors of the same kind or of an ancestor kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || !isSentinel(t) {
		return false
	}
	return e.Kind.IsA(t.Kind)
}

var (
	ErrSystem               = &Error{Kind: KindSystem}
	ErrUsage                = &Error{Kind: KindUsage}
	ErrConfiguration        = &Error{Kind: KindConfiguration}
	ErrUnsupportedOperation = &Error{Kind: KindUnsupportedOperation}
	ErrContractViolation    = &Error{Kind: KindContractViolation}
	ErrCollection           = &Error{Kind: KindCollection}
	ErrServiceUnavailable   = &Error{Kind: KindServiceUnavailable}
	ErrTimeout              = &Error{Kind: KindTimeout}
	ErrSyncUnsupported      = &Error{Kind: KindSyncUnsupported}
	ErrAsyncUnsupported     = &Error{Kind: KindAsyncUnsupported}
)

func isSentinel(e *Error) bool {
	return e.Msg == "" && e.Handler == "" && e.Err == nil
}

// NewError builds an error of the given kind.
func NewError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// WrapError builds an error of the given kind around cause.
func WrapError(kind Kind, handler string, cause error) *Error {
	return &Error{Kind: kind, Handler: handler, Err: cause}
}

// NewUsage reports that the controller was used incorrectly.
func NewUsage(msg string) *Error { return NewError(KindUsage, msg) }

// NewConfiguration reports invalid settings.
func NewConfiguration(msg string) *Error { return NewError(KindConfiguration, msg) }

// NewUnsupportedOperation reports a request the system cannot perform.
func NewUnsupportedOperation(msg string) *Error {
	return NewError(KindUnsupportedOperation, msg)
}

// NewContractViolation reports a handler that broke its interface contract.
func NewContractViolation(handler, msg string) *Error {
	return &Error{Kind: KindContractViolation, Handler: handler, Msg: msg}
}

// NewCollection reports that handler could not collect data.
func NewCollection(handler, msg string) *Error {
	return &Error{Kind: KindCollection, Handler: handler, Msg: msg}
}

// NewServiceUnavailable reports that the service behind handler is unreachable.
func NewServiceUnavailable(handler, msg string) *Error {
	return &Error{Kind: KindServiceUnavailable, Handler: handler, Msg: msg}
}

// NewTimeout reports that handler did not answer in time.
func NewTimeout(handler, msg string) *Error {
	return &Error{Kind: KindTimeout, Handler: handler, Msg: msg}
}

// NewSyncUnsupported reports that handler does not provide data synchronously.
func NewSyncUnsupported(handler string) *Error {
	return &Error{
		Kind:    KindSyncUnsupported,
		Handler: handler,
		Msg:     "does not provide data in a synchronous execution mode",
	}
}

// NewAsyncUnsupported reports that handler does not provide data asynchronously.
func NewAsyncUnsupported(handler string) *Error {
	return &Error{
		Kind:    KindAsyncUnsupported,
		Handler: handler,
		Msg:     "does not provide data in an asynchronous execution mode",
	}
}

// ErrDeclined matches every *DeclinedError. Declination is not part of the
// system error hierarchy: it means "not mine", never "broken".
var ErrDeclined = errors.New("declined")

// DeclinedError is returned by a handler that does not handle the given input.
type DeclinedError struct {
	URL    string
	Reason string
}

// Decline builds a declination for url.
func Decline(url, reason string) *DeclinedError {
	return &DeclinedError{URL: url, Reason: reason}
}

func (e *DeclinedError) Error() string {
	url := e.URL
	if url == "" {
		url = "empty_url"
	}
	msg := fmt.Sprintf("the provided URL '%s' is not supported", url)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *DeclinedError) Is(target error) bool { return target == ErrDeclined }
