package foxypack

import "errors"

// Outcome is the chain's decision about a single handler call.
type Outcome int

const (
	// OutcomeHandled means the handler produced a result and the chain stops.
	OutcomeHandled Outcome = iota
	// OutcomeDeclined means the chain moves on to the next handler.
	OutcomeDeclined
	// OutcomeFatal means the error propagates to the caller.
	OutcomeFatal
)

func (o Outcome) String() string {
	switch o {
	case OutcomeHandled:
		return "handled"
	case OutcomeDeclined:
		return "declined"
	case OutcomeFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// BypassPolicy reports whether err lets the chain continue with the next handler.
type BypassPolicy func(err error) bool

// BypassCollection accepts declinations and every collection error, including
// the mode-unsupported ones. It is the default for both chains.
func BypassCollection(err error) bool {
	return errors.Is(err, ErrDeclined) || errors.Is(err, ErrCollection)
}

// BypassCollectionStrict accepts declinations and collection errors but lets a
// handler called in the wrong execution mode abort the chain.
func BypassCollectionStrict(err error) bool {
	if errors.Is(err, ErrSyncUnsupported) || errors.Is(err, ErrAsyncUnsupported) {
		return false
	}
	return BypassCollection(err)
}

// Classify maps the error of a handler call onto an Outcome.
func Classify(err error, policy BypassPolicy) Outcome {
	switch {
	case err == nil:
		return OutcomeHandled
	case policy(err):
		return OutcomeDeclined
	default:
		return OutcomeFatal
	}
}
