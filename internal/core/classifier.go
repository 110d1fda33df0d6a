package core

// DecisionKind is the local action derived from an intent status
type DecisionKind int

const (
	DecisionPending DecisionKind = iota
	DecisionFinalize
	DecisionCancelled
	DecisionFailed
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionFinalize:
		return "finalize"
	case DecisionCancelled:
		return "cancelled"
	case DecisionFailed:
		return "failed"
	default:
		return "pending"
	}
}

// UnknownErrorMessage is shown when the gateway reports an error without a message
const UnknownErrorMessage = "Unknown error"

// Decision is the classifier output. Message is set only for DecisionFailed.
type Decision struct {
	Kind    DecisionKind
	Message string
}

// Classify maps a payment intent to a local decision. It has no side effects.
//
// Success and cancellation win over a stale last_payment_error; an error is only
// considered for non-terminal statuses. A non-terminal status without an error is
// pending and not yet actionable.
func Classify(intent PaymentIntent) Decision {
	switch intent.Status {
	case IntentSucceeded, IntentRequiresCapture:
		return Decision{Kind: DecisionFinalize}
	case IntentCanceled:
		return Decision{Kind: DecisionCancelled}
	}

	if intent.LastPaymentError != nil {
		msg := intent.LastPaymentError.Message
		if msg == "" {
			msg = UnknownErrorMessage
		}
		return Decision{Kind: DecisionFailed, Message: msg}
	}

	return Decision{Kind: DecisionPending}
}
