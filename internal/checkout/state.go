package checkout

// State состояние оформления заказа
type State int

const (
	StateCollectingDetails State = iota
	StateAwaitingShippingQuote
	StateDetailsConfirmed
	StateAwaitingPayment
	StateCompleted
	StateErrored
)

const (
	StepDetails = 1
	StepPayment = 2
)

func (s State) String() string {
	switch s {
	case StateCollectingDetails:
		return "collecting_details"
	case StateAwaitingShippingQuote:
		return "awaiting_shipping_quote"
	case StateDetailsConfirmed:
		return "details_confirmed"
	case StateAwaitingPayment:
		return "awaiting_payment"
	case StateCompleted:
		return "completed"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
