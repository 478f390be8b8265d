package checkout

import (
	"github.com/angelmondragon/packfinderz-pos/pkg/enums"
)

// Session is the ephemeral state of one checkout attempt. It is owned
// exclusively by the orchestrator and discarded after completion.
type Session struct {
	Status        enums.CheckoutStatus
	Method        enums.PaymentMethod
	Receipt       *SaleCompletion
	FailureReason string
}

// InFlight reports whether a submit is currently being worked on.
func (s Session) InFlight() bool {
	return s.Status == enums.CheckoutStatusValidating || s.Status == enums.CheckoutStatusProcessing
}

// CanSubmit reports whether a new submit may start. Failed sessions
// return to idle for a user-initiated retry; succeeded is terminal.
func (s Session) CanSubmit() bool {
	return !s.InFlight() && s.Status != enums.CheckoutStatusSucceeded
}
