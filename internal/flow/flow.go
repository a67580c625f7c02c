// Package flow models the guest order-lookup flow as one typed state machine.
// Two storefront surfaces used to duplicate this sequencing with diverging key
// conventions; both now consume this package.
package flow

import "errors"

// State is where a guest customer currently is in the order-lookup flow.
type State string

const (
	// StatePhoneEntry: no challenge and no session; the customer must submit
	// a phone number to request a code.
	StatePhoneEntry State = "phone_entry"
	// StateOtpEntry: a code was dispatched; the customer must submit it.
	StateOtpEntry State = "otp_entry"
	// StateVerified: a live session exists; orders may be queried until the
	// session expires or the customer logs out.
	StateVerified State = "verified"
)

// Event is a transition trigger.
type Event string

const (
	EventSendCode      Event = "send_code"
	EventVerifyOK      Event = "verify_ok"
	EventVerifyFail    Event = "verify_fail"
	EventLogout        Event = "logout"
	EventSessionFound  Event = "session_found"
	EventSessionLapsed Event = "session_lapsed"
)

// ErrInvalidTransition is returned when an event does not apply to a state.
var ErrInvalidTransition = errors.New("invalid flow transition")

// Next returns the state reached by applying event to state. The flow has no
// terminal state: it is re-enterable indefinitely.
func Next(state State, event Event) (State, error) {
	switch state {
	case StatePhoneEntry:
		switch event {
		case EventSendCode:
			return StateOtpEntry, nil
		case EventSessionFound:
			// Restoring a live session skips verification entirely.
			return StateVerified, nil
		}
	case StateOtpEntry:
		switch event {
		case EventVerifyOK:
			return StateVerified, nil
		case EventVerifyFail:
			// The customer stays on code entry and may retry or request
			// a fresh code.
			return StateOtpEntry, nil
		case EventSendCode:
			return StateOtpEntry, nil
		case EventLogout:
			return StatePhoneEntry, nil
		}
	case StateVerified:
		switch event {
		case EventLogout, EventSessionLapsed:
			return StatePhoneEntry, nil
		case EventSessionFound:
			return StateVerified, nil
		}
	}
	return state, ErrInvalidTransition
}

// Resolve derives the state to present from persisted facts: whether a live
// session exists and whether an unconsumed challenge is pending. A live
// session always wins.
func Resolve(hasSession, hasPendingChallenge bool) State {
	switch {
	case hasSession:
		return StateVerified
	case hasPendingChallenge:
		return StateOtpEntry
	default:
		return StatePhoneEntry
	}
}
