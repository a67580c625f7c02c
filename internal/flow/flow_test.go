package flow

import "testing"

func TestHappyPathTransitions(t *testing.T) {
	state := StatePhoneEntry

	state, err := Next(state, EventSendCode)
	if err != nil {
		t.Fatalf("send code from phone entry: %v", err)
	}
	if state != StateOtpEntry {
		t.Fatalf("expected otp entry after send, got %s", state)
	}

	state, err = Next(state, EventVerifyOK)
	if err != nil {
		t.Fatalf("verify ok from otp entry: %v", err)
	}
	if state != StateVerified {
		t.Fatalf("expected verified after verify, got %s", state)
	}

	state, err = Next(state, EventLogout)
	if err != nil {
		t.Fatalf("logout from verified: %v", err)
	}
	if state != StatePhoneEntry {
		t.Fatalf("expected phone entry after logout, got %s", state)
	}
}

func TestVerifyFailureStaysOnOtpEntry(t *testing.T) {
	state, err := Next(StateOtpEntry, EventVerifyFail)
	if err != nil {
		t.Fatalf("verify fail from otp entry: %v", err)
	}
	if state != StateOtpEntry {
		t.Fatalf("expected otp entry after failed verify, got %s", state)
	}

	// A fresh code request from the code screen is allowed.
	state, err = Next(state, EventSendCode)
	if err != nil {
		t.Fatalf("resend from otp entry: %v", err)
	}
	if state != StateOtpEntry {
		t.Fatalf("expected otp entry after resend, got %s", state)
	}
}

func TestSessionRestoreSkipsVerification(t *testing.T) {
	state, err := Next(StatePhoneEntry, EventSessionFound)
	if err != nil {
		t.Fatalf("session restore: %v", err)
	}
	if state != StateVerified {
		t.Fatalf("expected verified on session restore, got %s", state)
	}
}

func TestLapsedSessionReturnsToPhoneEntry(t *testing.T) {
	state, err := Next(StateVerified, EventSessionLapsed)
	if err != nil {
		t.Fatalf("session lapse: %v", err)
	}
	if state != StatePhoneEntry {
		t.Fatalf("expected phone entry after lapse, got %s", state)
	}
}

func TestInvalidTransitionsRejected(t *testing.T) {
	cases := []struct {
		state State
		event Event
	}{
		{StatePhoneEntry, EventVerifyOK},
		{StatePhoneEntry, EventVerifyFail},
		{StateVerified, EventVerifyOK},
		{StateVerified, EventSendCode},
	}

	for _, tc := range cases {
		if _, err := Next(tc.state, tc.event); err == nil {
			t.Fatalf("expected %s on %s to be rejected", tc.event, tc.state)
		}
	}
}

func TestResolve(t *testing.T) {
	if got := Resolve(true, true); got != StateVerified {
		t.Fatalf("session should win over pending challenge, got %s", got)
	}
	if got := Resolve(false, true); got != StateOtpEntry {
		t.Fatalf("pending challenge should yield otp entry, got %s", got)
	}
	if got := Resolve(false, false); got != StatePhoneEntry {
		t.Fatalf("nothing persisted should yield phone entry, got %s", got)
	}
}
