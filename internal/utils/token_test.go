package utils

import "testing"

func TestGenerateOtpCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := GenerateOtpCode()
		if err != nil {
			t.Fatalf("GenerateOtpCode returned error: %v", err)
		}
		if !IsNumericCode(code, 6) {
			t.Fatalf("generated code %q is not 6 digits", code)
		}
	}
}

func TestGenerateSessionToken(t *testing.T) {
	token, hash, err := GenerateSessionToken()
	if err != nil {
		t.Fatalf("GenerateSessionToken returned error: %v", err)
	}
	if len(token) != 64 {
		t.Fatalf("token length = %d, want 64", len(token))
	}
	if hash != HashToken(token) {
		t.Fatal("returned hash does not match HashToken of the token")
	}

	other, _, err := GenerateSessionToken()
	if err != nil {
		t.Fatalf("second GenerateSessionToken returned error: %v", err)
	}
	if other == token {
		t.Fatal("two generated tokens are identical")
	}
}

func TestVerifyOtpCode(t *testing.T) {
	salt, err := GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt returned error: %v", err)
	}

	hash := HashOtpCode("123456", salt)

	if !VerifyOtpCode("123456", salt, hash) {
		t.Fatal("correct code rejected")
	}
	if VerifyOtpCode("000000", salt, hash) {
		t.Fatal("wrong code accepted")
	}

	otherSalt, _ := GenerateSalt()
	if VerifyOtpCode("123456", otherSalt, hash) {
		t.Fatal("correct code with wrong salt accepted")
	}
}
