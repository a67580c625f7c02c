package utils

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
)

// GenerateOtpCode returns a 6-digit numeric code from crypto/rand.
func GenerateOtpCode() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// GenerateSessionToken returns an opaque 64-hex-char token and the hash to
// persist. The raw token goes to the client exactly once; the server keeps
// only the hash.
func GenerateSessionToken() (token, hash string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	token = hex.EncodeToString(buf)
	return token, HashToken(token), nil
}

// HashToken returns the hex SHA-256 of a session token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// GenerateSalt returns a random hex salt for OTP code hashing.
func GenerateSalt() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// HashOtpCode hashes an OTP code with its per-challenge salt.
func HashOtpCode(code, salt string) string {
	sum := sha256.Sum256([]byte(salt + ":" + code))
	return hex.EncodeToString(sum[:])
}

// VerifyOtpCode compares a submitted code against the stored hash in constant
// time.
func VerifyOtpCode(code, salt, storedHash string) bool {
	return hmac.Equal([]byte(HashOtpCode(code, salt)), []byte(storedHash))
}
