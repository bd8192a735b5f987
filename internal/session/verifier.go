// ABOUTME: Pluggable credential verification for login
// ABOUTME: Ships a static username/password verifier for the demo account

package session

import "crypto/subtle"

// Demo account accepted by DemoVerifier
const (
	DemoUsername = "admin"
	DemoPassword = "admin"
)

// CredentialVerifier decides whether a username/password pair may log in.
// Implementations return ErrInvalidCredentials on mismatch.
type CredentialVerifier interface {
	Verify(username, password string) error
}

// VerifierFunc adapts a function to CredentialVerifier
type VerifierFunc func(username, password string) error

// Verify calls f
func (f VerifierFunc) Verify(username, password string) error {
	return f(username, password)
}

// StaticVerifier accepts exactly one username/password pair. It is a stand-in
// collaborator, not a security boundary.
type StaticVerifier struct {
	Username string
	Password string
}

// DemoVerifier accepts admin/admin
func DemoVerifier() StaticVerifier {
	return StaticVerifier{Username: DemoUsername, Password: DemoPassword}
}

// Verify compares both values in constant time
func (v StaticVerifier) Verify(username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(v.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(v.Password)) == 1
	if !userOK || !passOK {
		return ErrInvalidCredentials
	}
	return nil
}
