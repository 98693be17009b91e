package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// Credentials verifies the shared board API key. Exactly one of the plain key
// or the bcrypt hash is normally set; when both are set the plain key wins.
type Credentials struct {
	apiKey     string
	apiKeyHash string
}

// NewCredentials builds a Credentials from the configured key material.
func NewCredentials(apiKey, apiKeyHash string) *Credentials {
	return &Credentials{apiKey: apiKey, apiKeyHash: apiKeyHash}
}

// VerifyKey reports whether the presented key matches the board credential.
func (c *Credentials) VerifyKey(presented string) bool {
	if presented == "" {
		return false
	}
	if c.apiKey != "" {
		return subtle.ConstantTimeCompare([]byte(c.apiKey), []byte(presented)) == 1
	}
	if c.apiKeyHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(c.apiKeyHash), []byte(presented)) == nil
	}
	return false
}

// Verifier authorizes a presented credential, which may be either the raw API
// key or a board token minted from it.
type Verifier struct {
	creds *Credentials
	jwt   *JWTManager
}

// NewVerifier combines key and token verification.
func NewVerifier(creds *Credentials, jwtManager *JWTManager) *Verifier {
	return &Verifier{creds: creds, jwt: jwtManager}
}

// Verify reports whether the presented credential grants board access.
func (v *Verifier) Verify(presented string) bool {
	if v.creds.VerifyKey(presented) {
		return true
	}
	if v.jwt != nil {
		if _, err := v.jwt.VerifyToken(presented); err == nil {
			return true
		}
	}
	return false
}
