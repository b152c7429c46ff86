// Package credentials mints the short-lived signed user tokens that authorize
// relay calls to the background worker.
package credentials

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the credential lifetime: minted tokens expire 60 minutes
// after issue.
const DefaultTTL = 60 * time.Minute

// ErrNoSigningKey indicates the minter was constructed without key material.
var ErrNoSigningKey = errors.New("signing key is not configured")

// SigningError wraps configuration faults in the signing path. It is fatal
// for the request that hit it but is not retried.
type SigningError struct {
	Err error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("failed to sign credential: %v", e.Err)
}

func (e *SigningError) Unwrap() error {
	return e.Err
}

// IsSigningError reports whether err is a credential signing fault.
func IsSigningError(err error) bool {
	var signingErr *SigningError

	return errors.As(err, &signingErr)
}

// Minter signs RS256 user tokens. Key material is parsed at mint time so a
// missing or malformed key surfaces as a per-request configuration fault
// rather than a startup failure.
type Minter struct {
	keyPEM []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewMinter creates a minter from PEM-encoded RSA private key material.
// Empty key material is allowed; Mint will fail with a SigningError.
func NewMinter(keyPEM []byte, ttl time.Duration) *Minter {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Minter{
		keyPEM: keyPEM,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Mint signs a credential asserting subject = userID, issued now and
// expiring after the configured TTL. Each call produces a fresh token;
// tokens are never cached or reused.
func (m *Minter) Mint(userID string) (string, error) {
	if len(m.keyPEM) == 0 {
		return "", &SigningError{Err: ErrNoSigningKey}
	}

	key, err := parseRSAPrivateKey(m.keyPEM)
	if err != nil {
		return "", &SigningError{Err: err}
	}

	now := m.now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", &SigningError{Err: err}
	}

	return signed, nil
}

func parseRSAPrivateKey(keyPEM []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(keyPEM)
	if block == nil {
		return nil, errors.New("signing key is not valid PEM")
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse signing key: %w", err)
	}

	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("signing key is not an RSA private key")
	}

	return key, nil
}
