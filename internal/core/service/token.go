package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/stackit/qa-api/internal/core/domain"
)

// DefaultTokenTTL applies when no expiry is configured.
const DefaultTokenTTL = 24 * time.Hour

var errUnsupportedAlg = errors.New("unsupported signing algorithm")

// TokenManager signs and verifies HS256 access tokens. The key and default TTL
// are fixed at construction; rotating the key means building a new manager,
// which silently invalidates every token signed with the old one.
type TokenManager struct {
	key    []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

func NewTokenManager(key []byte, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	k := make([]byte, len(key))
	copy(k, key)
	m := &TokenManager{key: k, ttl: ttl, now: time.Now}
	m.parser = jwt.NewParser(
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(func() time.Time { return m.now() }),
	)
	return m
}

func (m *TokenManager) Issue(subject string) (string, error) {
	return m.IssueWithTTL(subject, m.ttl)
}

func (m *TokenManager) IssueWithTTL(subject string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = m.ttl
	}
	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, then the expiry, and returns the subject.
// Every failure is a *domain.TokenRejectedError. Segments are decoded
// strictly, so a token has exactly one accepted encoding.
func (m *TokenManager) Verify(token string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := m.parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errUnsupportedAlg
		}
		return m.key, nil
	})
	if err != nil {
		return "", &domain.TokenRejectedError{Reason: m.rejectReason(token, err), Err: err}
	}
	if claims.Subject == "" {
		return "", &domain.TokenRejectedError{Reason: domain.TokenMalformed, Err: errors.New("token has no subject")}
	}
	return claims.Subject, nil
}

func (m *TokenManager) rejectReason(token string, err error) domain.TokenRejectReason {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return domain.TokenTampered
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.TokenExpired
	case errors.Is(err, jwt.ErrTokenMalformed) && m.signatureMismatch(token):
		// A damaged header or payload fails decoding before the signature
		// is checked.
		return domain.TokenTampered
	default:
		return domain.TokenMalformed
	}
}

// signatureMismatch reports whether a three-segment token carries a signature
// that does not match its signing input under the current key.
func (m *TokenManager) signatureMismatch(token string) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return false
	}
	sig, err := m.parser.DecodeSegment(parts[2])
	if err != nil {
		return true
	}
	return jwt.SigningMethodHS256.Verify(parts[0]+"."+parts[1], sig, m.key) != nil
}
