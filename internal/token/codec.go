// Package token issues and verifies the signed credentials used by the four
// panels. Every (principal kind, token class) pair signs with its own secret,
// so an access token minted for one panel never verifies on another.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Kind identifies which panel a credential belongs to.
type Kind string

// Panel kinds.
const (
	KindAdmin      Kind = "admin"
	KindClient     Kind = "client"
	KindGuard      Kind = "guard"
	KindSuperAdmin Kind = "superadmin"
)

// Class distinguishes short-lived access tokens from long-lived refresh tokens.
type Class string

// Token classes.
const (
	ClassAccess  Class = "access"
	ClassRefresh Class = "refresh"
)

// ErrInvalid covers every ordinary verification failure: bad signature,
// expiry, malformed input, or a kind with no configured secret. Callers map
// it to an authentication failure and must not see library errors raw.
var ErrInvalid = errors.New("token: invalid")

// Claims is the signed payload. CurrentApartment and CurrentFlat are only
// set on client tokens and are hints, not authority; the principal resolver
// re-derives the residence context from storage.
type Claims struct {
	ID               string `json:"id"`
	CurrentApartment string `json:"currentApartment,omitempty"`
	CurrentFlat      string `json:"currentFlat,omitempty"`
	jwt.RegisteredClaims
}

// KindSecrets holds the signing material and lifetimes for one panel.
type KindSecrets struct {
	AccessSecret  string
	RefreshSecret string
	ResetSecret   string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Codec signs and verifies panel credentials with HS256.
type Codec struct {
	secrets map[Kind]KindSecrets
	now     func() time.Time
}

// NewCodec constructs a codec over the configured per-kind secrets.
func NewCodec(secrets map[Kind]KindSecrets) *Codec {
	return &Codec{secrets: secrets, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock overrides the codec clock. Tests only.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	c.now = now
	return c
}

func (c *Codec) secretFor(kind Kind, class Class) ([]byte, time.Duration, error) {
	ks, ok := c.secrets[kind]
	if !ok {
		return nil, 0, fmt.Errorf("%w: unknown kind %q", ErrInvalid, kind)
	}
	switch class {
	case ClassAccess:
		return []byte(ks.AccessSecret), ks.AccessTTL, nil
	case ClassRefresh:
		return []byte(ks.RefreshSecret), ks.RefreshTTL, nil
	default:
		return nil, 0, fmt.Errorf("%w: unknown class %q", ErrInvalid, class)
	}
}

// Issue signs claims for the given kind and class, stamping the configured
// expiry for that pair.
func (c *Codec) Issue(claims Claims, kind Kind, class Class) (string, error) {
	secret, ttl, err := c.secretFor(kind, class)
	if err != nil {
		return "", err
	}
	now := c.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry for the given kind and class. Any
// ordinary failure comes back as ErrInvalid.
func (c *Codec) Verify(raw string, kind Kind, class Class) (Claims, error) {
	secret, _, err := c.secretFor(kind, class)
	if err != nil {
		return Claims{}, err
	}
	return c.parse(raw, secret)
}

// IssueReset signs a credential-recovery token. The signing secret is the
// kind's reset secret concatenated with a caller-supplied salt (a fragment
// of the current password hash), so changing the credential invalidates the
// token without any stored denylist.
func (c *Codec) IssueReset(claims Claims, kind Kind, salt string, ttl time.Duration) (string, error) {
	ks, ok := c.secrets[kind]
	if !ok {
		return "", fmt.Errorf("%w: unknown kind %q", ErrInvalid, kind)
	}
	now := c.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(ks.ResetSecret + salt))
	if err != nil {
		return "", fmt.Errorf("token: sign reset: %w", err)
	}
	return signed, nil
}

// VerifyReset verifies a reset token against the kind's reset secret plus the
// caller-supplied salt.
func (c *Codec) VerifyReset(raw string, kind Kind, salt string) (Claims, error) {
	ks, ok := c.secrets[kind]
	if !ok {
		return Claims{}, fmt.Errorf("%w: unknown kind %q", ErrInvalid, kind)
	}
	return c.parse(raw, []byte(ks.ResetSecret+salt))
}

func (c *Codec) parse(raw string, secret []byte) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(t *jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %s", ErrInvalid, err)
	}
	if claims.ID == "" {
		return Claims{}, fmt.Errorf("%w: missing subject id", ErrInvalid)
	}
	return claims, nil
}
