package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/commercekit/shop-platform/internal/core/domain"
)

const (
	// AuthorizationHeader carries the bearer credential on protected requests.
	AuthorizationHeader = "Authorization"
	// BearerPrefix precedes the encoded token in the Authorization header.
	BearerPrefix = "Bearer "

	defaultTokenTTL = time.Hour
)

var (
	// ErrMissingToken indicates no bearer credential was presented. It is
	// raised before any signature work is attempted.
	ErrMissingToken = errors.New("auth: no bearer token presented")
	// ErrMalformedToken indicates the token could not be decoded.
	ErrMalformedToken = errors.New("auth: malformed token")
	// ErrInvalidSignature indicates the recomputed signature does not match.
	ErrInvalidSignature = errors.New("auth: invalid token signature")
	// ErrTokenExpired indicates the token's validity window has passed.
	ErrTokenExpired = errors.New("auth: token expired")
)

// Claims is the signed payload of an issued token. Roles are copied from the
// credential store at issuance and never re-read on verification.
type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Codec issues and verifies self-contained bearer tokens signed with a
// symmetric secret shared by every service. Verification is stateless: it
// never consults the credential store, which is what lets each service
// verify independently without a shared session backend.
type Codec struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// CodecOption configures optional Codec behavior.
type CodecOption func(*Codec)

// WithIssuer stamps and requires an issuer claim.
func WithIssuer(issuer string) CodecOption {
	return func(c *Codec) {
		c.issuer = strings.TrimSpace(issuer)
	}
}

// WithClock overrides the time source, used by tests to control expiry.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCodec constructs a Codec for the shared signing secret and token TTL.
func NewCodec(secret string, ttl time.Duration, opts ...CodecOption) (*Codec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("auth: signing secret is required")
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}

	codec := &Codec{
		secret: []byte(secret),
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(codec)
		}
	}

	return codec, nil
}

// TTL returns the configured token lifetime.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a token asserting the identifier and role set for the
// configured TTL starting now.
func (c *Codec) Issue(identifier string, roles []domain.Role) (string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return "", fmt.Errorf("auth: subject identifier is required")
	}
	if len(roles) == 0 {
		return "", fmt.Errorf("auth: at least one role is required")
	}

	now := c.now()
	claims := Claims{
		Roles: domain.RoleNames(roles),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identifier,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}

	return signed, nil
}

// Verify recomputes the signature over the claim payload, checks expiry, and
// returns the embedded principal. It is side-effect free.
func (c *Codec) Verify(raw string) (domain.Principal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.Principal{}, ErrMissingToken
	}

	claims := &Claims{}
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	}
	if c.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(c.issuer))
	}

	parsed, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	}, parserOpts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return domain.Principal{}, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return domain.Principal{}, ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenMalformed):
			return domain.Principal{}, ErrMalformedToken
		default:
			return domain.Principal{}, ErrMalformedToken
		}
	}

	if parsed == nil || !parsed.Valid {
		return domain.Principal{}, ErrInvalidSignature
	}
	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return domain.Principal{}, ErrMalformedToken
	}

	return domain.Principal{
		Identifier: subject,
		Roles:      domain.RolesFromNames(claims.Roles),
	}, nil
}

// BearerToken extracts the encoded token from an Authorization header value.
// An absent header or one without the bearer prefix yields ErrMissingToken,
// short-circuiting before any signature computation.
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrMissingToken
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrMissingToken
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", ErrMissingToken
	}

	return token, nil
}
