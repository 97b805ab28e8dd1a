package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/commercekit/shop-platform/internal/core/domain"
)

const testSecret = "unit-test-signing-secret"

func newTestCodec(t *testing.T, now time.Time, ttl time.Duration) *Codec {
	t.Helper()

	codec, err := NewCodec(testSecret, ttl, WithIssuer("shop-platform"), WithClock(func() time.Time {
		return now
	}))
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return codec
}

func TestCodecIssueVerifyRoundTrip(t *testing.T) {
	issuedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	codec := newTestCodec(t, issuedAt, time.Hour)

	token, err := codec.Issue("alice", []domain.Role{domain.RoleUser, domain.RoleAdmin})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// Anywhere inside [issuedAt, issuedAt+TTL) the token verifies to the
	// same identifier and role set.
	for _, offset := range []time.Duration{0, time.Minute, time.Hour - time.Second} {
		verifier := newTestCodec(t, issuedAt.Add(offset), time.Hour)
		principal, err := verifier.Verify(token)
		if err != nil {
			t.Fatalf("Verify at +%s: %v", offset, err)
		}
		if principal.Identifier != "alice" {
			t.Fatalf("identifier = %q, want alice", principal.Identifier)
		}
		if !principal.HasRole(domain.RoleUser) || !principal.HasRole(domain.RoleAdmin) {
			t.Fatalf("roles = %v, want USER and ADMIN", principal.Roles)
		}
	}
}

func TestCodecVerifyExpired(t *testing.T) {
	issuedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	codec := newTestCodec(t, issuedAt, time.Hour)

	token, err := codec.Issue("alice", []domain.Role{domain.RoleUser})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	verifier := newTestCodec(t, issuedAt.Add(time.Hour), time.Hour)
	if _, err := verifier.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("Verify at expiry = %v, want ErrTokenExpired", err)
	}
}

func TestCodecVerifyTamperedSignature(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	codec := newTestCodec(t, now, time.Hour)

	token, err := codec.Issue("alice", []domain.Role{domain.RoleUser})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("token has %d segments, want 3", len(parts))
	}

	// Flip one byte of the signature segment.
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	if _, err := codec.Verify(tampered); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("Verify tampered = %v, want ErrInvalidSignature", err)
	}
}

func TestCodecVerifyWrongSecret(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	codec := newTestCodec(t, now, time.Hour)

	token, err := codec.Issue("alice", []domain.Role{domain.RoleUser})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	other, err := NewCodec("a-different-secret", time.Hour, WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	if _, err := other.Verify(token); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("Verify with wrong secret = %v, want ErrInvalidSignature", err)
	}
}

func TestCodecVerifyMalformed(t *testing.T) {
	codec := newTestCodec(t, time.Now().UTC(), time.Hour)

	for _, raw := range []string{"not-a-token", "a.b", "%%%.%%%.%%%"} {
		if _, err := codec.Verify(raw); !errors.Is(err, ErrMalformedToken) {
			t.Fatalf("Verify(%q) = %v, want ErrMalformedToken", raw, err)
		}
	}

	if _, err := codec.Verify(""); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("Verify(empty) = %v, want ErrMissingToken", err)
	}
}

func TestCodecVerifyDropsUnknownRoles(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	codec := newTestCodec(t, now, time.Hour)

	token, err := codec.Issue("alice", []domain.Role{domain.RoleUser, domain.Role("SUPERVISOR")})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	principal, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if len(principal.Roles) != 1 || principal.Roles[0] != domain.RoleUser {
		t.Fatalf("roles = %v, want [USER]", principal.Roles)
	}
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "valid", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "case insensitive scheme", header: "bearer abc", want: "abc"},
		{name: "empty", header: "", wantErr: true},
		{name: "no prefix", header: "abc.def.ghi", wantErr: true},
		{name: "wrong scheme", header: "Basic abc", wantErr: true},
		{name: "prefix only", header: "Bearer ", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := BearerToken(tc.header)
			if tc.wantErr {
				if !errors.Is(err, ErrMissingToken) {
					t.Fatalf("BearerToken(%q) = %v, want ErrMissingToken", tc.header, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("BearerToken(%q): %v", tc.header, err)
			}
			if got != tc.want {
				t.Fatalf("BearerToken(%q) = %q, want %q", tc.header, got, tc.want)
			}
		})
	}
}
