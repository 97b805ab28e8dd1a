package auth

import (
	"context"
	"errors"
	"testing"
)

func TestIsOwnerOrPrivileged(t *testing.T) {
	resolver := NewOwnershipResolver(&stubOwnerLookup{owners: map[string]string{"o-1": "alice"}})

	ok, err := resolver.IsOwnerOrPrivileged(context.Background(), alice, "o-1")
	if err != nil || !ok {
		t.Fatalf("owner: ok=%v err=%v, want true", ok, err)
	}

	ok, err = resolver.IsOwnerOrPrivileged(context.Background(), bob, "o-1")
	if err != nil || ok {
		t.Fatalf("non-owner: ok=%v err=%v, want false", ok, err)
	}

	// The elevated role bypasses the lookup entirely.
	ok, err = resolver.IsOwnerOrPrivileged(context.Background(), admin, "does-not-exist")
	if err != nil || !ok {
		t.Fatalf("admin: ok=%v err=%v, want true", ok, err)
	}
}

func TestIsOwnerOrPrivilegedMissingResource(t *testing.T) {
	resolver := NewOwnershipResolver(&stubOwnerLookup{owners: map[string]string{}})

	_, err := resolver.IsOwnerOrPrivileged(context.Background(), alice, "missing")
	if !errors.Is(err, ErrResourceNotFound) {
		t.Fatalf("err = %v, want ErrResourceNotFound", err)
	}
}

func TestIdentifierMatch(t *testing.T) {
	if !IdentifierMatch(alice, "alice") {
		t.Fatal("alice should match her own identifier")
	}
	if IdentifierMatch(bob, "alice") {
		t.Fatal("bob should not match alice's identifier")
	}
	if !IdentifierMatch(admin, "alice") {
		t.Fatal("admin should override the identifier comparison")
	}
}
