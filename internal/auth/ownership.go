package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/commercekit/shop-platform/internal/core/domain"
)

// ErrResourceNotFound indicates ownership resolution found no record for the
// requested resource identifier.
var ErrResourceNotFound = errors.New("auth: resource not found")

// OwnerLookup fetches the declared owner of a resource from the resource
// store. Implementations return ErrResourceNotFound when no record exists.
type OwnerLookup interface {
	OwnerOf(ctx context.Context, resourceID string) (string, error)
}

// OwnershipResolver decides whether a principal may act on a specific
// resource instance. It performs one synchronous store lookup per call and
// caches nothing: every request redoes the lookup, trading latency for
// freshness.
type OwnershipResolver struct {
	owners OwnerLookup
}

// NewOwnershipResolver wires a resolver over the given owner lookup.
func NewOwnershipResolver(owners OwnerLookup) *OwnershipResolver {
	return &OwnershipResolver{owners: owners}
}

// IsOwnerOrPrivileged reports whether the principal owns the resource or
// holds the elevated role. A missing resource fails with ErrResourceNotFound
// rather than being silently permitted; store failures propagate unchanged.
func (r *OwnershipResolver) IsOwnerOrPrivileged(ctx context.Context, principal domain.Principal, resourceID string) (bool, error) {
	if principal.HasRole(domain.RoleAdmin) {
		return true, nil
	}
	if r == nil || r.owners == nil {
		return false, fmt.Errorf("auth: owner lookup not configured")
	}

	owner, err := r.owners.OwnerOf(ctx, resourceID)
	if err != nil {
		if errors.Is(err, ErrResourceNotFound) {
			return false, ErrResourceNotFound
		}
		return false, fmt.Errorf("auth: resolve owner of %s: %w", resourceID, err)
	}

	return owner == principal.Identifier, nil
}

// IdentifierMatch decides ownership for routes scoped by an identifier
// embedded in the path rather than a stored resource: plain string equality
// with the elevated role as an override, no store access.
func IdentifierMatch(principal domain.Principal, identifier string) bool {
	if principal.HasRole(domain.RoleAdmin) {
		return true
	}
	return strings.TrimSpace(identifier) == principal.Identifier
}
