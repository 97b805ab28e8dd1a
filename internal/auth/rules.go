package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/commercekit/shop-platform/internal/core/domain"
)

// Access enumerates the rule variants the gate evaluates.
type Access int

const (
	// AccessPublic permits the request without requiring a principal.
	AccessPublic Access = iota
	// AccessAuthenticated permits any verified principal.
	AccessAuthenticated
	// AccessRoleIn permits principals whose role set intersects the rule's roles.
	AccessRoleIn
	// AccessOwnerOrRole permits the resource owner, falling back to the
	// rule's roles as an override.
	AccessOwnerOrRole
)

// OwnerSource selects how an owner-or-role rule resolves ownership.
type OwnerSource int

const (
	// OwnerFromStore resolves the declared owner of the resource named by
	// the rule's Param path segment via the ownership resolver.
	OwnerFromStore OwnerSource = iota
	// OwnerFromPath compares the Param path segment directly against the
	// principal's identifier, with no store access.
	OwnerFromPath
)

// Rule binds a (method, path shape) pair to an access requirement. Path
// patterns use :name segments for parameters and a trailing *name segment to
// match any remainder.
type Rule struct {
	Method string
	Path   string
	Access Access
	Roles  []domain.Role
	Owner  OwnerSource
	Param  string
}

// DenyReason classifies a denial for status mapping at the transport layer.
type DenyReason int

const (
	DenyNone DenyReason = iota
	// DenyUnauthenticated: the route requires a principal and none was presented.
	DenyUnauthenticated
	// DenyForbidden: the principal lacks the required role or ownership.
	DenyForbidden
	// DenyNotFound: ownership resolution found no resource record.
	DenyNotFound
)

// Decision is the ephemeral per-request outcome of gate evaluation.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

// Permit is the affirmative decision.
var Permit = Decision{Allowed: true}

// Deny builds a negative decision with the given reason.
func Deny(reason DenyReason) Decision {
	return Decision{Reason: reason}
}

// Gate evaluates requests against a static rule table. It is a pure function
// over request-local data except for the single ownership lookup an
// owner-or-role rule may require.
type Gate struct {
	rules    []Rule
	resolver *OwnershipResolver
}

// NewGate builds a gate over the rule table. The resolver may be nil for
// tables with no store-scoped owner-or-role rules.
func NewGate(rules []Rule, resolver *OwnershipResolver) *Gate {
	copied := make([]Rule, len(rules))
	copy(copied, rules)
	return &Gate{rules: copied, resolver: resolver}
}

// Lookup returns the first rule matching the method and path along with the
// captured path parameters. Unmatched requests fall back to an authenticated
// rule, so nothing is reachable without a principal unless listed public.
func (g *Gate) Lookup(method, path string) (Rule, map[string]string, bool) {
	for _, rule := range g.rules {
		if rule.Method != "" && rule.Method != method {
			continue
		}
		if params, ok := matchPath(rule.Path, path); ok {
			return rule, params, true
		}
	}
	return Rule{Access: AccessAuthenticated}, nil, false
}

// Authorize combines method, path, and the verified principal (nil when no
// token was presented) into a permit/deny decision. Evaluation order: public
// rules permit unconditionally; every other rule first requires a principal;
// then the rule itself is applied. Store failures during ownership
// resolution are returned as errors, never conflated with denial.
func (g *Gate) Authorize(ctx context.Context, method, path string, principal *domain.Principal) (Decision, error) {
	rule, params, _ := g.Lookup(method, path)

	if rule.Access == AccessPublic {
		return Permit, nil
	}
	if principal == nil {
		return Deny(DenyUnauthenticated), nil
	}

	switch rule.Access {
	case AccessAuthenticated:
		return Permit, nil

	case AccessRoleIn:
		if principal.HasAnyRole(rule.Roles...) {
			return Permit, nil
		}
		return Deny(DenyForbidden), nil

	case AccessOwnerOrRole:
		if principal.HasAnyRole(rule.Roles...) {
			return Permit, nil
		}

		subject := params[rule.Param]
		if rule.Owner == OwnerFromPath {
			if IdentifierMatch(*principal, subject) {
				return Permit, nil
			}
			return Deny(DenyForbidden), nil
		}

		ok, err := g.resolver.IsOwnerOrPrivileged(ctx, *principal, subject)
		if err != nil {
			if errors.Is(err, ErrResourceNotFound) {
				return Deny(DenyNotFound), nil
			}
			return Decision{}, err
		}
		if ok {
			return Permit, nil
		}
		return Deny(DenyForbidden), nil

	default:
		return Deny(DenyForbidden), nil
	}
}

// matchPath compares a pattern against a concrete request path, capturing
// :name parameters. A trailing *name segment consumes the rest of the path.
func matchPath(pattern, path string) (map[string]string, bool) {
	patSegs := splitPath(pattern)
	pathSegs := splitPath(path)

	var params map[string]string
	for i, seg := range patSegs {
		if strings.HasPrefix(seg, "*") {
			if params == nil {
				params = make(map[string]string, 1)
			}
			params[seg[1:]] = strings.Join(pathSegs[i:], "/")
			return params, true
		}
		if i >= len(pathSegs) {
			return nil, false
		}
		if strings.HasPrefix(seg, ":") {
			if pathSegs[i] == "" {
				return nil, false
			}
			if params == nil {
				params = make(map[string]string, 2)
			}
			params[seg[1:]] = pathSegs[i]
			continue
		}
		if seg != pathSegs[i] {
			return nil, false
		}
	}

	if len(pathSegs) != len(patSegs) {
		return nil, false
	}
	return params, true
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
