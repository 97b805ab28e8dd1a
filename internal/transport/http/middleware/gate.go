package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/commercekit/shop-platform/internal/auth"
	"github.com/commercekit/shop-platform/internal/core/domain"
)

// PrincipalKey is the gin context key the verified principal is stored under.
const PrincipalKey = "principal"

// Gate verifies bearer tokens and evaluates the service's authorization
// rules for every request. Verification is pure computation against the
// shared secret; no identity service call, no session lookup, no caching.
//
// Every token failure, regardless of cause, aborts with the same 401 so the
// response does not leak whether a token was absent, expired, or forged.
func Gate(codec *auth.Codec, gate *auth.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		rule, _, _ := gate.Lookup(c.Request.Method, c.Request.URL.Path)

		// Public routes skip verification entirely. A present token is
		// ignored rather than validated.
		if rule.Access == auth.AccessPublic {
			c.Next()
			return
		}

		principal, ok := verifyRequest(c, codec)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "invalid or missing credentials"))
			return
		}

		decision, err := gate.Authorize(c.Request.Context(), c.Request.Method, c.Request.URL.Path, &principal)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				newErrorResponse(c, "authorization check failed"))
			return
		}

		if !decision.Allowed {
			switch decision.Reason {
			case auth.DenyNotFound:
				c.AbortWithStatusJSON(http.StatusNotFound,
					newErrorResponse(c, "resource not found"))
			case auth.DenyUnauthenticated:
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "invalid or missing credentials"))
			default:
				c.AbortWithStatusJSON(http.StatusForbidden,
					newErrorResponse(c, "insufficient permissions"))
			}
			return
		}

		c.Set(PrincipalKey, principal)
		if reqCtx := GetRequestContext(c); reqCtx != nil {
			reqCtx.Principal = principal.Identifier
		}

		c.Next()
	}
}

func verifyRequest(c *gin.Context, codec *auth.Codec) (domain.Principal, bool) {
	raw, err := auth.BearerToken(c.GetHeader(auth.AuthorizationHeader))
	if err != nil {
		return domain.Principal{}, false
	}

	principal, err := codec.Verify(raw)
	if err != nil {
		return domain.Principal{}, false
	}

	return principal, true
}

// GetPrincipal retrieves the verified principal stored by the gate.
func GetPrincipal(c *gin.Context) (domain.Principal, bool) {
	value, exists := c.Get(PrincipalKey)
	if !exists {
		return domain.Principal{}, false
	}

	principal, ok := value.(domain.Principal)
	return principal, ok
}

// BearerFromRequest returns the raw bearer token for forwarding to
// downstream services, or an empty string when absent.
func BearerFromRequest(c *gin.Context) string {
	raw, err := auth.BearerToken(c.GetHeader(auth.AuthorizationHeader))
	if err != nil {
		return ""
	}
	return raw
}
