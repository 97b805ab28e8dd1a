package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/commercekit/shop-platform/internal/auth"
	"github.com/commercekit/shop-platform/internal/core/domain"
)

type stubOwnerLookup struct {
	owners map[string]string
	err    error
}

func (s *stubOwnerLookup) OwnerOf(_ context.Context, resourceID string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	owner, ok := s.owners[resourceID]
	if !ok {
		return "", auth.ErrResourceNotFound
	}
	return owner, nil
}

func newGateRouter(t *testing.T, lookup auth.OwnerLookup) (*gin.Engine, *auth.Codec) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	codec, err := auth.NewCodec("0123456789abcdef0123456789abcdef", time.Hour)
	if err != nil {
		t.Fatalf("auth.NewCodec: %v", err)
	}

	rules := []auth.Rule{
		{Method: http.MethodGet, Path: "/products", Access: auth.AccessPublic},
		{Method: http.MethodGet, Path: "/products/*rest", Access: auth.AccessPublic},
		{Method: http.MethodPost, Path: "/products", Access: auth.AccessRoleIn, Roles: []domain.Role{domain.RoleAdmin}},
		{Method: http.MethodGet, Path: "/orders/user/:username", Access: auth.AccessOwnerOrRole, Roles: []domain.Role{domain.RoleAdmin}, Owner: auth.OwnerFromPath, Param: "username"},
		{Method: http.MethodGet, Path: "/orders/:id", Access: auth.AccessOwnerOrRole, Roles: []domain.Role{domain.RoleAdmin}, Owner: auth.OwnerFromStore, Param: "id"},
		{Method: http.MethodGet, Path: "/orders", Access: auth.AccessAuthenticated},
	}

	gate := auth.NewGate(rules, auth.NewOwnershipResolver(lookup))

	router := gin.New()
	router.Use(Gate(codec, gate))

	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	router.GET("/products", ok)
	router.GET("/products/:id", ok)
	router.POST("/products", ok)
	router.GET("/orders", ok)
	router.GET("/orders/:id", ok)
	router.GET("/orders/user/:username", ok)

	return router, codec
}

func issueToken(t *testing.T, codec *auth.Codec, identifier string, roles ...domain.Role) string {
	t.Helper()
	token, err := codec.Issue(identifier, roles)
	if err != nil {
		t.Fatalf("codec.Issue: %v", err)
	}
	return token
}

func doRequest(router *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set(auth.AuthorizationHeader, auth.BearerPrefix+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestGatePublicRouteNeedsNoToken(t *testing.T) {
	router, _ := newGateRouter(t, &stubOwnerLookup{})

	if rr := doRequest(router, http.MethodGet, "/products", ""); rr.Code != http.StatusOK {
		t.Fatalf("public route expected 200, got %d", rr.Code)
	}
}

func TestGatePublicRouteIgnoresGarbageToken(t *testing.T) {
	router, _ := newGateRouter(t, &stubOwnerLookup{})

	req := httptest.NewRequest(http.MethodGet, "/products/prod-1", nil)
	req.Header.Set(auth.AuthorizationHeader, "Bearer not.a.token")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("public route must not validate tokens, got %d", rr.Code)
	}
}

func TestGateMissingTokenUnauthorized(t *testing.T) {
	router, _ := newGateRouter(t, &stubOwnerLookup{})

	if rr := doRequest(router, http.MethodGet, "/orders", ""); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestGateTokenFailuresAreUniform(t *testing.T) {
	router, _ := newGateRouter(t, &stubOwnerLookup{})

	expiredCodec, err := auth.NewCodec("0123456789abcdef0123456789abcdef", time.Hour,
		auth.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }))
	if err != nil {
		t.Fatalf("auth.NewCodec: %v", err)
	}
	expired, err := expiredCodec.Issue("alice", []domain.Role{domain.RoleUser})
	if err != nil {
		t.Fatalf("issue expired token: %v", err)
	}

	wrongSecretCodec, err := auth.NewCodec("ffffffffffffffffffffffffffffffff", time.Hour)
	if err != nil {
		t.Fatalf("auth.NewCodec: %v", err)
	}
	forged, err := wrongSecretCodec.Issue("alice", []domain.Role{domain.RoleUser})
	if err != nil {
		t.Fatalf("issue forged token: %v", err)
	}

	for name, token := range map[string]string{
		"malformed":    "not.a.token",
		"expired":      expired,
		"wrong secret": forged,
	} {
		if rr := doRequest(router, http.MethodGet, "/orders", token); rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s token expected 401, got %d", name, rr.Code)
		}
	}
}

func TestGateRoleEnforcement(t *testing.T) {
	router, codec := newGateRouter(t, &stubOwnerLookup{})

	user := issueToken(t, codec, "alice", domain.RoleUser)
	admin := issueToken(t, codec, "root", domain.RoleAdmin)

	if rr := doRequest(router, http.MethodPost, "/products", user); rr.Code != http.StatusForbidden {
		t.Fatalf("USER mutating catalog expected 403, got %d", rr.Code)
	}
	if rr := doRequest(router, http.MethodPost, "/products", admin); rr.Code != http.StatusOK {
		t.Fatalf("ADMIN mutating catalog expected 200, got %d", rr.Code)
	}
}

func TestGateOwnershipFromStore(t *testing.T) {
	router, codec := newGateRouter(t, &stubOwnerLookup{owners: map[string]string{"order-1": "alice"}})

	owner := issueToken(t, codec, "alice", domain.RoleUser)
	other := issueToken(t, codec, "bob", domain.RoleUser)
	admin := issueToken(t, codec, "root", domain.RoleAdmin)

	if rr := doRequest(router, http.MethodGet, "/orders/order-1", owner); rr.Code != http.StatusOK {
		t.Fatalf("owner expected 200, got %d", rr.Code)
	}
	if rr := doRequest(router, http.MethodGet, "/orders/order-1", other); rr.Code != http.StatusForbidden {
		t.Fatalf("non-owner expected 403, got %d", rr.Code)
	}
	if rr := doRequest(router, http.MethodGet, "/orders/order-1", admin); rr.Code != http.StatusOK {
		t.Fatalf("admin expected 200, got %d", rr.Code)
	}
}

func TestGateMissingResourceIsNotFound(t *testing.T) {
	router, codec := newGateRouter(t, &stubOwnerLookup{owners: map[string]string{}})

	token := issueToken(t, codec, "alice", domain.RoleUser)
	if rr := doRequest(router, http.MethodGet, "/orders/ghost", token); rr.Code != http.StatusNotFound {
		t.Fatalf("missing resource expected 404, got %d", rr.Code)
	}
}

func TestGateStoreFailureIsServerError(t *testing.T) {
	router, codec := newGateRouter(t, &stubOwnerLookup{err: errors.New("connection refused")})

	token := issueToken(t, codec, "alice", domain.RoleUser)
	if rr := doRequest(router, http.MethodGet, "/orders/order-1", token); rr.Code != http.StatusInternalServerError {
		t.Fatalf("store failure expected 500, got %d", rr.Code)
	}
}

func TestGatePathScopedOwnership(t *testing.T) {
	router, codec := newGateRouter(t, &stubOwnerLookup{})

	alice := issueToken(t, codec, "alice", domain.RoleUser)
	bob := issueToken(t, codec, "bob", domain.RoleUser)
	admin := issueToken(t, codec, "root", domain.RoleAdmin)

	if rr := doRequest(router, http.MethodGet, "/orders/user/alice", alice); rr.Code != http.StatusOK {
		t.Fatalf("matching username expected 200, got %d", rr.Code)
	}
	if rr := doRequest(router, http.MethodGet, "/orders/user/alice", bob); rr.Code != http.StatusForbidden {
		t.Fatalf("mismatched username expected 403, got %d", rr.Code)
	}
	if rr := doRequest(router, http.MethodGet, "/orders/user/alice", admin); rr.Code != http.StatusOK {
		t.Fatalf("admin expected 200, got %d", rr.Code)
	}
}

func TestGateStoresPrincipalForHandlers(t *testing.T) {
	gin.SetMode(gin.TestMode)

	codec, err := auth.NewCodec("0123456789abcdef0123456789abcdef", time.Hour)
	if err != nil {
		t.Fatalf("auth.NewCodec: %v", err)
	}

	gate := auth.NewGate([]auth.Rule{
		{Method: http.MethodGet, Path: "/whoami", Access: auth.AccessAuthenticated},
	}, nil)

	router := gin.New()
	router.Use(Gate(codec, gate))
	router.GET("/whoami", func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, principal.Identifier)
	})

	token := issueToken(t, codec, "alice", domain.RoleUser)
	rr := doRequest(router, http.MethodGet, "/whoami", token)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr.Body.String() != "alice" {
		t.Fatalf("expected principal alice, got %q", rr.Body.String())
	}
}
