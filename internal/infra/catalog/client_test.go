package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/commercekit/shop-platform/internal/auth"
)

func TestProductExistsMapsStatuses(t *testing.T) {
	var gotBearer string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBearer = r.Header.Get(auth.AuthorizationHeader)
		switch r.URL.Path {
		case "/products/known":
			w.WriteHeader(http.StatusOK)
		case "/products/missing":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, zaptest.NewLogger(t))

	exists, err := client.ProductExists(context.Background(), "known", "token-123")
	if err != nil {
		t.Fatalf("known product: %v", err)
	}
	if !exists {
		t.Fatal("expected known product to exist")
	}
	if gotBearer != auth.BearerPrefix+"token-123" {
		t.Fatalf("expected bearer forwarded, got %q", gotBearer)
	}

	exists, err = client.ProductExists(context.Background(), "missing", "token-123")
	if err != nil {
		t.Fatalf("missing product: %v", err)
	}
	if exists {
		t.Fatal("expected missing product to not exist")
	}

	if _, err := client.ProductExists(context.Background(), "broken", "token-123"); err == nil {
		t.Fatal("expected error for unexpected upstream status")
	}
}

func TestProductExistsOmitsEmptyBearer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(auth.AuthorizationHeader) != "" {
			t.Errorf("expected no authorization header, got %q", r.Header.Get(auth.AuthorizationHeader))
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, zaptest.NewLogger(t))
	if _, err := client.ProductExists(context.Background(), "known", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
