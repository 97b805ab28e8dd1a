package catalog

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/commercekit/shop-platform/internal/auth"
	"github.com/commercekit/shop-platform/internal/core/port"
)

// Client confirms product existence against the products service over HTTP.
// The caller's bearer credential is forwarded unchanged so the downstream
// verifier makes its own decision.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient constructs a products service client.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// ProductExists performs GET /products/{id} and maps 200 to true and 404 to
// false. Any other status is a transport error, not an answer.
func (c *Client) ProductExists(ctx context.Context, productID, bearerToken string) (bool, error) {
	url := fmt.Sprintf("%s/products/%s", c.baseURL, productID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("build product lookup request: %w", err)
	}

	if bearerToken != "" {
		req.Header.Set(auth.AuthorizationHeader, auth.BearerPrefix+bearerToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("call products service: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		c.logger.Warn("unexpected products service status",
			zap.String("product_id", productID),
			zap.Int("status", resp.StatusCode),
		)
		return false, fmt.Errorf("products service returned status %d", resp.StatusCode)
	}
}

var _ port.ProductCatalog = (*Client)(nil)
