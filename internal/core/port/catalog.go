package port

import "context"

// ProductCatalog lets the order service confirm that referenced products
// exist before accepting an order. Implementations call the products
// service over HTTP, forwarding the caller's bearer credential.
type ProductCatalog interface {
	ProductExists(ctx context.Context, productID, bearerToken string) (bool, error)
}
