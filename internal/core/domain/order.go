package domain

import "time"

// Order is a principal-scoped resource. Username records the declared owner,
// set exactly once at creation from the authenticated principal of the
// creating request and never reassigned afterwards.
type Order struct {
	ID         string
	Username   string
	ProductIDs []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
