package domain

import "time"

// Product is a catalog entry. Reads are public; mutations are restricted to
// administrators at the gate.
type Product struct {
	ID          string
	Name        string
	Description string
	Category    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
