package domain

import "time"

// UserRegisteredEvent is published when a new account is created.
type UserRegisteredEvent struct {
	EventID      string
	UserID       string
	Username     string
	Role         Role
	RegisteredAt time.Time
}

// OrderCreatedEvent is published after an order is persisted.
type OrderCreatedEvent struct {
	EventID    string
	OrderID    string
	Username   string
	ProductIDs []string
	CreatedAt  time.Time
}

// OrderUpdatedEvent is published after an order's line items change.
type OrderUpdatedEvent struct {
	EventID    string
	OrderID    string
	Username   string
	ProductIDs []string
	UpdatedAt  time.Time
}

// OrderDeletedEvent is published after an order is removed.
type OrderDeletedEvent struct {
	EventID   string
	OrderID   string
	DeletedAt time.Time
}

// ProductChangedEvent is published after a catalog mutation. Change is one of
// "created", "updated", or "deleted".
type ProductChangedEvent struct {
	EventID   string
	ProductID string
	Name      string
	Change    string
	ChangedAt time.Time
}
