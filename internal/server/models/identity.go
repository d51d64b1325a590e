package models

import "time"

// Identity mirrors an on-chain identity contract owned by an account.
// At most one identity per account; the address is unique and immutable.
type Identity struct {
	ID          string
	Address     string
	Name        string
	Symbol      string
	AccountID   string
	CreatedAt   time.Time
	LastUpdated *time.Time
}
