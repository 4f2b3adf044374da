// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered user account.
//
// Authentication is delegated to an external identity provider, so the
// primary external identifier is the provider's subject string. We still
// generate our own internal string ID (xid) for consistency with the other
// models and to avoid tying our primary keys to a third party's numbering.
//
// The record is created by the provider's "user.created" webhook and is never
// deleted. The only mutation after creation is flipping the pro-tier fields
// when the billing collaborator reports a purchase.
type User struct {
	ID                string     `json:"id"                 db:"id"`
	Subject           string     `json:"subject"            db:"subject"` // identity provider's user id
	Email             string     `json:"email"              db:"email"`
	Name              string     `json:"name"               db:"name"`
	IsPro             bool       `json:"isPro"              db:"is_pro"`
	ProSince          *time.Time `json:"proSince,omitempty" db:"pro_since"`
	BillingCustomerID string     `json:"-"                  db:"billing_customer_id"`
	BillingOrderID    string     `json:"-"                  db:"billing_order_id"`
	CreatedAt         time.Time  `json:"createdAt"          db:"created_at"`
	UpdatedAt         time.Time  `json:"updatedAt"          db:"updated_at"`
}
