package domain

import (
	"strings"
	"time"
)

// Customer represents an e-commerce customer account. The record lives in
// the platform's customer store; this service only ever reads it or asks
// the store to delete it.
type Customer struct {
	ID          int64      `json:"id" db:"id"`
	Email       string     `json:"email" db:"email"`
	FirstName   string     `json:"first_name" db:"first_name"`
	LastName    string     `json:"last_name" db:"last_name"`
	StoreID     int        `json:"store_id" db:"store_id"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at" db:"last_login_at"` // nil = never logged in
}

// FullName returns the customer's display name, empty when both name
// fields are blank.
func (c Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Address holds the personally identifying fields of an order address.
// Only the fields touched by anonymization are modeled here.
type Address struct {
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`
	Email     string `json:"email" db:"email"`
	Telephone string `json:"telephone" db:"telephone"`
}

// Order represents a placed order. CustomerID is nil for guest checkouts.
type Order struct {
	ID                int64      `json:"id" db:"id"`
	CustomerID        *int64     `json:"customer_id" db:"customer_id"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	CustomerEmail     string     `json:"customer_email" db:"customer_email"`
	CustomerFirstName string     `json:"customer_firstname" db:"customer_firstname"`
	CustomerLastName  string     `json:"customer_lastname" db:"customer_lastname"`
	Billing           *Address   `json:"billing,omitempty"`
	Shipping          *Address   `json:"shipping,omitempty"`
}

// Anonymization sentinel values. Historical orders keep their commercial
// data for accounting retention but lose all personal identifiers.
const (
	AnonymizedEmail     = "deleted@customer.com"
	AnonymizedFirstName = "Deleted"
	AnonymizedLastName  = "Customer"
	AnonymizedTelephone = "000000000"
)

// Anonymize overwrites all personally identifying fields on the order and
// its addresses with the fixed sentinel values.
func (o *Order) Anonymize() {
	o.CustomerEmail = AnonymizedEmail
	o.CustomerFirstName = AnonymizedFirstName
	o.CustomerLastName = AnonymizedLastName
	for _, addr := range []*Address{o.Billing, o.Shipping} {
		if addr == nil {
			continue
		}
		addr.FirstName = AnonymizedFirstName
		addr.LastName = AnonymizedLastName
		addr.Email = AnonymizedEmail
		addr.Telephone = AnonymizedTelephone
	}
}
