package models

import "fmt"

// Address is a postal address owned by exactly one customer
type Address struct {
	ID         int64  `json:"id" db:"id"`
	Street     string `json:"street" db:"street"`
	City       string `json:"city" db:"city"`
	PostalCode string `json:"postal_code" db:"postal_code"`
}

// Flatten renders the address as "street, postal city"
func (a Address) Flatten() string {
	return fmt.Sprintf("%s, %s %s", a.Street, a.PostalCode, a.City)
}

// Customer is a person for whom bookings are made
type Customer struct {
	ID        int64     `json:"id" db:"id"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	Email     string    `json:"email" db:"email"`
	AddressID NullInt64 `json:"address_id" db:"address_id"`
}

// FullName returns "First Last"
func (c Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

// CustomerDetail is a customer with its address loaded
type CustomerDetail struct {
	Customer
	Address *Address `json:"address"`
}

// AddressInput carries address fields in customer requests
type AddressInput struct {
	Street     string `json:"street" binding:"required"`
	City       string `json:"city" binding:"required"`
	PostalCode string `json:"postal_code" binding:"required"`
}

// RegisterCustomerRequest represents the request to register a customer
type RegisterCustomerRequest struct {
	FirstName string       `json:"first_name" binding:"required"`
	LastName  string       `json:"last_name" binding:"required"`
	Email     string       `json:"email" binding:"required,email"`
	Address   AddressInput `json:"address" binding:"required"`
}

// UpdateCustomerRequest is a partial update; nil fields are left unchanged
type UpdateCustomerRequest struct {
	FirstName  *string `json:"first_name,omitempty"`
	LastName   *string `json:"last_name,omitempty"`
	Email      *string `json:"email,omitempty" binding:"omitempty,email"`
	Street     *string `json:"street,omitempty"`
	City       *string `json:"city,omitempty"`
	PostalCode *string `json:"postal_code,omitempty"`
}

// HasAddressChanges reports whether any address field is set
func (r *UpdateCustomerRequest) HasAddressChanges() bool {
	return r.Street != nil || r.City != nil || r.PostalCode != nil
}
