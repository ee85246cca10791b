package eligibility

import "errors"

// Sentinel errors for the eligibility service layer.
var (
	// ErrNotEligible is returned by IsEligible when the customer matches
	// no configured rule.
	ErrNotEligible = errors.New("customer is not eligible for cleanup")

	// ErrCustomerNotFound is returned by repositories when a looked-up
	// customer does not exist.
	ErrCustomerNotFound = errors.New("customer not found")
)
