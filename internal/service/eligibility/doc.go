// Package eligibility implements the dormant-customer filter.
//
// This is the single source of truth for whether a customer account
// qualifies for cleanup. Three independently configurable rules are
// evaluated in a fixed order (no orders since registration, login
// inactivity, old last order); a customer matching several rules is
// reported once, with the first matching rule's reason.
//
// The service layer contains pure business logic and depends on the
// repository interfaces defined in repository.go. It never imports
// net/http or database/sql directly.
package eligibility
