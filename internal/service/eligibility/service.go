package eligibility

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/flipdev/customer-cleanup/internal/config"
	"github.com/flipdev/customer-cleanup/internal/domain"
)

// minLastOrderYears is the legal-compliance floor for the old-last-order
// rule. Configured values below it are clamped, never honored.
const minLastOrderYears = 10

// lastLoginFormat is how last-login and last-order timestamps appear in
// reason texts.
const lastLoginFormat = "2006-01-02 15:04:05"

// ConfigSource supplies the current cleanup settings. The service snapshots
// it once per call so all rules in one evaluation see consistent values.
type ConfigSource interface {
	Cleanup() config.CleanupSnapshot
}

// Service implements the dormant-customer filter. It is read-only and safe
// for concurrent use.
type Service struct {
	customers CustomerRepository
	orders    OrderRepository
	cfg       ConfigSource
	cache     *ScanCache
	now       func() time.Time
}

// NewService creates an eligibility service backed by the given repositories.
func NewService(customers CustomerRepository, orders OrderRepository, cfg ConfigSource) *Service {
	return &Service{
		customers: customers,
		orders:    orders,
		cfg:       cfg,
		now:       time.Now,
	}
}

// SetCache attaches a Redis-backed scan cache. Optional; without it every
// call runs a full scan.
func (s *Service) SetCache(c *ScanCache) { s.cache = c }

// EligibleCustomers scans the customer and order stores and returns every
// customer matching at least one configured rule, deduplicated by customer
// id. When a customer matches several rules the first rule in evaluation
// order (no orders, inactivity, old last order) determines the reason.
//
// Returns an empty result without touching the stores when the module is
// disabled. Store errors propagate to the caller; this is a read-only
// operation with nothing to roll back.
func (s *Service) EligibleCustomers(ctx context.Context) ([]domain.EligibilityResult, error) {
	snap := s.cfg.Cleanup()
	if !snap.Enabled {
		return nil, nil
	}

	var matched []domain.EligibilityResult

	if snap.NoOrdersDays > 0 {
		results, err := s.customersWithoutOrders(ctx, snap)
		if err != nil {
			return nil, fmt.Errorf("no-orders rule: %w", err)
		}
		matched = append(matched, results...)
	}

	if snap.InactiveDays > 0 {
		results, err := s.inactiveCustomers(ctx, snap)
		if err != nil {
			return nil, fmt.Errorf("inactivity rule: %w", err)
		}
		matched = append(matched, results...)
	}

	if snap.LastOrderYears > 0 {
		results, err := s.customersWithOldOrders(ctx, snap)
		if err != nil {
			return nil, fmt.Errorf("old-last-order rule: %w", err)
		}
		matched = append(matched, results...)
	}

	return dedupe(matched), nil
}

// IsEligible checks a single customer against the current rules. Returns
// ErrNotEligible when the customer matches none of them.
func (s *Service) IsEligible(ctx context.Context, customerID int64) (*domain.EligibilityResult, error) {
	results, err := s.EligibleCustomers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range results {
		if results[i].CustomerID == customerID {
			return &results[i], nil
		}
	}
	return nil, ErrNotEligible
}

// customersWithoutOrders finds accounts registered before the threshold
// that never placed an order.
func (s *Service) customersWithoutOrders(ctx context.Context, snap config.CleanupSnapshot) ([]domain.EligibilityResult, error) {
	cutoff := s.now().AddDate(0, 0, -snap.NoOrdersDays)

	customers, err := s.customers.CreatedBefore(ctx, cutoff, snap.IncludeNeverLoggedIn)
	if err != nil {
		return nil, err
	}

	var results []domain.EligibilityResult
	for _, c := range customers {
		count, err := s.orders.CountByCustomer(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		if count == 0 {
			results = append(results, domain.EligibilityResult{
				CustomerID: c.ID,
				Reason:     fmt.Sprintf("No orders since registration %d days ago", snap.NoOrdersDays),
			})
		}
	}
	return results, nil
}

// inactiveCustomers finds accounts whose last login is older than the
// threshold. Only the login clock matters here: a recent order without a
// login does not reset it.
func (s *Service) inactiveCustomers(ctx context.Context, snap config.CleanupSnapshot) ([]domain.EligibilityResult, error) {
	cutoff := s.now().AddDate(0, 0, -snap.InactiveDays)

	customers, err := s.customers.LastLoginBefore(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	var results []domain.EligibilityResult
	for _, c := range customers {
		lastLogin := "never"
		if c.LastLoginAt != nil {
			lastLogin = c.LastLoginAt.Format(lastLoginFormat)
		}
		results = append(results, domain.EligibilityResult{
			CustomerID: c.ID,
			Reason:     fmt.Sprintf("No login for %d days (last login: %s)", snap.InactiveDays, lastLogin),
		})
	}
	return results, nil
}

// customersWithOldOrders finds customers whose newest order is older than
// the configured number of years, clamped to the compliance floor.
func (s *Service) customersWithOldOrders(ctx context.Context, snap config.CleanupSnapshot) ([]domain.EligibilityResult, error) {
	years := snap.LastOrderYears
	if years < minLastOrderYears {
		years = minLastOrderYears
	}
	cutoff := s.now().AddDate(0, 0, -years*365)

	lastOrders, err := s.orders.LastOrderTimes(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	// Stable output order: the aggregate comes back as a map.
	ids := make([]int64, 0, len(lastOrders))
	for id := range lastOrders {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	results := make([]domain.EligibilityResult, 0, len(ids))
	for _, id := range ids {
		results = append(results, domain.EligibilityResult{
			CustomerID: id,
			Reason: fmt.Sprintf("Last order more than %d years ago (last order: %s)",
				years, lastOrders[id].Format(lastLoginFormat)),
		})
	}
	return results, nil
}

// dedupe removes duplicate customer ids, keeping the first occurrence so
// the earliest matching rule's reason wins.
func dedupe(in []domain.EligibilityResult) []domain.EligibilityResult {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(in))
	out := make([]domain.EligibilityResult, 0, len(in))
	for _, r := range in {
		if _, ok := seen[r.CustomerID]; ok {
			continue
		}
		seen[r.CustomerID] = struct{}{}
		out = append(out, r)
	}
	return out
}
