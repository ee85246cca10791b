package auditlog

import (
	"context"
	"time"

	"github.com/flipdev/customer-cleanup/internal/domain"
)

// Filter narrows a log listing. Zero values mean "no constraint".
type Filter struct {
	CustomerID int64
	Email      string
	Action     domain.ActionType
	Since      time.Time
	Until      time.Time
	Limit      int
	Offset     int
}

// Repository is the storage contract for cleanup log entries.
type Repository interface {
	// Insert stores the entry and fills in its LogID and CreatedAt.
	Insert(ctx context.Context, entry *domain.CleanupLogEntry) error
	List(ctx context.Context, filter Filter) ([]domain.CleanupLogEntry, error)
	CountByAction(ctx context.Context) (map[domain.ActionType]int64, error)
	// Purge deletes all entries and reports how many were removed.
	Purge(ctx context.Context) (int64, error)
}
