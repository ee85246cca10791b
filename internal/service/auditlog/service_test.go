package auditlog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/flipdev/customer-cleanup/internal/domain"
)

type mockRepo struct {
	entries    []domain.CleanupLogEntry
	insertErr  error
	listErr    error
	lastFilter Filter
	purged     bool
}

func (m *mockRepo) Insert(_ context.Context, entry *domain.CleanupLogEntry) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	entry.LogID = int64(len(m.entries) + 1)
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockRepo) List(_ context.Context, filter Filter) ([]domain.CleanupLogEntry, error) {
	m.lastFilter = filter
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.entries, nil
}

func (m *mockRepo) CountByAction(_ context.Context) (map[domain.ActionType]int64, error) {
	counts := make(map[domain.ActionType]int64)
	for _, e := range m.entries {
		counts[e.Action]++
	}
	return counts, nil
}

func (m *mockRepo) Purge(_ context.Context) (int64, error) {
	m.purged = true
	n := int64(len(m.entries))
	m.entries = nil
	return n, nil
}

func validEntry() domain.CleanupLogEntry {
	return domain.NewCleanupLogEntry(domain.Customer{
		ID:        7,
		Email:     "jane@example.com",
		FirstName: "Jane",
		LastName:  "Miller",
	}, domain.ActionDeleted, "dormant account", false, "admin")
}

func TestAppend(t *testing.T) {
	repo := &mockRepo{}
	store := NewStore(repo)

	entry := validEntry()
	id, err := store.Append(context.Background(), &entry)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if id != 1 {
		t.Errorf("log id = %d, want 1", id)
	}
	if len(repo.entries) != 1 {
		t.Fatalf("stored %d entries, want 1", len(repo.entries))
	}
}

func TestAppendRejectsInvalidEntries(t *testing.T) {
	store := NewStore(&mockRepo{})

	tests := []struct {
		name   string
		mutate func(*domain.CleanupLogEntry)
	}{
		{"unknown action", func(e *domain.CleanupLogEntry) { e.Action = "shredded" }},
		{"missing customer id", func(e *domain.CleanupLogEntry) { e.CustomerID = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := validEntry()
			tt.mutate(&entry)
			if _, err := store.Append(context.Background(), &entry); !errors.Is(err, ErrPersistence) {
				t.Errorf("err = %v, want ErrPersistence", err)
			}
		})
	}
}

func TestAppendWrapsInsertFailure(t *testing.T) {
	repo := &mockRepo{insertErr: errors.New("connection refused")}
	store := NewStore(repo)

	entry := validEntry()
	_, err := store.Append(context.Background(), &entry)
	if !errors.Is(err, ErrPersistence) {
		t.Errorf("err = %v, want ErrPersistence", err)
	}
}

func TestListLimitHandling(t *testing.T) {
	repo := &mockRepo{}
	store := NewStore(repo)

	tests := []struct {
		name      string
		requested int
		want      int
	}{
		{"zero defaults", 0, defaultListLimit},
		{"negative defaults", -5, defaultListLimit},
		{"capped", 10_000, maxListLimit},
		{"passed through", 25, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.List(context.Background(), Filter{Limit: tt.requested}); err != nil {
				t.Fatalf("List: %v", err)
			}
			if repo.lastFilter.Limit != tt.want {
				t.Errorf("limit = %d, want %d", repo.lastFilter.Limit, tt.want)
			}
		})
	}
}

func TestCountByAction(t *testing.T) {
	repo := &mockRepo{}
	store := NewStore(repo)

	for _, action := range []domain.ActionType{domain.ActionDeleted, domain.ActionDeleted, domain.ActionNotificationSent} {
		entry := validEntry()
		entry.Action = action
		if _, err := store.Append(context.Background(), &entry); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	counts, err := store.CountByAction(context.Background())
	if err != nil {
		t.Fatalf("CountByAction: %v", err)
	}
	if counts[domain.ActionDeleted] != 2 || counts[domain.ActionNotificationSent] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestPurge(t *testing.T) {
	repo := &mockRepo{}
	store := NewStore(repo)

	entry := validEntry()
	if _, err := store.Append(context.Background(), &entry); err != nil {
		t.Fatalf("Append: %v", err)
	}

	removed, err := store.Purge(context.Background())
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if removed != 1 || !repo.purged {
		t.Errorf("removed = %d, purged = %v", removed, repo.purged)
	}
}
