package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/flipdev/customer-cleanup/internal/domain"
	"github.com/flipdev/customer-cleanup/internal/service/auditlog"
)

// CleanupLogRepo implements auditlog.Repository against PostgreSQL.
type CleanupLogRepo struct{ db *sql.DB }

// NewCleanupLogRepo creates a Postgres-backed cleanup log repository.
func NewCleanupLogRepo(db *sql.DB) *CleanupLogRepo { return &CleanupLogRepo{db: db} }

func (r *CleanupLogRepo) Insert(ctx context.Context, entry *domain.CleanupLogEntry) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO customer_cleanup_log
			(customer_id, customer_email, customer_name, action_type, reason, dry_run, admin_user)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING log_id, created_at
	`, entry.CustomerID, entry.CustomerEmail, nullString(entry.CustomerName),
		string(entry.Action), nullString(entry.Reason), entry.DryRun,
		nullString(entry.AdminUser),
	).Scan(&entry.LogID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert cleanup log entry: %w", err)
	}
	return nil
}

func (r *CleanupLogRepo) List(ctx context.Context, f auditlog.Filter) ([]domain.CleanupLogEntry, error) {
	query := `SELECT log_id, customer_id, customer_email, customer_name,
		action_type, reason, dry_run, admin_user, created_at
		FROM customer_cleanup_log`

	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.CustomerID > 0 {
		conds = append(conds, "customer_id = "+arg(f.CustomerID))
	}
	if f.Email != "" {
		conds = append(conds, "customer_email = "+arg(f.Email))
	}
	if f.Action != "" {
		conds = append(conds, "action_type = "+arg(string(f.Action)))
	}
	if !f.Since.IsZero() {
		conds = append(conds, "created_at >= "+arg(f.Since))
	}
	if !f.Until.IsZero() {
		conds = append(conds, "created_at < "+arg(f.Until))
	}

	for i, c := range conds {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY created_at DESC, log_id DESC"
	query += " LIMIT " + arg(f.Limit) + " OFFSET " + arg(f.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cleanup log: %w", err)
	}
	defer rows.Close()

	var out []domain.CleanupLogEntry
	for rows.Next() {
		var e domain.CleanupLogEntry
		var name, reason, admin sql.NullString
		var action string
		if err := rows.Scan(&e.LogID, &e.CustomerID, &e.CustomerEmail, &name,
			&action, &reason, &e.DryRun, &admin, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cleanup log entry: %w", err)
		}
		e.Action = domain.ActionType(action)
		e.CustomerName = name.String
		e.Reason = reason.String
		e.AdminUser = admin.String
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *CleanupLogRepo) CountByAction(ctx context.Context) (map[domain.ActionType]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT action_type, COUNT(*) FROM customer_cleanup_log GROUP BY action_type`)
	if err != nil {
		return nil, fmt.Errorf("count cleanup log by action: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.ActionType]int64)
	for rows.Next() {
		var action string
		var n int64
		if err := rows.Scan(&action, &n); err != nil {
			return nil, fmt.Errorf("scan action count: %w", err)
		}
		out[domain.ActionType(action)] = n
	}
	return out, rows.Err()
}

func (r *CleanupLogRepo) Purge(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM customer_cleanup_log`)
	if err != nil {
		return 0, fmt.Errorf("purge cleanup log: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
