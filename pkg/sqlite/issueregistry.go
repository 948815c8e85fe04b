package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/homeline-hub/homeline-go/pkg/issue"
)

// Compile-time interface satisfaction check.
var _ issue.Registry = (*IssueRegistry)(nil)

// IssueRegistry is the SQLite implementation of issue.Registry.
// Notices survive restarts, so a deprecation raised during a legacy
// import stays visible until the stale configuration is removed.
type IssueRegistry struct {
	db *DB
}

// NewIssueRegistry creates an IssueRegistry on the given database.
func NewIssueRegistry(db *DB) *IssueRegistry {
	return &IssueRegistry{db: db}
}

// Raise records a notice. Raising a notice that already exists replaces
// its contents while keeping the original RaisedAt.
func (r *IssueRegistry) Raise(ctx context.Context, n *issue.Issue) error {
	if err := n.Validate(); err != nil {
		return err
	}

	var placeholders any
	if len(n.Placeholders) > 0 {
		data, err := json.Marshal(n.Placeholders)
		if err != nil {
			return fmt.Errorf("marshal placeholders: %w", err)
		}
		placeholders = string(data)
	}

	raisedAt := n.RaisedAt
	if raisedAt.IsZero() {
		raisedAt = time.Now().UTC()
	}

	const query = `INSERT INTO issues (scope, key, severity, fixable, breaks_in, placeholders, raised_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(scope, key) DO UPDATE SET
    severity = excluded.severity,
    fixable = excluded.fixable,
    breaks_in = excluded.breaks_in,
    placeholders = excluded.placeholders`

	_, err := r.db.Writer.ExecContext(ctx, query,
		n.Scope, n.Key, n.Severity, n.Fixable, n.BreaksIn,
		placeholders, raisedAt.Format(timeFormat))
	if err != nil {
		return fmt.Errorf("raise issue %s/%s: %w", n.Scope, n.Key, err)
	}
	return nil
}

// Get returns the notice for the given scope and key, or
// issue.ErrNotFound.
func (r *IssueRegistry) Get(ctx context.Context, scope, key string) (*issue.Issue, error) {
	const query = `SELECT scope, key, severity, fixable, breaks_in, placeholders, raised_at FROM issues WHERE scope = ? AND key = ?`

	n, err := scanIssue(r.db.Reader.QueryRowContext(ctx, query, scope, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, issue.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get issue %s/%s: %w", scope, key, err)
	}
	return n, nil
}

// List returns all active notices ordered by scope then key.
func (r *IssueRegistry) List(ctx context.Context) ([]*issue.Issue, error) {
	const query = `SELECT scope, key, severity, fixable, breaks_in, placeholders, raised_at FROM issues ORDER BY scope, key`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	defer rows.Close()

	var issues []*issue.Issue
	for rows.Next() {
		n, err := scanIssue(rows)
		if err != nil {
			return nil, fmt.Errorf("scan issue: %w", err)
		}
		issues = append(issues, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate issues: %w", err)
	}

	return issues, nil
}

// Dismiss removes a notice.
func (r *IssueRegistry) Dismiss(ctx context.Context, scope, key string) error {
	const query = `DELETE FROM issues WHERE scope = ? AND key = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, scope, key)
	if err != nil {
		return fmt.Errorf("dismiss issue %s/%s: %w", scope, key, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return issue.ErrNotFound
	}
	return nil
}

func scanIssue(row scanner) (*issue.Issue, error) {
	var n issue.Issue
	var severity int
	var placeholders sql.NullString
	var raisedAt string

	if err := row.Scan(&n.Scope, &n.Key, &severity, &n.Fixable, &n.BreaksIn, &placeholders, &raisedAt); err != nil {
		return nil, err
	}
	n.Severity = issue.Severity(severity)

	if placeholders.Valid && placeholders.String != "" {
		if err := json.Unmarshal([]byte(placeholders.String), &n.Placeholders); err != nil {
			return nil, fmt.Errorf("unmarshal placeholders: %w", err)
		}
	}

	var err error
	if n.RaisedAt, err = parseTime(raisedAt); err != nil {
		return nil, fmt.Errorf("parse raised_at: %w", err)
	}

	return &n, nil
}
