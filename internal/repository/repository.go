package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Dan9191/cashflow-service/internal/ledger"
)

// Repository reads transaction tables from PostgreSQL. It never writes.
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Header is the column order returned by FetchTransactions
var Header = []string{
	ledger.ColDate,
	ledger.ColDescription,
	ledger.ColAmount,
	ledger.ColType,
	ledger.ColStatus,
}

// FetchTransactions returns the raw rows for an account as strings so they go
// through the same cleaning rules as an uploaded CSV. NULL columns come back
// as empty strings and are dropped by the loader.
func (r *Repository) FetchTransactions(ctx context.Context, accountID string) ([]string, [][]string, error) {
	query := `
		SELECT tx_date, description, amount::text, tx_type, status
		FROM cashflow.transactions
		WHERE account_id = $1
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		var (
			date                             sql.NullTime
			description, amount, typ, status sql.NullString
		)
		if err := rows.Scan(&date, &description, &amount, &typ, &status); err != nil {
			return nil, nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		out = append(out, []string{
			formatDate(date),
			description.String,
			amount.String,
			typ.String,
			status.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read transactions: %w", err)
	}
	return Header, out, nil
}

// Ping checks that the database is reachable
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

func formatDate(d sql.NullTime) string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format(time.DateOnly)
}
