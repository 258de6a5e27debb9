package billing

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvoiceNotFound is returned when an invoice does not exist
var ErrInvoiceNotFound = errors.New("invoice not found")

// InvoiceStore persists generated invoices
type InvoiceStore interface {
	CreateInvoice(ctx context.Context, invoice *Invoice) error
	GetInvoiceByNumber(ctx context.Context, number string) (*Invoice, error)
	ListOrgInvoices(ctx context.Context, orgID int64, limit int) ([]*Invoice, error)
}

// PostgresInvoiceStore implements InvoiceStore using PostgreSQL
type PostgresInvoiceStore struct {
	db *sql.DB
}

// NewPostgresInvoiceStore creates a new PostgresInvoiceStore
func NewPostgresInvoiceStore(db *sql.DB) *PostgresInvoiceStore {
	return &PostgresInvoiceStore{db: db}
}

// CreateInvoice inserts an invoice and fills in its generated fields
func (s *PostgresInvoiceStore) CreateInvoice(ctx context.Context, invoice *Invoice) error {
	metadataJSON, err := json.Marshal(invoice.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal invoice metadata: %w", err)
	}

	query := `
		INSERT INTO invoices (org_id, number, amount_cents, currency, period_start, period_end, status, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	err = s.db.QueryRowContext(ctx, query,
		invoice.OrgID, invoice.Number, invoice.AmountCents, invoice.Currency,
		invoice.PeriodStart, invoice.PeriodEnd, invoice.Status, metadataJSON,
	).Scan(&invoice.ID, &invoice.CreatedAt, &invoice.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	return nil
}

// GetInvoiceByNumber retrieves an invoice by its number
func (s *PostgresInvoiceStore) GetInvoiceByNumber(ctx context.Context, number string) (*Invoice, error) {
	query := `
		SELECT id, org_id, number, amount_cents, currency, period_start, period_end, status, metadata, created_at, updated_at
		FROM invoices
		WHERE number = $1
	`
	invoice, err := scanInvoice(s.db.QueryRowContext(ctx, query, number))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("invoice %s: %w", number, ErrInvoiceNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return invoice, nil
}

// ListOrgInvoices lists an organization's invoices, newest first
func (s *PostgresInvoiceStore) ListOrgInvoices(ctx context.Context, orgID int64, limit int) ([]*Invoice, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, org_id, number, amount_cents, currency, period_start, period_end, status, metadata, created_at, updated_at
		FROM invoices
		WHERE org_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, orgID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*Invoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, invoice)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invoices: %w", err)
	}

	return invoices, nil
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanInvoice(row scanner) (*Invoice, error) {
	invoice := &Invoice{}
	var metadataJSON []byte
	err := row.Scan(
		&invoice.ID, &invoice.OrgID, &invoice.Number, &invoice.AmountCents,
		&invoice.Currency, &invoice.PeriodStart, &invoice.PeriodEnd,
		&invoice.Status, &metadataJSON, &invoice.CreatedAt, &invoice.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &invoice.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal invoice metadata: %w", err)
		}
	}
	return invoice, nil
}
