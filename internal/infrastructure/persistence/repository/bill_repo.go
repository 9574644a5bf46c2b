package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/infrastructure/persistence/sqlite"
)

const billColumns = `id, status, date, amount, vat, pct, type, name, commentary,
	comment_admin, file_url, file_name, email, created_at, updated_at`

// BillRepository implements port.BillRepository
type BillRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewBillRepository creates a new bill repository
func NewBillRepository(db *sql.DB, logger *zap.Logger) port.BillRepository {
	return &BillRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new bill
func (r *BillRepository) Create(ctx context.Context, bill *entity.Bill) error {
	query := `
		INSERT INTO bills (` + billColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		bill.ID,
		bill.Status,
		bill.Date,
		bill.Amount,
		bill.VAT,
		bill.Pct,
		bill.Type,
		bill.Name,
		bill.Commentary,
		bill.CommentAdmin,
		bill.FileURL,
		bill.FileName,
		bill.Email,
		bill.CreatedAt,
		bill.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create bill", zap.String("id", bill.ID), zap.Error(err))
		return fmt.Errorf("failed to create bill: %w", err)
	}
	return nil
}

// GetByID returns a bill, or nil when the id is unknown
func (r *BillRepository) GetByID(ctx context.Context, id string) (*entity.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE id = ?`

	bill, err := scanBill(sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get bill", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	return bill, nil
}

// List returns every bill
func (r *BillRepository) List(ctx context.Context) ([]*entity.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills ORDER BY created_at`
	return r.query(ctx, query)
}

// ListByEmail returns the bills of one employee
func (r *BillRepository) ListByEmail(ctx context.Context, email string) ([]*entity.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE email = ? ORDER BY created_at`
	return r.query(ctx, query, email)
}

// Update saves the reviewable fields of a bill
func (r *BillRepository) Update(ctx context.Context, bill *entity.Bill) error {
	query := `
		UPDATE bills
		SET status = ?, comment_admin = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		bill.Status,
		bill.CommentAdmin,
		bill.UpdatedAt,
		bill.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update bill", zap.String("id", bill.ID), zap.Error(err))
		return fmt.Errorf("failed to update bill: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("bill %s: %w", bill.ID, port.ErrNotFound)
	}
	return nil
}

func (r *BillRepository) query(ctx context.Context, query string, args ...interface{}) ([]*entity.Bill, error) {
	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list bills", zap.Error(err))
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	bills := []*entity.Bill{}
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, bill)
	}
	return bills, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanBill(s scanner) (*entity.Bill, error) {
	var bill entity.Bill
	err := s.Scan(
		&bill.ID,
		&bill.Status,
		&bill.Date,
		&bill.Amount,
		&bill.VAT,
		&bill.Pct,
		&bill.Type,
		&bill.Name,
		&bill.Commentary,
		&bill.CommentAdmin,
		&bill.FileURL,
		&bill.FileName,
		&bill.Email,
		&bill.CreatedAt,
		&bill.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &bill, nil
}
