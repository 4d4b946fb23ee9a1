package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/esports-arena/models"
	"github.com/shopspring/decimal"
)

var (
	ErrTransactionNotFound   = errors.New("wallet transaction not found")
	ErrTransactionNotPending = errors.New("wallet transaction is not pending")
)

type WalletRepository interface {
	ListTransactions(ctx context.Context, status *models.TransactionStatus) ([]models.WalletTransaction, error)
	GetTransaction(ctx context.Context, id string) (*models.WalletTransaction, error)
	UpdateTransactionStatus(ctx context.Context, id string, status models.TransactionStatus, adminID string, notes *string) (*models.WalletTransaction, error)
	GetBalance(ctx context.Context, userID string) (*models.WalletBalance, error)
}

const walletTransactionColumns = `id, user_id, transaction_type, amount, status, payment_method,
	transaction_reference, admin_notes, approved_by, approved_at, created_at, updated_at`

type postgresWalletRepository struct {
	db *sql.DB
}

func NewPostgresWalletRepository(db *sql.DB) WalletRepository {
	return &postgresWalletRepository{db: db}
}

func scanWalletTransaction(s rowScanner) (*models.WalletTransaction, error) {
	tx := &models.WalletTransaction{}
	if err := s.Scan(&tx.ID, &tx.UserID, &tx.TransactionType, &tx.Amount, &tx.Status, &tx.PaymentMethod,
		&tx.TransactionReference, &tx.AdminNotes, &tx.ApprovedBy, &tx.ApprovedAt, &tx.CreatedAt, &tx.UpdatedAt); err != nil {
		return nil, err
	}
	return tx, nil
}

func (r *postgresWalletRepository) ListTransactions(ctx context.Context, status *models.TransactionStatus) ([]models.WalletTransaction, error) {
	query := `SELECT ` + walletTransactionColumns + ` FROM wallet_transactions`
	args := []interface{}{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallet transactions: %w", err)
	}
	defer rows.Close()

	txs := make([]models.WalletTransaction, 0)
	for rows.Next() {
		tx, err := scanWalletTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wallet transaction row: %w", err)
		}
		txs = append(txs, *tx)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wallet transaction rows: %w", err)
	}
	return txs, nil
}

func (r *postgresWalletRepository) GetTransaction(ctx context.Context, id string) (*models.WalletTransaction, error) {
	tx, err := scanWalletTransaction(r.db.QueryRowContext(ctx,
		`SELECT `+walletTransactionColumns+` FROM wallet_transactions WHERE id = $1`, id))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get wallet transaction %s: %w", id, err)
	}
	return tx, nil
}

// UpdateTransactionStatus переводит только pending-транзакции; баланс здесь не меняется.
func (r *postgresWalletRepository) UpdateTransactionStatus(ctx context.Context, id string, status models.TransactionStatus, adminID string, notes *string) (*models.WalletTransaction, error) {
	adminNotes, _ := normalizeValue(notes)
	query := `
		UPDATE wallet_transactions SET
			status = $1,
			approved_by = $2,
			approved_at = now(),
			admin_notes = COALESCE($3, admin_notes),
			updated_at = now()
		WHERE id = $4 AND status = 'pending'
		RETURNING ` + walletTransactionColumns

	tx, err := scanWalletTransaction(r.db.QueryRowContext(ctx, query, status, adminID, adminNotes, id))
	if err == nil {
		return tx, nil
	}
	if !isNotFound(err) {
		return nil, fmt.Errorf("failed to update wallet transaction %s: %w", id, err)
	}
	// Строка не обновилась: либо её нет, либо она уже не pending.
	if _, getErr := r.GetTransaction(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, ErrTransactionNotPending
}

func (r *postgresWalletRepository) GetBalance(ctx context.Context, userID string) (*models.WalletBalance, error) {
	b := &models.WalletBalance{UserID: userID, Balance: decimal.Zero}
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, balance, updated_at FROM wallet_balances WHERE user_id = $1`, userID).
		Scan(&b.UserID, &b.Balance, &b.UpdatedAt)
	if err != nil {
		if isNotFound(err) {
			return b, nil
		}
		return nil, fmt.Errorf("failed to get wallet balance for %s: %w", userID, err)
	}
	return b, nil
}
