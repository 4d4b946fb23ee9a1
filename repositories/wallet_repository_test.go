package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/esports-arena/models"
)

var walletRowColumns = []string{
	"id", "user_id", "transaction_type", "amount", "status", "payment_method",
	"transaction_reference", "admin_notes", "approved_by", "approved_at", "created_at", "updated_at",
}

func newWalletRepo(t *testing.T) (sqlmock.Sqlmock, WalletRepository) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return mock, NewPostgresWalletRepository(db)
}

func TestWalletUpdateTransactionStatus(t *testing.T) {
	mock, repo := newWalletRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $4 AND status = 'pending'")).
		WithArgs("approved", "admin-1", "checked", "tx-1").
		WillReturnRows(sqlmock.NewRows(walletRowColumns).
			AddRow("tx-1", "u-1", "deposit", "100.00", "approved", nil, nil, "checked", "admin-1", now, now, now))

	notes := "checked"
	tx, err := repo.UpdateTransactionStatus(context.Background(), "tx-1", models.TransactionApproved, "admin-1", &notes)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionApproved, tx.Status)
	assert.True(t, tx.Amount.Equal(decimal.NewFromInt(100)))
	require.NotNil(t, tx.ApprovedBy)
	assert.Equal(t, "admin-1", *tx.ApprovedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletUpdateTransactionStatus_AlreadyReviewed(t *testing.T) {
	mock, repo := newWalletRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $4 AND status = 'pending'")).
		WithArgs("rejected", "admin-1", nil, "tx-1").
		WillReturnRows(sqlmock.NewRows(walletRowColumns))
	mock.ExpectQuery(regexp.QuoteMeta("FROM wallet_transactions WHERE id = $1")).
		WithArgs("tx-1").
		WillReturnRows(sqlmock.NewRows(walletRowColumns).
			AddRow("tx-1", "u-1", "deposit", "100.00", "approved", nil, nil, nil, "admin-2", now, now, now))

	_, err := repo.UpdateTransactionStatus(context.Background(), "tx-1", models.TransactionRejected, "admin-1", nil)
	assert.ErrorIs(t, err, ErrTransactionNotPending)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletUpdateTransactionStatus_Missing(t *testing.T) {
	mock, repo := newWalletRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $4 AND status = 'pending'")).
		WillReturnRows(sqlmock.NewRows(walletRowColumns))
	mock.ExpectQuery(regexp.QuoteMeta("FROM wallet_transactions WHERE id = $1")).
		WillReturnRows(sqlmock.NewRows(walletRowColumns))

	_, err := repo.UpdateTransactionStatus(context.Background(), "tx-404", models.TransactionApproved, "admin-1", nil)
	assert.ErrorIs(t, err, ErrTransactionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletGetBalance_DefaultsToZero(t *testing.T) {
	mock, repo := newWalletRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM wallet_balances WHERE user_id = $1")).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "balance", "updated_at"}))

	b, err := repo.GetBalance(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "u-1", b.UserID)
	assert.True(t, b.Balance.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
