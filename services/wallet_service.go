package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/esports-arena/changefeed"
	"github.com/Dosada05/esports-arena/models"
	"github.com/Dosada05/esports-arena/repositories"
)

// WalletService - админская модерация заявок на пополнение и вывод.
type WalletService interface {
	ListTransactions(ctx context.Context, status *models.TransactionStatus) ([]models.WalletTransaction, error)
	ReviewTransaction(ctx context.Context, id string, status models.TransactionStatus, adminID string, notes *string) (*models.WalletTransaction, error)
	GetBalance(ctx context.Context, userID string) (*models.WalletBalance, error)
}

type walletService struct {
	repo   repositories.WalletRepository
	pub    changefeed.Publisher
	logger *slog.Logger
}

func NewWalletService(repo repositories.WalletRepository, pub changefeed.Publisher, logger *slog.Logger) WalletService {
	return &walletService{repo: repo, pub: pub, logger: logger}
}

func (s *walletService) ListTransactions(ctx context.Context, status *models.TransactionStatus) ([]models.WalletTransaction, error) {
	if status != nil {
		switch *status {
		case models.TransactionPending, models.TransactionApproved, models.TransactionRejected:
		default:
			return nil, &ValidationError{Fields: map[string]string{"status": "unknown transaction status"}}
		}
	}
	list, err := s.repo.ListTransactions(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallet transactions: %w", err)
	}
	return list, nil
}

// ReviewTransaction одобряет или отклоняет заявку в статусе pending.
func (s *walletService) ReviewTransaction(ctx context.Context, id string, status models.TransactionStatus, adminID string, notes *string) (*models.WalletTransaction, error) {
	if adminID == "" {
		return nil, ErrNotAuthenticated
	}
	if status != models.TransactionApproved && status != models.TransactionRejected {
		return nil, ErrInvalidTxStatus
	}
	tx, err := s.repo.UpdateTransactionStatus(ctx, id, status, adminID, notes)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrTransactionNotFound):
			return nil, ErrTransactionNotFound
		case errors.Is(err, repositories.ErrTransactionNotPending):
			return nil, ErrTransactionNotPending
		}
		return nil, fmt.Errorf("failed to review wallet transaction %s: %w", id, err)
	}
	s.logger.Info("wallet transaction reviewed",
		slog.String("transaction_id", tx.ID),
		slog.String("status", string(tx.Status)),
		slog.String("admin_id", adminID))
	publishChange(s.pub, s.logger, changefeed.TableWallet, changefeed.Update, tx, nil)
	return tx, nil
}

func (s *walletService) GetBalance(ctx context.Context, userID string) (*models.WalletBalance, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	b, err := s.repo.GetBalance(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet balance for user %s: %w", userID, err)
	}
	return b, nil
}
