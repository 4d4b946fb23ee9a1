package services

import (
	"errors"
	"sort"
	"strings"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed      = errors.New("validation failed")
	ErrNothingToUpdate       = errors.New("no fields to update")
	ErrInvalidPaymentStatus  = errors.New("payment status must be 'completed' or 'failed'")
	ErrInvalidTxStatus       = errors.New("transaction status must be 'approved' or 'rejected'")
	ErrTransactionNotPending = errors.New("wallet transaction has already been reviewed")
	ErrTournamentInUse       = errors.New("tournament cannot be deleted while it is referenced")
	ErrTimerNotConfigured    = errors.New("tournament timer duration is not set")

	// Ошибки конфликтов
	ErrRegistrationConflict = errors.New("user is already registered for this tournament")
	ErrPlayerConflict       = errors.New("a player profile already exists for this user")

	// Ошибки аутентификации и авторизации
	ErrNotAuthenticated   = errors.New("authentication required")
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	// Ошибки, специфичные для сущностей
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrPlayerNotFound       = errors.New("player not found")
	ErrProfileNotFound      = errors.New("player profile not found")
	ErrMatchNotFound        = errors.New("match not found")
	ErrSponsorNotFound      = errors.New("sponsor not found")
	ErrLiveMatchNotFound    = errors.New("live match not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrTransactionNotFound  = errors.New("wallet transaction not found")
)

// ValidationError несёт ошибки по полям; errors.Is(err, ErrValidationFailed) == true.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

type validator struct {
	fields map[string]string
}

func (v *validator) check(ok bool, field, message string) {
	if ok {
		return
	}
	if v.fields == nil {
		v.fields = make(map[string]string)
	}
	if _, exists := v.fields[field]; !exists {
		v.fields[field] = message
	}
}

func (v *validator) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}

func requiredString(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}
