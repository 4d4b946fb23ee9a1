package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/esports-arena/models"
)

func TestInitialPaymentStatus(t *testing.T) {
	zero := decimal.Zero
	fifty := decimal.NewFromInt(50)
	negative := decimal.NewFromInt(-1)

	tests := []struct {
		name     string
		amount   *decimal.Decimal
		required bool
		want     models.PaymentStatus
	}{
		{"no amount", nil, false, models.PaymentCompleted},
		{"zero amount", &zero, false, models.PaymentCompleted},
		{"negative amount", &negative, false, models.PaymentCompleted},
		{"paid", &fifty, false, models.PaymentPending},
		{"unknown amount but paid", nil, true, models.PaymentPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, initialPaymentStatus(tt.amount, tt.required))
		})
	}
}

func TestRegisterForTournament_Validation(t *testing.T) {
	svc := NewRegistrationService(nil, nil, nil, discardLogger)

	_, err := svc.RegisterForTournament(context.Background(), "", RegisterInput{TournamentID: "t-1"})
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = svc.RegisterForTournament(context.Background(), "u-1", RegisterInput{
		TournamentID: "t-1",
		PlayerName:   "Neo",
		PlayerGameID: "  ",
	})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "player_game_id")
}

func TestUpdatePaymentStatus_RejectsPending(t *testing.T) {
	svc := NewRegistrationService(nil, nil, nil, discardLogger)

	_, err := svc.UpdatePaymentStatus(context.Background(), "r-1", models.PaymentPending)
	assert.ErrorIs(t, err, ErrInvalidPaymentStatus)
}
