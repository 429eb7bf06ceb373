package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viralizamos/payment-service/internal/domain"
)

func TestCreatePaymentRequest(t *testing.T) {
	repo := newFakeRequestRepo()
	uc := NewDefaultPaymentRequestUsecase(repo, 30*time.Minute, nil)

	created, err := uc.CreatePaymentRequest(&CreatePaymentRequestInput{
		Amount:          29.9,
		CustomerName:    "Ana",
		CustomerEmail:   "ana@example.com",
		ProfileUsername: "ana.insta",
		ServiceID:       "svc-followers",
		ServiceName:     "1000 Seguidores",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Len(t, created.Token, 21)
	assert.Equal(t, domain.RequestStatusPending, created.Status)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), created.ExpiresAt, 5*time.Second)

	stored, err := uc.GetByToken(created.Token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, stored.ID)
}

func TestCreatePaymentRequestUniqueTokens(t *testing.T) {
	repo := newFakeRequestRepo()
	uc := NewDefaultPaymentRequestUsecase(repo, 30*time.Minute, nil)

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		created, err := uc.CreatePaymentRequest(&CreatePaymentRequestInput{
			Amount:        10,
			CustomerName:  "Ana",
			CustomerEmail: "ana@example.com",
		})
		require.NoError(t, err)
		require.False(t, seen[created.Token], "token collision")
		seen[created.Token] = true
	}
}

func TestCreatePaymentRequestBlockedEmail(t *testing.T) {
	uc := NewDefaultPaymentRequestUsecase(newFakeRequestRepo(), 30*time.Minute, nil)

	_, err := uc.CreatePaymentRequest(&CreatePaymentRequestInput{
		Amount:        29.9,
		CustomerName:  "X",
		CustomerEmail: "anyone@tempmail.com",
	})
	assert.ErrorIs(t, err, domain.ErrBlockedEmail)
}

func TestCreatePaymentRequestInvalidAmount(t *testing.T) {
	uc := NewDefaultPaymentRequestUsecase(newFakeRequestRepo(), 30*time.Minute, nil)

	_, err := uc.CreatePaymentRequest(&CreatePaymentRequestInput{
		Amount:        0,
		CustomerName:  "X",
		CustomerEmail: "x@example.com",
	})
	assert.Error(t, err)
}

func TestGetByTokenEmpty(t *testing.T) {
	uc := NewDefaultPaymentRequestUsecase(newFakeRequestRepo(), 30*time.Minute, nil)

	_, err := uc.GetByToken("")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestExpireOverdue(t *testing.T) {
	repo := newFakeRequestRepo()
	repo.expired = 3
	uc := NewDefaultPaymentRequestUsecase(repo, 30*time.Minute, nil)

	expired, err := uc.ExpireOverdue()
	require.NoError(t, err)
	assert.EqualValues(t, 3, expired)
}
