package payment

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"foodiehub-api/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestSimulatedVerifier(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	v := &SimulatedVerifier{now: func() time.Time { return fixed }}

	got, err := v.Verify(context.Background(), 35, models.PaymentResult{Bank: "City Bank", AccountHolder: "Rahim"})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Contains(t, got.TransactionID, "TXN-")
	require.NotNil(t, got.VerifiedAt)
	assert.Equal(t, fixed, *got.VerifiedAt)

	kept, err := v.Verify(context.Background(), 10, models.PaymentResult{TransactionID: "TXN-1", Status: "completed", Bank: "b", AccountHolder: "h"})
	require.NoError(t, err)
	assert.Equal(t, "TXN-1", kept.TransactionID)

	for name, claimed := range map[string]models.PaymentResult{
		"no bank":   {AccountHolder: "h"},
		"no holder": {Bank: "b"},
		"failed":    {Bank: "b", AccountHolder: "h", Status: "FAILED"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), 10, claimed)
			assert.ErrorIs(t, err, models.ErrInvalidOrder)
		})
	}
}

func TestRemoteVerifierVerified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payments/verify", r.URL.Path)
		var req verifyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 35.0, req.Amount)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(verifyResponse{TransactionID: "BANK-77", Status: "COMPLETED"})
	}))
	defer srv.Close()

	v := NewRemoteVerifier(srv.URL+"/", time.Second, quietLogger())
	got, err := v.Verify(context.Background(), 35, models.PaymentResult{TransactionID: "TXN-1", Bank: "b", AccountHolder: "h"})
	require.NoError(t, err)
	assert.Equal(t, "BANK-77", got.TransactionID)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.NotNil(t, got.VerifiedAt)
}

func TestRemoteVerifierDeclined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		_ = json.NewEncoder(w).Encode(verifyResponse{Status: "DECLINED", Message: "insufficient funds"})
	}))
	defer srv.Close()

	v := NewRemoteVerifier(srv.URL, time.Second, quietLogger())
	for i := 0; i < 5; i++ {
		_, err := v.Verify(context.Background(), 35, models.PaymentResult{Bank: "b", AccountHolder: "h"})
		require.ErrorIs(t, err, models.ErrInvalidOrder)
		assert.Contains(t, err.Error(), "insufficient funds")
	}
	assert.Equal(t, "closed", v.State(), "declines must not trip the breaker")
}

func TestRemoteVerifierOpensCircuit(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	v := NewRemoteVerifier(srv.URL, time.Second, quietLogger())
	for i := 0; i < 3; i++ {
		_, err := v.Verify(context.Background(), 10, models.PaymentResult{Bank: "b", AccountHolder: "h"})
		require.ErrorIs(t, err, models.ErrPaymentUnavailable)
	}
	assert.Equal(t, "open", v.State())

	_, err := v.Verify(context.Background(), 10, models.PaymentResult{Bank: "b", AccountHolder: "h"})
	require.ErrorIs(t, err, models.ErrPaymentUnavailable)
	assert.Contains(t, err.Error(), "open")
	assert.Equal(t, int32(3), hits.Load())
}
