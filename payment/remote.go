package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"foodiehub-api/metrics"
	"foodiehub-api/models"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

const circuitName = "payment-verifier"

type verifyRequest struct {
	TransactionID string  `json:"transactionId"`
	Bank          string  `json:"bank"`
	AccountHolder string  `json:"accountHolder"`
	Amount        float64 `json:"amount"`
}

type verifyResponse struct {
	TransactionID string     `json:"transactionId"`
	Status        string     `json:"status"`
	VerifiedAt    *time.Time `json:"verifiedAt"`
	Message       string     `json:"message"`
}

// errDeclined marks a definitive answer from the verifier; it does not count against the breaker.
var errDeclined = errors.New("payment declined")

// RemoteVerifier asks an external payment service to confirm a transaction.
// Calls go through a circuit breaker so a failing verifier sheds load quickly.
type RemoteVerifier struct {
	client  *resty.Client
	breaker *gobreaker.CircuitBreaker
	baseURL string
	log     *logrus.Entry
}

func NewRemoteVerifier(baseURL string, timeout time.Duration, log *logrus.Logger) *RemoteVerifier {
	entry := log.WithField("component", "payment")
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        circuitName,
		MaxRequests: 3,                // probes allowed while half-open
		Interval:    15 * time.Second, // failure counting window
		Timeout:     30 * time.Second, // open -> half-open
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errDeclined)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
			entry.WithFields(logrus.Fields{
				"circuit": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	})
	metrics.CircuitBreakerState.WithLabelValues(circuitName).Set(0)

	return &RemoteVerifier{
		client:  resty.New().SetTimeout(timeout).SetRetryCount(0),
		breaker: cb,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     entry,
	}
}

func (v *RemoteVerifier) Verify(ctx context.Context, amount float64, claimed models.PaymentResult) (models.PaymentResult, error) {
	out, err := v.breaker.Execute(func() (interface{}, error) {
		var body verifyResponse
		resp, err := v.client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(verifyRequest{
				TransactionID: claimed.TransactionID,
				Bank:          claimed.Bank,
				AccountHolder: claimed.AccountHolder,
				Amount:        amount,
			}).
			SetResult(&body).
			SetError(&body).
			Post(v.baseURL + "/payments/verify")
		if err != nil {
			return nil, fmt.Errorf("call payment verifier: %w", err)
		}
		switch {
		case resp.StatusCode() == http.StatusOK && strings.EqualFold(body.Status, StatusCompleted):
			return body, nil
		case resp.StatusCode() == http.StatusOK, resp.StatusCode() == http.StatusPaymentRequired,
			resp.StatusCode() == http.StatusUnprocessableEntity:
			return nil, fmt.Errorf("%w: %s", errDeclined, body.Message)
		default:
			return nil, fmt.Errorf("payment verifier returned status %d", resp.StatusCode())
		}
	})

	switch {
	case err == nil:
	case errors.Is(err, errDeclined):
		metrics.PaymentVerifications.WithLabelValues("declined").Inc()
		return models.PaymentResult{}, fmt.Errorf("%w: %v", models.ErrInvalidOrder, err)
	default:
		metrics.PaymentVerifications.WithLabelValues("unavailable").Inc()
		v.log.WithError(err).Warn("payment verification failed")
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return models.PaymentResult{}, fmt.Errorf("%w: circuit %s is open", models.ErrPaymentUnavailable, circuitName)
		}
		return models.PaymentResult{}, fmt.Errorf("%w: %v", models.ErrPaymentUnavailable, err)
	}

	body := out.(verifyResponse)
	verified := claimed
	verified.Status = StatusCompleted
	if body.TransactionID != "" {
		verified.TransactionID = body.TransactionID
	}
	verified.VerifiedAt = body.VerifiedAt
	if verified.VerifiedAt == nil {
		now := time.Now()
		verified.VerifiedAt = &now
	}
	metrics.PaymentVerifications.WithLabelValues("verified").Inc()
	return verified, nil
}

// State reports the breaker state, e.g. "closed".
func (v *RemoteVerifier) State() string {
	return v.breaker.State().String()
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}
