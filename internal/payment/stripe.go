package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/go_petshop/internal/domain"
	"github.com/fjod/go_petshop/internal/logger"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"github.com/stripe/stripe-go/v84"
)

const DefaultCurrency = "usd"

// intentCreator is the slice of the Stripe API used here.
type intentCreator interface {
	Create(ctx context.Context, params *stripe.PaymentIntentCreateParams) (*stripe.PaymentIntent, error)
}

type Options struct {
	APIKey      string
	Currency    string
	MaxFailures uint32
	OpenTimeout time.Duration
}

// IntentService creates Stripe payment intents behind a circuit breaker.
type IntentService struct {
	api      intentCreator
	currency string
	cb       *gobreaker.CircuitBreaker[string]
	log      *logger.Logger
}

// NewIntentService returns a service that reports ErrUnavailable for every
// call when no API key is configured.
func NewIntentService(opts Options, log *logger.Logger) *IntentService {
	var api intentCreator
	if key := strings.TrimSpace(opts.APIKey); key != "" {
		api = stripe.NewClient(key).V1PaymentIntents
	}
	return newIntentService(api, opts, log)
}

func newIntentService(api intentCreator, opts Options, log *logger.Logger) *IntentService {
	if log == nil {
		log = logger.Nop()
	}
	currency := strings.ToLower(strings.TrimSpace(opts.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	maxFailures := opts.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	settings := gobreaker.Settings{
		Name:        "stripe",
		MaxRequests: 1,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			// card declines and bad params are the caller's problem, not Stripe's
			var stripeErr *stripe.Error
			if errors.As(err, &stripeErr) {
				return stripeErr.HTTPStatusCode > 0 && stripeErr.HTTPStatusCode < http.StatusInternalServerError
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Event(context.Background(), stateChangeLevel(to)).
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	}

	return &IntentService{
		api:      api,
		currency: currency,
		cb:       gobreaker.NewCircuitBreaker[string](settings),
		log:      log,
	}
}

// CreateIntent creates a card payment intent for amount (smallest currency
// unit) and returns its client secret.
func (s *IntentService) CreateIntent(ctx context.Context, amount int64) (string, error) {
	if amount <= 0 {
		return "", fmt.Errorf("%w: amount must be positive", domain.ErrInvalidRequest)
	}
	if s.api == nil {
		return "", fmt.Errorf("%w: payments are not configured", domain.ErrUnavailable)
	}

	secret, err := s.cb.Execute(func() (string, error) {
		intent, err := s.api.Create(ctx, &stripe.PaymentIntentCreateParams{
			Amount:             stripe.Int64(amount),
			Currency:           stripe.String(s.currency),
			PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		})
		if err != nil {
			return "", err
		}
		return intent.ClientSecret, nil
	})
	switch {
	case err == nil:
		return secret, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		s.log.Warn(ctx, "payment intent rejected by breaker", err)
		return "", fmt.Errorf("%w: payment provider unavailable", domain.ErrUnavailable)
	default:
		s.log.Error(ctx, "create payment intent failed", err)
		return "", fmt.Errorf("%w: %w", domain.ErrPaymentFailure, err)
	}
}

func stateChangeLevel(to gobreaker.State) zerolog.Level {
	if to == gobreaker.StateOpen {
		return zerolog.WarnLevel
	}
	return zerolog.InfoLevel
}
