package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentURLProvider turns an amount plus a unique store reference into a
// URL the customer is redirected to.
type PaymentURLProvider interface {
	Name() string
	CreatePaymentURL(ctx context.Context, reference string, amount decimal.Decimal) (string, error)
}

type PaymentService interface {
	CreatePaymentURL(ctx context.Context, amount *decimal.Decimal) (*models.PaymentLink, error)
	// Checkout prices the session's cart on the server and requests a
	// payment URL for that total.
	Checkout(ctx context.Context, sessionID string) (*models.PaymentLink, error)
}

type paymentService struct {
	provider PaymentURLProvider
	carts    CartService
	newID    func() string
}

func NewPaymentService(provider PaymentURLProvider, carts CartService) PaymentService {
	return &paymentService{
		provider: provider,
		carts:    carts,
		newID:    uuid.NewString,
	}
}

// CreatePaymentURL implements PaymentService.
func (s *paymentService) CreatePaymentURL(ctx context.Context, amount *decimal.Decimal) (*models.PaymentLink, error) {
	if amount == nil || !amount.IsPositive() {
		metrics.RecordPaymentLink(s.provider.Name(), metrics.OutcomeRejected, 0)
		return nil, errors.UnprocessableError("amount is required")
	}

	logger := middleware.LoggerFromContext(ctx)
	reference := s.newID()

	start := time.Now()
	payURL, err := s.provider.CreatePaymentURL(ctx, reference, *amount)
	elapsed := time.Since(start)

	if err != nil {
		metrics.RecordPaymentLink(s.provider.Name(), metrics.OutcomeFailure, elapsed)
		logger.Error("Payment provider call failed",
			slog.String("provider", s.provider.Name()),
			slog.String("storeExternalId", reference),
			slog.String("error", err.Error()))

		return nil, errors.GatewayError("Failed to create payment URL").
			WithError(err).
			WithPayload(GatewayPayload(err))
	}

	metrics.RecordPaymentLink(s.provider.Name(), metrics.OutcomeSuccess, elapsed)
	logger.Info("Payment URL created",
		slog.String("provider", s.provider.Name()),
		slog.String("storeExternalId", reference),
		slog.String("amount", amount.String()))

	return &models.PaymentLink{
		StoreExternalID: reference,
		PayURL:          payURL,
		Amount:          *amount,
	}, nil
}

// Checkout implements PaymentService.
func (s *paymentService) Checkout(ctx context.Context, sessionID string) (*models.PaymentLink, error) {
	total, err := s.carts.Total(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !total.IsPositive() {
		return nil, errors.UnprocessableError("cart is empty")
	}

	return s.CreatePaymentURL(ctx, &total)
}
