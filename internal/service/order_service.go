package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fjod/go_petshop/internal/domain"
	"github.com/fjod/go_petshop/internal/logger"
	"github.com/fjod/go_petshop/internal/repository"
	"github.com/google/uuid"
)

// OrderEventPublisher announces completed orders so the buyer's cart can be
// cleared.
type OrderEventPublisher interface {
	PublishOrderCompleted(ctx context.Context, event domain.OrderCompleted) error
}

type OrderService struct {
	repo      repository.PaymentRepository
	publisher OrderEventPublisher
	log       *logger.Logger
}

func NewOrderService(repo repository.PaymentRepository, publisher OrderEventPublisher, log *logger.Logger) *OrderService {
	if log == nil {
		log = logger.Nop()
	}
	return &OrderService{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// RecordPayment stores the payment and publishes OrderCompleted for it. A
// failed publish is logged only; the payment is already saved.
func (s *OrderService) RecordPayment(ctx context.Context, payment *domain.Payment) (string, error) {
	if payment == nil || strings.TrimSpace(payment.Email) == "" {
		return "", fmt.Errorf("%w: email is required", domain.ErrInvalidRequest)
	}
	if payment.OrderStatus == "" {
		payment.OrderStatus = domain.OrderReceived
	}
	ctx = s.log.WithOwner(ctx, payment.Email)

	id, err := s.repo.InsertPayment(ctx, payment)
	if err != nil {
		return "", s.storeFailure(ctx, "record payment", err)
	}

	if s.publisher != nil {
		event := domain.OrderCompleted{
			EventID:     uuid.NewString(),
			OrderID:     id,
			Email:       payment.Email,
			CompletedAt: time.Now().UTC(),
		}
		if errPub := s.publisher.PublishOrderCompleted(ctx, event); errPub != nil {
			s.log.Error(ctx, "publish order completed failed", errPub)
		}
	}
	return id, nil
}

func (s *OrderService) ListOrders(ctx context.Context) ([]domain.Payment, error) {
	payments, err := s.repo.ListPayments(ctx)
	if err != nil {
		return nil, s.storeFailure(ctx, "list orders", err)
	}
	return payments, nil
}

func (s *OrderService) OrdersFor(ctx context.Context, email string) ([]domain.Payment, error) {
	if err := requireEmail(email); err != nil {
		return nil, err
	}
	payments, err := s.repo.ListPaymentsByEmail(ctx, email)
	if err != nil {
		return nil, s.storeFailure(ctx, "list user orders", err)
	}
	return payments, nil
}

func (s *OrderService) CountOrders(ctx context.Context, email string) (int64, error) {
	if err := requireEmail(email); err != nil {
		return 0, err
	}
	count, err := s.repo.CountByEmail(ctx, email)
	if err != nil {
		return 0, s.storeFailure(ctx, "count orders", err)
	}
	return count, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: invalid status value %q", domain.ErrInvalidRequest, status)
	}
	return s.mapOrderError(ctx, "update order status", id, s.repo.UpdateStatus(ctx, id, status))
}

func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	return s.mapOrderError(ctx, "delete order", id, s.repo.DeletePayment(ctx, id))
}

func (s *OrderService) mapOrderError(ctx context.Context, op, id string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrInvalidID):
		return fmt.Errorf("%w: invalid order id %q", domain.ErrInvalidRequest, id)
	case errors.Is(err, repository.ErrOrderNotFound):
		return fmt.Errorf("%w: order %s", domain.ErrNotFound, id)
	default:
		return s.storeFailure(ctx, op, err)
	}
}

func (s *OrderService) storeFailure(ctx context.Context, op string, err error) error {
	s.log.Error(ctx, op+" failed", err)
	return fmt.Errorf("%w: %s: %w", domain.ErrStoreFailure, op, err)
}

func requireEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("%w: email is required", domain.ErrInvalidRequest)
	}
	return nil
}
