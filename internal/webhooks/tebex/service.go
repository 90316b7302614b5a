package tebexwebhook

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mitaxdev/litescripts/internal/orders"
	"github.com/mitaxdev/litescripts/pkg/db"
	"github.com/mitaxdev/litescripts/pkg/db/models"
	"github.com/mitaxdev/litescripts/pkg/enums"
	pkgerrors "github.com/mitaxdev/litescripts/pkg/errors"
	"github.com/mitaxdev/litescripts/pkg/logger"
	"github.com/mitaxdev/litescripts/pkg/metrics"
	"github.com/mitaxdev/litescripts/pkg/types"
)

const orderTransactionConstraint = "idx_orders_tebex_transaction_id"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type userLookup interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// ServiceParams collects the reconciliation dependencies.
type ServiceParams struct {
	OrdersRepo        orders.Repository
	Users             userLookup
	TransactionRunner txRunner
	Logger            *logger.Logger
	Pipeline          *metrics.PipelineMetrics
}

// Service reconciles verified provider events into the order ledger.
type Service struct {
	ordersRepo orders.Repository
	users      userLookup
	txRunner   txRunner
	logger     *logger.Logger
	pipeline   *metrics.PipelineMetrics
}

func NewService(params ServiceParams) (*Service, error) {
	if params.OrdersRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repo required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "user lookup required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		ordersRepo: params.OrdersRepo,
		users:      params.Users,
		txRunner:   params.TransactionRunner,
		logger:     params.Logger,
		pipeline:   params.Pipeline,
	}, nil
}

// HandleEvent dispatches one parsed event. Events that cannot be applied
// because of missing local state or the status machine are logged and dropped;
// only infrastructure failures return an error.
func (s *Service) HandleEvent(ctx context.Context, event Event) error {
	if event == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "event required")
	}

	start := time.Now()
	defer func() {
		s.pipeline.ObserveWebhookDuration(event.EventType(), time.Since(start))
	}()

	ctx = s.logger.WithTransactionID(ctx, transactionID(event))

	switch e := event.(type) {
	case PaymentCompleted:
		return s.handleCompleted(ctx, e)
	case PaymentRefunded:
		return s.applyTransition(ctx, e.EventType(), e.TransactionID, enums.OrderStatusRefunded)
	case PaymentDeclined:
		return s.applyTransition(ctx, e.EventType(), e.TransactionID, enums.OrderStatusFailed)
	case Unknown:
		s.logger.Info(s.logger.WithField(ctx, "event_type", e.Type), "unhandled webhook type, ignoring")
		s.pipeline.IncWebhookEvent(e.Type, metrics.OutcomeDropped)
		return nil
	default:
		return pkgerrors.New(pkgerrors.CodeInternal, "unreachable event variant")
	}
}

func (s *Service) handleCompleted(ctx context.Context, event PaymentCompleted) error {
	_, err := s.ordersRepo.FindByTransactionID(ctx, event.TransactionID)
	if err == nil {
		s.logger.Info(ctx, "transaction already recorded, duplicate delivery")
		s.pipeline.IncWebhookEvent(event.EventType(), metrics.OutcomeDuplicate)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.pipeline.IncWebhookEvent(event.EventType(), metrics.OutcomeFailed)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up order by transaction")
	}

	if event.CustomerEmail == "" {
		s.logger.Warn(ctx, "completed payment without customer email, dropping event")
		s.pipeline.IncWebhookEvent(event.EventType(), metrics.OutcomeDropped)
		return nil
	}

	user, err := s.users.FindByEmail(ctx, event.CustomerEmail)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Warn(ctx, "no user matches customer email, dropping event")
		s.pipeline.IncWebhookEvent(event.EventType(), metrics.OutcomeDropped)
		return nil
	}
	if err != nil {
		s.pipeline.IncWebhookEvent(event.EventType(), metrics.OutcomeFailed)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve purchasing user")
	}

	snapshot := make(types.OrderProducts, 0, len(event.Products))
	for _, line := range event.Products {
		snapshot = append(snapshot, types.OrderProduct{
			ProductID:   line.ID,
			ProductName: line.Name,
			Price:       line.Price.InexactFloat64(),
			Quantity:    line.Quantity,
		})
	}

	now := time.Now().UTC()
	order := &models.Order{
		UserID:             user.ID,
		TebexTransactionID: event.TransactionID,
		Products:           snapshot,
		TotalPrice:         event.Amount,
		Currency:           enums.Currency(event.Currency),
		Status:             enums.OrderStatusCompleted,
		PaymentMethod:      event.PaymentMethod,
		CustomerEmail:      event.CustomerEmail,
		RawEvent:           event.Raw,
		CompletedAt:        &now,
	}

	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.ordersRepo.WithTx(tx).Create(ctx, order)
		return err
	})
	if err != nil {
		if db.IsUniqueViolation(err, orderTransactionConstraint) {
			s.logger.Info(ctx, "concurrent delivery already recorded transaction")
			s.pipeline.IncWebhookEvent(event.EventType(), metrics.OutcomeDuplicate)
			return nil
		}
		s.pipeline.IncWebhookEvent(event.EventType(), metrics.OutcomeFailed)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
	}

	s.logger.Info(ctx, "order recorded from completed payment")
	s.pipeline.IncWebhookEvent(event.EventType(), metrics.OutcomeProcessed)
	return nil
}

// applyTransition moves an existing order through the status machine. Events
// for unknown transactions or disallowed transitions are dropped: refunds can
// predate any local record and declines for never-completed baskets are
// expected.
func (s *Service) applyTransition(ctx context.Context, eventType, transactionID string, target enums.OrderStatus) error {
	order, err := s.ordersRepo.FindByTransactionID(ctx, transactionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Warn(s.logger.WithField(ctx, "target_status", target.String()), "no order for transaction, dropping event")
		s.pipeline.IncWebhookEvent(eventType, metrics.OutcomeDropped)
		return nil
	}
	if err != nil {
		s.pipeline.IncWebhookEvent(eventType, metrics.OutcomeFailed)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up order by transaction")
	}

	if !order.Status.CanTransitionTo(target) {
		ctx = s.logger.WithFields(ctx, map[string]any{
			"current_status": order.Status.String(),
			"target_status":  target.String(),
		})
		s.logger.Warn(ctx, "status transition disallowed, dropping event")
		s.pipeline.IncWebhookEvent(eventType, metrics.OutcomeDropped)
		return nil
	}

	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		return s.ordersRepo.WithTx(tx).UpdateStatus(ctx, order.ID, target)
	})
	if err != nil {
		s.pipeline.IncWebhookEvent(eventType, metrics.OutcomeFailed)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}

	s.logger.Info(s.logger.WithField(ctx, "status", target.String()), "order status updated")
	s.pipeline.IncWebhookEvent(eventType, metrics.OutcomeProcessed)
	return nil
}

func transactionID(event Event) string {
	switch e := event.(type) {
	case PaymentCompleted:
		return e.TransactionID
	case PaymentRefunded:
		return e.TransactionID
	case PaymentDeclined:
		return e.TransactionID
	default:
		return ""
	}
}
