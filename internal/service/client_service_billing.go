package service

import (
	"context"
	"strings"

	"github.com/MKhiriev/go-drive-client/internal/adapter"
	"github.com/MKhiriev/go-drive-client/internal/logger"
	"github.com/MKhiriev/go-drive-client/models"
)

type billingService struct {
	api       adapter.ServerAdapter
	resources ResourceSynchronizer
	notes     *NotificationCenter
	logger    *logger.Logger
}

func NewBillingService(api adapter.ServerAdapter, resources ResourceSynchronizer, notes *NotificationCenter, log *logger.Logger) BillingService {
	return &billingService{api: api, resources: resources, notes: notes, logger: log}
}

func (s *billingService) Packages(ctx context.Context) ([]models.Package, error) {
	packages, err := s.api.Packages(ctx)
	if err != nil {
		s.logger.Err(err).Str("func", "billingService.Packages").Msg("failed to load packages")
		s.notes.Error(UserMessage(err, "Could not load packages"))
		return nil, err
	}
	return packages, nil
}

func (s *billingService) CurrentPackage(ctx context.Context) (string, error) {
	name, err := s.api.CurrentPackage(ctx)
	if err != nil {
		s.logger.Err(err).Str("func", "billingService.CurrentPackage").Msg("failed to load current package")
		return "", err
	}
	return name, nil
}

func (s *billingService) InitiatePayment(ctx context.Context, packageID int64) (models.PaymentOrder, error) {
	order, err := s.api.InitiatePayment(ctx, packageID)
	if err != nil {
		s.logger.Err(err).Str("func", "billingService.InitiatePayment").Int64("package_id", packageID).Msg("payment initiation failed")
		s.notes.Error(UserMessage(err, "Payment initiation failed"))
		return models.PaymentOrder{}, err
	}

	s.logger.Info().Str("func", "billingService.InitiatePayment").Str("order_id", order.OrderID).Msg("payment initiated")
	return order, nil
}

func (s *billingService) ConfirmPayment(ctx context.Context, orderID string, succeeded bool) (models.PaymentResult, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		s.notes.Error(UserMessage(ErrEmptyOrderID, ""))
		return models.PaymentResult{}, ErrEmptyOrderID
	}

	status := models.PaymentFailed
	if succeeded {
		status = models.PaymentSuccess
	}

	result, err := s.api.ConfirmPayment(ctx, orderID, status)
	if err != nil {
		s.logger.Err(err).Str("func", "billingService.ConfirmPayment").Str("order_id", orderID).Msg("payment status failed")
		s.notes.Error(UserMessage(err, "Payment failed"))
		return models.PaymentResult{}, err
	}

	if !result.Completed() {
		s.logger.Info().Str("func", "billingService.ConfirmPayment").Str("order_id", orderID).Str("status", result.Status).Msg("payment not completed")
		s.notes.Error(messageOr(result.Message, "Payment failed"))
		return result, nil
	}

	// the package changes quota and feature gates
	_ = s.resources.PackageChanged(ctx)
	s.logger.Info().Str("func", "billingService.ConfirmPayment").Str("order_id", orderID).Msg("payment completed")
	s.notes.Success(messageOr(result.Message, "Payment completed"))
	return result, nil
}

func messageOr(message, fallback string) string {
	if strings.TrimSpace(message) == "" {
		return fallback
	}
	return message
}
