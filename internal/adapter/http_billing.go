package adapter

import (
	"context"

	"github.com/MKhiriev/go-drive-client/models"
	"github.com/go-resty/resty/v2"
)

const (
	pathPackages        = "/v1/package/"
	pathCurrentPackage  = "/v1/self/package/"
	pathPaymentInitiate = "/v1/payment/initiate/"
	pathPaymentStatus   = "/v1/payment/status/"
)

// Packages implements [ServerAdapter]. GET /v1/package/.
func (h *httpServerAdapter) Packages(ctx context.Context) ([]models.Package, error) {
	var packages []models.Package
	if err := h.send(ctx, "Packages", resty.MethodGet, pathPackages, nil, &packages); err != nil {
		return nil, err
	}
	return packages, nil
}

// CurrentPackage implements [ServerAdapter]. GET /v1/self/package/.
func (h *httpServerAdapter) CurrentPackage(ctx context.Context) (string, error) {
	var current models.CurrentPackageResponse
	if err := h.send(ctx, "CurrentPackage", resty.MethodGet, pathCurrentPackage, nil, &current); err != nil {
		return "", err
	}
	return current.Package, nil
}

// InitiatePayment implements [ServerAdapter]. POST /v1/payment/initiate/.
func (h *httpServerAdapter) InitiatePayment(ctx context.Context, packageID int64) (models.PaymentOrder, error) {
	var order models.PaymentOrder
	req := models.InitiatePaymentRequest{PackageID: packageID}
	if err := h.send(ctx, "InitiatePayment", resty.MethodPost, pathPaymentInitiate, req, &order); err != nil {
		return models.PaymentOrder{}, err
	}
	return order, nil
}

// ConfirmPayment implements [ServerAdapter]. POST /v1/payment/status/ with
// status "success" or "failed".
func (h *httpServerAdapter) ConfirmPayment(ctx context.Context, orderID, status string) (models.PaymentResult, error) {
	var result models.PaymentResult
	req := models.PaymentStatusRequest{OrderID: orderID, Status: status}
	if err := h.send(ctx, "ConfirmPayment", resty.MethodPost, pathPaymentStatus, req, &result); err != nil {
		return models.PaymentResult{}, err
	}
	return result, nil
}
