package models

import "encoding/json"

// Package is a subscription plan offered by the service.
type Package struct {
	ID    int64       `json:"id"`
	Name  string      `json:"name"`
	Price json.Number `json:"price"`
}

// CurrentPackageResponse is the wire shape of GET /v1/self/package/.
type CurrentPackageResponse struct {
	Package string `json:"package"`
}

// InitiatePaymentRequest is the body of POST /v1/payment/initiate/.
type InitiatePaymentRequest struct {
	PackageID int64 `json:"package_id"`
}

// PaymentOrder is the pending transaction created for a package purchase.
type PaymentOrder struct {
	OrderID     string      `json:"order_id"`
	PaymentLink string      `json:"payment_link"`
	Amount      json.Number `json:"amount"`
	Package     string      `json:"package"`
	Message     string      `json:"message"`
}

// Payment outcomes reported to POST /v1/payment/status/.
const (
	PaymentSuccess = "success"
	PaymentFailed  = "failed"
)

// Transaction statuses returned by the server.
const (
	TransactionCompleted = "completed"
	TransactionFailed    = "failed"
	TransactionPending   = "pending"
)

// PaymentStatusRequest is the body of POST /v1/payment/status/.
type PaymentStatusRequest struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// PaymentResult is the settled transaction.
type PaymentResult struct {
	OrderID     string `json:"order_id"`
	Status      string `json:"status"`
	RedirectURL string `json:"redirect_url"`
	Message     string `json:"message"`
}

// Completed reports whether the payment switched the user's package.
func (r PaymentResult) Completed() bool {
	return r.Status == TransactionCompleted
}
