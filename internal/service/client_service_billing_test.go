package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-drive-client/internal/adapter"
	"github.com/MKhiriev/go-drive-client/models"
)

func TestBilling_Packages(t *testing.T) {
	svc, api := newTestServices(t)
	want := []models.Package{{ID: 1, Name: "Free", Price: "0"}, {ID: 2, Name: "Pro", Price: "9.99"}}
	api.EXPECT().Packages(gomock.Any()).Return(want, nil)

	got, err := svc.Billing.Packages(context.Background())

	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestBilling_PackagesFailure(t *testing.T) {
	svc, api := newTestServices(t)
	api.EXPECT().Packages(gomock.Any()).Return(nil, errors.New("connection reset"))

	_, err := svc.Billing.Packages(context.Background())

	assert.Error(t, err)
	assert.Equal(t, "Could not load packages", lastNotification(t, svc.Notifications).Message)
}

func TestBilling_InitiatePayment(t *testing.T) {
	svc, api := newTestServices(t)
	order := models.PaymentOrder{OrderID: "ord-1", PaymentLink: "https://pay.example/ord-1", Amount: "9.99", Package: "Pro"}
	api.EXPECT().InitiatePayment(gomock.Any(), int64(2)).Return(order, nil)

	got, err := svc.Billing.InitiatePayment(context.Background(), 2)

	require.NoError(t, err)
	assert.Equal(t, order, got)
	assert.Empty(t, svc.Notifications.List())
}

func TestBilling_ConfirmSuccessRefetchesPackageState(t *testing.T) {
	svc, api := newTestServices(t)
	ctx := context.Background()

	confirmed := api.EXPECT().ConfirmPayment(gomock.Any(), "ord-1", models.PaymentSuccess).
		Return(models.PaymentResult{OrderID: "ord-1", Status: models.TransactionCompleted, Message: "Payment successful"}, nil)
	api.EXPECT().Permissions(gomock.Any()).Return(models.Permissions{Chat: true, Image: true}, nil).After(confirmed)
	api.EXPECT().StorageUsage(gomock.Any()).Return(usage, nil).After(confirmed)

	result, err := svc.Billing.ConfirmPayment(ctx, " ord-1 ", true)

	require.NoError(t, err)
	assert.True(t, result.Completed())
	snap := svc.Resources.Snapshot()
	assert.True(t, snap.Permissions.Chat)
	assert.True(t, snap.StorageLoaded)

	n := lastNotification(t, svc.Notifications)
	assert.Equal(t, models.NotificationSuccess, n.Level)
	assert.Equal(t, "Payment successful", n.Message)
}

func TestBilling_ConfirmFailedPaymentKeepsPackage(t *testing.T) {
	svc, api := newTestServices(t)

	api.EXPECT().ConfirmPayment(gomock.Any(), "ord-1", models.PaymentFailed).
		Return(models.PaymentResult{OrderID: "ord-1", Status: models.TransactionFailed}, nil)

	result, err := svc.Billing.ConfirmPayment(context.Background(), "ord-1", false)

	require.NoError(t, err)
	assert.False(t, result.Completed())
	assert.False(t, svc.Resources.Snapshot().PermissionsLoaded)

	n := lastNotification(t, svc.Notifications)
	assert.Equal(t, models.NotificationError, n.Level)
	assert.Equal(t, "Payment failed", n.Message)
}

func TestBilling_ConfirmRejected(t *testing.T) {
	svc, api := newTestServices(t)

	api.EXPECT().ConfirmPayment(gomock.Any(), "missing", models.PaymentSuccess).
		Return(models.PaymentResult{}, &adapter.APIError{Status: http.StatusNotFound, Message: "Transaction not found"})

	_, err := svc.Billing.ConfirmPayment(context.Background(), "missing", true)

	assert.ErrorIs(t, err, adapter.ErrNotFound)
	assert.Equal(t, "Transaction not found", lastNotification(t, svc.Notifications).Message)
}

func TestBilling_ConfirmEmptyOrder(t *testing.T) {
	svc, _ := newTestServices(t)

	_, err := svc.Billing.ConfirmPayment(context.Background(), "  ", true)

	assert.ErrorIs(t, err, ErrEmptyOrderID)
	assert.Equal(t, "Order id is required", lastNotification(t, svc.Notifications).Message)
}

func TestBilling_CurrentPackage(t *testing.T) {
	svc, api := newTestServices(t)
	api.EXPECT().CurrentPackage(gomock.Any()).Return("Pro", nil)

	name, err := svc.Billing.CurrentPackage(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Pro", name)
}
