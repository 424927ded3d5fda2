package fakeapi

import (
	"bytes"
	"context"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-drive-client/internal/adapter"
	"github.com/MKhiriev/go-drive-client/models"
)

func TestBilling_UpgradeUnlocksFeatures(t *testing.T) {
	api := newTestAPI(t, Options{})
	client, _ := api.signUp(t, "alice")
	ctx := context.Background()

	packages, err := client.Packages(ctx)
	require.NoError(t, err)
	require.Len(t, packages, 3)
	assert.Equal(t, "Pro", packages[2].Name)

	order, err := client.InitiatePayment(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "11", order.Amount.String())
	assert.Equal(t, "Pro", order.Package)
	assert.True(t, strings.HasPrefix(order.OrderID, "order_"))

	result, err := client.ConfirmPayment(ctx, order.OrderID, models.PaymentSuccess)
	require.NoError(t, err)
	assert.True(t, result.Completed())

	current, err := client.CurrentPackage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Pro", current)

	perms, err := client.Permissions(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Permissions{Chat: true, Image: true}, perms)

	profile, err := client.Profile(ctx)
	require.NoError(t, err)
	assert.True(t, bool(profile.ImageGen))
}

func TestBilling_FailedPaymentKeepsPackage(t *testing.T) {
	api := newTestAPI(t, Options{})
	client, _ := api.signUp(t, "alice")
	ctx := context.Background()

	order, err := client.InitiatePayment(ctx, 2)
	require.NoError(t, err)

	result, err := client.ConfirmPayment(ctx, order.OrderID, models.PaymentFailed)
	require.NoError(t, err)
	assert.False(t, result.Completed())
	assert.Equal(t, models.TransactionFailed, result.Status)

	current, err := client.CurrentPackage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Free", current)
}

func TestBilling_Errors(t *testing.T) {
	api := newTestAPI(t, Options{})
	client, _ := api.signUp(t, "alice")
	other, _ := api.signUp(t, "bob")
	ctx := context.Background()

	_, err := client.InitiatePayment(ctx, 42)
	require.ErrorIs(t, err, adapter.ErrNotFound)
	assert.Equal(t, "Invalid package ID", adapter.MessageOf(err, ""))

	_, err = client.ConfirmPayment(ctx, "order_unknown", models.PaymentSuccess)
	assert.ErrorIs(t, err, adapter.ErrNotFound)

	order, err := client.InitiatePayment(ctx, 2)
	require.NoError(t, err)
	_, err = other.ConfirmPayment(ctx, order.OrderID, models.PaymentSuccess)
	assert.ErrorIs(t, err, adapter.ErrNotFound, "orders belong to the account that created them")

	_, err = client.ConfirmPayment(ctx, "", models.PaymentSuccess)
	assert.ErrorIs(t, err, adapter.ErrBadRequest)
}

func TestChargeFor(t *testing.T) {
	assert.Equal(t, "0", chargeFor("0.00"))
	assert.Equal(t, "6", chargeFor("4.99"))
	assert.Equal(t, "11", chargeFor("9.99"))
	assert.Equal(t, "0", chargeFor("not-a-price"))
}

func upgrade(t *testing.T, client adapter.ServerAdapter, packageID int64) {
	t.Helper()
	ctx := context.Background()
	order, err := client.InitiatePayment(ctx, packageID)
	require.NoError(t, err)
	_, err = client.ConfirmPayment(ctx, order.OrderID, models.PaymentSuccess)
	require.NoError(t, err)
}

func TestChat_GatedByPackage(t *testing.T) {
	api := newTestAPI(t, Options{})
	client, _ := api.signUp(t, "alice")
	ctx := context.Background()

	_, err := client.Chat(ctx, "hello")
	require.ErrorIs(t, err, adapter.ErrForbidden)
	assert.Equal(t, "Chat AI not enabled for your package", adapter.MessageOf(err, ""))

	_, err = client.GenerateImage(ctx, "a cat")
	assert.ErrorIs(t, err, adapter.ErrForbidden)

	upgrade(t, client, 2)

	_, err = client.Chat(ctx, "hello")
	assert.NoError(t, err)
	_, err = client.GenerateImage(ctx, "a cat")
	assert.ErrorIs(t, err, adapter.ErrForbidden, "Basic has no image generation")
}

func TestChat_Conversation(t *testing.T) {
	api := newTestAPI(t, Options{})
	client, _ := api.signUp(t, "alice")
	upgrade(t, client, 2)
	ctx := context.Background()

	reply, err := client.Chat(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, "You said: hello", reply.Reply)
	assert.Equal(t, []models.ChatMessage{
		{Role: models.RoleUser, Content: "hello"},
		{Role: models.RoleAssistant, Content: "You said: hello"},
	}, reply.Conversation)

	history, err := client.ChatHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, reply.Conversation, history)

	for _, a := range api.handler.state.accounts {
		assert.NotContains(t, a.conversation, "hello", "conversation is sealed at rest")
	}

	require.NoError(t, client.SaveChat(ctx, []models.ChatMessage{{Role: models.RoleUser, Content: "extra"}}))
	history, err = client.ChatHistory(ctx)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "extra", history[2].Content)

	err = client.SaveChat(ctx, nil)
	assert.ErrorIs(t, err, adapter.ErrBadRequest)

	require.NoError(t, client.ResetChat(ctx))
	history, err = client.ChatHistory(ctx)
	require.NoError(t, err)
	assert.Empty(t, history)

	_, err = client.Chat(ctx, "  ")
	assert.ErrorIs(t, err, adapter.ErrBadRequest)
}

func TestChat_HistoryIsBounded(t *testing.T) {
	api := newTestAPI(t, Options{Answer: func([]models.ChatMessage) string { return "ok" }})
	client, _ := api.signUp(t, "alice")
	upgrade(t, client, 2)
	ctx := context.Background()

	var reply models.ChatReply
	var err error
	for i := 0; i < 20; i++ {
		reply, err = client.Chat(ctx, "ping")
		require.NoError(t, err)
	}
	assert.Len(t, reply.Conversation, chatHistoryLimit+1)
	assert.Equal(t, models.RoleAssistant, reply.Conversation[len(reply.Conversation)-1].Role)
}

func TestGenerateImage(t *testing.T) {
	api := newTestAPI(t, Options{})
	client, _ := api.signUp(t, "alice")
	upgrade(t, client, 3)
	ctx := context.Background()

	img, err := client.GenerateImage(ctx, "a lighthouse")
	require.NoError(t, err)
	decoded, err := png.Decode(bytes.NewReader(img))
	require.NoError(t, err)
	assert.Equal(t, generatedImageSize, decoded.Bounds().Dx())

	again, err := client.GenerateImage(ctx, "a lighthouse")
	require.NoError(t, err)
	assert.Equal(t, img, again, "same prompt renders the same image")

	_, err = client.GenerateImage(ctx, "")
	assert.ErrorIs(t, err, adapter.ErrBadRequest)
}
