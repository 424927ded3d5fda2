package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-drive-client/internal/adapter"
	"github.com/MKhiriev/go-drive-client/internal/mock"
	"github.com/MKhiriev/go-drive-client/models"
)

func grant(t *testing.T, svc *ClientServices, api *mock.MockServerAdapter, perms models.Permissions) {
	t.Helper()
	api.EXPECT().Permissions(gomock.Any()).Return(perms, nil)
	require.NoError(t, svc.Resources.RefreshAll(context.Background(), CategoryPermissions))
}

func TestAI_LockedUntilPermissionsLoad(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()

	_, err := svc.AI.Chat(ctx, "hello")
	assert.ErrorIs(t, err, ErrFeatureLocked)

	_, err = svc.AI.GenerateImage(ctx, "a cat")
	assert.ErrorIs(t, err, ErrFeatureLocked)

	assert.Equal(t, "Feature is not included in your package", lastNotification(t, svc.Notifications).Message)
}

func TestAI_GatesFollowPermissions(t *testing.T) {
	svc, api := newTestServices(t)
	ctx := context.Background()
	grant(t, svc, api, models.Permissions{Chat: true, Image: false})

	reply := models.ChatReply{Reply: "hi", Conversation: []models.ChatMessage{
		{Role: models.RoleUser, Content: "hello"},
		{Role: models.RoleAssistant, Content: "hi"},
	}}
	api.EXPECT().Chat(gomock.Any(), "hello").Return(reply, nil)

	got, err := svc.AI.Chat(ctx, "  hello ")
	require.NoError(t, err)
	assert.Equal(t, reply, got)

	_, err = svc.AI.GenerateImage(ctx, "a cat")
	assert.ErrorIs(t, err, ErrFeatureLocked)
}

func TestAI_EmptyInputsNeverCallServer(t *testing.T) {
	svc, api := newTestServices(t)
	ctx := context.Background()
	grant(t, svc, api, models.Permissions{Chat: true, Image: true})

	_, err := svc.AI.Chat(ctx, " ")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = svc.AI.GenerateImage(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyPrompt)

	assert.ErrorIs(t, svc.AI.SaveChat(ctx, nil), ErrEmptyMessage)
}

func TestAI_HistorySaveReset(t *testing.T) {
	svc, api := newTestServices(t)
	ctx := context.Background()
	grant(t, svc, api, models.Permissions{Chat: true})

	conversation := []models.ChatMessage{{Role: models.RoleUser, Content: "hello"}}
	api.EXPECT().ChatHistory(gomock.Any()).Return(conversation, nil)
	api.EXPECT().SaveChat(gomock.Any(), conversation).Return(nil)
	api.EXPECT().ResetChat(gomock.Any()).Return(nil)

	history, err := svc.AI.ChatHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, conversation, history)

	require.NoError(t, svc.AI.SaveChat(ctx, conversation))
	assert.Equal(t, "Chat saved successfully", lastNotification(t, svc.Notifications).Message)

	require.NoError(t, svc.AI.ResetChat(ctx))
	assert.Equal(t, "Chat session reset", lastNotification(t, svc.Notifications).Message)
}

func TestAI_ServerForbidden(t *testing.T) {
	svc, api := newTestServices(t)
	ctx := context.Background()
	grant(t, svc, api, models.Permissions{Image: true})

	api.EXPECT().GenerateImage(gomock.Any(), "a cat").
		Return(nil, &adapter.APIError{Status: http.StatusForbidden, Message: "Your package does not include image generation"})

	_, err := svc.AI.GenerateImage(ctx, "a cat")

	assert.ErrorIs(t, err, adapter.ErrForbidden)
	assert.Equal(t, "Your package does not include image generation", lastNotification(t, svc.Notifications).Message)
}

func TestAI_GenerateImage(t *testing.T) {
	svc, api := newTestServices(t)
	grant(t, svc, api, models.Permissions{Image: true})

	api.EXPECT().GenerateImage(gomock.Any(), "a cat").Return([]byte{0x89, 'P', 'N', 'G'}, nil)

	img, err := svc.AI.GenerateImage(context.Background(), "a cat")

	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, img)
}
