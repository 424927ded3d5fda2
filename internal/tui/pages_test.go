package tui

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-drive-client/internal/adapter"
	"github.com/MKhiriev/go-drive-client/internal/service"
	"github.com/MKhiriev/go-drive-client/models"
)

func unlock(t *testing.T, f *fixture, perms models.Permissions) {
	t.Helper()
	f.api.EXPECT().Permissions(gomock.Any()).Return(perms, nil)
	require.NoError(t, f.services.Resources.RefreshAll(context.Background(), service.CategoryPermissions))
}

func TestBuildRows(t *testing.T) {
	snap := models.Snapshot{
		Folders: []models.Folder{
			{ID: "f1", Name: "docs", Files: []models.File{{ID: "a", Filename: "a.txt", Size: 3}}},
			{ID: "f2", Name: "empty"},
		},
		Files: []models.File{{ID: "b", Filename: "b.txt", Size: 5}},
	}

	rows := buildRows(snap)
	require.Len(t, rows, 4)

	assert.Equal(t, models.ItemKindFolder, rows[0].item.Kind)
	assert.Equal(t, "f1", rows[0].folderID)
	assert.False(t, rows[0].nested)

	assert.Equal(t, "a.txt", rows[1].item.Name)
	assert.Equal(t, "f1", rows[1].folderID)
	assert.True(t, rows[1].nested)
	assert.EqualValues(t, 3, rows[1].size)

	assert.Equal(t, "empty", rows[2].item.Name)

	assert.Equal(t, "b.txt", rows[3].item.Name)
	assert.Empty(t, rows[3].folderID)
	assert.False(t, rows[3].nested)

	assert.Empty(t, buildRows(models.Snapshot{}))
}

func TestRenderToasts(t *testing.T) {
	assert.Empty(t, renderToasts(nil))

	out := renderToasts([]models.Notification{
		{Level: models.NotificationSuccess, Message: "Folder created"},
		{Level: models.NotificationError, Message: "Upload failed"},
	})
	assert.Contains(t, out, "Folder created")
	assert.Contains(t, out, "Upload failed")
}

func TestHumanBytes(t *testing.T) {
	assert.Equal(t, "512 B", humanBytes(512))
	assert.Equal(t, "1.0 KiB", humanBytes(1024))
	assert.Equal(t, "10.0 MiB", humanBytes(10<<20))
}

func TestChatModel_LockedWithoutPermission(t *testing.T) {
	f := newFixture(t, loggedIn(t))
	chat := f.root.pages[pageChat].(*chatModel)

	assert.Nil(t, chat.Init())
	assert.Contains(t, chat.View(), "not included in your package")
}

func TestChatModel_SendAndReset(t *testing.T) {
	f := newFixture(t, loggedIn(t))
	unlock(t, f, models.Permissions{Chat: true})
	chat := f.root.pages[pageChat].(*chatModel)

	require.NotNil(t, chat.Init())
	assert.True(t, chat.waiting)
	chat.Update(chatLoadedMsg{})

	chat.input.SetValue("hello")
	_, cmd := chat.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, chat.waiting)
	assert.Empty(t, chat.input.Value())
	require.Len(t, chat.conversation, 1)

	conversation := []models.ChatMessage{
		{Role: models.RoleUser, Content: "hello"},
		{Role: models.RoleAssistant, Content: "You said: hello"},
	}
	f.api.EXPECT().Chat(gomock.Any(), "hello").Return(models.ChatReply{Reply: "You said: hello", Conversation: conversation}, nil)
	chat.Update(cmd())
	assert.False(t, chat.waiting)
	assert.Equal(t, conversation, chat.conversation)
	assert.Contains(t, chat.View(), "You said: hello")

	_, cmd = chat.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	require.NotNil(t, cmd)
	f.api.EXPECT().ResetChat(gomock.Any()).Return(nil)
	chat.Update(cmd())
	assert.Empty(t, chat.conversation)
}

func TestChatModel_UnauthorizedAsksForReauth(t *testing.T) {
	f := newFixture(t, loggedIn(t))
	chat := f.root.pages[pageChat].(*chatModel)

	_, cmd := chat.Update(chatReplyMsg{err: &adapter.APIError{Status: 401}})
	require.NotNil(t, cmd)
	assert.Equal(t, reauthMsg{}, cmd())
}

func TestBillingModel_Purchase(t *testing.T) {
	f := newFixture(t, loggedIn(t))
	billing := f.root.pages[pageBilling].(*billingModel)

	packages := []models.Package{
		{ID: 1, Name: "Free", Price: json.Number("0")},
		{ID: 3, Name: "Pro", Price: json.Number("11")},
	}
	f.api.EXPECT().Packages(gomock.Any()).Return(packages, nil)
	f.api.EXPECT().CurrentPackage(gomock.Any()).Return("Free", nil)
	billing.Update(billing.Init()())
	assert.Equal(t, "Free", billing.current)
	assert.Contains(t, billing.View(), "Pro")

	billing.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := billing.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	order := models.PaymentOrder{OrderID: "order_1", PaymentLink: "http://pay/order_1", Amount: json.Number("11"), Package: "Pro"}
	f.api.EXPECT().InitiatePayment(gomock.Any(), int64(3)).Return(order, nil)
	billing.Update(cmd())
	require.NotNil(t, billing.order)
	assert.Contains(t, billing.View(), "order_1")

	_, cmd = billing.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	require.NotNil(t, cmd)
	f.api.EXPECT().ConfirmPayment(gomock.Any(), "order_1", models.PaymentSuccess).
		Return(models.PaymentResult{Status: models.TransactionCompleted, Message: "Payment successful"}, nil)
	f.api.EXPECT().Permissions(gomock.Any()).Return(models.Permissions{Chat: true, Image: true}, nil)
	f.api.EXPECT().StorageUsage(gomock.Any()).Return(models.StorageUsage{Total: "100 MB"}, nil)

	_, reload := billing.Update(cmd())
	assert.Nil(t, billing.order)
	require.NotNil(t, reload)
	assert.True(t, f.services.Resources.Snapshot().Permissions.Image)
}

func TestBillingModel_CancelCheckout(t *testing.T) {
	f := newFixture(t, loggedIn(t))
	billing := f.root.pages[pageBilling].(*billingModel)
	billing.order = &models.PaymentOrder{OrderID: "order_1"}

	_, cmd := billing.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, cmd)
	assert.Nil(t, billing.order)
}

func TestProfileModel_EditShowsFieldErrors(t *testing.T) {
	f := newFixture(t, loggedIn(t))
	profile := f.root.pages[pageProfile].(*profileModel)

	f.api.EXPECT().Profile(gomock.Any()).Return(models.Profile{Username: "alice", PackageName: "Free"}, nil)
	profile.Update(profile.Init()())
	assert.Contains(t, profile.View(), "alice")

	profile.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	require.True(t, profile.editing)

	profile.form.fields[0].input.SetValue("bob")
	_, cmd := profile.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	apiErr := &adapter.APIError{Status: 400, FieldErrors: map[string][]string{"username": {"A user with that username already exists."}}}
	f.api.EXPECT().UpdateProfile(gomock.Any(), gomock.Any()).Return(models.Profile{}, apiErr)
	profile.Update(cmd())

	assert.True(t, profile.editing)
	assert.Contains(t, profile.View(), "A user with that username already exists.")
	assert.Equal(t, "alice", profile.profile.Username)
}

func TestImageModel_SavesIntoDownloadDir(t *testing.T) {
	f := newFixture(t, loggedIn(t))
	unlock(t, f, models.Permissions{Image: true})
	img := f.root.pages[pageImage].(*imageModel)
	img.now = func() time.Time { return time.Unix(1700000000, 0) }

	img.input.SetValue("a red fox")
	_, cmd := img.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	f.api.EXPECT().GenerateImage(gomock.Any(), "a red fox").Return([]byte("png-bytes"), nil)
	img.Update(cmd())

	want := filepath.Join(f.root.env.downloadDir, "image-1700000000.png")
	assert.Equal(t, want, img.last.path)
	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
	assert.Contains(t, img.View(), "Saved")
}

// expectUpload mocks an upload of 64 progress steps followed by the
// storage and listing re-fetch. listed is closed once the listing is read.
func expectUpload(f *fixture, listed chan struct{}) {
	const step, steps = 1024, 64
	f.api.EXPECT().UploadFile(gomock.Any(), gomock.Any(), "", gomock.Any()).
		DoAndReturn(func(_ context.Context, file models.UploadFile, _ string, onProgress adapter.ProgressFunc) (models.File, error) {
			for i := int64(1); i <= steps; i++ {
				onProgress(i*step, steps*step)
			}
			return models.File{ID: "up", Filename: file.Name, Size: file.Size}, nil
		})
	f.api.EXPECT().StorageUsage(gomock.Any()).Return(models.StorageUsage{Total: "10 MB"}, nil)
	f.api.EXPECT().Listing(gomock.Any()).DoAndReturn(func(context.Context) (models.Listing, error) {
		close(listed)
		return models.Listing{Files: []models.File{{ID: "up", Filename: "data.bin"}}}, nil
	})
}

func uploadSource(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 64*1024), 0o600))
	return path
}

func TestFilesModel_UploadFinishesWithoutReader(t *testing.T) {
	f := newFixture(t, loggedIn(t))
	listed := make(chan struct{})
	expectUpload(f, listed)

	files := f.root.pages[pageFiles].(*filesModel)
	started, ok := files.cmdUpload(uploadSource(t), "")().(uploadStartedMsg)
	require.True(t, ok)

	select {
	case <-listed:
	case <-time.After(2 * time.Second):
		t.Fatal("listing was not re-fetched after the upload")
	}

	var last models.UploadTask
	for task := range started.updates {
		last = task
	}
	assert.Equal(t, models.UploadCompleted, last.Status)
}

func TestFilesModel_UploadDrainedAfterLeavingPage(t *testing.T) {
	f := newFixture(t, loggedIn(t))
	listed := make(chan struct{})
	expectUpload(f, listed)

	files := f.root.pages[pageFiles].(*filesModel)
	msg := files.cmdUpload(uploadSource(t), "")()
	f.root.current = pageHome

	finished := false
	for i := 0; i < 1000 && !finished; i++ {
		next, cmd := f.root.Update(msg)
		f.root = next.(RootModel)
		if _, finished = msg.(uploadFinishedMsg); finished {
			break
		}
		require.NotNil(t, cmd)
		msg = cmd()
	}
	require.True(t, finished)

	select {
	case <-listed:
	default:
		t.Fatal("listing was not re-fetched after the upload")
	}
	assert.True(t, f.services.Resources.Snapshot().ListingLoaded)
	assert.Equal(t, pageHome, f.root.current)

	var messages []string
	for _, n := range f.services.Notifications.List() {
		messages = append(messages, n.Message)
	}
	assert.Contains(t, messages, "File uploaded successfully")
}
