package service

import (
	"context"
	"io"

	"github.com/MKhiriev/go-drive-client/models"
)

// Category is one independently fetched part of the resource snapshot.
type Category string

const (
	CategoryPermissions Category = "permissions"
	CategoryStorage     Category = "storage"
	CategoryListing     Category = "listing"
)

// AllCategories is the set fetched after authentication.
var AllCategories = []Category{CategoryPermissions, CategoryStorage, CategoryListing}

// UploadProgressFunc receives a point-in-time view of an upload each time
// the transport reports progress, and once more when the upload settles.
type UploadProgressFunc func(task models.UploadTask)

// ResourceSynchronizer owns the cached view of server-owned resources.
// Mutations call the remote operation first and then re-fetch the affected
// categories; the cache is never patched locally.
type ResourceSynchronizer interface {
	// Snapshot returns a deep copy of the cached resources.
	Snapshot() models.Snapshot

	// RefreshAll re-fetches the given categories in parallel, every category
	// when none is given. Each failure is surfaced as its own notification
	// and the category keeps its last known value. The returned error joins
	// one *FetchError per failed category.
	RefreshAll(ctx context.Context, categories ...Category) error

	// CreateFolder creates a folder and re-fetches storage and listing.
	CreateFolder(ctx context.Context, name string) (models.Folder, error)

	// UploadFile uploads file into folderID (root when empty) while tracking
	// its progress, then re-fetches storage and listing.
	UploadFile(ctx context.Context, file models.UploadFile, folderID string, onProgress UploadProgressFunc) (models.File, error)

	// DeleteItem deletes a folder (with its files) or a file, then
	// re-fetches storage and listing.
	DeleteItem(ctx context.Context, id string, kind models.ItemKind) error

	// DownloadItem writes the content behind the item's share link to w.
	// Folders arrive as a zip archive. Nothing is re-fetched.
	DownloadItem(ctx context.Context, item models.Item, w io.Writer) (int64, error)

	// PackageChanged re-fetches permissions and storage after an operation
	// that switched the user's package.
	PackageChanged(ctx context.Context) error

	// Reset drops the cached resources. Fetches started before Reset never
	// write into the new snapshot.
	Reset()
}

// AccountService covers the profile endpoints.
type AccountService interface {
	Profile(ctx context.Context) (models.Profile, error)
	// FetchUsername loads the username and caches it for CurrentUsername.
	FetchUsername(ctx context.Context) (string, error)
	CurrentUsername() string
	UpdateProfile(ctx context.Context, update models.ProfileUpdate) (models.Profile, error)
	Reset()
}

// BillingService covers package purchase.
type BillingService interface {
	Packages(ctx context.Context) ([]models.Package, error)
	CurrentPackage(ctx context.Context) (string, error)
	InitiatePayment(ctx context.Context, packageID int64) (models.PaymentOrder, error)
	// ConfirmPayment reports the outcome of the payment form. A completed
	// payment re-fetches permissions and storage usage.
	ConfirmPayment(ctx context.Context, orderID string, succeeded bool) (models.PaymentResult, error)
}

// AIService covers the chat and image generation features. Every call is
// gated on the cached permission set.
type AIService interface {
	Chat(ctx context.Context, message string) (models.ChatReply, error)
	ChatHistory(ctx context.Context) ([]models.ChatMessage, error)
	SaveChat(ctx context.Context, conversation []models.ChatMessage) error
	ResetChat(ctx context.Context) error
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}
