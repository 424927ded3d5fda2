// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the transport layer between the drive client and
// the remote drive API.
//
// The primary abstraction is [ServerAdapter], which decouples the session and
// service layers from HTTP. The package ships a resty based implementation
// ([NewHTTPServerAdapter]).
//
// Non-2xx responses are mapped by mapHTTPError to an [*APIError] that wraps
// one of the sentinel values from errors.go, so callers can use [errors.Is]
// (e.g. [ErrUnauthorized] for 401) and [MessageOf] to obtain the message the
// server wants shown to the user.
package adapter

import (
	"context"
	"io"

	"github.com/MKhiriev/go-drive-client/models"
	"github.com/go-resty/resty/v2"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/server_adapter_mock.go -package=mock

// ServerAdapter defines communication with the drive API. Implementations
// are responsible for serialisation and for mapping transport-level errors to
// the sentinel values defined in this package. They never refresh tokens.
type ServerAdapter interface {
	// Login exchanges username and password for a token pair.
	Login(ctx context.Context, creds models.Credentials) (models.TokenResponse, error)

	// Register creates an account. The response carries the first token pair.
	Register(ctx context.Context, req models.RegisterRequest) (models.RegisterResponse, error)

	// RefreshToken exchanges a refresh token for a new access token. The
	// refresh token in the response is empty unless the server rotates it.
	RefreshToken(ctx context.Context, refresh string) (models.TokenResponse, error)

	Profile(ctx context.Context) (models.Profile, error)
	Username(ctx context.Context) (string, error)
	UpdateProfile(ctx context.Context, update models.ProfileUpdate) (models.Profile, error)

	StorageUsage(ctx context.Context) (models.StorageUsage, error)
	Listing(ctx context.Context) (models.Listing, error)
	Permissions(ctx context.Context) (models.Permissions, error)
	CreateFolder(ctx context.Context, name string) (models.Folder, error)

	// UploadFile streams file as a multipart request. folderID is empty for
	// the root. onProgress, when non-nil, is called with the cumulative number
	// of bytes handed to the transport.
	UploadFile(ctx context.Context, file models.UploadFile, folderID string, onProgress ProgressFunc) (models.File, error)

	DeleteItem(ctx context.Context, id string, kind models.ItemKind) error

	// Download writes the content behind a share link to w. Folders arrive
	// as a zip archive. It returns the number of bytes written.
	Download(ctx context.Context, link string, kind models.ItemKind, w io.Writer) (int64, error)

	Packages(ctx context.Context) ([]models.Package, error)
	CurrentPackage(ctx context.Context) (string, error)
	InitiatePayment(ctx context.Context, packageID int64) (models.PaymentOrder, error)
	ConfirmPayment(ctx context.Context, orderID, status string) (models.PaymentResult, error)

	Chat(ctx context.Context, message string) (models.ChatReply, error)
	ChatHistory(ctx context.Context) ([]models.ChatMessage, error)
	SaveChat(ctx context.Context, conversation []models.ChatMessage) error
	ResetChat(ctx context.Context) error

	// GenerateImage returns the decoded image bytes.
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

// RequestAuthorizer decorates every outgoing request before it is sent.
// It is registered as a resty OnBeforeRequest middleware.
type RequestAuthorizer interface {
	Authorize(c *resty.Client, r *resty.Request) error
}

// ProgressFunc receives the cumulative transferred and the total byte count
// of an upload.
type ProgressFunc func(transferred, total int64)
