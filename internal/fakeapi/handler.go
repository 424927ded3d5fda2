package fakeapi

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/crypto/bcrypt"

	"github.com/MKhiriev/go-drive-client/internal/config"
	"github.com/MKhiriev/go-drive-client/internal/crypto"
	"github.com/MKhiriev/go-drive-client/internal/logger"
	"github.com/MKhiriev/go-drive-client/internal/utils"
	"github.com/MKhiriev/go-drive-client/models"
)

const (
	DefaultIssuer     = "go-drive-devserver"
	DefaultAccessTTL  = 5 * time.Minute
	DefaultRefreshTTL = 24 * time.Hour
)

// AnswerFunc produces the assistant reply for a conversation that ends with
// the user's latest message.
type AnswerFunc func(conversation []models.ChatMessage) string

// Options configure a [Handler]. Only SignKey is required.
type Options struct {
	SignKey    string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// RequestTimeout bounds the handling time of one request when positive.
	RequestTimeout time.Duration
	// Packages replaces [DefaultPackages].
	Packages []Package
	// BcryptCost replaces bcrypt.DefaultCost when non-zero.
	BcryptCost int
	// Answer replaces the echoing assistant.
	Answer AnswerFunc
}

// OptionsFromConfig maps the dev server configuration onto [Options].
func OptionsFromConfig(cfg *config.DevServerConfig) Options {
	return Options{
		SignKey:        cfg.TokenSignKey,
		Issuer:         cfg.TokenIssuer,
		AccessTTL:      cfg.AccessTokenTTL,
		RefreshTTL:     cfg.RefreshTokenTTL,
		RequestTimeout: cfg.RequestTimeout,
	}
}

// Handler serves the drive API from memory.
type Handler struct {
	opts   Options
	state  *state
	logger *logger.Logger
}

func NewHandler(opts Options, log *logger.Logger) (*Handler, error) {
	if opts.SignKey == "" {
		return nil, errors.New("fakeapi: empty token sign key")
	}
	if opts.Issuer == "" {
		opts.Issuer = DefaultIssuer
	}
	if opts.AccessTTL == 0 {
		opts.AccessTTL = DefaultAccessTTL
	}
	if opts.RefreshTTL == 0 {
		opts.RefreshTTL = DefaultRefreshTTL
	}
	if opts.Answer == nil {
		opts.Answer = echoAnswer
	}

	sealer, err := crypto.NewSealer(opts.SignKey)
	if err != nil {
		return nil, fmt.Errorf("fakeapi: %w", err)
	}

	st := newState(opts.Packages, sealer)
	if opts.BcryptCost != 0 {
		st.bcryptCost = max(opts.BcryptCost, bcrypt.MinCost)
	}

	log.Info().Str("issuer", opts.Issuer).Int("packages", len(st.packages)).Msg("fake drive api created")
	return &Handler{opts: opts, state: st, logger: log}, nil
}

func echoAnswer(conversation []models.ChatMessage) string {
	return "You said: " + conversation[len(conversation)-1].Content
}

// Init builds the router.
func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)
	if h.opts.RequestTimeout > 0 {
		router.Use(middleware.Timeout(h.opts.RequestTimeout))
	}

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Post("/token/", h.login)
		r.Post("/token/refresh/", h.refresh)
		r.Post("/v1/register/", h.register)
		r.Get("/v1/storage/files/download/{link}/", h.downloadFile)
		r.Get("/v1/storage/folders/download/{link}/", h.downloadFolder)
	})

	router.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Get("/v1/self/", h.self)
		r.Get("/v1/self/package/", h.selfPackage)
		r.Get("/v1/username/", h.username)
		r.Put("/v1/update/", h.updateProfile)

		r.Get("/v1/package/", h.packages)
		r.Get("/v1/permissions/", h.permissions)
		r.Get("/v1/storage/", h.listing)
		r.Get("/v1/storage/usage/", h.storageUsage)
		r.Post("/v1/file/upload/", h.upload)
		r.Delete("/v1/storage/delete/", h.deleteItem)
		r.Post("/v1/create/folder/", h.createFolder)

		r.Post("/v1/payment/initiate/", h.initiatePayment)
		r.Post("/v1/payment/status/", h.paymentStatus)

		r.Post("/v1/chat/", h.chat)
		r.Post("/v1/chat/save/", h.saveChat)
		r.Get("/v1/chat/history/", h.chatHistory)
		r.Delete("/v1/chat/reset/", h.resetChat)
		r.Post("/v1/img/gen/", h.generateImage)
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_, _ = utils.WriteJSON(w, map[string]string{"detail": "Not found."}, http.StatusNotFound)
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_, _ = utils.WriteJSON(w, map[string]string{"detail": fmt.Sprintf("Method %q not allowed.", r.Method)}, http.StatusMethodNotAllowed)
	})

	return router
}

// fail writes err the way the drive API reports it.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	log := logger.FromRequest(r)

	var apiErr *Error
	var fields FieldErrors
	switch {
	case errors.As(err, &apiErr):
		log.Debug().Str("func", "Handler."+op).Int("status", apiErr.Status).Msg(apiErr.Message)
		_, _ = utils.WriteJSON(w, map[string]string{apiErr.Key: apiErr.Message}, apiErr.Status)
	case errors.As(err, &fields):
		log.Debug().Str("func", "Handler."+op).Any("fields", fields).Msg("validation failed")
		utils.WriteFieldErrors(w, fields)
	default:
		log.Err(err).Str("func", "Handler."+op).Msg("unexpected error")
		utils.WriteError(w, http.StatusText(http.StatusInternalServerError), statusFromError(err))
	}
}

// linkURL renders share links against the host the request came to.
func linkURL(r *http.Request) func(kind models.ItemKind, link string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return func(kind models.ItemKind, link string) string {
		segment := "files"
		if kind == models.ItemKindFolder {
			segment = "folders"
		}
		return fmt.Sprintf("%s://%s/v1/storage/%s/download/%s/", scheme, r.Host, segment, link)
	}
}
