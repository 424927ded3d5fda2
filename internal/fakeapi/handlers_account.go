package fakeapi

import (
	"net/http"
	"strings"

	"github.com/MKhiriev/go-drive-client/internal/logger"
	"github.com/MKhiriev/go-drive-client/internal/utils"
	"github.com/MKhiriev/go-drive-client/models"
)

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := utils.DecodeJSON(r, &creds); err != nil {
		h.fail(w, r, "login", ErrInvalidJSON)
		return
	}

	userID, err := h.state.authenticate(strings.TrimSpace(creds.Username), creds.Password)
	if err != nil {
		h.fail(w, r, "login", err)
		return
	}

	tokens, err := h.issuePair(userID)
	if err != nil {
		h.fail(w, r, "login", err)
		return
	}

	logger.FromRequest(r).Info().Str("func", "Handler.login").Str("user_id", userID).Msg("user logged in")
	_, _ = utils.WriteJSON(w, tokens, http.StatusOK)
}

// refresh answers with a new access token only; the refresh token is not
// rotated.
func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if err := utils.DecodeJSON(r, &req); err != nil || req.Refresh == "" {
		h.fail(w, r, "refresh", FieldErrors{"refresh": {"This field is required."}})
		return
	}

	userID, err := h.subject(req.Refresh, utils.TokenTypeRefresh)
	if err != nil {
		logger.FromRequest(r).Debug().Err(err).Str("func", "Handler.refresh").Msg("refresh token rejected")
		h.fail(w, r, "refresh", ErrTokenNotValid)
		return
	}

	access, err := utils.GenerateJWTToken(h.opts.Issuer, userID, utils.TokenTypeAccess, h.opts.AccessTTL, h.opts.SignKey)
	if err != nil {
		h.fail(w, r, "refresh", err)
		return
	}
	_, _ = utils.WriteJSON(w, models.TokenResponse{Access: access}, http.StatusOK)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, "register", ErrInvalidJSON)
		return
	}

	a, err := h.state.register(req)
	if err != nil {
		h.fail(w, r, "register", err)
		return
	}

	tokens, err := h.issuePair(a.id)
	if err != nil {
		h.fail(w, r, "register", err)
		return
	}

	logger.FromRequest(r).Info().Str("func", "Handler.register").Str("user_id", a.id).Msg("user registered")
	_, _ = utils.WriteJSON(w, models.RegisterResponse{Message: "User Created SuccessFully", Token: tokens}, http.StatusCreated)
}

func currentUser(r *http.Request) string {
	userID, _ := utils.GetUserIDFromContext(r.Context())
	return userID
}

// wireProfile mirrors the server serializer: package booleans are
// rendered as "True"/"False" strings.
type wireProfile struct {
	Username    string `json:"username"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	PackageName string `json:"package_name"`
	MaxStorage  int64  `json:"max_storage"`
	Chat        string `json:"chat"`
	ImageGen    string `json:"img_gen"`
}

func pythonBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func toWire(p models.Profile) wireProfile {
	return wireProfile{
		Username:    p.Username,
		Name:        p.Name,
		Email:       p.Email,
		Phone:       p.Phone,
		PackageName: p.PackageName,
		MaxStorage:  int64(p.MaxStorage),
		Chat:        pythonBool(bool(p.Chat)),
		ImageGen:    pythonBool(bool(p.ImageGen)),
	}
}

func (h *Handler) self(w http.ResponseWriter, r *http.Request) {
	profile, err := h.state.profile(currentUser(r))
	if err != nil {
		h.fail(w, r, "self", err)
		return
	}
	_, _ = utils.WriteJSON(w, map[string]any{"user": toWire(profile)}, http.StatusOK)
}

func (h *Handler) username(w http.ResponseWriter, r *http.Request) {
	profile, err := h.state.profile(currentUser(r))
	if err != nil {
		h.fail(w, r, "username", err)
		return
	}
	_, _ = utils.WriteJSON(w, models.UsernameResponse{Username: profile.Username}, http.StatusOK)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var update models.ProfileUpdate
	if err := utils.DecodeJSON(r, &update); err != nil {
		h.fail(w, r, "updateProfile", ErrInvalidJSON)
		return
	}

	profile, err := h.state.updateProfile(currentUser(r), update)
	if err != nil {
		h.fail(w, r, "updateProfile", err)
		return
	}
	_, _ = utils.WriteJSON(w, map[string]any{"message": "User Updated", "user": toWire(profile)}, http.StatusOK)
}
