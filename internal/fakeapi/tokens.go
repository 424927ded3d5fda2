package fakeapi

import (
	"fmt"

	"github.com/MKhiriev/go-drive-client/internal/utils"
	"github.com/MKhiriev/go-drive-client/models"
)

func (h *Handler) issuePair(userID string) (models.TokenResponse, error) {
	access, err := utils.GenerateJWTToken(h.opts.Issuer, userID, utils.TokenTypeAccess, h.opts.AccessTTL, h.opts.SignKey)
	if err != nil {
		return models.TokenResponse{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := utils.GenerateJWTToken(h.opts.Issuer, userID, utils.TokenTypeRefresh, h.opts.RefreshTTL, h.opts.SignKey)
	if err != nil {
		return models.TokenResponse{}, fmt.Errorf("issue refresh token: %w", err)
	}
	return models.TokenResponse{Access: access, Refresh: refresh}, nil
}

// subject validates raw as a token of wantType and returns the account ID
// it was issued to. Tokens of deleted accounts are rejected.
func (h *Handler) subject(raw, wantType string) (string, error) {
	claims, err := utils.ValidateAndParseJWTToken(raw, h.opts.SignKey, h.opts.Issuer, wantType)
	if err != nil {
		return "", err
	}
	if !h.state.exists(claims.Subject) {
		return "", fmt.Errorf("unknown account %q", claims.Subject)
	}
	return claims.Subject, nil
}
